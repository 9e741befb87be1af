package segindex

import (
	"bytes"
	"testing"
	"time"

	"github.com/onurtuna/ursavr/internal/poolset"
	"github.com/onurtuna/ursavr/internal/record"
	"github.com/onurtuna/ursavr/pkg/logger"
	"github.com/onurtuna/ursavr/pkg/options"
)

func openTestSet(t *testing.T, poolSize uint64, poolCount int) *poolset.Set {
	t.Helper()
	opts := &options.Options{}
	options.WithDefaultOptions()(opts)
	opts.DataDir = t.TempDir()
	opts.PoolOptions.Size = poolSize
	opts.PoolOptions.Count = poolCount
	opts.PoolOptions.RotationTimeout = time.Second

	set, err := poolset.Open(&poolset.Config{Options: opts, Logger: logger.NewNop()})
	if err != nil {
		t.Fatalf("poolset.Open: %v", err)
	}
	t.Cleanup(func() { set.Close() })
	return set
}

func writeRaw(t *testing.T, p *poolset.Pool, offset int64, raw []byte) {
	t.Helper()
	if _, err := p.WriteAt(raw, offset); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
}

func TestRebuildRecoversEntriesAndCursor(t *testing.T) {
	set := openTestSet(t, 1<<20, 2)

	pool0 := set.Pool(0)
	off := int64(0)
	for i, start := range []int64{1000, 2000} {
		raw := record.Encode("cam1", start, 1000, bytes.Repeat([]byte{byte(i)}, 1000))
		writeRaw(t, pool0, off, raw)
		off += int64(len(raw))
	}

	pool1 := set.Pool(1)
	raw := record.Encode("cam1", 3000, 1000, bytes.Repeat([]byte{0xFF}, 500))
	writeRaw(t, pool1, 0, raw)

	idx := newTestIndex()
	cursor, corrupted, err := Rebuild(idx, set.All())
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if corrupted != 0 {
		t.Fatalf("corrupted = %d, want 0", corrupted)
	}

	got := idx.Range("cam1", 0, 10000)
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}

	if cursor.PoolIdx != 1 {
		t.Fatalf("cursor pool = %d, want 1 (holds latest record)", cursor.PoolIdx)
	}
	wantOffset := int64(record.HeaderSize + 500)
	if cursor.Offset != wantOffset {
		t.Fatalf("cursor offset = %d, want %d", cursor.Offset, wantOffset)
	}
}

func TestRebuildFreshPoolsYieldsEmptyIndex(t *testing.T) {
	set := openTestSet(t, 1<<16, 2)

	idx := newTestIndex()
	cursor, corrupted, err := Rebuild(idx, set.All())
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if corrupted != 0 {
		t.Fatalf("corrupted = %d, want 0", corrupted)
	}
	if cursor != (Cursor{}) {
		t.Fatalf("cursor = %+v, want zero value", cursor)
	}
	if stats := idx.Stats(); stats.Total != 0 {
		t.Fatalf("total = %d, want 0", stats.Total)
	}
}
