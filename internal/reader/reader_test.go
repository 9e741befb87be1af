package reader

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/onurtuna/ursavr/internal/poolset"
	"github.com/onurtuna/ursavr/internal/record"
	"github.com/onurtuna/ursavr/internal/segindex"
	"github.com/onurtuna/ursavr/pkg/errors"
	"github.com/onurtuna/ursavr/pkg/logger"
	"github.com/onurtuna/ursavr/pkg/options"
)

func newTestReader(t *testing.T, poolSize uint64, poolCount int) (*Reader, *poolset.Set, *segindex.Index) {
	t.Helper()

	opts := &options.Options{}
	options.WithDefaultOptions()(opts)
	opts.DataDir = t.TempDir()
	opts.PoolOptions.Size = poolSize
	opts.PoolOptions.Count = poolCount
	opts.PoolOptions.RotationTimeout = time.Second

	pools, err := poolset.Open(&poolset.Config{Options: opts, Logger: logger.NewNop()})
	if err != nil {
		t.Fatalf("poolset.Open: %v", err)
	}
	t.Cleanup(func() { pools.Close() })

	idx := segindex.New(&segindex.Config{Logger: logger.NewNop()})

	return New(&Config{Pools: pools, Index: idx, Logger: logger.NewNop()}), pools, idx
}

func TestReadReturnsBodiesInOrder(t *testing.T) {
	r, pools, idx := newTestReader(t, 1<<20, 2)

	pool0 := pools.Pool(0)
	bodies := [][]byte{
		bytes.Repeat([]byte{1}, 100),
		bytes.Repeat([]byte{2}, 200),
	}
	offset := int64(0)
	for i, body := range bodies {
		if _, err := pool0.WriteAt(body, offset+record.HeaderSize); err != nil {
			t.Fatalf("WriteAt: %v", err)
		}
		idx.Insert(segindex.Entry{
			CameraID: "cam1", StartUnixNs: int64(1000 + i), DurationMs: 1000,
			PoolIdx: 0, Offset: offset, BodyLen: uint32(len(body)),
		})
		offset += int64(record.HeaderSize + len(body))
	}

	got, _, err := r.Read(context.Background(), "cam1", 0, 10000)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if !bytes.Equal(got[0].Body, bodies[0]) || !bytes.Equal(got[1].Body, bodies[1]) {
		t.Fatalf("bodies mismatch")
	}
}

func TestReadEmptyWhenFromAfterTo(t *testing.T) {
	r, _, idx := newTestReader(t, 1<<16, 2)
	idx.Insert(segindex.Entry{CameraID: "cam1", StartUnixNs: 5, DurationMs: 1, PoolIdx: 0, Offset: 0, BodyLen: 4})

	got, _, err := r.Read(context.Background(), "cam1", 100, 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d records, want 0", len(got))
	}
}

func TestReadSkipsSealedPoolEntries(t *testing.T) {
	r, pools, idx := newTestReader(t, 1<<16, 2)

	idx.Insert(segindex.Entry{CameraID: "cam1", StartUnixNs: 1, DurationMs: 1, PoolIdx: 0, Offset: 0, BodyLen: 10})
	idx.Insert(segindex.Entry{CameraID: "cam1", StartUnixNs: 2, DurationMs: 1, PoolIdx: 1, Offset: 0, BodyLen: 10})

	pools.Pool(0).Seal()
	defer pools.Pool(0).Unseal()

	got, skipped, err := r.Read(context.Background(), "cam1", 0, 100)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for _, rec := range got {
		if rec.Entry.PoolIdx == 0 {
			t.Fatalf("expected sealed pool's entry to be skipped, got %+v", rec.Entry)
		}
	}
	if len(skipped) != 1 || skipped[0].Entry.PoolIdx != 0 {
		t.Fatalf("expected one skipped entry from pool 0, got %+v", skipped)
	}
	if !errors.IsRecordingError(skipped[0].Err) {
		t.Fatalf("expected a typed recording error, got %v", skipped[0].Err)
	}
}

func TestReadDedupesByStartKeepingHigherPoolIdx(t *testing.T) {
	r, pools, idx := newTestReader(t, 1<<16, 2)

	lowBody := bytes.Repeat([]byte{0xAA}, 10)
	highBody := bytes.Repeat([]byte{0xBB}, 10)
	if _, err := pools.Pool(0).WriteAt(lowBody, record.HeaderSize); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if _, err := pools.Pool(1).WriteAt(highBody, record.HeaderSize); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}

	idx.Insert(segindex.Entry{CameraID: "cam1", StartUnixNs: 42, DurationMs: 1, PoolIdx: 0, Offset: 0, BodyLen: 10})
	idx.Insert(segindex.Entry{CameraID: "cam1", StartUnixNs: 42, DurationMs: 1, PoolIdx: 1, Offset: 0, BodyLen: 10})

	got, _, err := r.Read(context.Background(), "cam1", 0, 100)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1 (deduped)", len(got))
	}
	if !bytes.Equal(got[0].Body, highBody) {
		t.Fatalf("expected higher pool_idx entry to win dedup")
	}
}
