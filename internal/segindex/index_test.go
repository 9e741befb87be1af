package segindex

import (
	"testing"

	"github.com/onurtuna/ursavr/pkg/logger"
)

func newTestIndex() *Index {
	return New(&Config{Logger: logger.NewNop()})
}

func TestInsertAndRangeOrdering(t *testing.T) {
	idx := newTestIndex()
	idx.Insert(Entry{CameraID: "cam1", StartUnixNs: 3000, DurationMs: 1000, PoolIdx: 0, Offset: 200})
	idx.Insert(Entry{CameraID: "cam1", StartUnixNs: 1000, DurationMs: 1000, PoolIdx: 0, Offset: 0})
	idx.Insert(Entry{CameraID: "cam1", StartUnixNs: 2000, DurationMs: 1000, PoolIdx: 0, Offset: 100})

	got := idx.Range("cam1", 0, 10000)
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	for i, want := range []int64{1000, 2000, 3000} {
		if got[i].StartUnixNs != want {
			t.Errorf("entry %d start = %d, want %d", i, got[i].StartUnixNs, want)
		}
	}
}

func TestInsertDuplicateTimestampKeepsHigherPoolIdx(t *testing.T) {
	idx := newTestIndex()
	idx.Insert(Entry{CameraID: "cam1", StartUnixNs: 1000, DurationMs: 1000, PoolIdx: 0, Offset: 0})
	idx.Insert(Entry{CameraID: "cam1", StartUnixNs: 1000, DurationMs: 1000, PoolIdx: 2, Offset: 500})

	got := idx.Range("cam1", 0, 10000)
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if got[0].PoolIdx != 2 {
		t.Fatalf("pool idx = %d, want 2 (higher wins)", got[0].PoolIdx)
	}
}

func TestEvictPoolRemovesOnlyThatPool(t *testing.T) {
	idx := newTestIndex()
	idx.Insert(Entry{CameraID: "cam1", StartUnixNs: 1000, DurationMs: 1000, PoolIdx: 0, Offset: 0})
	idx.Insert(Entry{CameraID: "cam1", StartUnixNs: 2000, DurationMs: 1000, PoolIdx: 1, Offset: 0})
	idx.Insert(Entry{CameraID: "cam2", StartUnixNs: 1500, DurationMs: 1000, PoolIdx: 0, Offset: 100})

	evicted := idx.EvictPool(0)
	if evicted != 2 {
		t.Fatalf("evicted = %d, want 2", evicted)
	}

	if got := idx.Range("cam1", 0, 10000); len(got) != 1 || got[0].PoolIdx != 1 {
		t.Fatalf("cam1 entries after evict = %+v", got)
	}
	if got := idx.Range("cam2", 0, 10000); len(got) != 0 {
		t.Fatalf("cam2 entries after evict = %+v, want none", got)
	}
}

func TestRangeEmptyWhenFromAfterTo(t *testing.T) {
	idx := newTestIndex()
	idx.Insert(Entry{CameraID: "cam1", StartUnixNs: 1000, DurationMs: 1000, PoolIdx: 0, Offset: 0})

	if got := idx.Range("cam1", 500, 100); got != nil {
		t.Fatalf("got %+v, want nil for from > to", got)
	}
}

func TestTailReturnsLastK(t *testing.T) {
	idx := newTestIndex()
	for i := int64(0); i < 10; i++ {
		idx.Insert(Entry{CameraID: "cam1", StartUnixNs: i * 1000, DurationMs: 1000, PoolIdx: 0, Offset: i * 100})
	}

	tail := idx.Tail("cam1", 3)
	if len(tail) != 3 {
		t.Fatalf("got %d entries, want 3", len(tail))
	}
	for i, want := range []int64{7000, 8000, 9000} {
		if tail[i].StartUnixNs != want {
			t.Errorf("tail %d start = %d, want %d", i, tail[i].StartUnixNs, want)
		}
	}
}

func TestStatsAggregates(t *testing.T) {
	idx := newTestIndex()
	idx.Insert(Entry{CameraID: "cam1", StartUnixNs: 1000, DurationMs: 1000, PoolIdx: 0, Offset: 0})
	idx.Insert(Entry{CameraID: "cam2", StartUnixNs: 1000, DurationMs: 1000, PoolIdx: 1, Offset: 0})

	stats := idx.Stats()
	if stats.Total != 2 {
		t.Fatalf("total = %d, want 2", stats.Total)
	}
	if stats.PerPoolCount[0] != 1 || stats.PerPoolCount[1] != 1 {
		t.Fatalf("per pool counts = %+v", stats.PerPoolCount)
	}
}
