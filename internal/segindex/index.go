// Package segindex implements the in-memory, process-wide mapping from
// (camera, time) to a physical pool-file locator. It is rebuilt from the
// pool files on every startup and mutated thereafter only by the writer,
// on each successful append and on each rotation.
package segindex

import (
	"slices"
	"sync"
	"sync/atomic"

	stdErrors "errors"

	"go.uber.org/zap"
)

// ErrIndexClosed is returned by any operation against a closed Index.
var ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")

// Entry is one segment's index row, locating a record's bytes by
// (pool_idx, offset).
type Entry struct {
	CameraID    string
	StartUnixNs int64
	DurationMs  uint32
	PoolIdx     uint16
	Offset      int64
	BodyLen     uint32
}

// End returns the wall-clock instant the segment covers up to.
func (e Entry) End() int64 {
	return e.StartUnixNs + int64(e.DurationMs)*int64(1_000_000)
}

// Stats summarizes the index for the status endpoint.
type Stats struct {
	Total        int
	PerPoolCount map[uint16]int
	PerCamera    map[string]int
}

// Index is the per-camera ordered collection of entries, guarded by a
// single reader-writer lock: the writer holds the write lock only for the
// duration of an insert or eviction, readers only for the duration of
// copying a range query's result out.
type Index struct {
	mu sync.RWMutex

	byCamera     map[string][]Entry
	perPoolCount map[uint16]int

	closed atomic.Bool
	log    *zap.SugaredLogger
}

// Config carries the logger the index reports through.
type Config struct {
	Logger *zap.SugaredLogger
}

// New creates an empty index, ready for Rebuild or direct inserts.
func New(cfg *Config) *Index {
	return &Index{
		byCamera:     make(map[string][]Entry),
		perPoolCount: make(map[uint16]int),
		log:          cfg.Logger,
	}
}

func entryLess(a, b Entry) int {
	if a.StartUnixNs < b.StartUnixNs {
		return -1
	}
	if a.StartUnixNs > b.StartUnixNs {
		return 1
	}
	return 0
}

// Insert adds an entry in sorted position within its camera's collection.
// If an entry for the same (camera, start_unix_ns) already exists — the
// same instant recovered twice across a rebuild — the one with the
// higher pool_idx wins, since it's the more recent write to that
// timestamp.
func (idx *Index) Insert(e Entry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	arr := idx.byCamera[e.CameraID]
	i, found := slices.BinarySearchFunc(arr, e, entryLess)
	if found {
		if e.PoolIdx > arr[i].PoolIdx {
			idx.perPoolCount[arr[i].PoolIdx]--
			arr[i] = e
			idx.perPoolCount[e.PoolIdx]++
		}
		idx.byCamera[e.CameraID] = arr
		return
	}

	idx.byCamera[e.CameraID] = slices.Insert(arr, i, e)
	idx.perPoolCount[e.PoolIdx]++
}

// EvictPool removes every entry whose pool_idx matches, the bulk-removal
// rotation performs just before the writer starts overwriting that pool.
func (idx *Index) EvictPool(poolIdx uint16) int {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	evicted := 0
	for camera, arr := range idx.byCamera {
		kept := arr[:0]
		for _, e := range arr {
			if e.PoolIdx == poolIdx {
				evicted++
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(idx.byCamera, camera)
		} else {
			idx.byCamera[camera] = kept
		}
	}
	delete(idx.perPoolCount, poolIdx)
	return evicted
}

// Range returns entries for camera whose interval [start, start+duration]
// intersects [from, to], sorted ascending by start. Empty if from > to.
func (idx *Index) Range(cameraID string, from, to int64) []Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if from > to {
		return nil
	}

	arr := idx.byCamera[cameraID]
	var out []Entry
	for _, e := range arr {
		if e.End() >= from && e.StartUnixNs <= to {
			out = append(out, e)
		}
	}
	return out
}

// Tail returns the last k entries for a camera, for live HLS playlists.
func (idx *Index) Tail(cameraID string, k int) []Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	arr := idx.byCamera[cameraID]
	if k >= len(arr) {
		out := make([]Entry, len(arr))
		copy(out, arr)
		return out
	}
	out := make([]Entry, k)
	copy(out, arr[len(arr)-k:])
	return out
}

// Stats reports aggregate index size for the status endpoint.
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	perCamera := make(map[string]int, len(idx.byCamera))
	total := 0
	for camera, arr := range idx.byCamera {
		perCamera[camera] = len(arr)
		total += len(arr)
	}

	perPool := make(map[uint16]int, len(idx.perPoolCount))
	for k, v := range idx.perPoolCount {
		perPool[k] = v
	}

	return Stats{Total: total, PerPoolCount: perPool, PerCamera: perCamera}
}

// Cameras returns every camera id with at least one live entry.
func (idx *Index) Cameras() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]string, 0, len(idx.byCamera))
	for camera := range idx.byCamera {
		out = append(out, camera)
	}
	return out
}

// Close marks the index closed, releasing its backing maps. Safe to call
// once; a second call returns ErrIndexClosed.
func (idx *Index) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	clear(idx.byCamera)
	idx.byCamera = nil
	clear(idx.perPoolCount)
	idx.perPoolCount = nil

	idx.log.Infow("segment index closed")
	return nil
}
