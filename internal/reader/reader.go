// Package reader implements the range-read path: given a camera and time
// range, it looks up the segment index, acquires per-pool read guards,
// and issues positioned reads in ascending pool then offset order so a
// single disk scan satisfies the whole request.
package reader

import (
	"context"
	"slices"

	"github.com/onurtuna/ursavr/internal/poolset"
	"github.com/onurtuna/ursavr/internal/record"
	"github.com/onurtuna/ursavr/internal/segindex"
	"github.com/onurtuna/ursavr/pkg/errors"
	"go.uber.org/zap"
)

// Record is one body read back out of a pool, paired with the index entry
// that located it.
type Record struct {
	Entry segindex.Entry
	Body  []byte
}

// Skipped is an index entry that could not be read back, along with the
// typed reason why, so callers can tell a rotated-away record apart from
// an unrelated I/O failure instead of just losing it silently.
type Skipped struct {
	Entry segindex.Entry
	Err   error
}

// Reader is stateless on top of the pool set and index: every call computes
// its own plan from current index contents, so no per-request state
// survives a Read call's return.
type Reader struct {
	pools *poolset.Set
	index *segindex.Index
	log   *zap.SugaredLogger
}

// Config carries the pool set and index a Reader is built against.
type Config struct {
	Pools  *poolset.Set
	Index  *segindex.Index
	Logger *zap.SugaredLogger
}

// New builds a Reader against a pool set and segment index.
func New(cfg *Config) *Reader {
	return &Reader{pools: cfg.Pools, index: cfg.Index, log: cfg.Logger}
}

// Read does a range lookup against the index, groups the result into
// per-pool batches in ascending pool_idx order (and ascending offset
// within each pool), and reads each batch under a single read guard held
// for its duration. If from > to the result is empty. A record whose
// pool was rotated out from under it between lookup and read is reported
// back as a Skipped entry rather than failing the whole request; the
// read continues with whatever follows.
//
// The context is checked between pools and between records within a
// pool, so a cancelled request releases its held guard promptly instead
// of running the remaining plan to completion.
func (r *Reader) Read(ctx context.Context, cameraID string, fromTs, toTs int64) ([]Record, []Skipped, error) {
	entries := r.index.Range(cameraID, fromTs, toTs)
	if len(entries) == 0 {
		return nil, nil, nil
	}

	entries = dedupeByStart(entries)
	batches := groupByPool(entries)

	out := make([]Record, 0, len(entries))
	var skipped []Skipped
	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			return out, skipped, err
		}

		recs, batchSkipped, err := r.readPool(ctx, batch.poolIdx, batch.entries)
		out = append(out, recs...)
		skipped = append(skipped, batchSkipped...)
		if err != nil && len(recs) == 0 {
			// The whole pool was inaccessible (sealed throughout); keep
			// going with the remaining pools rather than aborting.
			r.log.Warnw("pool unreadable for range request",
				"camera", cameraID, "pool", batch.poolIdx, "error", err)
		}
	}

	return out, skipped, nil
}

type poolBatch struct {
	poolIdx uint16
	entries []segindex.Entry
}

// groupByPool partitions entries (already sorted ascending by start_ts from
// the index) into per-pool batches, ordered first by ascending pool_idx,
// then by offset within each pool, so each batch can be served by a
// single forward-only disk pass.
func groupByPool(entries []segindex.Entry) []poolBatch {
	byPool := make(map[uint16][]segindex.Entry)
	var order []uint16
	for _, e := range entries {
		if _, seen := byPool[e.PoolIdx]; !seen {
			order = append(order, e.PoolIdx)
		}
		byPool[e.PoolIdx] = append(byPool[e.PoolIdx], e)
	}

	slices.Sort(order)

	batches := make([]poolBatch, 0, len(order))
	for _, idx := range order {
		arr := byPool[idx]
		slices.SortFunc(arr, func(a, b segindex.Entry) int {
			switch {
			case a.Offset < b.Offset:
				return -1
			case a.Offset > b.Offset:
				return 1
			default:
				return 0
			}
		})
		batches = append(batches, poolBatch{poolIdx: idx, entries: arr})
	}
	return batches
}

// dedupeByStart collapses entries sharing a (camera, start_ts) pair,
// keeping the one with the higher pool_idx. The index normally prevents
// this at insert time, but Range results are defended here too since
// they may be assembled from a rebuild that raced a write.
func dedupeByStart(entries []segindex.Entry) []segindex.Entry {
	bestByStart := make(map[int64]segindex.Entry, len(entries))
	var order []int64
	for _, e := range entries {
		cur, ok := bestByStart[e.StartUnixNs]
		if !ok {
			order = append(order, e.StartUnixNs)
			bestByStart[e.StartUnixNs] = e
			continue
		}
		if e.PoolIdx > cur.PoolIdx {
			bestByStart[e.StartUnixNs] = e
		}
	}

	out := make([]segindex.Entry, 0, len(order))
	for _, ts := range order {
		out = append(out, bestByStart[ts])
	}
	return out
}

// readPool acquires one read guard for poolIdx and issues every entry's
// positioned read under it, releasing the guard once all entries in the
// batch are served or the batch is abandoned. A pool sealed for rotation
// yields Skipped entries carrying a typed Evicted error, while a per-entry
// read failure yields a Skipped entry carrying a StorageError (rather than
// being dropped outright), so a caller can tell a record the pool rotated
// away from an unrelated I/O failure. Each entry's Offset locates its
// record header; the body is read from just past it.
func (r *Reader) readPool(ctx context.Context, poolIdx uint16, entries []segindex.Entry) ([]Record, []Skipped, error) {
	pool := r.pools.Pool(poolIdx)
	if pool == nil {
		err := errors.NewEvictedError("", 0, poolIdx)
		return nil, skipAll(entries, err), err
	}

	guard, err := pool.AcquireReadGuard()
	if err != nil {
		return nil, skipAll(entries, err), err
	}
	defer guard.Release()

	out := make([]Record, 0, len(entries))
	var skipped []Skipped
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return out, skipped, err
		}

		body := make([]byte, e.BodyLen)
		if _, err := guard.ReadAt(body, e.Offset+record.HeaderSize); err != nil {
			readErr := errors.NewStorageError(err, errors.ErrorCodeIO, "failed to read record body").
				WithPoolIdx(int(poolIdx)).WithOffset(int(e.Offset))
			r.log.Warnw("record read failed, skipping",
				"camera", e.CameraID, "pool", poolIdx, "offset", e.Offset, "error", err)
			skipped = append(skipped, Skipped{Entry: e, Err: readErr})
			continue
		}
		out = append(out, Record{Entry: e, Body: body})
	}
	return out, skipped, nil
}

func skipAll(entries []segindex.Entry, err error) []Skipped {
	skipped := make([]Skipped, len(entries))
	for i, e := range entries {
		skipped[i] = Skipped{Entry: e, Err: err}
	}
	return skipped
}
