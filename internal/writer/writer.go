// Package writer implements the single global chunk writer: the one task
// that owns the active pool's write cursor, drains a bounded queue of
// record submissions from every camera's ingestion pipeline, appends them
// sequentially, updates the segment index, and rotates pools when the
// active one is full.
//
// A single writer is deliberate: on spinning disks, N concurrent writers
// create seek storms, while one writer keeps the head moving in one
// direction. The cost is that all cameras share backpressure — a slow
// disk affects everyone equally, which is the correct degradation.
package writer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/onurtuna/ursavr/internal/poolset"
	"github.com/onurtuna/ursavr/internal/record"
	"github.com/onurtuna/ursavr/internal/segindex"
	"github.com/onurtuna/ursavr/pkg/errors"
	"github.com/onurtuna/ursavr/pkg/options"
	"go.uber.org/zap"
)

// submission is one enqueued record awaiting the writer's drain loop.
type submission struct {
	cameraID   string
	body       []byte
	startTs    int64
	durationMs uint32
}

// Writer owns the active pool's write cursor and the single goroutine that
// drains the submission queue in strict enqueue order.
type Writer struct {
	queue chan submission

	pools *poolset.Set
	index *segindex.Index
	opts  *options.Options
	log   *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc

	closed atomic.Bool
	wg     sync.WaitGroup

	dropsMu sync.Mutex
	drops   map[string]int64
}

// Config carries everything the writer needs: the pool ring and index it
// mutates, plus the options governing queue depth and rotation timeout.
type Config struct {
	Pools   *poolset.Set
	Index   *segindex.Index
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New builds a Writer and starts its drain loop. The cursor is assumed to
// already be positioned correctly on pools (internal/engine sets it from
// the startup rebuild before calling New).
func New(ctx context.Context, cfg *Config) (*Writer, error) {
	if cfg == nil || cfg.Pools == nil || cfg.Index == nil || cfg.Options == nil || cfg.Logger == nil {
		return nil, fmt.Errorf("invalid writer configuration")
	}

	wctx, cancel := context.WithCancel(ctx)
	w := &Writer{
		queue:  make(chan submission, cfg.Options.WriterQueueSize),
		pools:  cfg.Pools,
		index:  cfg.Index,
		opts:   cfg.Options,
		log:    cfg.Logger,
		ctx:    wctx,
		cancel: cancel,
		drops:  make(map[string]int64),
	}

	w.log.Infow("starting writer",
		"queueSize", cfg.Options.WriterQueueSize,
		"activePool", cfg.Pools.ActiveIdx(),
		"activeOffset", cfg.Pools.ActiveOffset(),
	)

	w.wg.Add(1)
	go w.drain()

	return w, nil
}

// Submit is the writer's only write-path entry point: non-blocking,
// returning immediately with either acceptance or a queue-full/unavailable
// error. Video is realtime, so a full queue drops the segment rather than
// blocking the caller.
func (w *Writer) Submit(cameraID string, body []byte, startTs int64, durationMs uint32) error {
	if w.closed.Load() {
		return errors.NewWriterUnavailableError()
	}

	if int64(record.HeaderSize+len(body)) > w.pools.PoolSize() {
		return errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "segment body exceeds pool size",
		).WithField("body").WithRule("max_size").
			WithProvided(len(body)).WithExpected(w.pools.PoolSize() - record.HeaderSize)
	}

	select {
	case w.queue <- submission{cameraID: cameraID, body: body, startTs: startTs, durationMs: durationMs}:
		return nil
	default:
		w.recordDrop(cameraID)
		return errors.NewQueueFullError(cameraID)
	}
}

func (w *Writer) recordDrop(cameraID string) {
	w.dropsMu.Lock()
	w.drops[cameraID]++
	w.dropsMu.Unlock()
	w.log.Warnw("writer queue full, dropping segment", "camera", cameraID)
}

// DropCount returns how many segments have been dropped for a camera due
// to a full submission queue.
func (w *Writer) DropCount(cameraID string) int64 {
	w.dropsMu.Lock()
	defer w.dropsMu.Unlock()
	return w.drops[cameraID]
}

// drain is the writer's single long-lived task. It processes submissions
// strictly in the order they were enqueued until the queue channel is
// closed by Close and fully drained.
func (w *Writer) drain() {
	defer w.wg.Done()
	for sub := range w.queue {
		if err := w.appendRecord(sub); err != nil {
			w.log.Errorw("failed to append record",
				"camera", sub.cameraID, "startTs", sub.startTs, "error", err)
		}
	}
}

// appendRecord performs one record's append: rotate if needed, write
// header+body at the active cursor, insert the index entry, then
// advance the cursor.
func (w *Writer) appendRecord(sub submission) error {
	needed := int64(record.HeaderSize + len(sub.body))

	if w.pools.ActiveOffset()+needed > w.pools.PoolSize() {
		if err := w.rotate(); err != nil {
			w.log.Errorw("rotation failed, attempting to continue", "error", err)
		}
	}

	activeIdx := w.pools.ActiveIdx()
	pool := w.pools.Pool(activeIdx)
	offset := w.pools.ActiveOffset()

	raw := record.Encode(sub.cameraID, sub.startTs, sub.durationMs, sub.body)
	if _, err := pool.WriteAt(raw, offset); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to append record").
			WithPoolIdx(int(activeIdx)).WithOffset(int(offset))
	}

	w.index.Insert(segindex.Entry{
		CameraID:    sub.cameraID,
		StartUnixNs: sub.startTs,
		DurationMs:  sub.durationMs,
		PoolIdx:     activeIdx,
		Offset:      offset,
		BodyLen:     uint32(len(sub.body)),
	})

	w.pools.AdvanceOffset(int64(len(raw)))
	return nil
}

// Close stops accepting new submissions, drains whatever remains queued,
// flushes the active pool once, and waits for the drain loop to exit.
// Writer operations are not cancellable mid-append, so shutdown always
// finishes draining the queue rather than aborting it.
func (w *Writer) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}

	close(w.queue)
	w.wg.Wait()
	w.cancel()

	active := w.pools.Pool(w.pools.ActiveIdx())
	if err := active.Sync(); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to sync active pool on shutdown").
			WithPoolIdx(int(active.Idx()))
	}

	w.log.Infow("writer closed cleanly")
	return nil
}
