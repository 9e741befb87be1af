// Package poolset manages the fixed ring of pre-allocated pool files that
// back the recording engine's storage: opening and sizing them on startup,
// and gating concurrent readers against the writer's rotation so that no
// reader ever observes a pool file mid-overwrite.
package poolset

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/onurtuna/ursavr/pkg/errors"
)

// Pool is a single member of the ring: one pre-allocated file, its reader
// gate, and the sealed flag that blocks new read guards during rotation's
// index-mutation window.
type Pool struct {
	idx      uint16
	path     string
	file     *os.File
	size     int64
	readers  atomic.Int32
	sealed   atomic.Bool
}

// Idx returns the pool's position in the ring.
func (p *Pool) Idx() uint16 { return p.idx }

// Path returns the pool file's path on disk.
func (p *Pool) Path() string { return p.path }

// Size returns the pool's fixed, pre-allocated size in bytes.
func (p *Pool) Size() int64 { return p.size }

// ReaderCount returns the number of read guards currently held on this pool.
func (p *Pool) ReaderCount() int32 { return p.readers.Load() }

// Seal blocks any new read guard from being acquired. Guards already held
// are unaffected; Seal only stops the count from growing further.
func (p *Pool) Seal() { p.sealed.Store(true) }

// Unseal allows new read guards to be acquired again.
func (p *Pool) Unseal() { p.sealed.Store(false) }

// ReadGuard is a scoped permission to issue positioned reads against a
// pool's file. Rotation of that pool cannot complete while any guard
// issued for it remains unreleased, short of the bounded rotation timeout.
type ReadGuard struct {
	pool *Pool
}

// ReadAt performs a positioned read against the guarded pool's file.
func (g *ReadGuard) ReadAt(buf []byte, offset int64) (int, error) {
	return g.pool.file.ReadAt(buf, offset)
}

// Release decrements the pool's reader count. It must be called exactly
// once per guard, on every exit path — success, error, cancellation, or
// timeout.
func (g *ReadGuard) Release() {
	g.pool.readers.Add(-1)
}

// AcquireReadGuard grants a read guard if the pool is not currently sealed.
// Acquisition itself is lock-free: verify-then-increment, racing rotation's
// Seal the same way any optimistic read path races a writer — the worst
// case is one extra guard outstanding during a seal, which rotation's
// bounded drain wait already tolerates.
func (p *Pool) AcquireReadGuard() (*ReadGuard, error) {
	if p.sealed.Load() {
		return nil, errors.NewRecordingError(
			nil, errors.ErrorCodeEvicted, "pool is sealed for rotation",
		).WithPoolIdx(p.idx)
	}
	p.readers.Add(1)
	return &ReadGuard{pool: p}, nil
}

// WriteAt performs a positioned write against the pool's file. Only the
// writer holding the active pool may call this.
func (p *Pool) WriteAt(buf []byte, offset int64) (int, error) {
	return p.file.WriteAt(buf, offset)
}

// ReadAt performs a positioned read without a guard, for internal callers
// (startup scan) that run before any reader/writer concurrency exists.
func (p *Pool) ReadAt(buf []byte, offset int64) (int, error) {
	return p.file.ReadAt(buf, offset)
}

// Sync flushes the pool file's contents to stable storage.
func (p *Pool) Sync() error {
	return p.file.Sync()
}

// EnsureSize verifies the file is still pre-allocated to its configured
// size, re-truncating it if a prior run left it short (e.g. the file was
// recreated after being removed out-of-band).
func (p *Pool) EnsureSize() error {
	fi, err := p.file.Stat()
	if err != nil {
		return err
	}
	if fi.Size() == p.size {
		return nil
	}
	return p.file.Truncate(p.size)
}

// WaitForDrain polls the pool's reader count until it reaches zero or
// timeout elapses. A non-nil error means the timeout elapsed with readers
// still outstanding — callers (the writer's rotation routine) proceed
// regardless per spec: recording integrity takes precedence over read
// completion, and in-flight readers of an overwritten pool will simply
// observe a corrupted or unexpected record.
func (p *Pool) WaitForDrain(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	const pollInterval = 10 * time.Millisecond

	for {
		if p.readers.Load() == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return errors.NewRecordingError(
				nil, errors.ErrorCodeEvicted, "rotation timed out waiting for readers to drain",
			).WithPoolIdx(p.idx).WithDetail("timeout", timeout.String())
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// Close releases the pool's file handle.
func (p *Pool) Close() error {
	return p.file.Close()
}
