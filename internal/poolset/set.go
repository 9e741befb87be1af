package poolset

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/onurtuna/ursavr/pkg/errors"
	"github.com/onurtuna/ursavr/pkg/filesys"
	"github.com/onurtuna/ursavr/pkg/options"
	"go.uber.org/zap"
)

// Set is the fixed ring of N pre-allocated pool files plus the active-pool
// cursor. Only the writer (internal/writer) advances the cursor; readers
// and the HTTP status endpoint only ever load it.
type Set struct {
	pools []*Pool

	activeIdx    atomic.Uint32
	activeOffset atomic.Int64

	opts *options.Options
	log  *zap.SugaredLogger
}

// Config carries everything needed to open a Set.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// Open creates the pool directory if needed, opens (or creates) every pool
// file in the ring at its configured fixed size, and returns the Set with
// its cursor at pool 0, offset 0 — callers that need to resume from a prior
// run must call SetActive after an index rebuild determines the true
// cursor position.
func Open(cfg *Config) (*Set, error) {
	if cfg == nil || cfg.Options == nil || cfg.Logger == nil {
		return nil, fmt.Errorf("invalid poolset configuration")
	}

	poolDir := filepath.Join(cfg.Options.DataDir, cfg.Options.PoolOptions.Directory)
	if err := filesys.CreateDir(poolDir, 0755, true); err != nil {
		return nil, errors.NewStorageError(
			err, errors.ErrorCodeIO, "failed to create pool directory",
		).WithPath(poolDir).WithDetail("permission", "0755")
	}

	count := cfg.Options.PoolOptions.Count
	size := int64(cfg.Options.PoolOptions.Size)

	cfg.Logger.Infow("opening pool set",
		"dir", poolDir, "count", count, "sizeBytes", size)

	pools := make([]*Pool, count)
	for i := 0; i < count; i++ {
		idx := uint16(i)
		name := fmt.Sprintf("%s_%03d.bin", cfg.Options.PoolOptions.Prefix, idx)
		path := filepath.Join(poolDir, name)

		f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
		if err != nil {
			return nil, errors.NewStorageError(
				err, errors.ErrorCodeIO, "failed to open pool file",
			).WithFileName(name).WithPath(path).WithPoolIdx(i)
		}

		pool := &Pool{idx: idx, path: path, file: f, size: size}
		if err := pool.EnsureSize(); err != nil {
			return nil, errors.NewStorageError(
				err, errors.ErrorCodeIO, "failed to pre-allocate pool file",
			).WithFileName(name).WithPath(path).WithPoolIdx(i)
		}

		pools[i] = pool
	}

	cfg.Logger.Infow("pool set opened", "poolCount", len(pools))

	return &Set{pools: pools, opts: cfg.Options, log: cfg.Logger}, nil
}

// Count returns how many pool files make up the ring.
func (s *Set) Count() int { return len(s.pools) }

// PoolSize returns the fixed size every pool file is pre-allocated to.
func (s *Set) PoolSize() int64 {
	if len(s.pools) == 0 {
		return 0
	}
	return s.pools[0].size
}

// Pool returns the pool at the given ring index.
func (s *Set) Pool(idx uint16) *Pool {
	return s.pools[idx]
}

// All returns every pool in ring order, for startup index rebuild.
func (s *Set) All() []*Pool {
	return s.pools
}

// ActiveIdx returns the ring index the writer is currently appending to.
func (s *Set) ActiveIdx() uint16 { return uint16(s.activeIdx.Load()) }

// ActiveOffset returns the write offset within the active pool.
func (s *Set) ActiveOffset() int64 { return s.activeOffset.Load() }

// ActivePct returns how full the active pool is, in [0, 1].
func (s *Set) ActivePct() float64 {
	size := s.PoolSize()
	if size == 0 {
		return 0
	}
	return float64(s.ActiveOffset()) / float64(size)
}

// SetActive repositions the cursor, used once at startup after the index
// rebuild determines which pool holds the most recent record and at what
// offset writing should resume.
func (s *Set) SetActive(idx uint16, offset int64) {
	s.activeIdx.Store(uint32(idx))
	s.activeOffset.Store(offset)
}

// AdvanceOffset moves the active offset forward by n bytes after a
// successful append. Only the writer goroutine calls this.
func (s *Set) AdvanceOffset(n int64) {
	s.activeOffset.Add(n)
}

// NextIdx returns the ring index that would become active after a
// rotation from the current active index.
func (s *Set) NextIdx() uint16 {
	return uint16((int(s.ActiveIdx()) + 1) % len(s.pools))
}

// Close closes every pool file handle in the ring.
func (s *Set) Close() error {
	var firstErr error
	for _, p := range s.pools {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
