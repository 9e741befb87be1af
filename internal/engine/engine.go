// Package engine is the top-level coordinator: it constructs the pool
// ring, rebuilds the segment index from disk, starts the writer and
// reader, brings up the camera supervisor from the persisted config, and
// exposes a single Close that shuts every subsystem down in dependency
// order.
package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/onurtuna/ursavr/internal/camera"
	"github.com/onurtuna/ursavr/internal/config"
	"github.com/onurtuna/ursavr/internal/ingest"
	"github.com/onurtuna/ursavr/internal/poolset"
	"github.com/onurtuna/ursavr/internal/reader"
	"github.com/onurtuna/ursavr/internal/segindex"
	"github.com/onurtuna/ursavr/internal/writer"
	"github.com/onurtuna/ursavr/pkg/options"
)

// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
var ErrEngineClosed = errors.New("operation failed: cannot access closed engine")

// Engine coordinates every subsystem of the recording system and is the
// only component internal/httpapi and cmd/ursavr depend on directly.
type Engine struct {
	options *options.Options
	log     *zap.SugaredLogger
	closed  atomic.Bool

	pools      *poolset.Set
	index      *segindex.Index
	writer     *writer.Writer
	reader     *reader.Reader
	supervisor *camera.Supervisor

	configPath string
}

// Config holds everything needed to construct an Engine.
type Config struct {
	Options    *options.Options
	Logger     *zap.SugaredLogger
	ConfigPath string
}

// New brings up every subsystem in dependency order: pool ring, then a
// startup rebuild of the segment index from those pools, then the writer
// and reader on top, then the camera supervisor seeded from the persisted
// config file.
func New(ctx context.Context, cfg *Config) (*Engine, error) {
	pools, err := poolset.Open(&poolset.Config{Options: cfg.Options, Logger: cfg.Logger})
	if err != nil {
		return nil, err
	}

	idx := segindex.New(&segindex.Config{Logger: cfg.Logger})

	cursor, corrupted, err := segindex.Rebuild(idx, pools.All())
	if err != nil {
		pools.Close()
		return nil, err
	}
	pools.SetActive(cursor.PoolIdx, cursor.Offset)
	cfg.Logger.Infow("startup rebuild complete",
		"activePool", cursor.PoolIdx, "activeOffset", cursor.Offset, "corrupted", corrupted)

	w, err := writer.New(ctx, &writer.Config{
		Pools: pools, Index: idx, Options: cfg.Options, Logger: cfg.Logger,
	})
	if err != nil {
		pools.Close()
		return nil, err
	}

	r := reader.New(&reader.Config{Pools: pools, Index: idx, Logger: cfg.Logger})

	e := &Engine{
		options:    cfg.Options,
		log:        cfg.Logger,
		pools:      pools,
		index:      idx,
		writer:     w,
		reader:     r,
		configPath: cfg.ConfigPath,
	}

	persist := config.PersistCameras(cfg.ConfigPath)
	e.supervisor = camera.New(&camera.Config{
		NewPipeline:  e.newPipeline,
		Persist:      persist,
		DrainTimeout: 5 * time.Second,
		Logger:       cfg.Logger,
	})

	if persisted, err := config.Load(cfg.ConfigPath); err == nil {
		for _, spec := range persisted.CameraSpecs() {
			if err := e.supervisor.Add(spec); err != nil {
				cfg.Logger.Warnw("failed to re-add persisted camera at startup",
					"camera", spec.ID, "error", err)
			}
		}
	}

	return e, nil
}

// newPipeline adapts internal/ingest's Pipeline to internal/camera's
// PipelineFactory, closing over the writer's Submit so ingest never needs
// to know about the writer type itself.
func (e *Engine) newPipeline(spec camera.Spec) camera.Pipeline {
	return ingest.New(ingest.Config{
		CameraID:             spec.ID,
		URL:                  spec.URL,
		MaxReconnectAttempts: spec.MaxReconnectAttempts,
		Submit:               e.writer.Submit,
		Logger:               e.log,
	})
}

// Running reports whether the writer is still accepting submissions. The
// HTTP layer checks this before answering any endpoint that touches the
// writer or reader, returning 503 if false.
func (e *Engine) Running() bool {
	return !e.closed.Load()
}

// Pools, Index, Reader, Writer, and Cameras expose the subsystems the HTTP
// layer and CLI need direct access to.
func (e *Engine) Pools() *poolset.Set         { return e.pools }
func (e *Engine) Index() *segindex.Index      { return e.index }
func (e *Engine) Reader() *reader.Reader      { return e.reader }
func (e *Engine) Writer() *writer.Writer      { return e.writer }
func (e *Engine) Cameras() *camera.Supervisor { return e.supervisor }
func (e *Engine) Options() *options.Options   { return e.options }

// Close shuts down every subsystem, collecting errors from each rather
// than aborting at the first failure, so a writer sync failure doesn't
// prevent the pool set or index from also being released.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	e.supervisor.Shutdown()

	var errs error
	errs = multierr.Append(errs, e.writer.Close())
	errs = multierr.Append(errs, e.index.Close())
	errs = multierr.Append(errs, e.pools.Close())

	if errs != nil {
		e.log.Errorw("engine shutdown completed with errors", "error", errs)
	} else {
		e.log.Infow("engine shut down cleanly")
	}
	return errs
}
