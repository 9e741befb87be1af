// Package camera implements the camera supervisor: a registry keyed by
// camera id that starts and stops ingestion pipelines and persists the
// camera set to the configuration file. It never touches the segment
// index or pool set directly — it only starts and stops producers of
// submissions into the writer.
package camera

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/onurtuna/ursavr/pkg/errors"
)

// Status is a camera's registry lifecycle state.
type Status string

const (
	StatusActive  Status = "active"
	StatusRemoved Status = "removed"
	StatusFailed  Status = "failed"
)

// Spec is the user-supplied description of a camera to add.
type Spec struct {
	ID                   string
	Name                 string
	URL                  string
	MaxReconnectAttempts int
}

// Info is one registry row as returned by List, disambiguated by Status
// since List returns every known camera including removed ones.
type Info struct {
	ID     string
	Name   string
	URL    string
	Status Status
}

// Pipeline is the running producer behind one registered camera. Its Run
// method blocks until ctx is cancelled or the pipeline gives up; internal/
// ingest provides the concrete implementation wired against gortsplib.
type Pipeline interface {
	Run(ctx context.Context) error
}

// PipelineFactory starts a new Pipeline for a camera spec. The supervisor
// itself is agnostic of how a pipeline pulls frames and submits segments;
// it only owns the factory call and the resulting goroutine's lifecycle.
type PipelineFactory func(spec Spec) Pipeline

// PersistFunc is called with the full current camera set after every
// successful add or remove, so internal/config can rewrite the TOML file.
type PersistFunc func(specs []Spec) error

type entry struct {
	spec     Spec
	status   Status
	cancel   context.CancelFunc
	done     chan struct{}
	sessionID string
}

// Supervisor is the camera registry.
type Supervisor struct {
	mu      sync.Mutex
	entries map[string]*entry

	newPipeline  PipelineFactory
	persist      PersistFunc
	drainTimeout time.Duration
	log          *zap.SugaredLogger
}

// Config carries the supervisor's dependencies.
type Config struct {
	NewPipeline  PipelineFactory
	Persist      PersistFunc
	DrainTimeout time.Duration
	Logger       *zap.SugaredLogger
}

// New builds an empty Supervisor. Cameras already present in the loaded
// configuration are registered via Add by the caller (internal/engine)
// during startup.
func New(cfg *Config) *Supervisor {
	timeout := cfg.DrainTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Supervisor{
		entries:      make(map[string]*entry),
		newPipeline:  cfg.NewPipeline,
		persist:      cfg.Persist,
		drainTimeout: timeout,
		log:          cfg.Logger,
	}
}

// List returns every known camera, active or removed, so a caller can
// still see why a camera stopped producing instead of it vanishing.
func (s *Supervisor) List() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Info, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, Info{ID: e.spec.ID, Name: e.spec.Name, URL: e.spec.URL, Status: e.status})
	}
	return out
}

// Add registers a camera and starts its ingestion pipeline. Fails with a
// DuplicateCamera error if an active entry with the id already exists.
func (s *Supervisor) Add(spec Spec) error {
	s.mu.Lock()

	if existing, ok := s.entries[spec.ID]; ok && existing.status == StatusActive {
		s.mu.Unlock()
		return errors.NewDuplicateCameraError(spec.ID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sessionID := uuid.NewString()
	e := &entry{spec: spec, status: StatusActive, cancel: cancel, done: make(chan struct{}), sessionID: sessionID}
	s.entries[spec.ID] = e
	s.mu.Unlock()

	pipeline := s.newPipeline(spec)
	go s.run(ctx, e, pipeline)

	s.log.Infow("camera added", "camera", spec.ID, "session", sessionID, "url", spec.URL)
	return s.persistLocked()
}

// run drives one camera's pipeline until it exits, marking the entry
// failed if it returns an error while still registered.
func (s *Supervisor) run(ctx context.Context, e *entry, pipeline Pipeline) {
	defer close(e.done)

	err := pipeline.Run(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if e.status != StatusActive {
		return
	}
	if err != nil {
		e.status = StatusFailed
		s.log.Errorw("camera pipeline exited with error", "camera", e.spec.ID, "session", e.sessionID, "error", err)
	}
}

// Remove signals the pipeline to stop and waits up to the supervisor's
// drain timeout for it to finish its last in-flight submission. Past
// the timeout the pipeline is abandoned rather than waited on further,
// so one wedged camera can't hang the whole removal.
func (s *Supervisor) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok || e.status != StatusActive {
		s.mu.Unlock()
		return errors.NewCameraNotFoundError(id)
	}
	e.status = StatusRemoved
	s.mu.Unlock()

	e.cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-e.done:
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	})

	drainCtx, drainCancel := context.WithTimeout(ctx, s.drainTimeout)
	defer drainCancel()

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case <-done:
		s.log.Infow("camera pipeline drained", "camera", id, "session", e.sessionID)
	case <-drainCtx.Done():
		s.log.Warnw("camera drain timed out, aborting pipeline hard", "camera", id, "session", e.sessionID)
	}

	return s.persistLocked()
}

func (s *Supervisor) persistLocked() error {
	if s.persist == nil {
		return nil
	}

	s.mu.Lock()
	specs := make([]Spec, 0, len(s.entries))
	for _, e := range s.entries {
		if e.status == StatusActive {
			specs = append(specs, e.spec)
		}
	}
	s.mu.Unlock()

	return s.persist(specs)
}

// Shutdown cancels every active pipeline without waiting for drain; it is
// used only during process shutdown, before the writer is closed.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.status == StatusActive {
			e.cancel()
		}
	}
}
