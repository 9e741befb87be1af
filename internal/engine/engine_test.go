package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/onurtuna/ursavr/pkg/logger"
	"github.com/onurtuna/ursavr/pkg/options"
)

func testOptions(t *testing.T) *options.Options {
	t.Helper()
	opts := &options.Options{}
	options.WithDefaultOptions()(opts)
	opts.DataDir = t.TempDir()
	opts.PoolOptions.Size = 1 << 20
	opts.PoolOptions.Count = 2
	opts.PoolOptions.RotationTimeout = time.Second
	opts.CameraConfigPath = filepath.Join(opts.DataDir, "cameras.toml")
	return opts
}

func TestNewBringsUpAllSubsystems(t *testing.T) {
	opts := testOptions(t)

	e, err := New(context.Background(), &Config{
		Options: opts, Logger: logger.NewNop(), ConfigPath: opts.CameraConfigPath,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	if !e.Running() {
		t.Fatalf("expected engine to report running immediately after construction")
	}
	if e.Pools() == nil || e.Index() == nil || e.Reader() == nil || e.Writer() == nil || e.Cameras() == nil {
		t.Fatalf("expected all subsystems to be non-nil")
	}
}

func TestCloseStopsSubsequentOperations(t *testing.T) {
	opts := testOptions(t)

	e, err := New(context.Background(), &Config{
		Options: opts, Logger: logger.NewNop(), ConfigPath: opts.CameraConfigPath,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if e.Running() {
		t.Fatalf("expected Running() false after Close")
	}
	if err := e.Close(); err != ErrEngineClosed {
		t.Fatalf("expected ErrEngineClosed on second Close, got %v", err)
	}
}
