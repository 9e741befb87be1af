package poolset

import (
	"context"
	"testing"
	"time"

	"github.com/onurtuna/ursavr/pkg/logger"
	"github.com/onurtuna/ursavr/pkg/options"
)

func testOptions(t *testing.T, poolSize uint64, poolCount int) *options.Options {
	t.Helper()
	opts := &options.Options{}
	options.WithDefaultOptions()(opts)
	opts.DataDir = t.TempDir()
	opts.PoolOptions.Size = poolSize
	opts.PoolOptions.Count = poolCount
	opts.PoolOptions.RotationTimeout = 200 * time.Millisecond
	return opts
}

func TestOpenPreallocatesPools(t *testing.T) {
	opts := testOptions(t, 1<<20, 3)
	set, err := Open(&Config{Options: opts, Logger: logger.NewNop()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer set.Close()

	if set.Count() != 3 {
		t.Fatalf("count = %d, want 3", set.Count())
	}
	for i := 0; i < 3; i++ {
		p := set.Pool(uint16(i))
		fi, err := p.file.Stat()
		if err != nil {
			t.Fatalf("stat pool %d: %v", i, err)
		}
		if fi.Size() != int64(1<<20) {
			t.Errorf("pool %d size = %d, want %d", i, fi.Size(), 1<<20)
		}
	}
}

func TestReadGuardBlocksWhileSealed(t *testing.T) {
	opts := testOptions(t, 1<<16, 2)
	set, err := Open(&Config{Options: opts, Logger: logger.NewNop()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer set.Close()

	p := set.Pool(0)
	p.Seal()
	if _, err := p.AcquireReadGuard(); err == nil {
		t.Fatalf("expected sealed pool to refuse a read guard")
	}

	p.Unseal()
	guard, err := p.AcquireReadGuard()
	if err != nil {
		t.Fatalf("AcquireReadGuard: %v", err)
	}
	if p.ReaderCount() != 1 {
		t.Fatalf("reader count = %d, want 1", p.ReaderCount())
	}
	guard.Release()
	if p.ReaderCount() != 0 {
		t.Fatalf("reader count after release = %d, want 0", p.ReaderCount())
	}
}

func TestWaitForDrainTimesOutWithOutstandingReader(t *testing.T) {
	opts := testOptions(t, 1<<16, 2)
	set, err := Open(&Config{Options: opts, Logger: logger.NewNop()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer set.Close()

	p := set.Pool(1)
	guard, err := p.AcquireReadGuard()
	if err != nil {
		t.Fatalf("AcquireReadGuard: %v", err)
	}
	defer guard.Release()

	err = p.WaitForDrain(context.Background(), 30*time.Millisecond)
	if err == nil {
		t.Fatalf("expected WaitForDrain to time out with an outstanding guard")
	}
}

func TestWaitForDrainSucceedsOnceReleased(t *testing.T) {
	opts := testOptions(t, 1<<16, 2)
	set, err := Open(&Config{Options: opts, Logger: logger.NewNop()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer set.Close()

	p := set.Pool(1)
	guard, err := p.AcquireReadGuard()
	if err != nil {
		t.Fatalf("AcquireReadGuard: %v", err)
	}
	go func() {
		time.Sleep(10 * time.Millisecond)
		guard.Release()
	}()

	if err := p.WaitForDrain(context.Background(), 200*time.Millisecond); err != nil {
		t.Fatalf("WaitForDrain: %v", err)
	}
}
