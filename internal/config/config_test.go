package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/onurtuna/ursavr/internal/camera"
)

func TestLoadMissingFileYieldsZeroValue(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.PoolCount != 0 || len(f.Cameras) != 0 {
		t.Fatalf("expected zero-value File, got %+v", f)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	want := &File{
		DataDir:         "/var/lib/ursavr",
		PoolSize:        1 << 30,
		PoolCount:       16,
		HTTPBind:        ":8080",
		WriterQueueSize: 256,
		LiveTailLength:  6,
		Cameras: []CameraEntry{
			{ID: "cam1", Name: "Front Door", URL: "rtsp://cam1", MaxReconnectAttempts: 5},
		},
	}

	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.PoolCount != want.PoolCount || got.HTTPBind != want.HTTPBind {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if len(got.Cameras) != 1 || got.Cameras[0].ID != "cam1" {
		t.Fatalf("camera rows not round-tripped: %+v", got.Cameras)
	}
}

func TestSaveLeavesNoTempFilesBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := Save(path, &File{PoolCount: 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "config.toml" {
		t.Fatalf("expected only config.toml in dir, got %+v", entries)
	}
}

func TestPersistCamerasRewritesOnlyCameraRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(path, &File{PoolCount: 16, HTTPBind: ":9090"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	persist := PersistCameras(path)
	if err := persist([]camera.Spec{{ID: "cam1", URL: "rtsp://cam1"}}); err != nil {
		t.Fatalf("persist: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.PoolCount != 16 || got.HTTPBind != ":9090" {
		t.Fatalf("non-camera fields were clobbered: %+v", got)
	}
	if len(got.Cameras) != 1 || got.Cameras[0].ID != "cam1" {
		t.Fatalf("camera rows not persisted: %+v", got.Cameras)
	}
}
