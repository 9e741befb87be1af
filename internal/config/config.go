// Package config loads and saves the engine's persisted TOML state:
// pool/ring sizing, the HTTP bind address, and the camera set, rewritten
// atomically on every camera add/remove so a crash mid-write never
// leaves a half-written config file behind.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/onurtuna/ursavr/internal/camera"
	"github.com/onurtuna/ursavr/pkg/errors"
)

// CameraEntry is one camera's persisted row.
type CameraEntry struct {
	ID                   string `toml:"id"`
	Name                 string `toml:"name"`
	URL                  string `toml:"url"`
	MaxReconnectAttempts int    `toml:"max_reconnect_attempts"`
}

// File is the full on-disk TOML document.
type File struct {
	DataDir         string        `toml:"data_dir"`
	PoolSize        uint64        `toml:"pool_size_bytes"`
	PoolCount       int           `toml:"pool_count"`
	HTTPBind        string        `toml:"http_bind"`
	WriterQueueSize int           `toml:"writer_queue_size"`
	LiveTailLength  int           `toml:"live_tail_length"`
	Cameras         []CameraEntry `toml:"cameras"`
}

// Load reads and parses the TOML config at path. A missing file is not an
// error: it returns a zero-value File so the caller can fall back to
// defaults on first run.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &File{}, nil
	}
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to read config file").
			WithDetail("path", path)
	}

	var f File
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, errors.NewValidationError(err, errors.ErrorCodeInvalidInput, "failed to parse config TOML").
			WithField("path").WithProvided(path)
	}
	return &f, nil
}

// Save writes f to path atomically: encode to a temp file in the same
// directory, then os.Rename over the original, so a reader never
// observes a partially-written config file.
func Save(path string, f *File) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to create temp config file").
			WithDetail("dir", dir)
	}
	tmpPath := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(f); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to encode config TOML")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to sync temp config file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to close temp config file")
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to rename temp config file into place").
			WithDetail("path", path)
	}
	return nil
}

// CameraSpecs converts the persisted camera rows into camera.Spec values
// the supervisor can Add directly.
func (f *File) CameraSpecs() []camera.Spec {
	out := make([]camera.Spec, 0, len(f.Cameras))
	for _, c := range f.Cameras {
		out = append(out, camera.Spec{
			ID: c.ID, Name: c.Name, URL: c.URL, MaxReconnectAttempts: c.MaxReconnectAttempts,
		})
	}
	return out
}

// PersistCameras returns a camera.PersistFunc that rewrites only the
// camera rows of the config file at path, leaving the rest of the
// document (pool sizing, HTTP bind) untouched.
func PersistCameras(path string) camera.PersistFunc {
	return func(specs []camera.Spec) error {
		f, err := Load(path)
		if err != nil {
			return err
		}

		rows := make([]CameraEntry, 0, len(specs))
		for _, s := range specs {
			rows = append(rows, CameraEntry{
				ID: s.ID, Name: s.Name, URL: s.URL, MaxReconnectAttempts: s.MaxReconnectAttempts,
			})
		}
		f.Cameras = rows

		return Save(path, f)
	}
}
