// Package options provides data structures and functions for configuring
// the ursavr recording engine. It defines the parameters that control the
// pool-file ring's shape, the writer's queueing and rotation behavior,
// the HTTP transport, and HLS playlist generation.
package options

import (
	"strings"
	"time"
)

// Defines configurable parameters for the pool-file ring.
// It provides fine-grained control over pool behavior, capacity, and layout.
type poolOptions struct {
	// Defines the fixed size each pool file is pre-allocated to. When the
	// active pool's write offset would exceed this size, the writer rotates
	// to the next pool in the ring.
	//
	//  - Default: 1GB
	//  - Maximum: 4GB
	//  - Minimum: 512MB
	Size uint64 `json:"poolSize"`

	// Defines how many pool files make up the ring. Larger rings retain
	// more history before the oldest recordings are overwritten.
	//
	// Default: 16
	Count int `json:"poolCount"`

	// Specifies where pool files are stored.
	//
	// Default: "/var/lib/ursavr/pools"
	Directory string `json:"directory"`

	// Defines the filename prefix for pool files.
	// Final filename will be: `prefix_NNN.bin`.
	//
	// Default: "pool"
	//
	// Example: If Prefix is "cam", a pool file might be "cam_003.bin".
	Prefix string `json:"prefix"`

	// Bounds how long the writer's rotation routine waits for a pool's
	// reader count to drain to zero before proceeding with rotation anyway.
	// Recording integrity takes precedence over read completion, so this
	// is a ceiling, not a guarantee.
	//
	// Default: 5s
	RotationTimeout time.Duration `json:"rotationTimeout"`
}

// Defines the configuration parameters for the ursavr recording engine.
// It provides control over storage, writer backpressure, HTTP transport,
// and HLS playlist behavior.
type Options struct {
	// Specifies the base path where files will be stored.
	//
	// Default: "/var/lib/ursavr"
	DataDir string `json:"dataDir"`

	// Bounds the depth of the writer's submission queue. When full,
	// submitters receive a queue-full error and the segment is dropped;
	// video is realtime and stale segments have no value.
	//
	// Default: 256
	WriterQueueSize int `json:"writerQueueSize"`

	// Address the HTTP transport binds to.
	//
	// Default: ":8080"
	HTTPBind string `json:"httpBind"`

	// Number of trailing segments a live HLS playlist advertises.
	//
	// Default: 6
	LiveTailLength int `json:"liveTailLength"`

	// Path to the TOML file persisting the camera registry across restarts.
	//
	// Default: "/var/lib/ursavr/cameras.toml"
	CameraConfigPath string `json:"cameraConfigPath"`

	// Configures the pool-file ring: size, count, directory, naming, and
	// rotation timeout.
	PoolOptions *poolOptions `json:"poolOptions"`
}

// OptionFunc is a function type that modifies the engine's configuration.
type OptionFunc func(*Options)

// Applies a predefined set of default configuration values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.DataDir = opts.DataDir
		o.WriterQueueSize = opts.WriterQueueSize
		o.HTTPBind = opts.HTTPBind
		o.LiveTailLength = opts.LiveTailLength
		o.CameraConfigPath = opts.CameraConfigPath
		o.PoolOptions = opts.PoolOptions
	}
}

// Sets the primary data directory for the engine.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// Sets the depth of the writer's bounded submission queue.
func WithWriterQueueSize(size int) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.WriterQueueSize = size
		}
	}
}

// Sets the address the HTTP transport binds to.
func WithHTTPBind(addr string) OptionFunc {
	return func(o *Options) {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			o.HTTPBind = addr
		}
	}
}

// Sets how many trailing segments a live HLS playlist advertises.
func WithLiveTailLength(n int) OptionFunc {
	return func(o *Options) {
		if n > 0 {
			o.LiveTailLength = n
		}
	}
}

// Sets the path to the camera registry's persisted TOML file.
func WithCameraConfigPath(path string) OptionFunc {
	return func(o *Options) {
		path = strings.TrimSpace(path)
		if path != "" {
			o.CameraConfigPath = path
		}
	}
}

// Sets the directory specifically for storing pool files.
func WithPoolDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.PoolOptions.Directory = directory
		}
	}
}

// Sets the file name prefix for pool files.
func WithPoolPrefix(prefix string) OptionFunc {
	return func(o *Options) {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" {
			o.PoolOptions.Prefix = prefix
		}
	}
}

// Sets the fixed size of each pool file in the ring.
func WithPoolSize(size uint64) OptionFunc {
	return func(o *Options) {
		if size >= MinPoolSize && size <= MaxPoolSize {
			o.PoolOptions.Size = size
		}
	}
}

// Sets how many pool files make up the ring.
func WithPoolCount(count int) OptionFunc {
	return func(o *Options) {
		if count >= MinPoolCount && count <= MaxPoolCount {
			o.PoolOptions.Count = count
		}
	}
}

// Sets how long rotation waits for a pool's reader count to drain before
// proceeding regardless.
func WithRotationTimeout(timeout time.Duration) OptionFunc {
	return func(o *Options) {
		if timeout > 0 {
			o.PoolOptions.RotationTimeout = timeout
		}
	}
}
