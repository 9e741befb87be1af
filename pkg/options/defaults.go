package options

import "time"

const (
	// Specifies the default base directory where ursavr will store its data files.
	// If no other directory is specified during initialization, this path will be used.
	DefaultDataDir = "/var/lib/ursavr"

	// Represents the minimum allowed size for a pool file in bytes (512MB).
	MinPoolSize uint64 = 512 * 1024 * 1024

	// Represents the maximum allowed size for a pool file in bytes (4GB).
	MaxPoolSize uint64 = 4 * 1024 * 1024 * 1024

	// Specifies the default target size for a pool file in bytes (1GB).
	DefaultPoolSize uint64 = 1 * 1024 * 1024 * 1024

	// Represents the minimum number of pool files in the ring.
	MinPoolCount = 2

	// Represents the maximum number of pool files in the ring.
	MaxPoolCount = 4096

	// Specifies the default number of pool files in the ring.
	DefaultPoolCount = 16

	// Specifies the default subdirectory within the main data directory
	// where pool files will be stored.
	DefaultPoolDirectory = "/pools"

	// Defines the default prefix for pool file names.
	// For example, a pool file might be named "pool_003.bin".
	DefaultPoolPrefix = "pool"

	// Defines the default bound on how long rotation waits for a pool's
	// reader count to drain before proceeding regardless.
	DefaultRotationTimeout = 5 * time.Second

	// Defines the default depth of the writer's bounded submission queue.
	DefaultWriterQueueSize = 256

	// Specifies the default address the HTTP transport binds to.
	DefaultHTTPBind = ":8080"

	// Specifies the default number of trailing segments a live HLS
	// playlist advertises.
	DefaultLiveTailLength = 6

	// Specifies the default path to the camera registry's persisted TOML file.
	DefaultCameraConfigPath = "/var/lib/ursavr/cameras.toml"
)

// Holds the default configuration settings for an ursavr instance.
var defaultOptions = Options{
	DataDir:          DefaultDataDir,
	WriterQueueSize:  DefaultWriterQueueSize,
	HTTPBind:         DefaultHTTPBind,
	LiveTailLength:   DefaultLiveTailLength,
	CameraConfigPath: DefaultCameraConfigPath,
	PoolOptions: &poolOptions{
		Size:            DefaultPoolSize,
		Count:           DefaultPoolCount,
		Prefix:          DefaultPoolPrefix,
		Directory:       DefaultPoolDirectory,
		RotationTimeout: DefaultRotationTimeout,
	},
}

func NewDefaultOptions() Options {
	return defaultOptions
}
