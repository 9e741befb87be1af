// Package logger builds the structured loggers shared by every subsystem
// in ursavr. New builds a production-config zap logger (ISO8601 timestamps,
// capitalised levels) tagged with the owning service's name, handed out as a
// *zap.SugaredLogger so call sites can use the Infow/Errorw/Warnw key-value
// style used throughout the engine, writer, and reader packages; NewNop
// builds a discarding logger for tests.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a SugaredLogger scoped to the given service name. The name is
// attached as a permanent "service" field so log lines from the writer,
// reader, camera supervisor, and HTTP layer can be told apart once they're
// interleaved on a single output stream.
func New(service string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	log, err := cfg.Build()
	if err != nil {
		// Building the production config should never fail; fall back to a
		// no-op logger rather than panic at process startup.
		log = zap.NewNop()
	}

	return log.Sugar().With("service", service)
}

// NewNop returns a logger that discards everything, for tests that need a
// *zap.SugaredLogger argument but don't care about its output.
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
