package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/onurtuna/ursavr/internal/config"
	"github.com/onurtuna/ursavr/internal/engine"
	"github.com/onurtuna/ursavr/internal/httpapi"
	"github.com/onurtuna/ursavr/pkg/logger"
	"github.com/onurtuna/ursavr/pkg/options"
)

// runRecord brings up the engine and HTTP transport and blocks until a
// termination signal arrives, at which point it drains the writer queue
// and fsyncs once before exiting.
func runRecord(args []string) int {
	fs := flag.NewFlagSet("record", flag.ContinueOnError)
	configPath := fs.String("config", options.DefaultCameraConfigPath, "path to the TOML config file")
	if err := fs.Parse(args); err != nil {
		return exitArgs
	}

	opts, err := loadOptions(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		return exitConfig
	}

	log := logger.New("ursavr")
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	e, err := engine.New(ctx, &engine.Config{Options: opts, Logger: log, ConfigPath: *configPath})
	if err != nil {
		fmt.Fprintln(os.Stderr, "engine startup failed:", err)
		return exitIO
	}

	server := httpapi.New(e, log)
	httpSrv := &http.Server{Addr: opts.HTTPBind, Handler: server.Handler()}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw("http server stopped unexpectedly", "error", err)
		}
	}()

	log.Infow("ursavr recording", "bind", opts.HTTPBind, "dataDir", opts.DataDir)

	<-ctx.Done()
	log.Infow("shutdown signal received, draining")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)

	if err := e.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "shutdown error:", err)
		return exitIO
	}

	return exitSuccess
}

// loadOptions builds an options.Options from the persisted TOML config,
// falling back to defaults for any field the file doesn't set.
func loadOptions(configPath string) (*options.Options, error) {
	file, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	opts := &options.Options{}
	options.WithDefaultOptions()(opts)
	options.WithDataDir(file.DataDir)(opts)
	options.WithHTTPBind(file.HTTPBind)(opts)
	options.WithWriterQueueSize(file.WriterQueueSize)(opts)
	options.WithLiveTailLength(file.LiveTailLength)(opts)
	options.WithPoolSize(file.PoolSize)(opts)
	options.WithPoolCount(file.PoolCount)(opts)
	opts.CameraConfigPath = configPath

	return opts, nil
}
