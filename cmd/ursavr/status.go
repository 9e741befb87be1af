package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/onurtuna/ursavr/pkg/options"
)

// runStatus fetches /api/status from a running record daemon and prints
// the raw JSON response.
func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	configPath := fs.String("config", options.DefaultCameraConfigPath, "path to the TOML config file")
	if err := fs.Parse(args); err != nil {
		return exitArgs
	}

	addr, err := resolveAddr(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		return exitConfig
	}

	return get(addr, "/api/status")
}
