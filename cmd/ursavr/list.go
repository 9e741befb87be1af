package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/onurtuna/ursavr/pkg/options"
)

// runList fetches /api/list?camera=...&from=...&to=... from a running
// record daemon and prints the raw JSON response.
func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	configPath := fs.String("config", options.DefaultCameraConfigPath, "path to the TOML config file")
	camera := fs.String("camera", "", "camera id (required)")
	from := fs.String("from", "", "range start, unix seconds or ISO-8601")
	to := fs.String("to", "", "range end, unix seconds or ISO-8601")
	if err := fs.Parse(args); err != nil {
		return exitArgs
	}
	if *camera == "" {
		fmt.Fprintln(os.Stderr, "list: --camera is required")
		return exitArgs
	}

	addr, err := resolveAddr(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		return exitConfig
	}

	query := buildQuery(map[string]string{"camera": *camera, "from": *from, "to": *to})
	return get(addr, "/api/list"+query)
}
