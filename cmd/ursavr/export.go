package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/onurtuna/ursavr/pkg/options"
)

// runExport fetches /api/export?camera=...&from=...&to=... from a
// running record daemon and streams the concatenated MPEG-TS body to
// stdout, so it can be piped straight into a file or player.
func runExport(args []string) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	configPath := fs.String("config", options.DefaultCameraConfigPath, "path to the TOML config file")
	camera := fs.String("camera", "", "camera id (required)")
	from := fs.String("from", "", "range start, unix seconds or ISO-8601 (required)")
	to := fs.String("to", "", "range end, unix seconds or ISO-8601 (required)")
	if err := fs.Parse(args); err != nil {
		return exitArgs
	}
	if *camera == "" || *from == "" || *to == "" {
		fmt.Fprintln(os.Stderr, "export: --camera, --from, and --to are required")
		return exitArgs
	}

	addr, err := resolveAddr(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		return exitConfig
	}

	query := buildQuery(map[string]string{"camera": *camera, "from": *from, "to": *to})
	return get(addr, "/api/export"+query)
}
