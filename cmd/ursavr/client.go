package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/onurtuna/ursavr/internal/config"
	"github.com/onurtuna/ursavr/pkg/options"
)

// resolveAddr turns a --config path into the base HTTP URL of the daemon
// it describes, so status/list/export never need their own separate
// address flag in the common case.
func resolveAddr(configPath string) (string, error) {
	file, err := config.Load(configPath)
	if err != nil {
		return "", err
	}

	bind := file.HTTPBind
	if bind == "" {
		bind = options.DefaultHTTPBind
	}
	if bind[0] == ':' {
		bind = "127.0.0.1" + bind
	}
	return "http://" + bind, nil
}

// get issues a GET request against path (already including any query
// string) and streams the response body to stdout, returning a process
// exit code.
func get(addr, path string) int {
	resp, err := http.Get(addr + path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request failed:", err)
		return exitIO
	}
	defer resp.Body.Close()

	if _, err := io.Copy(os.Stdout, resp.Body); err != nil {
		fmt.Fprintln(os.Stderr, "failed to read response:", err)
		return exitIO
	}
	if resp.StatusCode >= 400 {
		return exitIO
	}
	return exitSuccess
}

func buildQuery(params map[string]string) string {
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
