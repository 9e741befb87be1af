package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/onurtuna/ursavr/internal/engine"
	"github.com/onurtuna/ursavr/pkg/logger"
	"github.com/onurtuna/ursavr/pkg/options"
)

func newTestServer(t *testing.T) (*Server, *engine.Engine) {
	t.Helper()

	opts := &options.Options{}
	options.WithDefaultOptions()(opts)
	opts.DataDir = t.TempDir()
	opts.PoolOptions.Size = 1 << 20
	opts.PoolOptions.Count = 2
	opts.PoolOptions.RotationTimeout = time.Second
	opts.CameraConfigPath = filepath.Join(opts.DataDir, "cameras.toml")
	opts.LiveTailLength = 6

	e, err := engine.New(context.Background(), &engine.Config{
		Options: opts, Logger: logger.NewNop(), ConfigPath: opts.CameraConfigPath,
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	t.Cleanup(func() { e.Close() })

	return New(e, logger.NewNop()), e
}

func TestStatusEndpointReportsPoolState(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.PoolFiles != 2 {
		t.Fatalf("pool_files = %d, want 2", body.PoolFiles)
	}
}

func TestCameraAddListDelete(t *testing.T) {
	s, _ := newTestServer(t)

	addBody, _ := json.Marshal(addCameraRequest{ID: "cam1", Name: "Front", URL: "rtsp://cam1"})
	req := httptest.NewRequest(http.MethodPost, "/api/cameras", bytes.NewReader(addBody))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/cameras", bytes.NewReader(addBody))
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate POST status = %d, want 409", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/cameras", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	var cams []statusCamera
	if err := json.Unmarshal(rec.Body.Bytes(), &cams); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(cams) != 1 || cams[0].ID != "cam1" {
		t.Fatalf("got %+v, want one camera cam1", cams)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/cameras/cam1", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/cameras/ghost", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("DELETE unknown status = %d, want 404", rec.Code)
	}
}

func TestListRequiresCameraParam(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/list", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListReturnsSubmittedSegments(t *testing.T) {
	s, e := newTestServer(t)

	body := bytes.Repeat([]byte{7}, 1000)
	if err := e.Writer().Submit("cam1", body, 1_700_000_000, 1000); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && e.Index().Stats().Total == 0 {
		time.Sleep(time.Millisecond)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/list?camera=cam1", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var out listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(out.Segments))
	}
	if out.Segments[0].SizeBytes != 1000 {
		t.Fatalf("size_bytes = %d, want 1000", out.Segments[0].SizeBytes)
	}
}

func TestExportReturns503WhenWriterNotRunning(t *testing.T) {
	s, e := newTestServer(t)
	e.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/export?camera=cam1&from=0&to=1", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHLSLiveReturnsPlaylistContentType(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/hls/cam1/live.m3u8", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.apple.mpegurl" {
		t.Fatalf("content-type = %q", ct)
	}
}
