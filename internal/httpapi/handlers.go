package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/onurtuna/ursavr/internal/camera"
	"github.com/onurtuna/ursavr/internal/playlist"
)

type statusCamera struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	URL    string `json:"url,omitempty"`
}

type statusResponse struct {
	Cameras       []statusCamera `json:"cameras"`
	PoolFiles     int            `json:"pool_files"`
	ActivePoolIdx int            `json:"active_pool_idx"`
	ActivePoolPct float64        `json:"active_pool_pct"`
	TotalSegments int            `json:"total_segments"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cams := s.engine.Cameras().List()
	out := make([]statusCamera, 0, len(cams))
	for _, c := range cams {
		out = append(out, statusCamera{ID: c.ID, Name: c.Name, Status: string(c.Status), URL: c.URL})
	}

	pools := s.engine.Pools()
	stats := s.engine.Index().Stats()

	s.writeJSON(w, http.StatusOK, statusResponse{
		Cameras:       out,
		PoolFiles:     pools.Count(),
		ActivePoolIdx: int(pools.ActiveIdx()),
		ActivePoolPct: pools.ActivePct(),
		TotalSegments: stats.Total,
	})
}

type listSegment struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	SizeBytes int    `json:"size_bytes"`
	PoolIdx   int    `json:"pool_idx"`
}

type listResponse struct {
	Segments []listSegment `json:"segments"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	cameraID, from, to, ok := s.parseRangeParams(w, r)
	if !ok {
		return
	}

	entries := s.engine.Index().Range(cameraID, from, to)

	out := make([]listSegment, 0, len(entries))
	for _, e := range entries {
		out = append(out, listSegment{
			Start:     formatNaiveUTC(e.StartUnixNs),
			End:       formatNaiveUTC(e.End()),
			SizeBytes: int(e.BodyLen),
			PoolIdx:   int(e.PoolIdx),
		})
	}

	s.writeJSON(w, http.StatusOK, listResponse{Segments: out})
}

const (
	minInt64 = -1 << 63
	maxInt64 = 1<<63 - 1
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !s.requireRunning(w) {
		return
	}

	cameraID, from, to, ok := s.parseRangeParams(w, r)
	if !ok {
		return
	}

	records, skipped, err := s.engine.Reader().Read(r.Context(), cameraID, from, to)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, sk := range skipped {
		s.log.Warnw("export skipped a record", "camera", cameraID, "error", sk.Err)
	}

	w.Header().Set("Content-Type", "video/mp2t")
	w.WriteHeader(http.StatusOK)
	if err := playlist.Export(w, records); err != nil {
		s.log.Errorw("export stream write failed", "camera", cameraID, "error", err)
	}
}

// parseRangeParams extracts camera, from, and to from the query string,
// writing a 400 response and returning ok=false on any parse failure.
func (s *Server) parseRangeParams(w http.ResponseWriter, r *http.Request) (cameraID string, from, to int64, ok bool) {
	cameraID = r.URL.Query().Get("camera")
	if cameraID == "" {
		s.writeError(w, http.StatusBadRequest, "missing camera query parameter")
		return "", 0, 0, false
	}

	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")

	from, okFrom := parseTimeParam(fromStr)
	if fromStr == "" {
		from, okFrom = minInt64, true
	}
	to, okTo := parseTimeParam(toStr)
	if toStr == "" {
		to, okTo = maxInt64, true
	}
	if !okFrom || !okTo {
		s.writeError(w, http.StatusBadRequest, "malformed from/to timestamp")
		return "", 0, 0, false
	}

	return cameraID, from, to, true
}

func (s *Server) handleCameras(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, listCamerasResponse(s.engine.Cameras().List()))
	case http.MethodPost:
		s.handleCameraAdd(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listCamerasResponse(cams []camera.Info) []statusCamera {
	out := make([]statusCamera, 0, len(cams))
	for _, c := range cams {
		out = append(out, statusCamera{ID: c.ID, Name: c.Name, Status: string(c.Status), URL: c.URL})
	}
	return out
}

type addCameraRequest struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	URL                  string `json:"url"`
	MaxReconnectAttempts int    `json:"max_reconnect_attempts"`
}

func (s *Server) handleCameraAdd(w http.ResponseWriter, r *http.Request) {
	var req addCameraRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.ID == "" || req.URL == "" {
		s.writeError(w, http.StatusBadRequest, "id and url are required")
		return
	}

	spec := camera.Spec{ID: req.ID, Name: req.Name, URL: req.URL, MaxReconnectAttempts: req.MaxReconnectAttempts}
	if err := s.engine.Cameras().Add(spec); err != nil {
		s.writeError(w, http.StatusConflict, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, statusCamera{ID: spec.ID, Name: spec.Name, Status: string(camera.StatusActive), URL: spec.URL})
}

func (s *Server) handleCameraDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/cameras/")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "missing camera id")
		return
	}

	if err := s.engine.Cameras().Remove(r.Context(), id); err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "removed"})
}

func strconvAtoiOr(s string, fallback int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return fallback
}
