package httpapi

import (
	"net/http"
	"strings"

	"github.com/onurtuna/ursavr/internal/playlist"
	"github.com/onurtuna/ursavr/internal/record"
	"github.com/onurtuna/ursavr/internal/segindex"
)

// handleHLS dispatches the three /api/hls/{cam}/... routes: live.m3u8,
// vod.m3u8, and segment/ts/{id}.
func (s *Server) handleHLS(w http.ResponseWriter, r *http.Request) {
	if !s.requireRunning(w) {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/hls/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		s.writeError(w, http.StatusBadRequest, "malformed hls path")
		return
	}
	cameraID, tail := parts[0], parts[1]

	switch {
	case tail == "live.m3u8":
		s.handleHLSLive(w, r, cameraID)
	case tail == "vod.m3u8":
		s.handleHLSVOD(w, r, cameraID)
	case strings.HasPrefix(tail, "segment/ts/"):
		s.handleHLSSegment(w, r, cameraID, strings.TrimPrefix(tail, "segment/ts/"))
	default:
		s.writeError(w, http.StatusBadRequest, "unknown hls route")
	}
}

func segmentURL(cameraID, recordID string) string {
	return "/api/hls/" + cameraID + "/segment/ts/" + recordID
}

func (s *Server) handleHLSLive(w http.ResponseWriter, r *http.Request, cameraID string) {
	k := strconvAtoiOr(r.URL.Query().Get("k"), s.engine.Options().LiveTailLength)
	tail := s.engine.Index().Tail(cameraID, k)

	var oldestSeq uint64
	stats := s.engine.Index().Stats()
	if total, ok := stats.PerCamera[cameraID]; ok && total > len(tail) {
		oldestSeq = uint64(total - len(tail))
	}

	body := playlist.BuildLive(cameraID, tail, oldestSeq, segmentURL)
	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleHLSVOD(w http.ResponseWriter, r *http.Request, cameraID string) {
	_, from, to, ok := s.parseRangeParams(w, r)
	if !ok {
		return
	}

	entries := s.engine.Index().Range(cameraID, from, to)
	body := playlist.BuildVOD(cameraID, entries, segmentURL)

	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleHLSSegment(w http.ResponseWriter, r *http.Request, cameraID, recordID string) {
	poolIdx, offset, err := playlist.DecodeRecordID(recordID)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed record id")
		return
	}

	entries := s.engine.Index().Range(cameraID, minInt64, maxInt64)
	var match *segindex.Entry
	for i, e := range entries {
		if e.PoolIdx == poolIdx && e.Offset == offset {
			match = &entries[i]
			break
		}
	}
	if match == nil {
		s.writeError(w, http.StatusNotFound, "record not found for camera")
		return
	}

	pool := s.engine.Pools().Pool(poolIdx)
	guard, err := pool.AcquireReadGuard()
	if err != nil {
		s.writeError(w, http.StatusNotFound, "record's pool was rotated")
		return
	}
	defer guard.Release()

	body := make([]byte, match.BodyLen)
	if _, err := guard.ReadAt(body, offset+record.HeaderSize); err != nil {
		s.writeError(w, http.StatusNotFound, "record unreadable")
		return
	}

	w.Header().Set("Content-Type", "video/mp2t")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
