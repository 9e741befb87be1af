package ingest

import (
	"testing"
	"time"

	"github.com/pion/rtp"

	"github.com/onurtuna/ursavr/pkg/logger"
)

func TestSegmentSessionFlushesOnDuration(t *testing.T) {
	var submitted [][]byte
	submit := func(cameraID string, body []byte, startNs int64, durationMs uint32) error {
		cp := make([]byte, len(body))
		copy(cp, body)
		submitted = append(submitted, cp)
		return nil
	}

	sess := newSegmentSession(10*time.Millisecond, "cam1", submit, logger.NewNop())
	sess.handlePacket(&rtp.Packet{Payload: []byte{1, 2, 3, 4}})

	time.Sleep(20 * time.Millisecond)
	sess.handlePacket(&rtp.Packet{Payload: []byte{5, 6, 7, 8}})

	if len(submitted) != 1 {
		t.Fatalf("expected one flush to have occurred, got %d", len(submitted))
	}
}

func TestSegmentSessionFlushSkipsEmptyWindow(t *testing.T) {
	called := 0
	submit := func(cameraID string, body []byte, startNs int64, durationMs uint32) error {
		called++
		return nil
	}

	sess := newSegmentSession(time.Second, "cam1", submit, logger.NewNop())
	sess.flush()

	if called != 0 {
		t.Fatalf("expected no submission for an empty window, got %d calls", called)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	p := New(Config{CameraID: "cam1", URL: "rtsp://example/stream"})

	if p.cfg.SegmentDuration != 4*time.Second {
		t.Fatalf("expected default segment duration of 4s, got %s", p.cfg.SegmentDuration)
	}
	if p.cfg.MaxReconnectAttempts != 5 {
		t.Fatalf("expected default max reconnect attempts of 5, got %d", p.cfg.MaxReconnectAttempts)
	}
}
