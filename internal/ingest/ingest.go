// Package ingest is the RTSP-to-MPEG-TS front end: given a camera's RTSP
// URL, it produces a stream of finished segment blobs (bytes, start
// timestamp, duration) and submits each to the writer. Its reconnection
// state machine is deliberately opaque to the rest of the engine —
// callers only ever see a bounded number of retries followed by either
// steady segment production or a permanent RTSPConnectivity error.
package ingest

import (
	"bytes"
	"context"
	"time"

	"github.com/asticode/go-astits"
	"github.com/bluenviron/gortsplib/v4"
	"github.com/bluenviron/gortsplib/v4/pkg/base"
	"github.com/pion/rtp"
	"go.uber.org/zap"

	"github.com/onurtuna/ursavr/pkg/errors"
)

// SubmitFunc hands a finished segment to the global writer.
type SubmitFunc func(cameraID string, body []byte, startUnixNs int64, durationMs uint32) error

// Config describes one camera's ingestion pipeline.
type Config struct {
	CameraID             string
	URL                  string
	MaxReconnectAttempts int
	SegmentDuration      time.Duration
	Submit               SubmitFunc
	Logger               *zap.SugaredLogger
}

// Pipeline pulls RTSP packets for one camera and mux them into fixed
// wall-clock-window MPEG-TS segments, submitting each to the writer. It
// satisfies internal/camera's Pipeline interface.
type Pipeline struct {
	cfg Config
}

// New builds an ingestion pipeline for one camera. Nothing connects until
// Run is called.
func New(cfg Config) *Pipeline {
	if cfg.SegmentDuration <= 0 {
		cfg.SegmentDuration = 4 * time.Second
	}
	if cfg.MaxReconnectAttempts <= 0 {
		cfg.MaxReconnectAttempts = 5
	}
	return &Pipeline{cfg: cfg}
}

// Run connects to the camera's RTSP URL and submits segments until ctx is
// cancelled or reconnect attempts are exhausted. On exhaustion it returns
// an RTSPConnectivity error; the camera supervisor marks the camera
// failed but leaves it registered so an operator can still see and
// remove it.
func (p *Pipeline) Run(ctx context.Context) error {
	attempt := 0
	backoff := time.Second

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		err := p.runOnce(ctx)
		if err == nil {
			return nil // ctx was cancelled cleanly mid-session
		}

		attempt++
		if attempt >= p.cfg.MaxReconnectAttempts {
			return errors.NewRTSPConnectivityError(p.cfg.CameraID, attempt, err)
		}

		p.cfg.Logger.Warnw("rtsp session ended, retrying",
			"camera", p.cfg.CameraID, "attempt", attempt, "error", err, "backoff", backoff)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

// runOnce holds one RTSP session open, muxing packets into segments of
// cfg.SegmentDuration and submitting each as it closes. Returns nil only
// if ctx was cancelled; any other termination is treated as a connectivity
// failure eligible for retry.
func (p *Pipeline) runOnce(ctx context.Context) error {
	u, err := base.ParseURL(p.cfg.URL)
	if err != nil {
		return err
	}

	client := &gortsplib.Client{}
	if err := client.Start(u.Scheme, u.Host); err != nil {
		return err
	}
	defer client.Close()

	desc, _, err := client.Describe(u)
	if err != nil {
		return err
	}

	if err := client.SetupAll(desc.BaseURL, desc.Medias); err != nil {
		return err
	}

	sess := newSegmentSession(p.cfg.SegmentDuration, p.cfg.CameraID, p.cfg.Submit, p.cfg.Logger)

	for _, media := range desc.Medias {
		media := media
		for _, forma := range media.Formats {
			forma := forma
			client.OnPacketRTP(media, forma, func(pkt *rtp.Packet) {
				sess.handlePacket(pkt)
			})
		}
	}

	if _, err := client.Play(nil); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- client.Wait() }()

	select {
	case <-ctx.Done():
		sess.flush()
		return nil
	case err := <-errCh:
		sess.flush()
		return err
	}
}

// segmentSession accumulates RTP packets into one astits MPEG-TS muxer
// buffer per wall-clock window, emitting a finished segment to Submit
// every cfg.SegmentDuration.
type segmentSession struct {
	cameraID string
	duration time.Duration
	submit   SubmitFunc
	log      *zap.SugaredLogger

	buf       bytes.Buffer
	muxer     *astits.Muxer
	windowEnd time.Time
	startNs   int64
}

func newSegmentSession(duration time.Duration, cameraID string, submit SubmitFunc, log *zap.SugaredLogger) *segmentSession {
	s := &segmentSession{cameraID: cameraID, duration: duration, submit: submit, log: log}
	s.resetWindow()
	return s
}

func (s *segmentSession) resetWindow() {
	s.buf.Reset()
	s.muxer = astits.NewMuxer(context.Background(), &s.buf)
	s.muxer.SetPCRPID(256)
	s.muxer.AddElementaryStream(astits.PMTElementaryStream{
		ElementaryPID: 256,
		StreamType:    astits.StreamTypeH264Video,
	})
	s.startNs = time.Now().UnixNano()
	s.windowEnd = time.Now().Add(s.duration)
}

// handlePacket writes one RTP payload into the current window's muxer,
// rolling over to a fresh window and submitting the finished segment once
// the window's wall-clock duration elapses. Depacketization into access
// units (handled elsewhere in a full media pipeline) is out of scope
// here — this pipeline's internals are deliberately opaque, so each
// packet's payload is muxed as one PES-sized chunk directly.
func (s *segmentSession) handlePacket(pkt *rtp.Packet) {
	if time.Now().After(s.windowEnd) {
		s.flush()
	}

	_, _ = s.muxer.WriteData(&astits.MuxerData{
		PID: 256,
		PES: &astits.PESData{
			Data: pkt.Payload,
			Header: &astits.PESHeader{
				OptionalHeader: &astits.PESOptionalHeader{
					MarkerBits:     2,
					PTSDTSIndicator: astits.PTSDTSIndicatorOnlyPTS,
					PTS:            &astits.ClockReference{Base: int64(pkt.Timestamp)},
				},
			},
		},
	})
}

// flush submits the current window's buffer (if non-empty) and starts a
// fresh one.
func (s *segmentSession) flush() {
	if s.buf.Len() == 0 {
		s.resetWindow()
		return
	}

	body := make([]byte, s.buf.Len())
	copy(body, s.buf.Bytes())
	durationMs := uint32(s.duration.Milliseconds())

	if err := s.submit(s.cameraID, body, s.startNs, durationMs); err != nil {
		s.log.Warnw("segment submission failed", "camera", s.cameraID, "error", err)
	}

	s.resetWindow()
}
