// Package playlist renders HLS VOD/live m3u8 text and assembles raw
// MPEG-TS exports. It has no storage of its own: every call takes the
// segment entries to render as a parameter, sourced by the caller from
// the reader/index.
package playlist

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/onurtuna/ursavr/internal/reader"
	"github.com/onurtuna/ursavr/internal/segindex"
)

// SegmentURLFunc builds the URL a playlist entry should point at for a
// given record-id, so internal/playlist stays agnostic of the HTTP mux's
// route shape.
type SegmentURLFunc func(cameraID, recordID string) string

// BuildVOD renders a standard VOD HLS playlist over entries, in ascending
// start-time order. entries must already be sorted (segindex.Range
// returns them that way).
func BuildVOD(cameraID string, entries []segindex.Entry, urlFor SegmentURLFunc) string {
	var b bytes.Buffer

	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	fmt.Fprintf(&b, "#EXT-X-TARGETDURATION:%d\n", targetDuration(entries))
	b.WriteString("#EXT-X-MEDIA-SEQUENCE:0\n")
	b.WriteString("#EXT-X-PLAYLIST-TYPE:VOD\n")

	for _, e := range entries {
		writeExtinf(&b, cameraID, e, urlFor)
	}

	b.WriteString("#EXT-X-ENDLIST\n")
	return b.String()
}

// BuildLive renders the sliding-window live playlist: the tail of entries
// (already limited by the caller to the configured tail length), no
// EXT-X-ENDLIST, media-sequence set to the record counter of the oldest
// entry included so players can detect discontinuities across polls.
func BuildLive(cameraID string, tail []segindex.Entry, oldestSeq uint64, urlFor SegmentURLFunc) string {
	var b bytes.Buffer

	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	fmt.Fprintf(&b, "#EXT-X-TARGETDURATION:%d\n", targetDuration(tail))
	fmt.Fprintf(&b, "#EXT-X-MEDIA-SEQUENCE:%d\n", oldestSeq)

	for _, e := range tail {
		writeExtinf(&b, cameraID, e, urlFor)
	}

	return b.String()
}

func writeExtinf(b *bytes.Buffer, cameraID string, e segindex.Entry, urlFor SegmentURLFunc) {
	durSeconds := float64(e.DurationMs) / 1000.0
	recordID := EncodeRecordID(e.PoolIdx, e.Offset)
	fmt.Fprintf(b, "#EXTINF:%.3f,\n%s\n", durSeconds, urlFor(cameraID, recordID))
}

// targetDuration is the ceiling of the longest entry's duration, in whole
// seconds. A window with no entries still needs a positive value since
// EXT-X-TARGETDURATION is mandatory in a valid playlist; 1 is used as
// the floor.
func targetDuration(entries []segindex.Entry) int {
	maxMs := uint32(0)
	for _, e := range entries {
		if e.DurationMs > maxMs {
			maxMs = e.DurationMs
		}
	}
	if maxMs == 0 {
		return 1
	}
	return int(math.Ceil(float64(maxMs) / 1000.0))
}

// Export concatenates record bodies directly to w, in the order given, with
// no framing between them — MPEG-TS is concatenation-safe, so each record's
// self-contained fragment is simply appended after the last.
func Export(w io.Writer, records []reader.Record) error {
	for _, rec := range records {
		if _, err := w.Write(rec.Body); err != nil {
			return err
		}
	}
	return nil
}
