package playlist

import (
	"bytes"
	"strings"
	"testing"

	"github.com/onurtuna/ursavr/internal/reader"
	"github.com/onurtuna/ursavr/internal/segindex"
)

func testURLFunc(cameraID, recordID string) string {
	return "/api/hls/" + cameraID + "/segment/ts/" + recordID
}

func TestRecordIDRoundTrip(t *testing.T) {
	id := EncodeRecordID(7, 123456)
	poolIdx, offset, err := DecodeRecordID(id)
	if err != nil {
		t.Fatalf("DecodeRecordID: %v", err)
	}
	if poolIdx != 7 || offset != 123456 {
		t.Fatalf("got (%d, %d), want (7, 123456)", poolIdx, offset)
	}
}

func TestDecodeRecordIDRejectsMalformed(t *testing.T) {
	if _, _, err := DecodeRecordID("not-hex"); err == nil {
		t.Fatalf("expected error for non-hex id")
	}
	if _, _, err := DecodeRecordID("aabb"); err == nil {
		t.Fatalf("expected error for short id")
	}
}

func TestBuildVODContainsEndlistAndEntries(t *testing.T) {
	entries := []segindex.Entry{
		{CameraID: "cam1", StartUnixNs: 1, DurationMs: 4000, PoolIdx: 0, Offset: 64, BodyLen: 100},
		{CameraID: "cam1", StartUnixNs: 2, DurationMs: 6000, PoolIdx: 0, Offset: 200, BodyLen: 200},
	}

	out := BuildVOD("cam1", entries, testURLFunc)

	if !strings.Contains(out, "#EXT-X-PLAYLIST-TYPE:VOD") {
		t.Fatalf("missing VOD type tag:\n%s", out)
	}
	if !strings.Contains(out, "#EXT-X-ENDLIST") {
		t.Fatalf("missing ENDLIST tag:\n%s", out)
	}
	if !strings.Contains(out, "#EXT-X-TARGETDURATION:6") {
		t.Fatalf("expected target duration ceil(6.0)=6:\n%s", out)
	}
	if strings.Count(out, "#EXTINF:") != 2 {
		t.Fatalf("expected 2 EXTINF entries:\n%s", out)
	}
}

func TestBuildLiveHasNoEndlistAndCarriesSequence(t *testing.T) {
	entries := []segindex.Entry{
		{CameraID: "cam1", StartUnixNs: 10, DurationMs: 2000, PoolIdx: 1, Offset: 64, BodyLen: 50},
	}

	out := BuildLive("cam1", entries, 42, testURLFunc)

	if strings.Contains(out, "#EXT-X-ENDLIST") {
		t.Fatalf("live playlist must not terminate:\n%s", out)
	}
	if !strings.Contains(out, "#EXT-X-MEDIA-SEQUENCE:42") {
		t.Fatalf("expected media sequence 42:\n%s", out)
	}
}

func TestExportConcatenatesBodiesWithoutFraming(t *testing.T) {
	records := []reader.Record{
		{Body: []byte("AAA")},
		{Body: []byte("BBB")},
	}

	var buf bytes.Buffer
	if err := Export(&buf, records); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if buf.String() != "AAABBB" {
		t.Fatalf("got %q, want %q", buf.String(), "AAABBB")
	}
}
