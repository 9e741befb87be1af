package record

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	body := []byte("fake mpeg-ts segment body")
	raw := Encode("cam1", 1_700_000_000_000_000_000, 1000, body)

	h, err := DecodeHeader(raw[:HeaderSize])
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}

	if h.Magic != Magic {
		t.Fatalf("magic = %x, want %x", h.Magic, Magic)
	}
	if h.Version != Version {
		t.Fatalf("version = %d, want %d", h.Version, Version)
	}
	if got := DecodeCameraID(h.CameraID); got != "cam1" {
		t.Fatalf("camera id = %q, want cam1", got)
	}
	if h.BodyLen != uint32(len(body)) {
		t.Fatalf("body_len = %d, want %d", h.BodyLen, len(body))
	}
	if CRC32Of(h, raw[HeaderSize:]) != h.CRC32 {
		t.Fatalf("crc mismatch on valid record")
	}
	if !bytes.Equal(raw[HeaderSize:], body) {
		t.Fatalf("body bytes corrupted by encode")
	}
}

func TestCameraIDTruncatesAtNUL(t *testing.T) {
	enc := EncodeCameraID("short")
	if got := DecodeCameraID(enc); got != "short" {
		t.Fatalf("got %q, want %q", got, "short")
	}

	var empty [CameraIDSize]byte
	if got := DecodeCameraID(empty); got != "" {
		t.Fatalf("got %q, want empty string", got)
	}
}

type byteReaderAt []byte

func (b byteReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b)) {
		return 0, nil
	}
	n := copy(p, b[off:])
	return n, nil
}

func TestScanRecoversEncodedSequence(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(Encode("cam1", 1000, 1000, bytes.Repeat([]byte{0xAB}, 100)))
	buf.Write(Encode("cam1", 2000, 1000, bytes.Repeat([]byte{0xCD}, 50)))
	buf.Write(Encode("cam2", 1500, 500, []byte("short body")))

	poolSize := int64(1 << 20)
	data := make([]byte, poolSize)
	copy(data, buf.Bytes())

	result, err := Scan(byteReaderAt(data), poolSize)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(result.Entries))
	}
	if result.Corrupted != 0 {
		t.Fatalf("got %d corrupted, want 0", result.Corrupted)
	}

	wantStarts := []int64{1000, 2000, 1500}
	for i, e := range result.Entries {
		if e.Meta.StartUnixNs != wantStarts[i] {
			t.Errorf("entry %d: start_ts = %d, want %d", i, e.Meta.StartUnixNs, wantStarts[i])
		}
	}
}

func TestScanResyncsPastCorruptedRecord(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(Encode("cam1", 1000, 1000, bytes.Repeat([]byte{0xAB}, 100)))
	corruptOffset := buf.Len() + HeaderSize + 10 // inside the body of record 2
	buf.Write(Encode("cam1", 2000, 1000, bytes.Repeat([]byte{0xCD}, 100)))
	buf.Write(Encode("cam1", 3000, 1000, bytes.Repeat([]byte{0xEF}, 100)))

	poolSize := int64(1 << 20)
	data := make([]byte, poolSize)
	copy(data, buf.Bytes())
	data[corruptOffset] ^= 0xFF // flip a byte inside record 2's body

	result, err := Scan(byteReaderAt(data), poolSize)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Corrupted == 0 {
		t.Fatalf("expected at least one corrupted record")
	}

	var starts []int64
	for _, e := range result.Entries {
		starts = append(starts, e.Meta.StartUnixNs)
	}
	if len(starts) != 2 || starts[0] != 1000 || starts[1] != 3000 {
		t.Fatalf("got starts %v, want [1000 3000]", starts)
	}
}
