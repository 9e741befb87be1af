// Package record implements the pool-file record codec: the fixed 64-byte
// header that precedes every stored MPEG-TS segment body, and the
// byte-by-byte resynchronising scanner that lets a pool file be read back
// without any separate index or write-ahead log.
package record

import (
	"encoding/binary"

	"github.com/onurtuna/ursavr/pkg/errors"
)

const (
	// Magic is the constant tag identifying a valid record header, the
	// little-endian encoding of the ASCII bytes "URVR".
	Magic uint32 = 0x52565255

	// Version is the only header format version this codec can decode.
	// Changing the header layout requires bumping this and is not
	// backward-readable.
	Version uint16 = 1

	// HeaderSize is the fixed, bit-exact size of an encoded header in bytes.
	HeaderSize = 64

	// CameraIDSize is the fixed width of the camera_id field, right-padded
	// with NUL bytes.
	CameraIDSize = 32
)

// Header is the 64-byte little-endian structure that precedes every record
// body in a pool file:
//
//	magic          uint32
//	version        uint16
//	flags          uint16
//	camera_id      [32]byte
//	start_unix_ns  uint64
//	duration_ms    uint32
//	body_len       uint32
//	crc32          uint32
//	_pad           [4]byte
//
// CRC32 covers every header field preceding it plus the body; it is the
// sole integrity check the scanner relies on to tell a live record from
// stale bytes left over from a previous ring generation.
type Header struct {
	Magic       uint32
	Version     uint16
	Flags       uint16
	CameraID    [CameraIDSize]byte
	StartUnixNs uint64
	DurationMs  uint32
	BodyLen     uint32
	CRC32       uint32
}

// Meta is the decoded, camera-id-as-string view of a Header, convenient for
// index entries and API responses that never touch the raw byte layout.
type Meta struct {
	CameraID    string
	StartUnixNs int64
	DurationMs  uint32
	BodyLen     uint32
}

// EncodeCameraID right-pads id with NUL bytes to CameraIDSize. Ids longer
// than CameraIDSize are silently truncated rather than rejected.
func EncodeCameraID(id string) [CameraIDSize]byte {
	var out [CameraIDSize]byte
	copy(out[:], id)
	return out
}

// DecodeCameraID returns the string up to the first NUL byte, or the empty
// string if the field was never populated.
func DecodeCameraID(b [CameraIDSize]byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b[:])
}

// NewHeader builds a Header for a record about to be appended, leaving
// CRC32 at zero — call CRC32Of to compute it once the body is available.
func NewHeader(cameraID string, startUnixNs int64, durationMs uint32, bodyLen uint32) Header {
	return Header{
		Magic:       Magic,
		Version:     Version,
		CameraID:    EncodeCameraID(cameraID),
		StartUnixNs: uint64(startUnixNs),
		DurationMs:  durationMs,
		BodyLen:     bodyLen,
	}
}

// EncodeHeader serializes h into a new 64-byte little-endian buffer. The
// crc32 field is written as h.CRC32 verbatim — callers must set it (via
// CRC32Of) before encoding if they want a verifiable record.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint16(buf[6:8], h.Flags)
	copy(buf[8:40], h.CameraID[:])
	binary.LittleEndian.PutUint64(buf[40:48], h.StartUnixNs)
	binary.LittleEndian.PutUint32(buf[48:52], h.DurationMs)
	binary.LittleEndian.PutUint32(buf[52:56], h.BodyLen)
	binary.LittleEndian.PutUint32(buf[56:60], h.CRC32)
	// buf[60:64] is the reserved pad, left zeroed.
	return buf
}

// DecodeHeader parses a 64-byte buffer into a Header without performing any
// validation beyond the length check; callers that need resynchronisation
// semantics should use Scan instead of calling this directly on arbitrary
// file offsets.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "buffer shorter than a record header",
		).WithField("buf").WithRule("min_length").WithProvided(len(buf)).WithExpected(HeaderSize)
	}

	var h Header
	h.Magic = binary.LittleEndian.Uint32(buf[0:4])
	h.Version = binary.LittleEndian.Uint16(buf[4:6])
	h.Flags = binary.LittleEndian.Uint16(buf[6:8])
	copy(h.CameraID[:], buf[8:40])
	h.StartUnixNs = binary.LittleEndian.Uint64(buf[40:48])
	h.DurationMs = binary.LittleEndian.Uint32(buf[48:52])
	h.BodyLen = binary.LittleEndian.Uint32(buf[52:56])
	h.CRC32 = binary.LittleEndian.Uint32(buf[56:60])
	return h, nil
}

// LooksStructurallyValid reports whether h could plausibly be a live record
// header: correct magic, supported version, a non-zero duration, and a body
// that would fit within a pool of the given size starting at offset. It does not touch
// the CRC — that requires the body bytes and is checked separately by Scan.
func (h Header) LooksStructurallyValid(offset, poolSize int64) bool {
	if h.Magic != Magic || h.Version != Version {
		return false
	}
	if h.DurationMs == 0 {
		return false
	}
	end := offset + HeaderSize + int64(h.BodyLen)
	return end <= poolSize
}

// Meta converts the header into the camera-id-as-string view used by the
// segment index and HTTP API.
func (h Header) Meta() Meta {
	return Meta{
		CameraID:    DecodeCameraID(h.CameraID),
		StartUnixNs: int64(h.StartUnixNs),
		DurationMs:  h.DurationMs,
		BodyLen:     h.BodyLen,
	}
}
