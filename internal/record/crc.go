package record

import "hash/crc32"

// CRC32Of computes the record's integrity checksum: the header bytes that
// precede the crc32 field itself, followed by the body. The pad bytes are
// not covered since they carry no information.
func CRC32Of(h Header, body []byte) uint32 {
	crc := crc32.NewIEEE()
	crc.Write(EncodeHeader(h)[:56])
	crc.Write(body)
	return crc.Sum32()
}

// Encode produces the full on-disk bytes for a record: a 64-byte header
// with CRC32 populated, followed by the body.
func Encode(cameraID string, startUnixNs int64, durationMs uint32, body []byte) []byte {
	h := NewHeader(cameraID, startUnixNs, durationMs, uint32(len(body)))
	h.CRC32 = CRC32Of(h, body)

	out := make([]byte, HeaderSize+len(body))
	copy(out, EncodeHeader(h))
	copy(out[HeaderSize:], body)
	return out
}
