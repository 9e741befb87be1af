package record

import (
	"errors"
	"io"
)

// ScanEntry is one record recovered from a pool file: its header, metadata,
// and the byte offset at which it starts.
type ScanEntry struct {
	Offset int64
	Header Header
	Meta   Meta
}

// ScanResult summarizes a full pool scan: the live entries recovered plus
// how many candidate headers failed CRC verification and were skipped.
// Corruption is per-record and silent by design — callers log a single
// summary line rather than one line per dropped record.
type ScanResult struct {
	Entries   []ScanEntry
	Corrupted int
}

// Scan walks a pool file from offset 0, resynchronising byte-by-byte on
// anything that doesn't decode to a valid, CRC-verified record. This is the
// left-inverse of Encode: scanning the concatenation of n encoded records
// recovers exactly those n records, in order.
//
// Because the ring overwrites older records of potentially different
// lengths, alignment is never assumed across generations: a structurally
// plausible but stale header is only distinguished from a live one by its
// CRC, and a header that fails either check costs exactly one byte of
// resynchronisation before the scan tries again. A header window that is
// all zero bytes is skipped 64 bytes at once.
func Scan(ra io.ReaderAt, poolSize int64) (ScanResult, error) {
	var result ScanResult

	header := make([]byte, HeaderSize)
	offset := int64(0)

	for offset+HeaderSize <= poolSize {
		n, err := ra.ReadAt(header, offset)
		if err != nil && !errors.Is(err, io.EOF) {
			return result, err
		}
		if n < HeaderSize {
			break
		}

		h, err := DecodeHeader(header)
		if err != nil {
			offset++
			continue
		}

		if !h.LooksStructurallyValid(offset, poolSize) {
			// A run of all-zero bytes (unwritten tail space, or a freshly
			// pre-allocated pool) can never contain a valid magic at any
			// offset within it, so the whole window can be skipped at
			// once instead of resynchronising one byte at a time.
			if isAllZero(header) {
				offset += HeaderSize
			} else {
				offset++
			}
			continue
		}

		body := make([]byte, h.BodyLen)
		if h.BodyLen > 0 {
			n, err := ra.ReadAt(body, offset+HeaderSize)
			if err != nil && !errors.Is(err, io.EOF) {
				return result, err
			}
			if n < len(body) {
				offset++
				result.Corrupted++
				continue
			}
		}

		if CRC32Of(h, body) != h.CRC32 {
			offset++
			result.Corrupted++
			continue
		}

		result.Entries = append(result.Entries, ScanEntry{
			Offset: offset,
			Header: h,
			Meta:   h.Meta(),
		})
		offset += HeaderSize + int64(h.BodyLen)
	}

	return result, nil
}

func isAllZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
