package playlist

import (
	"encoding/hex"

	"github.com/onurtuna/ursavr/pkg/errors"
)

// recordIDSize is the encoded byte length of a record-id: a uint16 pool
// index followed by a uint32 byte offset, both big-endian.
const recordIDSize = 6

// EncodeRecordID packs (pool_idx, offset) into the stable hex form used
// in segment-fetch URLs. Big-endian keeps the encoding's byte order
// human-legible when printed.
func EncodeRecordID(poolIdx uint16, offset int64) string {
	buf := make([]byte, recordIDSize)
	buf[0] = byte(poolIdx >> 8)
	buf[1] = byte(poolIdx)
	buf[2] = byte(offset >> 24)
	buf[3] = byte(offset >> 16)
	buf[4] = byte(offset >> 8)
	buf[5] = byte(offset)
	return hex.EncodeToString(buf)
}

// DecodeRecordID reverses EncodeRecordID, rejecting anything that isn't
// exactly recordIDSize bytes once hex-decoded.
func DecodeRecordID(id string) (poolIdx uint16, offset int64, err error) {
	buf, decErr := hex.DecodeString(id)
	if decErr != nil || len(buf) != recordIDSize {
		return 0, 0, errors.NewValidationError(decErr, errors.ErrorCodeInvalidInput, "malformed record id").
			WithField("record_id").WithProvided(id)
	}

	poolIdx = uint16(buf[0])<<8 | uint16(buf[1])
	offset = int64(buf[2])<<24 | int64(buf[3])<<16 | int64(buf[4])<<8 | int64(buf[5])
	return poolIdx, offset, nil
}
