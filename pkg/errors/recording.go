package errors

import stdErrors "errors"

// RecordingError is a specialized error type covering the NVR-specific
// failure taxonomy that has no analogue in a generic key-value store:
// a record that fails validation during a pool scan, a read against a
// pool rotated out from under it, a dropped submission, and camera
// registry conflicts. It follows the same embed-and-override pattern as
// StorageError and IndexError.
type RecordingError struct {
	*baseError

	cameraID string // Camera the error pertains to, if any.
	poolIdx  uint16 // Pool file involved, if any.
	offset   int64  // Byte offset within the pool, if any.
	startNs  int64  // Record start timestamp, if any.
}

// NewRecordingError creates a new recording-specific error.
func NewRecordingError(err error, code ErrorCode, msg string) *RecordingError {
	return &RecordingError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while maintaining the RecordingError type.
func (re *RecordingError) WithMessage(msg string) *RecordingError {
	re.baseError.WithMessage(msg)
	return re
}

// WithDetail adds contextual information while maintaining the RecordingError type.
func (re *RecordingError) WithDetail(key string, value any) *RecordingError {
	re.baseError.WithDetail(key, value)
	return re
}

// WithCameraID records which camera the error pertains to.
func (re *RecordingError) WithCameraID(id string) *RecordingError {
	re.cameraID = id
	return re
}

// WithPoolIdx records which pool file was involved.
func (re *RecordingError) WithPoolIdx(idx uint16) *RecordingError {
	re.poolIdx = idx
	return re
}

// WithOffset records the byte offset within the pool.
func (re *RecordingError) WithOffset(offset int64) *RecordingError {
	re.offset = offset
	return re
}

// WithStartNs records the record's start timestamp in unix nanoseconds.
func (re *RecordingError) WithStartNs(ns int64) *RecordingError {
	re.startNs = ns
	return re
}

// CameraID returns the camera the error pertains to.
func (re *RecordingError) CameraID() string { return re.cameraID }

// PoolIdx returns the pool file involved in the error.
func (re *RecordingError) PoolIdx() uint16 { return re.poolIdx }

// Offset returns the byte offset within the pool.
func (re *RecordingError) Offset() int64 { return re.offset }

// StartNs returns the record's start timestamp in unix nanoseconds.
func (re *RecordingError) StartNs() int64 { return re.startNs }

// IsRecordingError checks if the given error is a RecordingError or
// contains one in its error chain.
func IsRecordingError(err error) bool {
	var re *RecordingError
	return stdErrors.As(err, &re)
}

// AsRecordingError extracts RecordingError context from an error chain.
func AsRecordingError(err error) (*RecordingError, bool) {
	var re *RecordingError
	if stdErrors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// NewCorruptionError creates an error for a record that failed magic,
// version, or CRC validation during a pool scan.
func NewCorruptionError(poolIdx uint16, offset int64, cause error) *RecordingError {
	return NewRecordingError(cause, ErrorCodeCorruption, "record failed validation during scan").
		WithPoolIdx(poolIdx).
		WithOffset(offset).
		WithDetail("action", "resync_one_byte")
}

// NewEvictedError creates an error for a record whose pool was rotated
// between the index lookup and the positioned read.
func NewEvictedError(cameraID string, startNs int64, poolIdx uint16) *RecordingError {
	return NewRecordingError(nil, ErrorCodeEvicted, "record's pool was rotated before it could be read").
		WithCameraID(cameraID).
		WithStartNs(startNs).
		WithPoolIdx(poolIdx)
}

// NewQueueFullError creates an error for a dropped submission.
func NewQueueFullError(cameraID string) *RecordingError {
	return NewRecordingError(nil, ErrorCodeQueueFull, "writer submission queue full, segment dropped").
		WithCameraID(cameraID)
}

// NewDuplicateCameraError creates an error for adding an id that is
// already registered and active.
func NewDuplicateCameraError(cameraID string) *RecordingError {
	return NewRecordingError(nil, ErrorCodeDuplicateCamera, "camera already registered and active").
		WithCameraID(cameraID)
}

// NewCameraNotFoundError creates an error for an operation against an
// unknown or already-removed camera id.
func NewCameraNotFoundError(cameraID string) *RecordingError {
	return NewRecordingError(nil, ErrorCodeCameraNotFound, "camera not found").
		WithCameraID(cameraID)
}

// NewRTSPConnectivityError creates an error for a camera whose ingestion
// pipeline exhausted its bounded reconnect attempts.
func NewRTSPConnectivityError(cameraID string, attempts int, cause error) *RecordingError {
	return NewRecordingError(cause, ErrorCodeRTSPConnectivity, "camera exhausted reconnect attempts").
		WithCameraID(cameraID).
		WithDetail("attempts", attempts)
}

// NewWriterUnavailableError creates an error for requests that arrive
// while the global writer is not running.
func NewWriterUnavailableError() *RecordingError {
	return NewRecordingError(nil, ErrorCodeWriterUnavailable, "writer is not running")
}
