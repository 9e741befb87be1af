package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any software system. These codes provide the foundation layer
// of error classification.
const (
	// ErrorCodeIO represents failures in input/output operations across any
	// system boundary: reading or writing pool files, network operations
	// when talking to a camera, and device I/O against storage hardware.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents client-side errors where the provided
	// data doesn't meet the system's requirements or constraints. This maps
	// to HTTP 400-series errors and indicates problems with the request itself
	// rather than system failures.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected system failures that don't fit
	// into other categories. These are the equivalent of HTTP 500 errors and
	// indicate bugs, assertion failures, or other programming errors that
	// shouldn't occur during normal operation.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Storage-specific error codes extend the base error taxonomy to handle the
// unique failure modes that occur in persistent storage systems, in
// particular pool-file management and record persistence.
const (
	// ErrorCodePoolCorrupted indicates that a pool file's data has been
	// damaged or is in an inconsistent state.
	ErrorCodePoolCorrupted ErrorCode = "POOL_CORRUPTED"

	// ErrorCodeHeaderReadFailure occurs when the system cannot read the header
	// portion of a record. Headers contain critical metadata about the
	// record's structure, so header read failures prevent access to the body.
	ErrorCodeHeaderReadFailure ErrorCode = "HEADER_READ_FAILURE"

	// ErrorCodePayloadReadFailure indicates problems reading the actual data
	// content from a pool file after successfully reading the header.
	ErrorCodePayloadReadFailure ErrorCode = "PAYLOAD_READ_FAILURE"

	// ErrorCodeRecoveryFailed indicates that the storage system's attempt to
	// recover from a previous failure was unsuccessful.
	ErrorCodeRecoveryFailed ErrorCode = "STORAGE_RECOVERY_FAILED"

	// ErrorCodePermissionDenied indicates insufficient permissions to access a resource.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrorCodeDiskFull indicates that the storage device has run out of space.
	ErrorCodeDiskFull ErrorCode = "DISK_FULL"

	// ErrorCodeFilesystemReadonly indicates that the filesystem is mounted read-only.
	ErrorCodeFilesystemReadonly ErrorCode = "FILESYSTEM_READONLY"
)

// Index-specific error codes address failures while maintaining or querying
// the in-memory segment index.
const (
	// ErrorCodeIndexKeyNotFound indicates a lookup against a camera/time key
	// that has no corresponding entry.
	ErrorCodeIndexKeyNotFound ErrorCode = "INDEX_KEY_NOT_FOUND"

	// ErrorCodeIndexInvalidSegmentID indicates a pool index outside the
	// configured ring size.
	ErrorCodeIndexInvalidSegmentID ErrorCode = "INDEX_INVALID_SEGMENT_ID"

	// ErrorCodeIndexCorrupted indicates the in-memory index structure itself
	// is in an inconsistent state, only reachable via a programming error
	// rather than external input.
	ErrorCodeIndexCorrupted ErrorCode = "INDEX_CORRUPTED"

	// ErrorCodeIndexTimestampExtraction indicates a filename or header field
	// could not be parsed into a valid timestamp.
	ErrorCodeIndexTimestampExtraction ErrorCode = "INDEX_TIMESTAMP_EXTRACTION"
)

// Recording-specific error codes cover the taxonomy unique to the NVR
// ingestion and playback path: a record that fails CRC validation, a read
// against a pool that was rotated mid-request, a dropped submission, and
// camera registry conflicts.
const (
	// ErrorCodeCorruption indicates a record failed magic/version/CRC
	// validation during a pool scan. Per-record and non-fatal: the scanner
	// resyncs and continues.
	ErrorCodeCorruption ErrorCode = "CORRUPTION"

	// ErrorCodeEvicted indicates the pool holding a record was rotated
	// between the index lookup and the positioned read.
	ErrorCodeEvicted ErrorCode = "EVICTED"

	// ErrorCodeQueueFull indicates the writer's bounded submission queue
	// was full and the segment was dropped.
	ErrorCodeQueueFull ErrorCode = "QUEUE_FULL"

	// ErrorCodeDuplicateCamera indicates an add against an id that is
	// already registered and active.
	ErrorCodeDuplicateCamera ErrorCode = "DUPLICATE_CAMERA"

	// ErrorCodeCameraNotFound indicates an operation against an unknown or
	// already-removed camera id.
	ErrorCodeCameraNotFound ErrorCode = "CAMERA_NOT_FOUND"

	// ErrorCodeRTSPConnectivity indicates the ingestion pipeline exhausted
	// its bounded reconnect attempts against a camera's RTSP URL.
	ErrorCodeRTSPConnectivity ErrorCode = "RTSP_CONNECTIVITY"

	// ErrorCodeWriterUnavailable indicates the global writer is not running,
	// surfaced to HTTP callers as 503.
	ErrorCodeWriterUnavailable ErrorCode = "WRITER_UNAVAILABLE"
)
