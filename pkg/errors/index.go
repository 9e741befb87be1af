package errors

// IndexError provides specialized error handling for segment-index-related
// operations (insert, evict, range/tail queries, rebuild-from-disk). This
// structure extends the base error system with index-specific context
// while properly supporting method chaining through all base error methods.
type IndexError struct {
	// Embed the base error to inherit all standard error functionality
	// including error chaining, structured details, and error codes.
	*baseError

	// Identifies which camera id was being processed when the error occurred.
	key string

	// Indicates which pool file was involved in the error, if applicable.
	// This helps correlate index errors with specific pool files and can
	// guide rebuild decisions.
	poolIdx uint16

	// Describes what index operation was being performed when the
	// error occurred (e.g., "Insert", "EvictPool", "Range", "Rebuild").
	operation string

	// Captures the size of the index at the time of the error.
	indexSize int

	// Estimates how much memory the index was consuming when the error
	// occurred.
	memoryUsage int64
}

// NewIndexError creates a new index-specific error with the provided context.
func NewIndexError(err error, code ErrorCode, msg string) *IndexError {
	return &IndexError{
		baseError: NewBaseError(err, code, msg),
	}
}

// Override base error methods to return *IndexError instead of *baseError.

// WithMessage updates the error message while maintaining the IndexError type.
func (ie *IndexError) WithMessage(msg string) *IndexError {
	ie.baseError.WithMessage(msg)
	return ie
}

// WithCode sets the error code while preserving the IndexError type.
func (ie *IndexError) WithCode(code ErrorCode) *IndexError {
	ie.baseError.WithCode(code)
	return ie
}

// WithDetail adds contextual information while maintaining the IndexError type.
func (ie *IndexError) WithDetail(key string, value any) *IndexError {
	ie.baseError.WithDetail(key, value)
	return ie
}

// Index-specific methods that add domain-specific context to the error.

// WithKey records which camera id was being processed when the error occurred.
func (ie *IndexError) WithKey(key string) *IndexError {
	ie.key = key
	return ie
}

// WithPoolIdx captures which pool file was involved in the error.
func (ie *IndexError) WithPoolIdx(poolIdx uint16) *IndexError {
	ie.poolIdx = poolIdx
	return ie
}

// WithOperation records what index operation was being performed.
func (ie *IndexError) WithOperation(operation string) *IndexError {
	ie.operation = operation
	return ie
}

// WithIndexSize captures the size of the index when the error occurred.
func (ie *IndexError) WithIndexSize(size int) *IndexError {
	ie.indexSize = size
	return ie
}

// WithMemoryUsage records the estimated memory consumption of the index.
func (ie *IndexError) WithMemoryUsage(usage int64) *IndexError {
	ie.memoryUsage = usage
	return ie
}

// Getter methods provide access to the IndexError-specific context.

// Key returns the camera id that was being processed when the error occurred.
func (ie *IndexError) Key() string {
	return ie.key
}

// PoolIdx returns the pool identifier associated with the error.
func (ie *IndexError) PoolIdx() uint16 {
	return ie.poolIdx
}

// Operation returns the name of the operation that was being performed.
func (ie *IndexError) Operation() string {
	return ie.operation
}

// IndexSize returns the size of the index when the error occurred.
func (ie *IndexError) IndexSize() int {
	return ie.indexSize
}

// MemoryUsage returns the estimated memory consumption when the error occurred.
func (ie *IndexError) MemoryUsage() int64 {
	return ie.memoryUsage
}

// Helper functions for creating common index errors with appropriate context.

// NewKeyNotFoundError creates a specialized error for an unknown camera id.
func NewKeyNotFoundError(key string) *IndexError {
	return NewIndexError(nil, ErrorCodeIndexKeyNotFound, "camera has no entries in index").
		WithKey(key).
		WithOperation("Range").
		WithDetail("lookup_time", "immediate")
}

// NewPoolIdxError creates an error for invalid pool index conditions.
func NewPoolIdxError(poolIdx uint16, key string) *IndexError {
	return NewIndexError(nil, ErrorCodeIndexInvalidSegmentID, "pool index out of range").
		WithPoolIdx(poolIdx).
		WithKey(key).
		WithOperation("Insert").
		WithDetail("index_consistency_check", "failed")
}

// NewTimestampExtractionError creates an error for filename parsing failures
// encountered while rebuilding the index from pool files on startup.
func NewTimestampExtractionError(filename string, cause error) *IndexError {
	return NewIndexError(cause, ErrorCodeIndexTimestampExtraction, "failed to extract timestamp from pool filename").
		WithOperation("Rebuild").
		WithDetail("filename", filename).
		WithDetail("expected_format", "pool_NNN.bin")
}

// NewIndexCorruptionError creates an error for index corruption scenarios.
func NewIndexCorruptionError(operation string, indexSize int, cause error) *IndexError {
	return NewIndexError(cause, ErrorCodeIndexCorrupted, "index data structure corrupted").
		WithOperation(operation).
		WithIndexSize(indexSize).
		WithDetail("corruption_detected", true).
		WithDetail("recovery_required", true)
}
