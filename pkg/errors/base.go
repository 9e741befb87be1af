package errors

// baseError carries a wrapped cause, a code for programmatic handling,
// and a lazily-allocated detail map. StorageError, IndexError,
// ValidationError, and RecordingError all embed it.
type baseError struct {
	cause   error
	message string
	code    ErrorCode
	details map[string]any
}

// NewBaseError wraps err with a code and a message.
func NewBaseError(err error, code ErrorCode, msg string) *baseError {
	return &baseError{cause: err, code: code, message: msg}
}

// WithMessage replaces the error message.
func (be *baseError) WithMessage(msg string) *baseError {
	be.message = msg
	return be
}

// WithCode replaces the error code.
func (be *baseError) WithCode(code ErrorCode) *baseError {
	be.code = code
	return be
}

// WithDetail attaches a key/value pair to the error's detail map,
// allocating it on first use.
func (be *baseError) WithDetail(key string, value any) *baseError {
	if be.details == nil {
		be.details = make(map[string]any)
	}
	be.details[key] = value
	return be
}

// Error implements the error interface.
func (b *baseError) Error() string {
	return b.message
}

// Unwrap exposes the wrapped cause so errors.Is/errors.As can see through it.
func (b *baseError) Unwrap() error {
	return b.cause
}

// Code returns the error's classification code.
func (b *baseError) Code() ErrorCode {
	return b.code
}

// Details returns the error's detail map. Callers must not mutate the
// returned map; it is the error's own backing store, not a copy.
func (b *baseError) Details() map[string]any {
	return b.details
}
