package interfaces

import "errors"

// ErrorKind tags the broad category of a core error, per the error
// taxonomy the traversal engine is specified against.
type ErrorKind int

const (
	// ErrIo marks a short or failed read/seek against the byte source.
	ErrIo ErrorKind = iota
	// ErrInvalidPointer marks a block pointer or DVA that failed
	// validation and must not be followed.
	ErrInvalidPointer
	// ErrCorrupt marks inconsistent size fields, a bad compressed
	// length prefix, or a structural invariant violated after read.
	ErrCorrupt
	// ErrUnsupported marks big-endian blocks, gang blocks, unsupported
	// compression, non-micro ZAPs, or encrypted/dedup'd blocks.
	ErrUnsupported
	// ErrNotFound marks an uberblock magic mismatch or an absent ZAP
	// entry.
	ErrNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case ErrIo:
		return "Io"
	case ErrInvalidPointer:
		return "InvalidPointer"
	case ErrCorrupt:
		return "Corrupt"
	case ErrUnsupported:
		return "Unsupported"
	case ErrNotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}

// CoreError is the error type returned by every traversal-engine
// component. Its Kind lets callers branch on the error taxonomy without
// string matching.
type CoreError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *CoreError) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Msg + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *CoreError) Unwrap() error { return e.Err }

// NewError builds a CoreError of the given kind.
func NewError(kind ErrorKind, msg string) error {
	return &CoreError{Kind: kind, Msg: msg}
}

// WrapError builds a CoreError of the given kind, wrapping a lower-level
// cause.
func WrapError(kind ErrorKind, msg string, cause error) error {
	return &CoreError{Kind: kind, Msg: msg, Err: cause}
}

// KindOf extracts the ErrorKind from err, if err is (or wraps) a
// CoreError.
func KindOf(err error) (ErrorKind, bool) {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}
