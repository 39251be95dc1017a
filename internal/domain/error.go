package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnavailable        = errors.New("upstream unavailable")
	ErrSyncInProgress     = errors.New("sync already in progress")
	ErrLockNotAcquired    = errors.New("lock not acquired")
	ErrInvalidExecContext = errors.New("invalid execution context")
)

// Kind classifies an error for the outer boundaries (HTTP, logs, metrics).
type Kind uint8

const (
	KindOK Kind = iota
	KindNotFound
	KindUnavailable
	KindInvalidArgument
	KindConflict
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindConflict:
		return "conflict"
	default:
		return "error"
	}
}

// KindOf maps any error onto the taxonomy. Errors that wrap none of the
// sentinels are KindError.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrSyncInProgress):
		return KindConflict
	default:
		return KindError
	}
}

// Error carries a caller-safe message next to a sentinel and the underlying
// cause. Error() returns only Msg; the cause is for logs.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func E(kind error, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Cause returns the wrapped diagnostic error, or nil.
func (e *Error) Cause() error { return e.Err }

// PublicMessage returns the stable message attached to err, if any.
func PublicMessage(err error) (string, bool) {
	var de *Error
	if errors.As(err, &de) && de.Msg != "" {
		return de.Msg, true
	}
	return "", false
}
