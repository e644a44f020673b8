package types

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can tell corruption from contention from I/O.
type Kind int

const (
	// KindUnknown is the zero value and never returned by this module.
	KindUnknown Kind = iota
	// KindNotEnoughArguments means a required argument (path or tags) was missing.
	KindNotEnoughArguments
	// KindUnsupportedFormat means no format plugin recognised the file.
	KindUnsupportedFormat
	// KindMalformedHeader means a tag header is invalid or of an unsupported version.
	KindMalformedHeader
	// KindMalformedEntry means a comment entry is not in KEY=value form.
	KindMalformedEntry
	// KindTruncatedFrame means a frame or entry claims more bytes than are available.
	KindTruncatedFrame
	// KindMalformedInteger means a synchsafe integer had a top bit set.
	KindMalformedInteger
	// KindOutOfBounds means a cursor read ran past the end of its buffer.
	KindOutOfBounds
	// KindLockTimeout means the path lock was not granted in time.
	KindLockTimeout
	// KindIOError means a filesystem operation failed.
	KindIOError
	// KindUnsupportedWrite means the format can be read but these tags
	// cannot be written to it.
	KindUnsupportedWrite
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNotEnoughArguments:
		return "NotEnoughArguments"
	case KindUnsupportedFormat:
		return "UnsupportedFormat"
	case KindMalformedHeader:
		return "MalformedHeader"
	case KindMalformedEntry:
		return "MalformedEntry"
	case KindTruncatedFrame:
		return "TruncatedFrame"
	case KindMalformedInteger:
		return "MalformedInteger"
	case KindOutOfBounds:
		return "OutOfBounds"
	case KindLockTimeout:
		return "LockTimeout"
	case KindIOError:
		return "IOError"
	case KindUnsupportedWrite:
		return "UnsupportedWrite"
	default:
		return "Unknown"
	}
}

// Error is the single error type surfaced by this module.
//
// Kind tells the caller what class of failure happened; Path names the
// offending file. Offset is set for corruption errors when known.
type Error struct {
	Err    error
	Op     string
	Path   string
	Reason string
	Offset int64
	Kind   Kind
}

func (e *Error) Error() string {
	var msg string
	if e.Reason == "" && e.Offset == 0 && e.Err != nil && KindOf(e.Err) == e.Kind {
		// The cause already names the kind.
		msg = e.Err.Error()
	} else {
		msg = e.Kind.String()
		if e.Reason != "" {
			msg += ": " + e.Reason
		}
		if e.Offset > 0 {
			msg = fmt.Sprintf("%s (at offset %d)", msg, e.Offset)
		}
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
	}
	switch {
	case e.Op != "" && e.Path != "":
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, msg)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Path, msg)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
// This makes errors.Is(err, ErrLockTimeout) work on any lock timeout.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Path == "" && t.Op == ""
}

// Sentinels for errors.Is matching by kind.
var (
	ErrNotEnoughArguments = &Error{Kind: KindNotEnoughArguments}
	ErrUnsupportedFormat  = &Error{Kind: KindUnsupportedFormat}
	ErrMalformedHeader    = &Error{Kind: KindMalformedHeader}
	ErrMalformedEntry     = &Error{Kind: KindMalformedEntry}
	ErrTruncatedFrame     = &Error{Kind: KindTruncatedFrame}
	ErrMalformedInteger   = &Error{Kind: KindMalformedInteger}
	ErrOutOfBounds        = &Error{Kind: KindOutOfBounds}
	ErrLockTimeout        = &Error{Kind: KindLockTimeout}
	ErrIO                 = &Error{Kind: KindIOError}
	ErrUnsupportedWrite   = &Error{Kind: KindUnsupportedWrite}
)

// Errorf builds an *Error of the given kind with a formatted reason.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// WithPath stamps op and path onto err. Non-*Error values become IOError.
// An *Error that already carries a path is returned unchanged. An *Error
// wrapped by fmt.Errorf keeps its wrapping: the result carries the inner
// kind and wraps err whole.
func WithPath(err error, op, path string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		return &Error{Kind: KindIOError, Op: op, Path: path, Err: err}
	}
	if e.Path != "" {
		return err
	}
	if direct, ok := err.(*Error); ok {
		cp := *direct
		cp.Op = op
		cp.Path = path
		return &cp
	}
	return &Error{Kind: e.Kind, Op: op, Path: path, Err: err}
}
