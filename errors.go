package audiotag

import (
	"github.com/simonhull/audiotag/internal/types"
)

// Error is the error type returned by every operation.
// Re-exported from internal/types.
type Error = types.Error

// Kind classifies an Error.
type Kind = types.Kind

// Error kinds.
const (
	KindNotEnoughArguments = types.KindNotEnoughArguments
	KindUnsupportedFormat  = types.KindUnsupportedFormat
	KindMalformedHeader    = types.KindMalformedHeader
	KindMalformedEntry     = types.KindMalformedEntry
	KindTruncatedFrame     = types.KindTruncatedFrame
	KindMalformedInteger   = types.KindMalformedInteger
	KindOutOfBounds        = types.KindOutOfBounds
	KindLockTimeout        = types.KindLockTimeout
	KindIOError            = types.KindIOError
	KindUnsupportedWrite   = types.KindUnsupportedWrite
)

// Sentinels for use with errors.Is. They match any Error of the same kind.
var (
	ErrNotEnoughArguments = types.ErrNotEnoughArguments
	ErrUnsupportedFormat  = types.ErrUnsupportedFormat
	ErrMalformedHeader    = types.ErrMalformedHeader
	ErrMalformedEntry     = types.ErrMalformedEntry
	ErrTruncatedFrame     = types.ErrTruncatedFrame
	ErrMalformedInteger   = types.ErrMalformedInteger
	ErrOutOfBounds        = types.ErrOutOfBounds
	ErrLockTimeout        = types.ErrLockTimeout
	ErrIO                 = types.ErrIO
	ErrUnsupportedWrite   = types.ErrUnsupportedWrite
)

// KindOf returns the kind of err, or zero if err is not an *Error.
func KindOf(err error) Kind {
	return types.KindOf(err)
}
