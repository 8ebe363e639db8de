package mdbxt

import (
	"errors"
	"fmt"

	"github.com/erigontech/mdbx-go/mdbx"
)

// Kind classifies an error by how a caller should react to it.
type Kind uint8

const (
	// KindEngine is any engine failure not covered by a more specific
	// kind. Treated as unrecoverable by this layer.
	KindEngine Kind = iota

	// KindNotFound means a lookup or delete matched no key. Soft
	// operations absorb this kind and report it as a value-level
	// signal; only the raw variants surface it as an error.
	KindNotFound

	// KindKeyExist means a NoOverwrite put hit an existing key.
	KindKeyExist

	// KindInvalidArgument means a caller-supplied argument was rejected
	// before any engine call was made.
	KindInvalidArgument

	// KindBadValueSize means the engine rejected a key or value size,
	// e.g. an empty key against an integer-keyed table.
	KindBadValueSize

	// KindInvalidHandle means an operation used a closed environment,
	// an ended transaction, a closed table handle, or a closed cursor.
	KindInvalidHandle

	// KindIncompatible means a table was reopened with flags that do
	// not match the existing shared handle.
	KindIncompatible

	// KindPermission means a write operation was attempted through a
	// read-only transaction or environment.
	KindPermission

	// KindEnvironment means the environment could not be opened or
	// configured (bad path, permissions, incompatible store).
	KindEnvironment

	// KindSerializer means no serializer is registered for a type.
	KindSerializer
)

func (k Kind) String() string {
	switch k {
	case KindEngine:
		return "engine"
	case KindNotFound:
		return "not found"
	case KindKeyExist:
		return "key exists"
	case KindInvalidArgument:
		return "invalid argument"
	case KindBadValueSize:
		return "bad value size"
	case KindInvalidHandle:
		return "invalid handle"
	case KindIncompatible:
		return "incompatible"
	case KindPermission:
		return "permission denied"
	case KindEnvironment:
		return "environment"
	case KindSerializer:
		return "serializer not found"
	}
	return "unknown"
}

// Error is the error type returned by this package. Code carries the
// engine's numeric status when the error originated in the engine, and
// is zero for errors raised by this layer before any engine call.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Err     error // wrapped engine error, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mdbxt: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("mdbxt: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Engine status codes surfaced by this layer. Values match libmdbx.
const (
	CodeSuccess      = 0
	CodeKeyExist     = -30799
	CodeNotFound     = -30798
	CodeCorrupted    = -30796
	CodePanic        = -30795
	CodeMapFull      = -30792
	CodeDBsFull      = -30791
	CodeReadersFull  = -30790
	CodeTxnFull      = -30788
	CodeIncompatible = -30784
	CodeBadTxn       = -30782
	CodeBadValSize   = -30781
	CodeBadDBI       = -30780
	CodeBusy         = -30778
)

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func newErrorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// fromEngine maps an engine error onto this layer's taxonomy. The
// original status code is preserved in Code so callers can decide
// whether a KindEngine failure is recoverable.
func fromEngine(op string, err error) error {
	if err == nil {
		return nil
	}
	code := engineCode(err)
	kind := KindEngine
	switch code {
	case CodeNotFound:
		kind = KindNotFound
	case CodeKeyExist:
		kind = KindKeyExist
	case CodeBadValSize:
		kind = KindBadValueSize
	case CodeBadTxn, CodeBadDBI:
		kind = KindInvalidHandle
	case CodeIncompatible:
		kind = KindIncompatible
	}
	return &Error{Kind: kind, Code: code, Message: op, Err: err}
}

// engineCode extracts the numeric status code from an engine error.
// The engine wraps most statuses in an *OpError that carries its Errno
// as a field rather than a wrapped error, so the field is inspected
// directly; a bare Errno and the not-found sentinel are handled too.
func engineCode(err error) int {
	if err == nil {
		return CodeSuccess
	}
	var errno mdbx.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	var op *mdbx.OpError
	if errors.As(err, &op) {
		if e, ok := op.Errno.(mdbx.Errno); ok {
			return int(e)
		}
	}
	if mdbx.IsNotFound(err) {
		return CodeNotFound
	}
	return 0
}

// Code returns the engine status code attached to err, or zero if err
// carries none.
func Code(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return engineCode(err)
}

func isKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsNotFound reports whether err is a not-found error from a raw
// operation. The soft Get/Del variants never return one.
func IsNotFound(err error) bool {
	return isKind(err, KindNotFound) || mdbx.IsNotFound(err)
}

// IsKeyExist reports whether err means a NoOverwrite put found the key
// already present.
func IsKeyExist(err error) bool {
	return isKind(err, KindKeyExist)
}

// IsBadValueSize reports whether the engine rejected a key or value
// size, e.g. an empty key against an integer-keyed table.
func IsBadValueSize(err error) bool {
	return isKind(err, KindBadValueSize)
}

// IsInvalidHandle reports whether err came from using a closed or
// ended handle (environment, transaction, table, or cursor).
func IsInvalidHandle(err error) bool {
	return isKind(err, KindInvalidHandle)
}

// IsSerializerNotFound reports whether err means no serializer is
// registered for the requested type.
func IsSerializerNotFound(err error) bool {
	return isKind(err, KindSerializer)
}

// Common handle-state errors.
var (
	errEnvClosed    = newError(KindInvalidHandle, "environment is closed")
	errEnvOpened    = newError(KindInvalidHandle, "environment is already open")
	errTxnEnded     = newError(KindInvalidHandle, "transaction ended")
	errTxnReadOnly  = newError(KindPermission, "transaction is read-only")
	errTableClosed  = newError(KindInvalidHandle, "table handle is closed")
	errCursorClosed = newError(KindInvalidHandle, "cursor is closed")
	errNilKey       = newError(KindInvalidArgument, "key must not be nil")
)
