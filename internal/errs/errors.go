// Package errs classifies the failures tally can hit while answering a
// vote request.
//
// A request touches three layers: the session pool, the query executor and,
// for snapshots, the object store. Each driver translates its native error
// (a SQLSTATE, a MySQL error number, an SQLite result code, an S3 error code)
// into one ErrKind, so the HTTP layer decides the status code from the kind
// alone and never imports a driver package.
//
// The executor returns only two values to its callers: an Unavailable error
// when no session could be handed out, and a QueryFailed error when the store
// rejected the statement. The driver detail stays in Cause and goes to the log:
//
//	res, err := exec.Execute(ctx, sql, args...)
//	if errs.IsUnavailable(err) {
//	    // 503, try again later
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind is the class of a failure as seen from outside its layer.
type ErrKind int

// Kinds produced by the pool and the executor come first.
const (
	ErrKindUnknown ErrKind = iota

	// ErrKindUnavailable means no session could be dialed, or the dial was
	// refused at the connection level (SQLSTATE class 08, an unreachable
	// MinIO endpoint).
	ErrKindUnavailable
	// ErrKindQueryFailed means a session was obtained but the statement
	// failed. The session itself stays pooled.
	ErrKindQueryFailed
	// ErrKindClosed is returned by a pool after Close.
	ErrKindClosed

	ErrKindNotFound         // missing bucket or object
	ErrKindTimeout          // ctx expired while talking to a store
	ErrKindInvalidInput     // malformed DSN, config or builder input
	ErrKindPermissionDenied // bad credentials, SQLSTATE 28xxx and 42501, S3 AccessDenied
)

var kindNames = map[ErrKind]string{
	ErrKindUnavailable:      "unavailable",
	ErrKindQueryFailed:      "query_failed",
	ErrKindClosed:           "closed",
	ErrKindNotFound:         "not_found",
	ErrKindTimeout:          "timeout",
	ErrKindInvalidInput:     "invalid_input",
	ErrKindPermissionDenied: "permission_denied",
}

func (k ErrKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error carries a kind, a message safe to show a caller, and the driver
// error that caused it. Only Kind and Message ever leave the process.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error without a cause. The executor sentinels are built
// with it and compared with errors.Is.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap classifies cause under kind.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// ErrKindUnknown when there is none.
func KindOf(err error) ErrKind {
	var e *Error
	if !errors.As(err, &e) {
		return ErrKindUnknown
	}
	return e.Kind
}

func IsUnavailable(err error) bool      { return KindOf(err) == ErrKindUnavailable }
func IsQueryFailed(err error) bool      { return KindOf(err) == ErrKindQueryFailed }
func IsClosed(err error) bool           { return KindOf(err) == ErrKindClosed }
func IsNotFound(err error) bool         { return KindOf(err) == ErrKindNotFound }
func IsTimeout(err error) bool          { return KindOf(err) == ErrKindTimeout }
func IsInvalidInput(err error) bool     { return KindOf(err) == ErrKindInvalidInput }
func IsPermissionDenied(err error) bool { return KindOf(err) == ErrKindPermissionDenied }
