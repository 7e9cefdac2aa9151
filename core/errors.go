package core

import "errors"

// Error kinds a handler can return. ErrNotFound and ErrFound are internal
// signals that must never reach a client directly -- callers (the blocking
// registry, MOVE) catch them and translate to a park or an ok(false) reply.
var (
	ErrWrongType         = errors.New("WRONGTYPE operation against a key holding the wrong kind of value")
	ErrNotInteger        = errors.New("value is not an integer or out of range")
	ErrNotFloat          = errors.New("value is not a valid float")
	ErrNoSuchKey         = errors.New("no such key")
	ErrOutOfRange        = errors.New("index out of range")
	ErrNotFound          = errors.New("not found")
	ErrFound             = errors.New("found")
	ErrBadPattern        = errors.New("invalid pattern")
	ErrUnexpectedRequest = errors.New("unexpected request")
	ErrSyntax            = errors.New("syntax error")
)
