// Package gachaerr provides the small error taxonomy shared by the disk
// cache reader and the gacha-log scraper: every failure surfaces a stable,
// machine-readable Kind in addition to a human-readable message, so that
// callers can branch on Kind without string-matching Error().
package gachaerr

import (
	"errors"
	"fmt"
)

// Kind identifies the taxonomy of an error, e.g. "invalid_magic" or
// "visit_too_frequently". Kinds are grouped per producing package; see the
// Kind* constants declared alongside each package that returns them.
type Kind string

// Kinder is implemented by every error type in this module, including the
// ones that carry extra fields (such as UnexpectedResponseError) instead of
// embedding *Error directly.
type Kinder interface {
	Kind() Kind
}

// Error is the generic carrier used by packages that don't need extra
// fields beyond a Kind and a message.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{kind: kind, msg: msg, err: err}
}

func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Is lets errors.Is(err, gachaerr.New(kind, "")) match on Kind alone,
// ignoring the message, which is convenient in tests.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.kind == other.kind
}

// KindOf walks err's chain for the first Kinder and reports its Kind. It
// returns false if no error in the chain carries one.
func KindOf(err error) (Kind, bool) {
	var k Kinder
	if errors.As(err, &k) {
		return k.Kind(), true
	}
	return "", false
}
