package compiler

import (
	"fmt"

	"jyxal/parser"

	"github.com/pkg/errors"
)

// ErrorKind classifies compile failures
type ErrorKind int

const (
	UnresolvedElement ErrorKind = iota + 1
	InvalidLiteral
	InternalScopeImbalance
)

func (k ErrorKind) String() string {
	switch k {
	case UnresolvedElement:
		return "unresolved element"
	case InvalidLiteral:
		return "invalid literal"
	case InternalScopeImbalance:
		return "scope imbalance"
	default:
		return "unknown error"
	}
}

// Error is a fatal compile error at a source position
type Error struct {
	Kind   ErrorKind
	Pos    parser.Position
	Detail string
	cause  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind ErrorKind, pos parser.Position, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: pos, Detail: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is, or wraps, a compile error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == kind
}
