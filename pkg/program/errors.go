package program

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure detected while reading program text.
type ErrorKind string

const (
	KindMalformedLiteral ErrorKind = "MalformedLiteral"
	KindLineOutOfRange   ErrorKind = "LineOutOfRange"
)

var (
	ErrMalformedLiteral = errors.New("malformed literal")
	ErrLineOutOfRange   = errors.New("line out of range")
)

// Error reports a scanner or line index failure.
type Error struct {
	Kind    ErrorKind
	Message string
	// Pos is the offset the failing scan started at; -1 for line lookups.
	Pos int
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case KindMalformedLiteral:
		return target == ErrMalformedLiteral
	case KindLineOutOfRange:
		return target == ErrLineOutOfRange
	}
	return false
}

func malformedLiteral(pos int, format string, args ...any) error {
	return &Error{Kind: KindMalformedLiteral, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func lineOutOfRange(line int64) error {
	return &Error{Kind: KindLineOutOfRange, Pos: -1, Message: fmt.Sprintf("line number out of bounds: %d", line)}
}
