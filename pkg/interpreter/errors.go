package interpreter

import (
	"errors"
	"fmt"

	"github.com/LyricLy/yaiba/pkg/program"
)

// ErrorKind names the class of a fatal runtime error.
type ErrorKind string

const (
	KindMalformedLiteral   ErrorKind = "MalformedLiteral"
	KindLineOutOfRange     ErrorKind = "LineOutOfRange"
	KindUnknownInstruction ErrorKind = "UnknownInstruction"
	KindIOFailure          ErrorKind = "IOFailure"
)

var (
	ErrMalformedLiteral   = program.ErrMalformedLiteral
	ErrLineOutOfRange     = program.ErrLineOutOfRange
	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrIOFailure          = errors.New("i/o failure")

	errEndOfProgram = errors.New("unexpected end of program")
)

// Error is the fatal error returned by Run and Sweep. Every error aborts the
// whole program; Strand and PC locate the instruction that failed.
type Error struct {
	Kind ErrorKind
	// Strand is the pool index of the executing strand.
	Strand int
	// PC is the offset of the failing instruction character.
	PC  int
	Err error
}

func (e *Error) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the kind sentinels so callers need not unwrap the cause.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case KindUnknownInstruction:
		return target == ErrUnknownInstruction
	case KindIOFailure:
		return target == ErrIOFailure
	}
	return false
}

// operandKind maps a scanner or line index failure onto a runtime kind.
func operandKind(err error) ErrorKind {
	var progErr *program.Error
	if errors.As(err, &progErr) && progErr.Kind == program.KindLineOutOfRange {
		return KindLineOutOfRange
	}
	return KindMalformedLiteral
}

func unknownInstruction(symbol rune) error {
	return fmt.Errorf("unknown symbol %q", symbol)
}

func ioFailure(op string, err error) error {
	return fmt.Errorf("i/o failure: %s: %w", op, err)
}
