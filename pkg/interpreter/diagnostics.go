package interpreter

import (
	"errors"
	"fmt"

	"github.com/LyricLy/yaiba/pkg/program"
)

// DescribeError renders err as "name:line:col: Kind: message". Positions
// refer to the stripped program text.
func DescribeError(prog *program.Program, err error) string {
	var runErr *Error
	if !errors.As(err, &runErr) || prog == nil {
		return err.Error()
	}
	line, col := prog.Position(runErr.PC)
	location := fmt.Sprintf("%s:%d:%d", prog.Name, line, col)
	if runErr.Strand < 0 {
		return fmt.Sprintf("%s: %s: %s", location, runErr.Kind, runErr.Error())
	}
	return fmt.Sprintf("%s: %s: %s (strand %d)", location, runErr.Kind, runErr.Error(), runErr.Strand)
}
