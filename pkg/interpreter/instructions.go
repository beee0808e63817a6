package interpreter

import (
	"unicode/utf8"

	"github.com/LyricLy/yaiba/pkg/runtime"
)

// Instruction characters.
const (
	opSet       = '='
	opSpawn     = '+'
	opSpawnMany = '*'
	opKill      = '-'
	opRead      = 'r'
	opWrite     = 'w'
	opHalt      = '!'
	opSleep     = '.'
	opAdd       = '$'
	opSubtract  = '~'
	opJump      = ':'
	opNewline   = '\n'
)

// step executes one instruction for the strand at *cur. *next is the cursor
// the sweep continues from; pool removals keep both cursors addressing the
// same strands.
func (i *Interpreter) step(cur, next *int) error {
	strand := i.pool.At(*cur)
	pc := strand.PC
	instr, ok := i.prog.At(pc)
	if !ok {
		return i.fail(KindUnknownInstruction, *cur, pc, errEndOfProgram)
	}
	strand.PC++
	i.stats.Steps++
	i.log.Trace().
		Int("strand", *cur).
		Int("pc", pc).
		Str("instr", describeInstruction(instr)).
		Int64("value", strand.Value).
		Msg("step")

	switch instr {
	case opSet:
		value, width, err := i.prog.Number(strand.PC)
		if err != nil {
			return i.fail(operandKind(err), *cur, pc, err)
		}
		strand.Value = value
		strand.PC += width

	case opSpawn, opSpawnMany, opJump:
		target, err := i.lineOperand(strand)
		if err != nil {
			return i.fail(operandKind(err), *cur, pc, err)
		}
		switch instr {
		case opJump:
			strand.PC = target
		case opSpawn:
			i.spawn(*cur, target, 1)
		case opSpawnMany:
			// Children start at zero; the register only sets the count.
			i.spawn(*cur, target, strand.Value)
		}

	case opKill:
		value, width, err := i.prog.Number(strand.PC)
		if err != nil {
			return i.fail(operandKind(err), *cur, pc, err)
		}
		strand.PC += width
		removed := i.kill(cur, next, value)
		i.pool.At(*cur).Value = removed

	case opRead:
		value, err := i.port.Read()
		if err != nil {
			return i.fail(KindIOFailure, *cur, pc, ioFailure("read", err))
		}
		strand.Value = value

	case opWrite:
		if err := i.port.Write(strand.Value); err != nil {
			return i.fail(KindIOFailure, *cur, pc, ioFailure("write", err))
		}

	case opHalt:
		i.pool.RemoveAt(*cur, next)
		i.stats.Removed++
		i.log.Debug().Int("strand", *cur).Msg("strand halted")

	case opSleep:

	case opAdd:
		i.addToOthers(*cur, strand.Value)

	case opSubtract:
		i.subtractFromOthers(*cur, strand.Value)

	case opNewline:
		// Crossing a line break does not use up the strand's turn.
		*next = *cur

	default:
		r, _ := utf8.DecodeRuneInString(i.prog.Text()[pc:])
		return i.fail(KindUnknownInstruction, *cur, pc, unknownInstruction(r))
	}
	return nil
}

// lineOperand reads a line number operand, moves the strand past it and
// resolves the line to an offset.
func (i *Interpreter) lineOperand(strand *runtime.Strand) (int, error) {
	line, width, err := i.prog.Number(strand.PC)
	if err != nil {
		return 0, err
	}
	strand.PC += width
	return i.prog.LineTarget(line)
}

func (i *Interpreter) spawn(cur, target int, count int64) {
	n := i.pool.Spawn(target, count)
	if n == 0 {
		return
	}
	i.stats.Spawned += int64(n)
	i.log.Debug().Int("strand", cur).Int("target", target).Int("count", n).Msg("spawned strands")
}

// kill removes every strand other than the one at *cur whose register equals
// value and returns how many were removed.
func (i *Interpreter) kill(cur, next *int, value int64) int64 {
	var removed int64
	for j := 0; j < i.pool.Len(); {
		if j != *cur && i.pool.At(j).Value == value {
			i.pool.RemoveAt(j, cur, next)
			removed++
			continue
		}
		j++
	}
	if removed > 0 {
		i.stats.Removed += removed
		i.log.Debug().Int("strand", *cur).Int64("value", value).Int64("removed", removed).Msg("strands killed")
	}
	return removed
}

func (i *Interpreter) addToOthers(cur int, delta int64) {
	for j := 0; j < i.pool.Len(); j++ {
		if j != cur {
			i.pool.At(j).Value += delta
		}
	}
}

// subtractFromOthers never leaves a register below zero.
func (i *Interpreter) subtractFromOthers(cur int, delta int64) {
	for j := 0; j < i.pool.Len(); j++ {
		if j == cur {
			continue
		}
		other := i.pool.At(j)
		other.Value -= delta
		if other.Value < 0 {
			other.Value = 0
		}
	}
}

func (i *Interpreter) fail(kind ErrorKind, strand, pc int, err error) error {
	i.log.Debug().Err(err).Str("kind", string(kind)).Int("strand", strand).Int("pc", pc).Msg("fatal error")
	return &Error{Kind: kind, Strand: strand, PC: pc, Err: err}
}

func describeInstruction(instr byte) string {
	if instr == opNewline {
		return "\\n"
	}
	return string(rune(instr))
}
