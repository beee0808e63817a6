package interpreter

import (
	"unicode/utf8"

	"github.com/LyricLy/yaiba/pkg/program"
)

// Check decodes the whole program text without running it and reports every
// instruction that would fail if a strand reached it. Strand is -1 on the
// returned errors.
func Check(prog *program.Program) []*Error {
	var problems []*Error
	text := prog.Text()
	for pc := 0; pc < len(text); {
		instr := text[pc]
		switch instr {
		case opSet, opKill, opSpawn, opSpawnMany, opJump:
			value, width, err := prog.Number(pc + 1)
			if err != nil {
				problems = append(problems, &Error{Kind: operandKind(err), Strand: -1, PC: pc, Err: err})
				pc++
				continue
			}
			if instr == opSpawn || instr == opSpawnMany || instr == opJump {
				if _, err := prog.LineTarget(value); err != nil {
					problems = append(problems, &Error{Kind: operandKind(err), Strand: -1, PC: pc, Err: err})
				}
			}
			pc += 1 + width
		case opRead, opWrite, opHalt, opSleep, opAdd, opSubtract, opNewline:
			pc++
		default:
			r, size := utf8.DecodeRuneInString(text[pc:])
			problems = append(problems, &Error{Kind: KindUnknownInstruction, Strand: -1, PC: pc, Err: unknownInstruction(r)})
			pc += size
		}
	}
	return problems
}
