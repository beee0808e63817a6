// Package program holds preprocessed Rui program text together with its line
// index and the literal scanner used to decode instruction operands.
package program

import "strings"

// Program is immutable, stripped program text addressable by byte offset.
type Program struct {
	Name  string
	text  string
	lines LineIndex
}

// New indexes already stripped text.
func New(name, text string) *Program {
	return &Program{Name: name, text: text, lines: BuildLineIndex(text)}
}

// FromSource strips raw source text and indexes the result.
func FromSource(name, raw string) *Program {
	return New(name, Strip(raw))
}

func (p *Program) Text() string {
	return p.text
}

func (p *Program) Len() int {
	return len(p.text)
}

func (p *Program) Lines() LineIndex {
	return p.lines
}

// At returns the byte at offset and false when offset is outside the text.
func (p *Program) At(offset int) (byte, bool) {
	if offset < 0 || offset >= len(p.text) {
		return 0, false
	}
	return p.text[offset], true
}

// Number scans a literal operand at offset.
func (p *Program) Number(offset int) (int64, int, error) {
	return ParseNumber(p.text, offset)
}

// LineTarget resolves a jump or spawn target.
func (p *Program) LineTarget(line int64) (int, error) {
	return p.lines.Offset(line)
}

// Position renders offset as line:column for diagnostics.
func (p *Program) Position(offset int) (int, int) {
	line := p.lines.LineOf(offset)
	return line, offset - p.lines[line-1] + 1
}

// Strip removes whitespace other than newlines and drops every '#' comment
// through the end of its line. Carriage returns are discarded so CRLF files
// index the same as LF files.
func Strip(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	inComment := false
	for idx := 0; idx < len(raw); idx++ {
		c := raw[idx]
		switch {
		case c == '\n':
			inComment = false
			b.WriteByte(c)
		case inComment:
		case c == '#':
			inComment = true
		case c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f':
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
