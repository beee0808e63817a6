package program

// LineIndex maps 1-based line numbers to the offset of the line's first
// character. Entry 0 is always offset 0.
type LineIndex []int

// BuildLineIndex records offset 0 and, for every newline, the offset of the
// character that follows it.
func BuildLineIndex(text string) LineIndex {
	lines := LineIndex{0}
	for idx := 0; idx < len(text); idx++ {
		if text[idx] == '\n' {
			lines = append(lines, idx+1)
		}
	}
	return lines
}

// Len reports the number of lines.
func (l LineIndex) Len() int {
	return len(l)
}

// Offset resolves a 1-based line number to its starting offset.
func (l LineIndex) Offset(line int64) (int, error) {
	if line <= 0 || line > int64(len(l)) {
		return 0, lineOutOfRange(line)
	}
	return l[line-1], nil
}

// LineOf returns the 1-based line containing offset, for diagnostics.
func (l LineIndex) LineOf(offset int) int {
	lo, hi := 0, len(l)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if l[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}
