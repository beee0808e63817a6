package program

import "math"

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ParseNumber scans the maximal run of decimal digits starting at pos and
// returns its value and the number of digits consumed. An empty run is a
// MalformedLiteral naming the character just before pos.
func ParseNumber(text string, pos int) (int64, int, error) {
	var value int64
	width := 0
	overflow := false
	for idx := pos; idx >= 0 && idx < len(text) && isDigit(text[idx]); idx++ {
		digit := int64(text[idx] - '0')
		if value > (math.MaxInt64-digit)/10 {
			overflow = true
		}
		value = value*10 + digit
		width++
	}
	if width == 0 {
		return 0, 0, malformedLiteral(pos, "expected number after %s", describePreceding(text, pos))
	}
	if overflow {
		return 0, width, malformedLiteral(pos, "number out of range after %s: %s", describePreceding(text, pos), text[pos:pos+width])
	}
	return value, width, nil
}

func describePreceding(text string, pos int) string {
	if pos <= 0 || pos > len(text) {
		return "start of program"
	}
	return quoteChar(text[pos-1])
}

func quoteChar(c byte) string {
	if c == '\n' {
		return `'\n'`
	}
	return "'" + string(rune(c)) + "'"
}
