package scanner

import "strconv"

// number scans a decimal, hexadecimal (0x...) or octal (0...) integer
// literal, including an optional U and/or L suffix (spec 4.1), and returns
// its raw text (suffix included) along with the numeric base to use when
// decoding the digit run.
func (s *Scanner) number() (lit string, base int) {
	start := s.off
	base = 10

	if s.cur == '0' {
		s.advance()
		switch {
		case s.cur == 'x' || s.cur == 'X':
			base = 16
			s.advance()
			for isHexDigit(s.cur) {
				s.advance()
			}
		case isDigit(s.cur):
			base = 8
			for isOctalDigit(s.cur) {
				s.advance()
			}
		}
	} else {
		for isDigit(s.cur) {
			s.advance()
		}
	}

	// optional U/L suffix, in either order, case-insensitive
	for s.cur == 'u' || s.cur == 'U' || s.cur == 'l' || s.cur == 'L' {
		s.advance()
	}

	return string(s.src[start:s.off]), base
}

func isHexDigit(rn rune) bool {
	return isDigit(rn) || 'a' <= rn && rn <= 'f' || 'A' <= rn && rn <= 'F'
}

func isOctalDigit(rn rune) bool {
	return '0' <= rn && rn <= '7'
}

// numberToInt decodes the digit run of lit (U/L suffix stripped) in the
// given base into an int64. A strconv.ErrRange error indicates the value
// does not fit a 64-bit unsigned word; the returned value is then the
// saturated maximum (all bits set, -1 as an int64), not a wrapped-around
// one. Scan reports that case through its error handler like any other
// lexical error, not as a Warning.
func numberToInt(lit string, base int) (int64, error) {
	digits := stripIntSuffix(lit)
	switch {
	case base == 16:
		digits = digits[2:] // strip 0x/0X
	case base == 8 && len(digits) > 1:
		digits = digits[1:] // strip leading 0
	}
	if digits == "" {
		digits = "0"
	}
	v, err := strconv.ParseUint(digits, base, 64)
	return int64(v), err
}

func stripIntSuffix(lit string) string {
	end := len(lit)
	for end > 0 {
		c := lit[end-1]
		if c == 'u' || c == 'U' || c == 'l' || c == 'L' {
			end--
			continue
		}
		break
	}
	return lit[:end]
}
