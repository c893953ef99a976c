package token

import (
	"fmt"
	"strconv"
)

// Value carries the payload associated with a scanned token: its exact
// source text (Raw), its position, and for literal tokens the already
// decoded value.
type Value struct {
	Raw  string // exact source text of the token
	Pos  Pos
	Int  int64  // decoded value for INT
	Str  string // decoded value for STRING
	Rune rune   // decoded value for CHAR, as a code point
}

// Literal returns the human-readable literal representation of a token of
// type tok carrying value val, as printed by the dump-tokens driver mode.
// It returns "" for tokens that carry no literal value.
func (tok Token) Literal(val Value) string {
	switch tok {
	case IDENT:
		return val.Raw
	case INT:
		return strconv.FormatInt(val.Int, 10)
	case CHAR:
		return fmt.Sprintf("%q", val.Rune)
	case STRING:
		return strconv.Quote(val.Str)
	default:
		return ""
	}
}
