package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		require.NotEmpty(t, tok.String(), "token %d missing string representation", tok)
	}
}

func TestGoString(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "identifier", IDENT.GoString())
}

func TestLookupIdent(t *testing.T) {
	require.Equal(t, IF, LookupIdent("if"))
	require.Equal(t, SIZEOF, LookupIdent("sizeof"))
	require.Equal(t, IDENT, LookupIdent("foo"))
}

func TestIsUnaryOp(t *testing.T) {
	require.True(t, MINUS.IsUnaryOp())
	require.True(t, STAR.IsUnaryOp())
	require.True(t, SIZEOF.IsUnaryOp())
	require.False(t, PLUS_EQ.IsUnaryOp())
}

func TestIsAssignOp(t *testing.T) {
	require.True(t, EQ.IsAssignOp())
	require.True(t, LTLT_EQ.IsAssignOp())
	require.False(t, EQL.IsAssignOp())
}

func TestLiteral(t *testing.T) {
	val := Value{Raw: "x", Int: 42, Str: "hi", Rune: 'a'}
	require.Equal(t, "x", IDENT.Literal(val))
	require.Equal(t, "42", INT.Literal(val))
	require.Equal(t, `"hi"`, STRING.Literal(val))
	require.Equal(t, "'a'", CHAR.Literal(val))
	require.Equal(t, "", ILLEGAL.Literal(val))
}

func TestIsTypeKeyword(t *testing.T) {
	require.True(t, INT_KW.IsTypeKeyword())
	require.True(t, STRUCT.IsTypeKeyword())
	require.False(t, IDENT.IsTypeKeyword())
	require.False(t, IF.IsTypeKeyword())
}
