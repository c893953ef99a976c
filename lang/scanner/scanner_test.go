package scanner

import (
	"testing"

	"github.com/cbcomp/cb/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) ([]token.Token, []token.Value, ErrorList) {
	t.Helper()
	var (
		s      Scanner
		el     ErrorList
		toks   []token.Token
		vals   []token.Value
		tokVal token.Value
	)
	f := token.NewFile("test.cb", len(src))
	s.Init(f, []byte(src), el.Add)
	for {
		tok := s.Scan(&tokVal)
		toks = append(toks, tok)
		vals = append(vals, tokVal)
		if tok == token.EOF {
			break
		}
	}
	return toks, vals, el
}

func TestScanKeywordsAndIdents(t *testing.T) {
	toks, vals, el := scanAll(t, "int x_1 struct Foo")
	require.Empty(t, el)
	require.Equal(t, []token.Token{token.INT_KW, token.IDENT, token.STRUCT, token.IDENT, token.EOF}, toks)
	require.Equal(t, "x_1", vals[1].Raw)
	require.Equal(t, "Foo", vals[3].Raw)
}

func TestScanIntLiterals(t *testing.T) {
	toks, vals, el := scanAll(t, "123 0x7B 012 10U 10L 10UL")
	require.Empty(t, el)
	for _, tok := range toks[:6] {
		require.Equal(t, token.INT, tok)
	}
	require.EqualValues(t, 123, vals[0].Int)
	require.EqualValues(t, 123, vals[1].Int)
	require.EqualValues(t, 10, vals[2].Int)
	require.EqualValues(t, 10, vals[3].Int)
}

func TestScanCharAndStringLiterals(t *testing.T) {
	toks, vals, el := scanAll(t, `'a' '\n' '\x41' "hi\n" "a\"b"`)
	require.Empty(t, el)
	require.Equal(t, token.CHAR, toks[0])
	require.Equal(t, 'a', vals[0].Rune)
	require.Equal(t, '\n', vals[1].Rune)
	require.Equal(t, 'A', vals[2].Rune)
	require.Equal(t, token.STRING, toks[3])
	require.Equal(t, "hi\n", vals[3].Str)
	require.Equal(t, `a"b`, vals[4].Str)
}

func TestScanOperators(t *testing.T) {
	toks, _, el := scanAll(t, "<<= >>= -> ++ -- && || <= >= == != +=")
	require.Empty(t, el)
	want := []token.Token{
		token.LTLT_EQ, token.GTGT_EQ, token.ARROW, token.PLUSPLUS, token.MINUSMINUS,
		token.AMPAMP, token.PIPEPIPE, token.LE, token.GE, token.EQL, token.NEQ, token.PLUS_EQ,
		token.EOF,
	}
	require.Equal(t, want, toks)
}

func TestScanComments(t *testing.T) {
	toks, _, el := scanAll(t, "int /* block \n comment */ x; // line\ny")
	require.Empty(t, el)
	require.Equal(t, []token.Token{token.INT_KW, token.IDENT, token.SEMI, token.IDENT, token.EOF}, toks)
}

func TestScanUnterminatedString(t *testing.T) {
	_, _, el := scanAll(t, `"abc`)
	require.NotEmpty(t, el)
}

func TestScanIllegalChar(t *testing.T) {
	_, _, el := scanAll(t, "$")
	require.NotEmpty(t, el)
	require.Equal(t, Syntax, el[0].Kind)
}

func TestScanPositions(t *testing.T) {
	_, vals, _ := scanAll(t, "int\nx")
	line, col := vals[0].Pos.LineCol()
	require.Equal(t, 1, line)
	require.Equal(t, 1, col)
	line, col = vals[1].Pos.LineCol()
	require.Equal(t, 2, line)
	require.Equal(t, 1, col)
}
