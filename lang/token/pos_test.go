package token

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakePosLineCol(t *testing.T) {
	cases := []struct {
		line, col int
	}{
		{1, 1},
		{1, 80},
		{42, 3},
		{MaxLines, MaxCols},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%d:%d", c.line, c.col), func(t *testing.T) {
			p := MakePos(c.line, c.col)
			gotLine, gotCol := p.LineCol()
			require.Equal(t, c.line, gotLine)
			require.Equal(t, c.col, gotCol)
		})
	}
}

func TestPosUnknown(t *testing.T) {
	require.True(t, NoPos.Unknown())
	require.False(t, MakePos(1, 1).Unknown())
}

func TestFilePosition(t *testing.T) {
	// source: "int x;\nint y;\n" - lines start at 0 and 7
	f := NewFile("a.cb", 14)
	f.AddLine(7)

	require.Equal(t, Position{Filename: "a.cb", Line: 1, Col: 1}, f.Position(f.Pos(0)))
	require.Equal(t, Position{Filename: "a.cb", Line: 1, Col: 5}, f.Position(f.Pos(4)))
	require.Equal(t, Position{Filename: "a.cb", Line: 2, Col: 1}, f.Position(f.Pos(7)))
	require.Equal(t, "a.cb:2:1", f.Position(f.Pos(7)).String())
}

func TestFileSet(t *testing.T) {
	fs := NewFileSet()
	f := fs.AddFile("b.cb", 3)
	require.Same(t, f, fs.File("b.cb"))
	require.Nil(t, fs.File("missing.cb"))
}

func TestFormatPos(t *testing.T) {
	f := NewFile("a.cb", 3)
	p := MakePos(2, 5)

	require.Equal(t, "", FormatPos(PosNone, f, p, true))
	require.Equal(t, "2:5", FormatPos(PosShort, f, p, false))
	require.Equal(t, "a.cb:2:5:", FormatPos(PosLong, f, p, true))
}
