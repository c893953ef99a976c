package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cbcomp/cb/lang/scanner"
	"github.com/cbcomp/cb/lang/token"
)

func TestStructLayout(t *testing.T) {
	tt := NewTypeTable()
	typ, err := tt.DeclareTag("Point", Struct, token.Position{})
	require.NoError(t, err)

	var errs scanner.ErrorList
	tt.SetMembers("Point", []Member{
		{Name: "x", Type: IntType},
		{Name: "y", Type: IntType},
	}, token.Position{}, &errs)
	require.Empty(t, errs)

	require.Equal(t, 8, typ.Size())
	require.Equal(t, 4, typ.Align())
	m, ok := typ.Member("y")
	require.True(t, ok)
	require.Equal(t, 4, m.Offset)
}

func TestStructLayoutWithPadding(t *testing.T) {
	tt := NewTypeTable()
	tt.DeclareTag("Mixed", Struct, token.Position{})

	var errs scanner.ErrorList
	tt.SetMembers("Mixed", []Member{
		{Name: "c", Type: CharType},
		{Name: "n", Type: IntType},
	}, token.Position{}, &errs)
	require.Empty(t, errs)

	typ, _ := tt.LookupTag("Mixed")
	n, _ := typ.Member("n")
	require.Equal(t, 4, n.Offset) // padded up to int's 4-byte alignment
	require.Equal(t, 8, typ.Size())
}

func TestUnionLayout(t *testing.T) {
	tt := NewTypeTable()
	tt.DeclareTag("U", Union, token.Position{})

	var errs scanner.ErrorList
	tt.SetMembers("U", []Member{
		{Name: "i", Type: IntType},
		{Name: "c", Type: CharType},
	}, token.Position{}, &errs)
	require.Empty(t, errs)

	typ, _ := tt.LookupTag("U")
	require.Equal(t, 4, typ.Size())
	i, _ := typ.Member("i")
	c, _ := typ.Member("c")
	require.Equal(t, 0, i.Offset)
	require.Equal(t, 0, c.Offset)
}

func TestDuplicateMemberIsError(t *testing.T) {
	tt := NewTypeTable()
	tt.DeclareTag("Dup", Struct, token.Position{})

	var errs scanner.ErrorList
	tt.SetMembers("Dup", []Member{
		{Name: "x", Type: IntType},
		{Name: "x", Type: IntType},
	}, token.Position{}, &errs)
	require.NotEmpty(t, errs)
}

func TestSelfContainmentByValueIsError(t *testing.T) {
	tt := NewTypeTable()
	typ, _ := tt.DeclareTag("Node", Struct, token.Position{})

	var errs scanner.ErrorList
	tt.SetMembers("Node", []Member{
		{Name: "next", Type: typ}, // by value: illegal, infinite size
	}, token.Position{}, &errs)

	var semErrs scanner.ErrorList
	tt.SemanticCheck(func(string) token.Position { return token.Position{} }, &semErrs)
	require.NotEmpty(t, semErrs)
}

func TestSelfReferenceByPointerIsFine(t *testing.T) {
	tt := NewTypeTable()
	typ, _ := tt.DeclareTag("Node", Struct, token.Position{})

	var errs scanner.ErrorList
	tt.SetMembers("Node", []Member{
		{Name: "next", Type: NewPointer(typ)},
	}, token.Position{}, &errs)
	require.Empty(t, errs)

	var semErrs scanner.ErrorList
	tt.SemanticCheck(func(string) token.Position { return token.Position{} }, &semErrs)
	require.Empty(t, semErrs)
}

func TestTypeEqual(t *testing.T) {
	require.True(t, NewPointer(IntType).Equal(NewPointer(IntType)))
	require.False(t, NewPointer(IntType).Equal(NewPointer(CharType)))
	require.True(t, NewArray(IntType, 4).Equal(NewArray(IntType, 4)))
	require.False(t, NewArray(IntType, 4).Equal(NewArray(IntType, 5)))
}

func TestIsTypeName(t *testing.T) {
	tt := NewTypeTable()
	tt.DeclareTag("Point", Struct, token.Position{})
	require.NoError(t, tt.DefineAlias("MyInt", IntType))

	require.True(t, tt.IsTypeName("Point"))
	require.True(t, tt.IsTypeName("MyInt"))
	require.False(t, tt.IsTypeName("x"))
}
