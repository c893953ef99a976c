package types

import (
	"strconv"
	"strings"
)

// Member is one field of a Struct or Union type, with its layout-computed
// byte Offset filled in by TypeTable.SetMembers.
type Member struct {
	Name   string
	Type   *Type
	Offset int
}

// Type is Cb's resolved, structural type representation. Only the fields
// relevant to Kind are meaningful; see the comment on each field.
type Type struct {
	Kind Kind

	// Pointer, Array
	Elem *Type

	// Array: element count; -1 for an unsized array (only legal as a
	// function parameter, where it decays to Pointer, or as an "extern"
	// array declaration completed elsewhere).
	Len int

	// Function
	Ret      *Type
	Params   []*Type
	Variadic bool

	// Struct, Union: Name is the tag name; Members is nil until
	// TypeTable.SetMembers has computed layout (a forward-declared tag
	// with no body yet is an incomplete type, Members == nil).
	Name    string
	Members []Member
	size    int // computed by SetMembers for Struct/Union
	align   int // computed by SetMembers for Struct/Union
}

// Scalar constructors for the builtin kinds; these are safe to share as
// they carry no mutable layout state.
var (
	VoidType   = &Type{Kind: Void}
	CharType   = &Type{Kind: Char}
	UCharType  = &Type{Kind: UChar}
	ShortType  = &Type{Kind: Short}
	UShortType = &Type{Kind: UShort}
	IntType    = &Type{Kind: Int}
	UIntType   = &Type{Kind: UInt}
	LongType   = &Type{Kind: Long}
	ULongType  = &Type{Kind: ULong}
)

// NewPointer returns a pointer-to-elem type.
func NewPointer(elem *Type) *Type { return &Type{Kind: Pointer, Elem: elem} }

// NewArray returns an array-of-elem type with the given element count, or
// an unsized array if length < 0.
func NewArray(elem *Type, length int) *Type {
	if length < 0 {
		length = -1
	}
	return &Type{Kind: Array, Elem: elem, Len: length}
}

// NewFunction returns the type of a function designator.
func NewFunction(ret *Type, params []*Type, variadic bool) *Type {
	return &Type{Kind: Function, Ret: ret, Params: params, Variadic: variadic}
}

// IsComplete reports whether t has a known size: every scalar and pointer
// is complete, an Array is complete iff Len >= 0 and its element is
// complete, and a Struct/Union is complete iff it has been given a body
// (Members != nil after SetMembers).
func (t *Type) IsComplete() bool {
	switch t.Kind {
	case Void:
		return false
	case Array:
		return t.Len >= 0 && t.Elem.IsComplete()
	case Struct, Union:
		return t.Members != nil
	default:
		return true
	}
}

// Size returns the size in bytes of t. It does not check completeness:
// for void or a struct/union with no body it returns 0, and for an
// unsized array a negative value.
func (t *Type) Size() int {
	switch t.Kind {
	case Array:
		return t.Len * t.Elem.Size()
	case Struct, Union:
		return t.size
	default:
		return scalarSizes[t.Kind]
	}
}

// Align returns the alignment in bytes required by t.
func (t *Type) Align() int {
	switch t.Kind {
	case Array:
		return t.Elem.Align()
	case Struct, Union:
		return t.align
	default:
		return scalarAligns[t.Kind]
	}
}

// Equal reports whether t and other describe the same type, structurally
// for scalars/pointers/arrays/functions and by tag identity for
// struct/union (two distinct tags are never equal even with identical
// members, matching C's nominal aggregate typing).
func (t *Type) Equal(other *Type) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil || t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case Pointer:
		return t.Elem.Equal(other.Elem)
	case Array:
		return t.Len == other.Len && t.Elem.Equal(other.Elem)
	case Function:
		if t.Variadic != other.Variadic || len(t.Params) != len(other.Params) || !t.Ret.Equal(other.Ret) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(other.Params[i]) {
				return false
			}
		}
		return true
	case Struct, Union:
		return t.Name == other.Name
	default:
		return true
	}
}

// Member looks up a named member of a Struct or Union type.
func (t *Type) Member(name string) (Member, bool) {
	for _, m := range t.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

func (t *Type) String() string {
	switch t.Kind {
	case Pointer:
		return t.Elem.String() + "*"
	case Array:
		if t.Len < 0 {
			return t.Elem.String() + "[]"
		}
		return t.Elem.String() + "[" + strconv.Itoa(t.Len) + "]"
	case Function:
		var params []string
		for _, p := range t.Params {
			params = append(params, p.String())
		}
		if t.Variadic {
			params = append(params, "...")
		}
		return t.Ret.String() + "(" + strings.Join(params, ", ") + ")"
	case Struct:
		return "struct " + t.Name
	case Union:
		return "union " + t.Name
	default:
		return t.Kind.String()
	}
}
