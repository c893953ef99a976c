// Package types implements Cb's static type system (spec ch. 4.5): the
// resolved, structural Type representation that TypeResolver attaches to
// every declaration and expression, and the TypeTable that holds named
// struct/union/typedef definitions and computes their ILP32 layout.
//
// This is deliberately distinct from a dynamic-language runtime value
// system: Cb has no bytecode interpreter and no values that carry their
// type at run time, so every Type here is fully resolved at compile time
// and is only ever consulted by the compiler, never by generated code.
package types

// Kind identifies the shape of a Type.
type Kind int

// List of type kinds.
const (
	Void Kind = iota
	Char
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	Pointer
	Array
	Function
	Struct
	Union
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Char:
		return "char"
	case UChar:
		return "unsigned char"
	case Short:
		return "short"
	case UShort:
		return "unsigned short"
	case Int:
		return "int"
	case UInt:
		return "unsigned int"
	case Long:
		return "long"
	case ULong:
		return "unsigned long"
	case Pointer:
		return "pointer"
	case Array:
		return "array"
	case Function:
		return "function"
	case Struct:
		return "struct"
	case Union:
		return "union"
	default:
		return "<invalid kind>"
	}
}

// IsInteger reports whether k is one of Cb's integral scalar kinds.
func (k Kind) IsInteger() bool {
	switch k {
	case Char, UChar, Short, UShort, Int, UInt, Long, ULong:
		return true
	default:
		return false
	}
}

// IsUnsigned reports whether k is an unsigned integral kind.
func (k Kind) IsUnsigned() bool {
	switch k {
	case UChar, UShort, UInt, ULong:
		return true
	default:
		return false
	}
}

// IsScalar reports whether k is an integer or a pointer, i.e. a kind that
// may appear in arithmetic/comparison/conditional contexts.
func (k Kind) IsScalar() bool {
	return k.IsInteger() || k == Pointer
}

// scalarSizes gives the size, in bytes, of every scalar kind under the
// ILP32 target data model (spec ch. 4.8.2: 32-bit x86).
var scalarSizes = map[Kind]int{
	Void:    0,
	Char:    1,
	UChar:   1,
	Short:   2,
	UShort:  2,
	Int:     4,
	UInt:    4,
	Long:    4,
	ULong:   4,
	Pointer: 4,
}

// scalarAligns gives the alignment, in bytes, of every scalar kind; under
// ILP32 every scalar is naturally aligned to its own size.
var scalarAligns = scalarSizes
