package types

import (
	"fmt"

	"github.com/dolthub/swiss"

	"github.com/cbcomp/cb/lang/scanner"
	"github.com/cbcomp/cb/lang/token"
)

// tagEntry tracks a struct/union tag's Type alongside the position where it
// was first declared, for duplicate-tag diagnostics.
type tagEntry struct {
	typ *Type
	pos token.Position
}

// TypeTable holds every struct/union tag and typedef alias declared across
// a translation unit, and computes struct/union layout (spec ch. 4.5
// "TypeResolver" and "TypeTable.semanticCheck"). It is backed by a
// swiss-table map for O(1) average lookup of tag and alias names, the same
// data structure the rest of this corpus uses for its symbol maps.
type TypeTable struct {
	tags     *swiss.Map[string, *tagEntry]
	aliases  *swiss.Map[string, *Type] // typedef name -> underlying type
	declOrder []string                 // tag names in declaration order, for deterministic layout/codegen iteration
}

// NewTypeTable returns an empty TypeTable.
func NewTypeTable() *TypeTable {
	return &TypeTable{
		tags:    swiss.NewMap[string, *tagEntry](16),
		aliases: swiss.NewMap[string, *Type](16),
	}
}

// DeclareTag registers a forward declaration or definition of a struct or
// union tag. Calling it again for a known name returns the stored type; it
// is an error only if the kind differs (struct versus union). A second body
// for the same tag is reported by SetMembers.
func (t *TypeTable) DeclareTag(name string, kind Kind, pos token.Position) (*Type, error) {
	if entry, ok := t.tags.Get(name); ok {
		if entry.typ.Kind != kind {
			return nil, fmt.Errorf("%s redeclared as different kind of tag (was %s, now %s)", name, entry.typ.Kind, kind)
		}
		return entry.typ, nil
	}
	typ := &Type{Kind: kind, Name: name}
	t.tags.Put(name, &tagEntry{typ: typ, pos: pos})
	t.declOrder = append(t.declOrder, name)
	return typ, nil
}

// LookupTag returns the previously declared struct/union type for name.
func (t *TypeTable) LookupTag(name string) (*Type, bool) {
	entry, ok := t.tags.Get(name)
	if !ok {
		return nil, false
	}
	return entry.typ, true
}

// DefineAlias registers a typedef name bound to underlying. Redefining an
// existing alias to a different type is an error.
func (t *TypeTable) DefineAlias(name string, underlying *Type) error {
	if existing, ok := t.aliases.Get(name); ok {
		if !existing.Equal(underlying) {
			return fmt.Errorf("typedef %s redefined with a different type", name)
		}
		return nil
	}
	t.aliases.Put(name, underlying)
	return nil
}

// LookupAlias returns the underlying type bound to a typedef name.
func (t *TypeTable) LookupAlias(name string) (*Type, bool) {
	return t.aliases.Get(name)
}

// IsTypeName reports whether name is either a struct/union tag or a
// typedef alias; the parser consults this while deciding whether an
// identifier begins a type-specifier (spec ch. 4.2 grammar ambiguity
// between "T * x" as a declaration versus a multiplication expression).
func (t *TypeTable) IsTypeName(name string) bool {
	if _, ok := t.aliases.Get(name); ok {
		return true
	}
	_, ok := t.tags.Get(name)
	return ok
}

// SetMembers attaches a member list to a previously declared tag, computing
// byte offsets, overall size and alignment. For Union every member starts
// at offset 0 and the union's size is the size of its largest member.
func (t *TypeTable) SetMembers(tagName string, members []Member, pos token.Position, errs *scanner.ErrorList) {
	entry, ok := t.tags.Get(tagName)
	if !ok {
		errs.Add(pos, fmt.Sprintf("internal error: SetMembers on undeclared tag %q", tagName))
		return
	}
	typ := entry.typ
	if typ.Members != nil {
		errs.Add(pos, fmt.Sprintf("%s %s redefined", typ.Kind, tagName))
		return
	}

	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if seen[m.Name] {
			errs.Add(pos, fmt.Sprintf("duplicate member %q in %s %s", m.Name, typ.Kind, tagName))
			continue
		}
		seen[m.Name] = true

		if !m.Type.IsComplete() {
			errs.Add(pos, fmt.Sprintf("member %q of %s %s has incomplete type", m.Name, typ.Kind, tagName))
		}
	}

	switch typ.Kind {
	case Union:
		layoutUnion(typ, members)
	default:
		layoutStruct(typ, members)
	}
}

func layoutStruct(typ *Type, members []Member) {
	offset, align := 0, 1
	laidOut := make([]Member, len(members))
	for i, m := range members {
		if m.Type.IsComplete() {
			a := m.Type.Align()
			if a > align {
				align = a
			}
			offset = alignUp(offset, a)
		}
		m.Offset = offset
		laidOut[i] = m
		if m.Type.IsComplete() {
			offset += m.Type.Size()
		}
	}
	typ.size = alignUp(offset, align)
	typ.align = align
	typ.Members = laidOut
}

func layoutUnion(typ *Type, members []Member) {
	size, align := 0, 1
	laidOut := make([]Member, len(members))
	for i, m := range members {
		m.Offset = 0
		laidOut[i] = m
		if m.Type.IsComplete() {
			if s := m.Type.Size(); s > size {
				size = s
			}
			if a := m.Type.Align(); a > align {
				align = a
			}
		}
	}
	typ.size = alignUp(size, align)
	typ.align = align
	typ.Members = laidOut
}

func alignUp(offset, align int) int {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) / align * align
}

// SemanticCheck walks every declared tag and reports structural errors
// that can only be detected once every tag in the translation unit has
// been declared (spec ch. 4.5 "TypeTable.semanticCheck"): a struct or
// union that directly or indirectly contains itself by value, rather than
// through a pointer, which would require infinite storage.
func (t *TypeTable) SemanticCheck(posOf func(tagName string) token.Position, errs *scanner.ErrorList) {
	for _, name := range t.declOrder {
		entry, _ := t.tags.Get(name)
		visiting := map[string]bool{name: true}
		if containsSelf(entry.typ, visiting) {
			errs.Add(posOf(name), fmt.Sprintf("%s %s contains itself by value", entry.typ.Kind, name))
		}
	}
}

func containsSelf(root *Type, visiting map[string]bool) bool {
	for _, m := range root.Members {
		mt := m.Type
		for mt.Kind == Array {
			mt = mt.Elem
		}
		if mt.Kind != Struct && mt.Kind != Union {
			continue
		}
		if visiting[mt.Name] {
			return true
		}
		visiting[mt.Name] = true
		if containsSelf(mt, visiting) {
			return true
		}
		delete(visiting, mt.Name)
	}
	return false
}
