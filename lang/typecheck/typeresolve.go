package typecheck

import (
	"strings"

	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/scanner"
	"github.com/cbcomp/cb/lang/token"
	"github.com/cbcomp/cb/lang/types"
)

var builtinNamed = map[string]*types.Type{
	"void":               types.VoidType,
	"char":               types.CharType,
	"unsigned char":       types.UCharType,
	"short":              types.ShortType,
	"unsigned short":     types.UShortType,
	"int":                types.IntType,
	"unsigned int":       types.UIntType,
	"long":               types.LongType,
	"unsigned long":      types.ULongType,
}

type typeResolver struct {
	fset  *token.FileSet
	file  *token.File
	table *types.TypeTable
	info  *Info
	errs  scanner.ErrorList
}

// ResolveTypes runs TypeResolver and TypeTable.semanticCheck over a single
// chunk (spec ch. 4.5): every struct/union tag is registered and laid out,
// every typedef alias is recorded, and every function/variable/parameter
// declaration's type is attached to info. table is per-unit (spec ch. 5),
// so the caller supplies a fresh TypeTable per chunk. The returned error,
// if non-nil, is a scanner.ErrorList.
func ResolveTypes(fset *token.FileSet, ch *ast.Chunk, table *types.TypeTable, info *Info) error {
	tr := &typeResolver{fset: fset, file: fset.File(ch.Name), table: table, info: info}

	tagPos := map[string]token.Position{}
	tr.resolveAll(ch, tagPos)

	table.SemanticCheck(func(tag string) token.Position { return tagPos[tag] }, &tr.errs)
	tr.errs.Sort()
	return tr.errs.Err()
}

// resolveAll walks ch once, declaring every struct/union tag before any
// member or declarator type is resolved (so mutually-referential tags such
// as two structs each pointing at the other resolve regardless of textual
// order), then resolves every declaration's type.
func (tr *typeResolver) resolveAll(ch *ast.Chunk, tagPos map[string]token.Position) {
	var declareTags ast.VisitorFunc
	declareTags = func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir != ast.VisitEnter {
			return declareTags
		}
		if ad, ok := n.(*ast.AggregateDecl); ok {
			kind := types.Struct
			if ad.Kind == ast.UnionKind {
				kind = types.Union
			}
			pos := tr.file.Position(ad.NamePos)
			if _, err := tr.table.DeclareTag(ad.Name, kind, pos); err != nil {
				tr.errs.AddKind(pos, scanner.Semantic, err.Error())
			} else if _, dup := tagPos[ad.Name]; !dup {
				tagPos[ad.Name] = pos
			}
		}
		return declareTags
	}
	ast.Walk(declareTags, ch)

	var resolveDecls ast.VisitorFunc
	resolveDecls = func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir != ast.VisitEnter {
			return resolveDecls
		}
		switch d := n.(type) {
		case *ast.AggregateDecl:
			tr.resolveAggregate(d)
		case *ast.TypedefDecl:
			tr.resolveTypedef(d)
		case *ast.FuncDecl:
			tr.resolveFunc(d)
		case *ast.VarDecl:
			tr.resolveVar(d)
		case *ast.ConstDecl:
			t := tr.resolveTypeExpr(d.Type)
			tr.info.setDeclType(d, t)
		}
		return resolveDecls
	}
	ast.Walk(resolveDecls, ch)
}

func (tr *typeResolver) resolveAggregate(d *ast.AggregateDecl) {
	members := make([]types.Member, 0, len(d.Members))
	for _, m := range d.Members {
		mt := tr.resolveTypeExpr(m.Type)
		tr.info.setDeclType(m, mt)
		members = append(members, types.Member{Name: m.Name, Type: mt})
	}
	tr.table.SetMembers(d.Name, members, tr.file.Position(d.NamePos), &tr.errs)
}

func (tr *typeResolver) resolveTypedef(d *ast.TypedefDecl) {
	underlying := tr.resolveTypeExpr(d.Type)
	if err := tr.table.DefineAlias(d.Name, underlying); err != nil {
		tr.errs.AddKind(tr.file.Position(d.NamePos), scanner.Semantic, err.Error())
	}
	tr.info.setDeclType(d, underlying)
}

func (tr *typeResolver) resolveFunc(d *ast.FuncDecl) {
	ret := tr.resolveTypeExpr(d.Ret)
	params := make([]*types.Type, 0, len(d.Params))
	for _, p := range d.Params {
		pt := tr.resolveTypeExpr(p.Type)
		tr.info.setDeclType(p, pt)
		params = append(params, pt)
	}
	tr.info.setDeclType(d, types.NewFunction(ret, params, d.Variadic.IsValid()))
}

func (tr *typeResolver) resolveVar(d *ast.VarDecl) {
	t := tr.resolveTypeExpr(d.Type)
	tr.info.setDeclType(d, t)
}

// resolveTypeExpr converts the syntactic type expression written in
// source into a resolved types.Type, declaring an incomplete forward tag
// on first reference to a struct/union name this pass hasn't seen yet
// (spec ch. 4.5: a pointer to a not-yet-defined tag is legal).
func (tr *typeResolver) resolveTypeExpr(te ast.TypeExpr) *types.Type {
	return resolveTypeExprWith(tr.table, tr.file, &tr.errs, te)
}

// ResolveTypeExprForCodegen resolves a syntactic type expression against
// an already fully laid-out table, discarding any diagnostic. Codegen
// uses this for "sizeof(Type)" (spec ch. 4.8.1), the one place it needs a
// type that no earlier pass recorded an Info entry for.
func ResolveTypeExprForCodegen(table *types.TypeTable, file *token.File, te ast.TypeExpr) *types.Type {
	var discard scanner.ErrorList
	return resolveTypeExprWith(table, file, &discard, te)
}

// resolveTypeExprWith is the shared type-expression resolver used by
// TypeResolver for declarators and, quietly (with a throwaway ErrorList),
// by the typer that DereferenceChecker and TypeChecker build on to
// classify an explicit cast's target type (spec ch. 4.6-4.7).
func resolveTypeExprWith(table *types.TypeTable, file *token.File, errs *scanner.ErrorList, te ast.TypeExpr) *types.Type {
	switch te := te.(type) {
	case *ast.NamedTypeExpr:
		if t, ok := builtinNamed[te.Name]; ok {
			return t
		}
		switch {
		case strings.HasPrefix(te.Name, "struct "):
			return lookupOrForwardDeclare(table, file, errs, strings.TrimPrefix(te.Name, "struct "), types.Struct, te.NamePos)
		case strings.HasPrefix(te.Name, "union "):
			return lookupOrForwardDeclare(table, file, errs, strings.TrimPrefix(te.Name, "union "), types.Union, te.NamePos)
		default:
			if u, ok := table.LookupAlias(te.Name); ok {
				return u
			}
			errs.AddKind(file.Position(te.NamePos), scanner.Semantic, "unknown type name "+te.Name)
			return types.IntType
		}
	case *ast.PointerTypeExpr:
		return types.NewPointer(resolveTypeExprWith(table, file, errs, te.Elem))
	case *ast.ArrayTypeExpr:
		elem := resolveTypeExprWith(table, file, errs, te.Elem)
		length := -1
		if te.Len != nil {
			lit, ok := te.Len.(*ast.IntLitExpr)
			if !ok {
				errs.AddKind(file.Position(te.Lbrack), scanner.Semantic, "array length must be a constant expression")
			} else {
				length = int(lit.Value)
			}
		}
		return types.NewArray(elem, length)
	case *ast.FuncTypeExpr:
		ret := resolveTypeExprWith(table, file, errs, te.Ret)
		params := make([]*types.Type, 0, len(te.Params))
		for _, p := range te.Params {
			params = append(params, resolveTypeExprWith(table, file, errs, p.Type))
		}
		return types.NewFunction(ret, params, te.Variadic)
	default:
		return types.IntType
	}
}

func lookupOrForwardDeclare(table *types.TypeTable, file *token.File, errs *scanner.ErrorList, tag string, kind types.Kind, pos token.Pos) *types.Type {
	if t, ok := table.LookupTag(tag); ok {
		return t
	}
	t, err := table.DeclareTag(tag, kind, file.Position(pos))
	if err != nil {
		errs.AddKind(file.Position(pos), scanner.Semantic, err.Error())
	}
	return t
}
