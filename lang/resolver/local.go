package resolver

import (
	"fmt"

	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/scanner"
	"github.com/cbcomp/cb/lang/token"
)

// localResolver builds the scope tree for one compilation and binds every
// identifier use (spec ch. 4.4).
type localResolver struct {
	fset *token.FileSet
	file *token.File // current chunk's file, for positioning diagnostics
	errs scanner.ErrorList
	top  *scope
}

// ResolveLocals runs LocalReferenceResolver over every chunk: file-scope
// declarations are merged into one top-level scope shared across chunks
// (spec ch. 4.4 "Top-level duplicate handling"), then each function body is
// walked in its own nested scopes. The returned error, if non-nil, is a
// scanner.ErrorList.
func ResolveLocals(fset *token.FileSet, chunks []*ast.Chunk) error {
	r := &localResolver{fset: fset, top: newScope(nil)}

	for _, ch := range chunks {
		r.file = fset.File(ch.Name)
		for _, d := range ch.Decls {
			r.declareTopLevel(d)
		}
	}
	for _, ch := range chunks {
		r.file = fset.File(ch.Name)
		for _, d := range ch.Decls {
			if fd, ok := d.(*ast.FuncDecl); ok && fd.Body != nil {
				r.resolveFunc(fd)
			} else if vd, ok := d.(*ast.VarDecl); ok && vd.Init != nil {
				r.resolveExpr(r.top, vd.Init)
			}
		}
	}
	r.errs.Sort()
	return r.errs.Err()
}

func (r *localResolver) errorAt(pos token.Pos, format string, args ...any) {
	r.errs.AddKind(r.file.Position(pos), scanner.Semantic, fmt.Sprintf(format, args...))
}

// declareTopLevel binds a file-scope declaration into the shared top-level
// scope, merging a prototype with its later definition (or vice versa).
func (r *localResolver) declareTopLevel(d ast.Decl) {
	switch d := d.(type) {
	case *ast.FuncDecl:
		r.declareFunc(d)
	case *ast.VarDecl:
		r.declareVar(d)
	case *ast.TypedefDecl:
		if prev, ok := r.top.declare(d.Name, &Binding{Name: d.Name, Kind: Typedef, Decl: d}); !ok && prev.Kind != Typedef {
			r.errorAt(d.NamePos, "%s redeclared as typedef", d.Name)
		}
	case *ast.AggregateDecl, *ast.ConstDecl:
		// Tag names live in a separate namespace tracked by types.TypeTable;
		// ConstDecl names are not bound: the parser does not produce
		// ConstDecl nodes, and TypeResolver records only their type.
	}
}

func (r *localResolver) declareFunc(d *ast.FuncDecl) {
	prev, ok := r.top.declare(d.Name, &Binding{Name: d.Name, Kind: Func, Decl: d})
	if ok {
		return
	}
	prevFn, isFunc := prev.Decl.(*ast.FuncDecl)
	if !isFunc {
		r.errorAt(d.NamePos, "%s redeclared as function, previously declared as %s", d.Name, prev.Kind)
		return
	}
	switch {
	case prevFn.Body != nil && d.Body != nil:
		r.errorAt(d.NamePos, "redefinition of function %s", d.Name)
	case d.Body != nil:
		// New declaration is the definition; replace the recorded binding so
		// later lookups (and TypeResolver) see the defining FuncDecl.
		r.top.names[d.Name] = &Binding{Name: d.Name, Kind: Func, Decl: d}
	default:
		// Additional prototype repeating a known declaration: keep the first.
	}
}

func (r *localResolver) declareVar(d *ast.VarDecl) {
	prev, ok := r.top.declare(d.Name, &Binding{Name: d.Name, Kind: Var, Decl: d})
	if ok {
		return
	}
	prevVar, isVar := prev.Decl.(*ast.VarDecl)
	if !isVar {
		r.errorAt(d.NamePos, "%s redeclared as variable, previously declared as %s", d.Name, prev.Kind)
		return
	}
	switch {
	case !prevVar.Extern && !d.Extern:
		r.errorAt(d.NamePos, "redefinition of variable %s", d.Name)
	case d.Init != nil || (!d.Extern && prevVar.Extern):
		r.top.names[d.Name] = &Binding{Name: d.Name, Kind: Var, Decl: d}
	default:
		// Repeated extern declaration: keep the first.
	}
}

func (r *localResolver) resolveFunc(fd *ast.FuncDecl) {
	fnScope := newScope(r.top)
	for _, p := range fd.Params {
		if p.Name == "" {
			continue // unnamed parameter, legal only in a prototype (not a definition)
		}
		if _, ok := fnScope.declare(p.Name, &Binding{Name: p.Name, Kind: Param, Decl: p}); !ok {
			r.errorAt(p.NamePos, "duplicate parameter name %s", p.Name)
		}
	}
	r.resolveBlock(fnScope, fd.Body)
}

func (r *localResolver) resolveBlock(parent *scope, b *ast.Block) {
	s := newScope(parent)
	for _, stmt := range b.Stmts {
		r.resolveStmt(s, stmt)
	}
}

func (r *localResolver) resolveStmt(s *scope, stmt ast.Stmt) {
	switch st := stmt.(type) {
	case *ast.BlockStmt:
		r.resolveBlock(s, st.Block)
	case *ast.ExprStmt:
		if _, ok := st.X.(*ast.BadExpr); !ok {
			r.resolveExpr(s, st.X)
		}
	case *ast.VarDecl:
		r.resolveLocalVar(s, st)
	case *ast.TypedefDecl:
		if _, ok := s.declare(st.Name, &Binding{Name: st.Name, Kind: Typedef, Decl: st}); !ok {
			r.errorAt(st.NamePos, "%s redeclared in this scope", st.Name)
		}
	case *ast.FuncDecl:
		if _, ok := s.declare(st.Name, &Binding{Name: st.Name, Kind: Func, Decl: st}); !ok {
			r.errorAt(st.NamePos, "%s redeclared in this scope", st.Name)
		}
	case *ast.AggregateDecl:
		// tag only, no value-namespace binding
	case *ast.IfStmt:
		r.resolveExpr(s, st.Cond)
		r.resolveStmt(s, st.Then)
		if st.Else != nil {
			r.resolveStmt(s, st.Else)
		}
	case *ast.WhileStmt:
		r.resolveExpr(s, st.Cond)
		r.resolveStmt(s, st.Body)
	case *ast.DoWhileStmt:
		r.resolveStmt(s, st.Body)
		r.resolveExpr(s, st.Cond)
	case *ast.ForStmt:
		forScope := newScope(s)
		if st.Init != nil {
			r.resolveStmt(forScope, st.Init)
		}
		if st.Cond != nil {
			r.resolveExpr(forScope, st.Cond)
		}
		if st.Post != nil {
			r.resolveExpr(forScope, st.Post)
		}
		r.resolveStmt(forScope, st.Body)
	case *ast.SwitchStmt:
		r.resolveExpr(s, st.Tag)
		for _, c := range st.Cases {
			caseScope := newScope(s)
			if c.Value != nil {
				r.resolveExpr(caseScope, c.Value)
			}
			for _, inner := range c.Stmts {
				r.resolveStmt(caseScope, inner)
			}
		}
	case *ast.ReturnStmt:
		if st.X != nil {
			r.resolveExpr(s, st.X)
		}
	case *ast.LabelStmt:
		r.resolveStmt(s, st.Stmt)
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.GotoStmt:
		// no identifier or expression to resolve
	}
}

func (r *localResolver) resolveLocalVar(s *scope, d *ast.VarDecl) {
	if _, ok := s.declare(d.Name, &Binding{Name: d.Name, Kind: Var, Decl: d}); !ok {
		r.errorAt(d.NamePos, "%s redeclared in this scope", d.Name)
	}
	if d.Init != nil {
		r.resolveExpr(s, d.Init)
	}
}

func (r *localResolver) resolveExpr(s *scope, e ast.Expr) {
	switch e := e.(type) {
	case *ast.IdentExpr:
		b := s.lookup(e.Name)
		if b == nil {
			r.errorAt(e.NamePos, "undefined reference to %s", e.Name)
			return
		}
		e.Entity = b
	case *ast.UnaryExpr:
		if e.X != nil {
			r.resolveExpr(s, e.X)
		}
	case *ast.PostfixExpr:
		r.resolveExpr(s, e.X)
	case *ast.BinaryExpr:
		r.resolveExpr(s, e.X)
		r.resolveExpr(s, e.Y)
	case *ast.AssignExpr:
		r.resolveExpr(s, e.LHS)
		r.resolveExpr(s, e.RHS)
	case *ast.CondExpr:
		r.resolveExpr(s, e.Cond)
		r.resolveExpr(s, e.Then)
		r.resolveExpr(s, e.Else)
	case *ast.CastExpr:
		r.resolveExpr(s, e.X)
	case *ast.MemberExpr:
		r.resolveExpr(s, e.X)
	case *ast.PtrMemberExpr:
		r.resolveExpr(s, e.X)
	case *ast.IndexExpr:
		r.resolveExpr(s, e.X)
		r.resolveExpr(s, e.Index)
	case *ast.CallExpr:
		r.resolveExpr(s, e.Fn)
		for _, a := range e.Args {
			r.resolveExpr(s, a)
		}
	case *ast.ParenExpr:
		r.resolveExpr(s, e.X)
	case *ast.IntLitExpr, *ast.StringLitExpr, *ast.CharLitExpr, *ast.BadExpr:
		// no identifiers
	}
}
