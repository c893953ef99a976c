package resolver

import (
	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/scanner"
	"github.com/cbcomp/cb/lang/token"
)

// jumpResolver links break/continue/return/goto/label within one function
// body (spec ch. 4.3). Labels are visible anywhere in the enclosing
// function, so each function is resolved in two passes: collect every
// label declared in its body, then walk the body linking goto/break/
// continue against the nearest enclosing target.
type jumpResolver struct {
	fset   *token.FileSet
	file   *token.File
	errs   scanner.ErrorList
	labels map[string]*ast.LabelStmt

	// loops holds the enclosing while/do-while/for statements, innermost
	// last; breakables additionally includes enclosing switch statements,
	// since break targets either but continue only targets a loop.
	loops      []ast.Stmt
	breakables []ast.Stmt
}

// ResolveJumps runs JumpResolver over every function definition across all
// chunks. The returned error, if non-nil, is a scanner.ErrorList.
func ResolveJumps(fset *token.FileSet, chunks []*ast.Chunk) error {
	var errs scanner.ErrorList
	for _, ch := range chunks {
		file := fset.File(ch.Name)
		for _, d := range ch.Decls {
			fd, ok := d.(*ast.FuncDecl)
			if !ok || fd.Body == nil {
				continue
			}
			jr := &jumpResolver{fset: fset, file: file, labels: map[string]*ast.LabelStmt{}}
			jr.collectLabels(fd.Body.Stmts)
			jr.linkBlock(fd.Body)
			errs = append(errs, jr.errs...)
		}
	}
	errs.Sort()
	return errs.Err()
}

func (jr *jumpResolver) errorAt(pos token.Pos, msg string) {
	jr.errs.AddKind(jr.file.Position(pos), scanner.Semantic, msg)
}

func (jr *jumpResolver) collectLabels(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		jr.collectLabelsIn(stmt)
	}
}

func (jr *jumpResolver) collectLabelsIn(stmt ast.Stmt) {
	switch st := stmt.(type) {
	case *ast.LabelStmt:
		if _, dup := jr.labels[st.Name]; dup {
			jr.errorAt(st.NamePos, "duplicate label "+st.Name)
		} else {
			jr.labels[st.Name] = st
		}
		jr.collectLabelsIn(st.Stmt)
	case *ast.BlockStmt:
		jr.collectLabels(st.Block.Stmts)
	case *ast.IfStmt:
		jr.collectLabelsIn(st.Then)
		if st.Else != nil {
			jr.collectLabelsIn(st.Else)
		}
	case *ast.WhileStmt:
		jr.collectLabelsIn(st.Body)
	case *ast.DoWhileStmt:
		jr.collectLabelsIn(st.Body)
	case *ast.ForStmt:
		jr.collectLabelsIn(st.Body)
	case *ast.SwitchStmt:
		for _, c := range st.Cases {
			jr.collectLabels(c.Stmts)
		}
	}
}

func (jr *jumpResolver) linkBlock(b *ast.Block) {
	for _, stmt := range b.Stmts {
		jr.linkStmt(stmt)
	}
}

func (jr *jumpResolver) linkStmt(stmt ast.Stmt) {
	switch st := stmt.(type) {
	case *ast.BlockStmt:
		jr.linkBlock(st.Block)
	case *ast.IfStmt:
		jr.linkStmt(st.Then)
		if st.Else != nil {
			jr.linkStmt(st.Else)
		}
	case *ast.WhileStmt:
		jr.pushLoop(st)
		jr.linkStmt(st.Body)
		jr.popLoop()
	case *ast.DoWhileStmt:
		jr.pushLoop(st)
		jr.linkStmt(st.Body)
		jr.popLoop()
	case *ast.ForStmt:
		jr.pushLoop(st)
		jr.linkStmt(st.Body)
		jr.popLoop()
	case *ast.SwitchStmt:
		jr.breakables = append(jr.breakables, st)
		for _, c := range st.Cases {
			for _, inner := range c.Stmts {
				jr.linkStmt(inner)
			}
		}
		jr.breakables = jr.breakables[:len(jr.breakables)-1]
	case *ast.LabelStmt:
		jr.linkStmt(st.Stmt)
	case *ast.BreakStmt:
		if len(jr.breakables) == 0 {
			jr.errorAt(st.BreakPos, "break statement not within a loop or switch")
			return
		}
		st.Target = jr.breakables[len(jr.breakables)-1]
	case *ast.ContinueStmt:
		if len(jr.loops) == 0 {
			jr.errorAt(st.ContinuePos, "continue statement not within a loop")
			return
		}
		st.Target = jr.loops[len(jr.loops)-1]
	case *ast.GotoStmt:
		target, ok := jr.labels[st.Name]
		if !ok {
			jr.errorAt(st.GotoPos, "label "+st.Name+" used but not defined")
			return
		}
		st.Target = target
	}
}

func (jr *jumpResolver) pushLoop(s ast.Stmt) {
	jr.loops = append(jr.loops, s)
	jr.breakables = append(jr.breakables, s)
}

func (jr *jumpResolver) popLoop() {
	jr.loops = jr.loops[:len(jr.loops)-1]
	jr.breakables = jr.breakables[:len(jr.breakables)-1]
}
