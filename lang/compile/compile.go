// Package compile ties every compiler phase together (spec ch. 4.2-4.8):
// parse -> jump resolution -> local/name resolution -> type resolution ->
// dereference checking -> type checking -> code generation. It is the
// single entry point both the driver (internal/maincmd) and tests use to
// run the pipeline end to end, so the phase order lives in exactly one
// place.
package compile

import (
	"context"

	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/codegen"
	"github.com/cbcomp/cb/lang/parser"
	"github.com/cbcomp/cb/lang/resolver"
	"github.com/cbcomp/cb/lang/scanner"
	"github.com/cbcomp/cb/lang/token"
	"github.com/cbcomp/cb/lang/typecheck"
	"github.com/cbcomp/cb/lang/types"
)

// Unit holds one fully-checked translation unit: its AST, the type table
// built while checking it, and the annotation table CodeGenerator reads
// from (spec ch. 9 "mutable AST vs. immutable IR").
type Unit struct {
	Chunk *ast.Chunk
	Table *types.TypeTable
	Info  *typecheck.Info
}

// ParseAndResolve runs the parser and both resolver passes over every
// file (spec ch. 4.2-4.4). It does not run TypeResolver: jump and name
// resolution must succeed across the whole program, including any
// imports, before per-chunk type resolution is meaningful.
func ParseAndResolve(ctx context.Context, lib parser.LibPath, files ...string) (*token.FileSet, []*ast.Chunk, error) {
	fset, chunks, err := parser.ParseFiles(ctx, lib, files...)
	if err != nil {
		return fset, chunks, err
	}
	if err := resolver.ResolveJumps(fset, chunks); err != nil {
		return fset, chunks, err
	}
	if err := resolver.ResolveLocals(fset, chunks); err != nil {
		return fset, chunks, err
	}
	return fset, chunks, nil
}

// CheckChunk runs TypeResolver, DereferenceChecker and TypeChecker over a
// single already name/jump-resolved chunk (spec ch. 4.5-4.7), returning
// the Unit codegen needs. The returned error, if non-nil, is a
// scanner.ErrorList; checking stops at the first failing phase, per
// spec ch. 7's "abort pipeline for that file" policy.
func CheckChunk(fset *token.FileSet, ch *ast.Chunk) (*Unit, error) {
	table := types.NewTypeTable()
	info := typecheck.NewInfo()

	if err := typecheck.ResolveTypes(fset, ch, table, info); err != nil {
		return nil, err
	}
	if err := typecheck.CheckDereferences(fset, ch, table, info); err != nil {
		return nil, err
	}
	if err := typecheck.CheckTypes(fset, ch, table, info); err != nil {
		return nil, err
	}
	return &Unit{Chunk: ch, Table: table, Info: info}, nil
}

// Generate runs CodeGenerator (spec ch. 4.8) over an already-checked Unit.
func Generate(fset *token.FileSet, u *Unit, opts codegen.Options) (*codegen.Program, error) {
	return codegen.Generate(fset, u.Chunk, u.Table, u.Info, opts)
}

// Files compiles every file to assembly. Parsing and jump/name resolution
// run over all files together (ParseAndResolve), so an error in any file
// during those phases stops every file and Files returns a nil map. After
// that each file is type-checked and generated independently: a failure
// there in one file does not prevent the others from being compiled. The
// returned map has one entry per file that reached codegen successfully;
// the returned error, if any, aggregates every file's diagnostics via a
// scanner.ErrorList.
func Files(ctx context.Context, lib parser.LibPath, opts codegen.Options, files ...string) (map[string]*codegen.Program, error) {
	fset, chunks, err := ParseAndResolve(ctx, lib, files...)
	if err != nil {
		return nil, err
	}

	var errs scanner.ErrorList
	out := make(map[string]*codegen.Program, len(chunks))
	for _, ch := range chunks {
		u, cerr := CheckChunk(fset, ch)
		if cerr != nil {
			errs.Merge(cerr)
			continue
		}
		prog, gerr := Generate(fset, u, opts)
		if gerr != nil {
			errs.Merge(gerr)
			continue
		}
		out[ch.Name] = prog
	}
	return out, errs.Err()
}
