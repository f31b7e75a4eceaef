package main

import (
	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/pipeline"
	"github.com/leo-lang/avmc/internal/surface"
)

// loadSource stands in for the out-of-scope surface lexer/parser
// (spec.md §1: "specified only by their contracts"). internal/surface
// is the thin programmatic AST builder SPEC_FULL.md §12 commits this
// core to for exactly this reason: there is no Leo grammar in this
// tree to hand a package's src/main.leo to, so the CLI builds the one
// sample program this shim knows how to construct and lowers it,
// exercising the full pipeline and codegen the same way a real parse
// tree would. `async` selects between a plain transition and an
// async one so --build-tests and the finalize-section codegen path
// both get exercised from the CLI, not only from package tests.
func loadSource(programName string, async bool) *pipeline.Source {
	b := surface.New()

	input := b.Input("amount", ast.IntegerType{Int: ast.U32}, ast.ModePublic)
	one := b.Int("1", ast.U32)
	sum := b.Binary(ast.BinAdd, b.Path("amount"), one)
	body := b.Block(b.Return(sum))

	variant := ast.VariantTransition
	if async {
		variant = ast.VariantAsyncTransition
	}
	fn := b.Function("increment", variant, nil, []ast.Param{input}, ast.IntegerType{Int: ast.U32}, body)

	prog := b.Program(programName, []*ast.Function{fn}, nil, nil, nil)
	return &pipeline.Source{Program: prog, Builder: b.IDs()}
}
