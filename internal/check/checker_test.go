package check

import (
	"testing"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/diagnostics"
	"github.com/leo-lang/avmc/internal/surface"
	"github.com/leo-lang/avmc/internal/symtab"
	"github.com/leo-lang/avmc/internal/tables"
)

func newChecker() (*Checker, *diagnostics.Handler) {
	diag := diagnostics.NewHandler()
	return New(symtab.New(), tables.NewTypeTable(), diag), diag
}

func hasCode(h *diagnostics.Handler, code string) bool {
	for _, r := range h.Reports {
		if r.Code == code {
			return true
		}
	}
	return false
}

func TestCheckProgramAcceptsWellTypedFunction(t *testing.T) {
	b := surface.New()
	input := b.Input("amount", ast.IntegerType{Int: ast.U32}, ast.ModePublic)
	body := b.Block(b.Return(b.Path("amount")))
	fn := b.Function("identity", ast.VariantTransition, nil, []ast.Param{input}, ast.IntegerType{Int: ast.U32}, body)
	prog := b.Program("id.aleo", []*ast.Function{fn}, nil, nil, nil)

	c, diag := newChecker()
	c.CheckProgram(prog)

	if diag.HasErrors() {
		t.Fatalf("unexpected errors: %v", diag.Reports)
	}
}

func TestCheckProgramRejectsRecordMissingOwner(t *testing.T) {
	b := surface.New()
	rec := &ast.CompositeDecl{Name: "Token", Kind: ast.KindRecord, Fields: []ast.StructField{
		{Name: "amount", Type: ast.IntegerType{Int: ast.U64}},
	}}
	comp := b.Composite("Token", surface.Field{Name: "amount", Value: b.Int("1", ast.U64)})
	body := b.Block(b.Return(comp))
	fn := b.Function("mint", ast.VariantTransition, nil, nil, ast.CompositeType{Path: "Token"}, body)
	prog := b.Program("token.aleo", []*ast.Function{fn}, nil, []*ast.CompositeDecl{rec}, nil)

	c, diag := newChecker()
	c.CheckProgram(prog)

	if !hasCode(diag, diagnostics.TYP005BadFieldSet) {
		t.Errorf("expected TYP005BadFieldSet for a record composite missing owner, got %v", diag.Reports)
	}
}

func TestCheckCallRejectsArityMismatch(t *testing.T) {
	b := surface.New()
	input := b.Input("x", ast.IntegerType{Int: ast.U32}, ast.ModePublic)
	helper := b.Function("helper", ast.VariantFunction, nil, []ast.Param{input}, ast.IntegerType{Int: ast.U32}, b.Block(b.Return(b.Path("x"))))

	call := b.Call(b.Path("helper"))
	body := b.Block(b.Return(call))
	caller := b.Function("caller", ast.VariantTransition, nil, nil, ast.IntegerType{Int: ast.U32}, body)
	prog := b.Program("lib.aleo", []*ast.Function{helper, caller}, nil, nil, nil)

	c, diag := newChecker()
	c.CheckProgram(prog)

	if !hasCode(diag, diagnostics.TYP002ArityMismatch) {
		t.Errorf("expected TYP002ArityMismatch for a zero-arg call to a one-input function, got %v", diag.Reports)
	}
}

func TestCheckBlockFlagsUnreachableCode(t *testing.T) {
	b := surface.New()
	body := b.Block(b.Return(b.Int("0", ast.U32)), b.Return(b.Int("1", ast.U32)))
	fn := b.Function("f", ast.VariantTransition, nil, nil, ast.IntegerType{Int: ast.U32}, body)
	prog := b.Program("x.aleo", []*ast.Function{fn}, nil, nil, nil)

	c, diag := newChecker()
	c.CheckProgram(prog)

	if !hasCode(diag, diagnostics.TYP004UnreachableCode) {
		t.Errorf("expected TYP004UnreachableCode for a statement after return, got %v", diag.Reports)
	}
}
