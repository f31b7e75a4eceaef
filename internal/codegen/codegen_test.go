package codegen

import (
	"strings"
	"testing"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/surface"
)

func TestEmitTransitionFunction(t *testing.T) {
	b := surface.New()
	input := b.Input("amount", ast.IntegerType{Int: ast.U32}, ast.ModePublic)
	one := b.Int("1", ast.U32)
	sum := b.Binary(ast.BinAdd, b.Path("amount"), one)
	body := b.Block(b.Return(sum))
	fn := b.Function("increment", ast.VariantTransition, nil, []ast.Param{input}, ast.IntegerType{Int: ast.U32}, body)
	prog := b.Program("counter.aleo", []*ast.Function{fn}, nil, nil, nil)

	out := Emit(prog)

	want := []string{
		"program counter.aleo.aleo;",
		"function increment:",
		"input amount as",
		"output",
	}
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("Emit output missing %q\ngot:\n%s", w, out)
		}
	}
	if strings.Contains(out, "finalize") {
		t.Errorf("non-async transition should not emit a finalize section:\n%s", out)
	}
}

func TestEmitAsyncTransitionAddsFinalize(t *testing.T) {
	b := surface.New()
	body := b.Block(b.Return(b.Int("0", ast.U8)))
	fn := b.Function("touch", ast.VariantAsyncTransition, nil, nil, ast.IntegerType{Int: ast.U8}, body)
	prog := b.Program("toucher.aleo", []*ast.Function{fn}, nil, nil, nil)

	out := Emit(prog)
	if !strings.Contains(out, "finalize touch:") {
		t.Errorf("async transition should emit a finalize section:\n%s", out)
	}
}

func TestEmitClosureHasNoFinalize(t *testing.T) {
	b := surface.New()
	body := b.Block(b.Return(b.Int("0", ast.U8)))
	fn := b.Function("helper", ast.VariantFunction, nil, nil, ast.IntegerType{Int: ast.U8}, body)
	prog := b.Program("lib.aleo", []*ast.Function{fn}, nil, nil, nil)

	out := Emit(prog)
	if !strings.Contains(out, "closure helper:") {
		t.Errorf("plain function variant should emit as a closure:\n%s", out)
	}
	if strings.Contains(out, "finalize") {
		t.Errorf("closure should not emit a finalize section:\n%s", out)
	}
}

func TestEmitRecordPutsOwnerFirst(t *testing.T) {
	b := surface.New()
	rec := b.Record("Token", ast.StructField{Name: "amount", Type: ast.IntegerType{Int: ast.U64}})
	prog := b.Program("token.aleo", nil, nil, []*ast.CompositeDecl{rec}, nil)

	out := Emit(prog)
	ownerIdx := strings.Index(out, "owner")
	amountIdx := strings.Index(out, "amount")
	if ownerIdx == -1 || amountIdx == -1 || ownerIdx > amountIdx {
		t.Errorf("expected owner field to render before amount:\n%s", out)
	}
}
