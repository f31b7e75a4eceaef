package pipeline

import (
	"testing"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/diagnostics"
	"github.com/leo-lang/avmc/internal/surface"
)

func incrementSource() *Source {
	b := surface.New()
	input := b.Input("amount", ast.IntegerType{Int: ast.U32}, ast.ModePublic)
	one := b.Int("1", ast.U32)
	sum := b.Binary(ast.BinAdd, b.Path("amount"), one)
	body := b.Block(b.Return(sum))
	fn := b.Function("increment", ast.VariantTransition, nil, []ast.Param{input}, ast.IntegerType{Int: ast.U32}, body)
	prog := b.Program("counter.aleo", []*ast.Function{fn}, nil, nil, nil)
	return &Source{Program: prog, Builder: b.IDs()}
}

func TestRunDrivesIncrementProgramToCompletion(t *testing.T) {
	res := Run(Config{}, incrementSource())

	if res.Diagnostics.HasFatal() {
		t.Fatalf("unexpected fatal diagnostics: %v", res.Diagnostics.Reports)
	}

	wantPhases := []string{
		diagnostics.PhaseTypeCheck,
		diagnostics.PhaseCanonicalize,
		diagnostics.PhaseFlatten,
		diagnostics.PhaseDestructure,
		diagnostics.PhaseInline,
		diagnostics.PhaseDCE,
	}
	seen := map[string]bool{}
	for _, p := range res.PhaseOrder {
		seen[p] = true
	}
	for _, w := range wantPhases {
		if !seen[w] {
			t.Errorf("PhaseOrder missing %q, got %v", w, res.PhaseOrder)
		}
	}

	if res.Artifacts.Program == nil {
		t.Fatal("Artifacts.Program is nil after a successful run")
	}
}

func TestRunInvokesSnapshotCallbackPerPhase(t *testing.T) {
	var calls []string
	cfg := Config{Snapshot: func(phase string, p *ast.Program) {
		calls = append(calls, phase)
	}}

	res := Run(cfg, incrementSource())
	if res.Diagnostics.HasFatal() {
		t.Fatalf("unexpected fatal diagnostics: %v", res.Diagnostics.Reports)
	}
	if len(calls) != len(res.PhaseOrder) {
		t.Errorf("Snapshot called %d times, PhaseOrder has %d entries", len(calls), len(res.PhaseOrder))
	}
}

func TestRunSurfacesTypeMismatchWithoutPanicking(t *testing.T) {
	b := surface.New()
	// Adding a bool to a u32 should surface a type-check error; TYP###
	// codes are non-fatal (spec.md §7), so the driver keeps running the
	// remaining phases and must not panic on the malformed program.
	badSum := b.Binary(ast.BinAdd, b.Bool(true), b.Int("1", ast.U32))
	body := b.Block(b.Return(badSum))
	fn := b.Function("bad", ast.VariantTransition, nil, nil, ast.IntegerType{Int: ast.U32}, body)
	prog := b.Program("broken.aleo", []*ast.Function{fn}, nil, nil, nil)

	res := Run(Config{}, &Source{Program: prog, Builder: b.IDs()})

	if !res.Diagnostics.HasErrors() {
		t.Fatal("expected a type-check error for a bool/u32 addition")
	}
	if res.Diagnostics.HasFatal() {
		t.Error("a TYP### diagnostic must not set the handler's fatal flag")
	}
}
