// Package pipeline sequences C1-C10 into the single driver spec.md §4.10
// and §5 describe: type-check (which also registers every item in the
// symbol table; the AST arrives already built), canonicalize, then run the
// SsaForming/WriteTransforming/ConstPropagation-Unroll-Monomorphize group
// to a fixpoint, then destructure, flatten, inline, and eliminate dead
// code, stopping at the first fatal diagnostic. Destructuring runs
// before flattening so a tuple-typed local merged across a conditional
// (flatten's phi-insertion collapses such a merge into a Ternary, not a
// literal Tuple) is split into scalars first, while the value still
// reaches the destructurer as a direct Tuple literal. Grounded on the teacher's
// internal/pipeline/pipeline.go (a Config/Source/Result triad driving one
// Run function through named phases, recording PhaseTimings) generalized
// from ailang's module-loading/elaboration/evaluation stages to this
// compiler's own pass list.
package pipeline

import (
	"fmt"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/astutil"
	"github.com/leo-lang/avmc/internal/check"
	"github.com/leo-lang/avmc/internal/diagnostics"
	"github.com/leo-lang/avmc/internal/ids"
	"github.com/leo-lang/avmc/internal/passes/canon"
	"github.com/leo-lang/avmc/internal/passes/constprop"
	"github.com/leo-lang/avmc/internal/passes/flatten"
	"github.com/leo-lang/avmc/internal/passes/inline"
	"github.com/leo-lang/avmc/internal/passes/ssa"
	"github.com/leo-lang/avmc/internal/passes/writeform"
	"github.com/leo-lang/avmc/internal/symtab"
	"github.com/leo-lang/avmc/internal/tables"
)

// maxFixpointRounds bounds the SsaForming/ConstPropagation loop so a
// pass bug that never converges fails loudly instead of hanging the
// driver (spec.md §4.10 names the group as iterating "until no pass
// reports a change").
const maxFixpointRounds = 64

// Source is one compilation unit's already-parsed AST, standing in for
// the surface lexer/parser stage (internal/surface) this core does not
// implement (spec.md Non-goals: "parsing Leo source text"). Builder is
// the id.Builder the front end used to construct Program, so every
// pass's fresh allocations continue from where parsing left off rather
// than risking a collision with a freshly-seeded allocator.
type Source struct {
	Program *ast.Program
	Builder *ids.Builder
}

// Artifacts holds the intermediate state produced during a run, kept
// around for callers that want to snapshot the AST between phases
// (spec.md §10: --ast-snapshots).
type Artifacts struct {
	Symbols   *symtab.Table
	Types     *tables.TypeTable
	Spans     *tables.SpanTable
	Program   *ast.Program
	Snapshots map[string]*ast.Program
}

// Result is the outcome of one Run.
type Result struct {
	Artifacts   *Artifacts
	Diagnostics *diagnostics.Handler
	PhaseOrder  []string
}

// Config controls which snapshots are captured; the zero value runs
// every phase without recording any (spec.md §10's default CLI mode).
type Config struct {
	// Snapshot, if non-nil, is called after every phase with that
	// phase's name and the program as it stood at that point.
	Snapshot func(phase string, p *ast.Program)
}

// Run drives one compilation unit through every pass in spec.md §4's
// order, stopping as soon as diag.HasFatal() becomes true. The
// returned Result always has a non-nil Artifacts.Program, even on
// fatal failure, reflecting the AST as of the last completed phase
// (spec.md §7: "a pass returns the (partially rewritten) AST even if
// errors occurred").
func Run(cfg Config, src *Source) *Result {
	builder := src.Builder
	if builder == nil {
		builder = ids.NewBuilder()
	}

	sym := symtab.New()
	tt := tables.NewTypeTable()
	spans := tables.NewSpanTable()
	diag := diagnostics.NewHandler()

	art := &Artifacts{Symbols: sym, Types: tt, Spans: spans, Program: src.Program, Snapshots: map[string]*ast.Program{}}
	res := &Result{Artifacts: art, Diagnostics: diag}

	snapshot := func(phase string, p *ast.Program) {
		art.Program = p
		res.PhaseOrder = append(res.PhaseOrder, phase)
		art.Snapshots[phase] = p
		if cfg.Snapshot != nil {
			cfg.Snapshot(phase, p)
		}
	}

	checker := check.New(sym, tt, diag)
	checker.CheckProgram(art.Program)
	snapshot(diagnostics.PhaseTypeCheck, art.Program)
	if diag.HasFatal() {
		return res
	}

	canonicalizer := canon.New(builder, sym, diag)
	p := canonicalizer.Run(art.Program)
	snapshot(diagnostics.PhaseCanonicalize, p)
	checkInvariant(diag, diagnostics.PhaseCanonicalize, p)
	if diag.HasFatal() {
		return res
	}

	p = runFixpoint(builder, sym, tt, diag, p, snapshot)
	checkInvariant(diag, diagnostics.PhaseConstProp, p)
	if diag.HasFatal() {
		return res
	}

	p = flatten.NewDestructurer(builder).Run(p)
	snapshot(diagnostics.PhaseDestructure, p)
	checkInvariant(diag, diagnostics.PhaseDestructure, p)
	if diag.HasFatal() {
		return res
	}

	p = flatten.New(builder, sym).Run(p)
	snapshot(diagnostics.PhaseFlatten, p)
	checkInvariant(diag, diagnostics.PhaseFlatten, p)
	if diag.HasFatal() {
		return res
	}

	p = inline.New(builder, diag).Run(p)
	snapshot(diagnostics.PhaseInline, p)
	checkInvariant(diag, diagnostics.PhaseInline, p)
	if diag.HasFatal() {
		return res
	}

	p = inline.NewDCE().Run(p)
	snapshot(diagnostics.PhaseDCE, p)
	return res
}

// runFixpoint repeatedly runs SsaForming, WriteTransforming, and
// ConstPropagation/Unroll/Monomorphize (spec.md §4.7-4.8 describe these
// as one convergent group: unrolling and monomorphization can expose
// new constant-foldable code, which can in turn make a loop bound
// literal where it wasn't before) until constprop reports no change or
// maxFixpointRounds is hit.
func runFixpoint(b *ids.Builder, sym *symtab.Table, tt *tables.TypeTable, diag *diagnostics.Handler, p *ast.Program, snapshot func(string, *ast.Program)) *ast.Program {
	for round := 0; round < maxFixpointRounds; round++ {
		p = ssa.New(b, sym).Run(p)
		snapshot(diagnostics.PhaseSSA, p)
		if diag.HasFatal() {
			return p
		}

		p = writeform.New(b, sym).Run(p)
		snapshot(diagnostics.PhaseWriteform, p)
		if diag.HasFatal() {
			return p
		}

		pass := constprop.New(b, tt, sym, diag)
		changed := pass.RunProgram(p)
		snapshot(diagnostics.PhaseConstProp, p)
		if diag.HasFatal() {
			return p
		}
		if !changed {
			return p
		}
	}
	diag.Emit(diagnostics.New(diagnostics.INT003PassInvariantViolated, diagnostics.PhaseConstProp,
		fmt.Sprintf("constant-propagation fixpoint did not converge within %d rounds", maxFixpointRounds), nil))
	return p
}

// checkInvariant re-verifies node-id uniqueness (Testable Property 1)
// after a pass that clones subtrees, surfacing a violation as an
// internal fatal diagnostic rather than letting it silently corrupt a
// later side table keyed by NodeId.
func checkInvariant(diag *diagnostics.Handler, phase string, p *ast.Program) {
	if err := astutil.CheckUniqueNodeIDs(p); err != nil {
		diag.Emit(diagnostics.New(diagnostics.INT001DuplicateNodeID, phase, err.Error(), nil))
	}
}
