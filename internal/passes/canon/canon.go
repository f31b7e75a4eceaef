// Package canon implements canonicalization and disambiguation (C6,
// spec.md §4.5): multi-dimensional array-repeat expansion, compound
// assignment desugaring, and path disambiguation. Built as a
// reducer.Reconstructor, grounded on the teacher's pipeline stage shape
// (internal/pipeline/op_lowering.go: one struct per lowering stage,
// driven by the shared reducer machinery) generalized to this
// compiler's AST instead of ailang's Core IR.
package canon

import (
	"fmt"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/diagnostics"
	"github.com/leo-lang/avmc/internal/ids"
	"github.com/leo-lang/avmc/internal/reducer"
	"github.com/leo-lang/avmc/internal/symtab"
)

// Canonicalizer rewrites compound assignments, expands multi-dimension
// Repeat nodes, and resolves Self inside a program's own composite
// names. It embeds reducer.Base so every node kind it does not care
// about falls through to identity reconstruction.
type Canonicalizer struct {
	reducer.Base
	sym     *symtab.Table
	diag    *diagnostics.Handler
	selfName string // set while processing a composite-scoped function, if any
}

// New returns a Canonicalizer sharing b's id allocator and reporting
// lvalue errors through diag.
func New(b *ids.Builder, sym *symtab.Table, diag *diagnostics.Handler) *Canonicalizer {
	return &Canonicalizer{Base: reducer.NewBase(b), sym: sym, diag: diag}
}

// Run canonicalizes every function body in p in place and returns it.
func (c *Canonicalizer) Run(p *ast.Program) *ast.Program {
	return reducer.Program(c, p)
}

// ReduceRepeat expands a dimension-tuple initializer `[e; d0, d1, ...]`
// into right-nested single-dimension Repeats (spec.md §4.5:
// "array-init with a dimension tuple is expanded to nested inits"),
// innermost dimension first so the outermost array has length dims[0].
func (c *Canonicalizer) ReduceRepeat(old *ast.Repeat, element ast.Expr, dims []ast.Expr) ast.Expr {
	if len(dims) <= 1 {
		return &ast.Repeat{Base: old.Base, Element: element, Dimensions: dims}
	}
	inner := element
	for i := len(dims) - 1; i >= 1; i-- {
		inner = &ast.Repeat{Base: ast.Base{NodeID: c.Builder.Next(), Sp: old.Sp}, Element: inner, Dimensions: []ast.Expr{dims[i]}}
	}
	return &ast.Repeat{Base: old.Base, Element: inner, Dimensions: []ast.Expr{dims[0]}}
}

// ReducePath rewrites a bare `Self` segment to the enclosing composite's
// name (spec.md §4.5: "Self inside a composite's methods is rewritten to
// the enclosing composite type/name"). This compiler core models
// composite methods as ordinary top-level functions (no impl blocks),
// so selfName is only ever set by a future per-composite-method lowering
// stage; today it is always empty and this is a documented no-op.
func (c *Canonicalizer) ReducePath(old *ast.Path) ast.Expr {
	if c.selfName == "" || len(old.Segments) == 0 || old.Segments[0] != "Self" {
		return old
	}
	segs := append([]string{c.selfName}, old.Segments[1:]...)
	return &ast.Path{Base: old.Base, Segments: segs}
}

// ReduceAssign desugars a compound assignment `place op= value` into
// `place = place op value` after checking that the place has a base name
// (TYP006 if it has none). Whether that name may be assigned at all is
// checked earlier, by the checker's checkPlace.
func (c *Canonicalizer) ReduceAssign(old *ast.Assign, value ast.Expr) ast.Stmt {
	if old.Op == ast.CompoundNone {
		return &ast.Assign{Base: old.Base, Place: old.Place, Op: ast.CompoundNone, Value: value}
	}
	if len(old.Place.Names) == 0 {
		c.diag.Emit(diagnostics.New(diagnostics.TYP006NotAnLvalue, diagnostics.PhaseCanonicalize,
			"compound assignment target has no name", spanPtr(old.Span())))
		return &ast.Assign{Base: old.Base, Place: old.Place, Op: ast.CompoundNone, Value: value}
	}
	current := placeToExpr(old.Place, old.Span())
	op, ok := compoundToBinary(old.Op)
	if !ok {
		c.diag.Emit(diagnostics.New(diagnostics.TYP001OperandMismatch, diagnostics.PhaseCanonicalize,
			fmt.Sprintf("unsupported compound operator %v", old.Op), spanPtr(old.Span())))
		op = ast.BinAdd
	}
	desugared := &ast.Binary{
		Base:  ast.Base{NodeID: c.Builder.Next(), Sp: old.Sp},
		Op:    op,
		Left:  current,
		Right: value,
	}
	return &ast.Assign{Base: old.Base, Place: old.Place, Op: ast.CompoundNone, Value: desugared}
}

func compoundToBinary(op ast.CompoundOp) (ast.BinaryOp, bool) {
	switch op {
	case ast.CompoundAdd:
		return ast.BinAdd, true
	case ast.CompoundSub:
		return ast.BinSub, true
	case ast.CompoundMul:
		return ast.BinMul, true
	case ast.CompoundDiv:
		return ast.BinDiv, true
	case ast.CompoundRem:
		return ast.BinRem, true
	case ast.CompoundPow:
		return ast.BinPow, true
	case ast.CompoundShl:
		return ast.BinShl, true
	case ast.CompoundShr:
		return ast.BinShr, true
	case ast.CompoundBitAnd:
		return ast.BinBitAnd, true
	case ast.CompoundBitOr:
		return ast.BinBitOr, true
	case ast.CompoundBitXor:
		return ast.BinBitXor, true
	}
	return 0, false
}

// placeToExpr re-expresses an assignment place as the expression reading
// its current value, so the compound-assign desugar can reference it on
// the right-hand side of the synthesized binary op.
func placeToExpr(p ast.Place, span ast.Span) ast.Expr {
	var e ast.Expr = &ast.Path{Base: ast.Base{Sp: span}, Segments: []string{p.Names[0]}}
	for _, acc := range p.Accessors {
		switch acc.Kind {
		case ast.AccessMember:
			e = &ast.MemberAccess{Base: ast.Base{Sp: span}, Operand: e, Member: acc.Member}
		case ast.AccessTuple:
			e = &ast.TupleAccess{Base: ast.Base{Sp: span}, Operand: e, Index: acc.Index}
		case ast.AccessArray:
			e = &ast.ArrayAccess{Base: ast.Base{Sp: span}, Array: e, Index: acc.Expr}
		}
	}
	return e
}

func spanPtr(s ast.Span) *ast.Span { return &s }
