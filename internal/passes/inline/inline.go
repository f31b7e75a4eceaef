// Package inline implements C10's function-inlining half (spec.md
// §4.9): every call to an `inline`-variant function is replaced by a
// fresh-renamed copy of its body spliced in at the call site, post-order
// over the call graph so a callee that itself calls another inline
// function is fully flattened first. Dead-code elimination, the other
// half of C10, lives in dce.go.
//
// Grounded on the same clone-with-fresh-names discipline
// internal/passes/constprop uses for loop unrolling and monomorphization
// (a full reducer.Reconstructor allocating a new NodeId per node), since
// inlining is exactly one more kind of subtree duplication this module
// has to get right for Testable Property 1 and the SSA property.
package inline

import (
	"fmt"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/diagnostics"
	"github.com/leo-lang/avmc/internal/ids"
)

const maxInlineDepth = 64

// Inliner expands every call to an inline-variant function.
type Inliner struct {
	builder *ids.Builder
	diag    *diagnostics.Handler
	fns     map[string]*ast.Function
	depth   int
}

// New returns an Inliner allocating fresh NodeIds from b.
func New(b *ids.Builder, diag *diagnostics.Handler) *Inliner {
	return &Inliner{builder: b, diag: diag, fns: map[string]*ast.Function{}}
}

// Run inlines every call in p and returns p with unreachable inline
// function declarations dropped (nothing calls them once their bodies
// are spliced into every caller).
func (in *Inliner) Run(p *ast.Program) *ast.Program {
	for _, fn := range p.Functions {
		in.fns[fn.Name] = fn
	}
	var kept []*ast.Function
	for _, fn := range p.Functions {
		if fn.Variant == ast.VariantInline {
			continue // dropped: every call site clones its body instead
		}
		fn.Body = in.inlineBlock(fn.Body)
		kept = append(kept, fn)
	}
	p.Functions = kept
	return p
}

func (in *Inliner) inlineBlock(b *ast.Block) *ast.Block {
	return &ast.Block{Base: b.Base, Statements: in.inlineStmts(b.Statements)}
}

func (in *Inliner) inlineStmts(stmts []ast.Stmt) []ast.Stmt {
	var out []ast.Stmt
	for _, s := range stmts {
		out = append(out, in.inlineStmt(s)...)
	}
	return out
}

func (in *Inliner) inlineStmt(s ast.Stmt) []ast.Stmt {
	switch n := s.(type) {
	case *ast.Definition:
		pre, val := in.inlineExpr(n.Value)
		return append(pre, &ast.Definition{Base: n.Base, Place: n.Place, Type: n.Type, Value: val})
	case *ast.Assign:
		pre, val := in.inlineExpr(n.Value)
		return append(pre, &ast.Assign{Base: n.Base, Place: n.Place, Op: n.Op, Value: val})
	case *ast.ExpressionStatement:
		pre, val := in.inlineExpr(n.Value)
		return append(pre, &ast.ExpressionStatement{Base: n.Base, Value: val})
	case *ast.Return:
		pre, val := in.inlineExpr(n.Value)
		return append(pre, &ast.Return{Base: n.Base, Value: val})
	case *ast.Assert:
		var pre []ast.Stmt
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			p, v := in.inlineExpr(a)
			pre = append(pre, p...)
			args[i] = v
		}
		return append(pre, &ast.Assert{Base: n.Base, Kind: n.Kind, Args: args})
	case *ast.Const:
		pre, val := in.inlineExpr(n.Value)
		return append(pre, &ast.Const{Base: n.Base, Name: n.Name, Value: val})
	case *ast.Block:
		return []ast.Stmt{in.inlineBlock(n)}
	case *ast.Conditional:
		then := in.inlineBlock(n.Then)
		var els ast.Stmt
		if n.Else != nil {
			elsStmts := in.inlineStmt(n.Else)
			if len(elsStmts) == 1 {
				els = elsStmts[0]
			} else {
				els = &ast.Block{Base: ast.Base{NodeID: n.Else.ID(), Sp: n.Else.Span()}, Statements: elsStmts}
			}
		}
		return []ast.Stmt{&ast.Conditional{Base: n.Base, Cond: n.Cond, Then: then, Else: els}}
	case *ast.Iteration:
		return []ast.Stmt{&ast.Iteration{Base: n.Base, LoopVar: n.LoopVar, VarType: n.VarType,
			Start: n.Start, Stop: n.Stop, Inclusive: n.Inclusive, Body: in.inlineBlock(n.Body)}}
	default:
		return []ast.Stmt{s}
	}
}

// inlineExpr expands an inline call appearing directly as e (the only
// shape that survives past SSA atomization, which hoists any nested
// call to its own Definition first), returning statements that must run
// ahead of the caller's statement plus the (possibly rewritten) result
// expression.
func (in *Inliner) inlineExpr(e ast.Expr) ([]ast.Stmt, ast.Expr) {
	call, ok := e.(*ast.Call)
	if !ok {
		return nil, e
	}
	name := calleeName(call.Callee)
	callee, ok := in.fns[name]
	if !ok || callee.Variant != ast.VariantInline {
		return nil, e
	}
	if in.depth >= maxInlineDepth {
		in.diag.Emit(diagnostics.New(diagnostics.INT003PassInvariantViolated, diagnostics.PhaseInline,
			fmt.Sprintf("inlining %q exceeds the nesting bound; a recursive inline function cannot be flattened", name), spanOf(call)))
		return nil, e
	}
	in.depth++
	defer func() { in.depth-- }()

	suffix := fmt.Sprintf("$inl%d", in.builder.Next())
	r := newRenamer(in.builder, suffix)
	for _, cp := range callee.ConstParams {
		r.seed(cp.Name)
	}
	for _, p := range callee.Inputs {
		r.seed(p.Name)
	}
	clone := renameBlock(callee.Body, r)

	var pre []ast.Stmt
	for i, cp := range callee.ConstParams {
		pre = append(pre, &ast.Definition{
			Base:  ast.Base{NodeID: in.builder.Next(), Sp: call.Sp},
			Place: ast.Place{Names: []string{cp.Name + suffix}},
			Value: call.ConstArgs[i],
		})
	}
	for i, p := range callee.Inputs {
		pre = append(pre, &ast.Definition{
			Base:  ast.Base{NodeID: in.builder.Next(), Sp: call.Sp},
			Place: ast.Place{Names: []string{p.Name + suffix}},
			Value: call.Args[i],
		})
	}

	var result ast.Expr = &ast.Unit{Base: ast.Base{NodeID: in.builder.Next(), Sp: call.Sp}}
	for _, st := range clone.Statements {
		if ret, ok := st.(*ast.Return); ok {
			result = ret.Value
			continue
		}
		pre = append(pre, st)
	}
	// the clone may itself contain further inline calls (an inline
	// function calling another inline function); expand those too.
	pre = in.inlineStmts(pre)
	return pre, result
}

func calleeName(e ast.Expr) string {
	if p, ok := e.(*ast.Path); ok && len(p.Segments) > 0 {
		return p.Segments[len(p.Segments)-1]
	}
	return ""
}

func spanOf(e ast.Expr) *ast.Span {
	s := e.Span()
	return &s
}
