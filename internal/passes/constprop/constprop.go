// Package constprop implements the three mutually-recursive C8
// sub-passes (spec.md §4.7): constant propagation, loop unrolling, and
// monomorphization, each driven to a shared fixpoint by the pipeline
// (internal/pipeline) re-invoking Pass.RunProgram until it reports no
// change. Grounded on internal/value (C5) for the literal arithmetic,
// and on the teacher's internal/eval package's environment-map style
// for the name→Value bindings constant propagation walks.
package constprop

import (
	"fmt"
	"math/big"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/diagnostics"
	"github.com/leo-lang/avmc/internal/ids"
	identnorm "github.com/leo-lang/avmc/internal/mangle"
	"github.com/leo-lang/avmc/internal/symtab"
	"github.com/leo-lang/avmc/internal/tables"
	"github.com/leo-lang/avmc/internal/types"
	"github.com/leo-lang/avmc/internal/value"
)

// MaxUnrollDepth bounds monomorphization recursion (spec.md §4.7:
// "non-terminating recursion through monomorphization is bounded by a
// configurable depth").
const MaxUnrollDepth = 64

// Pass holds the shared state one fixpoint iteration needs: the id
// allocator for unrolled/specialized node copies, the type table to
// refresh as paths fold to literals, and the symbol table new
// specializations are registered into.
type Pass struct {
	builder *ids.Builder
	tt      *tables.TypeTable
	sym     *symtab.Table
	diag    *diagnostics.Handler

	specializations map[string]*ast.Function
	pending         []*ast.Function
	depth           int
}

// New returns a Pass sharing b's id allocator.
func New(b *ids.Builder, tt *tables.TypeTable, sym *symtab.Table, diag *diagnostics.Handler) *Pass {
	return &Pass{builder: b, tt: tt, sym: sym, diag: diag, specializations: map[string]*ast.Function{}}
}

// RunProgram runs one fixpoint iteration of const-prop/unroll/mono over
// every function in p, appending any newly-synthesized specializations
// to p.Functions, and reports whether anything changed. The pipeline
// (C11) calls this repeatedly until it returns false.
func (p *Pass) RunProgram(prog *ast.Program) (changed bool) {
	for _, fn := range prog.Functions {
		env := map[string]value.Value{}
		body, fnChanged := p.runBlock(fn.Body, env)
		fn.Body = body
		changed = changed || fnChanged
	}
	if len(p.pending) > 0 {
		prog.Functions = append(prog.Functions, p.pending...)
		p.pending = nil
		changed = true
	}
	return changed
}

func (p *Pass) runBlock(b *ast.Block, env map[string]value.Value) (*ast.Block, bool) {
	out, changed := p.runStmts(b.Statements, env)
	return &ast.Block{Base: b.Base, Statements: out}, changed
}

func (p *Pass) runStmts(stmts []ast.Stmt, env map[string]value.Value) ([]ast.Stmt, bool) {
	var out []ast.Stmt
	changed := false
	for _, s := range stmts {
		rewritten, ch, unrolled := p.runStmt(s, env)
		changed = changed || ch
		if unrolled != nil {
			out = append(out, unrolled...)
			continue
		}
		if rewritten != nil {
			out = append(out, rewritten)
		}
	}
	return out, changed
}

// runStmt returns either a single rewritten statement, or (for collapse/
// unroll) a slice of statements replacing it outright. At most one of
// the two is non-nil; when both are nil the statement is dropped (a loop
// with no iterations, or a collapsed conditional whose taken branch is
// empty).
func (p *Pass) runStmt(s ast.Stmt, env map[string]value.Value) (ast.Stmt, bool, []ast.Stmt) {
	switch n := s.(type) {
	case *ast.Definition:
		val, changed := p.foldExpr(n.Value, env)
		if v, ok := literalValue(val); ok && len(n.Place.Names) == 1 {
			env[n.Place.Names[0]] = v
		}
		return &ast.Definition{Base: n.Base, Place: n.Place, Type: n.Type, Value: val}, changed, nil

	case *ast.Assign:
		val, changed := p.foldExpr(n.Value, env)
		if len(n.Place.Names) == 1 {
			if v, ok := literalValue(val); ok && len(n.Place.Accessors) == 0 {
				env[n.Place.Names[0]] = v
			} else {
				delete(env, n.Place.Names[0])
			}
		}
		return &ast.Assign{Base: n.Base, Place: n.Place, Op: n.Op, Value: val}, changed, nil

	case *ast.Block:
		blk, changed := p.runBlock(n, cloneEnv(env))
		return blk, changed, nil

	case *ast.Conditional:
		cond, condChanged := p.foldExpr(n.Cond, env)
		if cv, ok := literalValue(cond); ok {
			if b, ok := cv.(value.Bool); ok {
				if b.V {
					thenOut, _ := p.runStmts(n.Then.Statements, cloneEnv(env))
					return nil, true, thenOut
				}
				return nil, true, p.runElseAsStmts(n.Else, env)
			}
		}
		thenBlk, thenChanged := p.runBlock(n.Then, cloneEnv(env))
		var els ast.Stmt
		elsChanged := false
		if n.Else != nil {
			rewritten, ch, unrolled := p.runStmt(n.Else, cloneEnv(env))
			elsChanged = ch
			switch {
			case unrolled != nil:
				els = &ast.Block{Base: ast.Base{Sp: n.Else.Span()}, Statements: unrolled}
			default:
				els = rewritten
			}
		}
		return &ast.Conditional{Base: n.Base, Cond: cond, Then: thenBlk, Else: els},
			condChanged || thenChanged || elsChanged, nil

	case *ast.Iteration:
		start, _ := p.foldExpr(n.Start, env)
		stop, _ := p.foldExpr(n.Stop, env)
		startMag, okS := asIntLiteral(start)
		stopMag, okT := asIntLiteral(stop)
		if !okS || !okT {
			p.diag.Emit(diagnostics.New(diagnostics.VAL006NonLiteralLoop, diagnostics.PhaseUnroll,
				"loop bounds are not statically known; cannot unroll", spanPtr(n.Span())))
			return n, false, nil
		}
		hi := stopMag
		if n.Inclusive {
			hi = new(big.Int).Add(stopMag, big.NewInt(1))
		}
		var out []ast.Stmt
		i := new(big.Int).Set(startMag)
		for i.Cmp(hi) < 0 {
			suffix := fmt.Sprintf("$u%d", p.builder.Next())
			iterEnv := cloneEnv(env)
			iterEnv[n.LoopVar] = value.NewInt(n.VarType, i)
			copied := renameBlock(n.Body, suffix, p.builder)
			copiedOut, _ := p.runStmts(copied.Statements, iterEnv)
			out = append(out, copiedOut...)
			i = new(big.Int).Add(i, big.NewInt(1))
		}
		return nil, true, out

	case *ast.Return:
		val, changed := p.foldExpr(n.Value, env)
		return &ast.Return{Base: n.Base, Value: val}, changed, nil

	case *ast.Assert:
		args := make([]ast.Expr, len(n.Args))
		changed := false
		for i, a := range n.Args {
			var ch bool
			args[i], ch = p.foldExpr(a, env)
			changed = changed || ch
		}
		return &ast.Assert{Base: n.Base, Kind: n.Kind, Args: args}, changed, nil

	case *ast.ExpressionStatement:
		val, changed := p.foldExpr(n.Value, env)
		return &ast.ExpressionStatement{Base: n.Base, Value: val}, changed, nil

	case *ast.Const:
		val, changed := p.foldExpr(n.Value, env)
		if v, ok := literalValue(val); ok {
			env[n.Name] = v
		}
		return &ast.Const{Base: n.Base, Name: n.Name, Value: val}, changed, nil

	case *ast.Empty:
		return n, false, nil

	default:
		return s, false, nil
	}
}

// runElseAsStmts flattens a false-collapsed conditional's else clause
// into a statement sequence: a bare block splices its statements
// directly, an else-if chain folds as one more statement (or its own
// unrolled/collapsed sequence).
func (p *Pass) runElseAsStmts(els ast.Stmt, env map[string]value.Value) []ast.Stmt {
	if els == nil {
		return nil
	}
	if b, ok := els.(*ast.Block); ok {
		out, _ := p.runStmts(b.Statements, cloneEnv(env))
		return out
	}
	rewritten, _, unrolled := p.runStmt(els, cloneEnv(env))
	if unrolled != nil {
		return unrolled
	}
	return []ast.Stmt{rewritten}
}

// foldExpr folds e's top-level form given the current env (replacing
// any directly-bound Path with a Literal, constant-folding operators
// whose operands became literal, and updating the type table), and
// monomorphizes any Call whose const-args are now all literal.
func (p *Pass) foldExpr(e ast.Expr, env map[string]value.Value) (ast.Expr, bool) {
	folded, changed := p.substitute(e, env)
	mono, monoChanged := p.monomorphize(folded)
	return mono, changed || monoChanged
}

func (p *Pass) literalFor(v value.Value, span ast.Span) *ast.Literal {
	lit := value.ValueToLiteral(v, span)
	lit.Base.NodeID = p.builder.Next()
	p.tt.Set(lit.ID(), types.FromValue(v))
	return lit
}

// substitute replaces bound Paths with Literals and folds Binary/Unary/
// Cast/Ternary/ArrayAccess/TupleAccess nodes whose operands are now all
// literal (spec.md §4.7: "On each path, if the name is bound, replace
// the path by the corresponding literal").
func (p *Pass) substitute(e ast.Expr, env map[string]value.Value) (ast.Expr, bool) {
	switch n := e.(type) {
	case *ast.Path:
		if len(n.Segments) == 1 {
			if v, ok := env[n.Segments[0]]; ok {
				return p.literalFor(v, n.Span()), true
			}
		}
		return n, false
	case *ast.Literal:
		return n, false
	case *ast.Unary:
		inner, changed := p.substitute(n.Inner, env)
		if iv, ok := literalValue(inner); ok {
			if r, err := value.Unary(n.Op, iv); err == nil {
				return p.literalFor(r, n.Span()), true
			}
		}
		return &ast.Unary{Base: n.Base, Op: n.Op, Inner: inner}, changed
	case *ast.Binary:
		left, lc := p.substitute(n.Left, env)
		right, rc := p.substitute(n.Right, env)
		if lv, ok := literalValue(left); ok {
			if rv, ok := literalValue(right); ok {
				if r, err := value.Binary(n.Op, lv, rv); err == nil {
					return p.literalFor(r, n.Span()), true
				}
			}
		}
		return &ast.Binary{Base: n.Base, Op: n.Op, Left: left, Right: right}, lc || rc
	case *ast.Cast:
		inner, changed := p.substitute(n.Inner, env)
		if iv, ok := literalValue(inner); ok {
			if r, err := value.Cast(iv, n.Target); err == nil {
				return p.literalFor(r, n.Span()), true
			}
		}
		return &ast.Cast{Base: n.Base, Inner: inner, Target: n.Target}, changed
	case *ast.Ternary:
		cond, cc := p.substitute(n.Cond, env)
		ifTrue, tc := p.substitute(n.IfTrue, env)
		ifFalse, fc := p.substitute(n.IfFalse, env)
		if cv, ok := literalValue(cond); ok {
			if b, ok := cv.(value.Bool); ok {
				if b.V {
					return ifTrue, true
				}
				return ifFalse, true
			}
		}
		return &ast.Ternary{Base: n.Base, Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse}, cc || tc || fc
	case *ast.ArrayAccess:
		arr, ac := p.substitute(n.Array, env)
		idx, ic := p.substitute(n.Index, env)
		if av, ok := literalValue(arr); ok {
			if iv, ok := literalValue(idx); ok {
				if a, ok := av.(value.Array); ok {
					if i, ok := value.AsInt(iv); ok && i >= 0 && i < len(a.Elements) {
						return p.literalFor(a.Elements[i], n.Span()), true
					}
				}
			}
		}
		return &ast.ArrayAccess{Base: n.Base, Array: arr, Index: idx}, ac || ic
	case *ast.TupleAccess:
		operand, oc := p.substitute(n.Operand, env)
		if ov, ok := literalValue(operand); ok {
			if t, ok := ov.(value.Tuple); ok && n.Index < len(t.Elements) {
				return p.literalFor(t.Elements[n.Index], n.Span()), true
			}
		}
		return &ast.TupleAccess{Base: n.Base, Operand: operand, Index: n.Index}, oc
	case *ast.Array:
		elems := make([]ast.Expr, len(n.Elements))
		changed := false
		for i, el := range n.Elements {
			var ch bool
			elems[i], ch = p.substitute(el, env)
			changed = changed || ch
		}
		return &ast.Array{Base: n.Base, Elements: elems}, changed
	case *ast.Tuple:
		elems := make([]ast.Expr, len(n.Elements))
		changed := false
		for i, el := range n.Elements {
			var ch bool
			elems[i], ch = p.substitute(el, env)
			changed = changed || ch
		}
		return &ast.Tuple{Base: n.Base, Elements: elems}, changed
	case *ast.Call:
		args := make([]ast.Expr, len(n.Args))
		changed := false
		for i, a := range n.Args {
			var ch bool
			args[i], ch = p.substitute(a, env)
			changed = changed || ch
		}
		constArgs := make([]ast.Expr, len(n.ConstArgs))
		for i, a := range n.ConstArgs {
			var ch bool
			constArgs[i], ch = p.substitute(a, env)
			changed = changed || ch
		}
		return &ast.Call{Base: n.Base, Callee: n.Callee, ConstArgs: constArgs, Args: args}, changed
	default:
		return e, false
	}
}

// monomorphize rewrites a fully-const-literal call `f::[c0, c1](...)`
// into a call to a synthesized specialization `f::[c0, c1]`'s mangled
// name, substituting the literal const-args for f's const-parameters
// throughout its body (spec.md §4.7). Calls whose const-args are not
// yet all literal are left for a later fixpoint iteration.
func (p *Pass) monomorphize(e ast.Expr) (ast.Expr, bool) {
	call, ok := e.(*ast.Call)
	if !ok || len(call.ConstArgs) == 0 {
		return e, false
	}
	lits := make([]value.Value, len(call.ConstArgs))
	for i, a := range call.ConstArgs {
		v, ok := literalValue(a)
		if !ok {
			return e, false
		}
		lits[i] = v
	}
	calleeName, ok := calleeName(call.Callee)
	if !ok {
		return e, false
	}
	fn, ok := p.sym.LookupFunction(symtab.Location{Path: []string{calleeName}})
	if !ok {
		return e, false
	}
	mangled := mangle(calleeName, lits)
	if _, exists := p.specializations[mangled]; !exists {
		if p.depth >= MaxUnrollDepth {
			p.diag.Emit(diagnostics.New(diagnostics.INT003PassInvariantViolated, diagnostics.PhaseMonomorphize,
				fmt.Sprintf("monomorphization depth exceeded specializing %s", calleeName), spanPtr(call.Span())))
			return e, false
		}
		p.depth++
		spec := p.specialize(fn, mangled, lits)
		p.depth--
		p.specializations[mangled] = spec
		p.pending = append(p.pending, spec)
		p.sym.InsertFunction(spec)
	}
	return &ast.Call{
		Base:   call.Base,
		Callee: &ast.Path{Base: ast.Base{Sp: call.Callee.Span()}, Segments: []string{mangled}},
		Args:   call.Args,
	}, true
}

// specialize clones fn under a mangled name with every const-parameter
// substituted by its literal value throughout the body, then re-runs
// constant folding over the cloned body (spec.md §4.7: "substituting
// literals for the const parameters throughout the function body, then
// re-running C8").
func (p *Pass) specialize(fn *ast.Function, mangled string, lits []value.Value) *ast.Function {
	env := map[string]value.Value{}
	for i, cp := range fn.ConstParams {
		if i < len(lits) {
			env[cp.Name] = lits[i]
		}
	}
	suffix := fmt.Sprintf("$spec%d", p.builder.Next())
	body := renameBlock(fn.Body, suffix, p.builder)
	folded, _ := p.runBlock(body, env)
	return &ast.Function{
		Base:       ast.Base{NodeID: p.builder.Next(), Sp: fn.Sp},
		Name:       mangled,
		Variant:    fn.Variant,
		Inputs:     fn.Inputs,
		Outputs:    fn.Outputs,
		OutputType: fn.OutputType,
		Body:       folded,
	}
}

func calleeName(e ast.Expr) (string, bool) {
	p, ok := e.(*ast.Path)
	if !ok || len(p.Segments) == 0 {
		return "", false
	}
	return p.Segments[len(p.Segments)-1], true
}

// mangle names a monomorphized specialization as spec.md §4.7 writes it
// (`"callee::[arg0, arg1,…]"`), then passes the result through
// internal/mangle.Sanitize so it collapses to a valid AVM identifier
// before codegen ever sees it — the same normalizer codegen's own
// register names go through, so the two can never collide over how
// each escapes punctuation.
func mangle(name string, lits []value.Value) string {
	s := name + "::["
	for i, v := range lits {
		if i > 0 {
			s += ", "
		}
		s += v.String()
	}
	return identnorm.Sanitize(s + "]")
}

func literalValue(e ast.Expr) (value.Value, bool) {
	lit, ok := e.(*ast.Literal)
	if !ok {
		return nil, false
	}
	v, err := value.LiteralToValue(lit)
	if err != nil {
		return nil, false
	}
	return v, true
}

func asIntLiteral(e ast.Expr) (*big.Int, bool) {
	v, ok := literalValue(e)
	if !ok {
		return nil, false
	}
	i, ok := v.(value.Int)
	if !ok {
		return nil, false
	}
	return i.Mag, true
}

func spanPtr(s ast.Span) *ast.Span { return &s }

func cloneEnv(env map[string]value.Value) map[string]value.Value {
	out := make(map[string]value.Value, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}
