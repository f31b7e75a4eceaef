// Package flatten implements C9's conditional-elimination half (spec.md
// §4.8): every Conditional disappears, replaced by unconditionally-
// executed branch statements and a guard-selected ternary merge for
// each variable either branch touched, and every Return is collected
// into a single trailing chain of ternary selects. Tuple/compound-place
// destructuring (C9's other half) lives in destructure.go.
//
// Grounded on spec.md §4.8's own description of the algorithm (guard
// stack, guarded assignment merge, collected returns); there is no
// single teacher file this generalizes; instead this pass reuses the
// block-scoped rename-table shape the teacher's internal/eval package
// and this module's own SSA former already established, extended with
// the post-SSA convention that an SSA name's surface variable is its
// "$"-prefix (see surfaceOf), which is what lets this pass recover,
// from the SSA-formed tree alone, which reassignments inside a branch
// need to be merged back into the surrounding scope.
package flatten

import (
	"fmt"
	"sort"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/ids"
	"github.com/leo-lang/avmc/internal/symtab"
)

type returnEntry struct {
	guard ast.Expr // nil means unconditional
	value ast.Expr
	span  ast.Span
}

// Flattener eliminates conditionals from one function at a time.
type Flattener struct {
	builder *ids.Builder
	sym     *symtab.Table
	scopes  []map[string]string
	returns []returnEntry
	counter int
}

// New returns a Flattener allocating fresh NodeIds from b.
func New(b *ids.Builder, sym *symtab.Table) *Flattener {
	return &Flattener{builder: b, sym: sym}
}

// Run flattens every function body in p and returns p.
func (fl *Flattener) Run(p *ast.Program) *ast.Program {
	for _, fn := range p.Functions {
		fl.flattenFunction(fn)
	}
	return p
}

func (fl *Flattener) nextID() ids.NodeId { return fl.builder.Next() }

func (fl *Flattener) fresh(base string) string {
	fl.counter++
	return fmt.Sprintf("%s$phi%d", base, fl.counter)
}

// surfaceOf recovers the pre-SSA surface name from a fresh SSA name
// minted by internal/passes/ssa ("y$7" -> "y"); a name with no "$" is
// already a surface name (a function input or const param).
func surfaceOf(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] == '$' {
			return name[:i]
		}
	}
	return name
}

func (fl *Flattener) pushScope() { fl.scopes = append(fl.scopes, map[string]string{}) }
func (fl *Flattener) popScope()  { fl.scopes = fl.scopes[:len(fl.scopes)-1] }

func (fl *Flattener) setCurrent(ssaName string) {
	fl.scopes[len(fl.scopes)-1][surfaceOf(ssaName)] = ssaName
}

// current returns the SSA name presently valid for ssaName's surface
// variable, searching outward; a name never reassigned after its
// definition resolves to itself.
func (fl *Flattener) current(ssaName string) string {
	surf := surfaceOf(ssaName)
	for i := len(fl.scopes) - 1; i >= 0; i-- {
		if v, ok := fl.scopes[i][surf]; ok {
			return v
		}
	}
	return ssaName
}

// flatView snapshots every surface binding visible right now, merging
// outer scopes up through the innermost, for diffing against a
// branch's post-processing view.
func (fl *Flattener) flatView() map[string]string {
	out := map[string]string{}
	for _, scope := range fl.scopes {
		for k, v := range scope {
			out[k] = v
		}
	}
	return out
}

func (fl *Flattener) flattenFunction(fn *ast.Function) {
	fl.scopes = nil
	fl.returns = nil
	fl.pushScope()
	for _, cp := range fn.ConstParams {
		fl.setCurrent(cp.Name)
	}
	for _, in := range fn.Inputs {
		fl.setCurrent(in.Name)
	}
	out := fl.flattenStmts(fn.Body.Statements, nil)
	if ret := fl.synthesizeReturn(); ret != nil {
		out = append(out, ret)
	}
	fl.popScope()
	fn.Body = &ast.Block{Base: fn.Body.Base, Statements: out}
}

// flattenStmts flattens a statement sequence under the conjunction of
// conditions guard (nil meaning unconditionally reached).
func (fl *Flattener) flattenStmts(stmts []ast.Stmt, guard ast.Expr) []ast.Stmt {
	var out []ast.Stmt
	for _, s := range stmts {
		out = append(out, fl.flattenStmt(s, guard)...)
	}
	return out
}

func (fl *Flattener) flattenStmt(s ast.Stmt, guard ast.Expr) []ast.Stmt {
	switch n := s.(type) {
	case *ast.Definition:
		val := fl.rewriteExpr(n.Value)
		for _, nm := range n.Place.Names {
			fl.setCurrent(nm)
		}
		return []ast.Stmt{&ast.Definition{Base: n.Base, Place: n.Place, Type: n.Type, Value: val}}

	case *ast.Assign:
		// internal/passes/writeform already normalized every compound
		// place ahead of this pass, so n.Place.Accessors is always empty
		// here; a plain reassignment just mints a merge-eligible binding.
		val := fl.rewriteExpr(n.Value)
		fl.setCurrent(n.Place.Names[0])
		return []ast.Stmt{&ast.Assign{Base: n.Base, Place: ast.Place{Names: []string{n.Place.Names[0]}}, Op: ast.CompoundNone, Value: val}}

	case *ast.Block:
		return fl.flattenStmts(n.Statements, guard)

	case *ast.Conditional:
		return fl.flattenConditional(n, guard)

	case *ast.Return:
		fl.returns = append(fl.returns, returnEntry{guard: guard, value: fl.rewriteExpr(n.Value), span: n.Span()})
		return nil

	case *ast.Assert:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = fl.rewriteExpr(a)
		}
		return []ast.Stmt{&ast.Assert{Base: n.Base, Kind: n.Kind, Args: args}}

	case *ast.ExpressionStatement:
		return []ast.Stmt{&ast.ExpressionStatement{Base: n.Base, Value: fl.rewriteExpr(n.Value)}}

	case *ast.Const:
		val := fl.rewriteExpr(n.Value)
		fl.setCurrent(n.Name)
		return []ast.Stmt{&ast.Const{Base: n.Base, Name: n.Name, Value: val}}

	case *ast.Empty:
		return nil

	case *ast.Iteration:
		// Reached only when C8 could not unroll the loop (non-literal
		// bounds, reported as VAL006); the loop is passed through
		// unchanged.
		return []ast.Stmt{n}

	default:
		return []ast.Stmt{s}
	}
}

func (fl *Flattener) flattenConditional(n *ast.Conditional, guard ast.Expr) []ast.Stmt {
	cond := fl.rewriteExpr(n.Cond)
	before := fl.flatView()

	fl.pushScope()
	thenOut := fl.flattenStmts(n.Then.Statements, andGuard(guard, cond, fl))
	thenView := fl.flatView()
	fl.popScope()

	var elseOut []ast.Stmt
	elseView := map[string]string{}
	if n.Else != nil {
		notCond := negate(cond, fl)
		fl.pushScope()
		elseOut = fl.flattenStmt(n.Else, andGuard(guard, notCond, fl))
		elseView = fl.flatView()
		fl.popScope()
	}

	names := map[string]bool{}
	for k := range thenView {
		names[k] = true
	}
	for k := range elseView {
		names[k] = true
	}
	sorted := make([]string, 0, len(names))
	for k := range names {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	out := append(thenOut, elseOut...)
	for _, surf := range sorted {
		thenVal, tOk := thenView[surf]
		if !tOk {
			thenVal = before[surf]
		}
		elseVal, eOk := elseView[surf]
		if !eOk {
			elseVal = before[surf]
		}
		if thenVal == elseVal {
			if thenVal != "" {
				fl.setCurrent(thenVal)
			}
			continue
		}
		merged := fl.fresh(surf)
		out = append(out, &ast.Definition{
			Base:  ast.Base{NodeID: fl.nextID(), Sp: n.Sp},
			Place: ast.Place{Names: []string{merged}},
			Value: &ast.Ternary{
				Base:    ast.Base{NodeID: fl.nextID(), Sp: n.Sp},
				Cond:    cond,
				IfTrue:  pathTo(thenVal, n.Sp, fl),
				IfFalse: pathTo(elseVal, n.Sp, fl),
			},
		})
		fl.setCurrent(merged)
	}
	return out
}

func pathTo(name string, span ast.Span, fl *Flattener) ast.Expr {
	return &ast.Path{Base: ast.Base{NodeID: fl.nextID(), Sp: span}, Segments: []string{name}}
}

func andGuard(outer, cond ast.Expr, fl *Flattener) ast.Expr {
	if outer == nil {
		return cond
	}
	return &ast.Binary{Base: ast.Base{NodeID: fl.nextID(), Sp: cond.Span()}, Op: ast.BinAnd, Left: outer, Right: cond}
}

func negate(cond ast.Expr, fl *Flattener) ast.Expr {
	return &ast.Unary{Base: ast.Base{NodeID: fl.nextID(), Sp: cond.Span()}, Op: ast.UnaryNot, Inner: cond}
}

// synthesizeReturn folds the collected (guard, value) pairs, in reverse
// program order, into a single chain of ternary selects (spec.md §4.8:
// "a single trailing return is synthesized as a chain of ternary
// selects"). An entry with a nil guard is treated as always taken.
func (fl *Flattener) synthesizeReturn() ast.Stmt {
	if len(fl.returns) == 0 {
		return nil
	}
	n := len(fl.returns)
	result := fl.returns[n-1].value
	for i := n - 2; i >= 0; i-- {
		e := fl.returns[i]
		g := e.guard
		if g == nil {
			result = e.value
			continue
		}
		result = &ast.Ternary{Base: ast.Base{NodeID: fl.nextID(), Sp: e.span}, Cond: g, IfTrue: e.value, IfFalse: result}
	}
	return &ast.Return{Base: ast.Base{NodeID: fl.nextID()}, Value: result}
}

// rewriteExpr resolves every single-segment Path to its currently valid
// SSA name, recursing through every expression kind.
func (fl *Flattener) rewriteExpr(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.Path:
		if len(n.Segments) == 1 {
			return &ast.Path{Base: n.Base, Segments: []string{fl.current(n.Segments[0])}}
		}
		return n
	case *ast.Literal:
		return n
	case *ast.Unary:
		return &ast.Unary{Base: n.Base, Op: n.Op, Inner: fl.rewriteExpr(n.Inner)}
	case *ast.Binary:
		return &ast.Binary{Base: n.Base, Op: n.Op, Left: fl.rewriteExpr(n.Left), Right: fl.rewriteExpr(n.Right)}
	case *ast.Ternary:
		return &ast.Ternary{Base: n.Base, Cond: fl.rewriteExpr(n.Cond), IfTrue: fl.rewriteExpr(n.IfTrue), IfFalse: fl.rewriteExpr(n.IfFalse)}
	case *ast.Cast:
		return &ast.Cast{Base: n.Base, Inner: fl.rewriteExpr(n.Inner), Target: n.Target}
	case *ast.Array:
		return &ast.Array{Base: n.Base, Elements: fl.rewriteAll(n.Elements)}
	case *ast.Tuple:
		return &ast.Tuple{Base: n.Base, Elements: fl.rewriteAll(n.Elements)}
	case *ast.Repeat:
		return &ast.Repeat{Base: n.Base, Element: fl.rewriteExpr(n.Element), Dimensions: fl.rewriteAll(n.Dimensions)}
	case *ast.Call:
		return &ast.Call{Base: n.Base, Callee: n.Callee, ConstArgs: fl.rewriteAll(n.ConstArgs), Args: fl.rewriteAll(n.Args)}
	case *ast.Composite:
		fields := make([]ast.CompositeField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = ast.CompositeField{Name: f.Name, Value: fl.rewriteExpr(f.Value)}
		}
		return &ast.Composite{Base: n.Base, Type: n.Type, ConstArgs: fl.rewriteAll(n.ConstArgs), Fields: fields}
	case *ast.ArrayAccess:
		return &ast.ArrayAccess{Base: n.Base, Array: fl.rewriteExpr(n.Array), Index: fl.rewriteExpr(n.Index)}
	case *ast.MemberAccess:
		return &ast.MemberAccess{Base: n.Base, Operand: fl.rewriteExpr(n.Operand), Member: n.Member}
	case *ast.TupleAccess:
		return &ast.TupleAccess{Base: n.Base, Operand: fl.rewriteExpr(n.Operand), Index: n.Index}
	case *ast.Intrinsic:
		return &ast.Intrinsic{Base: n.Base, Name: n.Name, ConstArgs: fl.rewriteAll(n.ConstArgs), Args: fl.rewriteAll(n.Args)}
	case *ast.Async:
		return &ast.Async{Base: n.Base, Program: n.Program, Callee: n.Callee, Args: fl.rewriteAll(n.Args)}
	default:
		return e
	}
}

func (fl *Flattener) rewriteAll(es []ast.Expr) []ast.Expr {
	if es == nil {
		return nil
	}
	out := make([]ast.Expr, len(es))
	for i, e := range es {
		out[i] = fl.rewriteExpr(e)
	}
	return out
}

