// Package writeform implements write-transforming, the sub-stage of C9
// the original Leo compiler keeps distinct from destructuring (see
// SPEC_FULL.md §12, grounded on original_source/write_transforming/
// statement.rs): a single-member write `s.field = v` is rebuilt as a
// whole-value Composite bound to a fresh name. Array-element and
// tuple-element writes (`a[i] = v`) are not rebuilt: they stay
// accessor-chain Assigns, so later passes still see those compound
// places. It runs inside the fixpoint loop, after SSA forming and
// before constant propagation, and still sees
// Conditional/Iteration structurally intact — it rewrites statements in
// place rather than collapsing control flow, which is flatten's job.
//
// Grounded on the same surface-name/current-SSA-name scope-stack shape
// internal/passes/flatten.Flattener uses for its own guard-merge
// renaming, since this pass has the identical problem: a compound write
// must update what "the current value of s" means for every subsequent
// read in its scope, which internal/passes/ssa deliberately does not do
// (it passes accessor-chain writes through unrenamed, leaving the
// correction to this pass).
package writeform

import (
	"fmt"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/ids"
	"github.com/leo-lang/avmc/internal/symtab"
)

// Writeformer normalizes compound assignment places.
type Writeformer struct {
	builder *ids.Builder
	sym     *symtab.Table
	scopes  []map[string]string
	counter int
}

// New returns a Writeformer allocating fresh NodeIds from b.
func New(b *ids.Builder, sym *symtab.Table) *Writeformer {
	return &Writeformer{builder: b, sym: sym}
}

// Run normalizes every function body in p and returns p.
func (w *Writeformer) Run(p *ast.Program) *ast.Program {
	for _, fn := range p.Functions {
		w.scopes = nil
		w.pushScope()
		for _, cp := range fn.ConstParams {
			w.setCurrent(cp.Name)
		}
		for _, in := range fn.Inputs {
			w.setCurrent(in.Name)
		}
		fn.Body = &ast.Block{Base: fn.Body.Base, Statements: w.stmts(fn.Body.Statements)}
		w.popScope()
	}
	return p
}

func (w *Writeformer) pushScope() { w.scopes = append(w.scopes, map[string]string{}) }
func (w *Writeformer) popScope()  { w.scopes = w.scopes[:len(w.scopes)-1] }

func (w *Writeformer) setCurrent(name string) { w.scopes[len(w.scopes)-1][surfaceOf(name)] = name }

func (w *Writeformer) current(name string) string {
	surf := surfaceOf(name)
	for i := len(w.scopes) - 1; i >= 0; i-- {
		if v, ok := w.scopes[i][surf]; ok {
			return v
		}
	}
	return name
}

// surfaceOf recovers the pre-SSA surface name, matching
// internal/passes/ssa.Former.fresh's "base$counter" convention.
func surfaceOf(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] == '$' {
			return name[:i]
		}
	}
	return name
}

func (w *Writeformer) fresh(base string) string {
	w.counter++
	return fmt.Sprintf("%s$wf%d", base, w.counter)
}

func (w *Writeformer) stmts(in []ast.Stmt) []ast.Stmt {
	var out []ast.Stmt
	for _, s := range in {
		out = append(out, w.stmt(s)...)
	}
	return out
}

func (w *Writeformer) stmt(s ast.Stmt) []ast.Stmt {
	switch n := s.(type) {
	case *ast.Definition:
		return []ast.Stmt{&ast.Definition{Base: n.Base, Place: n.Place, Type: n.Type, Value: w.rewrite(n.Value)}}

	case *ast.Assign:
		val := w.rewrite(n.Value)
		if len(n.Place.Accessors) == 0 {
			w.setCurrent(n.Place.Names[0])
			return []ast.Stmt{&ast.Assign{Base: n.Base, Place: ast.Place{Names: []string{n.Place.Names[0]}}, Op: ast.CompoundNone, Value: val}}
		}
		return w.writeTransform(n, val)

	case *ast.Block:
		w.pushScope()
		body := w.stmts(n.Statements)
		w.popScope()
		return []ast.Stmt{&ast.Block{Base: n.Base, Statements: body}}

	case *ast.Conditional:
		cond := w.rewrite(n.Cond)
		w.pushScope()
		then := &ast.Block{Base: n.Then.Base, Statements: w.stmts(n.Then.Statements)}
		w.popScope()
		var els ast.Stmt
		if n.Else != nil {
			w.pushScope()
			elsStmts := w.stmt(n.Else)
			w.popScope()
			if len(elsStmts) == 1 {
				els = elsStmts[0]
			} else {
				els = &ast.Block{Base: ast.Base{NodeID: n.Else.ID(), Sp: n.Else.Span()}, Statements: elsStmts}
			}
		}
		return []ast.Stmt{&ast.Conditional{Base: n.Base, Cond: cond, Then: then, Else: els}}

	case *ast.Iteration:
		w.pushScope()
		w.setCurrent(n.LoopVar)
		body := &ast.Block{Base: n.Body.Base, Statements: w.stmts(n.Body.Statements)}
		w.popScope()
		return []ast.Stmt{&ast.Iteration{Base: n.Base, LoopVar: n.LoopVar, VarType: n.VarType,
			Start: w.rewrite(n.Start), Stop: w.rewrite(n.Stop), Inclusive: n.Inclusive, Body: body}}

	case *ast.Return:
		return []ast.Stmt{&ast.Return{Base: n.Base, Value: w.rewrite(n.Value)}}

	case *ast.Assert:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = w.rewrite(a)
		}
		return []ast.Stmt{&ast.Assert{Base: n.Base, Kind: n.Kind, Args: args}}

	case *ast.ExpressionStatement:
		return []ast.Stmt{&ast.ExpressionStatement{Base: n.Base, Value: w.rewrite(n.Value)}}

	case *ast.Const:
		val := w.rewrite(n.Value)
		w.setCurrent(n.Name)
		return []ast.Stmt{&ast.Const{Base: n.Base, Name: n.Name, Value: val}}

	default:
		return []ast.Stmt{s}
	}
}

// writeTransform rebuilds a single-member compound write `s.field = v`
// into one fresh whole-value Composite binding and records it as s's
// current binding; array/tuple-element compound writes are left as
// accessor-chain Assigns against the current base name, a documented
// scope simplification (no
// general array "update at index" value operation exists to ground a
// full functional rebuild on in this teaching-scale core).
func (w *Writeformer) writeTransform(n *ast.Assign, val ast.Expr) []ast.Stmt {
	base := w.current(n.Place.Names[0])
	if len(n.Place.Accessors) != 1 || n.Place.Accessors[0].Kind != ast.AccessMember {
		accessors := make([]ast.Accessor, len(n.Place.Accessors))
		copy(accessors, n.Place.Accessors)
		for i, acc := range accessors {
			if acc.Kind == ast.AccessArray {
				accessors[i].Expr = w.rewrite(acc.Expr)
			}
		}
		return []ast.Stmt{&ast.Assign{Base: n.Base, Place: ast.Place{Names: []string{base}, Accessors: accessors}, Op: ast.CompoundNone, Value: val}}
	}
	member := n.Place.Accessors[0].Member
	basePath := &ast.Path{Base: ast.Base{NodeID: w.builder.Next(), Sp: n.Sp}, Segments: []string{base}}

	var fields []ast.CompositeField
	if decl, ok := w.sym.LookupCompositeByField(member); ok {
		fields = make([]ast.CompositeField, len(decl.Fields))
		for i, f := range decl.Fields {
			if f.Name == member {
				fields[i] = ast.CompositeField{Name: f.Name, Value: val}
			} else {
				fields[i] = ast.CompositeField{Name: f.Name, Value: &ast.MemberAccess{
					Base: ast.Base{NodeID: w.builder.Next(), Sp: n.Sp}, Operand: basePath, Member: f.Name,
				}}
			}
		}
	} else {
		fields = []ast.CompositeField{{Name: member, Value: val}}
	}
	freshName := w.fresh(surfaceOf(base))
	rebuild := &ast.Definition{
		Base:  ast.Base{NodeID: w.builder.Next(), Sp: n.Sp},
		Place: ast.Place{Names: []string{freshName}},
		Value: &ast.Composite{Base: ast.Base{NodeID: w.builder.Next(), Sp: n.Sp}, Type: ast.Path{Segments: []string{""}}, Fields: fields},
	}
	w.setCurrent(freshName)
	return []ast.Stmt{rebuild}
}

func (w *Writeformer) rewrite(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.Path:
		if len(n.Segments) == 1 {
			return &ast.Path{Base: n.Base, Segments: []string{w.current(n.Segments[0])}}
		}
		return n
	case *ast.Literal:
		return n
	case *ast.Unary:
		return &ast.Unary{Base: n.Base, Op: n.Op, Inner: w.rewrite(n.Inner)}
	case *ast.Binary:
		return &ast.Binary{Base: n.Base, Op: n.Op, Left: w.rewrite(n.Left), Right: w.rewrite(n.Right)}
	case *ast.Ternary:
		return &ast.Ternary{Base: n.Base, Cond: w.rewrite(n.Cond), IfTrue: w.rewrite(n.IfTrue), IfFalse: w.rewrite(n.IfFalse)}
	case *ast.Cast:
		return &ast.Cast{Base: n.Base, Inner: w.rewrite(n.Inner), Target: n.Target}
	case *ast.Array:
		return &ast.Array{Base: n.Base, Elements: w.rewriteAll(n.Elements)}
	case *ast.Tuple:
		return &ast.Tuple{Base: n.Base, Elements: w.rewriteAll(n.Elements)}
	case *ast.Repeat:
		return &ast.Repeat{Base: n.Base, Element: w.rewrite(n.Element), Dimensions: w.rewriteAll(n.Dimensions)}
	case *ast.Call:
		return &ast.Call{Base: n.Base, Callee: n.Callee, ConstArgs: w.rewriteAll(n.ConstArgs), Args: w.rewriteAll(n.Args)}
	case *ast.Composite:
		fields := make([]ast.CompositeField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = ast.CompositeField{Name: f.Name, Value: w.rewrite(f.Value)}
		}
		return &ast.Composite{Base: n.Base, Type: n.Type, ConstArgs: w.rewriteAll(n.ConstArgs), Fields: fields}
	case *ast.ArrayAccess:
		return &ast.ArrayAccess{Base: n.Base, Array: w.rewrite(n.Array), Index: w.rewrite(n.Index)}
	case *ast.MemberAccess:
		return &ast.MemberAccess{Base: n.Base, Operand: w.rewrite(n.Operand), Member: n.Member}
	case *ast.TupleAccess:
		return &ast.TupleAccess{Base: n.Base, Operand: w.rewrite(n.Operand), Index: n.Index}
	case *ast.Intrinsic:
		return &ast.Intrinsic{Base: n.Base, Name: n.Name, ConstArgs: w.rewriteAll(n.ConstArgs), Args: w.rewriteAll(n.Args)}
	case *ast.Async:
		return &ast.Async{Base: n.Base, Program: n.Program, Callee: n.Callee, Args: w.rewriteAll(n.Args)}
	default:
		return e
	}
}

func (w *Writeformer) rewriteAll(es []ast.Expr) []ast.Expr {
	if es == nil {
		return nil
	}
	out := make([]ast.Expr, len(es))
	for i, e := range es {
		out[i] = w.rewrite(e)
	}
	return out
}
