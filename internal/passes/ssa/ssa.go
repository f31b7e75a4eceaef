// Package ssa implements the SSA former (C7, spec.md §4.6): every
// definition is rewritten under a fresh name, non-trivial sub-
// expressions are hoisted into fresh temporaries, and composite
// initializers are reordered to the declared field order (owner first
// for records). Testable Property 3 (spec.md §8): after this pass every
// local name has exactly one definition, and every non-path operand of
// a binary, call, ternary, cast, or composite-init is a path.
//
// This pass does not use internal/reducer: the rename table must be
// pushed and popped exactly at block entry/exit, a hook the shared
// Block driver does not expose (it calls Stmt before the pass ever
// sees the block). Grounded on the teacher's internal/eval package's
// own lexical-environment-as-stack-of-maps style (a fresh child scope
// per block, popped on exit) generalized from evaluation to renaming.
package ssa

import (
	"fmt"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/ids"
	"github.com/leo-lang/avmc/internal/symtab"
)

// Former rewrites one program's functions into SSA form.
type Former struct {
	sym     *symtab.Table
	builder *ids.Builder
	counter int
	scopes  []map[string]string
}

// New returns a Former allocating fresh NodeIds from b and looking up
// composite field orders through sym.
func New(b *ids.Builder, sym *symtab.Table) *Former {
	return &Former{sym: sym, builder: b}
}

// Run SSA-forms every function body in p and returns p.
func (f *Former) Run(p *ast.Program) *ast.Program {
	for _, fn := range p.Functions {
		f.formFunction(fn)
	}
	return p
}

func (f *Former) fresh(base string) string {
	f.counter++
	return fmt.Sprintf("%s$%d", base, f.counter)
}

func (f *Former) pushScope() { f.scopes = append(f.scopes, map[string]string{}) }
func (f *Former) popScope()  { f.scopes = f.scopes[:len(f.scopes)-1] }

// bind introduces name into the innermost (current) scope only. Per
// spec.md §4.6 the rename table is pushed/popped at block boundaries,
// so a reassignment made inside a conditional branch does not outlive
// that branch's scope here — merging a branch's reassignment back into
// the surrounding scope is flattening's job (C9), not SSA forming's; see
// internal/passes/flatten's guard-ternary merge.
func (f *Former) bind(name, renamed string) {
	f.scopes[len(f.scopes)-1][name] = renamed
}

// lookup walks the scope stack innermost-first; a name bound nowhere is
// assumed to be a global const, function, or imported program name and
// passes through unchanged.
func (f *Former) lookup(name string) string {
	for i := len(f.scopes) - 1; i >= 0; i-- {
		if r, ok := f.scopes[i][name]; ok {
			return r
		}
	}
	return name
}

func (f *Former) nextID() ids.NodeId { return f.builder.Next() }

func (f *Former) formFunction(fn *ast.Function) {
	f.pushScope()
	for _, cp := range fn.ConstParams {
		f.bind(cp.Name, cp.Name)
	}
	for _, in := range fn.Inputs {
		f.bind(in.Name, in.Name)
	}
	var out []ast.Stmt
	for _, s := range fn.Body.Statements {
		out = append(out, f.formStmt(s)...)
	}
	fn.Body = &ast.Block{Base: fn.Body.Base, Statements: out}
	f.popScope()
}

// formBlock SSA-forms a nested block in its own child scope, so names
// defined inside it do not leak outward (spec.md §4.6: "the rename
// table is pushed/popped at block boundaries").
func (f *Former) formBlock(b *ast.Block) *ast.Block {
	f.pushScope()
	var out []ast.Stmt
	for _, s := range b.Statements {
		out = append(out, f.formStmt(s)...)
	}
	f.popScope()
	return &ast.Block{Base: b.Base, Statements: out}
}

// formStmt returns the statements that replace s: any hoisted
// temporaries followed by the rewritten statement itself (or nothing,
// for *ast.Empty).
func (f *Former) formStmt(s ast.Stmt) []ast.Stmt {
	switch n := s.(type) {
	case *ast.Definition:
		var emitted []ast.Stmt
		value := f.formExpr(n.Value, &emitted)
		names := make([]string, len(n.Place.Names))
		for i, nm := range n.Place.Names {
			renamed := f.fresh(nm)
			f.bind(nm, renamed)
			names[i] = renamed
		}
		def := &ast.Definition{
			Base:  ast.Base{NodeID: f.nextID(), Sp: n.Sp},
			Place: ast.Place{Names: names},
			Type:  n.Type,
			Value: value,
		}
		return append(emitted, def)

	case *ast.Assign:
		var emitted []ast.Stmt
		value := f.formExpr(n.Value, &emitted)
		if len(n.Place.Accessors) == 0 && len(n.Place.Names) == 1 {
			renamed := f.fresh(n.Place.Names[0])
			f.bind(n.Place.Names[0], renamed)
			asg := &ast.Assign{
				Base:  ast.Base{NodeID: f.nextID(), Sp: n.Sp},
				Place: ast.Place{Names: []string{renamed}},
				Op:    ast.CompoundNone,
				Value: value,
			}
			return append(emitted, asg)
		}
		// A compound place (member/tuple/array write) is not yet a fresh
		// whole-value redefinition; C9's write-transforming pass rewrites
		// these into destructure-friendly whole-value assigns. Here we
		// only rename the identifiers the place's own accessor
		// expressions read.
		accessors := make([]ast.Accessor, len(n.Place.Accessors))
		for i, acc := range n.Place.Accessors {
			accessors[i] = acc
			if acc.Kind == ast.AccessArray {
				accessors[i].Expr = f.formExpr(acc.Expr, &emitted)
			}
		}
		asg := &ast.Assign{
			Base:  ast.Base{NodeID: f.nextID(), Sp: n.Sp},
			Place: ast.Place{Names: []string{f.lookup(n.Place.Names[0])}, Accessors: accessors},
			Op:    ast.CompoundNone,
			Value: value,
		}
		return append(emitted, asg)

	case *ast.Block:
		return []ast.Stmt{f.formBlock(n)}

	case *ast.Conditional:
		var emitted []ast.Stmt
		cond := f.formExpr(n.Cond, &emitted)
		then := f.formBlock(n.Then)
		var els ast.Stmt
		if n.Else != nil {
			els = f.formElse(n.Else)
		}
		cnd := &ast.Conditional{Base: ast.Base{NodeID: f.nextID(), Sp: n.Sp}, Cond: cond, Then: then, Else: els}
		return append(emitted, cnd)

	case *ast.Iteration:
		var emitted []ast.Stmt
		start := f.formExpr(n.Start, &emitted)
		stop := f.formExpr(n.Stop, &emitted)
		f.pushScope()
		loopVar := f.fresh(n.LoopVar)
		f.bind(n.LoopVar, loopVar)
		var bodyOut []ast.Stmt
		for _, bs := range n.Body.Statements {
			bodyOut = append(bodyOut, f.formStmt(bs)...)
		}
		f.popScope()
		it := &ast.Iteration{
			Base:      ast.Base{NodeID: f.nextID(), Sp: n.Sp},
			LoopVar:   loopVar,
			VarType:   n.VarType,
			Start:     start,
			Stop:      stop,
			Inclusive: n.Inclusive,
			Body:      &ast.Block{Base: n.Body.Base, Statements: bodyOut},
		}
		return append(emitted, it)

	case *ast.Return:
		var emitted []ast.Stmt
		value := f.formExpr(n.Value, &emitted)
		return append(emitted, &ast.Return{Base: ast.Base{NodeID: f.nextID(), Sp: n.Sp}, Value: value})

	case *ast.Assert:
		var emitted []ast.Stmt
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = f.formExpr(a, &emitted)
		}
		return append(emitted, &ast.Assert{Base: ast.Base{NodeID: f.nextID(), Sp: n.Sp}, Kind: n.Kind, Args: args})

	case *ast.ExpressionStatement:
		var emitted []ast.Stmt
		value := f.formExpr(n.Value, &emitted)
		return append(emitted, &ast.ExpressionStatement{Base: ast.Base{NodeID: f.nextID(), Sp: n.Sp}, Value: value})

	case *ast.Const:
		var emitted []ast.Stmt
		value := f.formExpr(n.Value, &emitted)
		renamed := f.fresh(n.Name)
		f.bind(n.Name, renamed)
		return append(emitted, &ast.Const{Base: ast.Base{NodeID: f.nextID(), Sp: n.Sp}, Name: renamed, Value: value})

	case *ast.Empty:
		return nil

	default:
		return []ast.Stmt{s}
	}
}

// formElse handles an else-clause, which is either a bare block or a
// nested Conditional (an else-if chain); either way it must come back
// as a single Stmt, so a nested conditional's own hoists are wrapped in
// a synthetic block.
func (f *Former) formElse(s ast.Stmt) ast.Stmt {
	if b, ok := s.(*ast.Block); ok {
		return f.formBlock(b)
	}
	stmts := f.formStmt(s)
	if len(stmts) == 1 {
		return stmts[0]
	}
	return &ast.Block{Base: ast.Base{NodeID: f.nextID(), Sp: s.Span()}, Statements: stmts}
}

// formExpr renames paths and atomizes every child position that spec.md
// §8's SSA property requires to already be a path: binary/call/
// ternary/cast/composite-init operands.
func (f *Former) formExpr(e ast.Expr, emitted *[]ast.Stmt) ast.Expr {
	switch n := e.(type) {
	case *ast.Path:
		if len(n.Segments) == 1 {
			return &ast.Path{Base: n.Base, Segments: []string{f.lookup(n.Segments[0])}}
		}
		return n
	case *ast.Literal:
		return n
	case *ast.Unary:
		return &ast.Unary{Base: n.Base, Op: n.Op, Inner: f.atomize(n.Inner, emitted)}
	case *ast.Binary:
		return &ast.Binary{Base: n.Base, Op: n.Op, Left: f.atomize(n.Left, emitted), Right: f.atomize(n.Right, emitted)}
	case *ast.Ternary:
		return &ast.Ternary{
			Base:    n.Base,
			Cond:    f.atomize(n.Cond, emitted),
			IfTrue:  f.atomize(n.IfTrue, emitted),
			IfFalse: f.atomize(n.IfFalse, emitted),
		}
	case *ast.Cast:
		return &ast.Cast{Base: n.Base, Inner: f.atomize(n.Inner, emitted), Target: n.Target}
	case *ast.Array:
		return &ast.Array{Base: n.Base, Elements: f.atomizeAll(n.Elements, emitted)}
	case *ast.Tuple:
		return &ast.Tuple{Base: n.Base, Elements: f.atomizeAll(n.Elements, emitted)}
	case *ast.Repeat:
		return &ast.Repeat{Base: n.Base, Element: f.atomize(n.Element, emitted), Dimensions: f.atomizeAll(n.Dimensions, emitted)}
	case *ast.Call:
		return &ast.Call{
			Base:      n.Base,
			Callee:    f.formExpr(n.Callee, emitted),
			ConstArgs: f.atomizeAll(n.ConstArgs, emitted),
			Args:      f.atomizeAll(n.Args, emitted),
		}
	case *ast.Composite:
		fields := make([]ast.CompositeField, len(n.Fields))
		for i, fl := range n.Fields {
			fields[i] = ast.CompositeField{Name: fl.Name, Value: f.atomize(fl.Value, emitted)}
		}
		return &ast.Composite{
			Base:      n.Base,
			Type:      n.Type,
			ConstArgs: f.atomizeAll(n.ConstArgs, emitted),
			Fields:    f.reorderFields(n.Type, fields),
		}
	case *ast.ArrayAccess:
		return &ast.ArrayAccess{Base: n.Base, Array: f.atomize(n.Array, emitted), Index: f.atomize(n.Index, emitted)}
	case *ast.MemberAccess:
		return &ast.MemberAccess{Base: n.Base, Operand: f.atomize(n.Operand, emitted), Member: n.Member}
	case *ast.TupleAccess:
		return &ast.TupleAccess{Base: n.Base, Operand: f.atomize(n.Operand, emitted), Index: n.Index}
	case *ast.Intrinsic:
		return &ast.Intrinsic{Base: n.Base, Name: n.Name, ConstArgs: f.atomizeAll(n.ConstArgs, emitted), Args: f.atomizeAll(n.Args, emitted)}
	case *ast.Async:
		return &ast.Async{Base: n.Base, Program: n.Program, Callee: n.Callee, Args: f.atomizeAll(n.Args, emitted)}
	case *ast.Unit:
		return n
	case *ast.Err:
		return n
	default:
		return n
	}
}

func (f *Former) atomizeAll(es []ast.Expr, emitted *[]ast.Stmt) []ast.Expr {
	if es == nil {
		return nil
	}
	out := make([]ast.Expr, len(es))
	for i, e := range es {
		out[i] = f.atomize(e, emitted)
	}
	return out
}

// atomize reduces e, then if the result is not already a Path or
// Literal, hoists it into a fresh temporary and returns a Path to it.
func (f *Former) atomize(e ast.Expr, emitted *[]ast.Stmt) ast.Expr {
	reduced := f.formExpr(e, emitted)
	switch reduced.(type) {
	case *ast.Path, *ast.Literal:
		return reduced
	}
	temp := f.fresh("t")
	*emitted = append(*emitted, &ast.Definition{
		Base:  ast.Base{NodeID: f.nextID(), Sp: reduced.Span()},
		Place: ast.Place{Names: []string{temp}},
		Value: reduced,
	})
	return &ast.Path{Base: ast.Base{NodeID: f.nextID(), Sp: reduced.Span()}, Segments: []string{temp}}
}

// reorderFields matches a composite initializer's fields to the
// declared struct/record field order (spec.md §4.6: "records place
// owner first"). Fields not found in the declaration (should not
// happen past type checking) are appended in their original order.
func (f *Former) reorderFields(typ ast.Path, fields []ast.CompositeField) []ast.CompositeField {
	if len(typ.Segments) == 0 {
		return fields
	}
	name := typ.Segments[len(typ.Segments)-1]
	decl, ok := f.sym.LookupStruct(symtab.Location{Path: []string{name}})
	if !ok {
		decl, ok = f.sym.LookupRecord(symtab.Location{Path: []string{name}})
	}
	if !ok {
		return fields
	}
	byName := make(map[string]ast.CompositeField, len(fields))
	for _, fl := range fields {
		byName[fl.Name] = fl
	}
	out := make([]ast.CompositeField, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, df := range decl.Fields {
		if fl, ok := byName[df.Name]; ok {
			out = append(out, fl)
			seen[df.Name] = true
		}
	}
	for _, fl := range fields {
		if !seen[fl.Name] {
			out = append(out, fl)
		}
	}
	return out
}
