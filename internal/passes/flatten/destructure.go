package flatten

import (
	"fmt"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/ids"
)

// Destructurer eliminates single-name tuple-valued locals (Testable
// Property 6): `let x: (A,B) = (v0, v1);` followed by `x.0`/`x.1` becomes
// two scalar bindings `x#tuple0`/`x#tuple1` with every TupleAccess on x
// rewritten to the matching scalar path. The AST already models the
// `let (a, b) = expr;` multi-name destructuring form natively as
// Place.Names with more than one entry (spec.md §3's Place), so that
// form needs no work here; this pass only handles a tuple value bound
// to a *single* name and later indexed.
type Destructurer struct {
	builder *ids.Builder
	vars    map[string][]string // tracked name -> its scalar component names
}

// NewDestructurer returns an empty Destructurer allocating fresh NodeIds
// from b for every scalar binding it synthesizes.
func NewDestructurer(b *ids.Builder) *Destructurer {
	return &Destructurer{builder: b, vars: map[string][]string{}}
}

// Run destructures every function body in p and returns p.
func (d *Destructurer) Run(p *ast.Program) *ast.Program {
	for _, fn := range p.Functions {
		d.vars = map[string][]string{}
		fn.Body = &ast.Block{Base: fn.Body.Base, Statements: d.stmts(fn.Body.Statements)}
	}
	return p
}

// scalarName builds a tuple-component name. If base already carries an
// SSA suffix ("pair$0", minted by internal/passes/ssa before this pass
// runs), the #tupleN discriminator is inserted *before* the "$" rather
// than appended after it: flatten.go's surfaceOf recovers a surface name
// by truncating at the first "$", so "pair$0#tuple0" and "pair$0#tuple1"
// would otherwise both truncate to the same surface key "pair" and
// alias each other once flattening runs over this pass's output.
func scalarName(base string, i int) string {
	stem, suffix := splitSSASuffix(base)
	return fmt.Sprintf("%s#tuple%d%s", stem, i, suffix)
}

func splitSSASuffix(name string) (stem, suffix string) {
	for i := 0; i < len(name); i++ {
		if name[i] == '$' {
			return name[:i], name[i:]
		}
	}
	return name, ""
}

func (d *Destructurer) stmts(in []ast.Stmt) []ast.Stmt {
	var out []ast.Stmt
	for _, s := range in {
		out = append(out, d.stmt(s)...)
	}
	return out
}

func (d *Destructurer) stmt(s ast.Stmt) []ast.Stmt {
	switch n := s.(type) {
	case *ast.Definition:
		val := d.expr(n.Value)
		if len(n.Place.Names) == 1 {
			if tup, ok := val.(*ast.Tuple); ok {
				return d.splitTuple(n.Place.Names[0], tup, n.Base)
			}
		}
		return []ast.Stmt{&ast.Definition{Base: n.Base, Place: n.Place, Type: n.Type, Value: val}}

	case *ast.Assign:
		val := d.expr(n.Value)
		if len(n.Place.Accessors) == 0 && len(n.Place.Names) == 1 {
			if tup, ok := val.(*ast.Tuple); ok {
				return d.splitTuple(n.Place.Names[0], tup, n.Base)
			}
		}
		return []ast.Stmt{&ast.Assign{Base: n.Base, Place: n.Place, Op: n.Op, Value: val}}

	case *ast.Block:
		return []ast.Stmt{&ast.Block{Base: n.Base, Statements: d.stmts(n.Statements)}}

	case *ast.Conditional:
		then := &ast.Block{Base: n.Then.Base, Statements: d.stmts(n.Then.Statements)}
		var els ast.Stmt
		if n.Else != nil {
			elsStmts := d.stmt(n.Else)
			if len(elsStmts) == 1 {
				els = elsStmts[0]
			} else {
				els = &ast.Block{Base: ast.Base{NodeID: n.Else.ID(), Sp: n.Else.Span()}, Statements: elsStmts}
			}
		}
		return []ast.Stmt{&ast.Conditional{Base: n.Base, Cond: d.expr(n.Cond), Then: then, Else: els}}

	case *ast.Iteration:
		return []ast.Stmt{&ast.Iteration{Base: n.Base, LoopVar: n.LoopVar, VarType: n.VarType,
			Start: d.expr(n.Start), Stop: d.expr(n.Stop), Inclusive: n.Inclusive,
			Body: &ast.Block{Base: n.Body.Base, Statements: d.stmts(n.Body.Statements)}}}

	case *ast.Return:
		return []ast.Stmt{&ast.Return{Base: n.Base, Value: d.expr(n.Value)}}

	case *ast.Assert:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = d.expr(a)
		}
		return []ast.Stmt{&ast.Assert{Base: n.Base, Kind: n.Kind, Args: args}}

	case *ast.ExpressionStatement:
		return []ast.Stmt{&ast.ExpressionStatement{Base: n.Base, Value: d.expr(n.Value)}}

	case *ast.Const:
		return []ast.Stmt{&ast.Const{Base: n.Base, Name: n.Name, Value: d.expr(n.Value)}}

	default:
		return []ast.Stmt{s}
	}
}

// splitTuple registers base's scalar component names and emits one
// Definition per element (each element already rewritten by the caller).
func (d *Destructurer) splitTuple(base string, tup *ast.Tuple, b ast.Base) []ast.Stmt {
	names := make([]string, len(tup.Elements))
	out := make([]ast.Stmt, len(tup.Elements))
	for i, elt := range tup.Elements {
		names[i] = scalarName(base, i)
		out[i] = &ast.Definition{
			Base:  ast.Base{NodeID: d.builder.Next(), Sp: b.Sp},
			Place: ast.Place{Names: []string{names[i]}},
			Value: elt,
		}
	}
	d.vars[base] = names
	return out
}

func (d *Destructurer) expr(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.TupleAccess:
		operand := d.expr(n.Operand)
		if p, ok := operand.(*ast.Path); ok && len(p.Segments) == 1 {
			if names, tracked := d.vars[p.Segments[0]]; tracked && n.Index < len(names) {
				return &ast.Path{Base: n.Base, Segments: []string{names[n.Index]}}
			}
		}
		return &ast.TupleAccess{Base: n.Base, Operand: operand, Index: n.Index}
	case *ast.Path, *ast.Literal:
		return n
	case *ast.Unary:
		return &ast.Unary{Base: n.Base, Op: n.Op, Inner: d.expr(n.Inner)}
	case *ast.Binary:
		return &ast.Binary{Base: n.Base, Op: n.Op, Left: d.expr(n.Left), Right: d.expr(n.Right)}
	case *ast.Ternary:
		return &ast.Ternary{Base: n.Base, Cond: d.expr(n.Cond), IfTrue: d.expr(n.IfTrue), IfFalse: d.expr(n.IfFalse)}
	case *ast.Cast:
		return &ast.Cast{Base: n.Base, Inner: d.expr(n.Inner), Target: n.Target}
	case *ast.Array:
		return &ast.Array{Base: n.Base, Elements: d.exprAll(n.Elements)}
	case *ast.Tuple:
		return &ast.Tuple{Base: n.Base, Elements: d.exprAll(n.Elements)}
	case *ast.Repeat:
		return &ast.Repeat{Base: n.Base, Element: d.expr(n.Element), Dimensions: d.exprAll(n.Dimensions)}
	case *ast.Call:
		return &ast.Call{Base: n.Base, Callee: n.Callee, ConstArgs: d.exprAll(n.ConstArgs), Args: d.exprAll(n.Args)}
	case *ast.Composite:
		fields := make([]ast.CompositeField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = ast.CompositeField{Name: f.Name, Value: d.expr(f.Value)}
		}
		return &ast.Composite{Base: n.Base, Type: n.Type, ConstArgs: d.exprAll(n.ConstArgs), Fields: fields}
	case *ast.ArrayAccess:
		return &ast.ArrayAccess{Base: n.Base, Array: d.expr(n.Array), Index: d.expr(n.Index)}
	case *ast.MemberAccess:
		return &ast.MemberAccess{Base: n.Base, Operand: d.expr(n.Operand), Member: n.Member}
	case *ast.Intrinsic:
		return &ast.Intrinsic{Base: n.Base, Name: n.Name, ConstArgs: d.exprAll(n.ConstArgs), Args: d.exprAll(n.Args)}
	case *ast.Async:
		return &ast.Async{Base: n.Base, Program: n.Program, Callee: n.Callee, Args: d.exprAll(n.Args)}
	default:
		return e
	}
}

func (d *Destructurer) exprAll(es []ast.Expr) []ast.Expr {
	if es == nil {
		return nil
	}
	out := make([]ast.Expr, len(es))
	for i, e := range es {
		out[i] = d.expr(e)
	}
	return out
}
