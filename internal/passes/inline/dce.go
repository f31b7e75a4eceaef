package inline

import "github.com/leo-lang/avmc/internal/ast"

// DCE removes statements whose bound name is never read by a live
// statement and that have no observable side effect of their own
// (spec.md §4.9: "a definition is live if its result is used by a live
// statement or it has an observable effect"). Side-effecting statement
// kinds — Assert, ExpressionStatement, a Definition/Assign whose value
// is a Call (to a non-inline function; inlining already removed every
// inline call), an Intrinsic (covers mapping reads/writes), or an Async
// finalize invocation — are always kept. Runs per function, after
// inlining and flattening have reduced the body to one block with no
// Conditional/Iteration left.
type DCE struct{}

// NewDCE returns a DCE pass; it holds no state of its own.
func NewDCE() *DCE { return &DCE{} }

// Run performs dead-code elimination on every function body in p.
func (d *DCE) Run(p *ast.Program) *ast.Program {
	for _, fn := range p.Functions {
		fn.Body = &ast.Block{Base: fn.Body.Base, Statements: d.sweep(fn.Body.Statements)}
	}
	return p
}

func (d *DCE) sweep(stmts []ast.Stmt) []ast.Stmt {
	live := map[string]bool{}
	keep := make([]bool, len(stmts))
	for i := len(stmts) - 1; i >= 0; i-- {
		s := stmts[i]
		switch n := s.(type) {
		case *ast.Definition:
			if boundLive(n.Place.Names, live) || hasEffect(n.Value) {
				keep[i] = true
				markRefs(n.Value, live)
			}
		case *ast.Assign:
			if boundLive(n.Place.Names, live) || hasEffect(n.Value) || len(n.Place.Accessors) > 0 {
				keep[i] = true
				markRefs(n.Value, live)
				for _, acc := range n.Place.Accessors {
					if acc.Kind == ast.AccessArray {
						markRefs(acc.Expr, live)
					}
				}
			}
		case *ast.Const:
			if live[n.Name] || hasEffect(n.Value) {
				keep[i] = true
				markRefs(n.Value, live)
			}
		case *ast.Empty:
			// drop unconditionally
		default:
			keep[i] = true
			markStmtRefs(s, live)
		}
	}
	var out []ast.Stmt
	for i, s := range stmts {
		if keep[i] {
			out = append(out, s)
		}
	}
	return out
}

func boundLive(names []string, live map[string]bool) bool {
	for _, n := range names {
		if live[n] {
			return true
		}
	}
	return false
}

// hasEffect reports whether evaluating e alone can be observed beyond
// binding its result: a call to a (necessarily non-inline, post-C10a)
// function, an intrinsic (mapping get/set, hashing with a record
// side table, etc.), or a finalize invocation.
func hasEffect(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Call, *ast.Intrinsic, *ast.Async:
		return true
	default:
		return false
	}
}

func markStmtRefs(s ast.Stmt, live map[string]bool) {
	switch n := s.(type) {
	case *ast.Return:
		markRefs(n.Value, live)
	case *ast.Assert:
		for _, a := range n.Args {
			markRefs(a, live)
		}
	case *ast.ExpressionStatement:
		markRefs(n.Value, live)
	case *ast.Conditional:
		markRefs(n.Cond, live)
		for _, st := range n.Then.Statements {
			markStmtRefs(st, live)
		}
		if n.Else != nil {
			markStmtRefs(n.Else, live)
		}
	case *ast.Block:
		for _, st := range n.Statements {
			markStmtRefs(st, live)
		}
	case *ast.Iteration:
		markRefs(n.Start, live)
		markRefs(n.Stop, live)
		for _, st := range n.Body.Statements {
			markStmtRefs(st, live)
		}
	}
}

func markRefs(e ast.Expr, live map[string]bool) {
	switch n := e.(type) {
	case *ast.Path:
		if len(n.Segments) == 1 {
			live[n.Segments[0]] = true
		}
	case *ast.Unary:
		markRefs(n.Inner, live)
	case *ast.Binary:
		markRefs(n.Left, live)
		markRefs(n.Right, live)
	case *ast.Ternary:
		markRefs(n.Cond, live)
		markRefs(n.IfTrue, live)
		markRefs(n.IfFalse, live)
	case *ast.Cast:
		markRefs(n.Inner, live)
	case *ast.Array:
		for _, el := range n.Elements {
			markRefs(el, live)
		}
	case *ast.Tuple:
		for _, el := range n.Elements {
			markRefs(el, live)
		}
	case *ast.Repeat:
		markRefs(n.Element, live)
		for _, d := range n.Dimensions {
			markRefs(d, live)
		}
	case *ast.Call:
		markRefs(n.Callee, live)
		for _, a := range n.ConstArgs {
			markRefs(a, live)
		}
		for _, a := range n.Args {
			markRefs(a, live)
		}
	case *ast.Composite:
		for _, a := range n.ConstArgs {
			markRefs(a, live)
		}
		for _, f := range n.Fields {
			markRefs(f.Value, live)
		}
	case *ast.ArrayAccess:
		markRefs(n.Array, live)
		markRefs(n.Index, live)
	case *ast.MemberAccess:
		markRefs(n.Operand, live)
	case *ast.TupleAccess:
		markRefs(n.Operand, live)
	case *ast.Intrinsic:
		for _, a := range n.ConstArgs {
			markRefs(a, live)
		}
		for _, a := range n.Args {
			markRefs(a, live)
		}
	case *ast.Async:
		for _, a := range n.Args {
			markRefs(a, live)
		}
	}
}
