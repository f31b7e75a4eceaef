// Package astutil holds AST-wide checks that are not a compiler pass in
// their own right: node-id uniqueness (Testable Property 1), run by the
// pipeline driver after each cloning pass and by tests to assert the
// id-preserving reconstruction contract held.
package astutil

import (
	"fmt"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/ids"
	"github.com/leo-lang/avmc/internal/reducer"
)

// DuplicateNodeIDError reports the first id CheckUniqueNodeIDs found
// reused across distinct nodes.
type DuplicateNodeIDError struct{ ID ids.NodeId }

func (e *DuplicateNodeIDError) Error() string {
	return fmt.Sprintf("astutil: duplicate NodeId found in the AST: %s", e.ID)
}

// idSet is the monoid this check folds the AST into: the set of
// NodeIds seen so far. Combine reports the first collision via a
// sentinel stored on the set itself, since Folder's Combine signature
// has no error return (mirrors the original check_unique_node_ids.rs's
// panic-on-duplicate, but surfaced as an error instead of a panic —
// spec.md §7 reserves panics for genuine internal-invariant violations
// the caller cannot recover from).
type idSet struct {
	seen    map[ids.NodeId]bool
	dupe    ids.NodeId
	hasDupe bool
}

func newIDSet() *idSet { return &idSet{seen: make(map[ids.NodeId]bool)} }

func (s *idSet) add(id ids.NodeId) {
	if s.hasDupe || id == ids.Invalid {
		return
	}
	if s.seen[id] {
		s.dupe, s.hasDupe = id, true
		return
	}
	s.seen[id] = true
}

func (s *idSet) merge(o *idSet) {
	if s.hasDupe {
		return
	}
	if o.hasDupe {
		s.dupe, s.hasDupe = o.dupe, true
		return
	}
	for id := range o.seen {
		s.add(id)
	}
}

// checker is a Folder whose only job is to register each node's id into
// the shared set as the traversal reaches it; every FoldXxx override
// below adds `n`'s own id on top of BaseFolder's pass-through of
// already-folded children.
type checker struct{ reducer.BaseFolder }

func (checker) Zero() any { return newIDSet() }

func (checker) Combine(a, b any) any {
	sa, sb := a.(*idSet), b.(*idSet)
	out := newIDSet()
	out.merge(sa)
	out.merge(sb)
	return out
}

func (c checker) register(id ids.NodeId, children any) any {
	set, _ := children.(*idSet)
	if set == nil {
		set = newIDSet()
	}
	out := newIDSet()
	out.merge(set)
	out.add(id)
	return out
}

func (c checker) FoldPath(n *ast.Path) any       { return c.register(n.ID(), nil) }
func (c checker) FoldLiteral(n *ast.Literal) any { return c.register(n.ID(), nil) }
func (c checker) FoldUnary(n *ast.Unary, inner any) any { return c.register(n.ID(), inner) }
func (c checker) FoldBinary(n *ast.Binary, left, right any) any {
	return c.register(n.ID(), c.Combine(left, right))
}
func (c checker) FoldTernary(n *ast.Ternary, cond, ifTrue, ifFalse any) any {
	return c.register(n.ID(), c.Combine(c.Combine(cond, ifTrue), ifFalse))
}
func (c checker) FoldCast(n *ast.Cast, inner any) any { return c.register(n.ID(), inner) }
func (c checker) FoldArray(n *ast.Array, elements any) any { return c.register(n.ID(), elements) }
func (c checker) FoldTuple(n *ast.Tuple, elements any) any { return c.register(n.ID(), elements) }
func (c checker) FoldRepeat(n *ast.Repeat, element, dims any) any {
	return c.register(n.ID(), c.Combine(element, dims))
}
func (c checker) FoldCall(n *ast.Call, callee, constArgs, args any) any {
	return c.register(n.ID(), c.Combine(c.Combine(callee, constArgs), args))
}
func (c checker) FoldComposite(n *ast.Composite, constArgs, fields any) any {
	return c.register(n.ID(), c.Combine(constArgs, fields))
}
func (c checker) FoldArrayAccess(n *ast.ArrayAccess, array, index any) any {
	return c.register(n.ID(), c.Combine(array, index))
}
func (c checker) FoldMemberAccess(n *ast.MemberAccess, operand any) any {
	return c.register(n.ID(), operand)
}
func (c checker) FoldTupleAccess(n *ast.TupleAccess, operand any) any {
	return c.register(n.ID(), operand)
}
func (c checker) FoldIntrinsic(n *ast.Intrinsic, constArgs, args any) any {
	return c.register(n.ID(), c.Combine(constArgs, args))
}
func (c checker) FoldAsync(n *ast.Async, args any) any { return c.register(n.ID(), args) }
func (c checker) FoldUnit(n *ast.Unit) any             { return c.register(n.ID(), nil) }
func (c checker) FoldErr(n *ast.Err) any               { return c.register(n.ID(), nil) }

func (c checker) FoldDefinition(n *ast.Definition, value any) any { return c.register(n.ID(), value) }
func (c checker) FoldAssign(n *ast.Assign, value any) any         { return c.register(n.ID(), value) }
func (c checker) FoldBlock(n *ast.Block, stmts any) any           { return c.register(n.ID(), stmts) }
func (c checker) FoldConditional(n *ast.Conditional, cond, then, els any) any {
	return c.register(n.ID(), c.Combine(c.Combine(cond, then), els))
}
func (c checker) FoldIteration(n *ast.Iteration, start, stop, body any) any {
	return c.register(n.ID(), c.Combine(c.Combine(start, stop), body))
}
func (c checker) FoldReturn(n *ast.Return, value any) any { return c.register(n.ID(), value) }
func (c checker) FoldAssert(n *ast.Assert, args any) any  { return c.register(n.ID(), args) }
func (c checker) FoldExpressionStatement(n *ast.ExpressionStatement, value any) any {
	return c.register(n.ID(), value)
}
func (c checker) FoldConst(n *ast.Const, value any) any { return c.register(n.ID(), value) }
func (c checker) FoldEmpty(n *ast.Empty) any            { return c.register(n.ID(), nil) }

func (c checker) FoldFunction(n *ast.Function, body any) any  { return c.register(n.ID(), body) }
func (c checker) FoldProgram(n *ast.Program, funcs any) any   { return c.register(n.ID(), funcs) }

// CheckUniqueNodeIDs walks every function in p and reports the first
// NodeId reused across distinct nodes, or nil if all ids are unique.
// Structs, interfaces, and mappings carry no expressions and are
// checked by direct id comparison rather than a fold.
func CheckUniqueNodeIDs(p *ast.Program) error {
	c := checker{}
	set := newIDSet()
	set.add(p.ID())
	for _, imp := range p.Imports {
		set.add(imp.ID())
	}
	for _, s := range p.Structs {
		if err := checkComposite(set, s); err != nil {
			return err
		}
	}
	for _, r := range p.Records {
		if err := checkComposite(set, r); err != nil {
			return err
		}
	}
	for _, m := range p.Mappings {
		set.add(m.ID())
	}
	for _, i := range p.Interfaces {
		set.add(i.ID())
	}
	for _, g := range p.Globals {
		set.add(g.ID())
		fnSet, _ := reducer.FoldExpr(c, g.Value).(*idSet)
		if fnSet != nil {
			set.merge(fnSet)
			if set.hasDupe {
				return &DuplicateNodeIDError{ID: set.dupe}
			}
		}
	}
	for _, fn := range p.Functions {
		result, _ := reducer.FoldFunction(c, fn).(*idSet)
		set.merge(result)
		if set.hasDupe {
			return &DuplicateNodeIDError{ID: set.dupe}
		}
	}
	return nil
}

func checkComposite(set *idSet, c *ast.CompositeDecl) error {
	set.add(c.ID())
	if set.hasDupe {
		return &DuplicateNodeIDError{ID: set.dupe}
	}
	return nil
}
