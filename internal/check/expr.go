package check

import (
	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/diagnostics"
	"github.com/leo-lang/avmc/internal/symtab"
	"github.com/leo-lang/avmc/internal/types"
	"github.com/leo-lang/avmc/internal/value"
)

// checkExpr resolves e's type, optionally checked against expected
// (nil means "no expectation"), and records the result in the type
// table (spec.md §4.3: "Walks the AST... returns the resolved type,
// additionally writing it to the type table").
func (c *Checker) checkExpr(e ast.Expr, expected types.Type) types.Type {
	t := c.resolveExpr(e, expected)
	c.tt.Set(e.ID(), t)
	if expected != nil {
		if _, isErr := t.(types.Err); !isErr {
			if !types.Coercible(t, expected) {
				c.errorf(diagnostics.TYP007NotCoercible, e.Span(), "expected %s, found %s", expected, t)
			}
		}
	}
	return t
}

func (c *Checker) resolveExpr(e ast.Expr, expected types.Type) types.Type {
	switch n := e.(type) {
	case *ast.Path:
		return c.resolvePath(n)
	case *ast.Literal:
		return c.resolveLiteral(n, expected)
	case *ast.Unary:
		return c.checkUnary(n)
	case *ast.Binary:
		return c.checkBinary(n)
	case *ast.Ternary:
		c.checkExpr(n.Cond, types.Bool{})
		t1 := c.checkExpr(n.IfTrue, expected)
		t2 := c.checkExpr(n.IfFalse, expected)
		if !types.UserEqual(t1, t2) {
			c.errorf(diagnostics.TYP001OperandMismatch, n.Span(), "ternary branches have different types: %s vs %s", t1, t2)
			return types.Err{}
		}
		return t1
	case *ast.Cast:
		c.checkExpr(n.Inner, nil)
		return types.FromTypeExpr(n.Target)
	case *ast.Array:
		var elt types.Type = types.Err{}
		for i, el := range n.Elements {
			t := c.checkExpr(el, nil)
			if i == 0 {
				elt = t
			} else if !types.UserEqual(elt, t) {
				c.errorf(diagnostics.TYP001OperandMismatch, el.Span(), "array element type mismatch: %s vs %s", elt, t)
			}
		}
		length := len(n.Elements)
		return types.Array{Elt: elt, Length: &length}
	case *ast.Tuple:
		elts := make([]types.Type, len(n.Elements))
		for i, el := range n.Elements {
			elts[i] = c.checkExpr(el, nil)
		}
		return types.Tuple{Elts: elts}
	case *ast.Repeat:
		elt := c.checkExpr(n.Element, nil)
		length := 1
		for _, d := range n.Dimensions {
			c.checkExpr(d, nil)
			if lit, ok := d.(*ast.Literal); ok {
				if v, err := value.LiteralToValue(lit); err == nil {
					if n2, ok := value.AsInt(v); ok {
						length *= n2
					}
				}
			}
			elt = types.Array{Elt: elt, Length: nil}
		}
		return elt
	case *ast.Call:
		return c.checkCall(n)
	case *ast.Composite:
		return c.checkComposite(n)
	case *ast.ArrayAccess:
		return c.checkArrayAccess(n)
	case *ast.MemberAccess:
		operand := c.checkExpr(n.Operand, nil)
		return c.memberType(operand, n.Member, n.Span())
	case *ast.TupleAccess:
		operand := c.checkExpr(n.Operand, nil)
		tup, ok := operand.(types.Tuple)
		if !ok || n.Index >= len(tup.Elts) {
			if _, isErr := operand.(types.Err); !isErr {
				c.errorf(diagnostics.TYP002ArityMismatch, n.Span(), "tuple index %d out of range for %s", n.Index, operand)
			}
			return types.Err{}
		}
		return tup.Elts[n.Index]
	case *ast.Intrinsic:
		for _, a := range n.ConstArgs {
			c.checkExpr(a, nil)
		}
		for _, a := range n.Args {
			c.checkExpr(a, nil)
		}
		if expected != nil {
			return expected
		}
		return types.Err{}
	case *ast.Async:
		inputs := make([]types.Type, len(n.Args))
		for i, a := range n.Args {
			inputs[i] = c.checkExpr(a, nil)
		}
		if c.currentVariant != ast.VariantAsyncTransition {
			c.errorf(diagnostics.TYP001OperandMismatch, n.Span(), "async calls are only permitted inside async transitions")
		}
		return types.Future{Inputs: inputs, IsExplicit: false}
	case *ast.Unit:
		return types.Unit{}
	case *ast.Err:
		return types.Err{}
	default:
		return types.Err{}
	}
}

func (c *Checker) resolvePath(p *ast.Path) types.Type {
	if len(p.Segments) == 1 {
		if sym, ok := c.sym.LookupVariable(p.Segments[0]); ok {
			return sym.Type
		}
		if val, ok := c.sym.LookupConst(p.Segments[0]); ok {
			return c.checkExpr(val, nil)
		}
	}
	c.errorf(diagnostics.RES001UnknownSymbol, p.Span(), "unknown symbol %q", p.String())
	return types.Err{}
}

func (c *Checker) resolveLiteral(lit *ast.Literal, expected types.Type) types.Type {
	switch lit.Kind {
	case ast.LitBool:
		return types.Bool{}
	case ast.LitField:
		return types.Field{}
	case ast.LitGroup:
		return types.Group{}
	case ast.LitScalar:
		return types.Scalar{}
	case ast.LitAddress:
		return types.Address{}
	case ast.LitString:
		return types.String{}
	case ast.LitInteger:
		return types.Integer{Int: lit.IntType}
	case ast.LitUnsuffixed:
		if it, ok := expected.(types.Integer); ok {
			return it
		}
		return types.Numeric{}
	default:
		return types.Err{}
	}
}

// checkUnary type-checks the unary family: not requires bool and yields
// bool; to_x/y_coordinate requires group and yields field; every other
// operator accepts any integer, field, group, or scalar operand and
// yields the operand's type. Finer per-operator restrictions (such as
// negate on an unsigned integer, or square on an integer) are not
// checked here.
func (c *Checker) checkUnary(n *ast.Unary) types.Type {
	t := c.checkExpr(n.Inner, nil)
	if _, isErr := t.(types.Err); isErr {
		return types.Err{}
	}
	switch n.Op {
	case ast.UnaryNot:
		if _, ok := t.(types.Bool); !ok {
			c.errorf(diagnostics.TYP001OperandMismatch, n.Span(), "! requires bool, found %s", t)
		}
		return types.Bool{}
	case ast.UnaryToXCoordinate, ast.UnaryToYCoordinate:
		if _, ok := t.(types.Group); !ok {
			c.errorf(diagnostics.TYP001OperandMismatch, n.Span(), "to_x/y_coordinate requires group, found %s", t)
		}
		return types.Field{}
	default:
		switch t.(type) {
		case types.Integer, types.Field, types.Group, types.Scalar:
			return t
		default:
			c.errorf(diagnostics.TYP001OperandMismatch, n.Span(), "operator %v not supported on %s", n.Op, t)
			return types.Err{}
		}
	}
}

// checkBinary implements spec.md §4.3's "Arithmetic binary ops require
// both operands to be the same integer, field, group, or scalar type...
// comparisons produce Bool... shift operators require the RHS to be an
// unsigned integer".
func (c *Checker) checkBinary(n *ast.Binary) types.Type {
	switch n.Op {
	case ast.BinAnd, ast.BinOr:
		c.checkExpr(n.Left, types.Bool{})
		c.checkExpr(n.Right, types.Bool{})
		return types.Bool{}
	case ast.BinEq, ast.BinNeq:
		lt := c.checkExpr(n.Left, nil)
		rt := c.checkExpr(n.Right, nil)
		if !types.UserEqual(lt, rt) {
			c.errorf(diagnostics.TYP001OperandMismatch, n.Span(), "== / != operand type mismatch: %s vs %s", lt, rt)
		}
		return types.Bool{}
	case ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe:
		lt := c.checkExpr(n.Left, nil)
		rt := c.checkExpr(n.Right, nil)
		if !types.UserEqual(lt, rt) {
			c.errorf(diagnostics.TYP001OperandMismatch, n.Span(), "comparison operand type mismatch: %s vs %s", lt, rt)
		}
		return types.Bool{}
	case ast.BinShl, ast.BinShlWrapped, ast.BinShr, ast.BinShrWrapped:
		lt := c.checkExpr(n.Left, nil)
		rt := c.checkExpr(n.Right, nil)
		if it, ok := rt.(types.Integer); !ok || it.Int.Signed() {
			c.errorf(diagnostics.TYP001OperandMismatch, n.Span(), "shift amount must be an unsigned integer, found %s", rt)
		}
		return lt
	default:
		lt := c.checkExpr(n.Left, nil)
		rt := c.checkExpr(n.Right, nil)
		if !types.UserEqual(lt, rt) {
			c.errorf(diagnostics.TYP001OperandMismatch, n.Span(), "arithmetic operand type mismatch: %s vs %s", lt, rt)
			return types.Err{}
		}
		if isWrappedOp(n.Op) {
			if _, ok := lt.(types.Integer); !ok {
				c.errorf(diagnostics.TYP001OperandMismatch, n.Span(), "wrapping operators require an integer type, found %s", lt)
			}
		} else {
			switch lt.(type) {
			case types.Integer, types.Field, types.Group, types.Scalar:
			default:
				c.errorf(diagnostics.TYP001OperandMismatch, n.Span(), "operator %v not supported on %s", n.Op, lt)
			}
		}
		return lt
	}
}

func isWrappedOp(op ast.BinaryOp) bool {
	switch op {
	case ast.BinAddWrapped, ast.BinSubWrapped, ast.BinMulWrapped, ast.BinDivWrapped,
		ast.BinRemWrapped, ast.BinPowWrapped, ast.BinShlWrapped, ast.BinShrWrapped:
		return true
	}
	return false
}

// checkCall implements spec.md §4.3's Call rule: local-function arity
// and per-argument coercibility, a Future result for async callees, and
// otherwise the callee's declared output type as written: for a callee
// with const params, a composite output whose const-args are not yet
// literals stays unresolved (IsResolved false) until C8 resolves it.
func (c *Checker) checkCall(n *ast.Call) types.Type {
	for _, a := range n.ConstArgs {
		c.checkExpr(a, nil)
	}
	name, ok := calleeName(n.Callee)
	if !ok {
		for _, a := range n.Args {
			c.checkExpr(a, nil)
		}
		return types.Err{}
	}
	fn, ok := c.sym.LookupFunction(symtab.Location{Path: []string{name}})
	if !ok {
		c.errorf(diagnostics.RES001UnknownSymbol, n.Span(), "call to unknown function %q", name)
		for _, a := range n.Args {
			c.checkExpr(a, nil)
		}
		return types.Err{}
	}
	if len(n.Args) != len(fn.Inputs) {
		c.errorf(diagnostics.TYP002ArityMismatch, n.Span(), "%s expects %d arguments, found %d", name, len(fn.Inputs), len(n.Args))
	}
	for i, a := range n.Args {
		var expected types.Type
		if i < len(fn.Inputs) {
			expected = types.FromTypeExpr(fn.Inputs[i].Type)
		}
		c.checkExpr(a, expected)
	}
	if fn.Variant == ast.VariantAsyncTransition || fn.Variant == ast.VariantAsyncFunction {
		return types.Future{Inputs: nil, IsExplicit: false}
	}
	out := types.FromTypeExpr(fn.OutputType)
	if len(fn.ConstParams) > 0 {
		if comp, ok := out.(types.Composite); ok && !comp.IsResolved {
			return out
		}
	}
	return out
}

func calleeName(e ast.Expr) (string, bool) {
	p, ok := e.(*ast.Path)
	if !ok || len(p.Segments) == 0 {
		return "", false
	}
	return p.Segments[len(p.Segments)-1], true
}

// checkComposite implements spec.md §4.3's struct/record initializer
// rule: exactly the declared field set, records require `owner`.
func (c *Checker) checkComposite(n *ast.Composite) types.Type {
	name := n.Type.String()
	decl, isRecord := c.sym.LookupRecord(symtab.Location{Path: []string{name}})
	if !isRecord {
		decl, _ = c.sym.LookupStruct(symtab.Location{Path: []string{name}})
	}
	if decl == nil {
		c.errorf(diagnostics.RES001UnknownSymbol, n.Span(), "unknown composite type %q", name)
		for _, f := range n.Fields {
			if f.Value != nil {
				c.checkExpr(f.Value, nil)
			}
		}
		return types.Err{}
	}
	declared := make(map[string]ast.TypeExpr, len(decl.Fields))
	for _, f := range decl.Fields {
		declared[f.Name] = f.Type
	}
	seen := make(map[string]bool, len(n.Fields))
	for _, f := range n.Fields {
		seen[f.Name] = true
		ft, ok := declared[f.Name]
		if !ok {
			c.errorf(diagnostics.TYP005BadFieldSet, n.Span(), "%q has no field %q", name, f.Name)
			continue
		}
		if f.Value != nil {
			c.checkExpr(f.Value, types.FromTypeExpr(ft))
		}
	}
	for fname := range declared {
		if !seen[fname] {
			c.errorf(diagnostics.TYP005BadFieldSet, n.Span(), "missing field %q in initializer for %q", fname, name)
		}
	}
	if decl.Kind == ast.KindRecord {
		if _, ok := declared["owner"]; !ok {
			c.errorf(diagnostics.TYP005BadFieldSet, n.Span(), "record %q missing required `owner: address` field", name)
		}
	}
	return types.Composite{Path: name, IsResolved: true}
}

func (c *Checker) checkArrayAccess(n *ast.ArrayAccess) types.Type {
	arrT := c.checkExpr(n.Array, nil)
	idxT := c.checkExpr(n.Index, nil)
	if it, ok := idxT.(types.Integer); !ok || it.Int.Signed() {
		if _, isErr := idxT.(types.Err); !isErr {
			c.errorf(diagnostics.TYP001OperandMismatch, n.Span(), "array index must be an unsigned integer, found %s", idxT)
		}
	}
	arr, ok := arrT.(types.Array)
	if !ok {
		if _, isErr := arrT.(types.Err); !isErr {
			c.errorf(diagnostics.TYP001OperandMismatch, n.Span(), "cannot index non-array type %s", arrT)
		}
		return types.Err{}
	}
	if arr.Length != nil {
		if lit, ok := n.Index.(*ast.Literal); ok {
			if v, err := value.LiteralToValue(lit); err == nil {
				if idx, ok := value.AsInt(v); ok && idx >= *arr.Length && !c.diag.HasErrors() {
					// spec.md §4.4: "a statically known index >= length emits
					// an error only if no prior errors exist, to avoid
					// cascades during loop-unroll debugging".
					c.errorf(diagnostics.VAL004IndexOutOfRange, n.Span(), "index %d out of range for array of length %d", idx, *arr.Length)
				}
			}
		}
	}
	return arr.Elt
}
