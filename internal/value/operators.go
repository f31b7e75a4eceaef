package value

import (
	"math/big"

	"github.com/leo-lang/avmc/internal/ast"
)

// intRange returns [min, max] inclusive for t's width/signedness.
func intRange(t ast.IntType) (min, max *big.Int) {
	width := t.BitWidth()
	if t.Signed() {
		max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width-1)), big.NewInt(1))
		min = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(width-1)))
		return min, max
	}
	max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
	return big.NewInt(0), max
}

func inRange(t ast.IntType, v *big.Int) bool {
	min, max := intRange(t)
	return v.Cmp(min) >= 0 && v.Cmp(max) <= 0
}

// wrapInt reduces v into t's representable range using two's-complement
// wraparound semantics, matching the VM's wrapping-operator behavior
// (spec.md §9: "Integer overflow semantics must match the VM exactly").
func wrapInt(t ast.IntType, v *big.Int) *big.Int {
	width := uint(t.BitWidth())
	mod := new(big.Int).Lsh(big.NewInt(1), width)
	r := new(big.Int).Mod(v, mod)
	if r.Sign() < 0 {
		r.Add(r, mod)
	}
	if t.Signed() {
		half := new(big.Int).Lsh(big.NewInt(1), width-1)
		if r.Cmp(half) >= 0 {
			r.Sub(r, mod)
		}
	}
	return r
}

func sameIntType(a, b Value) (ast.IntType, Int, Int, bool) {
	ai, ok1 := a.(Int)
	bi, ok2 := b.(Int)
	if !ok1 || !ok2 || ai.Type != bi.Type {
		return 0, Int{}, Int{}, false
	}
	return ai.Type, ai, bi, true
}

// Binary implements every binary operator as a total function. Wrapping
// variants never fail on overflow (they reduce modulo the width
// instead); their non-wrapping counterparts report ErrOverflow.
func Binary(op ast.BinaryOp, l, r Value) (Value, error) {
	switch op {
	case ast.BinAnd:
		lb, lok := l.(Bool)
		rb, rok := r.(Bool)
		if !lok || !rok {
			return nil, errf(ErrUnsupportedOperation, "&& requires bool operands")
		}
		return Bool{lb.V && rb.V}, nil
	case ast.BinOr:
		lb, lok := l.(Bool)
		rb, rok := r.(Bool)
		if !lok || !rok {
			return nil, errf(ErrUnsupportedOperation, "|| requires bool operands")
		}
		return Bool{lb.V || rb.V}, nil
	case ast.BinEq:
		return Bool{Equal(l, r)}, nil
	case ast.BinNeq:
		return Bool{!Equal(l, r)}, nil
	}

	if isShift(op) {
		return shiftOp(op, l, r)
	}

	if lf, lok := l.(Field); lok {
		rf, rok := r.(Field)
		if !rok {
			return nil, errf(ErrUnsupportedOperation, "field op requires two field operands")
		}
		return fieldOp(op, lf, rf)
	}
	if lg, lok := l.(Group); lok {
		rg, rok := r.(Group)
		if !rok {
			return nil, errf(ErrUnsupportedOperation, "group op requires two group operands")
		}
		return groupOp(op, lg, rg)
	}
	if ls, lok := l.(Scalar); lok {
		rs, rok := r.(Scalar)
		if !rok {
			return nil, errf(ErrUnsupportedOperation, "scalar op requires two scalar operands")
		}
		return scalarOp(op, ls, rs)
	}

	t, li, ri, ok := sameIntType(l, r)
	if !ok {
		if isComparison(op) {
			return compareMismatched(l, r)
		}
		return nil, errf(ErrUnsupportedOperation, "binary op requires matching integer types")
	}
	return intOp(op, t, li, ri)
}

func isShift(op ast.BinaryOp) bool {
	switch op {
	case ast.BinShl, ast.BinShlWrapped, ast.BinShr, ast.BinShrWrapped:
		return true
	}
	return false
}

func isComparison(op ast.BinaryOp) bool {
	switch op {
	case ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe:
		return true
	}
	return false
}

func compareMismatched(l, r Value) (Value, error) {
	return nil, errf(ErrUnsupportedOperation, "comparison requires matching operand types")
}

// shiftOp requires the RHS to be an unsigned integer (spec.md §4.3).
func shiftOp(op ast.BinaryOp, l, r Value) (Value, error) {
	li, lok := l.(Int)
	ri, rok := r.(Int)
	if !lok || !rok || ri.Signed() {
		return nil, errf(ErrUnsupportedOperation, "shift requires integer LHS and unsigned-integer RHS")
	}
	width := big.NewInt(int64(li.Type.BitWidth()))
	wrapping := op == ast.BinShlWrapped || op == ast.BinShrWrapped
	if ri.Mag.Cmp(width) >= 0 {
		if !wrapping {
			return nil, errf(ErrShiftOverflow, "shift amount %s exceeds width %d", ri.Mag, li.Type.BitWidth())
		}
		// wrapping shift: reduce the shift amount modulo the width
		ri = Int{Type: ri.Type, Mag: new(big.Int).Mod(ri.Mag, width)}
	}
	shift := uint(ri.Mag.Uint64())
	var result *big.Int
	switch op {
	case ast.BinShl, ast.BinShlWrapped:
		result = new(big.Int).Lsh(li.Mag, shift)
	case ast.BinShr, ast.BinShrWrapped:
		result = new(big.Int).Rsh(li.Mag, shift)
	}
	if wrapping {
		return Int{Type: li.Type, Mag: wrapInt(li.Type, result)}, nil
	}
	if !inRange(li.Type, result) {
		return nil, errf(ErrOverflow, "%s << %d overflows %s", li.Mag, shift, li.Type)
	}
	return Int{Type: li.Type, Mag: result}, nil
}

func intOp(op ast.BinaryOp, t ast.IntType, l, r Int) (Value, error) {
	wrapping := false
	var raw func() *big.Int
	switch op {
	case ast.BinAdd, ast.BinAddWrapped:
		wrapping = op == ast.BinAddWrapped
		raw = func() *big.Int { return new(big.Int).Add(l.Mag, r.Mag) }
	case ast.BinSub, ast.BinSubWrapped:
		wrapping = op == ast.BinSubWrapped
		raw = func() *big.Int { return new(big.Int).Sub(l.Mag, r.Mag) }
	case ast.BinMul, ast.BinMulWrapped:
		wrapping = op == ast.BinMulWrapped
		raw = func() *big.Int { return new(big.Int).Mul(l.Mag, r.Mag) }
	case ast.BinDiv, ast.BinDivWrapped:
		wrapping = op == ast.BinDivWrapped
		if r.Mag.Sign() == 0 {
			return nil, errf(ErrDivideByZero, "division by zero")
		}
		raw = func() *big.Int { return new(big.Int).Quo(l.Mag, r.Mag) }
	case ast.BinRem, ast.BinRemWrapped:
		wrapping = op == ast.BinRemWrapped
		if r.Mag.Sign() == 0 {
			return nil, errf(ErrDivideByZero, "remainder by zero")
		}
		raw = func() *big.Int { return new(big.Int).Rem(l.Mag, r.Mag) }
	case ast.BinPow, ast.BinPowWrapped:
		wrapping = op == ast.BinPowWrapped
		if r.Mag.Sign() < 0 {
			return nil, errf(ErrUnsupportedOperation, "negative exponent")
		}
		raw = func() *big.Int { return new(big.Int).Exp(l.Mag, r.Mag, nil) }
	case ast.BinBitAnd:
		return Int{Type: t, Mag: new(big.Int).And(l.Mag, r.Mag)}, nil
	case ast.BinBitOr:
		return Int{Type: t, Mag: new(big.Int).Or(l.Mag, r.Mag)}, nil
	case ast.BinBitXor:
		return Int{Type: t, Mag: new(big.Int).Xor(l.Mag, r.Mag)}, nil
	case ast.BinLt:
		return Bool{l.Mag.Cmp(r.Mag) < 0}, nil
	case ast.BinLe:
		return Bool{l.Mag.Cmp(r.Mag) <= 0}, nil
	case ast.BinGt:
		return Bool{l.Mag.Cmp(r.Mag) > 0}, nil
	case ast.BinGe:
		return Bool{l.Mag.Cmp(r.Mag) >= 0}, nil
	default:
		return nil, errf(ErrUnsupportedOperation, "unsupported integer operator")
	}

	result := raw()
	if wrapping {
		return Int{Type: t, Mag: wrapInt(t, result)}, nil
	}
	if !inRange(t, result) {
		return nil, errf(ErrOverflow, "%s overflows %s", result, t)
	}
	return Int{Type: t, Mag: result}, nil
}

func fieldOp(op ast.BinaryOp, l, r Field) (Value, error) {
	switch op {
	case ast.BinAdd:
		return reduceField(new(big.Int).Add(l.Mag, r.Mag)), nil
	case ast.BinSub:
		return reduceField(new(big.Int).Sub(l.Mag, r.Mag)), nil
	case ast.BinMul:
		return reduceField(new(big.Int).Mul(l.Mag, r.Mag)), nil
	case ast.BinDiv:
		if r.Mag.Sign() == 0 {
			return nil, errf(ErrDivideByZero, "field division by zero")
		}
		inv := new(big.Int).ModInverse(r.Mag, FieldModulus)
		return reduceField(new(big.Int).Mul(l.Mag, inv)), nil
	case ast.BinPow:
		return reduceField(new(big.Int).Exp(l.Mag, r.Mag, FieldModulus)), nil
	default:
		return nil, errf(ErrUnsupportedOperation, "unsupported field operator")
	}
}

func scalarOp(op ast.BinaryOp, l, r Scalar) (Value, error) {
	switch op {
	case ast.BinAdd:
		return Scalar{Mag: new(big.Int).Mod(new(big.Int).Add(l.Mag, r.Mag), FieldModulus)}, nil
	case ast.BinSub:
		v := new(big.Int).Mod(new(big.Int).Sub(l.Mag, r.Mag), FieldModulus)
		if v.Sign() < 0 {
			v.Add(v, FieldModulus)
		}
		return Scalar{Mag: v}, nil
	default:
		return nil, errf(ErrUnsupportedOperation, "unsupported scalar operator")
	}
}

// Unary implements every unary operator as a total function.
func Unary(op ast.UnaryOp, v Value) (Value, error) {
	switch op {
	case ast.UnaryNot:
		b, ok := v.(Bool)
		if !ok {
			return nil, errf(ErrUnsupportedOperation, "! requires bool")
		}
		return Bool{!b.V}, nil
	case ast.UnaryNegate:
		switch x := v.(type) {
		case Int:
			if !x.Signed() {
				return nil, errf(ErrUnsupportedOperation, "negate requires a signed integer")
			}
			neg := new(big.Int).Neg(x.Mag)
			if !inRange(x.Type, neg) {
				return nil, errf(ErrOverflow, "negation of %s overflows %s", x.Mag, x.Type)
			}
			return Int{Type: x.Type, Mag: neg}, nil
		case Field:
			return reduceField(new(big.Int).Neg(x.Mag)), nil
		case Group:
			return Group{X: new(big.Int).Set(x.X), Y: new(big.Int).Mod(new(big.Int).Neg(x.Y), FieldModulus)}, nil
		}
		return nil, errf(ErrUnsupportedOperation, "negate unsupported for operand")
	case ast.UnarySquare:
		f, ok := v.(Field)
		if !ok {
			return nil, errf(ErrUnsupportedOperation, "square requires field")
		}
		return reduceField(new(big.Int).Mul(f.Mag, f.Mag)), nil
	case ast.UnaryDouble:
		g, ok := v.(Group)
		if ok {
			return groupOp(ast.BinAdd, g, g)
		}
		f, ok := v.(Field)
		if !ok {
			return nil, errf(ErrUnsupportedOperation, "double requires field or group")
		}
		return reduceField(new(big.Int).Mul(f.Mag, big.NewInt(2))), nil
	case ast.UnaryAbs, ast.UnaryAbsWrapped:
		i, ok := v.(Int)
		if !ok || !i.Signed() {
			return nil, errf(ErrUnsupportedOperation, "abs requires a signed integer")
		}
		mag := new(big.Int).Abs(i.Mag)
		if op == ast.UnaryAbsWrapped {
			return Int{Type: i.Type, Mag: wrapInt(i.Type, mag)}, nil
		}
		if !inRange(i.Type, mag) {
			return nil, errf(ErrOverflow, "abs(%s) overflows %s", i.Mag, i.Type)
		}
		return Int{Type: i.Type, Mag: mag}, nil
	case ast.UnaryToXCoordinate:
		g, ok := v.(Group)
		if !ok {
			return nil, errf(ErrUnsupportedOperation, "to_x_coordinate requires group")
		}
		return Field{Mag: new(big.Int).Set(g.X)}, nil
	case ast.UnaryToYCoordinate:
		g, ok := v.(Group)
		if !ok {
			return nil, errf(ErrUnsupportedOperation, "to_y_coordinate requires group")
		}
		return Field{Mag: new(big.Int).Set(g.Y)}, nil
	case ast.UnaryInverse:
		f, ok := v.(Field)
		if !ok {
			return nil, errf(ErrUnsupportedOperation, "inverse requires field")
		}
		if f.Mag.Sign() == 0 {
			return nil, errf(ErrDivideByZero, "inverse of zero")
		}
		return Field{Mag: new(big.Int).ModInverse(f.Mag, FieldModulus)}, nil
	case ast.UnarySquareRoot:
		f, ok := v.(Field)
		if !ok {
			return nil, errf(ErrUnsupportedOperation, "square_root requires field")
		}
		root := new(big.Int).ModSqrt(f.Mag, FieldModulus)
		if root == nil {
			return nil, errf(ErrUnsupportedOperation, "%s has no square root mod the field", f.Mag)
		}
		return Field{Mag: root}, nil
	}
	return nil, errf(ErrUnsupportedOperation, "unknown unary operator")
}

// Equal implements structural equality across every Value variant.
func Equal(l, r Value) bool {
	switch lv := l.(type) {
	case Bool:
		rv, ok := r.(Bool)
		return ok && lv.V == rv.V
	case Int:
		rv, ok := r.(Int)
		return ok && lv.Type == rv.Type && lv.Mag.Cmp(rv.Mag) == 0
	case Field:
		rv, ok := r.(Field)
		return ok && lv.Mag.Cmp(rv.Mag) == 0
	case Scalar:
		rv, ok := r.(Scalar)
		return ok && lv.Mag.Cmp(rv.Mag) == 0
	case Group:
		rv, ok := r.(Group)
		return ok && lv.X.Cmp(rv.X) == 0 && lv.Y.Cmp(rv.Y) == 0
	case Address:
		rv, ok := r.(Address)
		return ok && lv.Text == rv.Text
	case String:
		rv, ok := r.(String)
		return ok && lv.Text == rv.Text
	case Unit:
		_, ok := r.(Unit)
		return ok
	case Array:
		rv, ok := r.(Array)
		if !ok || len(lv.Elements) != len(rv.Elements) {
			return false
		}
		for i := range lv.Elements {
			if !Equal(lv.Elements[i], rv.Elements[i]) {
				return false
			}
		}
		return true
	case Tuple:
		rv, ok := r.(Tuple)
		if !ok || len(lv.Elements) != len(rv.Elements) {
			return false
		}
		for i := range lv.Elements {
			if !Equal(lv.Elements[i], rv.Elements[i]) {
				return false
			}
		}
		return true
	case Struct:
		rv, ok := r.(Struct)
		if !ok || len(lv.FieldOrder) != len(rv.FieldOrder) {
			return false
		}
		for _, name := range lv.FieldOrder {
			rf, ok := rv.Fields[name]
			if !ok || !Equal(lv.Fields[name], rf) {
				return false
			}
		}
		return true
	}
	return false
}
