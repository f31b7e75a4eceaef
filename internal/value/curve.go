package value

import (
	"math/big"

	"github.com/leo-lang/avmc/internal/ast"
)

// groupOp implements Group arithmetic over a toy short Weierstrass curve
// y^2 = x^3 + ax + b mod FieldModulus. This is deliberately not a real
// elliptic curve used anywhere in production: spec.md's Non-goals
// exclude implementing cryptographic primitives, so this exists only to
// give group↔coordinate intrinsics and group add/double something
// total and exact to operate over in tests (edwards_bls12.rs in the
// original source names the operation shape this mirrors: add, double,
// negate — not the curve parameters).
var curveA = big.NewInt(2)
var curveB = big.NewInt(3)

func groupOp(op ast.BinaryOp, l, r Group) (Value, error) {
	switch op {
	case ast.BinAdd:
		return groupAdd(l, r), nil
	default:
		return nil, errf(ErrUnsupportedOperation, "unsupported group operator")
	}
}

func groupAdd(p, q Group) Group {
	p_ := FieldModulus
	if p.X.Sign() == 0 && p.Y.Sign() == 0 {
		return q
	}
	if q.X.Sign() == 0 && q.Y.Sign() == 0 {
		return p
	}
	if p.X.Cmp(q.X) == 0 {
		// q = -p (this also covers doubling a point with y = 0)
		sumY := new(big.Int).Add(p.Y, q.Y)
		if sumY.Mod(sumY, p_).Sign() == 0 {
			return Group{X: big.NewInt(0), Y: big.NewInt(0)}
		}
	}

	var lambda *big.Int
	if p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0 {
		// doubling: lambda = (3x^2 + a) / (2y)
		num := new(big.Int).Mul(p.X, p.X)
		num.Mul(num, big.NewInt(3))
		num.Add(num, curveA)
		den := new(big.Int).Mul(big.NewInt(2), p.Y)
		den.ModInverse(den, p_)
		lambda = new(big.Int).Mul(num, den)
	} else {
		num := new(big.Int).Sub(q.Y, p.Y)
		den := new(big.Int).Sub(q.X, p.X)
		den.Mod(den, p_)
		den.ModInverse(den, p_)
		lambda = new(big.Int).Mul(num, den)
	}
	lambda.Mod(lambda, p_)

	x3 := new(big.Int).Mul(lambda, lambda)
	x3.Sub(x3, p.X)
	x3.Sub(x3, q.X)
	x3.Mod(x3, p_)
	if x3.Sign() < 0 {
		x3.Add(x3, p_)
	}

	y3 := new(big.Int).Sub(p.X, x3)
	y3.Mul(y3, lambda)
	y3.Sub(y3, p.Y)
	y3.Mod(y3, p_)
	if y3.Sign() < 0 {
		y3.Add(y3, p_)
	}
	return Group{X: x3, Y: y3}
}

// pointFromX recovers a Y coordinate for a given X on the toy curve, used
// by the Group↔coordinate intrinsics. Returns false if X is not on the
// curve.
func pointFromX(x *big.Int) (Group, bool) {
	rhs := new(big.Int).Exp(x, big.NewInt(3), FieldModulus)
	ax := new(big.Int).Mul(curveA, x)
	rhs.Add(rhs, ax)
	rhs.Add(rhs, curveB)
	rhs.Mod(rhs, FieldModulus)
	y := new(big.Int).ModSqrt(rhs, FieldModulus)
	if y == nil {
		return Group{}, false
	}
	return Group{X: new(big.Int).Set(x), Y: y}, true
}
