package value

import (
	"math/big"

	"github.com/leo-lang/avmc/internal/ast"
)

// Cast converts v to the given target type, matching spec.md §4.3's
// "Cast is permitted between the enumerated primitive types" and §4.4's
// "bounds-out-of-range for casts" failure mode.
func Cast(v Value, target ast.TypeExpr) (Value, error) {
	switch t := target.(type) {
	case ast.IntegerType:
		return castToInt(v, t.Int)
	case ast.FieldType:
		return castToField(v)
	case ast.ScalarType:
		return castToScalar(v)
	case ast.BoolType:
		b, ok := v.(Bool)
		if !ok {
			return nil, errf(ErrUnsupportedOperation, "cannot cast to bool")
		}
		return b, nil
	case ast.GroupType:
		g, ok := v.(Group)
		if !ok {
			return nil, errf(ErrUnsupportedOperation, "cannot cast to group")
		}
		return g, nil
	default:
		return nil, errf(ErrUnsupportedOperation, "unsupported cast target %s", target)
	}
}

func magnitudeOf(v Value) (*big.Int, bool) {
	switch x := v.(type) {
	case Int:
		return x.Mag, true
	case Field:
		return x.Mag, true
	case Scalar:
		return x.Mag, true
	case Bool:
		if x.V {
			return big.NewInt(1), true
		}
		return big.NewInt(0), true
	}
	return nil, false
}

func castToInt(v Value, target ast.IntType) (Value, error) {
	mag, ok := magnitudeOf(v)
	if !ok {
		return nil, errf(ErrUnsupportedOperation, "cannot cast operand to integer")
	}
	if !inRange(target, mag) {
		return nil, errf(ErrCastOutOfRange, "%s does not fit in %s", mag, target)
	}
	return Int{Type: target, Mag: new(big.Int).Set(mag)}, nil
}

func castToField(v Value) (Value, error) {
	mag, ok := magnitudeOf(v)
	if !ok {
		return nil, errf(ErrUnsupportedOperation, "cannot cast operand to field")
	}
	return reduceField(mag), nil
}

func castToScalar(v Value) (Value, error) {
	mag, ok := magnitudeOf(v)
	if !ok {
		return nil, errf(ErrUnsupportedOperation, "cannot cast operand to scalar")
	}
	m := new(big.Int).Mod(mag, FieldModulus)
	if m.Sign() < 0 {
		m.Add(m, FieldModulus)
	}
	return Scalar{Mag: m}, nil
}
