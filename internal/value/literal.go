package value

import (
	"fmt"
	"math/big"

	"github.com/leo-lang/avmc/internal/ast"
)

// ValueToLiteral renders v as the canonical ast.Literal a reconstructing
// reducer would splice back into the AST after constant folding. It is
// the inverse of LiteralToValue for every non-Future, non-aggregate
// variant (Testable Property 9); aggregates round-trip through Array,
// Tuple, and Composite expression nodes instead of a single Literal, so
// ValueToLiteral panics on them — callers reconstructing an aggregate
// constant build the aggregate expression node directly from its parts.
func ValueToLiteral(v Value, span ast.Span) *ast.Literal {
	lit := &ast.Literal{Base: ast.Base{Sp: span}}
	switch x := v.(type) {
	case Bool:
		lit.Kind = ast.LitBool
		if x.V {
			lit.Text = "true"
		} else {
			lit.Text = "false"
		}
	case Int:
		lit.Kind = ast.LitInteger
		lit.IntType = x.Type
		lit.Text = x.Mag.String() + x.Type.String()
	case Field:
		lit.Kind = ast.LitField
		lit.Text = x.Mag.String() + "field"
	case Scalar:
		lit.Kind = ast.LitScalar
		lit.Text = x.Mag.String() + "scalar"
	case Group:
		lit.Kind = ast.LitGroup
		lit.Text = fmt.Sprintf("%sgroup", x.X.String())
	case Address:
		lit.Kind = ast.LitAddress
		lit.Text = x.Text
	case String:
		lit.Kind = ast.LitString
		lit.Text = fmt.Sprintf("%q", x.Text)
	default:
		panic(fmt.Sprintf("value: %T has no single-literal representation", v))
	}
	return lit
}

// LiteralToValue evaluates a literal expression node to its Value,
// seeding constant propagation (spec.md §4.4: "also called from ... the
// reducer on literal expressions, to seed the propagation").
func LiteralToValue(lit *ast.Literal) (Value, error) {
	switch lit.Kind {
	case ast.LitBool:
		return Bool{V: lit.Text == "true"}, nil
	case ast.LitInteger:
		mag, ok := parseMagnitude(trimSuffix(lit.Text, lit.IntType.String()))
		if !ok {
			return nil, errf(ErrUnsupportedOperation, "malformed integer literal %q", lit.Text)
		}
		if !inRange(lit.IntType, mag) {
			return nil, errf(ErrCastOutOfRange, "%s does not fit in %s", mag, lit.IntType)
		}
		return Int{Type: lit.IntType, Mag: mag}, nil
	case ast.LitField:
		mag, ok := parseMagnitude(trimSuffix(lit.Text, "field"))
		if !ok {
			return nil, errf(ErrUnsupportedOperation, "malformed field literal %q", lit.Text)
		}
		return reduceField(mag), nil
	case ast.LitScalar:
		mag, ok := parseMagnitude(trimSuffix(lit.Text, "scalar"))
		if !ok {
			return nil, errf(ErrUnsupportedOperation, "malformed scalar literal %q", lit.Text)
		}
		m := new(big.Int).Mod(mag, FieldModulus)
		return Scalar{Mag: m}, nil
	case ast.LitGroup:
		mag, ok := parseMagnitude(trimSuffix(lit.Text, "group"))
		if !ok {
			return nil, errf(ErrUnsupportedOperation, "malformed group literal %q", lit.Text)
		}
		g, onCurve := pointFromX(new(big.Int).Mod(mag, FieldModulus))
		if !onCurve {
			return nil, errf(ErrUnsupportedOperation, "%s is not a valid group x-coordinate", mag)
		}
		return g, nil
	case ast.LitAddress:
		return Address{Text: lit.Text}, nil
	case ast.LitString:
		return String{Text: unquote(lit.Text)}, nil
	case ast.LitUnsuffixed:
		mag, ok := parseMagnitude(lit.Text)
		if !ok {
			return nil, errf(ErrUnsupportedOperation, "malformed unsuffixed literal %q", lit.Text)
		}
		return Int{Type: ast.U32, Mag: mag}, nil
	}
	return nil, errf(ErrUnsupportedOperation, "unknown literal kind")
}

func trimSuffix(s, suffix string) string {
	if len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix {
		return s[:len(s)-len(suffix)]
	}
	return s
}

func parseMagnitude(s string) (*big.Int, bool) {
	v, ok := new(big.Int).SetString(s, 10)
	return v, ok
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
