package types

import (
	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/value"
)

// FromTypeExpr resolves a syntactic ast.TypeExpr into a semantic Type.
// Array lengths and composite const-args are resolved eagerly when they
// are literal constants; when they are not (a bare const-parameter name
// before monomorphization, C8) the length is left nil / the composite
// left IsResolved=false, matching spec.md §3's "unresolved composites
// compare user-equal regardless of const-args" and Array's unknown-
// length comparison rule.
func FromTypeExpr(te ast.TypeExpr) Type {
	switch t := te.(type) {
	case ast.AddressType:
		return Address{}
	case ast.BoolType:
		return Bool{}
	case ast.FieldType:
		return Field{}
	case ast.GroupType:
		return Group{}
	case ast.ScalarType:
		return Scalar{}
	case ast.SignatureType:
		return Signature{}
	case ast.StringType:
		return String{}
	case ast.UnitType:
		return Unit{}
	case ast.IntegerType:
		return Integer{Int: t.Int}
	case ast.ArrayType:
		elt := FromTypeExpr(t.Elt)
		if lit, ok := t.Length.(*ast.Literal); ok {
			if v, err := value.LiteralToValue(lit); err == nil {
				if n, ok := value.AsInt(v); ok {
					length := n
					return Array{Elt: elt, Length: &length}
				}
			}
		}
		return Array{Elt: elt, Length: nil}
	case ast.TupleType:
		elts := make([]Type, len(t.Elts))
		for i, e := range t.Elts {
			elts[i] = FromTypeExpr(e)
		}
		return Tuple{Elts: elts}
	case ast.MappingType:
		return Mapping{Key: FromTypeExpr(t.Key), Val: FromTypeExpr(t.Val)}
	case ast.CompositeType:
		args := make([]ConstArg, len(t.ConstArgs))
		resolved := true
		for i, a := range t.ConstArgs {
			lit, ok := a.(*ast.Literal)
			if !ok {
				resolved = false
				args[i] = ConstArg{Text: a.String()}
				continue
			}
			args[i] = ConstArg{Text: lit.Text}
		}
		if len(t.ConstArgs) == 0 {
			resolved = true
		}
		return Composite{Program: t.Program, Path: t.Path, ConstArgs: args, IsResolved: resolved}
	case ast.FutureType:
		inputs := make([]Type, len(t.Inputs))
		for i, e := range t.Inputs {
			inputs[i] = FromTypeExpr(e)
		}
		return Future{Inputs: inputs, IsExplicit: t.IsExplicit}
	case ast.OptionalType:
		return Optional{Inner: FromTypeExpr(t.Inner)}
	case ast.IdentifierType:
		return Identifier{Name: t.Name}
	case ast.NumericType:
		return Numeric{}
	case ast.ErrType:
		return Err{}
	default:
		return Err{}
	}
}
