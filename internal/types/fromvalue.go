package types

import "github.com/leo-lang/avmc/internal/value"

// FromValue returns the static Type of a folded compile-time Value,
// used by constant propagation (C8) to refresh the
// type table after a path is replaced by its literal (spec.md §4.7:
// "replace the path by the corresponding literal (and update the type
// table)").
func FromValue(v value.Value) Type {
	switch x := v.(type) {
	case value.Bool:
		return Bool{}
	case value.Int:
		return Integer{Int: x.Type}
	case value.Field:
		return Field{}
	case value.Scalar:
		return Scalar{}
	case value.Group:
		return Group{}
	case value.Address:
		return Address{}
	case value.String:
		return String{}
	case value.Unit:
		return Unit{}
	case value.Array:
		var elt Type = Err{}
		if len(x.Elements) > 0 {
			elt = FromValue(x.Elements[0])
		}
		n := len(x.Elements)
		return Array{Elt: elt, Length: &n}
	case value.Tuple:
		elts := make([]Type, len(x.Elements))
		for i, e := range x.Elements {
			elts[i] = FromValue(e)
		}
		return Tuple{Elts: elts}
	case value.Struct:
		return Composite{Path: x.TypeName, IsResolved: true}
	default:
		return Err{}
	}
}
