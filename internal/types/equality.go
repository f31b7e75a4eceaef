package types

// UserEqual implements spec.md §3's "User-equal" relation: Err compares
// equal to anything, arrays with an unknown length compare equal if
// their element types do, unresolved composites compare equal
// regardless of const-args, futures compare equal if either is
// inexplicit, and identifier-types match by name.
func UserEqual(a, b Type) bool {
	if _, ok := a.(Err); ok {
		return true
	}
	if _, ok := b.(Err); ok {
		return true
	}
	switch x := a.(type) {
	case Address:
		_, ok := b.(Address)
		return ok
	case Bool:
		_, ok := b.(Bool)
		return ok
	case Field:
		_, ok := b.(Field)
		return ok
	case Group:
		_, ok := b.(Group)
		return ok
	case Scalar:
		_, ok := b.(Scalar)
		return ok
	case Signature:
		_, ok := b.(Signature)
		return ok
	case String:
		_, ok := b.(String)
		return ok
	case Unit:
		_, ok := b.(Unit)
		return ok
	case Integer:
		y, ok := b.(Integer)
		return ok && x.Int == y.Int
	case Array:
		y, ok := b.(Array)
		if !ok {
			return false
		}
		if x.Length == nil || y.Length == nil {
			return UserEqual(x.Elt, y.Elt)
		}
		return *x.Length == *y.Length && UserEqual(x.Elt, y.Elt)
	case Tuple:
		y, ok := b.(Tuple)
		if !ok || len(x.Elts) != len(y.Elts) {
			return false
		}
		for i := range x.Elts {
			if !UserEqual(x.Elts[i], y.Elts[i]) {
				return false
			}
		}
		return true
	case Mapping:
		y, ok := b.(Mapping)
		return ok && UserEqual(x.Key, y.Key) && UserEqual(x.Val, y.Val)
	case Composite:
		y, ok := b.(Composite)
		if !ok || x.Path != y.Path {
			return false
		}
		if !x.IsResolved || !y.IsResolved {
			return true
		}
		return constArgsEqual(x.ConstArgs, y.ConstArgs)
	case Future:
		y, ok := b.(Future)
		if !ok {
			return false
		}
		if !x.IsExplicit || !y.IsExplicit {
			return true
		}
		if len(x.Inputs) != len(y.Inputs) {
			return false
		}
		for i := range x.Inputs {
			if !UserEqual(x.Inputs[i], y.Inputs[i]) {
				return false
			}
		}
		return true
	case Optional:
		y, ok := b.(Optional)
		return ok && UserEqual(x.Inner, y.Inner)
	case Identifier:
		switch y := b.(type) {
		case Identifier:
			return x.Name == y.Name
		case Composite:
			return x.Name == y.Path
		}
		return false
	case Numeric:
		_, ok := b.(Numeric)
		return ok
	}
	return false
}

func constArgsEqual(a, b []ConstArg) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Text != b[i].Text {
			return false
		}
	}
	return true
}

// flatten re-expresses [[T;a];b] as [T;(b,a)] for RelaxedFlatEqual,
// returning the innermost element type and the dimension list in
// outermost-first order, matching spec.md §3's description.
func flatten(t Type) (elt Type, dims []int, allKnown bool) {
	allKnown = true
	cur := t
	for {
		arr, ok := cur.(Array)
		if !ok {
			return cur, dims, allKnown
		}
		if arr.Length == nil {
			allKnown = false
			dims = append(dims, 0)
		} else {
			dims = append(dims, *arr.Length)
		}
		cur = arr.Elt
	}
}

// RelaxedFlatEqual is User-equal but flattens multi-dimensional arrays
// before comparing and ignores a composite's program of origin
// (spec.md §3: "Relaxed-flat-equal").
func RelaxedFlatEqual(a, b Type) bool {
	if ac, ok := a.(Composite); ok {
		if bc, ok := b.(Composite); ok {
			relaxed := Composite{Path: bc.Path, ConstArgs: bc.ConstArgs, IsResolved: bc.IsResolved}
			aRelaxed := Composite{Path: ac.Path, ConstArgs: ac.ConstArgs, IsResolved: ac.IsResolved}
			return UserEqual(aRelaxed, relaxed)
		}
	}
	aElt, aDims, aKnown := flatten(a)
	bElt, bDims, bKnown := flatten(b)
	if len(aDims) == 0 && len(bDims) == 0 {
		return UserEqual(a, b)
	}
	if len(aDims) != len(bDims) {
		return false
	}
	if aKnown && bKnown {
		for i := range aDims {
			if aDims[i] != bDims[i] {
				return false
			}
		}
	}
	return UserEqual(aElt, bElt)
}

// Coercible reports whether a value of type from may be used where a
// value of type to is expected (spec.md §3, "Coercion"): T coerces to
// Optional<T>, arrays coerce element-wise when lengths match or are
// unknown, everything else requires exact (user-)equality.
func Coercible(from, to Type) bool {
	if UserEqual(from, to) {
		return true
	}
	if opt, ok := to.(Optional); ok {
		return Coercible(from, opt.Inner) || UserEqual(from, opt.Inner)
	}
	if fa, ok := from.(Array); ok {
		if ta, ok := to.(Array); ok {
			if fa.Length != nil && ta.Length != nil && *fa.Length != *ta.Length {
				return false
			}
			return Coercible(fa.Elt, ta.Elt)
		}
	}
	return false
}
