// Package value implements the compile-time Value evaluator (C5): a pure
// interpreter over a Value sum type, with total operator implementations
// that return a typed error instead of panicking (spec.md §4.4, §9).
package value

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/leo-lang/avmc/internal/ast"
)

// Value is the sum type spec.md §3 names: Bool, U8..U128, I8..I128,
// Field, Group, Scalar, Address, String, Array, Tuple, Struct, Unit,
// Future.
type Value interface {
	fmt.Stringer
	valueNode()
}

// Bool is a boolean value.
type Bool struct{ V bool }

func (Bool) valueNode() {}
func (b Bool) String() string {
	if b.V {
		return "true"
	}
	return "false"
}

// Int is every integer width/signedness, i8..i128 and u8..u128, stored as
// an arbitrary-precision magnitude so overflow detection is exact rather
// than relying on Go's fixed-width wraparound.
type Int struct {
	Type ast.IntType
	Mag  *big.Int
}

func (Int) valueNode() {}
func (i Int) String() string { return fmt.Sprintf("%s%s", i.Mag.String(), i.Type) }

// NewInt builds an Int of the given width holding a copy of mag (no
// range check or wraparound is performed here — wraparound is the job
// of the wrapping operator variants in operators.go).
func NewInt(t ast.IntType, mag *big.Int) Int {
	return Int{Type: t, Mag: new(big.Int).Set(mag)}
}

// Field is a finite-field element, reduced modulo the scalar field
// order used for constant folding (a placeholder prime distinct from
// any real curve's order — spec.md's Non-goals exclude implementing
// real cryptographic primitives).
type Field struct{ Mag *big.Int }

func (Field) valueNode() {}
func (f Field) String() string { return f.Mag.String() + "field" }

// FieldModulus is the toy prime used for Field/Scalar reduction in this
// core. A real backend would substitute the actual BLS12-377 scalar
// field order; spec.md's Non-goals place real curve arithmetic out of
// scope.
var FieldModulus = func() *big.Int {
	// A 61-bit prime, large enough to exercise overflow/reduction logic
	// without the cost of a cryptographically sized modulus.
	m, _ := new(big.Int).SetString("2305843009213693951", 10) // 2^61 - 1 (Mersenne prime)
	return m
}()

func reduceField(mag *big.Int) Field {
	v := new(big.Int).Mod(mag, FieldModulus)
	if v.Sign() < 0 {
		v.Add(v, FieldModulus)
	}
	return Field{Mag: v}
}

// Scalar is a scalar-field element; reduced modulo the same toy modulus
// as Field in this core (the real VM uses a distinct scalar-field order).
type Scalar struct{ Mag *big.Int }

func (Scalar) valueNode() {}
func (s Scalar) String() string { return s.Mag.String() + "scalar" }

// Group is an affine point on the toy curve defined in curve.go.
type Group struct{ X, Y *big.Int }

func (Group) valueNode() {}
func (g Group) String() string { return g.X.String() + "group" }

// Address is a bech32m-shaped address value. This core treats it as an
// opaque, equality-comparable string (spec.md excludes real signature
// verification semantics from the folding core).
type Address struct{ Text string }

func (Address) valueNode() {}
func (a Address) String() string { return a.Text }

// String is a UTF-8 string literal value.
type String struct{ Text string }

func (String) valueNode() {}
func (s String) String() string { return fmt.Sprintf("%q", s.Text) }

// Array is a fixed-length homogeneous value array.
type Array struct{ Elements []Value }

func (Array) valueNode() {}
func (a Array) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Tuple is a fixed-arity heterogeneous value tuple.
type Tuple struct{ Elements []Value }

func (Tuple) valueNode() {}
func (t Tuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Struct is a field-named aggregate value. FieldOrder preserves
// declaration order so SSA forming's composite-initializer reordering
// (spec.md §4.6) has somewhere to record the canonical order.
type Struct struct {
	TypeName  string
	FieldOrder []string
	Fields     map[string]Value
}

func (Struct) valueNode() {}
func (s Struct) String() string {
	parts := make([]string, len(s.FieldOrder))
	for i, name := range s.FieldOrder {
		parts[i] = fmt.Sprintf("%s: %s", name, s.Fields[name])
	}
	return s.TypeName + " { " + strings.Join(parts, ", ") + " }"
}

// Unit is the value of the empty tuple type.
type Unit struct{}

func (Unit) valueNode()      {}
func (Unit) String() string { return "()" }

// Future describes a pending finalize invocation's captured inputs. A
// Future is never itself constant-folded past this point (it has no
// literal surface form) but is represented here so intrinsic evaluation
// involving async calls has a typed placeholder.
type Future struct {
	Program string
	Name    string
	Inputs  []Value
}

func (Future) valueNode() {}
func (f Future) String() string { return fmt.Sprintf("Future<%s/%s>", f.Program, f.Name) }

// IntTypeOf returns the IntType of v, or false if v is not an Int.
func IntTypeOf(v Value) (ast.IntType, bool) {
	i, ok := v.(Int)
	if !ok {
		return 0, false
	}
	return i.Type, true
}

// AsInt returns v's magnitude as a native int, used for array lengths
// and const-generic parameters that must be small enough to size a Go
// slice; ok is false if v is not an Int or does not fit.
func AsInt(v Value) (int, bool) {
	i, ok := v.(Int)
	if !ok || !i.Mag.IsInt64() {
		return 0, false
	}
	n := i.Mag.Int64()
	if n < 0 || n > (1<<31) {
		return 0, false
	}
	return int(n), true
}
