// Package types implements the resolved semantic Type sum (C4) and its
// equality/coercion relations (spec.md §3, "Types"). It sits below
// package ast in the dependency graph (ast's TypeExpr is the syntactic,
// pre-resolution form; this package is what the checker writes into the
// type table).
package types

import (
	"fmt"
	"strings"

	"github.com/leo-lang/avmc/internal/ast"
)

// Type is the resolved semantic type of an expression or declaration.
type Type interface {
	fmt.Stringer
	typeNode()
}

type Address struct{}

func (Address) typeNode()      {}
func (Address) String() string { return "address" }

type Bool struct{}

func (Bool) typeNode()      {}
func (Bool) String() string { return "bool" }

type Field struct{}

func (Field) typeNode()      {}
func (Field) String() string { return "field" }

type Group struct{}

func (Group) typeNode()      {}
func (Group) String() string { return "group" }

type Scalar struct{}

func (Scalar) typeNode()      {}
func (Scalar) String() string { return "scalar" }

type Signature struct{}

func (Signature) typeNode()      {}
func (Signature) String() string { return "signature" }

type String struct{}

func (String) typeNode()      {}
func (String) String() string { return "string" }

type Unit struct{}

func (Unit) typeNode()      {}
func (Unit) String() string { return "()" }

type Integer struct{ Int ast.IntType }

func (Integer) typeNode()        {}
func (t Integer) String() string { return t.Int.String() }

// Array is `[Elt; Length]`. Length is nil when not yet statically known
// (e.g. a const-generic array parameter before monomorphization); two
// arrays with at least one unknown length compare user-equal so long as
// their element types do (spec.md §3).
type Array struct {
	Elt    Type
	Length *int
}

func (Array) typeNode() {}
func (t Array) String() string {
	if t.Length == nil {
		return fmt.Sprintf("[%s; _]", t.Elt)
	}
	return fmt.Sprintf("[%s; %d]", t.Elt, *t.Length)
}

type Tuple struct{ Elts []Type }

func (Tuple) typeNode() {}
func (t Tuple) String() string {
	parts := make([]string, len(t.Elts))
	for i, e := range t.Elts {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

type Mapping struct{ Key, Val Type }

func (Mapping) typeNode()        {}
func (t Mapping) String() string { return fmt.Sprintf("mapping(%s => %s)", t.Key, t.Val) }

// Composite names a resolved struct/record/interface type. ConstArgs is
// nil when the type has no const-parameters, and unresolved (len>0 but
// not yet foldable) composites compare user-equal regardless of the
// concrete args (spec.md §3: "composites with const-args not yet
// resolved compare equal").
type Composite struct {
	Program    string // "" for the current program
	Path       string
	ConstArgs  []ConstArg
	IsResolved bool // true once every ConstArg evaluated to a literal
}

// ConstArg is one const-argument of a composite/array instantiation,
// carried as its rendered literal text so Composite stays comparable
// without importing package value (which sits below types already, but
// literal text keeps this struct trivially Equal-able and hashable for
// monomorphization's specialization-name cache).
type ConstArg struct {
	Text string
}

func (Composite) typeNode() {}
func (t Composite) String() string {
	name := t.Path
	if t.Program != "" {
		name = t.Program + "/" + name
	}
	if len(t.ConstArgs) == 0 {
		return name
	}
	parts := make([]string, len(t.ConstArgs))
	for i, a := range t.ConstArgs {
		parts[i] = a.Text
	}
	return fmt.Sprintf("%s::[%s]", name, strings.Join(parts, ", "))
}

// Future is the pending-finalize type. IsExplicit is false when it was
// inferred from a finalize block's parameter types rather than written
// out at the call site (spec.md §3: "futures compare equal if either is
// inexplicit").
type Future struct {
	Inputs     []Type
	IsExplicit bool
}

func (Future) typeNode() {}
func (t Future) String() string {
	parts := make([]string, len(t.Inputs))
	for i, e := range t.Inputs {
		parts[i] = e.String()
	}
	return "Future<" + strings.Join(parts, ", ") + ">"
}

type Optional struct{ Inner Type }

func (Optional) typeNode()        {}
func (t Optional) String() string { return fmt.Sprintf("Optional<%s>", t.Inner) }

// Identifier is an unresolved bare type name; matches by name under
// user-equality (spec.md §3).
type Identifier struct{ Name string }

func (Identifier) typeNode()        {}
func (t Identifier) String() string { return t.Name }

// Numeric is the defaulting placeholder for an unsuffixed literal before
// a concrete integer/field/group/scalar type is pinned down.
type Numeric struct{}

func (Numeric) typeNode()      {}
func (Numeric) String() string { return "{numeric}" }

// Err is the absorbing error type: user-equal to anything.
type Err struct{}

func (Err) typeNode()      {}
func (Err) String() string { return "<err>" }
