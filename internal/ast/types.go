package ast

import (
	"fmt"
	"strings"
)

// IntType enumerates the integer type suffixes, spec.md §3 ("i8..u128").
type IntType int

const (
	I8 IntType = iota
	I16
	I32
	I64
	I128
	U8
	U16
	U32
	U64
	U128
)

func (t IntType) String() string {
	names := [...]string{"i8", "i16", "i32", "i64", "i128", "u8", "u16", "u32", "u64", "u128"}
	if int(t) < len(names) {
		return names[t]
	}
	return "int?"
}

// Signed reports whether t is one of i8..i128.
func (t IntType) Signed() bool { return t <= I128 }

// BitWidth returns the operand width in bits.
func (t IntType) BitWidth() int {
	widths := [...]int{8, 16, 32, 64, 128, 8, 16, 32, 64, 128}
	return widths[t]
}

// TypeExpr is the syntactic (pre-resolution) form of a type as written in
// source: it is re-expressed as a resolved internal/types.Type once the
// type checker (C4) runs, but canonicalization (C6) and parsing both
// operate on this surface form directly. Variants mirror spec.md §3's
// Type sum exactly.
type TypeExpr interface {
	fmt.Stringer
	typeExprNode()
}

type AddressType struct{}

func (AddressType) typeExprNode() {}
func (AddressType) String() string { return "address" }

type BoolType struct{}

func (BoolType) typeExprNode() {}
func (BoolType) String() string { return "bool" }

type FieldType struct{}

func (FieldType) typeExprNode() {}
func (FieldType) String() string { return "field" }

type GroupType struct{}

func (GroupType) typeExprNode() {}
func (GroupType) String() string { return "group" }

type ScalarType struct{}

func (ScalarType) typeExprNode() {}
func (ScalarType) String() string { return "scalar" }

type SignatureType struct{}

func (SignatureType) typeExprNode() {}
func (SignatureType) String() string { return "signature" }

type StringType struct{}

func (StringType) typeExprNode() {}
func (StringType) String() string { return "string" }

type UnitType struct{}

func (UnitType) typeExprNode() {}
func (UnitType) String() string { return "()" }

type IntegerType struct{ Int IntType }

func (IntegerType) typeExprNode() {}
func (t IntegerType) String() string { return t.Int.String() }

// ArrayType is `[Elt; Length]`. Length is syntactic (may be a const-param
// name, resolved later) so it is carried as an Expr rather than an int.
type ArrayType struct {
	Elt    TypeExpr
	Length Expr
}

func (ArrayType) typeExprNode() {}
func (t ArrayType) String() string { return fmt.Sprintf("[%s; %s]", t.Elt, t.Length) }

// TupleType is `(T0, T1, ...)`.
type TupleType struct{ Elts []TypeExpr }

func (TupleType) typeExprNode() {}
func (t TupleType) String() string {
	parts := make([]string, len(t.Elts))
	for i, e := range t.Elts {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// MappingType is `mapping Key => Val` used where a mapping type appears
// as a value (e.g. in a stub signature).
type MappingType struct {
	Key TypeExpr
	Val TypeExpr
}

func (MappingType) typeExprNode() {}
func (t MappingType) String() string { return fmt.Sprintf("%s => %s", t.Key, t.Val) }

// CompositeType names a struct/record/interface type, possibly
// const-parameterized and possibly qualified by a program of origin
// (`othername.aleo/Foo`).
type CompositeType struct {
	Program   string // "" if local
	Path      string
	ConstArgs []Expr
}

func (CompositeType) typeExprNode() {}
func (t CompositeType) String() string {
	name := t.Path
	if t.Program != "" {
		name = t.Program + "/" + name
	}
	if len(t.ConstArgs) == 0 {
		return name
	}
	return fmt.Sprintf("%s::[%s]", name, joinExpr(t.ConstArgs))
}

// FutureType is `Future<Input0, Input1, ...>`; IsExplicit distinguishes a
// fully-written signature from one inferred from a finalize block.
type FutureType struct {
	Inputs     []TypeExpr
	IsExplicit bool
}

func (FutureType) typeExprNode() {}
func (t FutureType) String() string {
	parts := make([]string, len(t.Inputs))
	for i, e := range t.Inputs {
		parts[i] = e.String()
	}
	return "Future<" + strings.Join(parts, ", ") + ">"
}

// OptionalType is `Optional<Inner>`; used for coercion (spec.md §3,
// "Coercion: T → Optional<T>").
type OptionalType struct{ Inner TypeExpr }

func (OptionalType) typeExprNode() {}
func (t OptionalType) String() string { return fmt.Sprintf("Optional<%s>", t.Inner) }

// IdentifierType is an unresolved bare type name, matched by name until
// path disambiguation (C6) resolves it to a CompositeType or a builtin.
type IdentifierType struct{ Name string }

func (IdentifierType) typeExprNode() {}
func (t IdentifierType) String() string { return t.Name }

// NumericType is the inference placeholder for an unsuffixed numeric
// literal before its concrete type is pinned down.
type NumericType struct{}

func (NumericType) typeExprNode() {}
func (NumericType) String() string { return "{numeric}" }

// ErrType is the absorbing type: user-equal to anything (spec.md §3).
type ErrType struct{}

func (ErrType) typeExprNode() {}
func (ErrType) String() string { return "<err>" }
