// Package ast defines the uniform AST representation (C1) that every
// lowering pass in this compiler core is written against: a set of sum
// types for expressions, statements, and items, each node carrying its
// own stable ids.NodeId, plus the Pos/Span types used by the side-tables
// in package tables.
package ast

import (
	"fmt"
	"strings"

	"github.com/leo-lang/avmc/internal/ids"
)

// Pos is a single source location.
type Pos struct {
	File   string
	Line   int
	Column int
	Offset int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a half-open range in source code.
type Span struct {
	Start Pos
	End   Pos
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%d:%d", s.Start, s.End.Line, s.End.Column)
}

// Node is implemented by every AST node: expressions, statements, and
// items alike. ID returns the node's stable identifier, allocated once at
// construction and preserved across passes that do not change the node's
// semantics (spec.md §3, "Node identifiers").
type Node interface {
	ID() ids.NodeId
	Span() Span
	String() string
}

// Base is embedded by every concrete node to satisfy ID()/Span() without
// repeating the boilerplate; the embedding struct still implements its own
// String() and the marker method for its sum type.
type Base struct {
	NodeID ids.NodeId
	Sp     Span
}

func (b Base) ID() ids.NodeId { return b.NodeID }
func (b Base) Span() Span     { return b.Sp }

// ============================================================================
// Expressions
// ============================================================================

// Expr is the sum type of all expression nodes (spec.md §3, "Expression").
type Expr interface {
	Node
	exprNode()
}

// Path is a qualified name, possibly local: `x`, `Self::f`, `foo.aleo/bar`.
type Path struct {
	Base
	Segments []string
}

func (*Path) exprNode() {}
func (p *Path) String() string { return strings.Join(p.Segments, ".") }

// LiteralKind distinguishes the Literal expression variants named in
// spec.md §3.
type LiteralKind int

const (
	LitAddress LiteralKind = iota
	LitBool
	LitField
	LitGroup
	LitInteger // carries an IntType suffix
	LitScalar
	LitUnsuffixed
	LitString
)

func (k LiteralKind) String() string {
	switch k {
	case LitAddress:
		return "address"
	case LitBool:
		return "bool"
	case LitField:
		return "field"
	case LitGroup:
		return "group"
	case LitInteger:
		return "integer"
	case LitScalar:
		return "scalar"
	case LitUnsuffixed:
		return "unsuffixed"
	case LitString:
		return "string"
	default:
		return "unknown"
	}
}

// Literal is a constant expression with a kind-specific payload.
type Literal struct {
	Base
	Kind    LiteralKind
	Text    string  // canonical textual form, e.g. "3u32", "1group", "true"
	IntType IntType // meaningful only when Kind == LitInteger
}

func (*Literal) exprNode() {}
func (l *Literal) String() string { return l.Text }

// UnaryOp enumerates the unary operators.
type UnaryOp int

const (
	UnaryNot UnaryOp = iota
	UnaryNegate
	UnarySquare
	UnarySquareRoot
	UnaryAbs
	UnaryAbsWrapped
	UnaryDouble
	UnaryInverse
	UnaryToXCoordinate
	UnaryToYCoordinate
)

// Unary is `op inner`.
type Unary struct {
	Base
	Op    UnaryOp
	Inner Expr
}

func (*Unary) exprNode() {}
func (u *Unary) String() string { return fmt.Sprintf("(%v %s)", u.Op, u.Inner) }

// BinaryOp enumerates the binary operators.
type BinaryOp int

const (
	BinAdd BinaryOp = iota
	BinAddWrapped
	BinSub
	BinSubWrapped
	BinMul
	BinMulWrapped
	BinDiv
	BinDivWrapped
	BinRem
	BinRemWrapped
	BinPow
	BinPowWrapped
	BinShl
	BinShlWrapped
	BinShr
	BinShrWrapped
	BinBitAnd
	BinBitOr
	BinBitXor
	BinAnd // boolean &&
	BinOr  // boolean ||
	BinEq
	BinNeq
	BinLt
	BinLe
	BinGt
	BinGe
)

// Binary is `left op right`.
type Binary struct {
	Base
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (*Binary) exprNode() {}
func (b *Binary) String() string { return fmt.Sprintf("(%s %v %s)", b.Left, b.Op, b.Right) }

// Ternary is `cond ? ifTrue : ifFalse`.
type Ternary struct {
	Base
	Cond    Expr
	IfTrue  Expr
	IfFalse Expr
}

func (*Ternary) exprNode() {}
func (t *Ternary) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", t.Cond, t.IfTrue, t.IfFalse)
}

// Cast is `inner as TargetType`.
type Cast struct {
	Base
	Inner  Expr
	Target TypeExpr
}

func (*Cast) exprNode() {}
func (c *Cast) String() string { return fmt.Sprintf("(%s as %s)", c.Inner, c.Target) }

// Array is an inline array literal `[e0, e1, ...]`.
type Array struct {
	Base
	Elements []Expr
}

func (*Array) exprNode() {}
func (a *Array) String() string { return fmt.Sprintf("[%s]", joinExpr(a.Elements)) }

// Tuple is `(e0, e1, ...)`.
type Tuple struct {
	Base
	Elements []Expr
}

func (*Tuple) exprNode() {}
func (t *Tuple) String() string { return fmt.Sprintf("(%s)", joinExpr(t.Elements)) }

// Repeat is `[element; length]`, a repeated-element array initializer.
// Dimensions may name more than one length, per spec.md §4.5's
// multi-dimensional canonicalization ("array-init with a dimension
// tuple is expanded to nested inits").
type Repeat struct {
	Base
	Element    Expr
	Dimensions []Expr
}

func (*Repeat) exprNode() {}
func (r *Repeat) String() string { return fmt.Sprintf("[%s; %s]", r.Element, joinExpr(r.Dimensions)) }

// Call is a function call, optionally const-parameterized:
// `callee::[c0, c1](a0, a1)`.
type Call struct {
	Base
	Callee    Expr
	ConstArgs []Expr // nil if none
	Args      []Expr
}

func (*Call) exprNode() {}
func (c *Call) String() string {
	if len(c.ConstArgs) == 0 {
		return fmt.Sprintf("%s(%s)", c.Callee, joinExpr(c.Args))
	}
	return fmt.Sprintf("%s::[%s](%s)", c.Callee, joinExpr(c.ConstArgs), joinExpr(c.Args))
}

// CompositeField is one `name: value` pair of a struct/record initializer.
type CompositeField struct {
	Name  string
	Value Expr // nil for the implied `name` shorthand
}

// Composite is a struct or record initializer:
// `Path { f0: v0, f1: v1 }` with optional const-arguments for a generic
// composite type.
type Composite struct {
	Base
	Type      Path
	ConstArgs []Expr
	Fields    []CompositeField
}

func (*Composite) exprNode() {}
func (c *Composite) String() string {
	parts := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Value)
	}
	return fmt.Sprintf("%s { %s }", c.Type.String(), strings.Join(parts, ", "))
}

// ArrayAccess is `array[index]`.
type ArrayAccess struct {
	Base
	Array Expr
	Index Expr
}

func (*ArrayAccess) exprNode() {}
func (a *ArrayAccess) String() string { return fmt.Sprintf("%s[%s]", a.Array, a.Index) }

// MemberAccess is `operand.member`.
type MemberAccess struct {
	Base
	Operand Expr
	Member  string
}

func (*MemberAccess) exprNode() {}
func (m *MemberAccess) String() string { return fmt.Sprintf("%s.%s", m.Operand, m.Member) }

// TupleAccess is `operand.i` where i is a literal tuple index.
type TupleAccess struct {
	Base
	Operand Expr
	Index   int
}

func (*TupleAccess) exprNode() {}
func (t *TupleAccess) String() string { return fmt.Sprintf("%s.%d", t.Operand, t.Index) }

// IntrinsicKind enumerates the intrinsic operation families of spec.md
// §4.4 ("Intrinsics"). Kept as strings-over-constants because the set is
// large and is most naturally data-driven from the Value evaluator's
// intrinsic table (see internal/value).
type IntrinsicKind string

// Intrinsic is a call to a built-in cryptographic/VM primitive:
// `Hash::BHP256::hash_to_field(x)`-shaped calls all desugar to this node.
type Intrinsic struct {
	Base
	Name      IntrinsicKind
	ConstArgs []Expr
	Args      []Expr
}

func (*Intrinsic) exprNode() {}
func (i *Intrinsic) String() string { return fmt.Sprintf("%s(%s)", i.Name, joinExpr(i.Args)) }

// Async is `<callee>.aleo/<finalize_name>(args)` — an async-transition's
// finalize invocation, which produces a Future value.
type Async struct {
	Base
	Program  string
	Callee   string
	Args     []Expr
}

func (*Async) exprNode() {}
func (a *Async) String() string { return fmt.Sprintf("async %s/%s(%s)", a.Program, a.Callee, joinExpr(a.Args)) }

// Unit is the expressionless `()` value.
type Unit struct{ Base }

func (*Unit) exprNode()      {}
func (*Unit) String() string { return "()" }

// Err is the absorbing error expression: it type-checks against anything
// and never triggers cascading diagnostics (spec.md §3, "Err").
type Err struct{ Base }

func (*Err) exprNode()      {}
func (*Err) String() string { return "<err>" }

func joinExpr(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// ============================================================================
// Statements
// ============================================================================

// Stmt is the sum type of all statement nodes (spec.md §3, "Statement").
type Stmt interface {
	Node
	stmtNode()
}

// Place is the left-hand side of a Definition or Assign statement: either
// a single identifier or an identifier tuple, optionally ending in a chain
// of member/tuple/array accesses (for Assign only).
type Place struct {
	Names  []string // one name for single-identifier, >1 for tuple places
	Accessors []Accessor // suffix chain for assignment targets; empty for definitions
}

// AccessorKind distinguishes the three ways an assignment place can be
// extended past a bare name.
type AccessorKind int

const (
	AccessMember AccessorKind = iota
	AccessTuple
	AccessArray
)

// Accessor is one link of an assignment place's access chain.
type Accessor struct {
	Kind   AccessorKind
	Member string // AccessMember
	Index  int    // AccessTuple
	Expr   Expr   // AccessArray
}

func (p Place) String() string {
	s := strings.Join(p.Names, ", ")
	for _, a := range p.Accessors {
		switch a.Kind {
		case AccessMember:
			s += "." + a.Member
		case AccessTuple:
			s += fmt.Sprintf(".%d", a.Index)
		case AccessArray:
			s += fmt.Sprintf("[%s]", a.Expr)
		}
	}
	return s
}

// Definition is `let place: Type? = value;` or `const place = value;`
// (the Const/Mut distinction lives on the symbol, see internal/symtab).
type Definition struct {
	Base
	Place Place
	Type  TypeExpr // nil if elided
	Value Expr
}

func (*Definition) stmtNode() {}
func (d *Definition) String() string { return fmt.Sprintf("let %s = %s;", d.Place, d.Value) }

// CompoundOp enumerates compound-assignment operators, desugared away by
// C6 (spec.md §4.5) but present in the pre-canonicalization AST.
type CompoundOp int

const (
	CompoundNone CompoundOp = iota
	CompoundAdd
	CompoundSub
	CompoundMul
	CompoundDiv
	CompoundRem
	CompoundPow
	CompoundShl
	CompoundShr
	CompoundBitAnd
	CompoundBitOr
	CompoundBitXor
)

// Assign is `place op= value;` (op == CompoundNone for plain `=`).
type Assign struct {
	Base
	Place Place
	Op    CompoundOp
	Value Expr
}

func (*Assign) stmtNode() {}
func (a *Assign) String() string { return fmt.Sprintf("%s = %s;", a.Place, a.Value) }

// Block is a braced statement sequence; it is also the unit the symbol
// table associates a child scope with (keyed by the block's NodeId).
type Block struct {
	Base
	Statements []Stmt
}

func (*Block) stmtNode() {}
func (b *Block) String() string {
	parts := make([]string, len(b.Statements))
	for i, s := range b.Statements {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

// Conditional is `if cond { then } else { else_ }`, where Else is a
// *Block, a *Conditional, or nil.
type Conditional struct {
	Base
	Cond Expr
	Then *Block
	Else Stmt // *Block | *Conditional | nil
}

func (*Conditional) stmtNode() {}
func (c *Conditional) String() string {
	if c.Else == nil {
		return fmt.Sprintf("if %s %s", c.Cond, c.Then)
	}
	return fmt.Sprintf("if %s %s else %s", c.Cond, c.Then, c.Else)
}

// Iteration is `for loopVar: IntType in start..stop { body }` (inclusive
// toggled by Inclusive, `..=`).
type Iteration struct {
	Base
	LoopVar   string
	VarType   IntType
	Start     Expr
	Stop      Expr
	Inclusive bool
	Body      *Block
}

func (*Iteration) stmtNode() {}
func (it *Iteration) String() string {
	dots := ".."
	if it.Inclusive {
		dots = "..="
	}
	return fmt.Sprintf("for %s:%s in %s%s%s %s", it.LoopVar, it.VarType, it.Start, dots, it.Stop, it.Body)
}

// Return is `return value;`.
type Return struct {
	Base
	Value Expr
}

func (*Return) stmtNode() {}
func (r *Return) String() string { return fmt.Sprintf("return %s;", r.Value) }

// AssertKind distinguishes the console/assert statement variants.
type AssertKind int

const (
	AssertEq AssertKind = iota
	AssertNeq
	AssertTrue
)

// Assert is `assert(...)`, `assert_eq(a, b)`, or `assert_neq(a, b)`.
type Assert struct {
	Base
	Kind AssertKind
	Args []Expr
}

func (*Assert) stmtNode() {}
func (a *Assert) String() string { return fmt.Sprintf("assert_%v(%s)", a.Kind, joinExpr(a.Args)) }

// ExpressionStatement wraps a bare expression used for its side effects
// (calls to non-pure functions, mapping writes).
type ExpressionStatement struct {
	Base
	Value Expr
}

func (*ExpressionStatement) stmtNode() {}
func (e *ExpressionStatement) String() string { return e.Value.String() + ";" }

// Const is a local `const name = value;` declaration.
type Const struct {
	Base
	Name  string
	Value Expr
}

func (*Const) stmtNode() {}
func (c *Const) String() string { return fmt.Sprintf("const %s = %s;", c.Name, c.Value) }

// Empty is the statement produced when a reconstructing reducer removes a
// statement entirely (spec.md §4.1).
type Empty struct{ Base }

func (*Empty) stmtNode()      {}
func (*Empty) String() string { return ";" }

// ============================================================================
// Items
// ============================================================================

// Item is the sum type of top-level declarations inside a Program.
type Item interface {
	Node
	itemNode()
}

// FunctionVariant enumerates the callable kinds of spec.md §3 ("Items").
type FunctionVariant int

const (
	VariantTransition FunctionVariant = iota
	VariantAsyncTransition
	VariantAsyncFunction
	VariantFunction
	VariantInline
	VariantTest
)

func (v FunctionVariant) String() string {
	switch v {
	case VariantTransition:
		return "transition"
	case VariantAsyncTransition:
		return "async transition"
	case VariantAsyncFunction:
		return "async function"
	case VariantFunction:
		return "function"
	case VariantInline:
		return "inline"
	case VariantTest:
		return "test"
	default:
		return "unknown"
	}
}

// Mode enumerates input modes.
type Mode int

const (
	ModeNone Mode = iota
	ModePrivate
	ModePublic
	ModeConstant
)

func (m Mode) String() string {
	switch m {
	case ModePrivate:
		return "private"
	case ModePublic:
		return "public"
	case ModeConstant:
		return "constant"
	default:
		return "none"
	}
}

// Param is one input parameter.
type Param struct {
	Name string
	Type TypeExpr
	Mode Mode
}

// ConstParam is one const-generic parameter, e.g. `N: u32`.
type ConstParam struct {
	Name string
	Type TypeExpr
}

// Output is one return value slot (functions may have multiple outputs
// flattened from a tuple type).
type Output struct {
	Type TypeExpr
	Mode Mode
}

// Function is spec.md §3's Function item.
type Function struct {
	Base
	Name         string
	Variant      FunctionVariant
	ConstParams  []ConstParam
	Inputs       []Param
	Outputs      []Output
	OutputType   TypeExpr
	Body         *Block
}

func (*Function) itemNode() {}
func (f *Function) String() string {
	return fmt.Sprintf("%s %s(...) -> %s %s", f.Variant, f.Name, f.OutputType, f.Body)
}

// CompositeKind distinguishes a struct from a record.
type CompositeKind int

const (
	KindStruct CompositeKind = iota
	KindRecord
)

// CompositeField is renamed StructField to avoid clashing with the
// expression-level CompositeField; struct/record member declarations.
type StructField struct {
	Name string
	Type TypeExpr
}

// CompositeDecl is spec.md §3's Composite item. Records carry `owner`
// first, enforced by the parser/canonicalizer, not re-validated here.
type CompositeDecl struct {
	Base
	Name   string
	Kind   CompositeKind
	Fields []StructField
}

func (*CompositeDecl) itemNode() {}
func (c *CompositeDecl) String() string {
	kw := "struct"
	if c.Kind == KindRecord {
		kw = "record"
	}
	return fmt.Sprintf("%s %s { ... }", kw, c.Name)
}

// MappingDecl is spec.md §3's Mapping item.
type MappingDecl struct {
	Base
	Name     string
	KeyType  TypeExpr
	ValType  TypeExpr
}

func (*MappingDecl) itemNode() {}
func (m *MappingDecl) String() string {
	return fmt.Sprintf("mapping %s: %s => %s;", m.Name, m.KeyType, m.ValType)
}

// FunctionPrototype is one required member of an Interface.
type FunctionPrototype struct {
	Name        string
	ConstParams []ConstParam
	Inputs      []Param
	OutputType  TypeExpr
}

// RecordPrototype is one required record shape of an Interface.
type RecordPrototype struct {
	Name   string
	Fields []StructField
}

// InterfaceDecl is spec.md §3's Interface item, supporting multiple
// inheritance via Parents (flattened by internal/symtab).
type InterfaceDecl struct {
	Base
	Name       string
	Parents    []string
	Functions  []FunctionPrototype
	Records    []RecordPrototype
}

func (*InterfaceDecl) itemNode() {}
func (i *InterfaceDecl) String() string { return fmt.Sprintf("interface %s { ... }", i.Name) }

// GlobalConst is a program-scoped `const name = value;`.
type GlobalConst struct {
	Base
	Name  string
	Type  TypeExpr
	Value Expr
}

func (*GlobalConst) itemNode() {}
func (g *GlobalConst) String() string { return fmt.Sprintf("const %s = %s;", g.Name, g.Value) }

// ImportStub is an imported program's exported signature shape (spec.md
// §6, "Stub"), participating in type checking without a body.
type ImportStub struct {
	Base
	ProgramName string
	Functions   []FunctionPrototype
	Structs     []CompositeDecl
	Mappings    []MappingDecl
}

func (*ImportStub) itemNode() {}
func (i *ImportStub) String() string { return fmt.Sprintf("import %s;", i.ProgramName) }

// Program is the top-level named scope (spec.md §3's "Program" item).
// Parents lists the interfaces this program declares itself to
// implement (spec.md §4.3's "every program declaring a parent
// interface"), distinct from InterfaceDecl.Parents which is
// interface-to-interface inheritance.
type Program struct {
	Base
	Name       string
	Parents    []string
	Imports    []*ImportStub
	Functions  []*Function
	Structs    []*CompositeDecl
	Records    []*CompositeDecl
	Mappings   []*MappingDecl
	Interfaces []*InterfaceDecl
	Globals    []*GlobalConst
}

func (*Program) itemNode() {}
func (p *Program) String() string { return fmt.Sprintf("program %s.aleo", p.Name) }
