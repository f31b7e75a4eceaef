// Package surface stands in for the surface-syntax lexer/parser spec.md
// §1 places out of scope ("specified only via their contracts"): rather
// than a textual Leo grammar, it exposes a small programmatic AST
// builder so tests and `cmd/avmc`'s own smoke fixtures can construct a
// *ast.Program directly and hand it to internal/pipeline, exercising
// every downstream component end-to-end (spec.md §8's scenarios S1–S6)
// without a real parser existing. Every construction method allocates
// its node's NodeId from the Builder's own internal/ids.Builder, so a
// program built here already satisfies Testable Property 1 before the
// pipeline ever touches it.
package surface

import (
	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/ids"
)

// Builder constructs AST nodes, allocating fresh NodeIds as it goes.
type Builder struct {
	ids *ids.Builder
}

// New returns a Builder backed by a fresh id allocator. Use IDs to hand
// that same allocator to internal/pipeline via pipeline.Source.Builder,
// so parsing and lowering share one monotonic NodeId sequence.
func New() *Builder { return &Builder{ids: ids.NewBuilder()} }

// IDs returns the id allocator this Builder uses, for a caller that
// wants to feed it straight into pipeline.Source.
func (b *Builder) IDs() *ids.Builder { return b.ids }

func (b *Builder) base() ast.Base { return ast.Base{NodeID: b.ids.Next()} }

// --- Expressions -----------------------------------------------------

func (b *Builder) Path(segments ...string) *ast.Path {
	return &ast.Path{Base: b.base(), Segments: segments}
}

// Int builds a suffixed integer literal of an explicit width,
// e.g. Int("3", ast.U32) for `3u32`.
func (b *Builder) Int(digits string, t ast.IntType) *ast.Literal {
	return &ast.Literal{Base: b.base(), Kind: ast.LitInteger, Text: digits + t.String(), IntType: t}
}

func (b *Builder) Bool(v bool) *ast.Literal {
	text := "false"
	if v {
		text = "true"
	}
	return &ast.Literal{Base: b.base(), Kind: ast.LitBool, Text: text}
}

func (b *Builder) Address(text string) *ast.Literal {
	return &ast.Literal{Base: b.base(), Kind: ast.LitAddress, Text: text}
}

func (b *Builder) Str(text string) *ast.Literal {
	return &ast.Literal{Base: b.base(), Kind: ast.LitString, Text: text}
}

func (b *Builder) Unary(op ast.UnaryOp, inner ast.Expr) *ast.Unary {
	return &ast.Unary{Base: b.base(), Op: op, Inner: inner}
}

func (b *Builder) Binary(op ast.BinaryOp, left, right ast.Expr) *ast.Binary {
	return &ast.Binary{Base: b.base(), Op: op, Left: left, Right: right}
}

func (b *Builder) Ternary(cond, ifTrue, ifFalse ast.Expr) *ast.Ternary {
	return &ast.Ternary{Base: b.base(), Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse}
}

func (b *Builder) Cast(inner ast.Expr, target ast.TypeExpr) *ast.Cast {
	return &ast.Cast{Base: b.base(), Inner: inner, Target: target}
}

func (b *Builder) Array(elements ...ast.Expr) *ast.Array {
	return &ast.Array{Base: b.base(), Elements: elements}
}

func (b *Builder) Tuple(elements ...ast.Expr) *ast.Tuple {
	return &ast.Tuple{Base: b.base(), Elements: elements}
}

func (b *Builder) Repeat(element ast.Expr, dims ...ast.Expr) *ast.Repeat {
	return &ast.Repeat{Base: b.base(), Element: element, Dimensions: dims}
}

func (b *Builder) Call(callee ast.Expr, args ...ast.Expr) *ast.Call {
	return &ast.Call{Base: b.base(), Callee: callee, Args: args}
}

func (b *Builder) CallGeneric(callee ast.Expr, constArgs, args []ast.Expr) *ast.Call {
	return &ast.Call{Base: b.base(), Callee: callee, ConstArgs: constArgs, Args: args}
}

// Field is one name:value pair for a Composite literal.
type Field struct {
	Name  string
	Value ast.Expr
}

func (b *Builder) Composite(typeName string, fields ...Field) *ast.Composite {
	cf := make([]ast.CompositeField, len(fields))
	for i, f := range fields {
		cf[i] = ast.CompositeField{Name: f.Name, Value: f.Value}
	}
	return &ast.Composite{Base: b.base(), Type: ast.Path{Segments: []string{typeName}}, Fields: cf}
}

func (b *Builder) ArrayAccess(arr, index ast.Expr) *ast.ArrayAccess {
	return &ast.ArrayAccess{Base: b.base(), Array: arr, Index: index}
}

func (b *Builder) MemberAccess(operand ast.Expr, member string) *ast.MemberAccess {
	return &ast.MemberAccess{Base: b.base(), Operand: operand, Member: member}
}

func (b *Builder) TupleAccess(operand ast.Expr, index int) *ast.TupleAccess {
	return &ast.TupleAccess{Base: b.base(), Operand: operand, Index: index}
}

func (b *Builder) Intrinsic(name ast.IntrinsicKind, args ...ast.Expr) *ast.Intrinsic {
	return &ast.Intrinsic{Base: b.base(), Name: name, Args: args}
}

// --- Statements --------------------------------------------------------

func (b *Builder) Let(name string, value ast.Expr) *ast.Definition {
	return &ast.Definition{Base: b.base(), Place: ast.Place{Names: []string{name}}, Value: value}
}

func (b *Builder) LetTuple(names []string, value ast.Expr) *ast.Definition {
	return &ast.Definition{Base: b.base(), Place: ast.Place{Names: names}, Value: value}
}

func (b *Builder) Assign(name string, value ast.Expr) *ast.Assign {
	return &ast.Assign{Base: b.base(), Place: ast.Place{Names: []string{name}}, Op: ast.CompoundNone, Value: value}
}

func (b *Builder) AssignMember(name, member string, value ast.Expr) *ast.Assign {
	return &ast.Assign{
		Base:  b.base(),
		Place: ast.Place{Names: []string{name}, Accessors: []ast.Accessor{{Kind: ast.AccessMember, Member: member}}},
		Op:    ast.CompoundNone, Value: value,
	}
}

func (b *Builder) Block(stmts ...ast.Stmt) *ast.Block {
	return &ast.Block{Base: b.base(), Statements: stmts}
}

func (b *Builder) If(cond ast.Expr, then *ast.Block, els ast.Stmt) *ast.Conditional {
	return &ast.Conditional{Base: b.base(), Cond: cond, Then: then, Else: els}
}

func (b *Builder) For(loopVar string, t ast.IntType, start, stop ast.Expr, inclusive bool, body *ast.Block) *ast.Iteration {
	return &ast.Iteration{Base: b.base(), LoopVar: loopVar, VarType: t, Start: start, Stop: stop, Inclusive: inclusive, Body: body}
}

func (b *Builder) Return(value ast.Expr) *ast.Return {
	return &ast.Return{Base: b.base(), Value: value}
}

func (b *Builder) AssertEq(a, c ast.Expr) *ast.Assert {
	return &ast.Assert{Base: b.base(), Kind: ast.AssertEq, Args: []ast.Expr{a, c}}
}

func (b *Builder) ExprStmt(value ast.Expr) *ast.ExpressionStatement {
	return &ast.ExpressionStatement{Base: b.base(), Value: value}
}

// --- Items ---------------------------------------------------------------

func (b *Builder) Input(name string, t ast.TypeExpr, mode ast.Mode) ast.Param {
	return ast.Param{Name: name, Type: t, Mode: mode}
}

func (b *Builder) Function(name string, variant ast.FunctionVariant, constParams []ast.ConstParam, inputs []ast.Param, outputType ast.TypeExpr, body *ast.Block) *ast.Function {
	return &ast.Function{
		Base: b.base(), Name: name, Variant: variant,
		ConstParams: constParams, Inputs: inputs, OutputType: outputType, Body: body,
	}
}

func (b *Builder) Struct(name string, fields ...ast.StructField) *ast.CompositeDecl {
	return &ast.CompositeDecl{Base: b.base(), Name: name, Kind: ast.KindStruct, Fields: fields}
}

// Record prepends an `owner: address` field ahead of fields, matching
// spec.md §3's "records have an owner field first".
func (b *Builder) Record(name string, fields ...ast.StructField) *ast.CompositeDecl {
	all := append([]ast.StructField{{Name: "owner", Type: ast.AddressType{}}}, fields...)
	return &ast.CompositeDecl{Base: b.base(), Name: name, Kind: ast.KindRecord, Fields: all}
}

func (b *Builder) Mapping(name string, key, val ast.TypeExpr) *ast.MappingDecl {
	return &ast.MappingDecl{Base: b.base(), Name: name, KeyType: key, ValType: val}
}

// Program assembles a named program from the items built above.
func (b *Builder) Program(name string, fns []*ast.Function, structs, records []*ast.CompositeDecl, mappings []*ast.MappingDecl) *ast.Program {
	return &ast.Program{
		Base: b.base(), Name: name,
		Functions: fns, Structs: structs, Records: records, Mappings: mappings,
	}
}
