// Package codegen renders the fully-lowered AST (post C9/C10: flattened,
// destructured, inlined, dead-code-eliminated) as AVM text, the external
// interface spec.md §6 names but scopes "out of scope" as an external
// collaborator specified only by contract. SPEC_FULL.md §11 commits this
// core to a minimal emitter anyway, so scenarios S1-S6 can be driven
// end-to-end in tests: declarations in dependency order, `function`/
// `closure` headers, records with `owner` first, a `finalize` section
// per async transition. It does not perform register allocation (a
// spec.md §1 non-goal) — every SSA name survives as its own symbolic
// register, sanitized through internal/mangle so it is always a valid
// AVM identifier.
package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/mangle"
)

// Emitter renders one program to AVM text.
type Emitter struct {
	sb strings.Builder
}

// New returns an Emitter ready to render a single program.
func New() *Emitter { return &Emitter{} }

// Emit renders p and returns its AVM text. p is expected to already be
// flattened, destructured, inlined, and dead-code-eliminated; any
// Conditional or Iteration statement still present is rendered as a
// best-effort nested block rather than rejected, so a caller probing an
// intermediate snapshot still gets readable output.
func Emit(p *ast.Program) string {
	e := New()
	e.program(p)
	return e.sb.String()
}

func (e *Emitter) line(format string, args ...any) {
	fmt.Fprintf(&e.sb, format+"\n", args...)
}

func (e *Emitter) program(p *ast.Program) {
	e.line("program %s.aleo;", p.Name)
	for _, imp := range p.Imports {
		e.line("import %s;", imp.ProgramName)
	}

	for _, c := range orderComposites(p.Structs) {
		e.composite(c)
	}
	for _, c := range orderComposites(p.Records) {
		e.composite(c)
	}
	for _, m := range p.Mappings {
		e.line("mapping %s:", m.Name)
		e.line("    key as %s;", m.KeyType)
		e.line("    value as %s;", m.ValType)
	}
	for _, fn := range p.Functions {
		e.function(fn)
	}
}

// orderComposites sorts structs/records into dependency post-order:
// a composite whose field references another composite by name is
// emitted after the composite it references (spec.md §6: "structs/
// records in post-order of the struct dependency graph").
func orderComposites(decls []*ast.CompositeDecl) []*ast.CompositeDecl {
	byName := make(map[string]*ast.CompositeDecl, len(decls))
	for _, d := range decls {
		byName[d.Name] = d
	}
	var out []*ast.CompositeDecl
	visited := map[string]bool{}
	var visit func(d *ast.CompositeDecl)
	visit = func(d *ast.CompositeDecl) {
		if visited[d.Name] {
			return
		}
		visited[d.Name] = true
		for _, f := range d.Fields {
			if ct, ok := f.Type.(ast.CompositeType); ok {
				if dep, ok := byName[ct.Path]; ok {
					visit(dep)
				}
			}
		}
		out = append(out, d)
	}
	names := make([]string, 0, len(decls))
	for _, d := range decls {
		names = append(names, d.Name)
	}
	sort.Strings(names) // stable iteration order, independent of slice input order
	for _, n := range names {
		visit(byName[n])
	}
	return out
}

func (e *Emitter) composite(c *ast.CompositeDecl) {
	kw := "struct"
	if c.Kind == ast.KindRecord {
		kw = "record"
	}
	e.line("%s %s:", kw, c.Name)
	fields := c.Fields
	if c.Kind == ast.KindRecord {
		fields = ownerFirst(fields)
	}
	for i, f := range fields {
		mode := ""
		if c.Kind == ast.KindRecord {
			mode = ".private"
			if f.Name == "owner" {
				mode = ".private" // owner is private, like every other record field here
			}
		}
		_ = i
		e.line("    %s as %s%s;", reg(f.Name), f.Type, mode)
	}
}

// ownerFirst moves `owner` to the front of a record's fields. The checker
// reports a record initializer whose declaration lacks `owner` but does
// not check where `owner` sits among the declared fields, so this is the
// step that puts it first in the emitted record.
func ownerFirst(fields []ast.StructField) []ast.StructField {
	out := make([]ast.StructField, 0, len(fields))
	for _, f := range fields {
		if f.Name == "owner" {
			out = append([]ast.StructField{f}, out...)
		} else {
			out = append(out, f)
		}
	}
	return out
}

func (e *Emitter) function(fn *ast.Function) {
	kw := "closure"
	if fn.Variant == ast.VariantTransition || fn.Variant == ast.VariantAsyncTransition {
		kw = "function"
	}
	e.line("%s %s:", kw, reg(fn.Name))
	for _, in := range fn.Inputs {
		mode := in.Mode.String()
		if mode == "none" {
			mode = "private"
		}
		e.line("    input %s as %s.%s;", reg(in.Name), in.Type, mode)
	}

	body := e.block(fn.Body)
	e.sb.WriteString(body)

	if fn.Variant == ast.VariantAsyncTransition {
		e.line("finalize %s:", reg(fn.Name))
	}
}

func (e *Emitter) block(b *ast.Block) string {
	var out strings.Builder
	for _, s := range b.Statements {
		out.WriteString(e.stmt(s))
	}
	return out.String()
}

func (e *Emitter) stmt(s ast.Stmt) string {
	switch n := s.(type) {
	case *ast.Definition:
		return e.assignLike(n.Place, n.Value)
	case *ast.Assign:
		return e.assignLike(n.Place, n.Value)
	case *ast.Const:
		return fmt.Sprintf("    mov %s into %s;\n", operand(n.Value), reg(n.Name))
	case *ast.Return:
		return fmt.Sprintf("    output %s;\n", operand(n.Value))
	case *ast.Assert:
		return e.assert(n)
	case *ast.ExpressionStatement:
		return fmt.Sprintf("    %s;\n", instr(n.Value))
	case *ast.Block:
		return e.block(n)
	case *ast.Conditional:
		var out strings.Builder
		fmt.Fprintf(&out, "    branch.eq %s true to L%d;\n", operand(n.Cond), n.ID())
		out.WriteString(e.block(n.Then))
		if n.Else != nil {
			out.WriteString(e.stmt(n.Else))
		}
		fmt.Fprintf(&out, "L%d:\n", n.ID())
		return out.String()
	case *ast.Iteration:
		var out strings.Builder
		fmt.Fprintf(&out, "    # for %s in %s..%s\n", reg(n.LoopVar), operand(n.Start), operand(n.Stop))
		out.WriteString(e.block(n.Body))
		return out.String()
	case *ast.Empty:
		return ""
	default:
		return fmt.Sprintf("    # unhandled statement %T\n", s)
	}
}

func (e *Emitter) assignLike(place ast.Place, val ast.Expr) string {
	dest := reg(place.Names[0])
	for _, acc := range place.Accessors {
		switch acc.Kind {
		case ast.AccessMember:
			dest += "." + acc.Member
		case ast.AccessTuple:
			dest += fmt.Sprintf(".%d", acc.Index)
		case ast.AccessArray:
			dest += "[" + operand(acc.Expr) + "]"
		}
	}
	return fmt.Sprintf("    %s into %s;\n", instr(val), dest)
}

func (e *Emitter) assert(n *ast.Assert) string {
	switch n.Kind {
	case ast.AssertEq:
		return fmt.Sprintf("    assert.eq %s %s;\n", operand(n.Args[0]), operand(n.Args[1]))
	case ast.AssertNeq:
		return fmt.Sprintf("    assert.neq %s %s;\n", operand(n.Args[0]), operand(n.Args[1]))
	default:
		return fmt.Sprintf("    assert.eq %s true;\n", operand(n.Args[0]))
	}
}

// instr renders e as the right-hand side of an AVM instruction line
// (everything before "into <dest>"), dispatching on expression shape.
// Literal/Path expressions render as a bare `mov` since a plain value
// or copy needs no opcode of its own in this simplified text form.
func instr(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Binary:
		return fmt.Sprintf("%s %s %s", binaryMnemonic(n.Op), operand(n.Left), operand(n.Right))
	case *ast.Unary:
		return fmt.Sprintf("%s %s", unaryMnemonic(n.Op), operand(n.Inner))
	case *ast.Ternary:
		return fmt.Sprintf("ternary %s %s %s", operand(n.Cond), operand(n.IfTrue), operand(n.IfFalse))
	case *ast.Cast:
		return fmt.Sprintf("cast.lossy %s as %s", operand(n.Inner), n.Target)
	case *ast.Call:
		return fmt.Sprintf("call %s %s", reg(calleeName(n.Callee)), joinOperands(n.Args))
	case *ast.Intrinsic:
		return fmt.Sprintf("%s %s", mangle.Sanitize(string(n.Name)), joinOperands(n.Args))
	case *ast.Async:
		return fmt.Sprintf("call %s/%s %s", n.Program, reg(n.Callee), joinOperands(n.Args))
	case *ast.Composite:
		parts := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			parts[i] = operand(f.Value)
		}
		return fmt.Sprintf("cast %s as %s", strings.Join(parts, " "), n.Type.String())
	case *ast.Array:
		return fmt.Sprintf("cast %s as array", joinOperands(n.Elements))
	case *ast.Tuple:
		return fmt.Sprintf("cast %s as tuple", joinOperands(n.Elements))
	case *ast.ArrayAccess:
		return fmt.Sprintf("mov %s[%s]", operand(n.Array), operand(n.Index))
	case *ast.MemberAccess:
		return fmt.Sprintf("mov %s.%s", operand(n.Operand), n.Member)
	case *ast.TupleAccess:
		return fmt.Sprintf("mov %s.%d", operand(n.Operand), n.Index)
	default:
		return fmt.Sprintf("mov %s", operand(e))
	}
}

func calleeName(e ast.Expr) string {
	if p, ok := e.(*ast.Path); ok && len(p.Segments) > 0 {
		return p.Segments[len(p.Segments)-1]
	}
	return e.String()
}

func joinOperands(es []ast.Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = operand(e)
	}
	return strings.Join(parts, " ")
}

// operand renders e as an instruction argument: a literal's own text, or
// a sanitized register name for anything else (spec.md §1's "no
// register allocation" non-goal means the symbolic SSA name itself is
// the register — see internal/mangle).
func operand(e ast.Expr) string {
	if lit, ok := e.(*ast.Literal); ok {
		return lit.Text
	}
	if p, ok := e.(*ast.Path); ok && len(p.Segments) == 1 {
		return reg(p.Segments[0])
	}
	return e.String()
}

func reg(name string) string { return mangle.Sanitize(name) }

var binaryMnemonics = map[ast.BinaryOp]string{
	ast.BinAdd: "add", ast.BinAddWrapped: "add.w",
	ast.BinSub: "sub", ast.BinSubWrapped: "sub.w",
	ast.BinMul: "mul", ast.BinMulWrapped: "mul.w",
	ast.BinDiv: "div", ast.BinDivWrapped: "div.w",
	ast.BinRem: "rem", ast.BinRemWrapped: "rem.w",
	ast.BinPow: "pow", ast.BinPowWrapped: "pow.w",
	ast.BinShl: "shl", ast.BinShlWrapped: "shl.w",
	ast.BinShr: "shr", ast.BinShrWrapped: "shr.w",
	ast.BinBitAnd: "and", ast.BinBitOr: "or", ast.BinBitXor: "xor",
	ast.BinAnd: "and", ast.BinOr: "or",
	ast.BinEq: "is.eq", ast.BinNeq: "is.neq",
	ast.BinLt: "lt", ast.BinLe: "lte", ast.BinGt: "gt", ast.BinGe: "gte",
}

func binaryMnemonic(op ast.BinaryOp) string {
	if m, ok := binaryMnemonics[op]; ok {
		return m
	}
	return "op?"
}

var unaryMnemonics = map[ast.UnaryOp]string{
	ast.UnaryNot: "not", ast.UnaryNegate: "neg",
	ast.UnarySquare: "square", ast.UnarySquareRoot: "sqrt",
	ast.UnaryAbs: "abs", ast.UnaryAbsWrapped: "abs.w",
	ast.UnaryDouble: "double", ast.UnaryInverse: "inv",
	ast.UnaryToXCoordinate: "to_x_coordinate", ast.UnaryToYCoordinate: "to_y_coordinate",
}

func unaryMnemonic(op ast.UnaryOp) string {
	if m, ok := unaryMnemonics[op]; ok {
		return m
	}
	return "op?"
}
