// Package check implements the type checker (C4, spec.md §4.3): a
// recursive-descent walk over the AST that accepts an optional expected
// type at each expression, returns the resolved type, and writes it to
// the type table. Grounded on the teacher's internal/elaborate package
// style (a single Elaborator/Checker struct, one method per node kind,
// switch-based dispatch) generalized from ailang's Hindley-Milner
// inference to Leo's mostly-nominal, mostly-checked (not inferred)
// type system.
package check

import (
	"fmt"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/diagnostics"
	"github.com/leo-lang/avmc/internal/symtab"
	"github.com/leo-lang/avmc/internal/tables"
	"github.com/leo-lang/avmc/internal/types"
)

// Checker walks one program's AST, writing resolved types into tt and
// buffering diagnostics into diag rather than aborting on the first
// error (spec.md §7: "Failures are accumulated in an error handler").
type Checker struct {
	sym  *symtab.Table
	tt   *tables.TypeTable
	diag *diagnostics.Handler

	// currentOutput/currentVariant describe the enclosing function, used
	// by Return checking.
	currentOutput  types.Type
	currentVariant ast.FunctionVariant
}

// New returns a Checker sharing sym's registries and writing into tt.
func New(sym *symtab.Table, tt *tables.TypeTable, diag *diagnostics.Handler) *Checker {
	return &Checker{sym: sym, tt: tt, diag: diag}
}

func (c *Checker) errorf(code string, span ast.Span, format string, args ...any) {
	c.diag.Emit(diagnostics.New(code, diagnostics.PhaseTypeCheck, fmt.Sprintf(format, args...), &span))
}

// CheckProgram registers every top-level item in the symbol table, then
// type-checks each function body and each interface-conformance
// requirement (spec.md §4.3's "Interfaces" rule).
func (c *Checker) CheckProgram(p *ast.Program) {
	for _, s := range p.Structs {
		c.sym.InsertComposite(s)
	}
	for _, r := range p.Records {
		c.sym.InsertComposite(r)
	}
	for _, i := range p.Interfaces {
		c.sym.InsertInterface(i)
	}
	for _, m := range p.Mappings {
		c.sym.InsertMapping(m)
	}
	for _, fn := range p.Functions {
		c.sym.InsertFunction(fn)
	}
	for _, g := range p.Globals {
		c.sym.InsertGlobalConst(g.Name, g.Value)
		c.checkExpr(g.Value, types.FromTypeExpr(g.Type))
	}
	for _, fn := range p.Functions {
		c.checkFunction(fn)
	}
	c.CheckInterfaceConformance(p)
}

func (c *Checker) checkFunction(fn *ast.Function) {
	c.currentVariant = fn.Variant
	c.currentOutput = types.FromTypeExpr(fn.OutputType)

	for _, param := range fn.ConstParams {
		c.sym.InsertVariable(param.Name, symtab.VariableSymbol{
			Type: types.FromTypeExpr(param.Type), Declaration: symtab.DeclConst,
		})
	}
	for _, in := range fn.Inputs {
		c.sym.InsertVariable(in.Name, symtab.VariableSymbol{
			Type: types.FromTypeExpr(in.Type), Declaration: symtab.DeclInputOf, Mode: in.Mode,
		})
	}
	c.checkBlock(fn.Body)
}

// checkBlock type-checks every statement and reports TYP004 if any
// statement follows a Return (spec.md §4.3: "no statements may follow a
// return"). It returns whether the block is guaranteed to return.
func (c *Checker) checkBlock(b *ast.Block) bool {
	terminated := false
	for _, s := range b.Statements {
		if terminated {
			c.errorf(diagnostics.TYP004UnreachableCode, s.Span(), "unreachable statement after return")
		}
		if c.checkStmt(s) {
			terminated = true
		}
	}
	return terminated
}

func (c *Checker) checkStmt(s ast.Stmt) (returns bool) {
	switch n := s.(type) {
	case *ast.Definition:
		var expected types.Type
		if n.Type != nil {
			expected = types.FromTypeExpr(n.Type)
		}
		vt := c.checkExpr(n.Value, expected)
		if expected == nil {
			expected = vt
		}
		for _, name := range n.Place.Names {
			c.sym.InsertVariable(name, symtab.VariableSymbol{Type: expected, Span: n.Span(), Declaration: symtab.DeclMut})
		}
		return false
	case *ast.Assign:
		placeType := c.checkPlace(n.Place, n.Span())
		c.checkExpr(n.Value, placeType)
		return false
	case *ast.Block:
		return c.checkBlock(n)
	case *ast.Conditional:
		c.checkExpr(n.Cond, types.Bool{})
		thenReturns := c.checkBlock(n.Then)
		elseReturns := false
		if n.Else != nil {
			elseReturns = c.checkStmt(n.Else)
		}
		return thenReturns && elseReturns && n.Else != nil
	case *ast.Iteration:
		c.sym.InsertVariable(n.LoopVar, symtab.VariableSymbol{Type: types.Integer{Int: n.VarType}, Declaration: symtab.DeclConst})
		c.checkExpr(n.Start, types.Integer{Int: n.VarType})
		c.checkExpr(n.Stop, types.Integer{Int: n.VarType})
		c.checkBlock(n.Body)
		return false
	case *ast.Return:
		got := c.checkExpr(n.Value, c.currentOutput)
		if c.currentOutput != nil && !types.Coercible(got, c.currentOutput) {
			c.errorf(diagnostics.TYP007NotCoercible, n.Span(), "cannot return %s where %s is expected", got, c.currentOutput)
		}
		return true
	case *ast.Assert:
		for _, a := range n.Args {
			c.checkExpr(a, nil)
		}
		if n.Kind != ast.AssertTrue && len(n.Args) == 2 {
			lt := c.checkExpr(n.Args[0], nil)
			rt := c.checkExpr(n.Args[1], nil)
			if !types.UserEqual(lt, rt) {
				c.errorf(diagnostics.TYP001OperandMismatch, n.Span(), "assert_eq/assert_neq operand type mismatch: %s vs %s", lt, rt)
			}
		}
		return false
	case *ast.ExpressionStatement:
		c.checkExpr(n.Value, nil)
		return false
	case *ast.Const:
		vt := c.checkExpr(n.Value, nil)
		c.sym.InsertVariable(n.Name, symtab.VariableSymbol{Type: vt, Declaration: symtab.DeclConst})
		return false
	case *ast.Empty:
		return false
	default:
		return false
	}
}

// checkPlace resolves an assignment's left-hand side to the type the
// right-hand side must coerce to, reporting TYP006 if the base name is
// a const (spec.md §4.5 calls this the lvalue check, run
// here too since Assign predates C6's desugar in the surface AST).
func (c *Checker) checkPlace(p ast.Place, span ast.Span) types.Type {
	if len(p.Names) == 0 {
		return types.Err{}
	}
	sym, ok := c.sym.LookupVariable(p.Names[0])
	if !ok {
		c.errorf(diagnostics.RES001UnknownSymbol, span, "unknown variable %q", p.Names[0])
		return types.Err{}
	}
	if sym.Declaration == symtab.DeclConst {
		c.errorf(diagnostics.TYP006NotAnLvalue, span, "cannot assign to const %q", p.Names[0])
	}
	t := sym.Type
	for _, acc := range p.Accessors {
		switch acc.Kind {
		case ast.AccessMember:
			t = c.memberType(t, acc.Member, span)
		case ast.AccessTuple:
			if tup, ok := t.(types.Tuple); ok && acc.Index < len(tup.Elts) {
				t = tup.Elts[acc.Index]
			} else {
				c.errorf(diagnostics.TYP002ArityMismatch, span, "tuple index %d out of range for %s", acc.Index, t)
				t = types.Err{}
			}
		case ast.AccessArray:
			c.checkExpr(acc.Expr, nil)
			if arr, ok := t.(types.Array); ok {
				t = arr.Elt
			} else {
				c.errorf(diagnostics.TYP001OperandMismatch, span, "cannot index non-array type %s", t)
				t = types.Err{}
			}
		}
	}
	return t
}

func (c *Checker) memberType(t types.Type, member string, span ast.Span) types.Type {
	comp, ok := t.(types.Composite)
	if !ok {
		if _, isErr := t.(types.Err); !isErr {
			c.errorf(diagnostics.TYP001OperandMismatch, span, "cannot access member %q on non-composite type %s", member, t)
		}
		return types.Err{}
	}
	decl, ok := c.sym.LookupStruct(symtab.Location{Path: []string{comp.Path}})
	if !ok {
		decl, ok = c.sym.LookupRecord(symtab.Location{Path: []string{comp.Path}})
	}
	if !ok {
		c.errorf(diagnostics.RES001UnknownSymbol, span, "unknown composite %q", comp.Path)
		return types.Err{}
	}
	for _, f := range decl.Fields {
		if f.Name == member {
			return types.FromTypeExpr(f.Type)
		}
	}
	c.errorf(diagnostics.TYP005BadFieldSet, span, "composite %q has no field %q", comp.Path, member)
	return types.Err{}
}
