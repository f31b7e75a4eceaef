package check

import (
	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/diagnostics"
	"github.com/leo-lang/avmc/internal/symtab"
	"github.com/leo-lang/avmc/internal/types"
)

// CheckInterfaceConformance implements spec.md §4.3's "Interfaces" rule:
// every interface p declares itself a parent of (via Program.Parents)
// must be satisfied either by a same-signature function or a matching
// record declaration, checked on the user-type-equality relation.
// Grounded directly on check_interfaces/visitor.rs's
// check_program_implements_interface: flatten, then check each required
// function/record is present with an exact-match prototype.
func (c *Checker) CheckInterfaceConformance(p *ast.Program) {
	for _, parent := range p.Parents {
		fns, recs, err := c.sym.FlattenInterface(parent)
		if err != nil {
			if _, ok := err.(*symtab.CycleError); ok {
				c.errorf(diagnostics.RES004CyclicInterface, p.Span(), "%v", err)
			} else {
				c.errorf(diagnostics.RES001UnknownSymbol, p.Span(), "%v", err)
			}
			continue
		}
		for _, proto := range fns {
			fn, ok := c.sym.LookupFunction(symtab.Location{Path: []string{proto.Name}})
			if !ok {
				c.errorf(diagnostics.IFC001MissingFunction, p.Span(),
					"%s does not implement required function %q of interface %s", p.Name, proto.Name, parent)
				continue
			}
			if !functionMatchesPrototype(fn, proto) {
				c.errorf(diagnostics.IFC003SignatureMismatch, fn.Span(),
					"%s's %q does not match the signature required by interface %s", p.Name, proto.Name, parent)
			}
		}
		for _, proto := range recs {
			rec, ok := c.sym.LookupRecord(symtab.Location{Path: []string{proto.Name}})
			if !ok {
				c.errorf(diagnostics.IFC002MissingRecord, p.Span(),
					"%s does not declare record %q required by interface %s", p.Name, proto.Name, parent)
				continue
			}
			for _, pf := range proto.Fields {
				matched := false
				for _, rf := range rec.Fields {
					if rf.Name == pf.Name && types.UserEqual(types.FromTypeExpr(rf.Type), types.FromTypeExpr(pf.Type)) {
						matched = true
						break
					}
				}
				if !matched {
					c.errorf(diagnostics.IFC003SignatureMismatch, rec.Span(),
						"%s's record %q does not match the shape required by interface %s", p.Name, proto.Name, parent)
					break
				}
			}
		}
	}
}

func functionMatchesPrototype(fn *ast.Function, proto ast.FunctionPrototype) bool {
	if len(fn.Inputs) != len(proto.Inputs) || len(fn.ConstParams) != len(proto.ConstParams) {
		return false
	}
	for i := range fn.Inputs {
		if fn.Inputs[i].Name != proto.Inputs[i].Name || fn.Inputs[i].Mode != proto.Inputs[i].Mode {
			return false
		}
		if !types.UserEqual(types.FromTypeExpr(fn.Inputs[i].Type), types.FromTypeExpr(proto.Inputs[i].Type)) {
			return false
		}
	}
	for i := range fn.ConstParams {
		if !types.UserEqual(types.FromTypeExpr(fn.ConstParams[i].Type), types.FromTypeExpr(proto.ConstParams[i].Type)) {
			return false
		}
	}
	return types.UserEqual(types.FromTypeExpr(fn.OutputType), types.FromTypeExpr(proto.OutputType))
}
