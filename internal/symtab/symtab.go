// Package symtab implements the symbol table (C3): a tree of lexical
// scopes rooted at a program, plus a program/location-scoped registry of
// functions, structs, records, interfaces, and mappings (spec.md §3
// "Symbol table", §4.2).
package symtab

import (
	"fmt"

	deadlock "github.com/sasha-s/go-deadlock"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/ids"
	"github.com/leo-lang/avmc/internal/types"
)

// DeclarationKind distinguishes how a local variable was introduced.
type DeclarationKind int

const (
	DeclConst DeclarationKind = iota
	DeclMut
	DeclInputOf // carries the Mode it was declared with
)

// VariableSymbol is one lexically-scoped binding.
type VariableSymbol struct {
	Type        types.Type
	Span        ast.Span
	Declaration DeclarationKind
	Mode        ast.Mode // meaningful only when Declaration == DeclInputOf
}

// Location addresses a program-scoped definition by a dotted path,
// supporting nested resolution (spec.md §3: "path is a list of
// symbols").
type Location struct {
	Program string
	Path    []string
}

func (l Location) key() string {
	s := l.Program
	for _, p := range l.Path {
		s += "::" + p
	}
	return s
}

// Scope is one lexical scope: a flat map of local variables plus child
// scopes keyed by the NodeId of the block that introduced them.
type Scope struct {
	parent   *Scope
	vars     map[string]VariableSymbol
	children map[ids.NodeId]*Scope
}

func newScope(parent *Scope) *Scope {
	return &Scope{parent: parent, vars: make(map[string]VariableSymbol), children: make(map[ids.NodeId]*Scope)}
}

// Table is the root symbol table for one program, also holding that
// program's registries.
type Table struct {
	mu deadlock.Mutex // guards the program-scoped registries below

	root    *Scope
	current *Scope

	functions  map[string]*ast.Function
	composites map[string]*ast.CompositeDecl
	interfaces map[string]*ast.InterfaceDecl
	mappings   map[string]*ast.MappingDecl
	globals    map[string]ast.Expr

	flattenedInterfaces map[string][]ast.FunctionPrototype
	flattenedRecords    map[string][]ast.RecordPrototype
}

// New returns an empty, single-program Table.
func New() *Table {
	root := newScope(nil)
	return &Table{
		root:                root,
		current:             root,
		functions:           make(map[string]*ast.Function),
		composites:          make(map[string]*ast.CompositeDecl),
		interfaces:          make(map[string]*ast.InterfaceDecl),
		mappings:            make(map[string]*ast.MappingDecl),
		globals:             make(map[string]ast.Expr),
		flattenedInterfaces: make(map[string][]ast.FunctionPrototype),
		flattenedRecords:    make(map[string][]ast.RecordPrototype),
	}
}

// DuplicateVariableError is returned by InsertVariable when name already
// exists in the current scope (spec.md §4.2).
type DuplicateVariableError struct{ Name string }

func (e *DuplicateVariableError) Error() string {
	return fmt.Sprintf("symtab: duplicate variable %q in current scope", e.Name)
}

// InsertVariable adds name to the current scope.
func (t *Table) InsertVariable(name string, sym VariableSymbol) error {
	if _, exists := t.current.vars[name]; exists {
		return &DuplicateVariableError{Name: name}
	}
	t.current.vars[name] = sym
	return nil
}

// LookupVariable walks the scope chain from current to root.
func (t *Table) LookupVariable(name string) (VariableSymbol, bool) {
	for s := t.current; s != nil; s = s.parent {
		if sym, ok := s.vars[name]; ok {
			return sym, true
		}
	}
	return VariableSymbol{}, false
}

// IsLocalToOrInChildScope reports whether name is bound in the scope
// associated with blockID or any of its descendants (spec.md §4.2). No
// pass in this module calls it.
func (t *Table) IsLocalToOrInChildScope(blockID ids.NodeId, name string) bool {
	scope, ok := t.findScope(t.root, blockID)
	if !ok {
		return false
	}
	return scopeHasLocal(scope, name)
}

func (t *Table) findScope(from *Scope, blockID ids.NodeId) (*Scope, bool) {
	if s, ok := from.children[blockID]; ok {
		return s, true
	}
	for _, child := range from.children {
		if s, ok := t.findScope(child, blockID); ok {
			return s, true
		}
	}
	return nil, false
}

func scopeHasLocal(s *Scope, name string) bool {
	if _, ok := s.vars[name]; ok {
		return true
	}
	for _, child := range s.children {
		if scopeHasLocal(child, name) {
			return true
		}
	}
	return false
}

// InScope enters the child scope associated with blockID (creating it if
// new), runs f, then restores the previous current scope.
func (t *Table) InScope(blockID ids.NodeId, f func()) {
	child, ok := t.current.children[blockID]
	if !ok {
		child = newScope(t.current)
		t.current.children[blockID] = child
	}
	prev := t.current
	t.current = child
	f()
	t.current = prev
}

// ---- program-scoped registries ----

// InsertFunction registers fn under its program-local name.
func (t *Table) InsertFunction(fn *ast.Function) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.functions[fn.Name] = fn
}

// LookupFunction performs an exact program-qualified lookup.
func (t *Table) LookupFunction(loc Location) (*ast.Function, bool) {
	if len(loc.Path) != 1 {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fn, ok := t.functions[loc.Path[0]]
	return fn, ok
}

// InsertComposite registers a struct or record declaration.
func (t *Table) InsertComposite(c *ast.CompositeDecl) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.composites[c.Name] = c
}

// LookupStruct / LookupRecord both resolve through the same registry;
// the Kind field distinguishes them on lookup.
func (t *Table) LookupStruct(loc Location) (*ast.CompositeDecl, bool) {
	if len(loc.Path) != 1 {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.composites[loc.Path[0]]
	if !ok || c.Kind != ast.KindStruct {
		return nil, false
	}
	return c, true
}

func (t *Table) LookupRecord(loc Location) (*ast.CompositeDecl, bool) {
	if len(loc.Path) != 1 {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.composites[loc.Path[0]]
	if !ok || c.Kind != ast.KindRecord {
		return nil, false
	}
	return c, true
}

// LookupCompositeByField finds the struct or record declaring a field
// named member, used by write-transforming (C9) to recover field order
// when rebuilding a composite after a single-member write. Iteration
// order over the registry is unspecified; a program with two composites
// sharing a field name only reaches this path if the checker already
// resolved the write unambiguously against one of them.
func (t *Table) LookupCompositeByField(member string) (*ast.CompositeDecl, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.composites {
		for _, f := range c.Fields {
			if f.Name == member {
				return c, true
			}
		}
	}
	return nil, false
}

// InsertInterface registers an interface declaration.
func (t *Table) InsertInterface(i *ast.InterfaceDecl) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interfaces[i.Name] = i
}

func (t *Table) LookupInterface(loc Location) (*ast.InterfaceDecl, bool) {
	if len(loc.Path) != 1 {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.interfaces[loc.Path[0]]
	return i, ok
}

// InsertMapping registers a mapping declaration.
func (t *Table) InsertMapping(m *ast.MappingDecl) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mappings[m.Name] = m
}

func (t *Table) LookupMapping(loc Location) (*ast.MappingDecl, bool) {
	if len(loc.Path) != 1 {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.mappings[loc.Path[0]]
	return m, ok
}

// InsertGlobalConst registers a program-scoped constant's defining
// expression.
func (t *Table) InsertGlobalConst(name string, value ast.Expr) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.globals[name] = value
}

// LookupConst returns the defining expression of a program-scoped
// global constant (spec.md §4.2). Local consts are not resolved: their
// symbols carry no value, so a name bound only on the scope chain
// yields (nil, false). Only the globals lookup takes the registry lock.
func (t *Table) LookupConst(name string) (ast.Expr, bool) {
	for s := t.current; s != nil; s = s.parent {
		if sym, ok := s.vars[name]; ok && sym.Declaration == DeclConst {
			// Local const values are threaded through the const-propagation
			// binding map, not the symbol table; the symbol table only
			// confirms the declaration kind here.
			_ = sym
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := t.globals[name]; ok {
		return v, true
	}
	return nil, false
}
