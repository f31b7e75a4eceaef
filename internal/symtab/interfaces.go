package symtab

import (
	"fmt"

	"github.com/leo-lang/avmc/internal/ast"
)

// maxInterfaceDepth bounds the depth-first cycle search over the parent
// graph (spec.md §4.2: "depth-bounded DFS with a visited set").
const maxInterfaceDepth = 64

// CycleError is returned when an interface's parent chain is cyclic.
type CycleError struct{ Chain []string }

func (e *CycleError) Error() string {
	return fmt.Sprintf("symtab: cyclic interface inheritance: %v", e.Chain)
}

// ConflictError is returned when two parent interfaces require
// incompatible prototypes for the same name.
type ConflictError struct{ Name string }

func (e *ConflictError) Error() string {
	return fmt.Sprintf("symtab: conflicting prototypes for %q across parent interfaces", e.Name)
}

// FlattenInterface computes the effective member set of interface
// `name`: the union of its own members with those of all transitive
// parents (spec.md §3 "Lifecycle", §4.2). Results are memoized by
// interface name; a cyclic parent chain is reported rather than
// recursed forever.
func (t *Table) FlattenInterface(name string) ([]ast.FunctionPrototype, []ast.RecordPrototype, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if fns, ok := t.flattenedInterfaces[name]; ok {
		return fns, t.flattenedRecords[name], nil
	}

	visited := make(map[string]bool)
	chain := []string{}
	fns, recs, err := t.flatten(name, visited, chain)
	if err != nil {
		return nil, nil, err
	}
	t.flattenedInterfaces[name] = fns
	t.flattenedRecords[name] = recs
	return fns, recs, nil
}

func (t *Table) flatten(name string, visited map[string]bool, chain []string) ([]ast.FunctionPrototype, []ast.RecordPrototype, error) {
	if len(chain) > maxInterfaceDepth {
		return nil, nil, &CycleError{Chain: append(chain, name)}
	}
	if visited[name] {
		return nil, nil, &CycleError{Chain: append(chain, name)}
	}
	visited[name] = true
	chain = append(chain, name)

	iface, ok := t.interfaces[name]
	if !ok {
		return nil, nil, fmt.Errorf("symtab: unknown interface %q", name)
	}

	fnByName := make(map[string]ast.FunctionPrototype)
	recByName := make(map[string]ast.RecordPrototype)
	var fnOrder, recOrder []string

	for _, parent := range iface.Parents {
		parentVisited := make(map[string]bool, len(visited))
		for k, v := range visited {
			parentVisited[k] = v
		}
		pfns, precs, err := t.flatten(parent, parentVisited, chain)
		if err != nil {
			return nil, nil, err
		}
		for _, f := range pfns {
			if existing, seen := fnByName[f.Name]; seen {
				if !prototypesCompatible(existing, f) {
					return nil, nil, &ConflictError{Name: f.Name}
				}
				continue
			}
			fnByName[f.Name] = f
			fnOrder = append(fnOrder, f.Name)
		}
		for _, r := range precs {
			if existing, seen := recByName[r.Name]; seen {
				if !recordPrototypesCompatible(existing, r) {
					return nil, nil, &ConflictError{Name: r.Name}
				}
				continue
			}
			recByName[r.Name] = r
			recOrder = append(recOrder, r.Name)
		}
	}

	for _, f := range iface.Functions {
		if existing, seen := fnByName[f.Name]; seen {
			if !prototypesCompatible(existing, f) {
				return nil, nil, &ConflictError{Name: f.Name}
			}
		} else {
			fnOrder = append(fnOrder, f.Name)
		}
		fnByName[f.Name] = f
	}
	for _, r := range iface.Records {
		if existing, seen := recByName[r.Name]; seen {
			if !recordPrototypesCompatible(existing, r) {
				return nil, nil, &ConflictError{Name: r.Name}
			}
		} else {
			recOrder = append(recOrder, r.Name)
		}
		recByName[r.Name] = r
	}

	fns := make([]ast.FunctionPrototype, len(fnOrder))
	for i, n := range fnOrder {
		fns[i] = fnByName[n]
	}
	recs := make([]ast.RecordPrototype, len(recOrder))
	for i, n := range recOrder {
		recs[i] = recByName[n]
	}
	return fns, recs, nil
}

func prototypesCompatible(a, b ast.FunctionPrototype) bool {
	if len(a.Inputs) != len(b.Inputs) || len(a.ConstParams) != len(b.ConstParams) {
		return false
	}
	for i := range a.Inputs {
		if a.Inputs[i].Mode != b.Inputs[i].Mode {
			return false
		}
	}
	return true
}

func recordPrototypesCompatible(a, b ast.RecordPrototype) bool {
	if len(a.Fields) != len(b.Fields) {
		return false
	}
	for i := range a.Fields {
		if a.Fields[i].Name != b.Fields[i].Name {
			return false
		}
	}
	return true
}
