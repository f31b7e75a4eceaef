// Package tables implements the NodeId-keyed side-tables spec.md §3
// names: the type table (expression id → resolved Type) and the span
// table (node id → source span). Keeping them out of the AST nodes
// themselves is what lets reconstructing reducers decide, per node,
// whether to preserve an id (and its table entries) or mint a fresh one.
package tables

import (
	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/ids"
	"github.com/leo-lang/avmc/internal/types"
)

// TypeTable maps an expression's NodeId to its resolved Type. Invariant
// (Testable Property 2): after type checking, every Expression node has
// an entry; passes that introduce new expressions must either copy the
// old entry or insert a new one consistent with the produced value.
type TypeTable struct {
	entries map[ids.NodeId]types.Type
}

// NewTypeTable returns an empty TypeTable.
func NewTypeTable() *TypeTable {
	return &TypeTable{entries: make(map[ids.NodeId]types.Type)}
}

// Set records t as the resolved type of id.
func (t *TypeTable) Set(id ids.NodeId, ty types.Type) {
	t.entries[id] = ty
}

// Get returns the resolved type of id, or (nil, false) if absent.
func (t *TypeTable) Get(id ids.NodeId) (types.Type, bool) {
	ty, ok := t.entries[id]
	return ty, ok
}

// MustGet returns the resolved type of id, panicking if absent — used
// only downstream of type checking where the invariant is guaranteed.
func (t *TypeTable) MustGet(id ids.NodeId) types.Type {
	ty, ok := t.entries[id]
	if !ok {
		panic("tables: missing type-table entry for " + id.String())
	}
	return ty
}

// Delete removes id's entry.
func (t *TypeTable) Delete(id ids.NodeId) {
	delete(t.entries, id)
}

// Len reports the number of recorded entries.
func (t *TypeTable) Len() int {
	return len(t.entries)
}

// SpanTable maps any node's NodeId to its source span.
type SpanTable struct {
	entries map[ids.NodeId]ast.Span
}

// NewSpanTable returns an empty SpanTable.
func NewSpanTable() *SpanTable {
	return &SpanTable{entries: make(map[ids.NodeId]ast.Span)}
}

// Set records sp as the span of id.
func (s *SpanTable) Set(id ids.NodeId, sp ast.Span) {
	s.entries[id] = sp
}

// Get returns the span of id, or the zero Span if absent.
func (s *SpanTable) Get(id ids.NodeId) (ast.Span, bool) {
	sp, ok := s.entries[id]
	return sp, ok
}
