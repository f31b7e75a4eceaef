// Package ids provides the monotonic NodeId allocator shared by every AST
// node in the compiler core, plus the side-tables keyed by NodeId that
// passes use instead of storing types and spans inline on nodes.
package ids

import "fmt"

// NodeId is an opaque, monotonically increasing identifier assigned to
// every AST node at construction time. Two nodes never share an id within
// a single compiler-state lifetime.
type NodeId uint64

// Invalid is the zero value; no node builder ever hands this out.
const Invalid NodeId = 0

func (id NodeId) String() string {
	return fmt.Sprintf("n%d", uint64(id))
}

// IsValid reports whether id was actually allocated by a Builder.
func (id NodeId) IsValid() bool {
	return id != Invalid
}

// Builder hands out fresh, unique NodeIds. It is owned by a single
// compiler-state instance and must not be shared across goroutines;
// spec.md §5 places the core pipeline itself strictly single-threaded.
type Builder struct {
	next NodeId
}

// NewBuilder returns a Builder whose first allocation is NodeId(1).
func NewBuilder() *Builder {
	return &Builder{next: 1}
}

// Next allocates and returns a fresh NodeId.
func (b *Builder) Next() NodeId {
	id := b.next
	b.next++
	return id
}

// Peek reports the NodeId that the next call to Next will return, without
// consuming it.
func (b *Builder) Peek() NodeId {
	return b.next
}
