// Package credctx scopes caller credentials to the request that supplied them.
//
// Every inbound request gets its own Cell. The cell travels in the request
// context, so concurrent requests never observe each other's credentials and a
// cell cleared at the end of its request reads as empty from then on.
package credctx

import (
	"context"
	"sync"
)

// Cell holds the credentials of exactly one request.
type Cell[T any] struct {
	mu       sync.RWMutex
	value    T
	occupied bool
}

// NewCell returns an empty cell.
func NewCell[T any]() *Cell[T] {
	return &Cell[T]{}
}

// Install stores v, replacing whatever the cell held.
func (c *Cell[T]) Install(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	c.occupied = true
}

// Read returns the stored value, or false when the cell is empty.
func (c *Cell[T]) Read() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.occupied
}

// Clear empties the cell. Safe to call any number of times.
func (c *Cell[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.value = zero
	c.occupied = false
}

type cellKey[T any] struct{}

// WithCell returns a child of ctx through which cell can be reached.
func WithCell[T any](ctx context.Context, cell *Cell[T]) context.Context {
	return context.WithValue(ctx, cellKey[T]{}, cell)
}

// CellFrom returns the cell bound to ctx, if any.
func CellFrom[T any](ctx context.Context) (*Cell[T], bool) {
	if ctx == nil {
		return nil, false
	}
	cell, ok := ctx.Value(cellKey[T]{}).(*Cell[T])
	return cell, ok && cell != nil
}

// Read returns the credentials installed for the request ctx belongs to.
func Read[T any](ctx context.Context) (T, bool) {
	cell, ok := CellFrom[T](ctx)
	if !ok {
		var zero T
		return zero, false
	}
	return cell.Read()
}

// Scope installs v into a fresh cell bound to a child of ctx. The returned
// release func clears the cell and must be deferred by the caller.
func Scope[T any](ctx context.Context, v T) (context.Context, func()) {
	cell := NewCell[T]()
	cell.Install(v)
	return WithCell(ctx, cell), cell.Clear
}
