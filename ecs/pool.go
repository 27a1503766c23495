package ecs

import "fmt"

// iColumn is a type-erased column of an archetype.
type iColumn interface {
	get(i int) any
	set(i int, item any) error
	clear(i int)
	resize(n int)
	capacity() int
	copyRow(dst iColumn, dstRow, srcRow int)
}

// Pool is a resizable column of T values. Archetypes keep one Pool per
// component type plus one for the entity handles living in it.
//
// A Pool does no bounds checking beyond its raw capacity and never moves its
// own slots around; the owning archetype decides which rows are live.
type Pool[T any] struct {
	items []T
}

func newPool[T any](capacity int) *Pool[T] {
	return &Pool[T]{items: make([]T, capacity)}
}

// At returns a pointer to slot i. The pointer is invalidated by the next
// resize of the pool.
func (p *Pool[T]) At(i int) *T {
	return &p.items[i]
}

// Get returns the value in slot i.
func (p *Pool[T]) Get(i int) T {
	return p.items[i]
}

// Set writes v into slot i.
func (p *Pool[T]) Set(i int, v T) {
	p.items[i] = v
}

// Clear resets slot i to the zero value of T.
func (p *Pool[T]) Clear(i int) {
	var zero T
	p.items[i] = zero
}

// Cap returns the number of allocated slots.
func (p *Pool[T]) Cap() int {
	return len(p.items)
}

// Resize reallocates the pool to n slots, keeping the first min(old, n).
func (p *Pool[T]) Resize(n int) {
	items := make([]T, n)
	copy(items, p.items)
	p.items = items
}

// Slice returns the first n slots. Writes through the slice are visible in
// the pool until it is resized.
func (p *Pool[T]) Slice(n int) []T {
	return p.items[:n]
}

func (p *Pool[T]) get(i int) any {
	return &p.items[i]
}

// set accepts either T or *T, matching what callers of the type-erased
// spawn path tend to pass.
func (p *Pool[T]) set(i int, item any) error {
	switch v := item.(type) {
	case T:
		p.items[i] = v
	case *T:
		if v == nil {
			return fmt.Errorf("%w: nil %T", ErrTypeMismatch, item)
		}
		p.items[i] = *v
	default:
		var zero T
		return fmt.Errorf("%w: got %T, want %T", ErrTypeMismatch, item, zero)
	}
	return nil
}

func (p *Pool[T]) clear(i int) {
	p.Clear(i)
}

func (p *Pool[T]) resize(n int) {
	p.Resize(n)
}

func (p *Pool[T]) capacity() int {
	return len(p.items)
}

// copyRow copies slot srcRow of p into slot dstRow of dst, which must be a
// column of the same type.
func (p *Pool[T]) copyRow(dst iColumn, dstRow, srcRow int) {
	dst.(*Pool[T]).items[dstRow] = p.items[srcRow]
}

func (p *Pool[T]) String() string {
	var zero T
	return fmt.Sprintf("Pool[%T](%d)", zero, len(p.items))
}
