// Package entity provides a shared handle to mutable state that commands
// borrow one at a time.
package entity

import (
	"sync/atomic"

	"github.com/goliatone/go-errors"
)

const CodeBorrowConflict = "BORROW_CONFLICT"

// ErrBorrowConflict is returned when a cell is accessed while another
// mutable borrow is outstanding.
var ErrBorrowConflict = errors.New("entity already borrowed", errors.CategoryConflict).
	WithTextCode(CodeBorrowConflict)

// Cell holds a value shared by several commands. Mutable access is exclusive
// and checked at runtime: a conflicting borrow fails immediately instead of
// blocking.
type Cell[T any] struct {
	name     string
	value    T
	borrowed atomic.Bool
}

// NewCell creates a cell named name holding v.
func NewCell[T any](name string, v T) *Cell[T] {
	return &Cell[T]{name: name, value: v}
}

func (c *Cell[T]) Name() string { return c.name }

// Borrow grants exclusive mutable access. The returned release func must be
// called exactly once; calling it again is a no-op.
func (c *Cell[T]) Borrow() (*T, func(), error) {
	if !c.borrowed.CompareAndSwap(false, true) {
		return nil, func() {}, c.conflict()
	}
	var released atomic.Bool
	return &c.value, func() {
		if released.CompareAndSwap(false, true) {
			c.borrowed.Store(false)
		}
	}, nil
}

// With borrows the value for the duration of fn.
func (c *Cell[T]) With(fn func(*T) error) error {
	v, release, err := c.Borrow()
	if err != nil {
		return err
	}
	defer release()
	return fn(v)
}

// Load returns a copy of the value. It fails while a mutable borrow is
// outstanding.
func (c *Cell[T]) Load() (T, error) {
	if c.borrowed.Load() {
		var zero T
		return zero, c.conflict()
	}
	return c.value, nil
}

// Borrowed reports whether a mutable borrow is outstanding.
func (c *Cell[T]) Borrowed() bool {
	return c.borrowed.Load()
}

func (c *Cell[T]) conflict() error {
	return ErrBorrowConflict.Clone().WithMetadata(map[string]any{
		"entity": c.name,
	})
}
