package workspace

import "fmt"

// fieldState tracks where an optimistic mutation stands.
type fieldState int

const (
	fieldCommitted fieldState = iota
	fieldPending
)

// Field models one optimistically mutated value as an explicit two-state
// transition: committed(value) → pending(next, prev) → committed again,
// either with the backend's authoritative value (Commit) or the snapshot
// taken before staging (Rollback). Making the transition explicit keeps
// the rollback path mechanically obvious and testable in isolation.
type Field[T any] struct {
	state fieldState
	value T
	prev  T
}

// NewField creates a field in the committed state.
func NewField[T any](value T) *Field[T] {
	return &Field[T]{state: fieldCommitted, value: value}
}

// Value returns the currently visible value. While pending this is the
// optimistically applied value.
func (f *Field[T]) Value() T {
	return f.value
}

// Pending reports whether a mutation is in flight.
func (f *Field[T]) Pending() bool {
	return f.state == fieldPending
}

// Stage applies next optimistically, snapshotting the current value for
// rollback. Staging while already pending is a programming error.
func (f *Field[T]) Stage(next T) error {
	if f.state == fieldPending {
		return fmt.Errorf("field already has a pending mutation")
	}
	f.prev = f.value
	f.value = next
	f.state = fieldPending
	return nil
}

// Commit settles the pending mutation with the backend's authoritative
// value, which may differ from what was staged.
func (f *Field[T]) Commit(authoritative T) {
	f.value = authoritative
	f.state = fieldCommitted
}

// Rollback restores the pre-mutation snapshot and returns it.
func (f *Field[T]) Rollback() T {
	if f.state == fieldPending {
		f.value = f.prev
		f.state = fieldCommitted
	}
	return f.value
}
