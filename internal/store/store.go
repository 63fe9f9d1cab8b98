package store

import (
	"context"

	"examdesk/seating/internal/model"
)

// Store holds the committed allocation per slot. It is the only shared
// mutable resource in the core and the sole serialization point: commits
// for one slot are totally ordered, slots never block each other, and a
// reader observes either the old allocation or the new one, never a mix.
type Store interface {
	// Commit atomically replaces the current allocation for the slot and
	// returns the new version. Versions increase monotonically per slot.
	Commit(ctx context.Context, slot model.Slot, assignments []model.Assignment) (int64, error)

	// Lookup returns the committed assignments for one room in one slot,
	// in seat-number order. Empty when the room received no seats.
	Lookup(ctx context.Context, roomNo string, slot model.Slot) ([]model.Assignment, error)

	// CurrentVersion returns the committed version for the slot, zero when
	// nothing has been committed yet.
	CurrentVersion(ctx context.Context, slot model.Slot) (int64, error)
}
