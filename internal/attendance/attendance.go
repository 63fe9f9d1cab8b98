package attendance

import (
	"context"

	"examdesk/seating/internal/model"
)

// Recorder seeds per-seat check-in records from a committed allocation and
// serves them back to the attendance collaborator. Seeding replaces the
// slot's prior records wholesale, mirroring the allocation replace; the
// collaborator mutates only the presence flag, never the seat data.
type Recorder interface {
	Seed(ctx context.Context, slot model.Slot, assignments []model.Assignment) error
	ListByRoom(ctx context.Context, roomNo string, slot model.Slot) ([]model.AttendanceRecord, error)
}
