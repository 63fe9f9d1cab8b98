package catalog

import (
	"context"

	"examdesk/seating/internal/model"
)

// Catalog reads long-lived reference data. CRUD on students, courses,
// exams and rooms happens elsewhere; the allocation core only reads.
type Catalog interface {
	GetRoomsOrderedByNumber(ctx context.Context) ([]model.Room, error)
	GetExamsInSlot(ctx context.Context, slot model.Slot) ([]model.Exam, error)
}
