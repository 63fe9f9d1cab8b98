package attendance

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"examdesk/seating/internal/model"
)

// Memory keeps seeded records in process, used by handler tests.
type Memory struct {
	mu      sync.RWMutex
	records map[model.Slot][]model.AttendanceRecord
}

func NewMemory() *Memory {
	return &Memory{records: make(map[model.Slot][]model.AttendanceRecord)}
}

func (r *Memory) Seed(ctx context.Context, slot model.Slot, assignments []model.Assignment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	records := make([]model.AttendanceRecord, 0, len(assignments))
	for _, a := range assignments {
		records = append(records, model.AttendanceRecord{
			ID:        uuid.NewString(),
			StudentID: a.StudentID,
			ExamID:    a.ExamID,
			RoomNo:    a.RoomNo,
			SeatNo:    a.SeatNo,
			Slot:      a.Slot,
		})
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[slot] = records
	return nil
}

func (r *Memory) ListByRoom(ctx context.Context, roomNo string, slot model.Slot) ([]model.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []model.AttendanceRecord
	for _, record := range r.records[slot] {
		if record.RoomNo == roomNo {
			matched = append(matched, record)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].SeatNo < matched[j].SeatNo })
	return matched, nil
}
