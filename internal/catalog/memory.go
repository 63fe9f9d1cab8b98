package catalog

import (
	"context"
	"sort"

	"examdesk/seating/internal/model"
)

// Memory serves fixed reference data, used by handler and pipeline tests.
type Memory struct {
	Rooms []model.Room
	Exams []model.Exam
}

func (c *Memory) GetRoomsOrderedByNumber(ctx context.Context) ([]model.Room, error) {
	rooms := make([]model.Room, len(c.Rooms))
	copy(rooms, c.Rooms)
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].RoomNo < rooms[j].RoomNo })
	return rooms, nil
}

func (c *Memory) GetExamsInSlot(ctx context.Context, slot model.Slot) ([]model.Exam, error) {
	var exams []model.Exam
	for _, exam := range c.Exams {
		if exam.Slot == slot {
			exams = append(exams, exam)
		}
	}
	return exams, nil
}
