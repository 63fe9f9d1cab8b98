package allocate

import (
	"fmt"
	"sort"

	"examdesk/seating/internal/model"
)

const (
	ErrInsufficientCapacity = "insufficient_capacity"
	ErrNoRooms              = "no_rooms"
)

// Error is a fatal allocation failure; no assignments are produced.
type Error struct {
	Code     string `json:"code"`
	Needed   int    `json:"needed,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
}

func (e *Error) Error() string {
	if e.Code == ErrInsufficientCapacity {
		return fmt.Sprintf("%s: need %d seats, have %d", e.Code, e.Needed, e.Capacity)
	}
	return e.Code
}

// AdjacencyWarning reports two neighbouring seats in one room holding
// students sitting the same exam. Non-fatal: an unavoidable clash must
// not block exam administration.
type AdjacencyWarning struct {
	RoomNo     string `json:"room_no"`
	SeatA      int    `json:"seat_a"`
	SeatB      int    `json:"seat_b"`
	ExamID     string `json:"exam_id"`
	CourseCode string `json:"course_code"`
}

type Result struct {
	Assignments []model.Assignment
	Warnings    []AdjacencyWarning
}

// Allocate seats every enrollment for one slot. The algorithm is pure and
// deterministic: identical input always yields identical assignments, seat
// numbers included, so re-running for audit or documents is safe.
//
// Enrollments are grouped by exam, each group sorted by student ID, and
// the groups are consumed round-robin (ascending exam ID) into a single
// interleaved sequence. That sequence is laid into rooms ordered by room
// number, seats 1..capacity. Interleaving spreads same-exam students
// apart, which is what satisfies the anti-adjacency rule; a final scan
// reports any residual clashes as warnings.
func Allocate(enrollments []model.Enrollment, rooms []model.Room, slot model.Slot) (Result, error) {
	if len(enrollments) == 0 {
		return Result{}, nil
	}
	if len(rooms) == 0 {
		return Result{}, &Error{Code: ErrNoRooms, Needed: len(enrollments)}
	}

	ordered := make([]model.Room, len(rooms))
	copy(ordered, rooms)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].RoomNo < ordered[j].RoomNo })

	total := 0
	for _, room := range ordered {
		total += room.Capacity
	}
	if total < len(enrollments) {
		return Result{}, &Error{Code: ErrInsufficientCapacity, Needed: len(enrollments), Capacity: total}
	}

	sequence := interleave(enrollments)

	assignments := make([]model.Assignment, 0, len(sequence))
	next := 0
	for _, room := range ordered {
		for seat := 1; seat <= room.Capacity && next < len(sequence); seat++ {
			e := sequence[next]
			next++
			assignments = append(assignments, model.Assignment{
				StudentID:    e.StudentID,
				StudentName:  e.StudentName,
				StudentBatch: e.StudentBatch,
				ExamID:       e.ExamID,
				CourseCode:   e.CourseCode,
				RoomNo:       room.RoomNo,
				SeatNo:       seat,
				Slot:         slot,
			})
		}
	}

	return Result{Assignments: assignments, Warnings: scanAdjacency(assignments)}, nil
}

// interleave builds the global seating sequence: one student from each
// exam group per pass, groups cycled in ascending exam-ID order, students
// within a group in ascending student-ID order.
func interleave(enrollments []model.Enrollment) []model.Enrollment {
	groups := map[string][]model.Enrollment{}
	for _, e := range enrollments {
		groups[e.ExamID] = append(groups[e.ExamID], e)
	}
	examIDs := make([]string, 0, len(groups))
	for examID, group := range groups {
		sort.Slice(group, func(i, j int) bool { return group[i].StudentID < group[j].StudentID })
		examIDs = append(examIDs, examID)
	}
	sort.Strings(examIDs)

	sequence := make([]model.Enrollment, 0, len(enrollments))
	offsets := make(map[string]int, len(groups))
	for len(sequence) < len(enrollments) {
		for _, examID := range examIDs {
			group := groups[examID]
			if offsets[examID] >= len(group) {
				continue
			}
			sequence = append(sequence, group[offsets[examID]])
			offsets[examID]++
		}
	}
	return sequence
}

// scanAdjacency walks each room's seat list and flags neighbouring seats
// occupied by students sitting the same exam. Assignments arrive in room
// then seat order, which the layout loop guarantees.
func scanAdjacency(assignments []model.Assignment) []AdjacencyWarning {
	var warnings []AdjacencyWarning
	for i := 1; i < len(assignments); i++ {
		prev, cur := assignments[i-1], assignments[i]
		if prev.RoomNo != cur.RoomNo {
			continue
		}
		if prev.ExamID == cur.ExamID {
			warnings = append(warnings, AdjacencyWarning{
				RoomNo:     cur.RoomNo,
				SeatA:      prev.SeatNo,
				SeatB:      cur.SeatNo,
				ExamID:     cur.ExamID,
				CourseCode: cur.CourseCode,
			})
		}
	}
	return warnings
}
