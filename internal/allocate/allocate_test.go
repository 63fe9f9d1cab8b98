package allocate

import (
	"errors"
	"reflect"
	"strconv"
	"testing"

	"examdesk/seating/internal/model"
)

func enrollment(studentID, examID string) model.Enrollment {
	return model.Enrollment{StudentID: studentID, ExamID: examID, CourseCode: "C-" + examID}
}

func TestAllocateInterleavesAndWarns(t *testing.T) {
	// Five students in exam E1, one in E2, two rooms of three seats.
	enrollments := []model.Enrollment{
		enrollment("S01", "E1"),
		enrollment("S02", "E1"),
		enrollment("S03", "E1"),
		enrollment("S04", "E1"),
		enrollment("S05", "E1"),
		enrollment("S90", "E2"),
	}
	rooms := []model.Room{
		{RoomNo: "R2", Capacity: 3},
		{RoomNo: "R1", Capacity: 3},
	}

	result, err := Allocate(enrollments, rooms, model.SlotMorning)
	if err != nil {
		t.Fatalf("allocate error: %v", err)
	}
	if len(result.Assignments) != 6 {
		t.Fatalf("expected 6 assignments, got %d", len(result.Assignments))
	}

	type seat struct {
		room    string
		seatNo  int
		student string
	}
	var got []seat
	for _, a := range result.Assignments {
		got = append(got, seat{a.RoomNo, a.SeatNo, a.StudentID})
		if a.Slot != model.SlotMorning {
			t.Fatalf("expected slot on assignment, got %s", a.Slot)
		}
	}
	want := []seat{
		{"R1", 1, "S01"},
		{"R1", 2, "S90"},
		{"R1", 3, "S02"},
		{"R2", 1, "S03"},
		{"R2", 2, "S04"},
		{"R2", 3, "S05"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected layout:\n got %v\nwant %v", got, want)
	}

	// Once E2 is exhausted the E1 run in R2 is unavoidable; that clashes,
	// but the run still completes.
	if len(result.Warnings) != 2 {
		t.Fatalf("expected 2 adjacency warnings, got %v", result.Warnings)
	}
	for i, w := range result.Warnings {
		if w.RoomNo != "R2" || w.ExamID != "E1" {
			t.Fatalf("warning %d: unexpected %+v", i, w)
		}
	}
	if result.Warnings[0].SeatA != 1 || result.Warnings[0].SeatB != 2 {
		t.Fatalf("expected first warning on seats 1-2, got %+v", result.Warnings[0])
	}
	if result.Warnings[1].SeatA != 2 || result.Warnings[1].SeatB != 3 {
		t.Fatalf("expected second warning on seats 2-3, got %+v", result.Warnings[1])
	}
}

func TestAllocateBalancedGroupsHaveNoWarnings(t *testing.T) {
	enrollments := []model.Enrollment{
		enrollment("S1", "E1"),
		enrollment("S2", "E1"),
		enrollment("S3", "E2"),
		enrollment("S4", "E2"),
	}
	rooms := []model.Room{{RoomNo: "R1", Capacity: 4}}

	result, err := Allocate(enrollments, rooms, model.SlotMidday)
	if err != nil {
		t.Fatalf("allocate error: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", result.Warnings)
	}
	// E1, E2, E1, E2
	order := []string{"E1", "E2", "E1", "E2"}
	for i, a := range result.Assignments {
		if a.ExamID != order[i] {
			t.Fatalf("seat %d: expected %s, got %s", a.SeatNo, order[i], a.ExamID)
		}
	}
}

func TestAllocateDeterministic(t *testing.T) {
	enrollments := []model.Enrollment{
		enrollment("S05", "E1"),
		enrollment("S90", "E2"),
		enrollment("S03", "E1"),
		enrollment("S01", "E1"),
		enrollment("S04", "E1"),
		enrollment("S02", "E1"),
	}
	rooms := []model.Room{{RoomNo: "R1", Capacity: 3}, {RoomNo: "R2", Capacity: 3}}

	first, err := Allocate(enrollments, rooms, model.SlotMorning)
	if err != nil {
		t.Fatalf("allocate error: %v", err)
	}

	reversed := make([]model.Enrollment, 0, len(enrollments))
	for i := len(enrollments) - 1; i >= 0; i-- {
		reversed = append(reversed, enrollments[i])
	}
	second, err := Allocate(reversed, rooms, model.SlotMorning)
	if err != nil {
		t.Fatalf("allocate error: %v", err)
	}

	if !reflect.DeepEqual(first.Assignments, second.Assignments) {
		t.Fatalf("allocation is not deterministic:\n%v\n%v", first.Assignments, second.Assignments)
	}
	if !reflect.DeepEqual(first.Warnings, second.Warnings) {
		t.Fatalf("warnings are not deterministic")
	}
}

func TestAllocateEachSeatUsedOnce(t *testing.T) {
	var enrollments []model.Enrollment
	for _, exam := range []string{"E1", "E2", "E3"} {
		for i := 0; i < 7; i++ {
			enrollments = append(enrollments, enrollment(exam+"-S"+string(rune('A'+i)), exam))
		}
	}
	rooms := []model.Room{{RoomNo: "A", Capacity: 10}, {RoomNo: "B", Capacity: 6}, {RoomNo: "C", Capacity: 8}}

	result, err := Allocate(enrollments, rooms, model.SlotAfternoon)
	if err != nil {
		t.Fatalf("allocate error: %v", err)
	}
	if len(result.Assignments) != len(enrollments) {
		t.Fatalf("expected every enrollment seated, got %d of %d", len(result.Assignments), len(enrollments))
	}
	seen := map[string]bool{}
	students := map[string]bool{}
	for _, a := range result.Assignments {
		seatKey := a.RoomNo + "#" + strconv.Itoa(a.SeatNo)
		if seen[seatKey] {
			t.Fatalf("seat %s/%d used twice", a.RoomNo, a.SeatNo)
		}
		seen[seatKey] = true
		if students[a.StudentID+a.ExamID] {
			t.Fatalf("enrollment %s/%s seated twice", a.StudentID, a.ExamID)
		}
		students[a.StudentID+a.ExamID] = true
		if a.SeatNo < 1 {
			t.Fatalf("invalid seat number %d", a.SeatNo)
		}
	}
}

func TestAllocateInsufficientCapacity(t *testing.T) {
	enrollments := []model.Enrollment{
		enrollment("S1", "E1"),
		enrollment("S2", "E1"),
		enrollment("S3", "E1"),
	}
	rooms := []model.Room{{RoomNo: "R1", Capacity: 2}}

	result, err := Allocate(enrollments, rooms, model.SlotMorning)
	var allocErr *Error
	if !errors.As(err, &allocErr) || allocErr.Code != ErrInsufficientCapacity {
		t.Fatalf("expected insufficient capacity error, got %v", err)
	}
	if allocErr.Needed != 3 || allocErr.Capacity != 2 {
		t.Fatalf("unexpected error detail: %+v", allocErr)
	}
	if len(result.Assignments) != 0 {
		t.Fatalf("expected no assignments on fatal error, got %d", len(result.Assignments))
	}
}

func TestAllocateNoRooms(t *testing.T) {
	_, err := Allocate([]model.Enrollment{enrollment("S1", "E1")}, nil, model.SlotMorning)
	var allocErr *Error
	if !errors.As(err, &allocErr) || allocErr.Code != ErrNoRooms {
		t.Fatalf("expected no_rooms error, got %v", err)
	}
}

func TestAllocateEmptyEnrollments(t *testing.T) {
	result, err := Allocate(nil, []model.Room{{RoomNo: "R1", Capacity: 2}}, model.SlotMorning)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(result.Assignments) != 0 || len(result.Warnings) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}
