package model

import (
	"errors"
	"time"
)

// Slot is the time bucket in which a set of exams runs simultaneously.
// Seating is computed once per slot, independently of other slots.
type Slot string

const (
	SlotMorning   Slot = "MORNING"
	SlotMidday    Slot = "MIDDAY"
	SlotAfternoon Slot = "AFTERNOON"
)

var ErrInvalidSlot = errors.New("invalid slot")

func ParseSlot(value string) (Slot, error) {
	switch Slot(value) {
	case SlotMorning, SlotMidday, SlotAfternoon:
		return Slot(value), nil
	}
	return "", ErrInvalidSlot
}

type ExamType string

const (
	ExamTypeMidterm ExamType = "MIDTERM"
	ExamTypeFinal   ExamType = "FINAL"
)

type Student struct {
	ID    string
	Name  string
	Batch string
}

type Course struct {
	Code string
	Name string
	Term string
}

type Exam struct {
	ID              string
	CourseCode      string
	Date            time.Time
	StartTime       string // wall-clock start, e.g. "09:00"
	DurationMinutes int
	Type            ExamType
	Slot            Slot
}

// Room seats are numbered 1..Capacity; seat n and n+1 are adjacent.
type Room struct {
	RoomNo   string
	Capacity int
}

// Enrollment is one student's obligation to sit one exam. It is derived
// from a roster upload on every allocation run, never stored on its own.
// Student name and batch travel with it so the seating documents and the
// room lookup can be served from committed assignments alone.
type Enrollment struct {
	StudentID    string
	StudentName  string
	StudentBatch string
	ExamID       string
	CourseCode   string
}

type Assignment struct {
	StudentID    string `json:"student_id"`
	StudentName  string `json:"student_name"`
	StudentBatch string `json:"student_batch"`
	ExamID       string `json:"exam_id"`
	CourseCode   string `json:"exam_course_code"`
	RoomNo       string `json:"room_no"`
	SeatNo       int    `json:"seat_no"`
	Slot         Slot   `json:"slot"`
}

// Allocation is the full committed set of assignments for one slot.
// Exactly one allocation is current per slot; replacing it is atomic.
type Allocation struct {
	Slot        Slot
	Version     int64
	CreatedAt   time.Time
	Assignments []Assignment
}

// AttendanceRecord is seeded from a committed assignment at check-in
// setup time. Status is mutated by the attendance collaborator, not here.
type AttendanceRecord struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	ExamID    string `json:"exam_id"`
	RoomNo    string `json:"room_no"`
	SeatNo    int    `json:"seat_no"`
	Slot      Slot   `json:"slot"`
	Present   bool   `json:"present"`
}
