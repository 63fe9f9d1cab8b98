package roster

import (
	"fmt"

	"examdesk/seating/internal/model"
)

const (
	RejectMissingStudentID  = "missing_student_id"
	RejectMissingCourseCode = "missing_course_code"
	RejectUnknownExam       = "unknown_exam"
	RejectDuplicate         = "duplicate_enrollment"
)

// RowError records one rejected roster row. Rejects are reported, never
// fatal to the batch.
type RowError struct {
	Line       int    `json:"line"`
	Code       string `json:"code"`
	StudentID  string `json:"student_id,omitempty"`
	CourseCode string `json:"course_code,omitempty"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Line, e.Code)
}

// Ingestor validates raw roster rows against the exams scheduled in one
// slot and produces at most one enrollment per (student, exam) pair.
type Ingestor struct {
	slot        model.Slot
	examsByCode map[string]model.Exam
}

func NewIngestor(slot model.Slot, exams []model.Exam) *Ingestor {
	byCode := make(map[string]model.Exam, len(exams))
	for _, exam := range exams {
		byCode[exam.CourseCode] = exam
	}
	return &Ingestor{slot: slot, examsByCode: byCode}
}

// Ingest walks rows in input order. Accepted enrollments keep that order;
// a duplicate (student, exam) pair keeps the first occurrence and rejects
// the rest, so re-running over the same upload is deterministic.
func (ing *Ingestor) Ingest(rows []RawRow) ([]model.Enrollment, []RowError) {
	var (
		enrollments []model.Enrollment
		rejects     []RowError
	)
	seen := make(map[[2]string]bool, len(rows))

	for _, row := range rows {
		if row.StudentID == "" {
			rejects = append(rejects, RowError{Line: row.Line, Code: RejectMissingStudentID, CourseCode: row.CourseCode})
			continue
		}
		if row.CourseCode == "" {
			rejects = append(rejects, RowError{Line: row.Line, Code: RejectMissingCourseCode, StudentID: row.StudentID})
			continue
		}
		exam, ok := ing.examsByCode[row.CourseCode]
		if !ok {
			rejects = append(rejects, RowError{Line: row.Line, Code: RejectUnknownExam, StudentID: row.StudentID, CourseCode: row.CourseCode})
			continue
		}
		key := [2]string{row.StudentID, exam.ID}
		if seen[key] {
			rejects = append(rejects, RowError{Line: row.Line, Code: RejectDuplicate, StudentID: row.StudentID, CourseCode: row.CourseCode})
			continue
		}
		seen[key] = true
		enrollments = append(enrollments, model.Enrollment{
			StudentID:    row.StudentID,
			StudentName:  row.StudentName,
			StudentBatch: row.StudentBatch,
			ExamID:       exam.ID,
			CourseCode:   exam.CourseCode,
		})
	}
	return enrollments, rejects
}
