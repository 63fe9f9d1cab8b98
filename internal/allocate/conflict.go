package allocate

import (
	"sort"

	"examdesk/seating/internal/model"
)

// Conflict flags a student enrolled in more than one exam in the same
// slot. The student is still seated for every exam; rescheduling is the
// caller's problem, not the allocator's.
type Conflict struct {
	StudentID string   `json:"student_id"`
	ExamIDs   []string `json:"exam_ids"`
}

// DetectConflicts returns one entry per double-booked student, sorted by
// student ID, with exam IDs sorted for stable output.
func DetectConflicts(enrollments []model.Enrollment) []Conflict {
	examsByStudent := map[string][]string{}
	for _, e := range enrollments {
		examsByStudent[e.StudentID] = append(examsByStudent[e.StudentID], e.ExamID)
	}

	var conflicts []Conflict
	for studentID, examIDs := range examsByStudent {
		if len(examIDs) < 2 {
			continue
		}
		sort.Strings(examIDs)
		conflicts = append(conflicts, Conflict{StudentID: studentID, ExamIDs: examIDs})
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].StudentID < conflicts[j].StudentID })
	return conflicts
}
