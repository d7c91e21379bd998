package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission lifecycle states. Transitions only move forward:
// draft -> submitted -> graded.
const (
	SubmissionStatusDraft     = "draft"
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusGraded    = "graded"
)

// Submission is a student's attempt at an assignment. Its persistent identity
// is the (assignment, student) pair; the row is updated in place and never
// re-created.
type Submission struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	AssignmentID uint           `gorm:"not null;uniqueIndex:idx_submissions_assignment_student" json:"assignment_id"`
	StudentID    uint           `gorm:"not null;uniqueIndex:idx_submissions_assignment_student" json:"student_id"`
	Status       string         `gorm:"size:32;not null;default:draft" json:"status"`
	Content      string         `gorm:"type:text" json:"content"`
	Attachments  datatypes.JSON `gorm:"type:json" json:"attachments"`
	SubmittedAt  *time.Time     `json:"submitted_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	Assignment Assignment `json:"-"`
	Student    User       `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Grade      *Grade     `json:"grade,omitempty"`
}

// IsGraded reports whether the submission has reached its terminal state.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}

// CountsAsHandedIn reports whether the submission satisfies the assignment,
// i.e. it is not missing from the teacher's point of view.
func (s Submission) CountsAsHandedIn() bool {
	return s.Status == SubmissionStatusSubmitted || s.Status == SubmissionStatusGraded
}
