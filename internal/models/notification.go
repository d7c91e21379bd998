package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types emitted by the classroom workflows.
const (
	NotificationTypeNewAssignment      = "new_assignment"
	NotificationTypeSubmissionReceived = "submission_received"
	NotificationTypeAssignmentGraded   = "assignment_graded"
)

// Notification is an append-only event record targeted to a single user.
// Only the Read flag is ever mutated after creation.
type Notification struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	UserID       uint              `gorm:"not null;index" json:"user_id"`
	Type         string            `gorm:"size:64;not null" json:"type"`
	Title        string            `gorm:"size:255" json:"title"`
	Message      string            `gorm:"type:text" json:"message"`
	Payload      datatypes.JSONMap `gorm:"type:json" json:"payload"`
	AssignmentID *uint             `gorm:"index" json:"assignment_id"`
	SubmissionID *uint             `gorm:"index" json:"submission_id"`
	Read         bool              `gorm:"not null;default:false" json:"read"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
