package models

import (
	"time"

	"gorm.io/datatypes"
)

// Assignment types supported by the catalog.
const (
	AssignmentTypeHomework = "homework"
	AssignmentTypeProject  = "project"
	AssignmentTypeQuiz     = "quiz"
)

// Assignment represents a unit of work published to the students of a class.
type Assignment struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	ClassID     uint              `gorm:"not null;index" json:"class_id"`
	UnitID      *uint             `gorm:"index" json:"unit_id"`
	Title       string            `gorm:"size:255;not null" json:"title"`
	Description string            `gorm:"type:text" json:"description"`
	Type        string            `gorm:"size:32;not null;default:homework" json:"type"`
	Graded      bool              `gorm:"not null;default:true" json:"graded"`
	MaxScore    float64           `gorm:"not null;default:100" json:"max_score"`
	DueDate     *time.Time        `json:"due_date"`
	Published   bool              `gorm:"not null;default:false" json:"published"`
	Attachments datatypes.JSON    `gorm:"type:json" json:"attachments"`
	Extras      datatypes.JSONMap `gorm:"type:json" json:"extras"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	Class       Class        `json:"-"`
	Submissions []Submission `json:"submissions,omitempty"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return a.DueDate != nil && reference.After(*a.DueDate)
}

// DaysOverdue reports how many whole days the assignment is past due at the
// reference time. Returns nil when no due date is set.
func (a Assignment) DaysOverdue(reference time.Time) *int {
	if a.DueDate == nil {
		return nil
	}

	days := int(reference.Sub(*a.DueDate).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return &days
}
