package models

import (
	"time"

	"gorm.io/datatypes"
)

// Grade is the single evaluation record attached to a submission. The unique
// index on SubmissionID enforces the one-to-one relationship at the storage
// level; concurrent grade attempts resolve to one success and one conflict.
type Grade struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	SubmissionID uint              `gorm:"not null;uniqueIndex" json:"submission_id"`
	Score        float64           `gorm:"not null" json:"score"`
	MaxScore     float64           `gorm:"not null;default:100" json:"max_score"`
	Feedback     string            `gorm:"type:text" json:"feedback"`
	Rubric       datatypes.JSONMap `gorm:"type:json" json:"rubric"`
	GradedBy     uint              `gorm:"not null" json:"graded_by"`
	GradedAt     time.Time         `gorm:"not null" json:"graded_at"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
