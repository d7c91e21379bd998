package models

import "time"

// Class is a teacher-owned course container grouping units, assignments and enrollments.
type Class struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Active      bool      `gorm:"not null;default:false" json:"active"`
	TeacherID   uint      `gorm:"not null;index" json:"teacher_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Units       []Unit       `json:"units,omitempty"`
	Assignments []Assignment `json:"assignments,omitempty"`
	Enrollments []Enrollment `json:"enrollments,omitempty"`
}

// Unit is an optional ordered grouping of assignments within a class.
// Position is advisory only; duplicates are allowed.
type Unit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClassID   uint      `gorm:"not null;index" json:"class_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
