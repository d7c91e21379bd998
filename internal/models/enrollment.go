package models

import "time"

// Enrollment links a student to a class. The (student, class) pair is unique;
// a second enroll attempt for the same pair is a conflict.
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StudentID  uint      `gorm:"not null;uniqueIndex:idx_enrollments_student_class" json:"student_id"`
	ClassID    uint      `gorm:"not null;uniqueIndex:idx_enrollments_student_class" json:"class_id"`
	EnrolledAt time.Time `gorm:"not null" json:"enrolled_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Student User  `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Class   Class `json:"class,omitempty"`
}
