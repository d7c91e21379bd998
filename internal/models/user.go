package models

import "time"

// User roles recognized by the API.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User represents a teacher or student account referenced by the classroom entities.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"size:128;not null" json:"first_name"`
	LastName  string    `gorm:"size:128;not null" json:"last_name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns the display name used in rosters.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
