package dto

import (
	"time"

	"github.com/noah-isme/aula-go-api/internal/models"
)

// EnrollRequest describes the payload for enrolling a student into a class.
type EnrollRequest struct {
	StudentID uint `json:"student_id" validate:"required,gt=0"`
	ClassID   uint `json:"class_id" validate:"required,gt=0"`
}

// EnrollmentResponse is the serialized representation of an enrollment.
type EnrollmentResponse struct {
	ID         uint      `json:"id"`
	StudentID  uint      `json:"student_id"`
	ClassID    uint      `json:"class_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
	Student    *UserLite `json:"student,omitempty"`
	Class      *ClassRef `json:"class,omitempty"`
}

// UserLite summarizes a user without exposing full profile data.
type UserLite struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// ClassRef summarizes a class in enrollment responses.
type ClassRef struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

// NewEnrollmentResponse converts a model into a DTO.
func NewEnrollmentResponse(model models.Enrollment) EnrollmentResponse {
	response := EnrollmentResponse{
		ID:         model.ID,
		StudentID:  model.StudentID,
		ClassID:    model.ClassID,
		EnrolledAt: model.EnrolledAt,
	}

	if model.Student.ID != 0 {
		response.Student = &UserLite{
			ID:        model.Student.ID,
			FirstName: model.Student.FirstName,
			LastName:  model.Student.LastName,
			Email:     model.Student.Email,
		}
	}

	if model.Class.ID != 0 {
		response.Class = &ClassRef{
			ID:     model.Class.ID,
			Title:  model.Class.Title,
			Active: model.Class.Active,
		}
	}

	return response
}

// NewEnrollmentResponseSlice converts enrollment models into DTOs.
func NewEnrollmentResponseSlice(enrollments []models.Enrollment) []EnrollmentResponse {
	responses := make([]EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		responses = append(responses, NewEnrollmentResponse(enrollment))
	}

	return responses
}
