package dto

import (
	"time"

	"github.com/noah-isme/aula-go-api/internal/models"
)

// SubmissionUpsertRequest carries the mutable fields of a submission. The
// first upsert for an (assignment, student) pair creates the row; later
// calls update it in place.
type SubmissionUpsertRequest struct {
	Content     *string         `json:"content" validate:"omitempty,max=64000"`
	Attachments []AttachmentRef `json:"attachments" validate:"omitempty,dive"`
	Status      *string         `json:"status" validate:"omitempty,oneof=draft submitted"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	AssignmentID *uint   `query:"assignment_id"`
	StudentID    *uint   `query:"student_id"`
	Status       *string `query:"status" validate:"omitempty,oneof=draft submitted graded"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
// Grade is nil until the submission has been graded; the two facts always
// agree (grade present iff status is graded).
type SubmissionResponse struct {
	ID           uint            `json:"id"`
	AssignmentID uint            `json:"assignment_id"`
	StudentID    uint            `json:"student_id"`
	Status       string          `json:"status"`
	Content      string          `json:"content"`
	Attachments  []AttachmentRef `json:"attachments"`
	SubmittedAt  *time.Time      `json:"submitted_at"`
	Grade        *GradeResponse  `json:"grade"`
	Student      *UserLite       `json:"student,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		Status:       model.Status,
		Content:      model.Content,
		Attachments:  UnmarshalAttachments(model.Attachments),
		SubmittedAt:  model.SubmittedAt,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	if model.Grade != nil {
		grade := NewGradeResponse(*model.Grade)
		response.Grade = &grade
	}

	if model.Student.ID != 0 {
		response.Student = &UserLite{
			ID:        model.Student.ID,
			FirstName: model.Student.FirstName,
			LastName:  model.Student.LastName,
			Email:     model.Student.Email,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
