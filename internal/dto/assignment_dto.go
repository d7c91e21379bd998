package dto

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/aula-go-api/internal/models"
)

// AttachmentRef is an opaque name/url pair. The API stores and returns
// attachment references verbatim and never touches file contents.
type AttachmentRef struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
	URL  string `json:"url" validate:"required,url"`
}

// AssignmentCreateRequest describes the payload for creating an assignment.
type AssignmentCreateRequest struct {
	ClassID     uint                   `json:"class_id" validate:"required,gt=0"`
	UnitID      *uint                  `json:"unit_id" validate:"omitempty,gt=0"`
	Title       string                 `json:"title" validate:"required,min=3,max=255"`
	Description string                 `json:"description" validate:"omitempty,max=8000"`
	Type        string                 `json:"type" validate:"omitempty,oneof=homework project quiz"`
	Graded      *bool                  `json:"graded"`
	MaxScore    *float64               `json:"max_score" validate:"omitempty,gt=0"`
	DueDate     *string                `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Attachments []AttachmentRef        `json:"attachments" validate:"omitempty,dive"`
	Extras      map[string]interface{} `json:"extras"`
}

// AssignmentUpdateRequest describes a partial update of assignment fields.
type AssignmentUpdateRequest struct {
	UnitID      *uint                  `json:"unit_id" validate:"omitempty,gte=0"`
	Title       *string                `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string                `json:"description" validate:"omitempty,max=8000"`
	Type        *string                `json:"type" validate:"omitempty,oneof=homework project quiz"`
	Graded      *bool                  `json:"graded"`
	MaxScore    *float64               `json:"max_score" validate:"omitempty,gt=0"`
	DueDate     *string                `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Attachments []AttachmentRef        `json:"attachments" validate:"omitempty,dive"`
	Extras      map[string]interface{} `json:"extras"`
}

// AssignmentSetPublishedRequest toggles the published flag.
type AssignmentSetPublishedRequest struct {
	Published *bool `json:"published" validate:"required"`
}

// AssignmentResponse is the serialized representation of an assignment.
type AssignmentResponse struct {
	ID          uint                   `json:"id"`
	ClassID     uint                   `json:"class_id"`
	UnitID      *uint                  `json:"unit_id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Type        string                 `json:"type"`
	Graded      bool                   `json:"graded"`
	MaxScore    float64                `json:"max_score"`
	DueDate     *time.Time             `json:"due_date"`
	Published   bool                   `json:"published"`
	Attachments []AttachmentRef        `json:"attachments"`
	Extras      map[string]interface{} `json:"extras"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// MissingStudent describes an enrolled student without a qualifying
// submission for an assignment.
type MissingStudent struct {
	StudentID   uint   `json:"student_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Status      string `json:"status"`
	DaysOverdue *int   `json:"days_overdue"`
}

// MissingSubmissionsResponse lists missing students for one assignment.
type MissingSubmissionsResponse struct {
	AssignmentID uint             `json:"assignment_id"`
	ClassID      uint             `json:"class_id"`
	DueDate      *time.Time       `json:"due_date"`
	Missing      []MissingStudent `json:"missing"`
	ComputedAt   time.Time        `json:"computed_at"`
}

// MarshalAttachments serializes attachment refs into the stored JSON column.
func MarshalAttachments(refs []AttachmentRef) (datatypes.JSON, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(refs)
	if err != nil {
		return nil, err
	}

	return datatypes.JSON(payload), nil
}

// UnmarshalAttachments restores attachment refs from the stored JSON column.
func UnmarshalAttachments(raw datatypes.JSON) []AttachmentRef {
	if len(raw) == 0 {
		return nil
	}

	var refs []AttachmentRef
	if err := json.Unmarshal(raw, &refs); err != nil {
		return nil
	}

	return refs
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:          model.ID,
		ClassID:     model.ClassID,
		UnitID:      model.UnitID,
		Title:       model.Title,
		Description: model.Description,
		Type:        model.Type,
		Graded:      model.Graded,
		MaxScore:    model.MaxScore,
		DueDate:     model.DueDate,
		Published:   model.Published,
		Attachments: UnmarshalAttachments(model.Attachments),
		Extras:      model.Extras,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
