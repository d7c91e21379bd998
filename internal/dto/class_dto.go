package dto

import (
	"time"

	"github.com/noah-isme/aula-go-api/internal/models"
)

// ClassCreateRequest describes the payload for creating a class.
// New classes start inactive; activation is a separate, explicit step.
type ClassCreateRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Description string `json:"description" validate:"omitempty,max=4000"`
}

// ClassUpdateRequest describes a partial update of class fields.
type ClassUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
}

// ClassSetActiveRequest toggles the activation gate of a class.
type ClassSetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// ClassResponse is the serialized representation of a class.
type ClassResponse struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Active      bool           `json:"active"`
	TeacherID   uint           `json:"teacher_id"`
	Units       []UnitResponse `json:"units,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// UnitCreateRequest describes the payload for creating a unit within a class.
type UnitCreateRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=255"`
	Position int    `json:"position" validate:"gte=0"`
}

// UnitUpdateRequest describes a partial update of unit fields.
type UnitUpdateRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=255"`
	Position *int    `json:"position" validate:"omitempty,gte=0"`
}

// UnitResponse is the serialized representation of a unit.
type UnitResponse struct {
	ID        uint      `json:"id"`
	ClassID   uint      `json:"class_id"`
	Title     string    `json:"title"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewClassResponse converts a model into a DTO.
func NewClassResponse(model models.Class) ClassResponse {
	response := ClassResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Active:      model.Active,
		TeacherID:   model.TeacherID,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}

	if len(model.Units) > 0 {
		response.Units = NewUnitResponseSlice(model.Units)
	}

	return response
}

// NewClassResponseSlice converts class models into DTOs.
func NewClassResponseSlice(classes []models.Class) []ClassResponse {
	responses := make([]ClassResponse, 0, len(classes))
	for _, class := range classes {
		responses = append(responses, NewClassResponse(class))
	}

	return responses
}

// NewUnitResponse converts a model into a DTO.
func NewUnitResponse(model models.Unit) UnitResponse {
	return UnitResponse{
		ID:        model.ID,
		ClassID:   model.ClassID,
		Title:     model.Title,
		Position:  model.Position,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewUnitResponseSlice converts unit models into DTOs.
func NewUnitResponseSlice(units []models.Unit) []UnitResponse {
	responses := make([]UnitResponse, 0, len(units))
	for _, unit := range units {
		responses = append(responses, NewUnitResponse(unit))
	}

	return responses
}
