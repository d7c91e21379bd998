package dto

import (
	"time"

	"github.com/noah-isme/aula-go-api/internal/models"
)

// NotificationCreateRequest describes an internal dispatch request. It is
// produced by the domain services, never parsed from client input.
type NotificationCreateRequest struct {
	UserID       uint                   `json:"user_id" validate:"required,gt=0"`
	Type         string                 `json:"type" validate:"required,oneof=new_assignment submission_received assignment_graded"`
	Title        string                 `json:"title" validate:"omitempty,max=255"`
	Message      string                 `json:"message" validate:"required"`
	Payload      map[string]interface{} `json:"payload"`
	AssignmentID *uint                  `json:"assignment_id"`
	SubmissionID *uint                  `json:"submission_id"`
}

// NotificationResponse is the serialized representation of a notification.
type NotificationResponse struct {
	ID           uint                   `json:"id"`
	UserID       uint                   `json:"user_id"`
	Type         string                 `json:"type"`
	Title        string                 `json:"title"`
	Message      string                 `json:"message"`
	Payload      map[string]interface{} `json:"payload"`
	AssignmentID *uint                  `json:"assignment_id"`
	SubmissionID *uint                  `json:"submission_id"`
	Read         bool                   `json:"read"`
	CreatedAt    time.Time              `json:"created_at"`
}

// UnreadCountResponse reports the number of unread notifications for a user.
type UnreadCountResponse struct {
	UserID uint  `json:"user_id"`
	Unread int64 `json:"unread"`
}

// NewNotificationResponse converts a model into a DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:           model.ID,
		UserID:       model.UserID,
		Type:         model.Type,
		Title:        model.Title,
		Message:      model.Message,
		Payload:      model.Payload,
		AssignmentID: model.AssignmentID,
		SubmissionID: model.SubmissionID,
		Read:         model.Read,
		CreatedAt:    model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts notification models into DTOs.
func NewNotificationResponseSlice(notifications []models.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		responses = append(responses, NewNotificationResponse(notification))
	}

	return responses
}
