package dto

import (
	"time"

	"github.com/noah-isme/aula-go-api/internal/models"
)

// GradeCreateRequest describes the payload for grading a submission.
type GradeCreateRequest struct {
	Score    float64                `json:"score" validate:"gte=0"`
	MaxScore *float64               `json:"max_score" validate:"omitempty,gt=0"`
	Feedback string                 `json:"feedback" validate:"omitempty,max=8000"`
	Rubric   map[string]interface{} `json:"rubric"`
}

// GradeResponse is the serialized representation of a grade.
type GradeResponse struct {
	ID           uint                   `json:"id"`
	SubmissionID uint                   `json:"submission_id"`
	Score        float64                `json:"score"`
	MaxScore     float64                `json:"max_score"`
	Feedback     string                 `json:"feedback"`
	Rubric       map[string]interface{} `json:"rubric"`
	GradedBy     uint                   `json:"graded_by"`
	GradedAt     time.Time              `json:"graded_at"`
}

// NewGradeResponse converts a model into a DTO.
func NewGradeResponse(model models.Grade) GradeResponse {
	return GradeResponse{
		ID:           model.ID,
		SubmissionID: model.SubmissionID,
		Score:        model.Score,
		MaxScore:     model.MaxScore,
		Feedback:     model.Feedback,
		Rubric:       model.Rubric,
		GradedBy:     model.GradedBy,
		GradedAt:     model.GradedAt,
	}
}
