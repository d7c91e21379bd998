package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/aula-go-api/internal/models"
)

// GradeRepository handles persistence for grades.
type GradeRepository interface {
	// CreateForSubmission inserts the grade and flips the submission status
	// to graded in the same transaction, so the two can never disagree.
	// The unique index on submission_id turns a concurrent second insert
	// into gorm.ErrDuplicatedKey.
	CreateForSubmission(ctx context.Context, grade *models.Grade) error
	GetBySubmission(ctx context.Context, submissionID uint) (models.Grade, error)
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository constructs a repository backed by GORM.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) CreateForSubmission(ctx context.Context, grade *models.Grade) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(grade).Error; err != nil {
			return err
		}

		return tx.Model(&models.Submission{}).
			Where("id = ?", grade.SubmissionID).
			Update("status", models.SubmissionStatusGraded).Error
	})
}

func (r *gradeRepository) GetBySubmission(ctx context.Context, submissionID uint) (models.Grade, error) {
	var grade models.Grade
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		First(&grade).Error; err != nil {
		return models.Grade{}, err
	}

	return grade, nil
}
