package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/aula-go-api/internal/models"
)

func TestGradeRepositoryCreateFlipsSubmissionStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGradeRepository(db)

	submission := models.Submission{AssignmentID: 1, StudentID: 1, Status: models.SubmissionStatusSubmitted}
	require.NoError(t, db.Create(&submission).Error)

	grade := models.Grade{SubmissionID: submission.ID, Score: 95, MaxScore: 100, GradedBy: 9, GradedAt: time.Now()}
	require.NoError(t, repo.CreateForSubmission(context.Background(), &grade))

	var reloaded models.Submission
	require.NoError(t, db.First(&reloaded, submission.ID).Error)
	require.Equal(t, models.SubmissionStatusGraded, reloaded.Status)
}

func TestGradeRepositorySecondGradeConflicts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGradeRepository(db)

	submission := models.Submission{AssignmentID: 2, StudentID: 2, Status: models.SubmissionStatusSubmitted}
	require.NoError(t, db.Create(&submission).Error)

	first := models.Grade{SubmissionID: submission.ID, Score: 70, MaxScore: 100, GradedBy: 9, GradedAt: time.Now()}
	require.NoError(t, repo.CreateForSubmission(context.Background(), &first))

	second := models.Grade{SubmissionID: submission.ID, Score: 80, MaxScore: 100, GradedBy: 9, GradedAt: time.Now()}
	err := repo.CreateForSubmission(context.Background(), &second)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	var count int64
	require.NoError(t, db.Model(&models.Grade{}).Where("submission_id = ?", submission.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)

	stored, err := repo.GetBySubmission(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, float64(70), stored.Score, "losing write must not overwrite the recorded grade")
}
