package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/aula-go-api/internal/dto"
	"github.com/noah-isme/aula-go-api/internal/models"
	"github.com/noah-isme/aula-go-api/internal/repository"
)

// ErrGradeExists indicates the submission already has its one grade.
var ErrGradeExists = errors.New("submission already graded")

// ErrGradeNotFound indicates no grade exists for the submission.
var ErrGradeNotFound = errors.New("grade not found")

// ErrScoreExceedsMax indicates a grading score surpasses the declared maximum.
var ErrScoreExceedsMax = errors.New("score exceeds max score")

// GradingService creates the single grade attached to a submission.
type GradingService interface {
	CreateGrade(ctx context.Context, submissionID, graderID uint, payload dto.GradeCreateRequest) (dto.GradeResponse, error)
	GetBySubmission(ctx context.Context, submissionID uint) (dto.GradeResponse, error)
}

type gradingService struct {
	grades      repository.GradeRepository
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	dispatcher  Dispatcher
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradingService constructs the grading service.
func NewGradingService(grades repository.GradeRepository, submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, dispatcher Dispatcher, validate *validator.Validate, logger zerolog.Logger) GradingService {
	return &gradingService{
		grades:      grades,
		submissions: submissions,
		assignments: assignments,
		dispatcher:  dispatcher,
		validator:   validate,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		now:         time.Now,
	}
}

// CreateGrade records the one evaluation for a submission and flips its
// status to graded in the same transaction. A second call for the same
// submission fails with ErrGradeExists; under concurrency the unique index
// on submission_id guarantees exactly one winner.
func (s *gradingService) CreateGrade(ctx context.Context, submissionID, graderID uint, payload dto.GradeCreateRequest) (dto.GradeResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/aula-go-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.create")
	span.SetAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.grader_id", int64(graderID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.GradeResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.GradeResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		return dto.GradeResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, submission.AssignmentID)
	if err != nil {
		span.RecordError(err)
		return dto.GradeResponse{}, err
	}

	if assignment.Class.TeacherID != graderID {
		span.SetStatus(codes.Error, "not_class_owner")
		return dto.GradeResponse{}, ErrNotClassOwner
	}

	maxScore := assignment.MaxScore
	if payload.MaxScore != nil {
		maxScore = *payload.MaxScore
	}
	if payload.Score > maxScore+1e-9 {
		span.SetStatus(codes.Error, "score_exceeds_max")
		return dto.GradeResponse{}, ErrScoreExceedsMax
	}

	grade := models.Grade{
		SubmissionID: submissionID,
		Score:        payload.Score,
		MaxScore:     maxScore,
		Feedback:     payload.Feedback,
		Rubric:       payload.Rubric,
		GradedBy:     graderID,
		GradedAt:     s.now(),
	}

	if err := s.grades.CreateForSubmission(ctx, &grade); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			span.SetStatus(codes.Error, "grade_exists")
			return dto.GradeResponse{}, ErrGradeExists
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "grade_persist_failed")
		return dto.GradeResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submissionID).
		Uint("graded_by", graderID).
		Float64("score", payload.Score).
		Msg("submission graded")

	submissionRef := submissionID
	assignmentRef := assignment.ID
	s.dispatcher.Dispatch(ctx, dto.NotificationCreateRequest{
		UserID:       submission.StudentID,
		Type:         models.NotificationTypeAssignmentGraded,
		Title:        assignment.Title,
		Message:      fmt.Sprintf("Your submission for %s was graded", assignment.Title),
		AssignmentID: &assignmentRef,
		SubmissionID: &submissionRef,
	})

	span.SetAttributes(attribute.Float64("grading.score", payload.Score))

	return dto.NewGradeResponse(grade), nil
}

func (s *gradingService) GetBySubmission(ctx context.Context, submissionID uint) (dto.GradeResponse, error) {
	grade, err := s.grades.GetBySubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, ErrGradeNotFound
		}
		return dto.GradeResponse{}, err
	}

	return dto.NewGradeResponse(grade), nil
}
