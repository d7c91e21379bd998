package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/aula-go-api/internal/dto"
	"github.com/noah-isme/aula-go-api/internal/models"
	"github.com/noah-isme/aula-go-api/internal/repository"
)

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrNotEnrolled indicates the student is not enrolled in the assignment's class.
var ErrNotEnrolled = errors.New("student not enrolled in class")

// ErrSubmissionAlreadyGraded indicates an attempt to edit a graded submission.
var ErrSubmissionAlreadyGraded = errors.New("submission already graded")

// SubmissionService orchestrates the submission workflow. A submission is
// created lazily on the student's first interaction and updated in place
// afterwards; its identity is the (assignment, student) pair.
type SubmissionService interface {
	Upsert(ctx context.Context, assignmentID, studentID uint, payload dto.SubmissionUpsertRequest) (dto.SubmissionResponse, error)
	GetByID(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (dto.SubmissionResponse, error)
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	enrollments repository.EnrollmentRepository
	dispatcher  Dispatcher
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, enrollments repository.EnrollmentRepository, dispatcher Dispatcher, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		enrollments: enrollments,
		dispatcher:  dispatcher,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// Upsert inserts or updates the submission for the pair. Two concurrent
// calls racing on "no row yet" are resolved by the unique index: the loser
// of the insert retries as an update instead of surfacing a duplicate-key
// error.
func (s *submissionService) Upsert(ctx context.Context, assignmentID, studentID uint, payload dto.SubmissionUpsertRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	enrolled, err := s.enrollments.Exists(ctx, studentID, assignment.ClassID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !enrolled {
		return dto.SubmissionResponse{}, ErrNotEnrolled
	}

	existing, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	switch {
	case err == nil:
		return s.applyUpdate(ctx, existing, payload)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.insert(ctx, assignment, studentID, payload)
	default:
		return dto.SubmissionResponse{}, err
	}
}

func (s *submissionService) insert(ctx context.Context, assignment models.Assignment, studentID uint, payload dto.SubmissionUpsertRequest) (dto.SubmissionResponse, error) {
	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    studentID,
		Status:       models.SubmissionStatusDraft,
	}

	if payload.Content != nil {
		submission.Content = *payload.Content
	}

	attachments, err := dto.MarshalAttachments(payload.Attachments)
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("invalid attachments: %w", err)
	}
	submission.Attachments = attachments

	submitted := payload.Status != nil && *payload.Status == models.SubmissionStatusSubmitted
	if submitted {
		submission.Status = models.SubmissionStatusSubmitted
		submittedAt := s.now()
		submission.SubmittedAt = &submittedAt
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the insert race; the row now exists, so fall back to
			// updating it.
			existing, getErr := s.submissions.GetByAssignmentAndStudent(ctx, assignment.ID, studentID)
			if getErr != nil {
				return dto.SubmissionResponse{}, getErr
			}
			return s.applyUpdate(ctx, existing, payload)
		}
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("assignment_id", assignment.ID).
		Uint("student_id", studentID).
		Msg("submission created")

	if submitted {
		s.notifyTeacher(ctx, assignment, submission)
	}

	return s.reload(ctx, submission.ID)
}

func (s *submissionService) applyUpdate(ctx context.Context, submission models.Submission, payload dto.SubmissionUpsertRequest) (dto.SubmissionResponse, error) {
	if submission.IsGraded() {
		return dto.SubmissionResponse{}, ErrSubmissionAlreadyGraded
	}

	if payload.Content != nil {
		submission.Content = *payload.Content
	}

	if payload.Attachments != nil {
		attachments, err := dto.MarshalAttachments(payload.Attachments)
		if err != nil {
			return dto.SubmissionResponse{}, fmt.Errorf("invalid attachments: %w", err)
		}
		submission.Attachments = attachments
	}

	transitioned := false
	if payload.Status != nil && *payload.Status == models.SubmissionStatusSubmitted &&
		submission.Status != models.SubmissionStatusSubmitted {
		submission.Status = models.SubmissionStatusSubmitted
		submittedAt := s.now()
		submission.SubmittedAt = &submittedAt
		transitioned = true
	}

	// The write is guarded in storage: it matches only while the stored row
	// is still ungraded, so a grade landing after the read above cannot be
	// reverted by this save.
	if err := s.submissions.UpdateIfUngraded(ctx, &submission); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.resolveSkippedUpdate(ctx, submission.ID)
		}
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", submission.ID).Str("status", submission.Status).Msg("submission updated")

	if transitioned {
		assignment, err := s.assignments.GetByID(ctx, submission.AssignmentID)
		if err != nil {
			s.logger.Error().Err(err).
				Uint("submission_id", submission.ID).
				Msg("failed to load assignment for submission notification")
		} else {
			s.notifyTeacher(ctx, assignment, submission)
		}
	}

	return s.reload(ctx, submission.ID)
}

// resolveSkippedUpdate re-reads a row whose guarded update matched nothing:
// either the row was graded concurrently or it no longer exists.
func (s *submissionService) resolveSkippedUpdate(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if submission.IsGraded() {
		return dto.SubmissionResponse{}, ErrSubmissionAlreadyGraded
	}

	return dto.SubmissionResponse{}, fmt.Errorf("submission %d update matched no row", id)
}

// notifyTeacher emits submission_received to the teacher owning the class.
// Best-effort only.
func (s *submissionService) notifyTeacher(ctx context.Context, assignment models.Assignment, submission models.Submission) {
	assignmentID := assignment.ID
	submissionID := submission.ID
	s.dispatcher.Dispatch(ctx, dto.NotificationCreateRequest{
		UserID:       assignment.Class.TeacherID,
		Type:         models.NotificationTypeSubmissionReceived,
		Title:        assignment.Title,
		Message:      fmt.Sprintf("A submission was received for %s", assignment.Title),
		AssignmentID: &assignmentID,
		SubmissionID: &submissionID,
	})
}

func (s *submissionService) reload(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) GetByID(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{
		AssignmentID: filter.AssignmentID,
		StudentID:    filter.StudentID,
		Status:       filter.Status,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) ListByTeacher(ctx context.Context, teacherID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}
