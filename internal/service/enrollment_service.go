package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/aula-go-api/internal/dto"
	"github.com/noah-isme/aula-go-api/internal/models"
	"github.com/noah-isme/aula-go-api/internal/repository"
)

// ErrAlreadyEnrolled indicates the (student, class) pair is already enrolled.
var ErrAlreadyEnrolled = errors.New("student already enrolled in class")

// ErrEnrollmentNotFound indicates no membership exists for the pair.
var ErrEnrollmentNotFound = errors.New("enrollment not found")

// ErrStudentNotFound indicates the referenced student account does not exist.
var ErrStudentNotFound = errors.New("student not found")

// EnrollmentService manages class memberships.
type EnrollmentService interface {
	Enroll(ctx context.Context, payload dto.EnrollRequest) (dto.EnrollmentResponse, error)
	Unenroll(ctx context.Context, studentID, classID uint) error
	ListByStudent(ctx context.Context, studentID uint) ([]dto.EnrollmentResponse, error)
	ListByClass(ctx context.Context, classID uint) ([]dto.EnrollmentResponse, error)
}

type enrollmentService struct {
	enrollments repository.EnrollmentRepository
	classes     repository.ClassRepository
	users       repository.UserRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewEnrollmentService constructs an EnrollmentService instance.
func NewEnrollmentService(enrollments repository.EnrollmentRepository, classes repository.ClassRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		enrollments: enrollments,
		classes:     classes,
		users:       users,
		validator:   validate,
		logger:      logger.With().Str("component", "enrollment_service").Logger(),
		now:         time.Now,
	}
}

// Enroll registers the student. A duplicate pair is rejected with
// ErrAlreadyEnrolled; the unique index backs this under concurrency.
func (s *enrollmentService) Enroll(ctx context.Context, payload dto.EnrollRequest) (dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	if _, err := s.classes.GetByID(ctx, payload.ClassID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrClassNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	if _, err := s.users.GetByID(ctx, payload.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrStudentNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	enrollment := models.Enrollment{
		StudentID:  payload.StudentID,
		ClassID:    payload.ClassID,
		EnrolledAt: s.now(),
	}

	if err := s.enrollments.Create(ctx, &enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.EnrollmentResponse{}, ErrAlreadyEnrolled
		}
		return dto.EnrollmentResponse{}, err
	}

	s.logger.Info().
		Uint("student_id", payload.StudentID).
		Uint("class_id", payload.ClassID).
		Msg("student enrolled")

	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) Unenroll(ctx context.Context, studentID, classID uint) error {
	if err := s.enrollments.Delete(ctx, studentID, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("class_id", classID).
		Msg("student unenrolled")

	return nil
}

// ListByStudent returns only memberships whose class is currently active.
// Inactive-class memberships stay in storage but are hidden from the
// student-facing view.
func (s *enrollmentService) ListByStudent(ctx context.Context, studentID uint) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID, true)
	if err != nil {
		return nil, err
	}

	return dto.NewEnrollmentResponseSlice(enrollments), nil
}

func (s *enrollmentService) ListByClass(ctx context.Context, classID uint) ([]dto.EnrollmentResponse, error) {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	enrollments, err := s.enrollments.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	return dto.NewEnrollmentResponseSlice(enrollments), nil
}
