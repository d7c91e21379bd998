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
	"github.com/noah-isme/aula-go-api/internal/observability"
	"github.com/noah-isme/aula-go-api/internal/repository"
)

// ErrAssignmentNotFound indicates the requested assignment does not exist.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrClassInactive indicates a publish attempt against an inactive class.
var ErrClassInactive = errors.New("class is not active")

// ErrUnitClassMismatch indicates the unit belongs to a different class.
var ErrUnitClassMismatch = errors.New("unit does not belong to the assignment's class")

// AssignmentService owns assignment records and the publish/unpublish
// transition.
type AssignmentService interface {
	List(ctx context.Context, filter repository.AssignmentFilter) ([]dto.AssignmentResponse, int64, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, teacherID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id, teacherID uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id, teacherID uint) error
	SetPublished(ctx context.Context, id, teacherID uint, published bool) (dto.AssignmentResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	classes     repository.ClassRepository
	enrollments repository.EnrollmentRepository
	dispatcher  Dispatcher
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(assignments repository.AssignmentRepository, classes repository.ClassRepository, enrollments repository.EnrollmentRepository, dispatcher Dispatcher, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		classes:     classes,
		enrollments: enrollments,
		dispatcher:  dispatcher,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) List(ctx context.Context, filter repository.AssignmentFilter) ([]dto.AssignmentResponse, int64, error) {
	assignments, total, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return dto.NewAssignmentResponseSlice(assignments), total, nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, teacherID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	class, err := s.ownedClass(ctx, payload.ClassID, teacherID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		ClassID:     class.ID,
		Title:       payload.Title,
		Description: payload.Description,
		Type:        models.AssignmentTypeHomework,
		Graded:      true,
		MaxScore:    100,
		Extras:      payload.Extras,
	}

	if payload.Type != "" {
		assignment.Type = payload.Type
	}
	if payload.Graded != nil {
		assignment.Graded = *payload.Graded
	}
	if payload.MaxScore != nil {
		assignment.MaxScore = *payload.MaxScore
	}

	if payload.UnitID != nil {
		if err := s.checkUnit(ctx, *payload.UnitID, class.ID); err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.UnitID = payload.UnitID
	}

	if payload.DueDate != nil {
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, fmt.Errorf("invalid due date: %w", err)
		}
		assignment.DueDate = &dueDate
	}

	attachments, err := dto.MarshalAttachments(payload.Attachments)
	if err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("invalid attachments: %w", err)
	}
	assignment.Attachments = attachments

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("class_id", class.ID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, id, teacherID uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.ownedAssignment(ctx, id, teacherID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = *payload.Title
	}
	if payload.Description != nil {
		assignment.Description = *payload.Description
	}
	if payload.Type != nil {
		assignment.Type = *payload.Type
	}
	if payload.Graded != nil {
		assignment.Graded = *payload.Graded
	}
	if payload.MaxScore != nil {
		assignment.MaxScore = *payload.MaxScore
	}
	if payload.Extras != nil {
		assignment.Extras = payload.Extras
	}

	if payload.UnitID != nil {
		// Zero clears the unit reference, moving the assignment back to
		// the ungrouped bucket.
		if *payload.UnitID == 0 {
			assignment.UnitID = nil
		} else {
			if err := s.checkUnit(ctx, *payload.UnitID, assignment.ClassID); err != nil {
				return dto.AssignmentResponse{}, err
			}
			assignment.UnitID = payload.UnitID
		}
	}

	if payload.DueDate != nil {
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, fmt.Errorf("invalid due date: %w", err)
		}
		assignment.DueDate = &dueDate
	}

	if payload.Attachments != nil {
		attachments, err := dto.MarshalAttachments(payload.Attachments)
		if err != nil {
			return dto.AssignmentResponse{}, fmt.Errorf("invalid attachments: %w", err)
		}
		assignment.Attachments = attachments
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")

	return dto.NewAssignmentResponse(assignment), nil
}

// Delete removes the assignment together with its submissions and grades so
// no dangling rows survive.
func (s *assignmentService) Delete(ctx context.Context, id, teacherID uint) error {
	if _, err := s.ownedAssignment(ctx, id, teacherID); err != nil {
		return err
	}

	if err := s.assignments.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted with submissions and grades")

	return nil
}

// SetPublished toggles the published flag. Publishing requires the parent
// class to be active; unpublishing is always permitted. Only the transition
// into published triggers the fan-out, so repeating the call is a no-op.
func (s *assignmentService) SetPublished(ctx context.Context, id, teacherID uint, published bool) (dto.AssignmentResponse, error) {
	assignment, err := s.ownedAssignment(ctx, id, teacherID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if assignment.Published == published {
		return dto.NewAssignmentResponse(assignment), nil
	}

	if published && !assignment.Class.Active {
		return dto.AssignmentResponse{}, ErrClassInactive
	}

	assignment.Published = published
	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Bool("published", published).
		Msg("assignment publication toggled")

	if published {
		s.notifyEnrolledStudents(ctx, assignment)
	}

	return dto.NewAssignmentResponse(assignment), nil
}

// notifyEnrolledStudents emits one new_assignment notification per enrolled
// student. Delivery is best-effort; a failure here never unwinds the
// publish that already happened.
func (s *assignmentService) notifyEnrolledStudents(ctx context.Context, assignment models.Assignment) {
	enrollments, err := s.enrollments.ListByClass(ctx, assignment.ClassID)
	if err != nil {
		s.logger.Error().Err(err).
			Uint("assignment_id", assignment.ID).
			Msg("failed to load roster for publish notifications")
		return
	}

	assignmentID := assignment.ID
	for _, enrollment := range enrollments {
		s.dispatcher.Dispatch(ctx, dto.NotificationCreateRequest{
			UserID:       enrollment.StudentID,
			Type:         models.NotificationTypeNewAssignment,
			Title:        assignment.Title,
			Message:      fmt.Sprintf("New assignment published: %s", assignment.Title),
			AssignmentID: &assignmentID,
		})
	}

	observability.PublishFanoutTotal().Add(float64(len(enrollments)))
}

func (s *assignmentService) ownedClass(ctx context.Context, classID, teacherID uint) (models.Class, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Class{}, ErrClassNotFound
		}
		return models.Class{}, err
	}

	if class.TeacherID != teacherID {
		return models.Class{}, ErrNotClassOwner
	}

	return class, nil
}

func (s *assignmentService) ownedAssignment(ctx context.Context, id, teacherID uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}

	if assignment.Class.TeacherID != teacherID {
		return models.Assignment{}, ErrNotClassOwner
	}

	return assignment, nil
}

func (s *assignmentService) checkUnit(ctx context.Context, unitID, classID uint) error {
	unit, err := s.classes.GetUnitByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnitNotFound
		}
		return err
	}

	if unit.ClassID != classID {
		return ErrUnitClassMismatch
	}

	return nil
}
