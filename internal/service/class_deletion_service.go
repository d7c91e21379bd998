package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/aula-go-api/internal/observability"
	"github.com/noah-isme/aula-go-api/internal/repository"
)

// ErrClassActive indicates a delete attempt against a class that is still active.
var ErrClassActive = errors.New("class is still active")

// ClassDeletionService coordinates the ordered, all-or-nothing removal of a
// class and everything depending on it.
type ClassDeletionService interface {
	DeleteClass(ctx context.Context, classID, teacherID uint) error
}

type classDeletionService struct {
	classes repository.ClassRepository
	logger  zerolog.Logger
}

// NewClassDeletionService constructs the deletion coordinator.
func NewClassDeletionService(classes repository.ClassRepository, logger zerolog.Logger) ClassDeletionService {
	return &classDeletionService{
		classes: classes,
		logger:  logger.With().Str("component", "class_deletion_service").Logger(),
	}
}

// DeleteClass removes the class with its grades, submissions, assignments,
// units and enrollments. The whole cascade runs in one transaction; any
// failure leaves the database unchanged.
func (s *classDeletionService) DeleteClass(ctx context.Context, classID, teacherID uint) error {
	tracer := otel.Tracer("github.com/noah-isme/aula-go-api/internal/service/class_deletion")
	ctx, span := tracer.Start(ctx, "class.delete_cascade",
		trace.WithAttributes(attribute.Int64("class.id", int64(classID))))
	defer span.End()

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "class_not_found")
			return ErrClassNotFound
		}
		span.RecordError(err)
		return err
	}

	if class.TeacherID != teacherID {
		span.SetStatus(codes.Error, "not_class_owner")
		return ErrNotClassOwner
	}

	if class.Active {
		span.SetStatus(codes.Error, "class_active")
		return ErrClassActive
	}

	if err := s.classes.DeleteCascade(ctx, classID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cascade_failed")
		s.logger.Error().Err(err).Uint("class_id", classID).Msg("class cascade delete failed, rolled back")
		return err
	}

	observability.ClassCascadeDeletesTotal().Inc()
	s.logger.Info().Uint("class_id", classID).Msg("class deleted with all dependents")

	return nil
}
