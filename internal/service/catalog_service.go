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

// ErrClassNotFound indicates the requested class does not exist.
var ErrClassNotFound = errors.New("class not found")

// ErrUnitNotFound indicates the requested unit does not exist.
var ErrUnitNotFound = errors.New("unit not found")

// ErrNotClassOwner indicates the caller does not own the class.
var ErrNotClassOwner = errors.New("caller is not the owning teacher")

// CatalogService exposes class and unit use cases for teachers.
type CatalogService interface {
	ListClasses(ctx context.Context, teacherID *uint) ([]dto.ClassResponse, error)
	GetClass(ctx context.Context, id uint) (dto.ClassResponse, error)
	CreateClass(ctx context.Context, teacherID uint, payload dto.ClassCreateRequest) (dto.ClassResponse, error)
	UpdateClass(ctx context.Context, id, teacherID uint, payload dto.ClassUpdateRequest) (dto.ClassResponse, error)
	SetClassActive(ctx context.Context, id, teacherID uint, active bool) (dto.ClassResponse, error)

	CreateUnit(ctx context.Context, classID, teacherID uint, payload dto.UnitCreateRequest) (dto.UnitResponse, error)
	UpdateUnit(ctx context.Context, unitID, teacherID uint, payload dto.UnitUpdateRequest) (dto.UnitResponse, error)
	DeleteUnit(ctx context.Context, unitID, teacherID uint) error
}

type catalogService struct {
	classes   repository.ClassRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCatalogService builds a new catalog service.
func NewCatalogService(classes repository.ClassRepository, validate *validator.Validate, logger zerolog.Logger) CatalogService {
	return &catalogService{
		classes:   classes,
		validator: validate,
		logger:    logger.With().Str("component", "catalog_service").Logger(),
		now:       time.Now,
	}
}

func (s *catalogService) ListClasses(ctx context.Context, teacherID *uint) ([]dto.ClassResponse, error) {
	classes, err := s.classes.List(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	return dto.NewClassResponseSlice(classes), nil
}

func (s *catalogService) GetClass(ctx context.Context, id uint) (dto.ClassResponse, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	return dto.NewClassResponse(class), nil
}

func (s *catalogService) CreateClass(ctx context.Context, teacherID uint, payload dto.ClassCreateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	// New classes start inactive so nothing can be published before the
	// teacher opens the class.
	class := models.Class{
		Title:       payload.Title,
		Description: payload.Description,
		Active:      false,
		TeacherID:   teacherID,
	}

	if err := s.classes.Create(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Uint("teacher_id", teacherID).Msg("class created")

	return dto.NewClassResponse(class), nil
}

func (s *catalogService) UpdateClass(ctx context.Context, id, teacherID uint, payload dto.ClassUpdateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	class, err := s.ownedClass(ctx, id, teacherID)
	if err != nil {
		return dto.ClassResponse{}, err
	}

	if payload.Title != nil {
		class.Title = *payload.Title
	}
	if payload.Description != nil {
		class.Description = *payload.Description
	}

	if err := s.classes.Update(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Msg("class updated")

	return dto.NewClassResponse(class), nil
}

// SetClassActive toggles the activation gate. Deactivating has no side
// effects on existing assignments; it only blocks future publish attempts.
func (s *catalogService) SetClassActive(ctx context.Context, id, teacherID uint, active bool) (dto.ClassResponse, error) {
	class, err := s.ownedClass(ctx, id, teacherID)
	if err != nil {
		return dto.ClassResponse{}, err
	}

	if class.Active == active {
		return dto.NewClassResponse(class), nil
	}

	class.Active = active
	if err := s.classes.Update(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Bool("active", active).Msg("class activation toggled")

	return dto.NewClassResponse(class), nil
}

func (s *catalogService) CreateUnit(ctx context.Context, classID, teacherID uint, payload dto.UnitCreateRequest) (dto.UnitResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UnitResponse{}, err
	}

	if _, err := s.ownedClass(ctx, classID, teacherID); err != nil {
		return dto.UnitResponse{}, err
	}

	unit := models.Unit{
		ClassID:  classID,
		Title:    payload.Title,
		Position: payload.Position,
	}

	if err := s.classes.CreateUnit(ctx, &unit); err != nil {
		return dto.UnitResponse{}, err
	}

	s.logger.Info().Uint("unit_id", unit.ID).Uint("class_id", classID).Msg("unit created")

	return dto.NewUnitResponse(unit), nil
}

func (s *catalogService) UpdateUnit(ctx context.Context, unitID, teacherID uint, payload dto.UnitUpdateRequest) (dto.UnitResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UnitResponse{}, err
	}

	unit, err := s.ownedUnit(ctx, unitID, teacherID)
	if err != nil {
		return dto.UnitResponse{}, err
	}

	if payload.Title != nil {
		unit.Title = *payload.Title
	}
	if payload.Position != nil {
		unit.Position = *payload.Position
	}

	if err := s.classes.UpdateUnit(ctx, &unit); err != nil {
		return dto.UnitResponse{}, err
	}

	return dto.NewUnitResponse(unit), nil
}

// DeleteUnit removes the unit; its assignments survive and drop back to the
// ungrouped bucket.
func (s *catalogService) DeleteUnit(ctx context.Context, unitID, teacherID uint) error {
	if _, err := s.ownedUnit(ctx, unitID, teacherID); err != nil {
		return err
	}

	if err := s.classes.DeleteUnit(ctx, unitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnitNotFound
		}
		return err
	}

	s.logger.Info().Uint("unit_id", unitID).Msg("unit deleted, assignments ungrouped")

	return nil
}

func (s *catalogService) ownedClass(ctx context.Context, id, teacherID uint) (models.Class, error) {
	class, err := s.classes.GetByID(ctx, id)
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

func (s *catalogService) ownedUnit(ctx context.Context, unitID, teacherID uint) (models.Unit, error) {
	unit, err := s.classes.GetUnitByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Unit{}, ErrUnitNotFound
		}
		return models.Unit{}, err
	}

	if _, err := s.ownedClass(ctx, unit.ClassID, teacherID); err != nil {
		return models.Unit{}, err
	}

	return unit, nil
}
