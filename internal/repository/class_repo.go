package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/aula-go-api/internal/models"
)

// ClassRepository defines data operations for classes and their units.
type ClassRepository interface {
	List(ctx context.Context, teacherID *uint) ([]models.Class, error)
	GetByID(ctx context.Context, id uint) (models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	DeleteCascade(ctx context.Context, id uint) error

	CreateUnit(ctx context.Context, unit *models.Unit) error
	GetUnitByID(ctx context.Context, id uint) (models.Unit, error)
	UpdateUnit(ctx context.Context, unit *models.Unit) error
	DeleteUnit(ctx context.Context, id uint) error
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository constructs a repository backed by GORM.
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) List(ctx context.Context, teacherID *uint) ([]models.Class, error) {
	query := r.db.WithContext(ctx).Model(&models.Class{}).Preload("Units")
	if teacherID != nil {
		query = query.Where("teacher_id = ?", *teacherID)
	}

	var classes []models.Class
	if err := query.Order("created_at DESC").Find(&classes).Error; err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *classRepository) GetByID(ctx context.Context, id uint) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).Preload("Units", func(db *gorm.DB) *gorm.DB {
		return db.Order("units.position, units.id")
	}).First(&class, id).Error; err != nil {
		return models.Class{}, err
	}

	return class, nil
}

func (r *classRepository) Create(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepository) Update(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Save(class).Error
}

// DeleteCascade removes a class and every dependent row in child-first order
// inside a single transaction. A failure at any step rolls everything back.
func (r *classRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assignmentIDs := tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.Assignment{}).Select("id").Where("class_id = ?", id)
		submissionIDs := tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.Submission{}).Select("id").Where("assignment_id IN (?)", assignmentIDs)

		if err := tx.Where("submission_id IN (?)", submissionIDs).Delete(&models.Grade{}).Error; err != nil {
			return err
		}

		if err := tx.Where("assignment_id IN (?)", assignmentIDs).Delete(&models.Submission{}).Error; err != nil {
			return err
		}

		if err := tx.Where("class_id = ?", id).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("class_id = ?", id).Delete(&models.Unit{}).Error; err != nil {
			return err
		}

		if err := tx.Where("class_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Class{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}

func (r *classRepository) CreateUnit(ctx context.Context, unit *models.Unit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

func (r *classRepository) GetUnitByID(ctx context.Context, id uint) (models.Unit, error) {
	var unit models.Unit
	if err := r.db.WithContext(ctx).First(&unit, id).Error; err != nil {
		return models.Unit{}, err
	}

	return unit, nil
}

func (r *classRepository) UpdateUnit(ctx context.Context, unit *models.Unit) error {
	return r.db.WithContext(ctx).Save(unit).Error
}

// DeleteUnit removes a unit and moves its assignments to the ungrouped
// bucket by clearing their unit reference. Both steps share a transaction.
func (r *classRepository) DeleteUnit(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Assignment{}).
			Where("unit_id = ?", id).
			Update("unit_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Unit{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}
