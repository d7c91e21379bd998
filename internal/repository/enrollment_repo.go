package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/aula-go-api/internal/models"
)

// EnrollmentRepository handles persistence for class memberships.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, studentID, classID uint) error
	Exists(ctx context.Context, studentID, classID uint) (bool, error)
	ListByStudent(ctx context.Context, studentID uint, activeClassesOnly bool) ([]models.Enrollment, error)
	ListByClass(ctx context.Context, classID uint) ([]models.Enrollment, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository constructs a repository backed by GORM.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepository) Delete(ctx context.Context, studentID, classID uint) error {
	result := r.db.WithContext(ctx).
		Where("student_id = ? AND class_id = ?", studentID, classID).
		Delete(&models.Enrollment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *enrollmentRepository) Exists(ctx context.Context, studentID, classID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("student_id = ? AND class_id = ?", studentID, classID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID uint, activeClassesOnly bool) ([]models.Enrollment, error) {
	query := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Preload("Class").
		Where("enrollments.student_id = ?", studentID)

	if activeClassesOnly {
		query = query.
			Joins("JOIN classes ON classes.id = enrollments.class_id").
			Where("classes.active = ?", true)
	}

	var enrollments []models.Enrollment
	if err := query.Order("enrollments.enrolled_at DESC").Find(&enrollments).Error; err != nil {
		return nil, err
	}

	return enrollments, nil
}

// ListByClass returns the class roster ordered by student last then first
// name, which keeps derived views deterministic.
func (r *enrollmentRepository) ListByClass(ctx context.Context, classID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Preload("Student").
		Joins("JOIN users ON users.id = enrollments.student_id").
		Where("enrollments.class_id = ?", classID).
		Order("users.last_name, users.first_name, users.id").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}

	return enrollments, nil
}
