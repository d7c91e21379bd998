package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/aula-go-api/internal/models"
)

func TestClassRepositoryDeleteCascadeRemovesDependents(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClassRepository(db)

	doomed := models.Class{Title: "Algebra", TeacherID: 1}
	survivor := models.Class{Title: "Biology", TeacherID: 1}
	require.NoError(t, db.Create(&doomed).Error)
	require.NoError(t, db.Create(&survivor).Error)

	unit := models.Unit{ClassID: doomed.ID, Title: "Linear equations"}
	require.NoError(t, db.Create(&unit).Error)

	assignment := models.Assignment{ClassID: doomed.ID, Title: "Worksheet 1", MaxScore: 100}
	keptAssignment := models.Assignment{ClassID: survivor.ID, Title: "Cell structure", MaxScore: 100}
	require.NoError(t, db.Create(&assignment).Error)
	require.NoError(t, db.Create(&keptAssignment).Error)

	enrollment := models.Enrollment{StudentID: 7, ClassID: doomed.ID, EnrolledAt: time.Now()}
	keptEnrollment := models.Enrollment{StudentID: 7, ClassID: survivor.ID, EnrolledAt: time.Now()}
	require.NoError(t, db.Create(&enrollment).Error)
	require.NoError(t, db.Create(&keptEnrollment).Error)

	submission := models.Submission{AssignmentID: assignment.ID, StudentID: 7, Status: models.SubmissionStatusSubmitted}
	require.NoError(t, db.Create(&submission).Error)

	grade := models.Grade{SubmissionID: submission.ID, Score: 90, MaxScore: 100, GradedBy: 1, GradedAt: time.Now()}
	require.NoError(t, db.Create(&grade).Error)

	require.NoError(t, repo.DeleteCascade(context.Background(), doomed.ID))

	for _, check := range []struct {
		model interface{}
		where string
		args  []interface{}
	}{
		{&models.Class{}, "id = ?", []interface{}{doomed.ID}},
		{&models.Unit{}, "class_id = ?", []interface{}{doomed.ID}},
		{&models.Assignment{}, "class_id = ?", []interface{}{doomed.ID}},
		{&models.Enrollment{}, "class_id = ?", []interface{}{doomed.ID}},
		{&models.Submission{}, "assignment_id = ?", []interface{}{assignment.ID}},
		{&models.Grade{}, "submission_id = ?", []interface{}{submission.ID}},
	} {
		var count int64
		require.NoError(t, db.Model(check.model).Where(check.where, check.args...).Count(&count).Error)
		require.Zero(t, count)
	}

	var keptClasses, keptAssignments, keptEnrollments int64
	require.NoError(t, db.Model(&models.Class{}).Count(&keptClasses).Error)
	require.NoError(t, db.Model(&models.Assignment{}).Count(&keptAssignments).Error)
	require.NoError(t, db.Model(&models.Enrollment{}).Count(&keptEnrollments).Error)
	require.Equal(t, int64(1), keptClasses)
	require.Equal(t, int64(1), keptAssignments)
	require.Equal(t, int64(1), keptEnrollments)
}

func TestClassRepositoryDeleteCascadeRollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClassRepository(db)

	class := models.Class{Title: "Algebra", TeacherID: 1}
	require.NoError(t, db.Create(&class).Error)

	unit := models.Unit{ClassID: class.ID, Title: "Linear equations"}
	require.NoError(t, db.Create(&unit).Error)

	assignment := models.Assignment{ClassID: class.ID, Title: "Worksheet 1", MaxScore: 100}
	require.NoError(t, db.Create(&assignment).Error)

	enrollment := models.Enrollment{StudentID: 7, ClassID: class.ID, EnrolledAt: time.Now()}
	require.NoError(t, db.Create(&enrollment).Error)

	submission := models.Submission{AssignmentID: assignment.ID, StudentID: 7, Status: models.SubmissionStatusSubmitted}
	require.NoError(t, db.Create(&submission).Error)

	grade := models.Grade{SubmissionID: submission.ID, Score: 90, MaxScore: 100, GradedBy: 1, GradedAt: time.Now()}
	require.NoError(t, db.Create(&grade).Error)

	// Fail the enrollment step, after grades, submissions, assignments and
	// units were already deleted inside the transaction.
	forcedErr := errors.New("enrollment delete failed")
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("force_enrollment_failure", func(tx *gorm.DB) {
		if tx.Statement.Table == "enrollments" {
			tx.AddError(forcedErr)
		}
	}))
	t.Cleanup(func() {
		_ = db.Callback().Delete().Remove("force_enrollment_failure")
	})

	err := repo.DeleteCascade(context.Background(), class.ID)
	require.ErrorIs(t, err, forcedErr)

	for _, check := range []struct {
		model interface{}
		where string
		args  []interface{}
	}{
		{&models.Class{}, "id = ?", []interface{}{class.ID}},
		{&models.Unit{}, "class_id = ?", []interface{}{class.ID}},
		{&models.Assignment{}, "class_id = ?", []interface{}{class.ID}},
		{&models.Enrollment{}, "class_id = ?", []interface{}{class.ID}},
		{&models.Submission{}, "assignment_id = ?", []interface{}{assignment.ID}},
		{&models.Grade{}, "submission_id = ?", []interface{}{submission.ID}},
	} {
		var count int64
		require.NoError(t, db.Model(check.model).Where(check.where, check.args...).Count(&count).Error)
		require.Equal(t, int64(1), count, "every original row must survive a failed cascade")
	}
}

func TestClassRepositoryDeleteCascadeMissingClass(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClassRepository(db)

	err := repo.DeleteCascade(context.Background(), 999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestClassRepositoryDeleteUnitDetachesAssignments(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClassRepository(db)

	class := models.Class{Title: "History", TeacherID: 2}
	require.NoError(t, db.Create(&class).Error)

	unit := models.Unit{ClassID: class.ID, Title: "Antiquity"}
	require.NoError(t, db.Create(&unit).Error)

	assignment := models.Assignment{ClassID: class.ID, UnitID: &unit.ID, Title: "Essay", MaxScore: 100}
	require.NoError(t, db.Create(&assignment).Error)

	require.NoError(t, repo.DeleteUnit(context.Background(), unit.ID))

	var reloaded models.Assignment
	require.NoError(t, db.First(&reloaded, assignment.ID).Error)
	require.Nil(t, reloaded.UnitID, "assignment should move to the ungrouped bucket")

	err := db.First(&models.Unit{}, unit.ID).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestClassRepositoryGetByIDOrdersUnits(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClassRepository(db)

	class := models.Class{Title: "Physics", TeacherID: 3}
	require.NoError(t, db.Create(&class).Error)

	second := models.Unit{ClassID: class.ID, Title: "Optics", Position: 2}
	first := models.Unit{ClassID: class.ID, Title: "Mechanics", Position: 1}
	require.NoError(t, db.Create(&second).Error)
	require.NoError(t, db.Create(&first).Error)

	loaded, err := repo.GetByID(context.Background(), class.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Units, 2)
	require.Equal(t, "Mechanics", loaded.Units[0].Title)
	require.Equal(t, "Optics", loaded.Units[1].Title)
}
