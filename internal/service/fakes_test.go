package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/aula-go-api/internal/dto"
	"github.com/noah-isme/aula-go-api/internal/models"
	"github.com/noah-isme/aula-go-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []dto.NotificationCreateRequest
}

func (f *fakeDispatcher) Dispatch(_ context.Context, payload dto.NotificationCreateRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, payload)
}

func (f *fakeDispatcher) sentTo(userID uint) []dto.NotificationCreateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matches []dto.NotificationCreateRequest
	for _, payload := range f.sent {
		if payload.UserID == userID {
			matches = append(matches, payload)
		}
	}
	return matches
}

type fakeClassRepo struct {
	classes   map[uint]models.Class
	units     map[uint]models.Unit
	deleted   []uint
	deleteErr error
	nextID    uint
}

func newFakeClassRepo() *fakeClassRepo {
	return &fakeClassRepo{
		classes: make(map[uint]models.Class),
		units:   make(map[uint]models.Unit),
		nextID:  1,
	}
}

func (f *fakeClassRepo) List(_ context.Context, teacherID *uint) ([]models.Class, error) {
	var classes []models.Class
	for _, class := range f.classes {
		if teacherID == nil || class.TeacherID == *teacherID {
			classes = append(classes, class)
		}
	}
	return classes, nil
}

func (f *fakeClassRepo) GetByID(_ context.Context, id uint) (models.Class, error) {
	class, ok := f.classes[id]
	if !ok {
		return models.Class{}, gorm.ErrRecordNotFound
	}
	return class, nil
}

func (f *fakeClassRepo) Create(_ context.Context, class *models.Class) error {
	class.ID = f.nextID
	f.nextID++
	f.classes[class.ID] = *class
	return nil
}

func (f *fakeClassRepo) Update(_ context.Context, class *models.Class) error {
	f.classes[class.ID] = *class
	return nil
}

func (f *fakeClassRepo) DeleteCascade(_ context.Context, id uint) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.classes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.classes, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeClassRepo) CreateUnit(_ context.Context, unit *models.Unit) error {
	unit.ID = f.nextID
	f.nextID++
	f.units[unit.ID] = *unit
	return nil
}

func (f *fakeClassRepo) GetUnitByID(_ context.Context, id uint) (models.Unit, error) {
	unit, ok := f.units[id]
	if !ok {
		return models.Unit{}, gorm.ErrRecordNotFound
	}
	return unit, nil
}

func (f *fakeClassRepo) UpdateUnit(_ context.Context, unit *models.Unit) error {
	f.units[unit.ID] = *unit
	return nil
}

func (f *fakeClassRepo) DeleteUnit(_ context.Context, id uint) error {
	if _, ok := f.units[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.units, id)
	return nil
}

type fakeAssignmentRepo struct {
	assignments map[uint]models.Assignment
	deleted     []uint
	updates     int
	nextID      uint
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[uint]models.Assignment), nextID: 1}
}

func (f *fakeAssignmentRepo) List(_ context.Context, filter repository.AssignmentFilter) ([]models.Assignment, int64, error) {
	var assignments []models.Assignment
	for _, assignment := range f.assignments {
		if filter.ClassID != nil && assignment.ClassID != *filter.ClassID {
			continue
		}
		if filter.PublishedOnly && !assignment.Published {
			continue
		}
		assignments = append(assignments, assignment)
	}
	return assignments, int64(len(assignments)), nil
}

func (f *fakeAssignmentRepo) GetByID(_ context.Context, id uint) (models.Assignment, error) {
	assignment, ok := f.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (f *fakeAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	assignment.ID = f.nextID
	f.nextID++
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Update(_ context.Context, assignment *models.Assignment) error {
	f.updates++
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) DeleteCascade(_ context.Context, id uint) error {
	if _, ok := f.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.assignments, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeUserRepo struct {
	users map[uint]models.User
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uint]models.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uint) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == 0 {
		user.ID = uint(len(f.users) + 1)
	}
	f.users[user.ID] = *user
	return nil
}

type fakeEnrollmentRepo struct {
	rows      []models.Enrollment
	createErr error
}

func (f *fakeEnrollmentRepo) Create(_ context.Context, enrollment *models.Enrollment) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, row := range f.rows {
		if row.StudentID == enrollment.StudentID && row.ClassID == enrollment.ClassID {
			return gorm.ErrDuplicatedKey
		}
	}
	enrollment.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, *enrollment)
	return nil
}

func (f *fakeEnrollmentRepo) Delete(_ context.Context, studentID, classID uint) error {
	for i, row := range f.rows {
		if row.StudentID == studentID && row.ClassID == classID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeEnrollmentRepo) Exists(_ context.Context, studentID, classID uint) (bool, error) {
	for _, row := range f.rows {
		if row.StudentID == studentID && row.ClassID == classID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEnrollmentRepo) ListByStudent(_ context.Context, studentID uint, activeClassesOnly bool) ([]models.Enrollment, error) {
	var matches []models.Enrollment
	for _, row := range f.rows {
		if row.StudentID != studentID {
			continue
		}
		if activeClassesOnly && !row.Class.Active {
			continue
		}
		matches = append(matches, row)
	}
	return matches, nil
}

func (f *fakeEnrollmentRepo) ListByClass(_ context.Context, classID uint) ([]models.Enrollment, error) {
	var matches []models.Enrollment
	for _, row := range f.rows {
		if row.ClassID == classID {
			matches = append(matches, row)
		}
	}
	return matches, nil
}

type fakeSubmissionRepo struct {
	rows       map[uint]models.Submission
	nextID     uint
	createErrs []error
	// raceRow is inserted when Create fails with a duplicate key, modeling
	// a concurrent writer whose insert won.
	raceRow *models.Submission
	// afterGet runs once after GetByAssignmentAndStudent returns, modeling
	// a concurrent writer acting between the read and the write.
	afterGet func()
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{rows: make(map[uint]models.Submission), nextID: 1}
}

func (f *fakeSubmissionRepo) List(_ context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	var matches []models.Submission
	for _, row := range f.rows {
		if filter.AssignmentID != nil && row.AssignmentID != *filter.AssignmentID {
			continue
		}
		if filter.StudentID != nil && row.StudentID != *filter.StudentID {
			continue
		}
		if filter.Status != nil && row.Status != *filter.Status {
			continue
		}
		matches = append(matches, row)
	}
	return matches, nil
}

func (f *fakeSubmissionRepo) ListByTeacher(_ context.Context, teacherID uint) ([]models.Submission, error) {
	var matches []models.Submission
	for _, row := range f.rows {
		if row.Assignment.Class.TeacherID == teacherID {
			matches = append(matches, row)
		}
	}
	return matches, nil
}

func (f *fakeSubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	row, ok := f.rows[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (f *fakeSubmissionRepo) GetByAssignmentAndStudent(_ context.Context, assignmentID, studentID uint) (models.Submission, error) {
	for _, row := range f.rows {
		if row.AssignmentID == assignmentID && row.StudentID == studentID {
			if f.afterGet != nil {
				hook := f.afterGet
				f.afterGet = nil
				defer hook()
			}
			return row, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) && f.raceRow != nil {
				f.seed(*f.raceRow)
				f.raceRow = nil
			}
			return err
		}
	}
	for _, row := range f.rows {
		if row.AssignmentID == submission.AssignmentID && row.StudentID == submission.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	submission.ID = f.nextID
	f.nextID++
	f.rows[submission.ID] = *submission
	return nil
}

// UpdateIfUngraded mirrors the storage guard: the write only lands while the
// stored row, not the caller's copy, is ungraded.
func (f *fakeSubmissionRepo) UpdateIfUngraded(_ context.Context, submission *models.Submission) error {
	stored, ok := f.rows[submission.ID]
	if !ok || stored.Status == models.SubmissionStatusGraded {
		return gorm.ErrRecordNotFound
	}
	f.rows[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) seed(submission models.Submission) models.Submission {
	if submission.ID == 0 {
		submission.ID = f.nextID
		f.nextID++
	} else if submission.ID >= f.nextID {
		f.nextID = submission.ID + 1
	}
	f.rows[submission.ID] = submission
	return submission
}

type fakeGradeRepo struct {
	grades map[uint]models.Grade
	nextID uint
}

func newFakeGradeRepo() *fakeGradeRepo {
	return &fakeGradeRepo{grades: make(map[uint]models.Grade), nextID: 1}
}

func (f *fakeGradeRepo) CreateForSubmission(_ context.Context, grade *models.Grade) error {
	if _, exists := f.grades[grade.SubmissionID]; exists {
		return gorm.ErrDuplicatedKey
	}
	grade.ID = f.nextID
	f.nextID++
	f.grades[grade.SubmissionID] = *grade
	return nil
}

func (f *fakeGradeRepo) GetBySubmission(_ context.Context, submissionID uint) (models.Grade, error) {
	grade, ok := f.grades[submissionID]
	if !ok {
		return models.Grade{}, gorm.ErrRecordNotFound
	}
	return grade, nil
}

type fakeNotificationRepo struct {
	rows      []models.Notification
	createErr error
}

func (f *fakeNotificationRepo) Create(_ context.Context, notification *models.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	notification.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, *notification)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	var matches []models.Notification
	for _, row := range f.rows {
		if row.UserID == userID {
			matches = append(matches, row)
		}
	}
	return matches, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id, userID uint) (models.Notification, error) {
	for i, row := range f.rows {
		if row.ID == id && row.UserID == userID {
			f.rows[i].Read = true
			return f.rows[i], nil
		}
	}
	return models.Notification{}, gorm.ErrRecordNotFound
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, userID uint) (int64, error) {
	var updated int64
	for i, row := range f.rows {
		if row.UserID == userID && !row.Read {
			f.rows[i].Read = true
			updated++
		}
	}
	return updated, nil
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, userID uint) (int64, error) {
	var count int64
	for _, row := range f.rows {
		if row.UserID == userID && !row.Read {
			count++
		}
	}
	return count, nil
}
