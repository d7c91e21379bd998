package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aula-go-api/internal/dto"
	"github.com/noah-isme/aula-go-api/internal/models"
)

func newCatalogFixture(t *testing.T) (*fakeClassRepo, CatalogService) {
	t.Helper()
	classes := newFakeClassRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())
	return classes, NewCatalogService(classes, validate, testLogger())
}

func TestCatalogServiceCreateClassStartsInactive(t *testing.T) {
	_, svc := newCatalogFixture(t)

	class, err := svc.CreateClass(context.Background(), 10, dto.ClassCreateRequest{Title: "Algebra I"})
	require.NoError(t, err)
	require.False(t, class.Active)
	require.Equal(t, uint(10), class.TeacherID)
}

func TestCatalogServiceCreateClassValidation(t *testing.T) {
	classes, svc := newCatalogFixture(t)

	_, err := svc.CreateClass(context.Background(), 10, dto.ClassCreateRequest{Title: "ab"})
	require.Error(t, err)
	require.Empty(t, classes.classes)
}

func TestCatalogServiceUpdateClassPartial(t *testing.T) {
	_, svc := newCatalogFixture(t)
	class, err := svc.CreateClass(context.Background(), 10, dto.ClassCreateRequest{Title: "Algebra I", Description: "intro"})
	require.NoError(t, err)

	title := "Algebra II"
	updated, err := svc.UpdateClass(context.Background(), class.ID, 10, dto.ClassUpdateRequest{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "Algebra II", updated.Title)
	require.Equal(t, "intro", updated.Description, "fields left nil stay untouched")
}

func TestCatalogServiceUpdateClassRejectsNonOwner(t *testing.T) {
	_, svc := newCatalogFixture(t)
	class, err := svc.CreateClass(context.Background(), 10, dto.ClassCreateRequest{Title: "Algebra I"})
	require.NoError(t, err)

	title := "Hijacked"
	_, err = svc.UpdateClass(context.Background(), class.ID, 99, dto.ClassUpdateRequest{Title: &title})
	require.ErrorIs(t, err, ErrNotClassOwner)
}

func TestCatalogServiceSetClassActiveIdempotent(t *testing.T) {
	_, svc := newCatalogFixture(t)
	class, err := svc.CreateClass(context.Background(), 10, dto.ClassCreateRequest{Title: "Algebra I"})
	require.NoError(t, err)

	activated, err := svc.SetClassActive(context.Background(), class.ID, 10, true)
	require.NoError(t, err)
	require.True(t, activated.Active)

	again, err := svc.SetClassActive(context.Background(), class.ID, 10, true)
	require.NoError(t, err)
	require.True(t, again.Active)

	_, err = svc.SetClassActive(context.Background(), class.ID, 99, false)
	require.ErrorIs(t, err, ErrNotClassOwner)
}

func TestCatalogServiceGetClassNotFound(t *testing.T) {
	_, svc := newCatalogFixture(t)

	_, err := svc.GetClass(context.Background(), 404)
	require.ErrorIs(t, err, ErrClassNotFound)
}

func TestCatalogServiceUnitOwnershipChain(t *testing.T) {
	_, svc := newCatalogFixture(t)
	class, err := svc.CreateClass(context.Background(), 10, dto.ClassCreateRequest{Title: "Algebra I"})
	require.NoError(t, err)

	unit, err := svc.CreateUnit(context.Background(), class.ID, 10, dto.UnitCreateRequest{Title: "Linear equations", Position: 1})
	require.NoError(t, err)
	require.Equal(t, class.ID, unit.ClassID)

	_, err = svc.CreateUnit(context.Background(), class.ID, 99, dto.UnitCreateRequest{Title: "Intruder unit"})
	require.ErrorIs(t, err, ErrNotClassOwner)

	position := 3
	updated, err := svc.UpdateUnit(context.Background(), unit.ID, 10, dto.UnitUpdateRequest{Position: &position})
	require.NoError(t, err)
	require.Equal(t, 3, updated.Position)
	require.Equal(t, "Linear equations", updated.Title)

	err = svc.DeleteUnit(context.Background(), unit.ID, 99)
	require.ErrorIs(t, err, ErrNotClassOwner)

	err = svc.DeleteUnit(context.Background(), unit.ID, 10)
	require.NoError(t, err)

	err = svc.DeleteUnit(context.Background(), unit.ID, 10)
	require.ErrorIs(t, err, ErrUnitNotFound)
}

func TestCatalogServiceListClassesFiltersByTeacher(t *testing.T) {
	classes, svc := newCatalogFixture(t)
	classes.classes[1] = models.Class{ID: 1, Title: "Mine", TeacherID: 10}
	classes.classes[2] = models.Class{ID: 2, Title: "Theirs", TeacherID: 11}

	teacherID := uint(10)
	mine, err := svc.ListClasses(context.Background(), &teacherID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "Mine", mine[0].Title)

	all, err := svc.ListClasses(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
