package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/academia/internal/app/models"
	"github.com/yigit/academia/internal/pkg/apperrors"
)

func validProfessor() *models.Professor {
	return &models.Professor{
		Person: models.Person{
			FirstName: "Elena",
			LastName:  "Navarro",
			Email:     "elena.navarro@example.edu",
			BirthDate: time.Date(1975, 11, 2, 0, 0, 0, 0, time.UTC),
		},
		EmployeeNumber: "D12345",
		Department:     "Mathematics",
	}
}

func TestProfessorLifecycle(t *testing.T) {
	store := newMemStore()
	svc := NewProfessorService(store.repositories().Professors)
	ctx := context.Background()

	professor := validProfessor()
	require.NoError(t, svc.CreateProfessor(ctx, professor))
	assert.Equal(t, int64(1), professor.Version)

	assert.ErrorIs(t, svc.CreateProfessor(ctx, validProfessor()), apperrors.ErrEmployeeNumberAlreadyExists)

	professor.Department = "Applied Mathematics"
	require.NoError(t, svc.UpdateProfessor(ctx, professor))
	assert.Equal(t, int64(2), professor.Version)

	got, err := svc.GetProfessorByID(ctx, professor.ID)
	require.NoError(t, err)
	assert.Equal(t, "Applied Mathematics", got.Department)

	all, err := svc.GetAllProfessors(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.DeleteProfessor(ctx, professor.ID))
	_, err = svc.GetProfessorByID(ctx, professor.ID)
	assert.ErrorIs(t, err, apperrors.ErrProfessorNotFound)
}

func TestDeleteProfessor_WithAssignedCourses(t *testing.T) {
	store := newMemStore()
	svc := NewProfessorService(store.repositories().Professors)
	ctx := context.Background()

	professor := validProfessor()
	require.NoError(t, svc.CreateProfessor(ctx, professor))
	courseID := store.seedCourse("CALC1")
	course := store.courses[courseID]
	course.ProfessorID = &professor.ID
	store.courses[courseID] = course

	err := svc.DeleteProfessor(ctx, professor.ID)
	assert.ErrorIs(t, err, apperrors.ErrProfessorHasAssignedCourses)
	assert.Contains(t, store.professors, professor.ID)
}

func TestProfessorValidation(t *testing.T) {
	svc := NewProfessorService(newMemStore().repositories().Professors)

	missingDept := validProfessor()
	missingDept.Department = " "
	assert.ErrorIs(t, svc.CreateProfessor(context.Background(), missingDept), apperrors.ErrValidationFailed)

	noVersion := validProfessor()
	noVersion.ID = 3
	assert.ErrorIs(t, svc.UpdateProfessor(context.Background(), noVersion), apperrors.ErrValidationFailed)
}
