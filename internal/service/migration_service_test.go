package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/tonikampos/kampos-xestion-api/pkg/errors"
)

func TestMigrationCopiesProfessorStudentsSubjects(t *testing.T) {
	source := newTestStores(t)
	target := newTestStores(t)
	professor := seedProfessor(t, source)
	student := seedStudent(t, source, professor.ID, "Antía", "García")
	subject := seedSubject(t, source, professor.ID, twoEvalConfig())
	seedEnrollment(t, source, student.ID, subject.ID)
	ctx := context.Background()

	svc := NewMigrationService(source, target, nil)
	result, err := svc.Run(ctx, professor.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, result.MigratedProfessors)
	assert.Equal(t, 1, result.MigratedStudents)
	assert.Equal(t, 1, result.MigratedSubjects)
	assert.Equal(t, 1, result.SkippedEnrollments)
	assert.Empty(t, result.Failures)

	copied, err := target.Students.FindByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "García", copied.Surname)

	copiedSubject, err := target.Subjects.FindByID(ctx, subject.ID)
	require.NoError(t, err)
	assert.Len(t, copiedSubject.Config.Evaluations, 2)
}

func TestMigrationIsIdempotent(t *testing.T) {
	source := newTestStores(t)
	target := newTestStores(t)
	professor := seedProfessor(t, source)
	seedStudent(t, source, professor.ID, "Antía", "García")

	svc := NewMigrationService(source, target, nil)
	_, err := svc.Run(context.Background(), professor.ID)
	require.NoError(t, err)

	result, err := svc.Run(context.Background(), professor.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.MigratedProfessors)
	assert.Equal(t, 0, result.MigratedStudents)
}

func TestMigrationUnknownProfessor(t *testing.T) {
	svc := NewMigrationService(newTestStores(t), newTestStores(t), nil)
	_, err := svc.Run(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
