package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
	appErrors "github.com/tonikampos/kampos-xestion-api/pkg/errors"
)

func TestEnrollmentServiceCreateRejectsDuplicate(t *testing.T) {
	stores := newTestStores(t)
	professor := seedProfessor(t, stores)
	student := seedStudent(t, stores, professor.ID, "Antía", "García")
	subject := seedSubject(t, stores, professor.ID, models.EvaluationConfig{})

	svc := NewEnrollmentService(stores.Enrollments, stores.Students, stores.Subjects, nil, nil)
	ctx := context.Background()
	input := EnrollmentInput{StudentID: student.ID, SubjectID: subject.ID}

	_, err := svc.Create(ctx, professor.ID, input)
	require.NoError(t, err)

	_, err = svc.Create(ctx, professor.ID, input)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateEnrollment.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceCreateChecksOwnership(t *testing.T) {
	stores := newTestStores(t)
	professor := seedProfessor(t, stores)
	student := seedStudent(t, stores, professor.ID, "Antía", "García")
	subject := seedSubject(t, stores, professor.ID, models.EvaluationConfig{})

	svc := NewEnrollmentService(stores.Enrollments, stores.Students, stores.Subjects, nil, nil)
	_, err := svc.Create(context.Background(), "other-professor", EnrollmentInput{
		StudentID: student.ID, SubjectID: subject.ID,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceDeleteRemovesGrade(t *testing.T) {
	stores := newTestStores(t)
	professor := seedProfessor(t, stores)
	student := seedStudent(t, stores, professor.ID, "Antía", "García")
	subject := seedSubject(t, stores, professor.ID, twoEvalConfig())
	enrollment := seedEnrollment(t, stores, student.ID, subject.ID)
	ctx := context.Background()
	require.NoError(t, stores.Grades.Upsert(ctx, &models.StudentGrade{
		StudentID: student.ID, SubjectID: subject.ID,
	}))

	svc := NewEnrollmentService(stores.Enrollments, stores.Students, stores.Subjects, nil, nil)
	require.NoError(t, svc.Delete(ctx, professor.ID, enrollment.ID))

	_, err := stores.Grades.FindByStudentAndSubject(ctx, student.ID, subject.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEnrollmentServiceDeleteNotFound(t *testing.T) {
	stores := newTestStores(t)
	svc := NewEnrollmentService(stores.Enrollments, stores.Students, stores.Subjects, nil, nil)

	err := svc.Delete(context.Background(), "prof1", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
