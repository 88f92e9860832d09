package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

func TestEnrollmentRepositoryExists(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM matriculas WHERE alumno_id = $1 AND asignatura_id = $2 LIMIT 1")).
		WithArgs("stu1", "sub1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), "stu1", "sub1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryExistsNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT 1 FROM matriculas").
		WithArgs("stu1", "sub1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.Exists(context.Background(), "stu1", "sub1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEnrollmentRepositoryDeleteCascadesGrade(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, alumno_id, asignatura_id, created_at, updated_at FROM matriculas").
		WithArgs("mat1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "alumno_id", "asignatura_id", "created_at", "updated_at"}).
			AddRow("mat1", "stu1", "sub1", time.Now(), time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notas WHERE alumno_id = $1 AND asignatura_id = $2")).
		WithArgs("stu1", "sub1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM matriculas WHERE id = $1")).
		WithArgs("mat1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "mat1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO matriculas").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	enrollment := &models.Enrollment{StudentID: "stu1", SubjectID: "sub1"}
	require.NoError(t, repo.Create(context.Background(), enrollment))
	assert.NotEmpty(t, enrollment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
