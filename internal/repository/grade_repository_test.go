package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

func TestGradeRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec("INSERT INTO notas").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	grade := &models.StudentGrade{
		StudentID: "stu1",
		SubjectID: "sub1",
		Evaluations: models.EvaluationGrades{
			{EvaluationID: "ev1", TestGrades: []models.TestGrade{{TestID: "t1", Value: 7}}},
		},
	}
	require.NoError(t, repo.Upsert(context.Background(), grade))
	assert.NotEmpty(t, grade.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryFindByStudentAndSubject(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	doc := `[{"evaluation_id":"ev1","test_grades":[{"test_id":"t1","value":8.5}]}]`
	rows := sqlmock.NewRows([]string{"id", "alumno_id", "asignatura_id", "avaliaciois", "nota_final", "created_at", "updated_at"}).
		AddRow("nota1", "stu1", "sub1", []byte(doc), 8.5, time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, alumno_id, asignatura_id, avaliaciois, nota_final").
		WithArgs("stu1", "sub1").
		WillReturnRows(rows)

	grade, err := repo.FindByStudentAndSubject(context.Background(), "stu1", "sub1")
	require.NoError(t, err)
	require.Len(t, grade.Evaluations, 1)
	assert.Equal(t, "ev1", grade.Evaluations[0].EvaluationID)
	require.NotNil(t, grade.FinalGrade)
	assert.Equal(t, 8.5, *grade.FinalGrade)
	assert.NoError(t, mock.ExpectationsWereMet())
}
