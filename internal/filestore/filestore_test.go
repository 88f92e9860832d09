package filestore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

func newTestDB(t *testing.T) *DB {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	return db
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	require.NoError(t, err)
	stores := db.Stores()
	ctx := context.Background()

	student := &models.Student{ProfessorID: "prof1", Name: "Antía", Surname: "García", Email: "antia@example.com"}
	require.NoError(t, stores.Students.Create(ctx, student))
	require.NotEmpty(t, student.ID)

	// A fresh open must see the flushed state.
	db2, err := Open(dir)
	require.NoError(t, err)
	found, err := db2.Stores().Students.FindByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Antía", found.Name)
}

func TestFileStoreNotFound(t *testing.T) {
	stores := newTestDB(t).Stores()
	ctx := context.Background()

	_, err := stores.Students.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = stores.Professors.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.ErrorIs(t, stores.Subjects.Delete(ctx, "missing"), sql.ErrNoRows)
}

func TestFileStoreStudentListFilterAndSort(t *testing.T) {
	stores := newTestDB(t).Stores()
	ctx := context.Background()

	for _, st := range []models.Student{
		{ProfessorID: "prof1", Name: "Breixo", Surname: "Souto", Email: "breixo@example.com"},
		{ProfessorID: "prof1", Name: "Antía", Surname: "García", Email: "antia@example.com"},
		{ProfessorID: "prof2", Name: "Carme", Surname: "Alonso", Email: "carme@example.com"},
	} {
		st := st
		require.NoError(t, stores.Students.Create(ctx, &st))
	}

	students, total, err := stores.Students.List(ctx, "prof1", models.StudentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, students, 2)
	assert.Equal(t, "García", students[0].Surname)

	students, total, err = stores.Students.List(ctx, "prof1", models.StudentFilter{Search: "breixo"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Souto", students[0].Surname)
}

func TestFileStoreEnrollmentDeleteCascadesGrade(t *testing.T) {
	stores := newTestDB(t).Stores()
	ctx := context.Background()

	enrollment := &models.Enrollment{StudentID: "stu1", SubjectID: "sub1"}
	require.NoError(t, stores.Enrollments.Create(ctx, enrollment))
	require.NoError(t, stores.Grades.Upsert(ctx, &models.StudentGrade{StudentID: "stu1", SubjectID: "sub1"}))

	require.NoError(t, stores.Enrollments.Delete(ctx, enrollment.ID))

	_, err := stores.Grades.FindByStudentAndSubject(ctx, "stu1", "sub1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	exists, err := stores.Enrollments.Exists(ctx, "stu1", "sub1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileStoreGradeUpsertKeepsOneRecordPerPair(t *testing.T) {
	stores := newTestDB(t).Stores()
	ctx := context.Background()

	first := &models.StudentGrade{StudentID: "stu1", SubjectID: "sub1"}
	require.NoError(t, stores.Grades.Upsert(ctx, first))

	final := 7.4
	second := &models.StudentGrade{StudentID: "stu1", SubjectID: "sub1", FinalGrade: &final}
	require.NoError(t, stores.Grades.Upsert(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	grades, err := stores.Grades.ListBySubject(ctx, "sub1")
	require.NoError(t, err)
	require.Len(t, grades, 1)
	require.NotNil(t, grades[0].FinalGrade)
	assert.Equal(t, 7.4, *grades[0].FinalGrade)
}

func TestFileStoreSubjectConfigUpdate(t *testing.T) {
	stores := newTestDB(t).Stores()
	ctx := context.Background()

	subject := &models.Subject{ProfessorID: "prof1", Name: "Redes", Level: models.LevelSMR, Year: 1}
	require.NoError(t, stores.Subjects.Create(ctx, subject))

	cfg := models.EvaluationConfig{Evaluations: []models.Evaluation{
		{ID: "ev1", Number: 1, Weight: 100, Tests: []models.TestDef{{ID: "t1", Name: "Exame", Weight: 100}}},
	}}
	require.NoError(t, stores.Subjects.UpdateConfig(ctx, subject.ID, cfg))

	found, err := stores.Subjects.FindByID(ctx, subject.ID)
	require.NoError(t, err)
	require.Len(t, found.Config.Evaluations, 1)
	assert.Equal(t, "ev1", found.Config.Evaluations[0].ID)
}
