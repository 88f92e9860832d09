package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

func TestStatsServiceSubjectStats(t *testing.T) {
	stores := newTestStores(t)
	professor := seedProfessor(t, stores)
	subject := seedSubject(t, stores, professor.ID, twoEvalConfig())
	gradeSvc := newGradeService(stores)
	ctx := context.Background()

	scores := map[string][2]float64{
		"Antía":  {8, 6},
		"Breixo": {4, 2},
		"Carme":  {9, 10},
	}
	for name, values := range scores {
		student := seedStudent(t, stores, professor.ID, name, name)
		seedEnrollment(t, stores, student.ID, subject.ID)
		_, err := gradeSvc.SaveGrades(ctx, professor.ID, student.ID, subject.ID, models.EvaluationGrades{
			{EvaluationID: "ev1", TestGrades: []models.TestGrade{
				{TestID: "t1", Value: values[0]}, {TestID: "t2", Value: values[0]},
			}},
			{EvaluationID: "ev2", TestGrades: []models.TestGrade{{TestID: "t3", Value: values[1]}}},
		})
		require.NoError(t, err)
	}
	// One enrolled student without grades.
	ungraded := seedStudent(t, stores, professor.ID, "Diego", "Diego")
	seedEnrollment(t, stores, ungraded.ID, subject.ID)

	svc := NewStatsService(stores.Subjects, stores.Enrollments, stores.Grades, nil, 0, nil)
	stats, err := svc.SubjectStats(ctx, professor.ID, subject.ID)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.StudentCount)
	assert.Equal(t, 3, stats.GradedCount)
	// Finals: 7.0, 3.0, 9.5.
	assert.InDelta(t, 6.5, stats.Mean, 0.001)
	assert.Equal(t, 2, stats.PassCount)
	assert.Equal(t, 1, stats.FailCount)
	assert.InDelta(t, 66.67, stats.PassRate, 0.01)
	assert.Len(t, stats.Evaluations, 2)
}

func TestStatsServiceUsesCache(t *testing.T) {
	stores := newTestStores(t)
	professor := seedProfessor(t, stores)
	subject := seedSubject(t, stores, professor.ID, twoEvalConfig())
	cache := newMemoryCache()

	svc := NewStatsService(stores.Subjects, stores.Enrollments, stores.Grades, cache, time.Minute, nil)
	ctx := context.Background()

	_, err := svc.SubjectStats(ctx, professor.ID, subject.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// Second read is served from cache.
	_, err = svc.SubjectStats(ctx, professor.ID, subject.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	svc.Invalidate(ctx, professor.ID, subject.ID)
	assert.Equal(t, 1, cache.deletes)

	_, err = svc.SubjectStats(ctx, professor.ID, subject.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.sets)
}

func TestStatsServiceOverview(t *testing.T) {
	stores := newTestStores(t)
	professor := seedProfessor(t, stores)
	subject := seedSubject(t, stores, professor.ID, twoEvalConfig())
	gradeSvc := newGradeService(stores)
	ctx := context.Background()

	student := seedStudent(t, stores, professor.ID, "Antía", "García")
	seedEnrollment(t, stores, student.ID, subject.ID)
	_, err := gradeSvc.SaveGrades(ctx, professor.ID, student.ID, subject.ID, models.EvaluationGrades{
		{EvaluationID: "ev1", TestGrades: []models.TestGrade{
			{TestID: "t1", Value: 8}, {TestID: "t2", Value: 8},
		}},
		{EvaluationID: "ev2", TestGrades: []models.TestGrade{{TestID: "t3", Value: 6}}},
	})
	require.NoError(t, err)

	svc := NewStatsService(stores.Subjects, stores.Enrollments, stores.Grades, nil, 0, nil)
	overview, err := svc.Overview(ctx, professor.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, overview.SubjectCount)
	assert.Equal(t, 1, overview.StudentCount)
	assert.InDelta(t, 7.0, overview.WeightedMean, 0.001)
	require.Len(t, overview.Levels, 1)
	assert.Equal(t, models.LevelSMR, overview.Levels[0].Level)
}
