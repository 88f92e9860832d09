package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

func gradeWithFinal(studentID string, final float64) models.StudentGrade {
	return models.StudentGrade{StudentID: studentID, SubjectID: "sub1", FinalGrade: &final}
}

func TestDistributionBuckets(t *testing.T) {
	buckets := Distribution([]float64{2, 4, 5, 7, 9})
	require.Len(t, buckets, 5)
	for _, b := range buckets {
		assert.Equal(t, 1, b.Count, "bucket %s", b.Label)
	}
}

func TestSubjectStatistics(t *testing.T) {
	subject := models.Subject{ID: "sub1", Name: "Redes", Level: models.LevelSMR}
	grades := []models.StudentGrade{
		gradeWithFinal("a", 2),
		gradeWithFinal("b", 4),
		gradeWithFinal("c", 5),
		gradeWithFinal("d", 7),
		gradeWithFinal("e", 9),
	}

	stats := SubjectStatistics(subject, grades, 6)

	assert.Equal(t, 6, stats.StudentCount)
	assert.Equal(t, 5, stats.GradedCount)
	assert.Equal(t, 5.4, stats.Mean)
	assert.Equal(t, 2.0, stats.Min)
	assert.Equal(t, 9.0, stats.Max)
	assert.Equal(t, 3, stats.PassCount)
	assert.Equal(t, 2, stats.FailCount)
	assert.Equal(t, 60.0, stats.PassRate)
	require.Len(t, stats.Distribution, 5)
	for _, b := range stats.Distribution {
		assert.Equal(t, 1, b.Count, "bucket %s", b.Label)
	}
}

func TestSubjectStatisticsEvaluationBreakdown(t *testing.T) {
	subject := models.Subject{
		ID:   "sub1",
		Name: "Redes",
		Config: models.EvaluationConfig{Evaluations: []models.Evaluation{
			{ID: "ev1", Number: 1, Weight: 100, Tests: []models.TestDef{{ID: "t1", Weight: 100}}},
		}},
	}
	grades := []models.StudentGrade{
		{StudentID: "a", SubjectID: "sub1", Evaluations: models.EvaluationGrades{
			{EvaluationID: "ev1", TestGrades: []models.TestGrade{{TestID: "t1", Value: 8}}},
		}},
		{StudentID: "b", SubjectID: "sub1", Evaluations: models.EvaluationGrades{
			{EvaluationID: "ev1", TestGrades: []models.TestGrade{{TestID: "t1", Value: 4}}},
		}},
	}

	stats := SubjectStatistics(subject, grades, 2)
	require.Len(t, stats.Evaluations, 1)
	ev := stats.Evaluations[0]
	assert.Equal(t, 2, ev.GradedCount)
	assert.Equal(t, 6.0, ev.Mean)
	assert.Equal(t, 1, ev.PassCount)
	assert.Equal(t, 1, ev.FailCount)
}

func TestOverviewWeightedMeanAndLevels(t *testing.T) {
	subjects := []models.SubjectStats{
		{SubjectID: "s1", Level: models.LevelSMR, StudentCount: 10, GradedCount: 10, Mean: 6, PassCount: 7},
		{SubjectID: "s2", Level: models.LevelSMR, StudentCount: 5, GradedCount: 5, Mean: 9, PassCount: 5},
		{SubjectID: "s3", Level: models.LevelESO, StudentCount: 0, GradedCount: 0, Mean: 0},
	}

	overview := Overview("prof1", subjects)

	assert.Equal(t, 3, overview.SubjectCount)
	assert.Equal(t, 15, overview.StudentCount)
	// (6*10 + 9*5) / 15 = 7
	assert.Equal(t, 7.0, overview.WeightedMean)
	assert.Equal(t, 80.0, overview.PassRate)
	require.Len(t, overview.Levels, 2)
	assert.Equal(t, models.LevelESO, overview.Levels[0].Level)
	smr := overview.Levels[1]
	assert.Equal(t, models.LevelSMR, smr.Level)
	assert.Equal(t, 2, smr.SubjectCount)
	assert.Equal(t, 7.0, smr.Mean)
}
