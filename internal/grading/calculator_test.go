package grading

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

func evalConfig(tests ...models.TestDef) models.Evaluation {
	return models.Evaluation{ID: "ev1", Number: 1, Weight: 100, Tests: tests}
}

func TestEvaluationGradeWeightedAverage(t *testing.T) {
	cfg := evalConfig(
		models.TestDef{ID: "t1", Name: "Exam", Weight: 70},
		models.TestDef{ID: "t2", Name: "Project", Weight: 30},
	)
	eg := models.EvaluationGrade{EvaluationID: "ev1", TestGrades: []models.TestGrade{
		{TestID: "t1", Value: 8},
		{TestID: "t2", Value: 6},
	}}

	assert.Equal(t, 7.4, EvaluationGrade(eg, cfg))
}

func TestEvaluationGradeNormalizesPartialWeights(t *testing.T) {
	cfg := evalConfig(
		models.TestDef{ID: "t1", Weight: 70},
		models.TestDef{ID: "t2", Weight: 20},
	)
	eg := models.EvaluationGrade{EvaluationID: "ev1", TestGrades: []models.TestGrade{
		{TestID: "t1", Value: 8},
		{TestID: "t2", Value: 6},
	}}

	// raw 8*0.7+6*0.2 = 6.8, scaled by 100/90.
	assert.Equal(t, 7.56, EvaluationGrade(eg, cfg))
}

func TestEvaluationGradeSkipsUnmatchedAndNonFinite(t *testing.T) {
	cfg := evalConfig(models.TestDef{ID: "t1", Weight: 50})
	eg := models.EvaluationGrade{EvaluationID: "ev1", TestGrades: []models.TestGrade{
		{TestID: "t1", Value: 6},
		{TestID: "ghost", Value: 10},
		{TestID: "t1", Value: math.NaN()},
	}}

	// only t1=6 contributes, weight 50 scales up to act as 100.
	assert.Equal(t, 6.0, EvaluationGrade(eg, cfg))
}

func TestEvaluationGradeNoContribution(t *testing.T) {
	cfg := evalConfig(models.TestDef{ID: "t1", Weight: 100})
	eg := models.EvaluationGrade{EvaluationID: "ev1", TestGrades: []models.TestGrade{
		{TestID: "missing", Value: 9},
	}}

	assert.Equal(t, 0.0, EvaluationGrade(eg, cfg))
}

func TestFinalSubjectGradeComposesEvaluations(t *testing.T) {
	cfg := models.EvaluationConfig{Evaluations: []models.Evaluation{
		{ID: "ev1", Number: 1, Weight: 60, Tests: []models.TestDef{{ID: "t1", Weight: 100}}},
		{ID: "ev2", Number: 2, Weight: 40, Tests: []models.TestDef{{ID: "t2", Weight: 100}}},
	}}
	sg := models.StudentGrade{Evaluations: models.EvaluationGrades{
		{EvaluationID: "ev1", TestGrades: []models.TestGrade{{TestID: "t1", Value: 8}}},
		{EvaluationID: "ev2", TestGrades: []models.TestGrade{{TestID: "t2", Value: 5}}},
	}}

	// 8*0.6 + 5*0.4 = 6.8
	assert.Equal(t, 6.8, FinalSubjectGrade(sg, cfg))
}

func TestFinalSubjectGradeNormalizesEvaluationWeights(t *testing.T) {
	cfg := models.EvaluationConfig{Evaluations: []models.Evaluation{
		{ID: "ev1", Number: 1, Weight: 40, Tests: []models.TestDef{{ID: "t1", Weight: 100}}},
		{ID: "ev2", Number: 2, Weight: 40, Tests: []models.TestDef{{ID: "t2", Weight: 100}}},
	}}
	sg := models.StudentGrade{Evaluations: models.EvaluationGrades{
		{EvaluationID: "ev1", TestGrades: []models.TestGrade{{TestID: "t1", Value: 10}}},
		{EvaluationID: "ev2", TestGrades: []models.TestGrade{{TestID: "t2", Value: 5}}},
	}}

	// raw 10*0.4+5*0.4 = 6, scaled by 100/80 = 7.5
	assert.Equal(t, 7.5, FinalSubjectGrade(sg, cfg))
}

func TestFinalSubjectGradeEmpty(t *testing.T) {
	assert.Equal(t, 0.0, FinalSubjectGrade(models.StudentGrade{}, models.EvaluationConfig{}))
}

func TestRecalculateFillsFinals(t *testing.T) {
	cfg := models.EvaluationConfig{Evaluations: []models.Evaluation{
		{ID: "ev1", Number: 1, Weight: 100, Tests: []models.TestDef{{ID: "t1", Weight: 100}}},
	}}
	sg := models.StudentGrade{Evaluations: models.EvaluationGrades{
		{EvaluationID: "ev1", TestGrades: []models.TestGrade{{TestID: "t1", Value: 7.25}}},
	}}

	Recalculate(&sg, cfg)
	require.NotNil(t, sg.Evaluations[0].FinalGrade)
	assert.Equal(t, 7.25, *sg.Evaluations[0].FinalGrade)
	require.NotNil(t, sg.FinalGrade)
	assert.Equal(t, 7.25, *sg.FinalGrade)
}

func TestMergeWithConfigIdempotent(t *testing.T) {
	cfg := models.EvaluationConfig{Evaluations: []models.Evaluation{
		{ID: "ev1", Number: 1, Weight: 100, Tests: []models.TestDef{{ID: "t1", Weight: 60}, {ID: "t2", Weight: 40}}},
	}}

	sg := NewStudentGrade("stu1", "sub1", cfg)
	require.Len(t, sg.Evaluations, 1)
	require.Len(t, sg.Evaluations[0].TestGrades, 2)

	changed := MergeWithConfig(sg, cfg)
	assert.False(t, changed, "second merge against same config must be a no-op")
}

func TestMergeWithConfigKeepsEnteredScores(t *testing.T) {
	cfg := models.EvaluationConfig{Evaluations: []models.Evaluation{
		{ID: "ev1", Number: 1, Weight: 100, Tests: []models.TestDef{{ID: "t1", Weight: 100}}},
	}}
	sg := NewStudentGrade("stu1", "sub1", cfg)
	sg.Evaluations[0].TestGrades[0].Value = 9.5

	grown := models.EvaluationConfig{Evaluations: []models.Evaluation{
		{ID: "ev1", Number: 1, Weight: 60, Tests: []models.TestDef{{ID: "t1", Weight: 50}, {ID: "t2", Weight: 50}}},
		{ID: "ev2", Number: 2, Weight: 40, Tests: []models.TestDef{{ID: "t3", Weight: 100}}},
	}}

	changed := MergeWithConfig(sg, grown)
	assert.True(t, changed)
	require.Len(t, sg.Evaluations, 2)
	require.Len(t, sg.Evaluations[0].TestGrades, 2)
	assert.Equal(t, 9.5, sg.Evaluations[0].TestGrades[0].Value, "entered score must survive config growth")
	assert.Equal(t, 0.0, sg.Evaluations[0].TestGrades[1].Value)
	require.Len(t, sg.Evaluations[1].TestGrades, 1)
}
