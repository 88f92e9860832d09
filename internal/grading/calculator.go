// Package grading implements the weighted grade roll-up: test scores into
// evaluation grades, evaluation grades into the final subject grade.
package grading

import (
	"math"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

// round2 rounds to 2 decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// EvaluationGrade computes the grade of one evaluation period from its test
// scores and the subject's test definitions.
//
// Test grades whose value is not finite, or whose test id is not present in
// the configuration, are skipped rather than rejected: partial data must
// still produce a best-effort grade. When the matched weights do not sum to
// 100 the weighted sum is scaled proportionally so the present weights act
// as if they summed to 100.
func EvaluationGrade(eg models.EvaluationGrade, cfg models.Evaluation) float64 {
	weights := make(map[string]float64, len(cfg.Tests))
	for _, test := range cfg.Tests {
		weights[test.ID] = test.Weight
	}

	weightedSum := 0.0
	totalWeight := 0.0
	for _, tg := range eg.TestGrades {
		if math.IsNaN(tg.Value) || math.IsInf(tg.Value, 0) {
			continue
		}
		weight, ok := weights[tg.TestID]
		if !ok {
			continue
		}
		weightedSum += tg.Value * (weight / 100)
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0
	}
	if totalWeight != 100 {
		weightedSum = weightedSum * 100 / totalWeight
	}
	return round2(weightedSum)
}

// FinalSubjectGrade composes EvaluationGrade one level up: each evaluation
// grade is weighted by its period's percentage, with the same proportional
// normalization when the matched weights do not sum to 100. Evaluations
// missing from the configuration are skipped silently.
func FinalSubjectGrade(sg models.StudentGrade, cfg models.EvaluationConfig) float64 {
	weightedSum := 0.0
	totalWeight := 0.0
	for _, eg := range sg.Evaluations {
		evalCfg, ok := cfg.FindEvaluation(eg.EvaluationID)
		if !ok {
			continue
		}
		grade := EvaluationGrade(eg, evalCfg)
		weightedSum += grade * (evalCfg.Weight / 100)
		totalWeight += evalCfg.Weight
	}

	if totalWeight == 0 {
		return 0
	}
	if totalWeight != 100 {
		weightedSum = weightedSum * 100 / totalWeight
	}
	return round2(weightedSum)
}

// Recalculate fills the per-evaluation and overall final grades in place.
func Recalculate(sg *models.StudentGrade, cfg models.EvaluationConfig) {
	for i := range sg.Evaluations {
		evalCfg, ok := cfg.FindEvaluation(sg.Evaluations[i].EvaluationID)
		if !ok {
			sg.Evaluations[i].FinalGrade = nil
			continue
		}
		grade := EvaluationGrade(sg.Evaluations[i], evalCfg)
		sg.Evaluations[i].FinalGrade = &grade
	}
	final := FinalSubjectGrade(*sg, cfg)
	sg.FinalGrade = &final
}

// NewStudentGrade builds an empty grade record matching the configuration:
// one evaluation entry per configured period, one zero-valued test grade per
// configured test.
func NewStudentGrade(studentID, subjectID string, cfg models.EvaluationConfig) *models.StudentGrade {
	sg := &models.StudentGrade{
		StudentID:   studentID,
		SubjectID:   subjectID,
		Evaluations: models.EvaluationGrades{},
	}
	MergeWithConfig(sg, cfg)
	return sg
}

// MergeWithConfig synthesizes the evaluation and test entries the record is
// missing relative to the configuration, with value 0. Previously entered
// scores are never removed or reset, so merging twice against the same
// configuration is idempotent. It reports whether the record changed.
func MergeWithConfig(sg *models.StudentGrade, cfg models.EvaluationConfig) bool {
	changed := false
	for _, evalCfg := range cfg.Evaluations {
		entry, ok := sg.FindEvaluation(evalCfg.ID)
		if !ok {
			sg.Evaluations = append(sg.Evaluations, models.EvaluationGrade{
				EvaluationID: evalCfg.ID,
				TestGrades:   make([]models.TestGrade, 0, len(evalCfg.Tests)),
			})
			entry = &sg.Evaluations[len(sg.Evaluations)-1]
			changed = true
		}
		existing := make(map[string]bool, len(entry.TestGrades))
		for _, tg := range entry.TestGrades {
			existing[tg.TestID] = true
		}
		for _, test := range evalCfg.Tests {
			if existing[test.ID] {
				continue
			}
			entry.TestGrades = append(entry.TestGrades, models.TestGrade{TestID: test.ID, Value: 0})
			changed = true
		}
	}
	return changed
}
