package grading

import (
	"sort"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

// PassThreshold is the grade at which a student passes.
const PassThreshold = 5.0

// bucketBounds defines the fixed distribution used across all reports.
var bucketBounds = []struct {
	label string
	from  float64
	to    float64
}{
	{"0-2.9", 0, 2.9},
	{"3-4.9", 3, 4.9},
	{"5-6.9", 5, 6.9},
	{"7-8.9", 7, 8.9},
	{"9-10", 9, 10},
}

// Distribution counts final grades into the fixed five buckets.
func Distribution(grades []float64) []models.GradeBucket {
	buckets := make([]models.GradeBucket, len(bucketBounds))
	for i, b := range bucketBounds {
		buckets[i] = models.GradeBucket{Label: b.label, From: b.from, To: b.to}
	}
	for _, g := range grades {
		switch {
		case g < 3:
			buckets[0].Count++
		case g < 5:
			buckets[1].Count++
		case g < 7:
			buckets[2].Count++
		case g < 9:
			buckets[3].Count++
		default:
			buckets[4].Count++
		}
	}
	return buckets
}

// SubjectStatistics reduces the grade records of one subject into counts,
// mean/min/max, pass/fail split, the fixed distribution and a per-evaluation
// breakdown. enrolled is the number of enrolled students, which may exceed
// the number of graded records.
func SubjectStatistics(subject models.Subject, grades []models.StudentGrade, enrolled int) models.SubjectStats {
	stats := models.SubjectStats{
		SubjectID:    subject.ID,
		SubjectName:  subject.Name,
		Level:        subject.Level,
		StudentCount: enrolled,
	}

	finals := make([]float64, 0, len(grades))
	for _, sg := range grades {
		final := FinalSubjectGrade(sg, subject.Config)
		if sg.FinalGrade != nil {
			final = *sg.FinalGrade
		}
		finals = append(finals, final)
	}

	stats.GradedCount = len(finals)
	stats.Distribution = Distribution(finals)
	if len(finals) > 0 {
		sum := 0.0
		stats.Min = finals[0]
		stats.Max = finals[0]
		for _, g := range finals {
			sum += g
			if g < stats.Min {
				stats.Min = g
			}
			if g > stats.Max {
				stats.Max = g
			}
			if g >= PassThreshold {
				stats.PassCount++
			} else {
				stats.FailCount++
			}
		}
		stats.Mean = round2(sum / float64(len(finals)))
		stats.PassRate = round2(float64(stats.PassCount) * 100 / float64(len(finals)))
	}

	stats.Evaluations = evaluationBreakdown(subject.Config, grades)
	return stats
}

func evaluationBreakdown(cfg models.EvaluationConfig, grades []models.StudentGrade) []models.EvaluationStats {
	breakdown := make([]models.EvaluationStats, 0, len(cfg.Evaluations))
	for _, evalCfg := range cfg.Evaluations {
		es := models.EvaluationStats{EvaluationID: evalCfg.ID, Number: evalCfg.Number}
		sum := 0.0
		for _, sg := range grades {
			entry, ok := sg.FindEvaluation(evalCfg.ID)
			if !ok {
				continue
			}
			grade := EvaluationGrade(*entry, evalCfg)
			if entry.FinalGrade != nil {
				grade = *entry.FinalGrade
			}
			es.GradedCount++
			sum += grade
			if grade >= PassThreshold {
				es.PassCount++
			} else {
				es.FailCount++
			}
		}
		if es.GradedCount > 0 {
			es.Mean = round2(sum / float64(es.GradedCount))
		}
		breakdown = append(breakdown, es)
	}
	return breakdown
}

// Overview rolls per-subject statistics up into professor-wide totals: the
// mean is weighted by graded student count and subjects are grouped by
// educational level.
func Overview(professorID string, subjects []models.SubjectStats) models.ProfessorOverview {
	overview := models.ProfessorOverview{
		ProfessorID:  professorID,
		SubjectCount: len(subjects),
		Subjects:     subjects,
	}

	levels := make(map[models.EducationalLevel]*models.LevelStats)
	totalWeighted := 0.0
	totalGraded := 0
	totalPass := 0
	for _, s := range subjects {
		overview.StudentCount += s.StudentCount
		totalWeighted += s.Mean * float64(s.GradedCount)
		totalGraded += s.GradedCount
		totalPass += s.PassCount

		ls, ok := levels[s.Level]
		if !ok {
			ls = &models.LevelStats{Level: s.Level}
			levels[s.Level] = ls
		}
		ls.SubjectCount++
		ls.StudentCount += s.StudentCount
		ls.Mean += s.Mean * float64(s.GradedCount)
	}

	if totalGraded > 0 {
		overview.WeightedMean = round2(totalWeighted / float64(totalGraded))
		overview.PassRate = round2(float64(totalPass) * 100 / float64(totalGraded))
	}

	for _, ls := range levels {
		graded := 0
		for _, s := range subjects {
			if s.Level == ls.Level {
				graded += s.GradedCount
			}
		}
		if graded > 0 {
			ls.Mean = round2(ls.Mean / float64(graded))
		} else {
			ls.Mean = 0
		}
		overview.Levels = append(overview.Levels, *ls)
	}
	sort.Slice(overview.Levels, func(i, j int) bool {
		return overview.Levels[i].Level < overview.Levels[j].Level
	})

	return overview
}
