package models

// GradeBucket is one slot of the fixed grade distribution.
type GradeBucket struct {
	Label string  `json:"label"`
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Count int     `json:"count"`
}

// EvaluationStats summarises one evaluation period across a subject's
// enrolled students.
type EvaluationStats struct {
	EvaluationID string  `json:"evaluation_id"`
	Number       int     `json:"number"`
	GradedCount  int     `json:"graded_count"`
	Mean         float64 `json:"mean"`
	PassCount    int     `json:"pass_count"`
	FailCount    int     `json:"fail_count"`
}

// SubjectStats aggregates final grades across a subject's enrolled students.
type SubjectStats struct {
	SubjectID    string            `json:"subject_id"`
	SubjectName  string            `json:"subject_name"`
	Level        EducationalLevel  `json:"level"`
	StudentCount int               `json:"student_count"`
	GradedCount  int               `json:"graded_count"`
	Mean         float64           `json:"mean"`
	Min          float64           `json:"min"`
	Max          float64           `json:"max"`
	PassCount    int               `json:"pass_count"`
	FailCount    int               `json:"fail_count"`
	PassRate     float64           `json:"pass_rate"`
	Distribution []GradeBucket     `json:"distribution"`
	Evaluations  []EvaluationStats `json:"evaluations"`
}

// LevelStats groups subject statistics by educational level.
type LevelStats struct {
	Level        EducationalLevel `json:"level"`
	SubjectCount int              `json:"subject_count"`
	StudentCount int              `json:"student_count"`
	Mean         float64          `json:"mean"`
}

// ProfessorOverview rolls per-subject statistics up into professor-wide
// totals. The mean is weighted by student count.
type ProfessorOverview struct {
	ProfessorID  string         `json:"professor_id"`
	SubjectCount int            `json:"subject_count"`
	StudentCount int            `json:"student_count"`
	WeightedMean float64        `json:"weighted_mean"`
	PassRate     float64        `json:"pass_rate"`
	Levels       []LevelStats   `json:"levels"`
	Subjects     []SubjectStats `json:"subjects"`
}
