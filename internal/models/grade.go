package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TestGrade holds the score entered for one test. Values are expected in
// [0,10]; the calculator tolerates anything finite.
type TestGrade struct {
	TestID string  `json:"test_id"`
	Value  float64 `json:"value"`
	Remark string  `json:"remark,omitempty"`
}

// EvaluationGrade groups the test scores of one evaluation period together
// with the computed period grade.
type EvaluationGrade struct {
	EvaluationID string      `json:"evaluation_id"`
	TestGrades   []TestGrade `json:"test_grades"`
	FinalGrade   *float64    `json:"final_grade,omitempty"`
}

// EvaluationGrades is the JSONB document stored per grade record.
type EvaluationGrades []EvaluationGrade

// Value implements driver.Valuer for JSONB storage.
func (g EvaluationGrades) Value() (driver.Value, error) {
	if g == nil {
		g = EvaluationGrades{}
	}
	return json.Marshal(g)
}

// Scan implements sql.Scanner for JSONB storage.
func (g *EvaluationGrades) Scan(src interface{}) error {
	if src == nil {
		*g = EvaluationGrades{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, g)
	case string:
		return json.Unmarshal([]byte(v), g)
	default:
		return fmt.Errorf("unsupported evaluation grades source %T", src)
	}
}

// StudentGrade is the record holding a student's scores for all tests and
// evaluations within one subject. One record per (student, subject) pair.
type StudentGrade struct {
	ID          string           `db:"id" json:"id"`
	StudentID   string           `db:"alumno_id" json:"student_id"`
	SubjectID   string           `db:"asignatura_id" json:"subject_id"`
	Evaluations EvaluationGrades `db:"avaliaciois" json:"evaluations"`
	FinalGrade  *float64         `db:"nota_final" json:"final_grade,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// FindEvaluation returns the grade entry for the given evaluation id.
func (sg *StudentGrade) FindEvaluation(evaluationID string) (*EvaluationGrade, bool) {
	for i := range sg.Evaluations {
		if sg.Evaluations[i].EvaluationID == evaluationID {
			return &sg.Evaluations[i], true
		}
	}
	return nil, false
}
