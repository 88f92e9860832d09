package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// EducationalLevel enumerates the supported course levels.
type EducationalLevel string

// Supported educational levels.
const (
	LevelSMR         EducationalLevel = "SMR"
	LevelDAW         EducationalLevel = "DAW"
	LevelDAM         EducationalLevel = "DAM"
	LevelFPBasica    EducationalLevel = "FPBASICA"
	LevelESO         EducationalLevel = "ESO"
	LevelBacharelato EducationalLevel = "BACHILLERATO"
	LevelOutros      EducationalLevel = "OUTROS"
)

// TestDef describes a single gradable item within an evaluation period.
type TestDef struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description,omitempty"`
}

// Evaluation is one grading period within a subject, weighted toward the
// final subject grade.
type Evaluation struct {
	ID     string    `json:"id"`
	Number int       `json:"number"`
	Weight float64   `json:"weight"`
	Tests  []TestDef `json:"tests"`
}

// EvaluationConfig holds the ordered evaluation periods of a subject.
// Stored as a JSONB document; an empty config means grading is not set up.
type EvaluationConfig struct {
	Evaluations []Evaluation `json:"evaluations"`
}

// IsEmpty reports whether no evaluation period has been configured.
func (c EvaluationConfig) IsEmpty() bool {
	return len(c.Evaluations) == 0
}

// FindEvaluation returns the evaluation config with the given id.
func (c EvaluationConfig) FindEvaluation(id string) (Evaluation, bool) {
	for _, ev := range c.Evaluations {
		if ev.ID == id {
			return ev, true
		}
	}
	return Evaluation{}, false
}

// Value implements driver.Valuer for JSONB storage.
func (c EvaluationConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSONB storage.
func (c *EvaluationConfig) Scan(src interface{}) error {
	if src == nil {
		*c = EvaluationConfig{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("unsupported evaluation config source %T", src)
	}
}

// Subject represents a course taught by a professor, with a configurable
// grading scheme.
type Subject struct {
	ID              string           `db:"id" json:"id"`
	ProfessorID     string           `db:"profesor_id" json:"professor_id"`
	Name            string           `db:"nome" json:"name"`
	Level           EducationalLevel `db:"nivel" json:"level"`
	Year            int              `db:"curso" json:"year"`
	WeeklySessions  int              `db:"sesions_semanais" json:"weekly_sessions"`
	EvaluationCount int              `db:"num_avaliaciois" json:"evaluation_count"`
	Config          EvaluationConfig `db:"config" json:"config"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}
