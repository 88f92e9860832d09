package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReportType identifies the document a job produces.
type ReportType string

// Supported report types.
const (
	ReportTypeRoster        ReportType = "roster"
	ReportTypeStudentGrades ReportType = "student_grades"
	ReportTypeSubjectStats  ReportType = "subject_stats"
	ReportTypeSubjectBundle ReportType = "subject_bundle"
)

// ReportFormat identifies the output encoding.
type ReportFormat string

// Supported report formats.
const (
	ReportFormatPDF ReportFormat = "pdf"
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatZip ReportFormat = "zip"
)

// ReportStatus tracks job lifecycle.
type ReportStatus string

// Report job states.
const (
	ReportStatusQueued     ReportStatus = "queued"
	ReportStatusProcessing ReportStatus = "processing"
	ReportStatusDone       ReportStatus = "done"
	ReportStatusFailed     ReportStatus = "failed"
)

// ReportJobParams scopes a report job. Stored as JSONB.
type ReportJobParams struct {
	SubjectID string       `json:"subject_id,omitempty"`
	StudentID string       `json:"student_id,omitempty"`
	Format    ReportFormat `json:"format,omitempty"`
}

// Value implements driver.Valuer for JSONB storage.
func (p ReportJobParams) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB storage.
func (p *ReportJobParams) Scan(src interface{}) error {
	if src == nil {
		*p = ReportJobParams{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported report params source %T", src)
	}
}

// ReportJob records one asynchronous report generation request.
type ReportJob struct {
	ID           string          `db:"id" json:"id"`
	ProfessorID  string          `db:"profesor_id" json:"professor_id"`
	Type         ReportType      `db:"type" json:"type"`
	Params       ReportJobParams `db:"params" json:"params"`
	Status       ReportStatus    `db:"status" json:"status"`
	Progress     int             `db:"progress" json:"progress"`
	ResultPath   *string         `db:"result_path" json:"-"`
	ResultURL    *string         `db:"result_url" json:"result_url,omitempty"`
	ErrorMessage *string         `db:"error_message" json:"error,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	StartedAt    *time.Time      `db:"started_at" json:"started_at,omitempty"`
	FinishedAt   *time.Time      `db:"finished_at" json:"finished_at,omitempty"`
}
