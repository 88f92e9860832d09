package models

import "time"

// Snapshot is the full backup document: the five entity arrays plus
// version and timestamp.
type Snapshot struct {
	Version     string         `json:"version"`
	ExportedAt  time.Time      `json:"exported_at"`
	Professors  []Professor    `json:"professors"`
	Students    []Student      `json:"students"`
	Subjects    []Subject      `json:"subjects"`
	Enrollments []Enrollment   `json:"enrollments"`
	Grades      []StudentGrade `json:"grades"`
}

// MigrationItemError records one entity that could not be copied.
type MigrationItemError struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// MigrationResult summarises a best-effort backend migration. Enrollments
// and grades are skipped (id remapping between backends is not implemented).
type MigrationResult struct {
	ProfessorID        string               `json:"professor_id"`
	MigratedProfessors int                  `json:"migrated_professors"`
	MigratedStudents   int                  `json:"migrated_students"`
	MigratedSubjects   int                  `json:"migrated_subjects"`
	SkippedEnrollments int                  `json:"skipped_enrollments"`
	SkippedGrades      int                  `json:"skipped_grades"`
	Failures           []MigrationItemError `json:"failures,omitempty"`
}
