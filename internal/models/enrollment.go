package models

import "time"

// Enrollment links one student to one subject. At most one enrollment may
// exist per (student, subject) pair.
type Enrollment struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"alumno_id" json:"student_id"`
	SubjectID string    `db:"asignatura_id" json:"subject_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail enriches Enrollment with student and subject info.
type EnrollmentDetail struct {
	Enrollment
	StudentName    string `db:"student_name" json:"student_name"`
	StudentSurname string `db:"student_surname" json:"student_surname"`
	SubjectName    string `db:"subject_name" json:"subject_name"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID string
	SubjectID string
	Page      int
	PageSize  int
}
