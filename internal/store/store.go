// Package store defines the persistence contract implemented by both
// backends (PostgreSQL and the JSON file store). The backend is chosen once
// at startup and injected; no code path switches backends at runtime.
//
// Both implementations report missing rows with sql.ErrNoRows so callers
// handle not-found uniformly.
package store

import (
	"context"
	"time"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

// ProfessorStore persists professor accounts.
type ProfessorStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Professor, error)
	FindByID(ctx context.Context, id string) (*models.Professor, error)
	Create(ctx context.Context, professor *models.Professor) error
	Update(ctx context.Context, professor *models.Professor) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
}

// StudentStore persists students owned by a professor.
type StudentStore interface {
	List(ctx context.Context, professorID string, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// SubjectStore persists subjects and their evaluation configuration.
type SubjectStore interface {
	List(ctx context.Context, professorID string) ([]models.Subject, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	UpdateConfig(ctx context.Context, id string, cfg models.EvaluationConfig) error
	Delete(ctx context.Context, id string) error
}

// EnrollmentStore persists the student/subject join records. Delete removes
// the enrollment together with its grade record.
type EnrollmentStore interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	Exists(ctx context.Context, studentID, subjectID string) (bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	ListBySubject(ctx context.Context, subjectID string) ([]models.EnrollmentDetail, error)
	ListByProfessor(ctx context.Context, professorID string) ([]models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, id string) error
}

// GradeStore persists one grade record per (student, subject) pair.
// Uniqueness is enforced at write time: Upsert either inserts or replaces
// the existing record for the pair.
type GradeStore interface {
	FindByStudentAndSubject(ctx context.Context, studentID, subjectID string) (*models.StudentGrade, error)
	ListBySubject(ctx context.Context, subjectID string) ([]models.StudentGrade, error)
	ListByProfessor(ctx context.Context, professorID string) ([]models.StudentGrade, error)
	Upsert(ctx context.Context, grade *models.StudentGrade) error
}

// ReportJobStore persists asynchronous report jobs. Only the primary
// backend implements it; report generation is not available on the file
// backend.
type ReportJobStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	FindByID(ctx context.Context, id string) (*models.ReportJob, error)
	Update(ctx context.Context, job *models.ReportJob) error
}

// Stores bundles one backend's implementations.
type Stores struct {
	Professors  ProfessorStore
	Students    StudentStore
	Subjects    SubjectStore
	Enrollments EnrollmentStore
	Grades      GradeStore
}
