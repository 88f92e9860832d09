package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

// EnrollmentRepository handles persistence of the student/subject join
// records, including the grade cascade on delete.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentDetailColumns = `m.id, m.alumno_id, m.asignatura_id, m.created_at, m.updated_at,
        a.nome AS student_name, a.apelidos AS student_surname, s.nome AS subject_name`

const enrollmentDetailJoins = `FROM matriculas m
        LEFT JOIN alumnos a ON a.id = m.alumno_id
        LEFT JOIN asignaturas s ON s.id = m.asignatura_id`

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("m.alumno_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("m.asignatura_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s %s ORDER BY a.apelidos ASC, a.nome ASC LIMIT %d OFFSET %d`,
		enrollmentDetailColumns, enrollmentDetailJoins+clause, size, offset)

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", enrollmentDetailJoins+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, alumno_id, asignatura_id, created_at, updated_at FROM matriculas WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Exists reports whether an enrollment exists for the (student, subject) pair.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, subjectID string) (bool, error) {
	const query = `SELECT 1 FROM matriculas WHERE alumno_id = $1 AND asignatura_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, subjectID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// ListByStudent returns all enrollments of a student with subject context.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE m.alumno_id = $1", enrollmentDetailColumns, enrollmentDetailJoins)
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// ListBySubject returns all enrollments of a subject with student context.
func (r *EnrollmentRepository) ListBySubject(ctx context.Context, subjectID string) ([]models.EnrollmentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE m.asignatura_id = $1 ORDER BY a.apelidos ASC, a.nome ASC", enrollmentDetailColumns, enrollmentDetailJoins)
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, subjectID); err != nil {
		return nil, fmt.Errorf("list subject enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByProfessor returns all enrollments whose subject belongs to the professor.
func (r *EnrollmentRepository) ListByProfessor(ctx context.Context, professorID string) ([]models.Enrollment, error) {
	const query = `SELECT m.id, m.alumno_id, m.asignatura_id, m.created_at, m.updated_at
        FROM matriculas m JOIN asignaturas s ON s.id = m.asignatura_id
        WHERE s.profesor_id = $1`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, professorID); err != nil {
		return nil, fmt.Errorf("list professor enrollments: %w", err)
	}
	return enrollments, nil
}

// Create persists a new enrollment. The unique index on
// (alumno_id, asignatura_id) enforces one enrollment per pair at write time.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = now
	}
	enrollment.UpdatedAt = now
	const query = `INSERT INTO matriculas (id, alumno_id, asignatura_id, created_at, updated_at)
        VALUES (:id, :alumno_id, :asignatura_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Delete removes an enrollment and cascades to the grade record of the same
// (student, subject) pair, in one transaction.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete enrollment: %w", err)
	}
	var enrollment models.Enrollment
	if err := tx.GetContext(ctx, &enrollment, `SELECT id, alumno_id, asignatura_id, created_at, updated_at FROM matriculas WHERE id = $1`, id); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM notas WHERE alumno_id = $1 AND asignatura_id = $2`, enrollment.StudentID, enrollment.SubjectID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("cascade delete grade: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM matriculas WHERE id = $1`, id); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete enrollment: %w", err)
	}
	return nil
}
