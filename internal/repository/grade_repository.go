package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

// GradeRepository handles grade record persistence. One row per
// (student, subject) pair, enforced by a unique index.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// FindByStudentAndSubject returns the grade record for the pair.
func (r *GradeRepository) FindByStudentAndSubject(ctx context.Context, studentID, subjectID string) (*models.StudentGrade, error) {
	const query = `SELECT id, alumno_id, asignatura_id, avaliaciois, nota_final, created_at, updated_at
        FROM notas WHERE alumno_id = $1 AND asignatura_id = $2`
	var grade models.StudentGrade
	if err := r.db.GetContext(ctx, &grade, query, studentID, subjectID); err != nil {
		return nil, err
	}
	return &grade, nil
}

// ListBySubject returns every grade record of one subject.
func (r *GradeRepository) ListBySubject(ctx context.Context, subjectID string) ([]models.StudentGrade, error) {
	const query = `SELECT id, alumno_id, asignatura_id, avaliaciois, nota_final, created_at, updated_at
        FROM notas WHERE asignatura_id = $1`
	var grades []models.StudentGrade
	if err := r.db.SelectContext(ctx, &grades, query, subjectID); err != nil {
		return nil, fmt.Errorf("list subject grades: %w", err)
	}
	return grades, nil
}

// ListByProfessor returns every grade record whose subject belongs to the professor.
func (r *GradeRepository) ListByProfessor(ctx context.Context, professorID string) ([]models.StudentGrade, error) {
	const query = `SELECT n.id, n.alumno_id, n.asignatura_id, n.avaliaciois, n.nota_final, n.created_at, n.updated_at
        FROM notas n JOIN asignaturas s ON s.id = n.asignatura_id
        WHERE s.profesor_id = $1`
	var grades []models.StudentGrade
	if err := r.db.SelectContext(ctx, &grades, query, professorID); err != nil {
		return nil, fmt.Errorf("list professor grades: %w", err)
	}
	return grades, nil
}

// Upsert inserts or replaces the grade record for the (student, subject)
// pair. Uniqueness is enforced here at write time rather than by post-hoc
// deduplication scans.
func (r *GradeRepository) Upsert(ctx context.Context, grade *models.StudentGrade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now
	const query = `INSERT INTO notas (id, alumno_id, asignatura_id, avaliaciois, nota_final, created_at, updated_at)
        VALUES (:id, :alumno_id, :asignatura_id, :avaliaciois, :nota_final, :created_at, :updated_at)
        ON CONFLICT (alumno_id, asignatura_id)
        DO UPDATE SET avaliaciois = EXCLUDED.avaliaciois, nota_final = EXCLUDED.nota_final, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}
