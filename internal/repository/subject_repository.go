package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

// SubjectRepository manages persistence for subjects and their evaluation
// configuration (stored as a JSONB document).
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns all subjects owned by a professor.
func (r *SubjectRepository) List(ctx context.Context, professorID string) ([]models.Subject, error) {
	const query = `SELECT id, profesor_id, nome, nivel, curso, sesions_semanais, num_avaliaciois, config, created_at, updated_at
        FROM asignaturas WHERE profesor_id = $1 ORDER BY nome ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, professorID); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID fetches a subject by ID.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, profesor_id, nome, nivel, curso, sesions_semanais, num_avaliaciois, config, created_at, updated_at
        FROM asignaturas WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// Create inserts a new subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now
	const query = `INSERT INTO asignaturas (id, profesor_id, nome, nivel, curso, sesions_semanais, num_avaliaciois, config, created_at, updated_at)
        VALUES (:id, :profesor_id, :nome, :nivel, :curso, :sesions_semanais, :num_avaliaciois, :config, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update modifies an existing subject, configuration included.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE asignaturas SET nome = :nome, nivel = :nivel, curso = :curso, sesions_semanais = :sesions_semanais,
        num_avaliaciois = :num_avaliaciois, config = :config, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// UpdateConfig replaces the evaluation configuration document only.
func (r *SubjectRepository) UpdateConfig(ctx context.Context, id string, cfg models.EvaluationConfig) error {
	const query = `UPDATE asignaturas SET config = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, cfg, time.Now().UTC()); err != nil {
		return fmt.Errorf("update subject config: %w", err)
	}
	return nil
}

// Delete removes a subject row. Enrollment checks happen at the service
// layer so the error can name the blocking students.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM asignaturas WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return nil
}
