package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

// ProfessorRepository manages persistence for professor accounts.
type ProfessorRepository struct {
	db *sqlx.DB
}

// NewProfessorRepository constructs a ProfessorRepository.
func NewProfessorRepository(db *sqlx.DB) *ProfessorRepository {
	return &ProfessorRepository{db: db}
}

// FindByEmail fetches a professor by email.
func (r *ProfessorRepository) FindByEmail(ctx context.Context, email string) (*models.Professor, error) {
	const query = `SELECT id, nome, apelidos, email, password_hash, activo, last_login, created_at, updated_at
        FROM profesores WHERE email = $1`
	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, email); err != nil {
		return nil, err
	}
	return &professor, nil
}

// FindByID fetches a professor by ID.
func (r *ProfessorRepository) FindByID(ctx context.Context, id string) (*models.Professor, error) {
	const query = `SELECT id, nome, apelidos, email, password_hash, activo, last_login, created_at, updated_at
        FROM profesores WHERE id = $1`
	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, id); err != nil {
		return nil, err
	}
	return &professor, nil
}

// Create inserts a new professor account.
func (r *ProfessorRepository) Create(ctx context.Context, professor *models.Professor) error {
	if professor.ID == "" {
		professor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if professor.CreatedAt.IsZero() {
		professor.CreatedAt = now
	}
	professor.UpdatedAt = now
	const query = `INSERT INTO profesores (id, nome, apelidos, email, password_hash, activo, created_at, updated_at)
        VALUES (:id, :nome, :apelidos, :email, :password_hash, :activo, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, professor); err != nil {
		return fmt.Errorf("create professor: %w", err)
	}
	return nil
}

// Update modifies an existing professor.
func (r *ProfessorRepository) Update(ctx context.Context, professor *models.Professor) error {
	professor.UpdatedAt = time.Now().UTC()
	const query = `UPDATE profesores SET nome = :nome, apelidos = :apelidos, email = :email,
        password_hash = :password_hash, activo = :activo, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, professor); err != nil {
		return fmt.Errorf("update professor: %w", err)
	}
	return nil
}

// UpdateLastLogin records the last successful login timestamp.
func (r *ProfessorRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE profesores SET last_login = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}
