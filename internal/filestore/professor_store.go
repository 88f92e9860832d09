package filestore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

// ProfessorStore is the file-backed professor store.
type ProfessorStore struct {
	db *DB
}

// FindByEmail returns the professor with the given email, case-insensitively.
func (s *ProfessorStore) FindByEmail(_ context.Context, email string) (*models.Professor, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.professors {
		if strings.EqualFold(s.db.professors[i].Email, email) {
			p := s.db.professors[i]
			return &p, nil
		}
	}
	return nil, sql.ErrNoRows
}

// FindByID returns the professor with the given ID.
func (s *ProfessorStore) FindByID(_ context.Context, id string) (*models.Professor, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.professors {
		if s.db.professors[i].ID == id {
			p := s.db.professors[i]
			return &p, nil
		}
	}
	return nil, sql.ErrNoRows
}

// Create appends a new professor record.
func (s *ProfessorStore) Create(_ context.Context, professor *models.Professor) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if professor.ID == "" {
		professor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if professor.CreatedAt.IsZero() {
		professor.CreatedAt = now
	}
	professor.UpdatedAt = now
	s.db.professors = append(s.db.professors, *professor)
	return s.db.writeFile(professorsFile, s.db.professors)
}

// Update replaces an existing professor record.
func (s *ProfessorStore) Update(_ context.Context, professor *models.Professor) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.professors {
		if s.db.professors[i].ID == professor.ID {
			professor.UpdatedAt = time.Now().UTC()
			s.db.professors[i] = *professor
			return s.db.writeFile(professorsFile, s.db.professors)
		}
	}
	return sql.ErrNoRows
}

// UpdateLastLogin records the login timestamp.
func (s *ProfessorStore) UpdateLastLogin(_ context.Context, id string, ts time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.professors {
		if s.db.professors[i].ID == id {
			s.db.professors[i].LastLogin = &ts
			return s.db.writeFile(professorsFile, s.db.professors)
		}
	}
	return sql.ErrNoRows
}
