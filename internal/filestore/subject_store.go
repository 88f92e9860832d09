package filestore

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

// SubjectStore is the file-backed subject store.
type SubjectStore struct {
	db *DB
}

// List returns the professor's subjects ordered by name.
func (s *SubjectStore) List(_ context.Context, professorID string) ([]models.Subject, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var subjects []models.Subject
	for i := range s.db.subjects {
		if s.db.subjects[i].ProfessorID == professorID {
			subjects = append(subjects, s.db.subjects[i])
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

// FindByID returns the subject with the given ID.
func (s *SubjectStore) FindByID(_ context.Context, id string) (*models.Subject, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.subjects {
		if s.db.subjects[i].ID == id {
			sub := s.db.subjects[i]
			return &sub, nil
		}
	}
	return nil, sql.ErrNoRows
}

// Create appends a new subject record.
func (s *SubjectStore) Create(_ context.Context, subject *models.Subject) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now
	s.db.subjects = append(s.db.subjects, *subject)
	return s.db.writeFile(subjectsFile, s.db.subjects)
}

// Update replaces an existing subject record.
func (s *SubjectStore) Update(_ context.Context, subject *models.Subject) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.subjects {
		if s.db.subjects[i].ID == subject.ID {
			subject.UpdatedAt = time.Now().UTC()
			s.db.subjects[i] = *subject
			return s.db.writeFile(subjectsFile, s.db.subjects)
		}
	}
	return sql.ErrNoRows
}

// UpdateConfig replaces only the evaluation configuration of a subject.
func (s *SubjectStore) UpdateConfig(_ context.Context, id string, cfg models.EvaluationConfig) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.subjects {
		if s.db.subjects[i].ID == id {
			s.db.subjects[i].Config = cfg
			s.db.subjects[i].UpdatedAt = time.Now().UTC()
			return s.db.writeFile(subjectsFile, s.db.subjects)
		}
	}
	return sql.ErrNoRows
}

// Delete removes a subject record.
func (s *SubjectStore) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.subjects {
		if s.db.subjects[i].ID == id {
			s.db.subjects = append(s.db.subjects[:i], s.db.subjects[i+1:]...)
			return s.db.writeFile(subjectsFile, s.db.subjects)
		}
	}
	return sql.ErrNoRows
}
