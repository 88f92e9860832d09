package filestore

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

// GradeStore is the file-backed grade store.
type GradeStore struct {
	db *DB
}

// FindByStudentAndSubject returns the grade record for the pair.
func (s *GradeStore) FindByStudentAndSubject(_ context.Context, studentID, subjectID string) (*models.StudentGrade, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.grades {
		if s.db.grades[i].StudentID == studentID && s.db.grades[i].SubjectID == subjectID {
			g := s.db.grades[i]
			return &g, nil
		}
	}
	return nil, sql.ErrNoRows
}

// ListBySubject returns all grade records of a subject.
func (s *GradeStore) ListBySubject(_ context.Context, subjectID string) ([]models.StudentGrade, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var grades []models.StudentGrade
	for i := range s.db.grades {
		if s.db.grades[i].SubjectID == subjectID {
			grades = append(grades, s.db.grades[i])
		}
	}
	return grades, nil
}

// ListByProfessor returns grade records for all subjects of the professor.
func (s *GradeStore) ListByProfessor(_ context.Context, professorID string) ([]models.StudentGrade, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	owned := make(map[string]bool)
	for i := range s.db.subjects {
		if s.db.subjects[i].ProfessorID == professorID {
			owned[s.db.subjects[i].ID] = true
		}
	}
	var grades []models.StudentGrade
	for i := range s.db.grades {
		if owned[s.db.grades[i].SubjectID] {
			grades = append(grades, s.db.grades[i])
		}
	}
	return grades, nil
}

// Upsert inserts or replaces the single grade record of the pair. One record
// per (student, subject) pair is enforced here at write time.
func (s *GradeStore) Upsert(_ context.Context, grade *models.StudentGrade) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	now := time.Now().UTC()
	for i := range s.db.grades {
		if s.db.grades[i].StudentID == grade.StudentID && s.db.grades[i].SubjectID == grade.SubjectID {
			grade.ID = s.db.grades[i].ID
			grade.CreatedAt = s.db.grades[i].CreatedAt
			grade.UpdatedAt = now
			s.db.grades[i] = *grade
			return s.db.writeFile(gradesFile, s.db.grades)
		}
	}
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now
	s.db.grades = append(s.db.grades, *grade)
	return s.db.writeFile(gradesFile, s.db.grades)
}
