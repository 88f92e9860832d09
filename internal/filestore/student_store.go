package filestore

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

// StudentStore is the file-backed student store.
type StudentStore struct {
	db *DB
}

// List returns the professor's students matching the filter, paginated.
func (s *StudentStore) List(_ context.Context, professorID string, filter models.StudentFilter) ([]models.Student, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	search := strings.ToLower(filter.Search)
	var matched []models.Student
	for i := range s.db.students {
		st := s.db.students[i]
		if st.ProfessorID != professorID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(st.Name), search) &&
			!strings.Contains(strings.ToLower(st.Surname), search) &&
			!strings.Contains(strings.ToLower(st.Email), search) {
			continue
		}
		matched = append(matched, st)
	}

	less := func(a, b models.Student) bool { return a.Surname < b.Surname }
	switch filter.SortBy {
	case "name":
		less = func(a, b models.Student) bool { return a.Name < b.Name }
	case "email":
		less = func(a, b models.Student) bool { return a.Email < b.Email }
	case "created_at":
		less = func(a, b models.Student) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	desc := strings.EqualFold(filter.SortOrder, "DESC")
	sort.SliceStable(matched, func(i, j int) bool {
		if desc {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})

	total := len(matched)
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	start := (page - 1) * size
	if start >= total {
		return []models.Student{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// FindByID returns the student with the given ID.
func (s *StudentStore) FindByID(_ context.Context, id string) (*models.Student, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.students {
		if s.db.students[i].ID == id {
			st := s.db.students[i]
			return &st, nil
		}
	}
	return nil, sql.ErrNoRows
}

// Create appends a new student record.
func (s *StudentStore) Create(_ context.Context, student *models.Student) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	s.db.students = append(s.db.students, *student)
	return s.db.writeFile(studentsFile, s.db.students)
}

// Update replaces an existing student record.
func (s *StudentStore) Update(_ context.Context, student *models.Student) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.students {
		if s.db.students[i].ID == student.ID {
			student.UpdatedAt = time.Now().UTC()
			s.db.students[i] = *student
			return s.db.writeFile(studentsFile, s.db.students)
		}
	}
	return sql.ErrNoRows
}

// Delete removes a student record. Enrollment checks happen at the service
// layer, matching the SQL backend.
func (s *StudentStore) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.students {
		if s.db.students[i].ID == id {
			s.db.students = append(s.db.students[:i], s.db.students[i+1:]...)
			return s.db.writeFile(studentsFile, s.db.students)
		}
	}
	return sql.ErrNoRows
}
