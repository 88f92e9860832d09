package filestore

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

// EnrollmentStore is the file-backed enrollment store.
type EnrollmentStore struct {
	db *DB
}

// detail must be called with db.mu held.
func (s *EnrollmentStore) detail(e models.Enrollment) models.EnrollmentDetail {
	d := models.EnrollmentDetail{Enrollment: e}
	for i := range s.db.students {
		if s.db.students[i].ID == e.StudentID {
			d.StudentName = s.db.students[i].Name
			d.StudentSurname = s.db.students[i].Surname
			break
		}
	}
	for i := range s.db.subjects {
		if s.db.subjects[i].ID == e.SubjectID {
			d.SubjectName = s.db.subjects[i].Name
			break
		}
	}
	return d
}

func sortDetails(details []models.EnrollmentDetail) {
	sort.Slice(details, func(i, j int) bool {
		if details[i].StudentSurname != details[j].StudentSurname {
			return details[i].StudentSurname < details[j].StudentSurname
		}
		return details[i].StudentName < details[j].StudentName
	})
}

// List returns enrollments matching the filter, paginated.
func (s *EnrollmentStore) List(_ context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var details []models.EnrollmentDetail
	for _, e := range s.db.enrollments {
		if filter.StudentID != "" && e.StudentID != filter.StudentID {
			continue
		}
		if filter.SubjectID != "" && e.SubjectID != filter.SubjectID {
			continue
		}
		details = append(details, s.detail(e))
	}
	sortDetails(details)

	total := len(details)
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
		return []models.EnrollmentDetail{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return details[start:end], total, nil
}

// FindByID returns an enrollment by its ID.
func (s *EnrollmentStore) FindByID(_ context.Context, id string) (*models.Enrollment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.enrollments {
		if s.db.enrollments[i].ID == id {
			e := s.db.enrollments[i]
			return &e, nil
		}
	}
	return nil, sql.ErrNoRows
}

// Exists reports whether the (student, subject) pair is already enrolled.
func (s *EnrollmentStore) Exists(_ context.Context, studentID, subjectID string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.enrollments {
		if s.db.enrollments[i].StudentID == studentID && s.db.enrollments[i].SubjectID == subjectID {
			return true, nil
		}
	}
	return false, nil
}

// ListByStudent returns the student's enrollments with subject context.
func (s *EnrollmentStore) ListByStudent(_ context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var details []models.EnrollmentDetail
	for _, e := range s.db.enrollments {
		if e.StudentID == studentID {
			details = append(details, s.detail(e))
		}
	}
	return details, nil
}

// ListBySubject returns the subject's enrollments ordered by student name.
func (s *EnrollmentStore) ListBySubject(_ context.Context, subjectID string) ([]models.EnrollmentDetail, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var details []models.EnrollmentDetail
	for _, e := range s.db.enrollments {
		if e.SubjectID == subjectID {
			details = append(details, s.detail(e))
		}
	}
	sortDetails(details)
	return details, nil
}

// ListByProfessor returns enrollments whose subject belongs to the professor.
func (s *EnrollmentStore) ListByProfessor(_ context.Context, professorID string) ([]models.Enrollment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	owned := make(map[string]bool)
	for i := range s.db.subjects {
		if s.db.subjects[i].ProfessorID == professorID {
			owned[s.db.subjects[i].ID] = true
		}
	}
	var enrollments []models.Enrollment
	for _, e := range s.db.enrollments {
		if owned[e.SubjectID] {
			enrollments = append(enrollments, e)
		}
	}
	return enrollments, nil
}

// Create appends a new enrollment record.
func (s *EnrollmentStore) Create(_ context.Context, enrollment *models.Enrollment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = now
	}
	enrollment.UpdatedAt = now
	s.db.enrollments = append(s.db.enrollments, *enrollment)
	return s.db.writeFile(enrollmentsFile, s.db.enrollments)
}

// Delete removes an enrollment together with the grade record of the same
// (student, subject) pair.
func (s *EnrollmentStore) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	idx := -1
	for i := range s.db.enrollments {
		if s.db.enrollments[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return sql.ErrNoRows
	}
	removed := s.db.enrollments[idx]
	s.db.enrollments = append(s.db.enrollments[:idx], s.db.enrollments[idx+1:]...)
	if err := s.db.writeFile(enrollmentsFile, s.db.enrollments); err != nil {
		return err
	}
	for i := range s.db.grades {
		if s.db.grades[i].StudentID == removed.StudentID && s.db.grades[i].SubjectID == removed.SubjectID {
			s.db.grades = append(s.db.grades[:i], s.db.grades[i+1:]...)
			return s.db.writeFile(gradesFile, s.db.grades)
		}
	}
	return nil
}
