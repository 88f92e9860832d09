package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tonikampos/kampos-xestion-api/internal/filestore"
	"github.com/tonikampos/kampos-xestion-api/internal/models"
	"github.com/tonikampos/kampos-xestion-api/internal/repository"
	"github.com/tonikampos/kampos-xestion-api/internal/store"
)

func newTestStores(t *testing.T) store.Stores {
	db, err := filestore.Open(t.TempDir())
	require.NoError(t, err)
	return db.Stores()
}

func seedProfessor(t *testing.T, stores store.Stores) *models.Professor {
	professor := &models.Professor{
		Name:         "Antón",
		Surname:      "Pérez",
		Email:        "anton@example.com",
		PasswordHash: "x",
		Active:       true,
	}
	require.NoError(t, stores.Professors.Create(context.Background(), professor))
	return professor
}

func seedStudent(t *testing.T, stores store.Stores, professorID, name, surname string) *models.Student {
	student := &models.Student{
		ProfessorID: professorID,
		Name:        name,
		Surname:     surname,
		Email:       name + "@example.com",
	}
	require.NoError(t, stores.Students.Create(context.Background(), student))
	return student
}

func seedSubject(t *testing.T, stores store.Stores, professorID string, cfg models.EvaluationConfig) *models.Subject {
	subject := &models.Subject{
		ProfessorID:     professorID,
		Name:            "Redes Locais",
		Level:           models.LevelSMR,
		Year:            1,
		EvaluationCount: len(cfg.Evaluations),
		Config:          cfg,
	}
	require.NoError(t, stores.Subjects.Create(context.Background(), subject))
	return subject
}

func seedEnrollment(t *testing.T, stores store.Stores, studentID, subjectID string) *models.Enrollment {
	enrollment := &models.Enrollment{StudentID: studentID, SubjectID: subjectID}
	require.NoError(t, stores.Enrollments.Create(context.Background(), enrollment))
	return enrollment
}

func twoEvalConfig() models.EvaluationConfig {
	return models.EvaluationConfig{Evaluations: []models.Evaluation{
		{ID: "ev1", Number: 1, Weight: 50, Tests: []models.TestDef{
			{ID: "t1", Name: "Exame", Weight: 70},
			{ID: "t2", Name: "Practicas", Weight: 30},
		}},
		{ID: "ev2", Number: 2, Weight: 50, Tests: []models.TestDef{
			{ID: "t3", Name: "Exame", Weight: 100},
		}},
	}}
}

// memoryCache is an in-process statsCache for tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]interface{}
	sets    int
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]interface{})}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	if !ok {
		return repository.ErrCacheMiss
	}
	switch d := dest.(type) {
	case *models.SubjectStats:
		*d = *value.(*models.SubjectStats)
	case *models.ProfessorOverview:
		*d = *value.(*models.ProfessorOverview)
	}
	return nil
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.sets++
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.deletes++
	return nil
}
