// Package filestore is the JSON-file-backed persistence backend. It mirrors
// the legacy browser-storage layout: one JSON array file per entity under a
// data directory. All access goes through a single mutex; files are written
// atomically via a temp file rename.
//
// Missing records are reported with sql.ErrNoRows, matching the PostgreSQL
// backend, so services never branch on the backend in use.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
	"github.com/tonikampos/kampos-xestion-api/internal/store"
)

const (
	professorsFile  = "profesores.json"
	studentsFile    = "alumnos.json"
	subjectsFile    = "asignaturas.json"
	enrollmentsFile = "matriculas.json"
	gradesFile      = "notas.json"
)

// DB holds the in-memory state of the file backend. It is loaded once at
// startup and flushed to disk after every mutation.
type DB struct {
	mu  sync.Mutex
	dir string

	professors  []models.Professor
	students    []models.Student
	subjects    []models.Subject
	enrollments []models.Enrollment
	grades      []models.StudentGrade
}

// Open loads (or initializes) the data directory and returns the backend.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db := &DB{dir: dir}
	if err := db.load(); err != nil {
		return nil, err
	}
	return db, nil
}

// Stores returns the backend wired into the store bundle.
func (db *DB) Stores() store.Stores {
	return store.Stores{
		Professors:  &ProfessorStore{db: db},
		Students:    &StudentStore{db: db},
		Subjects:    &SubjectStore{db: db},
		Enrollments: &EnrollmentStore{db: db},
		Grades:      &GradeStore{db: db},
	}
}

func (db *DB) load() error {
	if err := db.readFile(professorsFile, &db.professors); err != nil {
		return err
	}
	if err := db.readFile(studentsFile, &db.students); err != nil {
		return err
	}
	if err := db.readFile(subjectsFile, &db.subjects); err != nil {
		return err
	}
	if err := db.readFile(enrollmentsFile, &db.enrollments); err != nil {
		return err
	}
	return db.readFile(gradesFile, &db.grades)
}

func (db *DB) readFile(name string, dest interface{}) error {
	raw, err := os.ReadFile(filepath.Join(db.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// writeFile must be called with db.mu held.
func (db *DB) writeFile(name string, value interface{}) error {
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	path := filepath.Join(db.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
