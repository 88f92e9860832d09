package models

import "time"

// Student represents a learner managed by a professor, independent of
// subject enrollment.
type Student struct {
	ID          string    `db:"id" json:"id"`
	ProfessorID string    `db:"profesor_id" json:"professor_id"`
	Name        string    `db:"nome" json:"name"`
	Surname     string    `db:"apelidos" json:"surname"`
	Email       string    `db:"email" json:"email"`
	Phone       *string   `db:"telefono" json:"phone,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
