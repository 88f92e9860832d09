package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

// ReportJobRepository persists asynchronous report jobs.
type ReportJobRepository struct {
	db *sqlx.DB
}

// NewReportJobRepository constructs the repository.
func NewReportJobRepository(db *sqlx.DB) *ReportJobRepository {
	return &ReportJobRepository{db: db}
}

// Create inserts a new report job.
func (r *ReportJobRepository) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.Status == "" {
		job.Status = models.ReportStatusQueued
	}
	const query = `INSERT INTO report_jobs (id, profesor_id, type, params, status, progress, result_path, result_url, error_message, created_at, started_at, finished_at)
        VALUES (:id, :profesor_id, :type, :params, :status, :progress, :result_path, :result_url, :error_message, :created_at, :started_at, :finished_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create report job: %w", err)
	}
	return nil
}

// FindByID fetches a report job.
func (r *ReportJobRepository) FindByID(ctx context.Context, id string) (*models.ReportJob, error) {
	const query = `SELECT id, profesor_id, type, params, status, progress, result_path, result_url, error_message, created_at, started_at, finished_at
        FROM report_jobs WHERE id = $1`
	var job models.ReportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

// Update persists job progress and outcome fields.
func (r *ReportJobRepository) Update(ctx context.Context, job *models.ReportJob) error {
	const query = `UPDATE report_jobs SET status = :status, progress = :progress, result_path = :result_path,
        result_url = :result_url, error_message = :error_message, started_at = :started_at, finished_at = :finished_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("update report job: %w", err)
	}
	return nil
}
