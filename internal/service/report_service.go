package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tonikampos/kampos-xestion-api/internal/grading"
	"github.com/tonikampos/kampos-xestion-api/internal/models"
	"github.com/tonikampos/kampos-xestion-api/internal/store"
	"github.com/tonikampos/kampos-xestion-api/pkg/export"
	appErrors "github.com/tonikampos/kampos-xestion-api/pkg/errors"
	"github.com/tonikampos/kampos-xestion-api/pkg/storage"
)

// reportQueue schedules queued jobs for background processing.
type reportQueue interface {
	Enqueue(jobID string) error
}

// ReportService runs report generation jobs: the professor requests a
// document, a worker renders it to disk and the job exposes a signed
// download URL once done.
type ReportService struct {
	jobs        store.ReportJobStore
	subjects    store.SubjectStore
	students    store.StudentStore
	enrollments store.EnrollmentStore
	grades      store.GradeStore
	storage     *storage.ReportStorage
	signer      *storage.Signer
	queue       reportQueue
	logger      *zap.Logger
}

// NewReportService constructs a ReportService. The queue is attached
// separately because its handler is this service's Process method.
func NewReportService(jobs store.ReportJobStore, subjects store.SubjectStore, students store.StudentStore, enrollments store.EnrollmentStore, grades store.GradeStore, reportStorage *storage.ReportStorage, signer *storage.Signer, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		jobs:        jobs,
		subjects:    subjects,
		students:    students,
		enrollments: enrollments,
		grades:      grades,
		storage:     reportStorage,
		signer:      signer,
		logger:      logger,
	}
}

// AttachQueue wires the background queue. Must be called before CreateJob.
func (s *ReportService) AttachQueue(queue reportQueue) {
	s.queue = queue
}

// CreateJob validates the request, persists a queued job and schedules it.
func (s *ReportService) CreateJob(ctx context.Context, professorID string, reportType models.ReportType, params models.ReportJobParams) (*models.ReportJob, error) {
	switch reportType {
	case models.ReportTypeRoster, models.ReportTypeSubjectStats, models.ReportTypeSubjectBundle:
		if params.SubjectID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject_id required")
		}
		if _, err := s.ownedSubject(ctx, professorID, params.SubjectID); err != nil {
			return nil, err
		}
	case models.ReportTypeStudentGrades:
		if params.StudentID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student_id required")
		}
		if _, err := s.ownedStudent(ctx, professorID, params.StudentID); err != nil {
			return nil, err
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report type %q", reportType))
	}
	if params.Format == "" {
		params.Format = models.ReportFormatPDF
	}
	if reportType == models.ReportTypeSubjectBundle {
		params.Format = models.ReportFormatZip
	}
	if params.Format != models.ReportFormatPDF && params.Format != models.ReportFormatCSV && params.Format != models.ReportFormatZip {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report format %q", params.Format))
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "report processing is not available")
	}

	job := &models.ReportJob{
		ProfessorID: professorID,
		Type:        reportType,
		Params:      params,
		Status:      models.ReportStatusQueued,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report job")
	}
	if err := s.queue.Enqueue(job.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to schedule report job")
	}
	s.logger.Info("report job queued", zap.String("job_id", job.ID), zap.String("type", string(reportType)))
	return job, nil
}

// GetJob returns a job owned by the professor.
func (s *ReportService) GetJob(ctx context.Context, professorID, jobID string) (*models.ReportJob, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch report job")
	}
	if job.ProfessorID != professorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report job belongs to another professor")
	}
	return job, nil
}

// ResolveDownload validates a signed token and returns the job together with
// the stored file path.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*models.ReportJob, string, error) {
	jobID, relPath, err := s.signer.Verify(token)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid download token")
	}
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report job not found")
	}
	if job.ResultPath == nil || *job.ResultPath != relPath {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid download token")
	}
	return job, relPath, nil
}

// Storage exposes the report file storage for download streaming.
func (s *ReportService) Storage() *storage.ReportStorage {
	return s.storage
}

// Process renders the report of one queued job. It is the queue handler.
func (s *ReportService) Process(ctx context.Context, jobID string) error {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load report job: %w", err)
	}
	now := time.Now().UTC()
	job.Status = models.ReportStatusProcessing
	job.StartedAt = &now
	job.Progress = 10
	if err := s.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("mark report job processing: %w", err)
	}

	data, ext, err := s.render(ctx, job)
	if err != nil {
		s.markFailed(ctx, job, err)
		return err
	}
	job.Progress = 80

	relPath := fmt.Sprintf("%s/%s.%s", job.ProfessorID, job.ID, ext)
	if _, err := s.storage.Save(relPath, data); err != nil {
		s.markFailed(ctx, job, err)
		return err
	}
	token, _, err := s.signer.Sign(job.ID, relPath)
	if err != nil {
		s.markFailed(ctx, job, err)
		return err
	}

	finished := time.Now().UTC()
	url := fmt.Sprintf("/api/v1/reports/download/%s", token)
	job.Status = models.ReportStatusDone
	job.Progress = 100
	job.ResultPath = &relPath
	job.ResultURL = &url
	job.FinishedAt = &finished
	if err := s.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("mark report job done: %w", err)
	}
	s.logger.Info("report job finished", zap.String("job_id", job.ID), zap.String("path", relPath))
	return nil
}

func (s *ReportService) markFailed(ctx context.Context, job *models.ReportJob, cause error) {
	finished := time.Now().UTC()
	msg := cause.Error()
	job.Status = models.ReportStatusFailed
	job.ErrorMessage = &msg
	job.FinishedAt = &finished
	if err := s.jobs.Update(ctx, job); err != nil {
		s.logger.Error("failed to record report job failure", zap.String("job_id", job.ID), zap.Error(err))
	}
}

func (s *ReportService) render(ctx context.Context, job *models.ReportJob) ([]byte, string, error) {
	switch job.Type {
	case models.ReportTypeRoster:
		return s.renderRoster(ctx, job)
	case models.ReportTypeStudentGrades:
		return s.renderStudentGrades(ctx, job.Params.StudentID)
	case models.ReportTypeSubjectStats:
		return s.renderSubjectStats(ctx, job.Params.SubjectID)
	case models.ReportTypeSubjectBundle:
		return s.renderSubjectBundle(ctx, job.Params.SubjectID)
	default:
		return nil, "", fmt.Errorf("unknown report type %q", job.Type)
	}
}

func (s *ReportService) rosterEntries(ctx context.Context, subjectID string) ([]export.RosterEntry, error) {
	enrolled, err := s.enrollments.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	entries := make([]export.RosterEntry, 0, len(enrolled))
	for _, enrollment := range enrolled {
		entry := export.RosterEntry{Name: enrollment.StudentName, Surname: enrollment.StudentSurname}
		if student, err := s.students.FindByID(ctx, enrollment.StudentID); err == nil {
			entry.Email = student.Email
		}
		if grade, err := s.grades.FindByStudentAndSubject(ctx, enrollment.StudentID, subjectID); err == nil {
			entry.FinalGrade = grade.FinalGrade
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *ReportService) renderRoster(ctx context.Context, job *models.ReportJob) ([]byte, string, error) {
	subject, err := s.subjects.FindByID(ctx, job.Params.SubjectID)
	if err != nil {
		return nil, "", fmt.Errorf("load subject: %w", err)
	}
	entries, err := s.rosterEntries(ctx, subject.ID)
	if err != nil {
		return nil, "", err
	}
	if job.Params.Format == models.ReportFormatCSV {
		data, err := export.SubjectRosterCSV(*subject, entries)
		return data, "csv", err
	}
	data, err := export.SubjectRosterPDF(*subject, entries)
	return data, "pdf", err
}

func (s *ReportService) studentReportRows(ctx context.Context, studentID string) ([]export.StudentReportRow, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	rows := make([]export.StudentReportRow, 0, len(enrollments))
	for _, enrollment := range enrollments {
		row := export.StudentReportRow{SubjectName: enrollment.SubjectName}
		if subject, err := s.subjects.FindByID(ctx, enrollment.SubjectID); err == nil {
			row.Level = subject.Level
		}
		if grade, err := s.grades.FindByStudentAndSubject(ctx, studentID, enrollment.SubjectID); err == nil {
			row.Evaluations = grade.Evaluations
			row.FinalGrade = grade.FinalGrade
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *ReportService) renderStudentGrades(ctx context.Context, studentID string) ([]byte, string, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, "", fmt.Errorf("load student: %w", err)
	}
	rows, err := s.studentReportRows(ctx, studentID)
	if err != nil {
		return nil, "", err
	}
	data, err := export.StudentGradesPDF(*student, rows)
	return data, "pdf", err
}

func (s *ReportService) renderSubjectStats(ctx context.Context, subjectID string) ([]byte, string, error) {
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		return nil, "", fmt.Errorf("load subject: %w", err)
	}
	enrolled, err := s.enrollments.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, "", fmt.Errorf("list enrollments: %w", err)
	}
	grades, err := s.grades.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, "", fmt.Errorf("list grades: %w", err)
	}
	stats := grading.SubjectStatistics(*subject, grades, len(enrolled))
	data, err := export.SubjectStatsPDF(stats)
	return data, "pdf", err
}

// renderSubjectBundle zips one grade report per enrolled student. Students
// whose report fails are skipped so one bad record does not sink the bundle.
func (s *ReportService) renderSubjectBundle(ctx context.Context, subjectID string) ([]byte, string, error) {
	enrolled, err := s.enrollments.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, "", fmt.Errorf("list enrollments: %w", err)
	}
	if len(enrolled) == 0 {
		return nil, "", fmt.Errorf("subject has no enrolled students")
	}
	entries := make([]export.ZipEntry, 0, len(enrolled))
	for _, enrollment := range enrolled {
		data, _, err := s.renderStudentGrades(ctx, enrollment.StudentID)
		if err != nil {
			s.logger.Warn("skipping student in bundle",
				zap.String("student_id", enrollment.StudentID), zap.Error(err))
			continue
		}
		name := fmt.Sprintf("%s_%s.pdf", enrollment.StudentSurname, enrollment.StudentName)
		entries = append(entries, export.ZipEntry{Name: name, Data: data})
	}
	data, err := export.ZipBundle(entries)
	return data, "zip", err
}

func (s *ReportService) ownedSubject(ctx context.Context, professorID, subjectID string) (*models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch subject")
	}
	if subject.ProfessorID != professorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "subject belongs to another professor")
	}
	return subject, nil
}

func (s *ReportService) ownedStudent(ctx context.Context, professorID, studentID string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	if student.ProfessorID != professorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student belongs to another professor")
	}
	return student, nil
}
