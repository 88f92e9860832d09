package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tonikampos/kampos-xestion-api/internal/grading"
	"github.com/tonikampos/kampos-xestion-api/internal/models"
	"github.com/tonikampos/kampos-xestion-api/internal/repository"
	"github.com/tonikampos/kampos-xestion-api/internal/store"
	appErrors "github.com/tonikampos/kampos-xestion-api/pkg/errors"
)

// statsCache is the slice of the Redis cache used by statistics.
type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// StatsService computes subject and professor-level statistics, optionally
// serving them from cache.
type StatsService struct {
	subjects    store.SubjectStore
	enrollments store.EnrollmentStore
	grades      store.GradeStore
	cache       statsCache
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewStatsService constructs a StatsService. Pass a nil cache to disable
// caching.
func NewStatsService(subjects store.SubjectStore, enrollments store.EnrollmentStore, grades store.GradeStore, cache statsCache, cacheTTL time.Duration, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &StatsService{
		subjects:    subjects,
		enrollments: enrollments,
		grades:      grades,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

func subjectStatsKey(subjectID string) string {
	return fmt.Sprintf("stats:subject:%s", subjectID)
}

func overviewKey(professorID string) string {
	return fmt.Sprintf("stats:overview:%s", professorID)
}

// SubjectStats aggregates the final grades of one subject.
func (s *StatsService) SubjectStats(ctx context.Context, professorID, subjectID string) (*models.SubjectStats, error) {
	if s.cache != nil {
		var cached models.SubjectStats
		if err := s.cache.Get(ctx, subjectStatsKey(subjectID), &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
	}

	subject, err := s.ownedSubject(ctx, professorID, subjectID)
	if err != nil {
		return nil, err
	}
	stats, err := s.computeSubjectStats(ctx, *subject)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, subjectStatsKey(subjectID), stats, s.cacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// Overview rolls all the professor's subjects up into one summary.
func (s *StatsService) Overview(ctx context.Context, professorID string) (*models.ProfessorOverview, error) {
	if s.cache != nil {
		var cached models.ProfessorOverview
		if err := s.cache.Get(ctx, overviewKey(professorID), &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
	}

	subjects, err := s.subjects.List(ctx, professorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	perSubject := make([]models.SubjectStats, 0, len(subjects))
	for _, subject := range subjects {
		stats, err := s.computeSubjectStats(ctx, subject)
		if err != nil {
			return nil, err
		}
		perSubject = append(perSubject, *stats)
	}
	overview := grading.Overview(professorID, perSubject)

	if s.cache != nil {
		if err := s.cache.Set(ctx, overviewKey(professorID), &overview, s.cacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return &overview, nil
}

// Invalidate drops the cached statistics touched by a grade write.
func (s *StatsService) Invalidate(ctx context.Context, professorID, subjectID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, subjectStatsKey(subjectID), overviewKey(professorID)); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

func (s *StatsService) computeSubjectStats(ctx context.Context, subject models.Subject) (*models.SubjectStats, error) {
	enrolled, err := s.enrollments.ListBySubject(ctx, subject.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	grades, err := s.grades.ListBySubject(ctx, subject.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	stats := grading.SubjectStatistics(subject, grades, len(enrolled))
	return &stats, nil
}

func (s *StatsService) ownedSubject(ctx context.Context, professorID, subjectID string) (*models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}
	if subject.ProfessorID != professorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "subject belongs to another professor")
	}
	return subject, nil
}
