// Package jobs runs report generation in the background. Jobs are queued in
// memory and picked up by a fixed pool of workers; each job carries only the
// report job ID, the handler loads state from the job store.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler processes one queued report job by ID.
type Handler func(ctx context.Context, jobID string) error

// Config sets worker pool behaviour.
type Config struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

type queuedJob struct {
	id      string
	attempt int
}

// Queue dispatches report jobs to a goroutine worker pool.
type Queue struct {
	handler    Handler
	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	jobs    chan queuedJob
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewQueue builds a queue with the provided handler.
func NewQueue(handler Handler, cfg Config) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 8
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Queue{
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		jobs:       make(chan queuedJob, cfg.BufferSize),
	}
}

// Start launches the workers. Calling Start twice is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.run()
	}
	q.started = true
	q.logger.Info("report queue started", zap.Int("workers", q.workers))
}

// Stop cancels the workers and waits for them to drain.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Info("report queue stopped")
}

// Enqueue schedules a report job for processing.
func (q *Queue) Enqueue(jobID string) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()
	if !started {
		return fmt.Errorf("report queue not started")
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("report queue stopped: %w", ctx.Err())
	case q.jobs <- queuedJob{id: jobID}:
		return nil
	}
}

func (q *Queue) run() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			if err := q.handler(q.ctx, job.id); err != nil {
				q.retry(job, err)
			}
		}
	}
}

func (q *Queue) retry(job queuedJob, err error) {
	job.attempt++
	if job.attempt > q.maxRetries {
		q.logger.Error("report job failed",
			zap.String("job_id", job.id), zap.Int("attempts", job.attempt), zap.Error(err))
		return
	}
	q.logger.Warn("report job retrying",
		zap.String("job_id", job.id), zap.Int("attempt", job.attempt), zap.Error(err))
	go func() {
		timer := time.NewTimer(q.retryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
		case <-timer.C:
			select {
			case <-q.ctx.Done():
			case q.jobs <- job:
			}
		}
	}()
}
