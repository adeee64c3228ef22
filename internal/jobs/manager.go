// Package jobs runs long operations, such as snapshot rebuilds and corpus imports, in
// the background and tracks their status for polling clients.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gcbaptista/jobmatch/internal/errors"
	"github.com/gcbaptista/jobmatch/internal/logging"
	"github.com/gcbaptista/jobmatch/model"
)

// ProgressFunc reports how far a running job has come.
type ProgressFunc func(current, total int, message string)

// JobFunc is the work of one job. ctx is cancelled when the manager stops.
type JobFunc func(ctx context.Context, progress ProgressFunc) error

// Manager executes jobs on a bounded number of worker slots.
type Manager struct {
	mu      sync.RWMutex
	jobs    map[string]*model.Job
	done    map[string]chan struct{}
	workers chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	metrics *JobMetrics
	logger  *zap.Logger
}

// NewManager creates a manager that runs at most maxWorkers jobs at a time.
func NewManager(maxWorkers int, logger *zap.Logger) *Manager {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		jobs:    make(map[string]*model.Job),
		done:    make(map[string]chan struct{}),
		workers: make(chan struct{}, maxWorkers),
		ctx:     ctx,
		cancel:  cancel,
		metrics: NewJobMetrics(),
		logger:  logging.OrNop(logger),
	}
}

// Start begins the periodic cleanup of finished jobs.
func (m *Manager) Start() {
	m.logger.Info("Job manager started", zap.Int("max_workers", cap(m.workers)))
	m.wg.Add(1)
	go m.cleanupRoutine()
}

// Stop cancels running jobs and waits for them to return.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
	m.logger.Info("Job manager stopped")
}

// CreateJob registers a pending job and returns its ID.
func (m *Manager) CreateJob(jobType model.JobType, metadata map[string]string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}
	m.jobs[job.ID] = job
	m.done[job.ID] = make(chan struct{})
	m.metrics.RecordJobCreated(jobType)
	m.logger.Debug("Created job", zap.String("job_id", job.ID), zap.String("type", string(jobType)))
	return job.ID
}

// Submit creates a job and starts it.
func (m *Manager) Submit(jobType model.JobType, metadata map[string]string, fn JobFunc) (string, error) {
	jobID := m.CreateJob(jobType, metadata)
	if err := m.ExecuteJob(jobID, fn); err != nil {
		return jobID, err
	}
	return jobID, nil
}

// GetJob returns a copy of the job.
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// ListJobs returns copies of all jobs, newest first, optionally filtered by status.
func (m *Manager) ListJobs(status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		if status == nil || job.Status == *status {
			result = append(result, copyJob(job))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func copyJob(job *model.Job) *model.Job {
	jobCopy := *job
	if job.Progress != nil {
		progressCopy := *job.Progress
		jobCopy.Progress = &progressCopy
	}
	return &jobCopy
}

// ExecuteJob runs fn for a pending job in its own goroutine once a worker slot is free.
func (m *Manager) ExecuteJob(jobID string, fn JobFunc) error {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return errors.NewJobNotFoundError(jobID)
	}
	if job.Status != model.JobStatusPending {
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is not in pending status (current: %s)", jobID, job.Status)
	}
	jobType := job.Type
	m.mu.Unlock()

	if m.ctx.Err() != nil {
		m.finish(jobID, model.JobStatusCancelled, "job manager is shutting down")
		return fmt.Errorf("job manager is shutting down")
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		select {
		case m.workers <- struct{}{}:
		case <-m.ctx.Done():
			m.finish(jobID, model.JobStatusCancelled, "job manager is shutting down")
			return
		}
		defer func() { <-m.workers }()

		m.setRunning(jobID)
		start := time.Now()
		err := m.run(fn, jobID)
		elapsed := time.Since(start)

		switch {
		case err != nil && m.ctx.Err() != nil:
			m.finish(jobID, model.JobStatusCancelled, err.Error())
			m.logger.Warn("Job cancelled", zap.String("job_id", jobID), zap.Error(err))
		case err != nil:
			m.metrics.RecordJobFailed(jobType)
			m.finish(jobID, model.JobStatusFailed, err.Error())
			m.logger.Error("Job failed", zap.String("job_id", jobID), zap.Duration("duration", elapsed), zap.Error(err))
		default:
			m.metrics.RecordJobCompleted(jobType, elapsed)
			m.finish(jobID, model.JobStatusCompleted, "")
			m.logger.Info("Job completed", zap.String("job_id", jobID), zap.String("type", string(jobType)), zap.Duration("duration", elapsed))
		}
	}()
	return nil
}

// run calls fn and turns a panic into an error.
func (m *Manager) run(fn JobFunc, jobID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return fn(m.ctx, func(current, total int, message string) {
		m.UpdateJobProgress(jobID, current, total, message)
	})
}

// Wait blocks until the job finishes or ctx ends, and returns the job's final state.
func (m *Manager) Wait(ctx context.Context, jobID string) (*model.Job, error) {
	m.mu.RLock()
	done, exists := m.done[jobID]
	m.mu.RUnlock()
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	select {
	case <-done:
		return m.GetJob(jobID)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// UpdateJobProgress records the progress of a running job.
func (m *Manager) UpdateJobProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	if job.Progress == nil {
		job.Progress = &model.JobProgress{}
	}
	job.Progress.Current = current
	job.Progress.Total = total
	job.Progress.Message = message
}

func (m *Manager) setRunning(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	now := time.Now()
	job.StartedAt = &now
	m.metrics.RecordJobStatusChange(job.Status, model.JobStatusRunning)
	job.Status = model.JobStatusRunning
}

func (m *Manager) finish(jobID string, status model.JobStatus, errorMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	m.metrics.RecordJobStatusChange(job.Status, status)
	job.Status = status
	job.Error = errorMsg
	now := time.Now()
	job.CompletedAt = &now
	if done, ok := m.done[jobID]; ok {
		select {
		case <-done:
		default:
			close(done)
		}
	}
}

func (m *Manager) cleanupRoutine() {
	defer m.wg.Done()
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(24 * time.Hour)
		case <-m.ctx.Done():
			return
		}
	}
}

// CleanupOldJobs forgets jobs that finished more than maxAge ago.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	cleaned := 0
	for jobID, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, jobID)
			delete(m.done, jobID)
			cleaned++
		}
	}
	if cleaned > 0 {
		m.logger.Info("Cleaned up old jobs", zap.Int("count", cleaned))
	}
	return cleaned
}

func (m *Manager) GetMetrics() JobMetricsData {
	return m.metrics.GetMetrics()
}
