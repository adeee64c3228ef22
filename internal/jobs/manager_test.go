package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	internalErrors "github.com/gcbaptista/jobmatch/internal/errors"
	"github.com/gcbaptista/jobmatch/model"
)

func waitJob(t *testing.T, m *Manager, jobID string) *model.Job {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	job, err := m.Wait(ctx, jobID)
	if err != nil {
		t.Fatalf("Wait(%s) error = %v", jobID, err)
	}
	return job
}

func TestJobManager_CreateJob(t *testing.T) {
	manager := NewManager(2, zaptest.NewLogger(t))
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeRebuildSnapshot, map[string]string{"reason": "test"})
	if jobID == "" {
		t.Fatal("Expected non-empty job ID")
	}

	job, err := manager.GetJob(jobID)
	if err != nil {
		t.Fatalf("Failed to get created job: %v", err)
	}
	if job.Type != model.JobTypeRebuildSnapshot {
		t.Errorf("Expected job type %s, got %s", model.JobTypeRebuildSnapshot, job.Type)
	}
	if job.Status != model.JobStatusPending {
		t.Errorf("Expected job status %s, got %s", model.JobStatusPending, job.Status)
	}
	if job.Metadata["reason"] != "test" {
		t.Errorf("Expected metadata to be kept, got %v", job.Metadata)
	}
}

func TestJobManager_ExecuteJob(t *testing.T) {
	manager := NewManager(2, zaptest.NewLogger(t))
	manager.Start()
	defer manager.Stop()

	jobID, err := manager.Submit(model.JobTypeRebuildSnapshot, nil, func(ctx context.Context, progress ProgressFunc) error {
		progress(1, 2, "fetching")
		progress(2, 2, "published")
		return nil
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	job := waitJob(t, manager, jobID)
	if job.Status != model.JobStatusCompleted {
		t.Errorf("Expected job status %s, got %s", model.JobStatusCompleted, job.Status)
	}
	if job.Progress == nil || job.Progress.GetProgressPercentage() != 100 || job.Progress.Message != "published" {
		t.Errorf("Unexpected progress: %+v", job.Progress)
	}
	if job.StartedAt == nil || job.CompletedAt == nil {
		t.Error("Expected start and completion times to be set")
	}

	if err := manager.ExecuteJob(jobID, func(context.Context, ProgressFunc) error { return nil }); err == nil {
		t.Error("Expected error when executing a finished job")
	}

	metrics := manager.GetMetrics()
	if _, ok := metrics.RecentAverageDurationMs[model.JobTypeRebuildSnapshot]; !ok {
		t.Errorf("Expected a recent average for rebuild jobs, got %v", metrics.RecentAverageDurationMs)
	}
	if metrics.SuccessRate != 1 {
		t.Errorf("Expected success rate 1, got %f", metrics.SuccessRate)
	}
}

func TestJobManager_FailedAndPanickingJobs(t *testing.T) {
	manager := NewManager(1, zaptest.NewLogger(t))
	defer manager.Stop()

	failedID, _ := manager.Submit(model.JobTypeImportCorpus, nil, func(context.Context, ProgressFunc) error {
		return errors.New("source unavailable")
	})
	panicID, _ := manager.Submit(model.JobTypeImportCorpus, nil, func(context.Context, ProgressFunc) error {
		panic("boom")
	})

	failed := waitJob(t, manager, failedID)
	if failed.Status != model.JobStatusFailed || failed.Error != "source unavailable" {
		t.Errorf("Unexpected failed job: status=%s error=%q", failed.Status, failed.Error)
	}
	panicked := waitJob(t, manager, panicID)
	if panicked.Status != model.JobStatusFailed {
		t.Errorf("Expected panicking job to fail, got %s", panicked.Status)
	}

	metrics := manager.GetMetrics()
	if metrics.JobsCreated != 2 || metrics.JobsFailed != 2 || metrics.SuccessRate != 0 {
		t.Errorf("Unexpected metrics: %+v", metrics)
	}
	if metrics.JobsByStatus[model.JobStatusFailed] != 2 {
		t.Errorf("Expected two failed jobs in status counts, got %v", metrics.JobsByStatus)
	}
}

func TestJobManager_WorkerLimit(t *testing.T) {
	manager := NewManager(1, zaptest.NewLogger(t))
	defer manager.Stop()

	var running, peak atomic.Int32
	work := func(context.Context, ProgressFunc) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return nil
	}

	ids := make([]string, 3)
	for i := range ids {
		ids[i], _ = manager.Submit(model.JobTypeRebuildSnapshot, nil, work)
	}
	for _, id := range ids {
		waitJob(t, manager, id)
	}
	if peak.Load() != 1 {
		t.Errorf("Expected at most one concurrent job, saw %d", peak.Load())
	}
	if workload := manager.GetMetrics().CurrentWorkload; workload != 0 {
		t.Errorf("Expected no workload after completion, got %d", workload)
	}
}

func TestJobManager_StopCancelsRunningJob(t *testing.T) {
	manager := NewManager(1, zaptest.NewLogger(t))

	started := make(chan struct{})
	jobID, _ := manager.Submit(model.JobTypeRebuildSnapshot, nil, func(ctx context.Context, _ ProgressFunc) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started
	manager.Stop()

	job, err := manager.GetJob(jobID)
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != model.JobStatusCancelled || !job.IsFinished() {
		t.Errorf("Expected cancelled job, got %s", job.Status)
	}

	if _, err := manager.Submit(model.JobTypeRebuildSnapshot, nil, func(context.Context, ProgressFunc) error { return nil }); err == nil {
		t.Error("Expected submit after stop to fail")
	}
}

func TestJobManager_ListAndCleanup(t *testing.T) {
	manager := NewManager(2, zaptest.NewLogger(t))
	defer manager.Stop()

	done, _ := manager.Submit(model.JobTypeRebuildSnapshot, nil, func(context.Context, ProgressFunc) error { return nil })
	waitJob(t, manager, done)
	manager.CreateJob(model.JobTypeImportCorpus, nil)

	if got := len(manager.ListJobs(nil)); got != 2 {
		t.Errorf("Expected 2 jobs, got %d", got)
	}
	pending := model.JobStatusPending
	if got := manager.ListJobs(&pending); len(got) != 1 || got[0].Type != model.JobTypeImportCorpus {
		t.Errorf("Expected the pending import job, got %v", got)
	}

	if cleaned := manager.CleanupOldJobs(0); cleaned != 1 {
		t.Errorf("Expected 1 finished job cleaned, got %d", cleaned)
	}
	if _, err := manager.GetJob(done); !errors.Is(err, internalErrors.ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound after cleanup, got %v", err)
	}
	if _, err := manager.Wait(context.Background(), "missing"); !errors.Is(err, internalErrors.ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound for unknown job, got %v", err)
	}
}
