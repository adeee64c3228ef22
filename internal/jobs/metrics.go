package jobs

import (
	"sync"
	"time"

	"github.com/gcbaptista/jobmatch/model"
)

// recentWindow bounds the per-type execution history used for averages.
const recentWindow = 100

// JobMetricsData is a point-in-time copy of JobMetrics.
type JobMetricsData struct {
	JobsCreated             int64                     `json:"jobs_created"`
	JobsCompleted           int64                     `json:"jobs_completed"`
	JobsFailed              int64                     `json:"jobs_failed"`
	AverageDurationMs       float64                   `json:"average_duration_ms"`
	RecentAverageDurationMs map[model.JobType]float64 `json:"recent_average_duration_ms"` // over the last successful jobs of each type
	SuccessRate             float64                   `json:"success_rate"`
	CurrentWorkload         int64                     `json:"current_workload"`
	JobsByType              map[model.JobType]int64   `json:"jobs_by_type"`
	JobsByStatus            map[model.JobStatus]int64 `json:"jobs_by_status"`
	LastUpdated             time.Time                 `json:"last_updated"`
}

// JobMetrics counts job lifecycle events.
type JobMetrics struct {
	mu            sync.RWMutex
	created       int64
	completed     int64
	failed        int64
	totalDuration time.Duration
	byType        map[model.JobType]int64
	byStatus      map[model.JobStatus]int64
	recent        map[model.JobType][]time.Duration
	lastUpdated   time.Time
}

func NewJobMetrics() *JobMetrics {
	return &JobMetrics{
		byType:      make(map[model.JobType]int64),
		byStatus:    make(map[model.JobStatus]int64),
		recent:      make(map[model.JobType][]time.Duration),
		lastUpdated: time.Now(),
	}
}

func (m *JobMetrics) RecordJobCreated(jobType model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.created++
	m.byType[jobType]++
	m.byStatus[model.JobStatusPending]++
	m.lastUpdated = time.Now()
}

// RecordJobStatusChange moves one job between status buckets.
func (m *JobMetrics) RecordJobStatusChange(oldStatus, newStatus model.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if oldStatus != "" && m.byStatus[oldStatus] > 0 {
		m.byStatus[oldStatus]--
	}
	m.byStatus[newStatus]++
	m.lastUpdated = time.Now()
}

func (m *JobMetrics) RecordJobCompleted(jobType model.JobType, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.completed++
	m.totalDuration += elapsed
	recent := append(m.recent[jobType], elapsed)
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}
	m.recent[jobType] = recent
	m.lastUpdated = time.Now()
}

func (m *JobMetrics) RecordJobFailed(model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failed++
	m.lastUpdated = time.Now()
}

func (m *JobMetrics) GetMetrics() JobMetricsData {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byType := make(map[model.JobType]int64, len(m.byType))
	for k, v := range m.byType {
		byType[k] = v
	}
	byStatus := make(map[model.JobStatus]int64, len(m.byStatus))
	for k, v := range m.byStatus {
		byStatus[k] = v
	}

	recentAverage := make(map[model.JobType]float64, len(m.recent))
	for jobType := range m.recent {
		recentAverage[jobType] = float64(m.averageDuration(jobType).Microseconds()) / 1000
	}

	data := JobMetricsData{
		JobsCreated:             m.created,
		JobsCompleted:           m.completed,
		JobsFailed:              m.failed,
		RecentAverageDurationMs: recentAverage,
		SuccessRate:             m.successRate(),
		CurrentWorkload:         m.byStatus[model.JobStatusPending] + m.byStatus[model.JobStatusRunning],
		JobsByType:              byType,
		JobsByStatus:            byStatus,
		LastUpdated:             m.lastUpdated,
	}
	if m.completed > 0 {
		data.AverageDurationMs = float64((m.totalDuration / time.Duration(m.completed)).Microseconds()) / 1000
	}
	return data
}

// averageDuration returns the mean duration of the recent successful jobs of a type.
// Callers hold m.mu.
func (m *JobMetrics) averageDuration(jobType model.JobType) time.Duration {
	recent := m.recent[jobType]
	if len(recent) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range recent {
		total += d
	}
	return total / time.Duration(len(recent))
}

// successRate returns completed / (completed + failed), or 1 before any job finished.
func (m *JobMetrics) successRate() float64 {
	finished := m.completed + m.failed
	if finished == 0 {
		return 1.0
	}
	return float64(m.completed) / float64(finished)
}
