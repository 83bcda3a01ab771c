// Package worker runs analysis jobs asynchronously behind the HTTP surface.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"claimlens/internal/model"
)

// JobStatus is the lifecycle state of a submitted analysis job
type JobStatus string

const (
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// ErrQueueFull is returned when the job queue cannot take another submission
var ErrQueueFull = errors.New("worker: job queue full")

// Analyzer is the pipeline surface the manager drives
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*model.AnalysisResult, error)
}

// Job is the tracked state of one analysis submission
type Job struct {
	ID          string                `json:"job_id"`
	Status      JobStatus             `json:"status"`
	Result      *model.AnalysisResult `json:"result,omitempty"`
	Error       string                `json:"error,omitempty"`
	SubmittedAt time.Time             `json:"submitted_at"`
	FinishedAt  time.Time             `json:"finished_at,omitzero"`
}

type task struct {
	id   string
	text string
}

// Manager owns a fixed pool of workers and the job status table.
// Two concurrent submissions of identical text may both run the pipeline;
// the result cache makes the duplicate work harmless.
type Manager struct {
	analyzer Analyzer
	workers  int
	queue    chan task
	logger   *slog.Logger

	mu   sync.RWMutex
	jobs map[string]*Job

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a manager with the given worker count
func NewManager(analyzer Analyzer, workers int, logger *slog.Logger) *Manager {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		analyzer: analyzer,
		workers:  workers,
		queue:    make(chan task, workers*16),
		logger:   logger,
		jobs:     make(map[string]*Job),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the worker goroutines
func (m *Manager) Start() {
	for i := 0; i < m.workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}
}

func (m *Manager) worker(id int) {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case t, ok := <-m.queue:
			if !ok {
				return
			}
			m.run(t)
		}
	}
}

func (m *Manager) run(t task) {
	result, err := m.analyzer.Analyze(m.ctx, t.text)

	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[t.id]
	if !ok {
		return
	}
	job.FinishedAt = time.Now().UTC()
	if err != nil {
		job.Status = StatusFailed
		job.Error = err.Error()
		m.logger.Error("analysis job failed", "job_id", t.id, "err", err)
		return
	}
	job.Status = StatusCompleted
	job.Result = result
}

// Submit enqueues a claim text for analysis and returns the new job ID.
// It never blocks; a full queue is reported to the caller instead.
func (m *Manager) Submit(text string) (string, error) {
	id := uuid.New().String()

	m.mu.Lock()
	m.jobs[id] = &Job{
		ID:          id,
		Status:      StatusProcessing,
		SubmittedAt: time.Now().UTC(),
	}
	m.mu.Unlock()

	select {
	case m.queue <- task{id: id, text: text}:
		m.logger.Info("analysis job submitted", "job_id", id)
		return id, nil
	case <-m.ctx.Done():
		m.dropJob(id)
		return "", errors.New("worker: manager shut down")
	default:
		m.dropJob(id)
		return "", ErrQueueFull
	}
}

func (m *Manager) dropJob(id string) {
	m.mu.Lock()
	delete(m.jobs, id)
	m.mu.Unlock()
}

// Status returns a snapshot of the job, or false for an unknown ID
func (m *Manager) Status(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Shutdown stops accepting work and waits for in-flight jobs to settle
func (m *Manager) Shutdown() {
	m.cancel()
	m.wg.Wait()
}
