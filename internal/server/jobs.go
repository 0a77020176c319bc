package server

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clem2k/ultrastar-generator/internal/config"
	"github.com/clem2k/ultrastar-generator/internal/input"
	"github.com/clem2k/ultrastar-generator/internal/pipeline"
)

// Job status constants
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusComplete   JobStatus = "complete"
	StatusFailed     JobStatus = "failed"
)

// GenerateRequest carries the three collaborator payloads inline,
// using the same JSON shapes as the file loaders.
type GenerateRequest struct {
	Header json.RawMessage `json:"header"`
	Words  json.RawMessage `json:"words"`
	Pitch  json.RawMessage `json:"pitch"`
}

// Job represents one synchronization run submitted over the API.
type Job struct {
	ID        string
	Status    JobStatus
	Result    *pipeline.Result
	Error     string
	CreatedAt time.Time
}

// JobManager manages processing jobs
type JobManager struct {
	jobs map[string]*Job
	mu   sync.RWMutex
	cfg  config.Config
}

// NewJobManager creates a new job manager
func NewJobManager(cfg config.Config) *JobManager {
	return &JobManager{
		jobs: make(map[string]*Job),
		cfg:  cfg,
	}
}

// Submit registers a job and starts processing it in the background.
// Each job gets its own orchestrator, so concurrent jobs never share
// component state. The returned Job is a snapshot taken before the
// goroutine starts; callers poll Get for updates and never touch the
// stored record.
func (m *JobManager) Submit(req GenerateRequest) Job {
	job := &Job{
		ID:        uuid.New().String(),
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	snapshot := *job
	go m.process(job, req)
	return snapshot
}

// Get returns a snapshot of a job by ID. A copy comes back so callers
// never observe a job mid-update.
func (m *JobManager) Get(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

func (m *JobManager) process(job *Job, req GenerateRequest) {
	m.setStatus(job, StatusProcessing)

	words, lang, err := input.ParseWords(req.Words)
	if err != nil {
		m.fail(job, err)
		return
	}
	samples, err := input.ParsePitch(req.Pitch)
	if err != nil {
		m.fail(job, err)
		return
	}
	header, err := input.ParseHeader(req.Header)
	if err != nil {
		m.fail(job, err)
		return
	}
	if header.Language == "" {
		header.Language = lang
	}

	orch := pipeline.NewOrchestrator(m.cfg, io.Discard, false)
	result, err := orch.Run(words, samples, header)
	if err != nil {
		m.fail(job, err)
		return
	}

	m.mu.Lock()
	job.Result = result
	job.Status = StatusComplete
	m.mu.Unlock()
}

func (m *JobManager) setStatus(job *Job, status JobStatus) {
	m.mu.Lock()
	job.Status = status
	m.mu.Unlock()
}

func (m *JobManager) fail(job *Job, err error) {
	m.mu.Lock()
	job.Status = StatusFailed
	job.Error = err.Error()
	m.mu.Unlock()
}
