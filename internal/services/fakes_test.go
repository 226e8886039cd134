package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"alfredoptarigan/recruiter/internal/models"
	"alfredoptarigan/recruiter/internal/repositories"
	"alfredoptarigan/recruiter/internal/workflow"
)

type fakeLLM struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
	embedErr error
	embedded []string
}

func (f *fakeLLM) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedded = append(f.embedded, text)
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeLLM) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeLLM) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	return f.GenerateText(ctx, prompt, temperature)
}

type fakeVectors struct {
	mu     sync.Mutex
	hits   map[string][]SearchResult
	err    map[string]error
	chunks []ReferenceChunk
	failAt int
}

func (f *fakeVectors) InitCollection(ctx context.Context) error { return nil }

func (f *fakeVectors) UpsertChunk(ctx context.Context, chunk ReferenceChunk, embedding []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAt > 0 && chunk.Index == f.failAt-1 {
		return errors.New("qdrant unavailable")
	}
	f.chunks = append(f.chunks, chunk)
	return nil
}

func (f *fakeVectors) SearchSimilar(ctx context.Context, queryEmbedding []float32, docType string, limit int) ([]SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err[docType]; err != nil {
		return nil, err
	}
	return f.hits[docType], nil
}

func (f *fakeVectors) DeleteDocument(ctx context.Context, docID string) error { return nil }

// memoryJobs is an in-memory JobRepository.
type memoryJobs struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*models.Job
}

var _ repositories.JobRepository = (*memoryJobs)(nil)

func newMemoryJobs(jobs ...*models.Job) *memoryJobs {
	m := &memoryJobs{jobs: make(map[uuid.UUID]*models.Job)}
	for _, j := range jobs {
		m.jobs[j.ID] = j
	}
	return m
}

func (m *memoryJobs) Create(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
	return nil
}

func (m *memoryJobs) FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, repositories.ErrJobNotFound
	}
	c := *j
	return &c, nil
}

func (m *memoryJobs) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.Status != models.JobStatusQueued {
		return false, nil
	}
	j.Status = models.JobStatusRunning
	return true, nil
}

func (m *memoryJobs) MarkFinished(ctx context.Context, id uuid.UUID, result []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return repositories.ErrJobNotFound
	}
	j.Status = models.JobStatusFinished
	j.Result = result
	return nil
}

func (m *memoryJobs) MarkFailed(ctx context.Context, id uuid.UUID, errorMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return repositories.ErrJobNotFound
	}
	j.Status = models.JobStatusFailed
	j.ErrorMessage = &errorMsg
	return nil
}

func (m *memoryJobs) FindPendingJobs(ctx context.Context, limit int) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Job
	for _, j := range m.jobs {
		if j.Status == models.JobStatusQueued && len(out) < limit {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (m *memoryJobs) RequeueRunning(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, j := range m.jobs {
		if j.Status == models.JobStatusRunning {
			j.Status = models.JobStatusQueued
			n++
		}
	}
	return n, nil
}

func (m *memoryJobs) status(id uuid.UUID) models.JobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[id].Status
}

type fakeRunner struct {
	mu   sync.Mutex
	runs []string
	err  error
}

func (f *fakeRunner) Start(ctx context.Context, runID, resumeSource, jobDescription string) (*workflow.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, runID)
	if f.err != nil {
		return nil, f.err
	}
	return &workflow.Result{RunID: runID, LastNode: workflow.NodeReject}, nil
}

func (f *fakeRunner) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.runs...)
}
