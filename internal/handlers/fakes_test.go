package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"alfredoptarigan/recruiter/internal/models"
	"alfredoptarigan/recruiter/internal/repositories"
	"alfredoptarigan/recruiter/internal/services"
	"alfredoptarigan/recruiter/internal/workflow"
)

type stubLoader struct{}

func (stubLoader) Load(ctx context.Context, source string) (string, error) {
	return "Jane Doe, Go engineer. jane.doe@example.com", nil
}

type stubExtractor struct{}

func (stubExtractor) Extract(ctx context.Context, resumeText string) (*models.ParsedCandidate, error) {
	return &models.ParsedCandidate{
		Name:    "Jane Doe",
		Contact: models.Contact{Email: "jane.doe@example.com"},
	}, nil
}

type stubScorer struct {
	score float64
	err   error
}

func (s stubScorer) Score(ctx context.Context, candidate *models.ParsedCandidate, jobDescription string) (*models.Evaluation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Evaluation{Score: s.score, Justification: "Solid Go background."}, nil
}

type stubScheduler struct{}

func (stubScheduler) ScheduleMeeting(ctx context.Context, name string, contact models.Contact) (*models.MeetingInfo, error) {
	return &models.MeetingInfo{
		CandidateEmail: contact.Email,
		CandidateName:  name,
		MeetingID:      "1234567890",
		MeetingLink:    "https://zoom.us/j/1234567890",
		MeetingTime:    "2025-11-28 13:30 IST",
	}, nil
}

type countingNotifier struct {
	sent atomic.Int32
}

func (n *countingNotifier) Notify(ctx context.Context, email, subject, body string) error {
	n.sent.Add(1)
	return nil
}

func newCoordinator(scorer workflow.Scorer, notifier workflow.Notifier) *workflow.Coordinator {
	engine, err := workflow.NewEngine(&workflow.Runtime{
		Loader:    stubLoader{},
		Extractor: stubExtractor{},
		Scorer:    scorer,
		Scheduler: stubScheduler{},
		Notifier:  notifier,
		Threshold: workflow.DefaultThreshold,
	})
	if err != nil {
		panic(err)
	}
	return workflow.NewCoordinator(engine, workflow.NewMemoryStore())
}

type memoryJobs struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]models.Job
	err  error
}

var _ repositories.JobRepository = (*memoryJobs)(nil)

func newMemoryJobs() *memoryJobs {
	return &memoryJobs{jobs: make(map[uuid.UUID]models.Job)}
}

func (m *memoryJobs) Create(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.jobs[job.ID] = *job
	return nil
}

func (m *memoryJobs) FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, repositories.ErrJobNotFound
	}
	return &j, nil
}

func (m *memoryJobs) put(job models.Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
}

func (m *memoryJobs) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	return false, errors.New("not implemented")
}

func (m *memoryJobs) MarkFinished(ctx context.Context, id uuid.UUID, result []byte) error {
	return errors.New("not implemented")
}

func (m *memoryJobs) MarkFailed(ctx context.Context, id uuid.UUID, errorMsg string) error {
	return errors.New("not implemented")
}

func (m *memoryJobs) FindPendingJobs(ctx context.Context, limit int) ([]models.Job, error) {
	return nil, nil
}

func (m *memoryJobs) RequeueRunning(ctx context.Context) (int64, error) {
	return 0, nil
}

type recordingQueue struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (q *recordingQueue) EnqueueJob(jobID uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, jobID)
}

type memoryDocs struct {
	mu   sync.Mutex
	docs map[uuid.UUID]models.Document
	err  error
}

var _ repositories.DocumentRepository = (*memoryDocs)(nil)

func (m *memoryDocs) Create(ctx context.Context, document *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.docs == nil {
		m.docs = make(map[uuid.UUID]models.Document)
	}
	m.docs[document.ID] = *document
	return nil
}

func (m *memoryDocs) FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, repositories.ErrDocumentNotFound
	}
	return &d, nil
}

type fakeStorage struct {
	saved   []string
	deleted []string
}

var _ services.StorageService = (*fakeStorage)(nil)

func (f *fakeStorage) EnsureUploadDir() error { return nil }

func (f *fakeStorage) SaveResume(file *multipart.FileHeader) (*services.StoredFile, error) {
	name := "resume_" + file.Filename
	f.saved = append(f.saved, name)
	return &services.StoredFile{Filename: name, Path: "./uploads/" + name, Size: file.Size}, nil
}

func (f *fakeStorage) DeleteFile(filename string) error {
	f.deleted = append(f.deleted, filename)
	return nil
}
