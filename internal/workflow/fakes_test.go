package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"alfredoptarigan/recruiter/internal/models"
)

const (
	testSource = "https://example.com/resume.pdf"
	testJob    = "Backend engineer, Go and PostgreSQL"
	testEmail  = "jane.doe@example.com"
)

// eventLog records collaborator calls and checkpoint writes in order.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type fakeLoader struct {
	text  string
	err   error
	calls atomic.Int32
	log   *eventLog
}

func (f *fakeLoader) Load(ctx context.Context, source string) (string, error) {
	f.calls.Add(1)
	f.log.add("node:load")
	if f.err != nil {
		return "", f.err
	}
	return f.text + " (" + source + ")", nil
}

type fakeExtractor struct {
	candidate *models.ParsedCandidate
	err       error
	calls     atomic.Int32
	log       *eventLog
}

func (f *fakeExtractor) Extract(ctx context.Context, resumeText string) (*models.ParsedCandidate, error) {
	f.calls.Add(1)
	f.log.add("node:parse")
	if f.err != nil {
		return nil, f.err
	}
	c := *f.candidate
	return &c, nil
}

type fakeScorer struct {
	mu        sync.Mutex
	score     float64
	failTimes int
	calls     atomic.Int32
	log       *eventLog
}

func (f *fakeScorer) Score(ctx context.Context, candidate *models.ParsedCandidate, jobDescription string) (*models.Evaluation, error) {
	f.calls.Add(1)
	f.log.add("node:screen")

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTimes > 0 {
		f.failTimes--
		return nil, errors.New("model returned malformed score")
	}
	return &models.Evaluation{Score: f.score, Justification: "matches " + jobDescription}, nil
}

type fakeScheduler struct {
	err   error
	calls atomic.Int32
	log   *eventLog
}

func (f *fakeScheduler) ScheduleMeeting(ctx context.Context, name string, contact models.Contact) (*models.MeetingInfo, error) {
	f.calls.Add(1)
	f.log.add("node:schedule")
	if f.err != nil {
		return nil, f.err
	}
	return &models.MeetingInfo{
		CandidateEmail: contact.Email,
		CandidateName:  name,
		MeetingID:      "1234567890",
		MeetingLink:    "https://zoom.us/j/1234567890",
		MeetingTime:    "2025-11-28 13:30 IST",
	}, nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
	log  *eventLog
}

func (f *fakeNotifier) Notify(ctx context.Context, email, subject, body string) error {
	f.log.add("node:notify")
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{To: email, Subject: subject, Body: body})
	return nil
}

func (f *fakeNotifier) Sent() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.sent...)
}

type fixture struct {
	loader    *fakeLoader
	extractor *fakeExtractor
	scorer    *fakeScorer
	scheduler *fakeScheduler
	notifier  *fakeNotifier
	rt        *Runtime
	log       *eventLog
}

func newFixture(score float64) *fixture {
	log := &eventLog{}
	f := &fixture{
		loader: &fakeLoader{text: "Jane Doe, Go engineer", log: log},
		extractor: &fakeExtractor{
			candidate: &models.ParsedCandidate{
				Name:    "Jane Doe",
				Contact: models.Contact{Email: testEmail},
				Skills:  []models.Skill{{Name: "Go", Level: "expert"}},
			},
			log: log,
		},
		scorer:    &fakeScorer{score: score, log: log},
		scheduler: &fakeScheduler{log: log},
		notifier:  &fakeNotifier{log: log},
		log:       log,
	}
	f.rt = &Runtime{
		Loader:    f.loader,
		Extractor: f.extractor,
		Scorer:    f.scorer,
		Scheduler: f.scheduler,
		Notifier:  f.notifier,
		Threshold: DefaultThreshold,
	}
	return f
}

// recordingStore logs saves into the fixture's event log and can be told to
// fail the nth save.
type recordingStore struct {
	*MemoryStore
	log    *eventLog
	failOn int
	saves  atomic.Int32
}

func (r *recordingStore) Save(ctx context.Context, cp *Checkpoint) error {
	n := int(r.saves.Add(1))
	if r.failOn > 0 && n == r.failOn {
		return errors.New("disk full")
	}
	if err := r.MemoryStore.Save(ctx, cp); err != nil {
		return err
	}
	if cp.Failed() {
		r.log.add("fail:%s", cp.Node)
	} else {
		r.log.add("save:%s", cp.Node)
	}
	return nil
}
