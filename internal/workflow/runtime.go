package workflow

import (
	"context"

	"alfredoptarigan/recruiter/internal/models"
)

const (
	MinScore = 0.0
	MaxScore = 10.0

	DefaultThreshold = 6.0
)

// Loader turns a resume source (URL or local path) into plain text.
type Loader interface {
	Load(ctx context.Context, source string) (string, error)
}

// Extractor structures raw resume text.
type Extractor interface {
	Extract(ctx context.Context, resumeText string) (*models.ParsedCandidate, error)
}

// Scorer rates a candidate against a job description.
type Scorer interface {
	Score(ctx context.Context, candidate *models.ParsedCandidate, jobDescription string) (*models.Evaluation, error)
}

// Scheduler books an interview slot.
type Scheduler interface {
	ScheduleMeeting(ctx context.Context, name string, contact models.Contact) (*models.MeetingInfo, error)
}

// Notifier delivers an email.
type Notifier interface {
	Notify(ctx context.Context, email, subject, body string) error
}

// Runtime bundles the collaborators workflow nodes call and the decision policy.
type Runtime struct {
	Loader    Loader
	Extractor Extractor
	Scorer    Scorer
	Scheduler Scheduler
	Notifier  Notifier

	// Threshold is the inclusive minimum score for scheduling an interview.
	Threshold float64
}
