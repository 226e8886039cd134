package workflow

import (
	"fmt"

	"alfredoptarigan/recruiter/internal/models"
)

// Decision is the outcome of the decide node.
type Decision string

const (
	DecisionSchedule Decision = "SCHEDULE"
	DecisionReject   Decision = "REJECT"
)

func (d Decision) Valid() bool {
	return d == DecisionSchedule || d == DecisionReject
}

// Status labels reported after each node.
const (
	StatusLoading   = "Loading resume"
	StatusParsed    = "Parsed resume data"
	StatusScreened  = "Screened candidate data"
	StatusSchedule  = "Decided to schedule interview"
	StatusReject    = "Decided to reject"
	StatusScheduled = "Scheduled interview"
	StatusInvited   = "Sent interview invitation"
	StatusRejected  = "Sent rejection email"
)

// Input carries the two fields a run is started with.
type Input struct {
	ResumeSource   string `json:"resume_source"`
	JobDescription string `json:"job_description"`
}

// State is the record threaded through the graph. Nodes receive it by value
// and return a new value; pointer fields are replaced, never mutated in place,
// so a checkpointed snapshot is never affected by later nodes.
type State struct {
	ResumeSource       string                  `json:"resume_source"`
	JobDescription     string                  `json:"job_description"`
	RawResumeText      *string                 `json:"raw_resume_text"`
	ParsedCandidate    *models.ParsedCandidate `json:"parsed_candidate"`
	Evaluation         *models.Evaluation      `json:"evaluation"`
	Decision           *Decision               `json:"decision"`
	MeetingInfo        *models.MeetingInfo     `json:"meeting_info"`
	NotificationStatus *string                 `json:"notification_status"`
	StatusLabel        string                  `json:"status_label"`
}

// NewState returns the initial state for a run.
func NewState(in Input) State {
	return State{
		ResumeSource:   in.ResumeSource,
		JobDescription: in.JobDescription,
	}
}

// Input returns the inputs the state was started with.
func (s State) Input() Input {
	return Input{ResumeSource: s.ResumeSource, JobDescription: s.JobDescription}
}

// Score returns the evaluation score, treating a missing evaluation as 0.
func (s State) Score() float64 {
	if s.Evaluation == nil {
		return 0
	}
	return s.Evaluation.Score
}

// ContactEmail returns the parsed candidate's email, or "" when unknown.
func (s State) ContactEmail() string {
	if s.ParsedCandidate == nil {
		return ""
	}
	return s.ParsedCandidate.Contact.Email
}

// Validate checks the cross-field invariants of the state.
func (s State) Validate() error {
	if s.Evaluation != nil && (s.Evaluation.Score < MinScore || s.Evaluation.Score > MaxScore) {
		return fmt.Errorf("%w: score %.2f outside [%.1f, %.1f]", ErrInvalidState, s.Evaluation.Score, MinScore, MaxScore)
	}

	if s.Decision != nil {
		if !s.Decision.Valid() {
			return fmt.Errorf("%w: unknown decision %q", ErrInvalidState, *s.Decision)
		}
		if s.Evaluation == nil {
			return fmt.Errorf("%w: decision set without evaluation", ErrInvalidState)
		}
	}

	if s.MeetingInfo != nil && (s.Decision == nil || *s.Decision != DecisionSchedule) {
		return fmt.Errorf("%w: meeting info without a schedule decision", ErrInvalidState)
	}

	if s.ParsedCandidate != nil && s.RawResumeText == nil {
		return fmt.Errorf("%w: parsed candidate without resume text", ErrInvalidState)
	}

	return nil
}

func ptr[T any](v T) *T {
	return &v
}
