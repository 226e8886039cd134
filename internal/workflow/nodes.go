package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	inviteSubject    = "Interview Invitation"
	rejectionSubject = "Application Update"

	notificationSent = "sent"
)

var validate = validator.New()

// BuildGraph wires the recruitment graph against rt.
func BuildGraph(rt *Runtime) (*Graph, error) {
	g := NewGraph()

	nodes := []struct {
		name NodeName
		fn   NodeFunc
	}{
		{NodeLoad, LoadNode(rt)},
		{NodeParse, ParseNode(rt)},
		{NodeScreen, ScreenNode(rt)},
		{NodeDecide, DecideNode(rt)},
		{NodeSchedule, ScheduleNode(rt)},
		{NodeInvite, InviteNode(rt)},
		{NodeReject, RejectNode(rt)},
	}
	for _, n := range nodes {
		if err := g.AddNode(n.name, n.fn); err != nil {
			return nil, err
		}
	}

	edges := [][2]NodeName{
		{NodeLoad, NodeParse},
		{NodeParse, NodeScreen},
		{NodeScreen, NodeDecide},
		{NodeSchedule, NodeInvite},
		{NodeInvite, End},
		{NodeReject, End},
	}
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			return nil, err
		}
	}

	if err := g.AddConditionalEdge(NodeDecide, RouteDecision, NodeSchedule, NodeReject); err != nil {
		return nil, err
	}

	if err := g.SetEntryPoint(NodeLoad); err != nil {
		return nil, err
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}

	return g, nil
}

// RouteDecision maps the recorded decision to its branch. It never looks at
// the score.
func RouteDecision(s State) (NodeName, error) {
	if s.Decision == nil {
		return "", fmt.Errorf("%w: no decision to route on", ErrInvalidState)
	}

	switch *s.Decision {
	case DecisionSchedule:
		return NodeSchedule, nil
	case DecisionReject:
		return NodeReject, nil
	default:
		return "", fmt.Errorf("%w: unknown decision %q", ErrInvalidState, *s.Decision)
	}
}

// Decide applies the threshold policy. Boundary scores schedule.
func Decide(score, threshold float64) Decision {
	if score >= threshold {
		return DecisionSchedule
	}
	return DecisionReject
}

func LoadNode(rt *Runtime) NodeFunc {
	return func(ctx context.Context, s State) (State, error) {
		text, err := rt.Loader.Load(ctx, s.ResumeSource)
		if err != nil {
			return s, fmt.Errorf("%w: load %s: %w", ErrExtraction, s.ResumeSource, err)
		}
		if strings.TrimSpace(text) == "" {
			return s, fmt.Errorf("%w: no extractable text in %s", ErrExtraction, s.ResumeSource)
		}

		s.RawResumeText = ptr(text)
		s.StatusLabel = StatusLoading
		return s, nil
	}
}

func ParseNode(rt *Runtime) NodeFunc {
	return func(ctx context.Context, s State) (State, error) {
		if s.RawResumeText == nil {
			return s, fmt.Errorf("%w: resume text not loaded", ErrInvalidState)
		}

		candidate, err := rt.Extractor.Extract(ctx, *s.RawResumeText)
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrExtraction, err)
		}
		if candidate == nil {
			return s, fmt.Errorf("%w: extractor returned no candidate", ErrExtraction)
		}

		if err := validate.Var(candidate.Contact.Email, "required,email"); err != nil {
			return s, fmt.Errorf("%w: candidate has no usable contact email %q", ErrExtraction, candidate.Contact.Email)
		}

		s.ParsedCandidate = candidate
		s.StatusLabel = StatusParsed
		return s, nil
	}
}

func ScreenNode(rt *Runtime) NodeFunc {
	return func(ctx context.Context, s State) (State, error) {
		if s.ParsedCandidate == nil {
			return s, fmt.Errorf("%w: candidate not parsed", ErrInvalidState)
		}

		eval, err := rt.Scorer.Score(ctx, s.ParsedCandidate, s.JobDescription)
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrScoring, err)
		}
		if eval == nil {
			return s, fmt.Errorf("%w: scorer returned no evaluation", ErrScoring)
		}
		if eval.Score < MinScore || eval.Score > MaxScore {
			return s, fmt.Errorf("%w: score %.2f outside [%.1f, %.1f]", ErrScoring, eval.Score, MinScore, MaxScore)
		}

		s.Evaluation = eval
		s.StatusLabel = StatusScreened
		return s, nil
	}
}

func DecideNode(rt *Runtime) NodeFunc {
	return func(ctx context.Context, s State) (State, error) {
		d := Decide(s.Score(), rt.Threshold)

		s.Decision = ptr(d)
		if d == DecisionSchedule {
			s.StatusLabel = StatusSchedule
		} else {
			s.StatusLabel = StatusReject
		}
		return s, nil
	}
}

func ScheduleNode(rt *Runtime) NodeFunc {
	return func(ctx context.Context, s State) (State, error) {
		if s.ParsedCandidate == nil {
			return s, fmt.Errorf("%w: candidate not parsed", ErrInvalidState)
		}

		meeting, err := rt.Scheduler.ScheduleMeeting(ctx, s.ParsedCandidate.Name, s.ParsedCandidate.Contact)
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrScheduling, err)
		}
		if meeting == nil {
			return s, fmt.Errorf("%w: scheduler returned no meeting", ErrScheduling)
		}

		s.MeetingInfo = meeting
		s.StatusLabel = StatusScheduled
		return s, nil
	}
}

func InviteNode(rt *Runtime) NodeFunc {
	return func(ctx context.Context, s State) (State, error) {
		if s.MeetingInfo == nil {
			return s, fmt.Errorf("%w: no meeting to invite to", ErrInvalidState)
		}

		if err := notify(ctx, rt, s, inviteSubject, InvitationBody(s)); err != nil {
			return s, err
		}

		s.NotificationStatus = ptr(notificationSent)
		s.StatusLabel = StatusInvited
		return s, nil
	}
}

func RejectNode(rt *Runtime) NodeFunc {
	return func(ctx context.Context, s State) (State, error) {
		if err := notify(ctx, rt, s, rejectionSubject, RejectionBody(s)); err != nil {
			return s, err
		}

		s.NotificationStatus = ptr(notificationSent)
		s.StatusLabel = StatusRejected
		return s, nil
	}
}

func notify(ctx context.Context, rt *Runtime, s State, subject, body string) error {
	email := s.ContactEmail()
	if email == "" {
		return fmt.Errorf("%w: no contact email", ErrDelivery)
	}

	if err := rt.Notifier.Notify(ctx, email, subject, body); err != nil {
		return fmt.Errorf("%w: %s to %s: %w", ErrDelivery, subject, email, err)
	}
	return nil
}

// InvitationBody renders the interview invitation email.
func InvitationBody(s State) string {
	m := s.MeetingInfo
	return fmt.Sprintf(`<p>Hi %s,</p>
<p>You are selected for an interview. Here is your meeting info:</p>
<ul>
  <li>Meeting Link: <a href="%s">%s</a></li>
  <li>Meeting Time: %s</li>
  <li>Meeting ID: %s</li>
</ul>`, candidateName(s), m.MeetingLink, m.MeetingLink, m.MeetingTime, m.MeetingID)
}

// RejectionBody renders the rejection email.
func RejectionBody(s State) string {
	return fmt.Sprintf(`<p>Hi %s,</p>
<p>Thank you for your interest. You are not selected for an interview at this time.</p>`, candidateName(s))
}

func candidateName(s State) string {
	if s.ParsedCandidate == nil || s.ParsedCandidate.Name == "" {
		return "there"
	}
	return s.ParsedCandidate.Name
}
