package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, f *fixture) *Engine {
	t.Helper()
	e, err := NewEngine(f.rt)
	require.NoError(t, err)
	return e
}

func streamLabels(t *testing.T, e *Engine, in Input) ([]string, error) {
	t.Helper()
	var labels []string
	for snap, err := range e.Stream(context.Background(), in) {
		if err != nil {
			return labels, err
		}
		labels = append(labels, snap.State.StatusLabel)
	}
	return labels, nil
}

func TestExecute_SchedulePath(t *testing.T) {
	f := newFixture(8.5)
	e := newTestEngine(t, f)

	s, err := e.Execute(context.Background(), Input{ResumeSource: testSource, JobDescription: testJob})
	require.NoError(t, err)

	require.NotNil(t, s.Decision)
	assert.Equal(t, DecisionSchedule, *s.Decision)
	require.NotNil(t, s.MeetingInfo)
	assert.Equal(t, testEmail, s.MeetingInfo.CandidateEmail)
	require.NotNil(t, s.NotificationStatus)
	assert.Equal(t, "sent", *s.NotificationStatus)
	assert.Equal(t, StatusInvited, s.StatusLabel)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, testEmail, sent[0].To)
	assert.Equal(t, "Interview Invitation", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "https://zoom.us/j/1234567890")
	assert.Contains(t, sent[0].Body, "2025-11-28 13:30 IST")
}

func TestExecute_RejectPath(t *testing.T) {
	f := newFixture(3)
	e := newTestEngine(t, f)

	s, err := e.Execute(context.Background(), Input{ResumeSource: testSource, JobDescription: testJob})
	require.NoError(t, err)

	require.NotNil(t, s.Decision)
	assert.Equal(t, DecisionReject, *s.Decision)
	assert.Nil(t, s.MeetingInfo)
	assert.Equal(t, int32(0), f.scheduler.calls.Load())

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Application Update", sent[0].Subject)
}

func TestStream_StatusLabelOrder(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  []string
	}{
		{
			name:  "schedule path",
			score: 9,
			want: []string{
				"Loading resume",
				"Parsed resume data",
				"Screened candidate data",
				"Decided to schedule interview",
				"Scheduled interview",
				"Sent interview invitation",
			},
		},
		{
			name:  "reject path",
			score: 2,
			want: []string{
				"Loading resume",
				"Parsed resume data",
				"Screened candidate data",
				"Decided to reject",
				"Sent rejection email",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, newFixture(tt.score))

			labels, err := streamLabels(t, e, Input{ResumeSource: testSource, JobDescription: testJob})
			require.NoError(t, err)
			assert.Equal(t, tt.want, labels)
		})
	}
}

func TestDecisionThreshold(t *testing.T) {
	tests := []struct {
		name      string
		score     float64
		threshold float64
		want      Decision
	}{
		{"equal to threshold schedules", 6.0, 6.0, DecisionSchedule},
		{"just below threshold rejects", 5.99, 6.0, DecisionReject},
		{"maximum score schedules", 10, 6.0, DecisionSchedule},
		{"zero rejects", 0, 6.0, DecisionReject},
		{"lower policy threshold", 5.0, 5.0, DecisionSchedule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.score, tt.threshold))

			f := newFixture(tt.score)
			f.rt.Threshold = tt.threshold
			s, err := newTestEngine(t, f).Execute(context.Background(), Input{ResumeSource: testSource, JobDescription: testJob})
			require.NoError(t, err)
			require.NotNil(t, s.Decision)
			assert.Equal(t, tt.want, *s.Decision)
			assert.Equal(t, tt.want == DecisionSchedule, s.MeetingInfo != nil)
		})
	}
}

func TestDecideNode_MissingEvaluationIsZero(t *testing.T) {
	rt := &Runtime{Threshold: DefaultThreshold}
	s, err := DecideNode(rt)(context.Background(), State{})
	require.NoError(t, err)
	require.NotNil(t, s.Decision)
	assert.Equal(t, DecisionReject, *s.Decision)
	assert.Equal(t, StatusReject, s.StatusLabel)

	rt.Threshold = 0
	s, err = DecideNode(rt)(context.Background(), State{})
	require.NoError(t, err)
	assert.Equal(t, DecisionSchedule, *s.Decision)
}

func TestExecute_ExtractionFailure(t *testing.T) {
	f := newFixture(9)
	f.extractor.err = errors.New("no extractable text")
	e := newTestEngine(t, f)

	s, err := e.Execute(context.Background(), Input{ResumeSource: testSource, JobDescription: testJob})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtraction)

	node, ok := FailedNode(err)
	require.True(t, ok)
	assert.Equal(t, NodeParse, node)

	assert.Nil(t, s.ParsedCandidate)
	assert.Nil(t, s.Evaluation)
	assert.Nil(t, s.Decision)
	assert.Nil(t, s.NotificationStatus)
	assert.Empty(t, f.notifier.Sent())
	assert.Equal(t, int32(0), f.scorer.calls.Load())
}

func TestExecute_NodeFailures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *fixture)
		wantErr  error
		wantNode NodeName
	}{
		{
			name:     "unreachable source",
			setup:    func(f *fixture) { f.loader.err = errors.New("404 not found") },
			wantErr:  ErrExtraction,
			wantNode: NodeLoad,
		},
		{
			name:     "missing contact email",
			setup:    func(f *fixture) { f.extractor.candidate.Contact.Email = "" },
			wantErr:  ErrExtraction,
			wantNode: NodeParse,
		},
		{
			name:     "malformed contact email",
			setup:    func(f *fixture) { f.extractor.candidate.Contact.Email = "jane at example" },
			wantErr:  ErrExtraction,
			wantNode: NodeParse,
		},
		{
			name:     "scorer error",
			setup:    func(f *fixture) { f.scorer.failTimes = 1 },
			wantErr:  ErrScoring,
			wantNode: NodeScreen,
		},
		{
			name:     "score above range",
			setup:    func(f *fixture) { f.scorer.score = 11 },
			wantErr:  ErrScoring,
			wantNode: NodeScreen,
		},
		{
			name:     "negative score",
			setup:    func(f *fixture) { f.scorer.score = -1 },
			wantErr:  ErrScoring,
			wantNode: NodeScreen,
		},
		{
			name:     "scheduler error",
			setup:    func(f *fixture) { f.scheduler.err = errors.New("calendar unavailable") },
			wantErr:  ErrScheduling,
			wantNode: NodeSchedule,
		},
		{
			name:     "delivery error",
			setup:    func(f *fixture) { f.notifier.err = errors.New("smtp: 550") },
			wantErr:  ErrDelivery,
			wantNode: NodeInvite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(8)
			tt.setup(f)

			s, err := newTestEngine(t, f).Execute(context.Background(), Input{ResumeSource: testSource, JobDescription: testJob})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			node, ok := FailedNode(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantNode, node)
			assert.Nil(t, s.NotificationStatus)
		})
	}
}

func TestExecute_EmptyResumeTextFailsAtLoad(t *testing.T) {
	f := newFixture(8)
	f.rt.Loader = loaderFunc(func(ctx context.Context, source string) (string, error) { return "  \n", nil })

	_, err := newTestEngine(t, f).Execute(context.Background(), Input{ResumeSource: testSource, JobDescription: testJob})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtraction)

	node, _ := FailedNode(err)
	assert.Equal(t, NodeLoad, node)
}

type loaderFunc func(ctx context.Context, source string) (string, error)

func (f loaderFunc) Load(ctx context.Context, source string) (string, error) {
	return f(ctx, source)
}

func TestStream_ErrorRecord(t *testing.T) {
	f := newFixture(8)
	f.scorer.failTimes = 1
	e := newTestEngine(t, f)

	var labels []string
	var last error
	count := 0
	for snap, err := range e.Stream(context.Background(), Input{ResumeSource: testSource, JobDescription: testJob}) {
		count++
		if err != nil {
			last = err
			continue
		}
		labels = append(labels, snap.State.StatusLabel)
	}

	assert.Equal(t, []string{StatusLoading, StatusParsed}, labels)
	assert.Equal(t, 3, count)
	require.Error(t, last)
	assert.ErrorIs(t, last, ErrScoring)
}

func TestStream_SingleUse(t *testing.T) {
	e := newTestEngine(t, newFixture(8))
	seq := e.Stream(context.Background(), Input{ResumeSource: testSource, JobDescription: testJob})

	n := 0
	for _, err := range seq {
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 6, n)

	var second []error
	for _, err := range seq {
		second = append(second, err)
	}
	require.Len(t, second, 1)
	assert.ErrorIs(t, second[0], ErrStreamConsumed)
}

func TestStream_ConsumerStopsEarly(t *testing.T) {
	f := newFixture(8)
	e := newTestEngine(t, f)

	for snap, err := range e.Stream(context.Background(), Input{ResumeSource: testSource, JobDescription: testJob}) {
		require.NoError(t, err)
		if snap.Node == NodeParse {
			break
		}
	}

	assert.Equal(t, int32(0), f.scorer.calls.Load())
	assert.Empty(t, f.notifier.Sent())
}

func TestExecute_CancelledContextStopsBetweenNodes(t *testing.T) {
	f := newFixture(8)
	ctx, cancel := context.WithCancel(context.Background())
	f.rt.Loader = loaderFunc(func(context.Context, string) (string, error) {
		cancel()
		return "resume text", nil
	})
	e := newTestEngine(t, f)

	_, err := e.Execute(ctx, Input{ResumeSource: testSource, JobDescription: testJob})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), f.extractor.calls.Load())
}
