package workflow

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Result is the outcome of Coordinator.Start.
type Result struct {
	RunID    string   `json:"run_id"`
	LastNode NodeName `json:"last_node"`
	Step     int      `json:"step"`
	State    State    `json:"state"`

	// ResumedFrom is the first node executed when the run continued from a
	// checkpoint. It is empty for fresh runs.
	ResumedFrom NodeName `json:"resumed_from,omitempty"`

	// Replayed is set when the run had already finished and no node ran.
	Replayed bool `json:"replayed"`
}

// Update is one progress record emitted by Watch.
type Update struct {
	RunID       string   `json:"run_id"`
	Node        NodeName `json:"node"`
	Step        int      `json:"step"`
	StatusLabel string   `json:"status_label"`
	State       State    `json:"state"`
}

// Coordinator binds engine executions to run ids and checkpoints the state
// after every node, before the next node starts. Re-invoking a run id resumes
// from its last checkpoint.
//
// Cancelling ctx stops a run between nodes only. A collaborator call already
// in flight (an email send, for example) may still complete after the caller
// gave up, so at most one extra side effect can follow a cancellation.
type Coordinator struct {
	engine *Engine
	store  CheckpointStore
	locks  *runLocks
	now    func() time.Time
}

func NewCoordinator(engine *Engine, store CheckpointStore) *Coordinator {
	return &Coordinator{
		engine: engine,
		store:  store,
		locks:  newRunLocks(),
		now:    time.Now,
	}
}

// Start runs (or resumes) runID to completion.
func (c *Coordinator) Start(ctx context.Context, runID, resumeSource, jobDescription string) (*Result, error) {
	return c.execute(ctx, runID, Input{ResumeSource: resumeSource, JobDescription: jobDescription}, nil)
}

// Watch runs (or resumes) runID and yields one update per node completed by
// this invocation, in execution order. A failure ends the sequence with a
// (Update{}, err) record. For a run that had already finished, the stored
// final state is yielded once. The sequence can be ranged once.
func (c *Coordinator) Watch(ctx context.Context, runID, resumeSource, jobDescription string) iter.Seq2[Update, error] {
	var used atomic.Bool
	in := Input{ResumeSource: resumeSource, JobDescription: jobDescription}

	return func(yield func(Update, error) bool) {
		if used.Swap(true) {
			yield(Update{}, ErrStreamConsumed)
			return
		}

		res, err := c.execute(ctx, runID, in, func(u Update) bool {
			return yield(u, nil)
		})
		if err != nil {
			if !errors.Is(err, errStopped) {
				yield(Update{}, err)
			}
			return
		}

		if res.Replayed {
			yield(Update{
				RunID:       runID,
				Node:        res.LastNode,
				Step:        res.Step,
				StatusLabel: res.State.StatusLabel,
				State:       res.State,
			}, nil)
		}
	}
}

// State returns the latest checkpoint of runID.
func (c *Coordinator) State(ctx context.Context, runID string) (*Checkpoint, error) {
	cp, err := c.store.Latest(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCheckpoint, err)
	}
	if cp == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	return cp, nil
}

// Checkpoints returns every checkpoint of runID, oldest first.
func (c *Coordinator) Checkpoints(ctx context.Context, runID string) ([]Checkpoint, error) {
	list, err := c.store.List(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCheckpoint, err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	return list, nil
}

type plan struct {
	from     NodeName
	step     int
	state    State
	lastNode NodeName
	done     bool
}

func (c *Coordinator) execute(ctx context.Context, runID string, in Input, onUpdate func(Update) bool) (*Result, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, fmt.Errorf("%w: run id is required", ErrInvalidInput)
	}

	unlock := c.locks.lock(runID)
	defer unlock()

	p, err := c.plan(ctx, runID, in)
	if err != nil {
		return nil, err
	}

	if p.done {
		log.Printf("♻️  Run %s already finished at %s, returning stored state\n", runID, p.lastNode)
		return &Result{RunID: runID, LastNode: p.lastNode, Step: p.step, State: p.state, Replayed: true}, nil
	}

	res := &Result{RunID: runID}
	if p.step > 0 {
		res.ResumedFrom = p.from
		log.Printf("🔁 Resuming run %s at %s (after step %d)\n", runID, p.from, p.step)
	} else {
		log.Printf("🚀 Starting run %s\n", runID)
	}

	lastNode := p.lastNode
	final, step, err := c.engine.run(ctx, p.from, p.step, p.state, func(ctx context.Context, snap Snapshot) error {
		cp := &Checkpoint{
			RunID:     runID,
			Node:      snap.Node,
			Step:      snap.Step,
			State:     snap.State,
			Timestamp: c.now(),
		}
		if err := c.store.Save(ctx, cp); err != nil {
			return &NodeError{Node: snap.Node, Err: fmt.Errorf("%w: %w", ErrCheckpoint, err)}
		}
		lastNode = snap.Node

		log.Printf("💾 Run %s step %d: %s (%s)\n", runID, snap.Step, snap.Node, snap.State.StatusLabel)

		if onUpdate != nil && !onUpdate(Update{
			RunID:       runID,
			Node:        snap.Node,
			Step:        snap.Step,
			StatusLabel: snap.State.StatusLabel,
			State:       snap.State,
		}) {
			return errStopped
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, errStopped) {
			c.recordFailure(ctx, runID, step, final, err)
		}
		return nil, err
	}

	log.Printf("✅ Run %s finished at %s\n", runID, lastNode)

	res.LastNode = lastNode
	res.Step = step
	res.State = final
	return res, nil
}

func (c *Coordinator) plan(ctx context.Context, runID string, in Input) (plan, error) {
	last, err := c.store.Latest(ctx, runID)
	if err != nil {
		return plan{}, fmt.Errorf("%w: load latest checkpoint: %w", ErrCheckpoint, err)
	}

	if last == nil {
		if strings.TrimSpace(in.ResumeSource) == "" {
			return plan{}, fmt.Errorf("%w: resume source is required", ErrInvalidInput)
		}
		if strings.TrimSpace(in.JobDescription) == "" {
			return plan{}, fmt.Errorf("%w: job description is required", ErrInvalidInput)
		}
		return plan{from: c.engine.graph.Entry(), state: NewState(in)}, nil
	}

	if err := matchInput(last.State.Input(), in); err != nil {
		return plan{}, err
	}

	if last.Failed() {
		return plan{from: last.Node, step: last.Step - 1, state: last.State, lastNode: last.Node}, nil
	}

	if c.engine.graph.Terminal(last.Node) {
		return plan{step: last.Step, state: last.State, lastNode: last.Node, done: true}, nil
	}

	next, err := c.engine.graph.Next(last.Node, last.State)
	if err != nil {
		return plan{}, err
	}
	return plan{from: next, step: last.Step, state: last.State, lastNode: last.Node}, nil
}

// recordFailure stores a failed checkpoint for the node that errored so a
// retry re-runs it from the last good state. Checkpoint and cancellation
// errors are not recorded: the previous checkpoint already marks where to
// resume.
func (c *Coordinator) recordFailure(ctx context.Context, runID string, step int, s State, err error) {
	node, ok := FailedNode(err)
	if !ok || errors.Is(err, ErrCheckpoint) || ctx.Err() != nil {
		log.Printf("❌ Run %s failed: %v\n", runID, err)
		return
	}

	cp := &Checkpoint{
		RunID:     runID,
		Node:      node,
		Step:      step + 1,
		State:     s,
		Error:     err.Error(),
		Timestamp: c.now(),
	}
	if saveErr := c.store.Save(ctx, cp); saveErr != nil {
		log.Printf("⚠️  Run %s: failed to record failure at %s: %v\n", runID, node, saveErr)
	}

	log.Printf("❌ Run %s failed at %s: %v\n", runID, node, err)
}

func matchInput(stored, in Input) error {
	if in.ResumeSource != "" && in.ResumeSource != stored.ResumeSource {
		return fmt.Errorf("%w: resume source differs", ErrInputMismatch)
	}
	if in.JobDescription != "" && in.JobDescription != stored.JobDescription {
		return fmt.Errorf("%w: job description differs", ErrInputMismatch)
	}
	return nil
}

type runLocks struct {
	mu    sync.Mutex
	locks map[string]*runLock
}

type runLock struct {
	mu   sync.Mutex
	refs int
}

func newRunLocks() *runLocks {
	return &runLocks{locks: make(map[string]*runLock)}
}

// lock serializes executions of one run id within the process.
func (l *runLocks) lock(runID string) func() {
	l.mu.Lock()
	rl, ok := l.locks[runID]
	if !ok {
		rl = &runLock{}
		l.locks[runID] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.mu.Lock()

	return func() {
		rl.mu.Unlock()

		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.locks, runID)
		}
		l.mu.Unlock()
	}
}
