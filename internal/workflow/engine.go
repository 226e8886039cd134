package workflow

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync/atomic"
)

// errStopped ends a run early when a stream consumer stops ranging.
var errStopped = errors.New("stream stopped by consumer")

// Snapshot is the state after a completed node. Step counts completed nodes
// within the run, starting at 1.
type Snapshot struct {
	Node  NodeName `json:"node"`
	Step  int      `json:"step"`
	State State    `json:"state"`
}

type stepFunc func(ctx context.Context, snap Snapshot) error

// Engine executes a graph against a state. It never retries a node and never
// persists anything; see Coordinator for checkpointing.
type Engine struct {
	graph *Graph
}

// NewEngine builds the recruitment graph for rt.
func NewEngine(rt *Runtime) (*Engine, error) {
	g, err := BuildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	return &Engine{graph: g}, nil
}

// NewEngineWithGraph runs an already validated graph.
func NewEngineWithGraph(g *Graph) (*Engine, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &Engine{graph: g}, nil
}

func (e *Engine) Graph() *Graph {
	return e.graph
}

// Execute runs a fresh state from the entry point to a terminal node.
func (e *Engine) Execute(ctx context.Context, in Input) (State, error) {
	s, _, err := e.run(ctx, e.graph.Entry(), 0, NewState(in), nil)
	return s, err
}

// Stream runs a fresh state and yields one snapshot per completed node. A
// failure is yielded as a final (Snapshot{}, err) pair. The sequence can be
// ranged once; later ranges yield ErrStreamConsumed.
func (e *Engine) Stream(ctx context.Context, in Input) iter.Seq2[Snapshot, error] {
	var used atomic.Bool

	return func(yield func(Snapshot, error) bool) {
		if used.Swap(true) {
			yield(Snapshot{}, ErrStreamConsumed)
			return
		}

		_, _, err := e.run(ctx, e.graph.Entry(), 0, NewState(in), func(_ context.Context, snap Snapshot) error {
			if !yield(snap, nil) {
				return errStopped
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopped) {
			yield(Snapshot{}, err)
		}
	}
}

// run executes from node from until End. It returns the last state that was
// fully applied (and accepted by onStep) along with its step number. A node
// failure leaves that state untouched.
func (e *Engine) run(ctx context.Context, from NodeName, step int, s State, onStep stepFunc) (State, int, error) {
	current := from

	for current != End {
		if err := ctx.Err(); err != nil {
			return s, step, err
		}

		fn, ok := e.graph.Node(current)
		if !ok {
			return s, step, &NodeError{Node: current, Err: fmt.Errorf("%w: unknown node", ErrInvalidState)}
		}

		next, err := fn(ctx, s)
		if err != nil {
			return s, step, &NodeError{Node: current, Err: err}
		}

		if err := next.Validate(); err != nil {
			return s, step, &NodeError{Node: current, Err: err}
		}

		if onStep != nil {
			if err := onStep(ctx, Snapshot{Node: current, Step: step + 1, State: next}); err != nil {
				return s, step, err
			}
		}

		s = next
		step++

		to, err := e.graph.Next(current, s)
		if err != nil {
			return s, step, &NodeError{Node: current, Err: err}
		}
		current = to
	}

	return s, step, nil
}
