package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Checkpoint is the state of a run after a node. A failed checkpoint names the
// node that failed and carries the state from before it ran, so a retry
// re-runs that node.
type Checkpoint struct {
	RunID     string    `json:"run_id"`
	Node      NodeName  `json:"node"`
	Step      int       `json:"step"`
	State     State     `json:"state"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (c *Checkpoint) Failed() bool {
	return c.Error != ""
}

// CheckpointStore persists checkpoints. Save must be durable when it returns.
// Latest returns (nil, nil) for a run with no checkpoints.
type CheckpointStore interface {
	Save(ctx context.Context, cp *Checkpoint) error
	Latest(ctx context.Context, runID string) (*Checkpoint, error)
	List(ctx context.Context, runID string) ([]Checkpoint, error)
}

// MemoryStore is a process-local CheckpointStore. Snapshots are stored
// serialized so callers never share state with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	seq  uint64
	runs map[string]map[NodeName]memoryEntry
}

type memoryEntry struct {
	step      int
	state     []byte
	err       string
	timestamp time.Time
	seq       uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]map[NodeName]memoryEntry)}
}

func (m *MemoryStore) Save(ctx context.Context, cp *Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(cp.State)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++

	run, ok := m.runs[cp.RunID]
	if !ok {
		run = make(map[NodeName]memoryEntry)
		m.runs[cp.RunID] = run
	}
	run[cp.Node] = memoryEntry{
		step:      cp.Step,
		state:     data,
		err:       cp.Error,
		timestamp: cp.Timestamp,
		seq:       m.seq,
	}
	return nil
}

func (m *MemoryStore) Latest(ctx context.Context, runID string) (*Checkpoint, error) {
	list, err := m.List(ctx, runID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[len(list)-1], nil
}

// List returns a run's checkpoints ordered by step, oldest first.
func (m *MemoryStore) List(ctx context.Context, runID string) ([]Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run := m.runs[runID]
	type ordered struct {
		cp  Checkpoint
		seq uint64
	}
	items := make([]ordered, 0, len(run))

	for node, e := range run {
		var s State
		if err := json.Unmarshal(e.state, &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal state: %w", err)
		}
		items = append(items, ordered{
			cp: Checkpoint{
				RunID:     runID,
				Node:      node,
				Step:      e.step,
				State:     s,
				Error:     e.err,
				Timestamp: e.timestamp,
			},
			seq: e.seq,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].cp.Step != items[j].cp.Step {
			return items[i].cp.Step < items[j].cp.Step
		}
		return items[i].seq < items[j].seq
	})

	out := make([]Checkpoint, len(items))
	for i, it := range items {
		out[i] = it.cp
	}
	return out, nil
}
