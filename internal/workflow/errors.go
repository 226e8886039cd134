// Package workflow implements the recruitment state graph
// (load → parse → screen → decide → schedule → invite | reject) and the run
// coordinator that checkpoints it after every node.
package workflow

import (
	"errors"
	"fmt"
)

// Sentinel errors for workflow operations.
var (
	ErrExtraction     = errors.New("extraction failed")
	ErrScoring        = errors.New("scoring failed")
	ErrScheduling     = errors.New("scheduling failed")
	ErrDelivery       = errors.New("delivery failed")
	ErrCheckpoint     = errors.New("checkpoint failed")
	ErrUnknownRun     = errors.New("unknown run")
	ErrInvalidState   = errors.New("invalid workflow state")
	ErrInputMismatch  = errors.New("run inputs do not match stored run")
	ErrInvalidInput   = errors.New("invalid run input")
	ErrStreamConsumed = errors.New("stream already consumed")
)

// NodeError reports the node a run failed in.
type NodeError struct {
	Node NodeName
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// FailedNode returns the node name carried by err, if any.
func FailedNode(err error) (NodeName, bool) {
	var ne *NodeError
	if errors.As(err, &ne) {
		return ne.Node, true
	}
	return "", false
}
