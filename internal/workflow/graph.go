package workflow

import (
	"context"
	"fmt"
)

// NodeName identifies a node in the graph.
type NodeName string

const (
	NodeLoad     NodeName = "load"
	NodeParse    NodeName = "parse"
	NodeScreen   NodeName = "screen"
	NodeDecide   NodeName = "decide"
	NodeSchedule NodeName = "schedule"
	NodeInvite   NodeName = "invite"
	NodeReject   NodeName = "reject"

	// End is the virtual node terminal nodes route to.
	End NodeName = "__end__"
)

// NodeFunc transforms a state. On error the returned state is ignored.
type NodeFunc func(ctx context.Context, s State) (State, error)

// Router picks the successor of a node from the state it produced.
type Router func(s State) (NodeName, error)

// Graph is a static, acyclic set of named nodes and edges.
type Graph struct {
	entry    NodeName
	order    []NodeName
	nodes    map[NodeName]NodeFunc
	edges    map[NodeName]NodeName
	routers  map[NodeName]Router
	branches map[NodeName][]NodeName
}

func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[NodeName]NodeFunc),
		edges:    make(map[NodeName]NodeName),
		routers:  make(map[NodeName]Router),
		branches: make(map[NodeName][]NodeName),
	}
}

func (g *Graph) AddNode(name NodeName, fn NodeFunc) error {
	if name == "" || name == End {
		return fmt.Errorf("invalid node name %q", name)
	}
	if _, exists := g.nodes[name]; exists {
		return fmt.Errorf("node %s already registered", name)
	}
	if fn == nil {
		return fmt.Errorf("node %s has no function", name)
	}
	g.nodes[name] = fn
	g.order = append(g.order, name)
	return nil
}

// AddEdge registers an unconditional edge.
func (g *Graph) AddEdge(from, to NodeName) error {
	if err := g.checkOutgoing(from); err != nil {
		return err
	}
	g.edges[from] = to
	return nil
}

// AddConditionalEdge registers a router for from. targets lists every node the
// router may return and is used to validate the graph.
func (g *Graph) AddConditionalEdge(from NodeName, router Router, targets ...NodeName) error {
	if err := g.checkOutgoing(from); err != nil {
		return err
	}
	if router == nil || len(targets) == 0 {
		return fmt.Errorf("conditional edge from %s needs a router and targets", from)
	}
	g.routers[from] = router
	g.branches[from] = targets
	return nil
}

func (g *Graph) SetEntryPoint(name NodeName) error {
	if _, ok := g.nodes[name]; !ok {
		return fmt.Errorf("entry point %s is not a node", name)
	}
	g.entry = name
	return nil
}

func (g *Graph) Entry() NodeName {
	return g.entry
}

// Nodes returns node names in registration order.
func (g *Graph) Nodes() []NodeName {
	return append([]NodeName(nil), g.order...)
}

// Node returns the function registered for name.
func (g *Graph) Node(name NodeName) (NodeFunc, bool) {
	fn, ok := g.nodes[name]
	return fn, ok
}

// Terminal reports whether name routes straight to End.
func (g *Graph) Terminal(name NodeName) bool {
	to, ok := g.edges[name]
	return ok && to == End
}

// Next resolves the successor of from given the state from produced.
func (g *Graph) Next(from NodeName, s State) (NodeName, error) {
	if to, ok := g.edges[from]; ok {
		return to, nil
	}

	router, ok := g.routers[from]
	if !ok {
		return "", fmt.Errorf("%w: node %s has no outgoing edge", ErrInvalidState, from)
	}

	to, err := router(s)
	if err != nil {
		return "", err
	}

	for _, target := range g.branches[from] {
		if target == to {
			return to, nil
		}
	}
	return "", fmt.Errorf("%w: router for %s returned undeclared target %s", ErrInvalidState, from, to)
}

// Validate checks that every edge points at a known node, every node has an
// outgoing edge, and the graph has no cycles.
func (g *Graph) Validate() error {
	if g.entry == "" {
		return fmt.Errorf("graph has no entry point")
	}

	for _, name := range g.order {
		targets, err := g.successors(name)
		if err != nil {
			return err
		}
		for _, to := range targets {
			if to == End {
				continue
			}
			if _, ok := g.nodes[to]; !ok {
				return fmt.Errorf("edge %s -> %s targets unknown node", name, to)
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	marks := make(map[NodeName]int, len(g.order))

	var visit func(NodeName) error
	visit = func(n NodeName) error {
		if n == End {
			return nil
		}
		switch marks[n] {
		case visiting:
			return fmt.Errorf("graph has a cycle through %s", n)
		case done:
			return nil
		}
		marks[n] = visiting
		targets, _ := g.successors(n)
		for _, to := range targets {
			if err := visit(to); err != nil {
				return err
			}
		}
		marks[n] = done
		return nil
	}

	for _, name := range g.order {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) successors(name NodeName) ([]NodeName, error) {
	if to, ok := g.edges[name]; ok {
		return []NodeName{to}, nil
	}
	if targets, ok := g.branches[name]; ok {
		return targets, nil
	}
	return nil, fmt.Errorf("node %s has no outgoing edge", name)
}

func (g *Graph) checkOutgoing(from NodeName) error {
	if _, ok := g.nodes[from]; !ok {
		return fmt.Errorf("edge source %s is not a node", from)
	}
	if _, ok := g.edges[from]; ok {
		return fmt.Errorf("node %s already has an outgoing edge", from)
	}
	if _, ok := g.routers[from]; ok {
		return fmt.Errorf("node %s already has an outgoing edge", from)
	}
	return nil
}
