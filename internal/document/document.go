// Package document models the host's current selection of canvas nodes. The
// engine only ever reads nodes; it never creates or mutates them.
package document

import (
	"context"
	"sync"
)

// TypeText is the only node type that carries a text payload.
const TypeText = "TEXT"

// Node is a read-only view of a host content node.
type Node struct {
	ID         string `json:"id" yaml:"id"`
	Type       string `json:"type" yaml:"type"`
	Characters string `json:"characters,omitempty" yaml:"characters,omitempty"`
}

func (n Node) IsText() bool {
	return n.Type == TypeText
}

// Text returns the node payload, or "" for non-text nodes.
func (n Node) Text() string {
	if !n.IsText() {
		return ""
	}
	return n.Characters
}

// TextNodes filters a selection down to text nodes, keeping host order.
func TextNodes(selection []Node) []Node {
	out := make([]Node, 0, len(selection))
	for _, node := range selection {
		if node.IsText() {
			out = append(out, node)
		}
	}
	return out
}

// Reader exposes the current ordered selection.
type Reader interface {
	Selection() []Node
}

// Source is a Reader that can notify about selection changes. Each call to
// onChange carries the selection as it was when that change happened, so a
// burst of changes is never folded into one. Watch blocks until ctx is done or
// the source fails.
type Source interface {
	Reader
	Watch(ctx context.Context, onChange func(selection []Node)) error
}

// Memory is a Source whose selection is pushed in by the host bridge. Sets
// that happen before Watch starts are delivered, in order, once Watch
// registers.
type Memory struct {
	// deliver keeps callbacks in Set order without holding mu, so Selection
	// stays available while a callback blocks.
	deliver sync.Mutex

	mu       sync.Mutex
	nodes    []Node
	onChange func([]Node)
	pending  [][]Node
}

func NewMemory(nodes ...Node) *Memory {
	return &Memory{nodes: cloneNodes(nodes)}
}

func (m *Memory) Selection() []Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneNodes(m.nodes)
}

// Set replaces the selection and hands a copy of it to the watcher, if any.
// It returns once the watcher has accepted the change.
func (m *Memory) Set(nodes []Node) {
	m.deliver.Lock()
	defer m.deliver.Unlock()
	m.mu.Lock()
	m.nodes = cloneNodes(nodes)
	onChange := m.onChange
	if onChange == nil {
		m.pending = append(m.pending, cloneNodes(nodes))
	}
	m.mu.Unlock()
	if onChange != nil {
		onChange(cloneNodes(nodes))
	}
}

func (m *Memory) Watch(ctx context.Context, onChange func([]Node)) error {
	m.deliver.Lock()
	m.mu.Lock()
	m.onChange = onChange
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, nodes := range pending {
		onChange(nodes)
	}
	m.deliver.Unlock()

	<-ctx.Done()
	m.mu.Lock()
	m.onChange = nil
	m.mu.Unlock()
	return nil
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return out
}
