// internal/graph/store.go
package graph

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Store owns the authoritative in-memory graph state. The node and edge
// lists are populated exactly once at startup and are read-only
// thereafter; only the highlight selection mutates. A single Store
// instance is created in cmd and injected into both the controller and
// the viewer gateway.
type Store struct {
	mu          sync.RWMutex
	nodes       []Node
	edges       []Edge
	nodeIDs     map[string]struct{}
	highlighted map[string]struct{}
	initialized bool
	log         *zap.Logger
}

// NewStore creates an empty, uninitialized store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		nodeIDs:     make(map[string]struct{}),
		highlighted: make(map[string]struct{}),
		log:         logger.Named("graph_store"),
	}
}

// Initialize performs the one-time load of the scanned graph. Calling it
// a second time is a programming-contract violation and returns an error
// the caller should treat as fatal, unlike the runtime conditions
// elsewhere in this package which degrade gracefully.
func (s *Store) Initialize(nodes []Node, edges []Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return fmt.Errorf("graph store already initialized")
	}

	s.nodes = make([]Node, len(nodes))
	copy(s.nodes, nodes)
	s.edges = make([]Edge, len(edges))
	copy(s.edges, edges)

	for _, n := range s.nodes {
		s.nodeIDs[n.ID] = struct{}{}
	}

	s.initialized = true
	s.log.Info("Graph store initialized",
		zap.Int("nodes", len(s.nodes)),
		zap.Int("edges", len(s.edges)))
	return nil
}

// ReplaceHighlight atomically overwrites the highlight selection. IDs
// that do not exist as nodes are silently dropped; duplicates collapse.
// The previous selection is discarded entirely, never merged into.
// Returns the installed selection, sorted.
func (s *Store) ReplaceHighlight(ids []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.nodeIDs[id]; ok {
			next[id] = struct{}{}
		}
	}
	s.highlighted = next

	installed := highlightList(next)
	s.log.Debug("Highlight selection replaced", zap.Int("count", len(installed)))
	return installed
}

// Snapshot returns an immutable copy of (nodes, edges, highlight
// selection). It is safe to call concurrently with ReplaceHighlight; a
// reader never observes a partially updated selection.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Nodes:       make([]Node, len(s.nodes)),
		Edges:       make([]Edge, len(s.edges)),
		Highlighted: highlightList(s.highlighted),
	}
	copy(snap.Nodes, s.nodes)
	copy(snap.Edges, s.edges)
	return snap
}

func highlightList(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
