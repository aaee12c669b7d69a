// internal/graph/store_test.go
package graph

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// getTestStore returns an initialized store with a small fixed graph.
func getTestStore(t *testing.T) *Store {
	t.Helper()

	s := NewStore(zap.NewNop())
	nodes := []Node{
		{ID: "src/AuthService.py", Label: "AuthService.py", Category: CategoryService},
		{ID: "src/Utils.py", Label: "Utils.py", Category: CategoryUtility},
		{ID: "src/config.py", Label: "config.py", Category: CategoryConfig},
	}
	edges := []Edge{
		{Source: "src/AuthService.py", Target: "src/Utils.py"},
	}
	require.NoError(t, s.Initialize(nodes, edges))
	return s
}

func TestInitialize(t *testing.T) {
	t.Parallel()

	t.Run("should load nodes and edges exactly once", func(t *testing.T) {
		t.Parallel()
		s := getTestStore(t)
		snap := s.Snapshot()
		assert.Len(t, snap.Nodes, 3)
		assert.Len(t, snap.Edges, 1)
	})

	t.Run("should fail on a second call", func(t *testing.T) {
		t.Parallel()
		s := getTestStore(t)
		err := s.Initialize(nil, nil)
		require.Error(t, err)
		assert.EqualError(t, err, "graph store already initialized")
	})

	t.Run("should accept an empty graph", func(t *testing.T) {
		t.Parallel()
		s := NewStore(nil)
		require.NoError(t, s.Initialize(nil, nil))
		snap := s.Snapshot()
		assert.Empty(t, snap.Nodes)
		assert.Empty(t, snap.Edges)
		assert.NotNil(t, snap.Highlighted, "highlighted must marshal as [], not null")
	})
}

func TestReplaceHighlight(t *testing.T) {
	t.Parallel()

	t.Run("should install the intersection with known node ids", func(t *testing.T) {
		t.Parallel()
		s := getTestStore(t)
		installed := s.ReplaceHighlight([]string{"src/AuthService.py", "no/such/file.py"})
		assert.Equal(t, []string{"src/AuthService.py"}, installed)
		assert.Equal(t, installed, s.Snapshot().Highlighted)
	})

	t.Run("should fully replace, never merge", func(t *testing.T) {
		t.Parallel()
		s := getTestStore(t)
		s.ReplaceHighlight([]string{"src/AuthService.py"})
		installed := s.ReplaceHighlight([]string{"src/Utils.py"})
		assert.Equal(t, []string{"src/Utils.py"}, installed)
		assert.Equal(t, []string{"src/Utils.py"}, s.Snapshot().Highlighted)
	})

	t.Run("should clear the selection when nothing matches", func(t *testing.T) {
		t.Parallel()
		s := getTestStore(t)
		s.ReplaceHighlight([]string{"src/AuthService.py"})
		installed := s.ReplaceHighlight([]string{"NoSuchFile"})
		assert.Empty(t, installed)
		assert.Empty(t, s.Snapshot().Highlighted)
	})

	t.Run("should collapse duplicate ids", func(t *testing.T) {
		t.Parallel()
		s := getTestStore(t)
		installed := s.ReplaceHighlight([]string{"src/Utils.py", "src/Utils.py"})
		assert.Equal(t, []string{"src/Utils.py"}, installed)
	})
}

func TestSnapshotIsolation(t *testing.T) {
	t.Parallel()
	s := getTestStore(t)

	snap := s.Snapshot()
	snap.Nodes[0].ID = "mutated"
	snap.Highlighted = append(snap.Highlighted, "mutated")

	after := s.Snapshot()
	assert.Equal(t, "src/AuthService.py", after.Nodes[0].ID, "snapshot mutation must not leak into the store")
	assert.Empty(t, after.Highlighted)
}

func TestConcurrentHighlightAndSnapshot(t *testing.T) {
	// Run with -race; the selection must never be observed half-updated.
	t.Parallel()
	s := getTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.ReplaceHighlight([]string{"src/Utils.py", fmt.Sprintf("unknown-%d", i)})
		}(i)
		go func() {
			defer wg.Done()
			snap := s.Snapshot()
			for _, id := range snap.Highlighted {
				assert.Equal(t, "src/Utils.py", id)
			}
		}()
	}
	wg.Wait()
}
