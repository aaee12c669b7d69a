// internal/scanner/scanner_test.go
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"brainsgraph/internal/graph"
)

// writeTree creates the given relative-path -> content files under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

// edgeSetDiff compares edges as sets; traversal order is not part of the
// scanner's contract.
func edgeSetDiff(want, got []graph.Edge) string {
	sorter := cmpopts.SortSlices(func(a, b graph.Edge) bool {
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Target < b.Target
	})
	return cmp.Diff(want, got, sorter)
}

func TestScanAuthServiceScenario(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/AuthService.py": "from Utils import helper\n",
		"src/Utils.py":       "x = 1\n",
	})

	nodes, edges := New(zap.NewNop()).Scan(context.Background(), root)

	require.Len(t, nodes, 2)
	byID := make(map[string]graph.Node)
	for _, n := range nodes {
		byID[n.ID] = n
	}
	require.Contains(t, byID, "src/AuthService.py")
	require.Contains(t, byID, "src/Utils.py")
	assert.Equal(t, graph.CategoryService, byID["src/AuthService.py"].Category)
	assert.Equal(t, graph.CategoryUtility, byID["src/Utils.py"].Category)
	assert.Equal(t, "AuthService.py", byID["src/AuthService.py"].Label)

	want := []graph.Edge{{Source: "src/AuthService.py", Target: "src/Utils.py"}}
	assert.Empty(t, edgeSetDiff(want, edges))
}

func TestScanMissingRoot(t *testing.T) {
	t.Parallel()
	nodes, edges := New(zap.NewNop()).Scan(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	assert.NotNil(t, nodes)
	assert.NotNil(t, edges)
	assert.Empty(t, nodes)
	assert.Empty(t, edges)
}

func TestScanFiltering(t *testing.T) {
	t.Parallel()

	t.Run("should skip noise directories at every depth", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"app.ts":                       "",
			"node_modules/lib/index.js":    "",
			"src/__pycache__/cached.py":    "",
			"deep/nested/.git/hook.py":     "",
			"deep/nested/build/gen.go":     "",
			"deep/nested/keep/Handler.tsx": "",
		})

		nodes, _ := New(zap.NewNop()).Scan(context.Background(), root)
		ids := nodeIDs(nodes)
		assert.ElementsMatch(t, []string{"app.ts", "deep/nested/keep/Handler.tsx"}, ids)
	})

	t.Run("should only include allow-listed extensions", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"main.go":    "",
			"readme.md":  "",
			"data.json":  "",
			"Widget.kt":  "",
			"notes.txt":  "",
			"engine.cpp": "",
		})

		nodes, _ := New(zap.NewNop()).Scan(context.Background(), root)
		assert.ElementsMatch(t, []string{"main.go", "Widget.kt", "engine.cpp"}, nodeIDs(nodes))
	})

	t.Run("should honor a root gitignore", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			".gitignore":       "generated/\n",
			"src/main.py":      "",
			"generated/gen.py": "",
		})

		nodes, _ := New(zap.NewNop()).Scan(context.Background(), root)
		assert.ElementsMatch(t, []string{"src/main.py"}, nodeIDs(nodes))
	})
}

func TestScanProperties(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/AppController.ts": "import { helper } from './helpers/StringHelper'\n",
		"helpers/StringHelper.ts": "import './Format'\n" +
			"include \"legacy/Format.cpp\"\n",
		"legacy/Format.cpp": "#include <vector>\n",
		"binary.go":         string([]byte{0x00, 0xff, 0xfe, 0x01}),
	})

	nodes, edges := New(zap.NewNop()).Scan(context.Background(), root)

	t.Run("node ids are unique forward-slash relative paths", func(t *testing.T) {
		seen := make(map[string]struct{})
		for _, n := range nodes {
			_, dup := seen[n.ID]
			assert.False(t, dup, "duplicate node id %q", n.ID)
			seen[n.ID] = struct{}{}
			assert.False(t, strings.Contains(n.ID, "\\"), "id %q must use forward slashes", n.ID)
			assert.False(t, filepath.IsAbs(n.ID), "id %q must be relative", n.ID)
		}
	})

	t.Run("every edge endpoint exists in the node set", func(t *testing.T) {
		ids := make(map[string]struct{})
		for _, n := range nodes {
			ids[n.ID] = struct{}{}
		}
		for _, e := range edges {
			assert.Contains(t, ids, e.Source)
			assert.Contains(t, ids, e.Target)
		}
	})

	t.Run("two scans produce the same node and edge sets", func(t *testing.T) {
		nodes2, edges2 := New(zap.NewNop()).Scan(context.Background(), root)
		assert.ElementsMatch(t, nodes, nodes2)
		assert.Empty(t, edgeSetDiff(edges, edges2))
	})
}

func TestScanUnreadableFileContributesNoEdges(t *testing.T) {
	t.Parallel()
	if os.Geteuid() == 0 {
		t.Skip("permission bits are ignored when running as root")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/Reader.py": "from Sealed import x\n",
		"src/Sealed.py": "",
	})
	require.NoError(t, os.Chmod(filepath.Join(root, "src", "Reader.py"), 0o000))
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(root, "src", "Reader.py"), 0o644) })

	nodes, edges := New(zap.NewNop()).Scan(context.Background(), root)
	assert.Len(t, nodes, 2, "unreadable files still appear as nodes")
	assert.Empty(t, edges, "unreadable files contribute no edges")
}

func nodeIDs(nodes []graph.Node) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}
