// internal/scanner/scanner.go
package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	ignore "github.com/sabhiram/go-gitignore"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"brainsgraph/internal/graph"
)

// ignoredDirs are noise directories excluded from traversal at every depth.
var ignoredDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	".hg":          {},
	".svn":         {},
	"venv":         {},
	"__pycache__":  {},
	"build":        {},
	"dist":         {},
	"target":       {},
	"vendor":       {},
	".idea":        {},
}

// sourceExtensions is the allow-list of file extensions included as nodes.
var sourceExtensions = map[string]struct{}{
	".ts": {}, ".tsx": {},
	".js": {}, ".jsx": {},
	".py": {}, ".java": {}, ".kt": {},
	".go": {}, ".rs": {}, ".cpp": {},
}

// readConcurrency bounds the edge-derivation pass.
const readConcurrency = 8

// Scanner walks a repository tree once at startup and derives the node
// and edge sets for the graph store.
type Scanner struct {
	log *zap.Logger
}

func New(logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{log: logger.Named("scanner")}
}

// Scan walks root and returns the discovered nodes and heuristic import
// edges. It never fails: a missing root is logged and yields empty
// results so the service still starts and accepts viewer connections.
// Node IDs are root-relative, forward-slash normalized, and unique.
func (s *Scanner) Scan(ctx context.Context, root string) ([]graph.Node, []graph.Edge) {
	nodes := []graph.Node{}
	edges := []graph.Edge{}

	if _, err := os.Stat(root); err != nil {
		s.log.Error("Scan root not found, starting with an empty graph", zap.String("root", root), zap.Error(err))
		return nodes, edges
	}

	s.log.Info("Scanning repository", zap.String("root", root))

	// A root .gitignore, when present, is honored on top of the fixed
	// denylist. Compile errors just disable the matcher.
	matcher, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		matcher = nil
	}

	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree; keep going with the rest.
			s.log.Debug("Skipping unreadable path", zap.String("path", p), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if _, skip := ignoredDirs[d.Name()]; skip && p != root {
				return fs.SkipDir
			}
			return nil
		}
		if _, ok := sourceExtensions[filepath.Ext(d.Name())]; !ok {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}

		nodes = append(nodes, graph.Node{
			ID:       rel,
			Label:    d.Name(),
			Category: Classify(rel),
		})
		return nil
	})
	if walkErr != nil {
		s.log.Warn("Repository walk ended early", zap.Error(walkErr))
	}

	edges = s.deriveEdges(ctx, root, nodes)

	s.log.Info("Scan complete", zap.Int("nodes", len(nodes)), zap.Int("edges", len(edges)))
	return nodes, edges
}

// deriveEdges is pass two: re-read each node's content and link it to
// the first other node whose filename starts with an extracted import
// stem. Labels are tried in sorted order so the link choice does not
// depend on traversal order.
func (s *Scanner) deriveEdges(ctx context.Context, root string, nodes []graph.Node) []graph.Edge {
	labelToID := make(map[string]string, len(nodes))
	for _, n := range nodes {
		labelToID[n.Label] = n.ID
	}
	labels := make([]string, 0, len(labelToID))
	for label := range labelToID {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var (
		mu    sync.Mutex
		edges = []graph.Edge{}
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(readConcurrency)

	for _, node := range nodes {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res := readFileBestEffort(filepath.Join(root, filepath.FromSlash(node.ID)))
			if res.status != readOK {
				// Unreadable or vanished since pass one: contributes no
				// edges, never aborts the scan.
				s.log.Debug("Skipping file during edge derivation",
					zap.String("id", node.ID), zap.Int("status", int(res.status)))
				return nil
			}
			for _, stem := range ImportStems(res.content) {
				for _, label := range labels {
					targetID := labelToID[label]
					if strings.HasPrefix(label, stem) && targetID != node.ID {
						mu.Lock()
						edges = append(edges, graph.Edge{Source: node.ID, Target: targetID})
						mu.Unlock()
						break
					}
				}
			}
			return nil
		})
	}
	// Workers only return nil; Wait is for completion, not errors.
	_ = g.Wait()

	return edges
}

type readStatus int

const (
	readOK readStatus = iota
	readNotFound
	readUnreadable
)

// readResult distinguishes content from the two non-fatal failure modes
// the scanner treats uniformly as "no edges contributed".
type readResult struct {
	content string
	status  readStatus
}

func readFileBestEffort(path string) readResult {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Binary or invalid UTF-8 content is tolerated; the import
		// pattern simply finds nothing useful in it.
		return readResult{content: string(data), status: readOK}
	case errors.Is(err, fs.ErrNotExist):
		return readResult{status: readNotFound}
	default:
		return readResult{status: readUnreadable}
	}
}
