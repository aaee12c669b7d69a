// internal/server/tools.go
package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"brainsgraph/internal/graph"
)

// HighlightArgs is the single command the agent can issue.
type HighlightArgs struct {
	Filenames []string `json:"filenames" jsonschema:"required,description:List of file names to highlight (e.g. ['AuthService.ts'])"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "highlight_architecture",
		Description: "Highlight files in the live graph view. Use this when explaining code structure.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args HighlightArgs) (*mcp.CallToolResult, any, error) {
		count := s.highlight(args.Filenames)
		return textResult(fmt.Sprintf("Highlighted %d files.", count)), nil, nil
	})
}

// highlight resolves the requested filenames to node IDs, installs them
// as the new selection, and hands the change to the hub. Names that
// match nothing simply contribute nothing; a zero count is the only
// signal, not an error.
func (s *Server) highlight(filenames []string) int {
	snap := s.store.Snapshot()
	matched := resolveFilenames(snap.Nodes, filenames)
	installed := s.store.ReplaceHighlight(matched)
	s.hub.NotifyHighlight(installed)

	s.log.Info("Highlight command processed",
		zap.Int("requested", len(filenames)),
		zap.Int("matched", len(installed)))
	return len(installed)
}

// resolveFilenames returns the IDs of all nodes whose ID or label
// contains any of the requested names, case-insensitive. One requested
// name may match zero, one, or many nodes; all matches are kept.
func resolveFilenames(nodes []graph.Node, filenames []string) []string {
	var ids []string
	for _, name := range filenames {
		needle := strings.ToLower(strings.TrimSpace(name))
		if needle == "" {
			continue
		}
		for _, n := range nodes {
			if strings.Contains(strings.ToLower(n.ID), needle) ||
				strings.Contains(strings.ToLower(n.Label), needle) {
				ids = append(ids, n.ID)
			}
		}
	}
	return ids
}
