// internal/server/resources.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const usagePrompt = `# BrainsGraph usage

This server renders a live architecture graph of the repository it was
started on. Connected browser viewers see the full file graph; the
highlight_architecture tool lights up the files you name in every open
viewer immediately.

- Call highlight_architecture whenever you explain code structure, with
  the filenames you are talking about (substring match, case-insensitive).
- Each call replaces the previous highlight entirely; pass the full set
  you want visible.
- Passing names that match nothing clears the highlight.
`

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "brainsgraph://usage-guidelines",
		Name:        "Usage Guidelines",
		Description: "How and when to drive the live graph view",
		MIMEType:    "text/markdown",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      "brainsgraph://usage-guidelines",
					MIMEType: "text/markdown",
					Text:     usagePrompt,
				},
			},
		}, nil
	})

	schemaMap := buildSchemaMap()

	s.mcpServer.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "brainsgraph://schemas/{tool_name}",
		Name:        "Tool Schema",
		Description: "JSON schema for the named tool's arguments",
		MIMEType:    "application/schema+json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := req.Params.URI
		toolName := strings.TrimPrefix(uri, "brainsgraph://schemas/")
		schemaJSON, ok := schemaMap[toolName]
		if !ok {
			return nil, fmt.Errorf("unknown tool schema: %q", toolName)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/schema+json",
					Text:     schemaJSON,
				},
			},
		}, nil
	})
}

func buildSchemaMap() map[string]string {
	m := make(map[string]string)
	addSchema[HighlightArgs](m, "highlight_architecture")
	return m
}

func addSchema[T any](m map[string]string, name string) {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		return
	}
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return
	}
	m[name] = string(schemaJSON)
}
