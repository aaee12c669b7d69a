// internal/graph/types.go
package graph

// Category is the coarse architectural role assigned to a file at scan time.
type Category string

const (
	CategoryService   Category = "service"
	CategoryUtility   Category = "utility"
	CategoryConfig    Category = "config"
	CategoryCore      Category = "core"
	CategoryComponent Category = "component"
)

// Node represents one scanned source file.
// ID is the path relative to the scan root, forward-slash normalized,
// and is unique for the lifetime of a scan.
type Node struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Category Category `json:"type"`
}

// Edge represents a suspected import dependency between two files.
// Both endpoints are node IDs from the same scan. Edges carry no
// identifier of their own; they are only enumerable.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Snapshot is an immutable point-in-time copy of the full graph state,
// suitable for serializing to a newly connected viewer. Highlighted is
// never nil so it marshals as [] rather than null.
type Snapshot struct {
	Nodes       []Node   `json:"nodes"`
	Edges       []Edge   `json:"edges"`
	Highlighted []string `json:"highlighted"`
}
