// internal/scanner/classify.go
package scanner

import (
	"strings"

	"brainsgraph/internal/graph"
)

// Classify assigns a coarse architectural category to a repository
// relative path. The policy is a case-insensitive substring test, first
// match wins. Total over any string; there are no error conditions.
func Classify(relPath string) graph.Category {
	lower := strings.ToLower(relPath)
	switch {
	case strings.Contains(lower, "service"):
		return graph.CategoryService
	case strings.Contains(lower, "util"), strings.Contains(lower, "helper"):
		return graph.CategoryUtility
	case strings.Contains(lower, "config"):
		return graph.CategoryConfig
	case strings.Contains(lower, "app"), strings.Contains(lower, "main"), strings.Contains(lower, "controller"):
		return graph.CategoryCore
	default:
		return graph.CategoryComponent
	}
}
