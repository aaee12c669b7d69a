// internal/scanner/imports.go
package scanner

import (
	"path"
	"regexp"
	"strings"
)

// importPattern matches import-statement-like lines across the supported
// languages: a keyword followed by a quoted-or-bare module token.
var importPattern = regexp.MustCompile(`(?:import|from|include)\s+["']?([@\w./-]+)["']?`)

// ImportStems extracts candidate module stems from source text. Each
// match is reduced to its final path segment with any extension
// stripped, e.g. `from "./lib/Utils.ts"` yields "Utils". This is a
// deliberately naive linker input, not a resolver; callers must accept
// false positives and negatives. Kept as a pure function so a real
// per-language parser can replace it without touching the traversal.
func ImportStems(content string) []string {
	matches := importPattern.FindAllStringSubmatch(content, -1)
	stems := make([]string, 0, len(matches))
	for _, m := range matches {
		stem := path.Base(m[1])
		if i := strings.IndexByte(stem, '.'); i >= 0 {
			stem = stem[:i]
		}
		if stem == "" || stem == "/" {
			continue
		}
		stems = append(stems, stem)
	}
	return stems
}
