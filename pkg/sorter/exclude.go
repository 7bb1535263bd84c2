package sorter

import (
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"
)

// excluder matches base names against glob patterns.
// Patterns support:
//   - Simple glob patterns: *.tmp, ~*
//   - Character classes and alternatives: [Tt]humbs.db, *.{part,crdownload}
type excluder struct {
	patterns []string
	globs    []glob.Glob
}

// add compiles pattern and appends it. Empty patterns are ignored.
func (e *excluder) add(pattern string) error {
	if pattern == "" {
		return nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
	}
	e.patterns = append(e.patterns, pattern)
	e.globs = append(e.globs, g)
	return nil
}

// match reports the first pattern matching the base name of path, if any
func (e *excluder) match(path string) (string, bool) {
	name := filepath.Base(path)
	for i, g := range e.globs {
		if g.Match(name) {
			return e.patterns[i], true
		}
	}
	return "", false
}

func (e *excluder) reset() {
	e.patterns = nil
	e.globs = nil
}
