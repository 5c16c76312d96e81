package ingest

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Authorizer enforces the directory allow-list. Roots are canonicalised
// once at construction; candidate paths are checked lexically first, so a
// disallowed path is rejected before any filesystem access happens.
type Authorizer struct {
	roots []string
}

// NewAuthorizer resolves the allowed roots to absolute canonical paths.
// Roots that cannot be resolved (for example, they do not exist yet) are
// kept in their absolute lexical form.
func NewAuthorizer(roots []string) (*Authorizer, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("ingest: no allowed directories configured")
	}
	canonical := make([]string, 0, len(roots))
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("ingest: invalid allowed directory %q: %w", root, err)
		}
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		canonical = append(canonical, abs)
	}
	return &Authorizer{roots: canonical}, nil
}

// Authorize validates that path lies under one of the allowed roots and
// returns its canonical form. The lexical check runs before the symlink
// resolution, so paths that are disallowed on their face cause no
// filesystem access at all. Paths that pass lexically but escape a root
// through a symlink are rejected after resolution.
func (a *Authorizer) Authorize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrPathNotAllowed, path)
	}
	if !a.contains(abs) {
		return "", fmt.Errorf("%w: %q", ErrPathNotAllowed, path)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Nonexistent or unreadable paths surface their real error later,
		// once the pipeline opens the file; authorization only answers
		// whether the location is permitted.
		return abs, nil
	}
	if !a.contains(resolved) {
		return "", fmt.Errorf("%w: %q resolves outside allowed directories", ErrPathNotAllowed, path)
	}
	return resolved, nil
}

func (a *Authorizer) contains(abs string) bool {
	for _, root := range a.roots {
		if abs == root || strings.HasPrefix(abs, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
