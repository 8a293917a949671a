package site

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Scanner enumerates candidate source files under a source root,
// excluding anything contained in the output root. The output root may
// be physically nested inside the source root; containment (not
// equality) decides exclusion.
type Scanner struct {
	sourceRoot string
	outputRoot string
}

// NewScanner creates a scanner for the given roots.
func NewScanner(sourceRoot, outputRoot string) *Scanner {
	return &Scanner{sourceRoot: sourceRoot, outputRoot: outputRoot}
}

// Scan walks the source root and returns the sorted slash-separated
// relative paths of every eligible regular file. Ignored directories are
// skipped whole, so large excluded trees cost one readdir, not a walk.
func (s *Scanner) Scan(rules Rules) ([]string, error) {
	var found []string

	err := filepath.WalkDir(s.sourceRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == s.sourceRoot {
			return nil
		}

		rel, err := filepath.Rel(s.sourceRoot, p)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", p, err)
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if Contains(s.outputRoot, p) || rules.Ignored(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if Contains(s.outputRoot, p) || rules.Ignored(rel) {
			return nil
		}

		found = append(found, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.sourceRoot, err)
	}

	sort.Strings(found)
	return found, nil
}

// Contains reports whether child lies under parent (or is parent
// itself). Both paths must be absolute or both relative to the same
// base; no symlink resolution is attempted.
func Contains(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, "../"))
}
