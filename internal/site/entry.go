// Package site models the tracked source tree: entries discovered under
// the source root, the artifacts they produce, and the scanner that
// enumerates candidates for the orchestrator.
package site

import (
	"os"
	"path/filepath"
	"strings"
)

// Rules is the eligibility contract an Entry re-checks itself against.
// The project orchestrator implements it with its current ignore set and
// output root.
type Rules interface {
	// Ignored reports whether the relative path matches an ignore glob.
	Ignored(rel string) bool
	// InOutputRoot reports whether the absolute path lies inside the
	// output root (containment, not equality).
	InOutputRoot(abs string) bool
}

// Entry is one tracked source file. Entries are created on first
// discovery and live until a sync re-validation reports them ineligible.
type Entry struct {
	sourceRoot string
	rel        string // slash-separated, relative to sourceRoot
	artifact   *Artifact
}

// NewEntry creates an entry for rel under sourceRoot, together with its
// artifact when the file produces output. Template resources (.tmpl)
// are tracked but produce nothing.
func NewEntry(sourceRoot, rel string) *Entry {
	e := &Entry{sourceRoot: sourceRoot, rel: rel}
	if out := OutputPath(rel); out != "" {
		e.artifact = &Artifact{rel: out, entry: e}
	}
	return e
}

// Rel returns the slash-separated path relative to the source root.
func (e *Entry) Rel() string { return e.rel }

// SourcePath returns the absolute filesystem path of the source file.
func (e *Entry) SourcePath() string {
	return filepath.Join(e.sourceRoot, filepath.FromSlash(e.rel))
}

// Artifact returns the artifact this entry produces, or nil.
func (e *Entry) Artifact() *Artifact { return e.artifact }

// Valid re-checks the entry against current filesystem state and rules.
// An entry stays valid while its file exists as a regular file, is not
// ignored, and does not sit inside the output root.
func (e *Entry) Valid(rules Rules) bool {
	abs := e.SourcePath()
	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if rules.Ignored(e.rel) {
		return false
	}
	return !rules.InOutputRoot(abs)
}

// markdownExts are source extensions rendered to HTML.
var markdownExts = map[string]bool{
	".md": true, ".markdown": true, ".mdown": true, ".mkd": true,
}

// OutputPath maps a source-relative path to its artifact-relative path.
// Markdown renders to .html, template resources produce no artifact,
// everything else copies through under its own path.
func OutputPath(rel string) string {
	ext := strings.ToLower(filepath.Ext(rel))
	switch {
	case markdownExts[ext]:
		return rel[:len(rel)-len(ext)] + ".html"
	case ext == ".tmpl":
		return ""
	default:
		return rel
	}
}
