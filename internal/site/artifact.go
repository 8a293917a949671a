package site

import (
	"fmt"
	"os"
	"path/filepath"
)

// Renderer produces the bytes of an artifact from its source entry.
// Implemented by internal/render; narrowed here to avoid a dependency on
// the rendering stack.
type Renderer interface {
	Render(e *Entry) ([]byte, error)
}

// Artifact is one generated output file. Its Err field carries the
// outcome of the most recent build attempt; a failing artifact never
// aborts the surrounding build loop.
type Artifact struct {
	rel   string // slash-separated, relative to the output root
	entry *Entry
	err   error
}

// Rel returns the slash-separated path relative to the output root.
func (a *Artifact) Rel() string { return a.rel }

// Entry returns the source entry that owns this artifact.
func (a *Artifact) Entry() *Entry { return a.entry }

// Err returns the error recorded by the most recent Build, or nil.
func (a *Artifact) Err() error { return a.err }

// Build renders the artifact and writes it under outputRoot, recording
// the outcome on the artifact itself. The returned error mirrors the
// recorded one so callers can log it without re-reading the field.
func (a *Artifact) Build(r Renderer, outputRoot string) error {
	a.err = a.build(r, outputRoot)
	return a.err
}

func (a *Artifact) build(r Renderer, outputRoot string) error {
	content, err := r.Render(a.entry)
	if err != nil {
		return fmt.Errorf("render %s: %w", a.entry.Rel(), err)
	}

	dest := filepath.Join(outputRoot, filepath.FromSlash(a.rel))
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", a.rel, err)
	}
	return nil
}
