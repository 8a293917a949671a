// Package project implements the build orchestrator: a stateful
// reconciliation loop that keeps the entry and artifact maps consistent
// with the filesystem and rebuilds artifacts on demand.
//
// A Project is owned by a single logical execution context. Nothing in
// here locks; concurrent callers must serialize every mutating call
// (Sync, Build, Ignore, SetAttr, RegisterHelper, SyncEvery) behind one
// owning worker or an explicit mutex, as the preview server does.
package project

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/helpers"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
	"git.home.luguber.info/inful/sitebuilder/internal/script"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

// Project owns the entry/artifact maps, the ignore set, the helper
// registry, and the throttle state. Construct once per session.
type Project struct {
	sourceRoot string
	outputRoot string

	ignore    sets.Set[string]
	entries   map[string]*site.Entry    // rel path -> entry
	artifacts map[string]*site.Artifact // output rel path -> artifact

	registry *helpers.Registry
	runner   *script.Runner
	scanner  *site.Scanner
	renderer site.Renderer
	recorder metrics.Recorder

	nextSyncAt time.Time // zero means due immediately

	assumeContentNegotiation bool
	assumeDirectoryIndex     bool
}

// New constructs a project over sourceRoot. The output root is wiped of
// any prior contents immediately, before any scan or build, so a fresh
// project never inherits stale artifacts.
func New(sourceRoot string, opts Options) (*Project, error) {
	absSource, err := filepath.Abs(sourceRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve source root: %w", err)
	}

	outputRoot := opts.OutputRoot
	if outputRoot == "" {
		outputRoot = absSource + OutputSuffix
	}
	absOutput, err := filepath.Abs(outputRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve output root: %w", err)
	}

	recorder := opts.Metrics
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	registry := helpers.NewRegistry()
	p := &Project{
		sourceRoot: absSource,
		outputRoot: absOutput,
		ignore:     sets.New(DefaultIgnores()...),
		entries:    make(map[string]*site.Entry),
		artifacts:  make(map[string]*site.Artifact),
		registry:   registry,
		runner:     script.NewRunner(filepath.Join(absSource, script.ControlFile)),
		scanner:    site.NewScanner(absSource, absOutput),
		renderer:   render.NewRenderer(absSource, registry),
		recorder:   recorder,
	}

	for _, pattern := range opts.Ignore {
		p.Ignore(pattern)
	}

	// Apply attrs in sorted order so a bad key fails deterministically.
	attrNames := make([]string, 0, len(opts.Attrs))
	for name := range opts.Attrs {
		attrNames = append(attrNames, name)
	}
	sort.Strings(attrNames)
	for _, name := range attrNames {
		if err := p.SetAttr(name, opts.Attrs[name]); err != nil {
			p.runner.Close()
			return nil, err
		}
	}

	if err := wipeDir(absOutput); err != nil {
		p.runner.Close()
		return nil, fmt.Errorf("reset output root: %w", err)
	}

	slog.Info("Project initialized",
		logfields.Path(absSource),
		slog.String("output_root", absOutput))
	return p, nil
}

// Close releases the script engine. Call once the session ends.
func (p *Project) Close() { p.runner.Close() }

// SourceRoot returns the absolute source root.
func (p *Project) SourceRoot() string { return p.sourceRoot }

// OutputRoot returns the absolute output root.
func (p *Project) OutputRoot() string { return p.outputRoot }

// Helpers returns the project's helper registry. The registry identity
// is stable across reconfiguration.
func (p *Project) Helpers() *helpers.Registry { return p.registry }

// AssumeContentNegotiation reports the content-negotiation attribute.
func (p *Project) AssumeContentNegotiation() bool { return p.assumeContentNegotiation }

// AssumeDirectoryIndex reports the directory-index attribute.
func (p *Project) AssumeDirectoryIndex() bool { return p.assumeDirectoryIndex }

// Ignore appends a glob to the ignore set. Duplicates collapse, so the
// control script re-adding the same pattern every cycle is a no-op.
func (p *Project) Ignore(pattern string) {
	p.ignore.Add(pattern)
}

// IgnorePatterns returns the current ignore globs in sorted order.
func (p *Project) IgnorePatterns() []string {
	patterns := make([]string, 0, len(p.ignore))
	for pattern := range p.ignore {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)
	return patterns
}

// RegisterHelper registers or overwrites a named helper.
func (p *Project) RegisterHelper(name string, fn helpers.Helper) {
	p.registry.Register(name, fn)
}

// SetAttr applies one recognized attribute mutation. Unrecognized names
// fail fast with a ConfigurationError.
func (p *Project) SetAttr(name string, value any) error {
	switch name {
	case AttrContentNegotiation:
		b, err := boolAttr(name, value)
		if err != nil {
			return err
		}
		p.assumeContentNegotiation = b
	case AttrDirectoryIndex:
		b, err := boolAttr(name, value)
		if err != nil {
			return err
		}
		p.assumeDirectoryIndex = b
	default:
		return &ConfigurationError{Attr: name, Err: errors.New("unrecognized attribute")}
	}
	return nil
}

// Entry returns the entry tracked under the source-relative path, or nil.
func (p *Project) Entry(rel string) *site.Entry {
	return p.entries[rel]
}

// Artifact returns the artifact tracked under the output-relative path,
// or nil.
func (p *Project) Artifact(rel string) *site.Artifact {
	return p.artifacts[rel]
}

// EntryPaths returns the tracked source-relative paths in sorted order.
func (p *Project) EntryPaths() []string {
	paths := make([]string, 0, len(p.entries))
	for rel := range p.entries {
		paths = append(paths, rel)
	}
	sort.Strings(paths)
	return paths
}

// ArtifactPaths returns the tracked output-relative paths in sorted order.
func (p *Project) ArtifactPaths() []string {
	paths := make([]string, 0, len(p.artifacts))
	for rel := range p.artifacts {
		paths = append(paths, rel)
	}
	sort.Strings(paths)
	return paths
}

// HasErrors reports whether any current artifact carries a build error
// from the most recent Build. Read-only; triggers nothing.
func (p *Project) HasErrors() bool {
	for _, a := range p.artifacts {
		if a.Err() != nil {
			return true
		}
	}
	return false
}

// LastBuiltAt returns the output root's modification marker, the
// externally observable "last built at" signal. Zero when the output
// root does not exist yet.
func (p *Project) LastBuiltAt() time.Time {
	info, err := os.Stat(p.outputRoot)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Ignored implements site.Rules against the current ignore set.
func (p *Project) Ignored(rel string) bool {
	return site.MatchesAny(rel, p.IgnorePatterns())
}

// InOutputRoot implements site.Rules.
func (p *Project) InOutputRoot(abs string) bool {
	return site.Contains(p.outputRoot, abs)
}

func boolAttr(name string, value any) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, &ConfigurationError{
			Attr: name,
			Err:  fmt.Errorf("expected bool, got %T", value),
		}
	}
	return b, nil
}

// wipeDir removes the contents of dir, keeping the directory itself when
// it already exists. A missing dir is fine.
func wipeDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
