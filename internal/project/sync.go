package project

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// Sync runs one reconciliation cycle: load config, validate known
// entries, discover new files. The three phases always run together in
// that order; config must run first because it can change the ignore
// rules the later phases depend on for this cycle.
//
// After a completed Sync the maps exactly reflect the filesystem minus
// ignored entries, and unchanged entries keep their identity.
func (p *Project) Sync(ctx context.Context) error {
	start := time.Now()

	if err := p.loadConfig(); err != nil {
		p.recorder.IncSyncOutcome("config_error")
		return err
	}
	p.validateEntries()
	discovered, err := p.discoverEntries()
	if err != nil {
		p.recorder.IncSyncOutcome("scan_error")
		return err
	}

	p.recorder.ObserveSyncDuration(time.Since(start))
	p.recorder.IncSyncOutcome("success")
	p.recorder.SetEntryCount(len(p.entries))
	p.recorder.SetArtifactCount(len(p.artifacts))

	if len(discovered) > 0 {
		slog.Debug("Sync discovered new entries", logfields.Count(len(discovered)))
	}
	return nil
}

// loadConfig re-executes the control script against the project's
// mutation API. A script fault aborts the cycle as a configuration
// error; mutations applied before the fault stay in effect.
func (p *Project) loadConfig() error {
	start := time.Now()
	defer func() {
		p.recorder.ObservePhaseDuration(metrics.PhaseConfig, time.Since(start))
	}()

	if err := p.runner.Run(p); err != nil {
		return &ConfigurationError{Err: err}
	}
	return nil
}

// validateEntries re-checks every known entry against current filesystem
// state and ignore rules. An invalid entry leaves both maps in the same
// step; neither map ever holds a reference the other has dropped.
func (p *Project) validateEntries() {
	start := time.Now()
	defer func() {
		p.recorder.ObservePhaseDuration(metrics.PhaseValidate, time.Since(start))
	}()

	for rel, entry := range p.entries {
		if entry.Valid(p) {
			continue
		}
		delete(p.entries, rel)
		// Delete by identity, not just by key: when output paths collide
		// the key may be held by another entry's artifact.
		if a := entry.Artifact(); a != nil {
			if cur, ok := p.artifacts[a.Rel()]; ok && cur == a {
				delete(p.artifacts, a.Rel())
			}
		}
		slog.Debug("Entry pruned", logfields.Entry(rel))
	}
}

// discoverEntries scans for files not yet tracked and inserts them with
// their artifacts. Already-tracked paths are left untouched so entry
// identity is preserved across cycles.
func (p *Project) discoverEntries() ([]string, error) {
	start := time.Now()
	defer func() {
		p.recorder.ObservePhaseDuration(metrics.PhaseDiscover, time.Since(start))
	}()

	paths, err := p.scanner.Scan(p)
	if err != nil {
		return nil, fmt.Errorf("discover entries: %w", err)
	}

	var discovered []string
	for _, rel := range paths {
		if _, ok := p.entries[rel]; ok {
			continue
		}
		p.entries[rel] = site.NewEntry(p.sourceRoot, rel)
		discovered = append(discovered, rel)
	}

	p.reconcileArtifacts()
	return discovered, nil
}

// reconcileArtifacts re-derives artifact-map membership from the current
// entry set, so every tracked entry producing output holds exactly one
// slot. Distinct sources can claim the same output path (page.md and
// page.html both produce page.html); the lexicographically first source
// wins, which keeps the choice stable across cycles and insertion
// orders, and the shadowed source is logged every cycle the collision
// persists.
func (p *Project) reconcileArtifacts() {
	for _, entry := range p.entries {
		a := entry.Artifact()
		if a == nil {
			continue
		}
		cur, ok := p.artifacts[a.Rel()]
		switch {
		case !ok:
			p.artifacts[a.Rel()] = a
		case cur == a:
			// Already tracked.
		case entry.Rel() < cur.Entry().Rel():
			p.artifacts[a.Rel()] = a
			slog.Warn("Output path collision",
				logfields.Artifact(a.Rel()),
				logfields.Entry(entry.Rel()),
				slog.String("shadowed", cur.Entry().Rel()))
		default:
			slog.Warn("Output path collision",
				logfields.Artifact(a.Rel()),
				logfields.Entry(cur.Entry().Rel()),
				slog.String("shadowed", entry.Rel()))
		}
	}
}

// SyncEvery is the throttle for long-running callers: it runs a full
// Sync when the period since the last throttled sync has elapsed and
// does nothing otherwise. The first call is due immediately. Reports
// whether a sync ran. Not reentrant-safe; callers serialize.
func (p *Project) SyncEvery(ctx context.Context, period time.Duration) (bool, error) {
	now := time.Now()
	if now.Before(p.nextSyncAt) {
		return false, nil
	}
	p.nextSyncAt = now.Add(period)
	if err := p.Sync(ctx); err != nil {
		return true, err
	}
	return true, nil
}
