package project

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// BuildResult summarizes one completed Build for callers (CLI, preview
// server, state store). Per-artifact failures live on the artifacts;
// the result only counts them.
type BuildResult struct {
	BuildID   string
	StartTime time.Time
	Duration  time.Duration
	Artifacts int
	Failed    int
}

// Build runs a Sync, ensures the output root exists, builds every
// current artifact sequentially, and stamps the output root's
// modification marker exactly once. A failing artifact records its
// error and the loop continues; HasErrors is the aggregate signal.
func (p *Project) Build(ctx context.Context) (*BuildResult, error) {
	start := time.Now()
	result := &BuildResult{
		BuildID:   uuid.NewString(),
		StartTime: start,
	}

	if err := p.Sync(ctx); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p.outputRoot, 0o750); err != nil {
		return nil, fmt.Errorf("create output root: %w", err)
	}

	for _, rel := range p.ArtifactPaths() {
		artifact := p.artifacts[rel]
		if err := artifact.Build(p.renderer, p.outputRoot); err != nil {
			p.recorder.IncArtifactResult(false)
			result.Failed++
			slog.Warn("Artifact build failed",
				logfields.BuildID(result.BuildID),
				logfields.Artifact(rel),
				logfields.Error(err))
			continue
		}
		p.recorder.IncArtifactResult(true)
	}
	result.Artifacts = len(p.artifacts)

	// Stamp the build generation marker after all builds attempted.
	now := time.Now()
	if err := os.Chtimes(p.outputRoot, now, now); err != nil {
		return nil, fmt.Errorf("stamp output root: %w", err)
	}

	result.Duration = time.Since(start)
	p.recorder.ObserveBuildDuration(result.Duration)

	slog.Info("Build complete",
		logfields.BuildID(result.BuildID),
		logfields.Count(result.Artifacts),
		slog.Int("failed", result.Failed),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))
	return result, nil
}
