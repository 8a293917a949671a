package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/linkcheck"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/project"
	"git.home.luguber.info/inful/sitebuilder/internal/server"
	"git.home.luguber.info/inful/sitebuilder/internal/state"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"sitebuilder.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		CheckLinks bool `help:"Verify relative links in built HTML after the build"`
	} `cmd:"" help:"Sync the source tree and build all artifacts"`

	Discover struct{} `cmd:"" help:"Sync the source tree and list tracked entries without building"`

	Serve struct {
		Addr string `short:"a" help:"Listen address (overrides config)"`
	} `cmd:"" help:"Serve the built site with on-request syncing"`

	Init struct {
		Dir   string `arg:"" optional:"" help:"Directory to initialize" default:"."`
		Force bool   `help:"Overwrite existing files"`
	} `cmd:"" help:"Initialize a new site skeleton"`
}

func main() {
	// Best effort: a missing .env is the normal case.
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	var err error
	switch ctx.Command() {
	case "build":
		err = runBuild()
	case "discover":
		err = runDiscover()
	case "serve":
		err = runServe()
	case "init", "init <dir>":
		err = runInit(CLI.Init.Dir, CLI.Init.Force)
	default:
		err = fmt.Errorf("unknown command: %s", ctx.Command())
	}
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// newProject loads the configuration and constructs the project.
func newProject(recorder metrics.Recorder) (*project.Project, *config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, nil, err
	}

	proj, err := project.New(cfg.Source, project.Options{
		OutputRoot: cfg.Output,
		Ignore:     cfg.Ignore,
		Attrs:      cfg.Attrs,
		Metrics:    recorder,
	})
	if err != nil {
		return nil, nil, err
	}
	return proj, cfg, nil
}

func runBuild() error {
	proj, cfg, err := newProject(nil)
	if err != nil {
		return err
	}
	defer proj.Close()

	ctx := context.Background()
	result, err := proj.Build(ctx)
	if err != nil {
		return err
	}

	if cfg.StateDB != "" {
		store, err := state.NewStore(cfg.StateDB)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		if err := store.RecordBuild(ctx, state.BuildRecord{
			BuildID:   result.BuildID,
			StartedAt: result.StartTime,
			Duration:  result.Duration,
			Artifacts: result.Artifacts,
			Failed:    result.Failed,
		}); err != nil {
			return err
		}
	}

	if CLI.Build.CheckLinks {
		issues, err := linkcheck.CheckDir(proj.OutputRoot())
		if err != nil {
			return err
		}
		for _, issue := range issues {
			slog.Warn("Broken link", "issue", issue.String())
		}
	}

	if proj.HasErrors() {
		return fmt.Errorf("build completed with %d failed artifacts", result.Failed)
	}
	return nil
}

func runDiscover() error {
	proj, _, err := newProject(nil)
	if err != nil {
		return err
	}
	defer proj.Close()

	if err := proj.Sync(context.Background()); err != nil {
		return err
	}
	for _, rel := range proj.EntryPaths() {
		marker := "-"
		if e := proj.Entry(rel); e != nil && e.Artifact() != nil {
			marker = e.Artifact().Rel()
		}
		fmt.Printf("%s\t%s\n", rel, marker)
	}
	return nil
}

func runServe() error {
	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	proj, cfg, err := newProject(recorder)
	if err != nil {
		return err
	}
	defer proj.Close()

	var store *state.Store
	if cfg.StateDB != "" {
		store, err = state.NewStore(cfg.StateDB)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}

	srv := server.New(proj, store, registry, cfg.Serve.SyncPeriod())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Rebuild(ctx); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	// Optional background freshness job on top of the per-request sync.
	if rebuildEvery := cfg.Serve.RebuildPeriod(); rebuildEvery > 0 {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("create scheduler: %w", err)
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(rebuildEvery),
			gocron.NewTask(func() {
				if err := srv.Rebuild(context.Background()); err != nil {
					slog.Warn("Scheduled rebuild failed", "error", err)
				}
			}),
			gocron.WithName("rebuild"),
		)
		if err != nil {
			return fmt.Errorf("schedule rebuild: %w", err)
		}
		scheduler.Start()
		defer func() { _ = scheduler.Shutdown() }()
	}

	addr := cfg.Serve.Addr
	if CLI.Serve.Addr != "" {
		addr = CLI.Serve.Addr
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Preview server listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func runInit(dir string, force bool) error {
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o750); err != nil {
		return fmt.Errorf("create source directory: %w", err)
	}

	files := map[string]string{
		"sitebuilder.yaml":                  initConfig,
		filepath.Join("src", "index.md"):    initIndex,
		filepath.Join("src", "layout.tmpl"): initLayout,
		filepath.Join("src", "_config.lua"): initScript,
	}
	for rel, content := range files {
		dest := filepath.Join(dir, rel)
		if !force {
			if _, err := os.Stat(dest); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", dest)
			}
		}
		if err := os.WriteFile(dest, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", dest, err)
		}
	}

	slog.Info("Site skeleton created", "dir", dir)
	return nil
}

const initConfig = `source: ./src
# output: ./public
ignore: []
attrs:
  assume_content_negotiation: true
  assume_directory_index: true
serve:
  addr: ":8080"
  sync_every: 1s
`

const initIndex = `# Welcome

This page renders to index.html. Edit it and reload.
`

const initLayout = `<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
{{.Content}}
</body>
</html>
`

const initScript = `-- Project extension script, re-run on every sync.
-- site.ignore("*.draft")
-- site.helper("shout", function(s) return string.upper(s) end)
-- site.set("assume_content_negotiation", true)
`
