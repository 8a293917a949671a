// Package server is the preview HTTP server: it serves the output root,
// keeping the project fresh with a throttled sync on each request.
//
// The project itself has no locking; this server is the serialization
// boundary required around all mutating project calls.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/project"
	"git.home.luguber.info/inful/sitebuilder/internal/state"
)

// Server serves built artifacts and owns the mutex serializing project
// mutations.
type Server struct {
	mu        sync.Mutex
	project   *project.Project
	store     *state.Store // optional build history
	syncEvery time.Duration
	registry  *prom.Registry // optional /metrics backing
}

// New creates a preview server. store and registry may be nil.
func New(p *project.Project, store *state.Store, registry *prom.Registry, syncEvery time.Duration) *Server {
	if syncEvery <= 0 {
		syncEvery = time.Second
	}
	return &Server{
		project:   p,
		store:     store,
		syncEvery: syncEvery,
		registry:  registry,
	}
}

// Handler returns the HTTP handler tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/status", s.handleStatus)
	if s.registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("/", s.handleSite)
	return mux
}

// Rebuild runs a full build under the server's mutex and records the
// outcome. Used by the background scheduler and by the first request
// after startup.
func (s *Server) Rebuild(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildLocked(ctx)
}

func (s *Server) buildLocked(ctx context.Context) error {
	result, err := s.project.Build(ctx)
	if err != nil {
		return err
	}
	if s.store != nil {
		rec := state.BuildRecord{
			BuildID:   result.BuildID,
			StartedAt: result.StartTime,
			Duration:  result.Duration,
			Artifacts: result.Artifacts,
			Failed:    result.Failed,
		}
		if err := s.store.RecordBuild(ctx, rec); err != nil {
			slog.Warn("Failed to record build", logfields.BuildID(result.BuildID), logfields.Error(err))
		}
	}
	return nil
}

// refresh runs the throttled sync and, when a sync actually ran,
// rebuilds so served files match the source tree.
func (s *Server) refresh(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	synced, err := s.project.SyncEvery(ctx, s.syncEvery)
	if err != nil {
		slog.Warn("Sync failed", logfields.Error(err))
		return
	}
	if !synced {
		return
	}
	if err := s.buildLocked(ctx); err != nil {
		slog.Warn("Rebuild failed", logfields.Error(err))
	}
}

func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.refresh(r.Context())

	abs, ok := s.resolve(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}

// resolve maps a request path to a file under the output root, applying
// the directory-index and content-negotiation attributes.
func (s *Server) resolve(urlPath string) (string, bool) {
	rel := strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+urlPath)), "/")
	root := s.project.OutputRoot()

	abs := filepath.Join(root, filepath.FromSlash(rel))
	if info, err := os.Stat(abs); err == nil {
		if !info.IsDir() {
			return abs, true
		}
		if s.project.AssumeDirectoryIndex() {
			index := filepath.Join(abs, "index.html")
			if fi, err := os.Stat(index); err == nil && !fi.IsDir() {
				return index, true
			}
		}
		return "", false
	}

	// Extensionless request: negotiate to the .html artifact.
	if s.project.AssumeContentNegotiation() && filepath.Ext(rel) == "" && rel != "" {
		negotiated := abs + ".html"
		if fi, err := os.Stat(negotiated); err == nil && !fi.IsDir() {
			return negotiated, true
		}
	}
	return "", false
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// statusResponse is the /api/status payload.
type statusResponse struct {
	LastBuiltAt time.Time          `json:"last_built_at"`
	HasErrors   bool               `json:"has_errors"`
	Entries     int                `json:"entries"`
	Artifacts   int                `json:"artifacts"`
	LastBuild   *state.BuildRecord `json:"last_build,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := statusResponse{
		LastBuiltAt: s.project.LastBuiltAt(),
		HasErrors:   s.project.HasErrors(),
		Entries:     len(s.project.EntryPaths()),
		Artifacts:   len(s.project.ArtifactPaths()),
	}
	s.mu.Unlock()

	if s.store != nil {
		if rec, err := s.store.LastBuild(r.Context()); err == nil {
			resp.LastBuild = rec
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Warn("Failed to encode status", logfields.Error(err))
	}
}
