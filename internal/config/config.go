// Package config loads the sitebuilder.yaml project file. Decoding is
// strict: unknown keys fail loading rather than being silently ignored.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config filename looked up when none is given.
const DefaultFile = "sitebuilder.yaml"

// defaultSyncPeriod throttles the preview server's per-request sync.
const defaultSyncPeriod = time.Second

// Config is the on-disk project configuration.
type Config struct {
	// Source is the source root directory.
	Source string `yaml:"source"`
	// Output overrides the default output root (source + "_site").
	Output string `yaml:"output,omitempty"`
	// Ignore lists extra ignore globs appended to the defaults.
	Ignore []string `yaml:"ignore,omitempty"`
	// Attrs is applied as attribute mutations at construction; unknown
	// names are rejected by the project, not here.
	Attrs map[string]any `yaml:"attrs,omitempty"`
	// StateDB is the build history database path; empty disables it.
	StateDB string `yaml:"state_db,omitempty"`

	Serve ServeConfig `yaml:"serve,omitempty"`
}

// ServeConfig tunes the preview server. Durations are strings in Go
// duration syntax ("2s", "1m30s").
type ServeConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `yaml:"addr,omitempty"`
	// SyncEvery throttles the per-request sync (default 1s).
	SyncEvery string `yaml:"sync_every,omitempty"`
	// RebuildEvery schedules background full rebuilds; empty disables them.
	RebuildEvery string `yaml:"rebuild_every,omitempty"`
}

// SyncPeriod returns the parsed per-request sync throttle.
func (s ServeConfig) SyncPeriod() time.Duration {
	d, err := time.ParseDuration(s.SyncEvery)
	if err != nil || d <= 0 {
		return defaultSyncPeriod
	}
	return d
}

// RebuildPeriod returns the parsed background rebuild interval, or 0
// when disabled.
func (s ServeConfig) RebuildPeriod() time.Duration {
	d, err := time.ParseDuration(s.RebuildEvery)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer func() {
		_ = file.Close() // read-only
	}()

	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = ":8080"
	}

	if cfg.Source == "" {
		return nil, fmt.Errorf("config %s: source is required", path)
	}
	for _, field := range []struct{ name, value string }{
		{"serve.sync_every", cfg.Serve.SyncEvery},
		{"serve.rebuild_every", cfg.Serve.RebuildEvery},
	} {
		if field.value == "" {
			continue
		}
		if _, err := time.ParseDuration(field.value); err != nil {
			return nil, fmt.Errorf("config %s: %s: %w", path, field.name, err)
		}
	}
	return &cfg, nil
}
