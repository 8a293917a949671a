package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyPath       = "path"
	KeyEntry      = "entry"
	KeyArtifact   = "artifact"
	KeyPattern    = "pattern"
	KeyHelper     = "helper"
	KeyAttr       = "attr"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Entry(rel string) slog.Attr       { return slog.String(KeyEntry, rel) }
func Artifact(rel string) slog.Attr    { return slog.String(KeyArtifact, rel) }
func Pattern(glob string) slog.Attr    { return slog.String(KeyPattern, glob) }
func Helper(name string) slog.Attr     { return slog.String(KeyHelper, name) }
func Attr(name string) slog.Attr       { return slog.String(KeyAttr, name) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
