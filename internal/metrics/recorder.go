package metrics

import "time"

// PhaseLabel enumerates sync phases for duration metrics.
type PhaseLabel string

const (
	PhaseConfig   PhaseLabel = "config"
	PhaseValidate PhaseLabel = "validate"
	PhaseDiscover PhaseLabel = "discover"
)

// Recorder defines observability hooks for sync and build metrics. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be safe for nil receivers
// when using the NoopRecorder (allowing optional injection).
type Recorder interface {
	ObserveSyncDuration(d time.Duration)
	ObservePhaseDuration(phase PhaseLabel, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncArtifactResult(success bool)
	IncSyncOutcome(outcome string) // outcome: success|config_error|scan_error
	SetEntryCount(n int)
	SetArtifactCount(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveSyncDuration(time.Duration)               {}
func (NoopRecorder) ObservePhaseDuration(PhaseLabel, time.Duration)  {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)              {}
func (NoopRecorder) IncArtifactResult(bool)                          {}
func (NoopRecorder) IncSyncOutcome(string)                           {}
func (NoopRecorder) SetEntryCount(int)                               {}
func (NoopRecorder) SetArtifactCount(int)                            {}
