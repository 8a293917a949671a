package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	syncDuration    prom.Histogram
	phaseDuration   *prom.HistogramVec
	buildDuration   prom.Histogram
	artifactResults *prom.CounterVec
	syncOutcome     *prom.CounterVec
	entryCount      prom.Gauge
	artifactCount   prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.syncDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitebuilder",
			Name:      "sync_duration_seconds",
			Help:      "Total duration of a sync cycle",
			Buckets:   prom.DefBuckets,
		})
		pr.phaseDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitebuilder",
			Name:      "sync_phase_duration_seconds",
			Help:      "Duration of individual sync phases",
			Buckets:   prom.DefBuckets,
		}, []string{"phase"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitebuilder",
			Name:      "build_duration_seconds",
			Help:      "Total build duration including the leading sync",
			Buckets:   prom.DefBuckets,
		})
		pr.artifactResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "artifact_results_total",
			Help:      "Artifact build results by success/failure",
		}, []string{"result"})
		pr.syncOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "sync_outcomes_total",
			Help:      "Sync outcomes by final status",
		}, []string{"outcome"})
		pr.entryCount = prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitebuilder",
			Name:      "entries",
			Help:      "Number of tracked source entries after the last sync",
		})
		pr.artifactCount = prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitebuilder",
			Name:      "artifacts",
			Help:      "Number of tracked artifacts after the last sync",
		})
		reg.MustRegister(pr.syncDuration, pr.phaseDuration, pr.buildDuration,
			pr.artifactResults, pr.syncOutcome, pr.entryCount, pr.artifactCount)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveSyncDuration(d time.Duration) {
	if p == nil || p.syncDuration == nil {
		return
	}
	p.syncDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObservePhaseDuration(phase PhaseLabel, d time.Duration) {
	if p == nil || p.phaseDuration == nil {
		return
	}
	p.phaseDuration.WithLabelValues(string(phase)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncArtifactResult(success bool) {
	if p == nil || p.artifactResults == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.artifactResults.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) IncSyncOutcome(outcome string) {
	if p == nil || p.syncOutcome == nil {
		return
	}
	p.syncOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetEntryCount(n int) {
	if p == nil || p.entryCount == nil {
		return
	}
	p.entryCount.Set(float64(n))
}

func (p *PrometheusRecorder) SetArtifactCount(n int) {
	if p == nil || p.artifactCount == nil {
		return
	}
	p.artifactCount.Set(float64(n))
}
