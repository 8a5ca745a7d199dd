// Package metrics holds the engine's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jobtier-engine/internal/domain"
)

const Namespace = "jobtier"

type Metrics struct {
	Registry *prometheus.Registry

	FetchTotal    *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	FetchedJobs   *prometheus.CounterVec

	RunsTotal        *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	LastRunJobs      prometheus.Gauge
	LastRunErrors    prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
	RunInProgress    prometheus.Gauge
}

// New registers every collector on a fresh registry, plus the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	m := &Metrics{Registry: reg}
	m.FetchTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "adapter",
		Name:      "fetch_total",
		Help:      "Adapter calls by platform and outcome (ok, error, note).",
	}, []string{"platform", "outcome"})

	m.FetchDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "adapter",
		Name:      "fetch_duration_seconds",
		Help:      "Adapter call latency.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"platform"})

	m.FetchedJobs = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "adapter",
		Name:      "jobs_total",
		Help:      "Postings returned by adapters before filtering.",
	}, []string{"platform"})

	m.RunsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "scrape",
		Name:      "runs_total",
		Help:      "Scrape runs by status.",
	}, []string{"status"})

	m.RunDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "scrape",
		Name:      "run_duration_seconds",
		Help:      "Wall time of a full scrape run.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	m.LastRunJobs = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "scrape",
		Name:      "last_run_jobs",
		Help:      "Jobs persisted by the last run.",
	})

	m.LastRunErrors = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "scrape",
		Name:      "last_run_errors",
		Help:      "Employer errors in the last run.",
	})

	m.LastRunTimestamp = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "scrape",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished.",
	})

	m.RunInProgress = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "scrape",
		Name:      "run_in_progress",
		Help:      "1 while a scrape run is executing.",
	})
	return m
}

func (m *Metrics) ObserveFetch(p domain.Platform, outcome string, took time.Duration, jobs int) {
	m.FetchTotal.WithLabelValues(string(p), outcome).Inc()
	m.FetchDuration.WithLabelValues(string(p)).Observe(took.Seconds())
	if jobs > 0 {
		m.FetchedJobs.WithLabelValues(string(p)).Add(float64(jobs))
	}
}

func (m *Metrics) RunStarted() { m.RunInProgress.Set(1) }

// RunFinished records a run. status is "ok" or "error".
func (m *Metrics) RunFinished(status string, took time.Duration, persisted, errors int, at time.Time) {
	m.RunInProgress.Set(0)
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(took.Seconds())
	m.LastRunJobs.Set(float64(persisted))
	m.LastRunErrors.Set(float64(errors))
	m.LastRunTimestamp.Set(float64(at.Unix()))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
