// Package metrics exposes archive and search counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "archy"

type Metrics struct {
	registry *prometheus.Registry

	archiveRuns     *prometheus.CounterVec
	archiveMessages prometheus.Counter
	archiveFiles    *prometheus.CounterVec
	archiveDuration prometheus.Histogram
	searchQueries   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		archiveRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_runs_total",
			Help:      "Archive runs by outcome.",
		}, []string{"outcome"}),
		archiveMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_messages_total",
			Help:      "Messages handed to the archive pipeline.",
		}),
		archiveFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_files_total",
			Help:      "Attachments processed by result.",
		}, []string{"result"}),
		archiveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "archive_duration_seconds",
			Help:      "Wall time of archive runs.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		searchQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_queries_total",
			Help:      "Ticket searches by the source that answered them.",
		}, []string{"source"}),
	}

	m.registry.MustRegister(
		m.archiveRuns,
		m.archiveMessages,
		m.archiveFiles,
		m.archiveDuration,
		m.searchQueries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveArchive(outcome string, duration time.Duration, messages int) {
	m.archiveRuns.WithLabelValues(outcome).Inc()
	m.archiveDuration.Observe(duration.Seconds())
	if messages > 0 {
		m.archiveMessages.Add(float64(messages))
	}
}

func (m *Metrics) IncFiles(result string) {
	m.archiveFiles.WithLabelValues(result).Inc()
}

func (m *Metrics) IncSearch(source string) {
	m.searchQueries.WithLabelValues(source).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
