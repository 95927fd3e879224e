package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once

	// Analysis metrics
	ItemsAnalyzed prometheus.Counter

	// Scoring metrics
	ThreatsScored prometheus.Counter
	ThreatScores  prometheus.Histogram

	// Report metrics
	ReportsGenerated prometheus.Counter
	ReportCacheHits  prometheus.Counter
	ReportCacheMiss  prometheus.Counter
	ReportCacheSize  prometheus.Gauge

	// Collection metrics
	SourceItems  *prometheus.CounterVec
	SourceErrors *prometheus.CounterVec
)

// Init initializes all metrics and registers them with Prometheus
func Init(logger *logrus.Logger) {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()

		ItemsAnalyzed = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "leakwatch_items_analyzed_total",
				Help: "Total number of content items analyzed",
			},
		)

		ThreatsScored = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "leakwatch_threats_scored_total",
				Help: "Total number of threats scored",
			},
		)

		ThreatScores = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "leakwatch_threat_score",
				Help:    "Distribution of computed threat scores",
				Buckets: prometheus.LinearBuckets(0, 10, 11), // 0 to 100 in steps of 10
			},
		)

		ReportsGenerated = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "leakwatch_reports_generated_total",
				Help: "Total number of reports generated",
			},
		)

		ReportCacheHits = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "leakwatch_report_cache_hits_total",
				Help: "Total number of report cache hits",
			},
		)

		ReportCacheMiss = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "leakwatch_report_cache_misses_total",
				Help: "Total number of report cache misses",
			},
		)

		ReportCacheSize = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "leakwatch_report_cache_size",
				Help: "Current number of cached reports",
			},
		)

		SourceItems = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leakwatch_source_items_total",
				Help: "Total number of content items retrieved per source",
			},
			[]string{"source"},
		)

		SourceErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leakwatch_source_errors_total",
				Help: "Total number of source fetch failures",
			},
			[]string{"source"},
		)

		registry.MustRegister(
			ItemsAnalyzed,
			ThreatsScored,
			ThreatScores,
			ReportsGenerated,
			ReportCacheHits,
			ReportCacheMiss,
			ReportCacheSize,
			SourceItems,
			SourceErrors,
		)

		logger.Info("Prometheus metrics initialized")
	})
}

// Handler returns the HTTP handler serving the metrics registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
