package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// detection service.
type Metrics struct {
	UploadsReceived    prometheus.Counter
	DetectorErrors     prometheus.Counter
	DetectionsPositive *prometheus.CounterVec // labels: risk_level
	DetectionsNegative prometheus.Counter
	PipelineDuration   prometheus.Histogram

	// Weather provider metrics.
	WeatherRequests   *prometheus.CounterVec // labels: outcome={success,error}
	WeatherFallbacks  prometheus.Counter
	WeatherCacheHits  *prometheus.CounterVec // labels: result={hit,miss}
	WeatherAPIEnabled prometheus.Gauge

	// Notification fan-out metrics.
	Notifications *prometheus.CounterVec // labels: status={DELIVERED,FAILED}

	// Alert stream metrics.
	AlertsPublished prometheus.Counter
	AlertErrors     prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UploadsReceived,
		m.DetectorErrors,
		m.DetectionsPositive,
		m.DetectionsNegative,
		m.PipelineDuration,
		m.WeatherRequests,
		m.WeatherFallbacks,
		m.WeatherCacheHits,
		m.WeatherAPIEnabled,
		m.Notifications,
		m.AlertsPublished,
		m.AlertErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UploadsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "firepredict",
			Name:      "uploads_received_total",
			Help:      "Total image uploads accepted for processing.",
		}),
		DetectorErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "firepredict",
			Name:      "detector_errors_total",
			Help:      "Total failures calling the fire detection service.",
		}),
		DetectionsPositive: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firepredict",
			Name:      "detections_positive_total",
			Help:      "Positive fire detections by derived risk level.",
		}, []string{"risk_level"}),
		DetectionsNegative: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "firepredict",
			Name:      "detections_negative_total",
			Help:      "Uploads where no fire was detected.",
		}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "firepredict",
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of a complete detect-classify-predict-notify cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firepredict",
			Name:      "weather_requests_total",
			Help:      "Weather provider requests by outcome.",
		}, []string{"outcome"}),
		WeatherFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "firepredict",
			Name:      "weather_fallbacks_total",
			Help:      "Times a synthetic reading was substituted for provider data.",
		}),
		WeatherCacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firepredict",
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		WeatherAPIEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "firepredict",
			Name:      "weather_api_enabled",
			Help:      "1 when the OpenWeatherMap provider is enabled, 0 otherwise.",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firepredict",
			Name:      "notifications_total",
			Help:      "Agency notification attempts by final status.",
		}, []string{"status"}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "firepredict",
			Name:      "alerts_published_total",
			Help:      "Detections published to the Kafka alert stream.",
		}),
		AlertErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "firepredict",
			Name:      "alert_errors_total",
			Help:      "Failures publishing to the Kafka alert stream.",
		}),
	}
}
