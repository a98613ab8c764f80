package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imageapi_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imageapi_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Account Metrics
	RegistrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "imageapi_registrations_total",
			Help: "Total number of registered accounts",
		},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imageapi_logins_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// Generation Metrics
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imageapi_generations_total",
			Help: "Total number of image generations by serving mode",
		},
		[]string{"mode"}, // provider, fallback
	)

	GenerationRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imageapi_generation_rejections_total",
			Help: "Generation requests rejected before an image was served",
		},
		[]string{"reason"}, // no_credits, too_large
	)

	CreditsSpentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "imageapi_credits_spent_total",
			Help: "Total credits deducted across all users",
		},
	)

	// Provider Metrics
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imageapi_provider_calls_total",
			Help: "Outbound text-to-image provider calls by outcome",
		},
		[]string{"outcome"}, // ok, error, skipped
	)

	ProviderCallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "imageapi_provider_call_duration_seconds",
			Help:    "Provider call latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		},
	)

	ProviderImageSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "imageapi_provider_image_size_bytes",
			Help:    "Size of images returned by the provider in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KB to ~256MB
		},
	)
)

// RecordHTTPRequest records an HTTP request with its duration
func RecordHTTPRequest(method, endpoint, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordGeneration records a served generation and the credit it consumed
func RecordGeneration(mode string) {
	GenerationsTotal.WithLabelValues(mode).Inc()
	CreditsSpentTotal.Inc()
}

// RecordRejection records a generation request that was rejected
func RecordRejection(reason string) {
	GenerationRejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordProviderCall records an outbound provider call outcome
func RecordProviderCall(outcome string, duration float64, sizeBytes int) {
	ProviderCallsTotal.WithLabelValues(outcome).Inc()
	if duration > 0 {
		ProviderCallDuration.Observe(duration)
	}
	if sizeBytes > 0 {
		ProviderImageSizeBytes.Observe(float64(sizeBytes))
	}
}
