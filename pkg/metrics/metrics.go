package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// RequestsTotal counts analyze requests by outcome (ok, bad_request,
	// method_not_allowed, misconfigured, provider_error, no_output, invalid_output).
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pestscan",
		Subsystem: "bridge",
		Name:      "requests_total",
		Help:      "Total number of analyze requests handled by the bridge, labeled by outcome.",
	}, []string{"outcome"})

	// ProviderDurationSeconds is the time spent in the single outbound provider call.
	ProviderDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pestscan",
		Subsystem: "bridge",
		Name:      "provider_duration_seconds",
		Help:      "Duration of the outbound provider call, labeled by provider and result.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"provider", "result"})

	// InFlight is the number of analyze requests currently waiting on a provider.
	InFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pestscan",
		Subsystem: "bridge",
		Name:      "in_flight",
		Help:      "Current number of analyze requests waiting on a provider.",
	})

	// ImageBytes is the size of accepted data URLs.
	ImageBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pestscan",
		Subsystem: "bridge",
		Name:      "image_data_url_bytes",
		Help:      "Length of accepted image data URLs in bytes.",
		Buckets:   prometheus.ExponentialBuckets(64*1024, 2, 8),
	})
)

// Register registers bridge metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			ProviderDurationSeconds,
			InFlight,
			ImageBytes,
		)
	})
}
