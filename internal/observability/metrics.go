package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for decoding and fetching.
type Metrics struct {
	FilesDecoded    *prometheus.CounterVec   // labels: format={level2,level3,text}, outcome={success,error}
	MessagesDecoded *prometheus.CounterVec   // labels: format
	DecodeDuration  *prometheus.HistogramVec // labels: format

	// Object store metrics.
	BytesFetched    *prometheus.CounterVec   // labels: source={s3,gcs}
	FetchDuration   *prometheus.HistogramVec // labels: source
	ListingRequests *prometheus.CounterVec   // labels: source, outcome
}

func newMetrics(help bool) *Metrics {
	opts := func(name, text string) prometheus.CounterOpts {
		o := prometheus.CounterOpts{Namespace: "wxdata", Name: name}
		if help {
			o.Help = text
		}
		return o
	}
	hist := func(name, text string, buckets []float64) prometheus.HistogramOpts {
		o := prometheus.HistogramOpts{Namespace: "wxdata", Name: name, Buckets: buckets}
		if help {
			o.Help = text
		}
		return o
	}

	return &Metrics{
		FilesDecoded: prometheus.NewCounterVec(
			opts("files_decoded_total", "Files decoded by format and outcome."),
			[]string{"format", "outcome"}),
		MessagesDecoded: prometheus.NewCounterVec(
			opts("messages_decoded_total", "Top level messages decoded by format."),
			[]string{"format"}),
		DecodeDuration: prometheus.NewHistogramVec(
			hist("decode_duration_seconds", "Time spent decoding one file.",
				[]float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5}),
			[]string{"format"}),
		BytesFetched: prometheus.NewCounterVec(
			opts("bytes_fetched_total", "Bytes downloaded from object stores."),
			[]string{"source"}),
		FetchDuration: prometheus.NewHistogramVec(
			hist("fetch_duration_seconds", "Object download duration in seconds.",
				[]float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}),
			[]string{"source"}),
		ListingRequests: prometheus.NewCounterVec(
			opts("listing_requests_total", "Object store listing requests by source and outcome."),
			[]string{"source", "outcome"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(
		m.FilesDecoded,
		m.MessagesDecoded,
		m.DecodeDuration,
		m.BytesFetched,
		m.FetchDuration,
		m.ListingRequests,
	)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

// ObserveDecode records the outcome of decoding one file.
func (m *Metrics) ObserveDecode(format string, messages int, seconds float64, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.FilesDecoded.WithLabelValues(format, outcome).Inc()
	if err == nil {
		m.MessagesDecoded.WithLabelValues(format).Add(float64(messages))
		m.DecodeDuration.WithLabelValues(format).Observe(seconds)
	}
}
