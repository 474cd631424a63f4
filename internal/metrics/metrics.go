// Package metrics exposes the pipeline's Prometheus instrumentation: layout queue depth,
// per-page parse duration, and how often pages fall back to OCR. All metrics are
// registered against the registry passed to New (New does not accept nil), so tests and
// library embedders never pay for a global singleton they don't want.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the pipeline's gauges/histograms/counters. docparse.Parser holds one,
// but neither the Parser nor the layout queue updates any of its fields.
type Metrics struct {
	LayoutQueueDepth   prometheus.Gauge
	PageParseDuration  prometheus.Histogram
	OCRFallbackTotal   prometheus.Counter
	PagesProcessedTotal prometheus.Counter
}

// New registers a fresh set of metrics against reg and returns them. Pass
// prometheus.NewRegistry() for an isolated test registry, or
// prometheus.DefaultRegisterer wrapped in a *prometheus.Registry for process-wide metrics.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LayoutQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "docparse",
			Subsystem: "layout_queue",
			Name:      "depth",
			Help:      "Number of layout inference requests currently queued or in flight.",
		}),
		PageParseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docparse",
			Subsystem: "page",
			Name:      "parse_duration_seconds",
			Help:      "Time to fully parse and assemble one page.",
			Buckets:   prometheus.DefBuckets,
		}),
		OCRFallbackTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docparse",
			Subsystem: "page",
			Name:      "ocr_fallback_total",
			Help:      "Number of pages whose native text coverage fell below the OCR threshold.",
		}),
		PagesProcessedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docparse",
			Subsystem: "page",
			Name:      "processed_total",
			Help:      "Total number of pages processed, successful or not.",
		}),
	}
	reg.MustRegister(m.LayoutQueueDepth, m.PageParseDuration, m.OCRFallbackTotal, m.PagesProcessedTotal)
	return m
}

// Noop returns a Metrics backed by a private, unreferenced registry: every update lands
// somewhere and costs the same as the real thing, but nothing is ever scraped from it. Used
// by callers that don't want to wire a registry through just to satisfy the interface.
func Noop() *Metrics {
	return New(prometheus.NewRegistry())
}
