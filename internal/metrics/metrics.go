// Package metrics exposes Prometheus collectors for the import pipeline.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	importTotal    *prometheus.CounterVec
	importDuration *prometheus.HistogramVec
	importedTotal  *prometheus.CounterVec
	lastSuccess    prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		importTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cybershield",
			Name:      "import_runs_total",
			Help:      "Total number of workbook imports by trigger and result.",
		}, []string{"trigger", "result"}),
		importDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cybershield",
			Name:      "import_duration_seconds",
			Help:      "Duration of workbook imports.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"result"}),
		importedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cybershield",
			Name:      "imported_records_total",
			Help:      "Records touched by successful imports, by kind.",
		}, []string{"kind"}),
		lastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "cybershield",
			Name:      "import_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful import.",
		}),
	}
}

var defaultMetrics = sync.OnceValue(func() *Metrics {
	return New(prometheus.DefaultRegisterer)
})

// Default returns the collectors registered on the global registry.
func Default() *Metrics {
	return defaultMetrics()
}

// ObserveImport records one finished run. counts is only added when err is nil.
func (m *Metrics) ObserveImport(trigger string, took time.Duration, counts map[string]int, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.importTotal.WithLabelValues(trigger, result).Inc()
	m.importDuration.WithLabelValues(result).Observe(took.Seconds())
	if err != nil {
		return
	}
	for kind, n := range counts {
		m.importedTotal.WithLabelValues(kind).Add(float64(n))
	}
	m.lastSuccess.SetToCurrentTime()
}

// Handler serves the given gatherer in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
