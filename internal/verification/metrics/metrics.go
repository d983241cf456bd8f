package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Evaluations    *prometheus.CounterVec
	RegistryErrors prometheus.Counter
	LookupDuration prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Evaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tradegate_verification_evaluations_total",
			Help: "Total verification evaluations by outcome reason",
		}, []string{"reason"}),
		RegistryErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_verification_registry_errors_total",
			Help: "Total RDAP lookups that failed outright",
		}),
		LookupDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradegate_verification_rdap_duration_seconds",
			Help:    "Latency of RDAP domain age lookups",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

func (m *Metrics) ObserveEvaluation(reason string) {
	m.Evaluations.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveLookup(d time.Duration, failed bool) {
	m.LookupDuration.Observe(d.Seconds())
	if failed {
		m.RegistryErrors.Inc()
	}
}
