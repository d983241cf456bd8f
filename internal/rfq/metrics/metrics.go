package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RFQsCreated       prometheus.Counter
	CategoriesSkipped *prometheus.CounterVec
	EmptyFanouts      prometheus.Counter
	QuotesSubmitted   prometheus.Counter
	FanoutDuration    prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		RFQsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_rfqs_created_total",
			Help: "Total RFQs created by requirement fanout",
		}),
		CategoriesSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tradegate_rfq_categories_skipped_total",
			Help: "Total categories skipped during fanout, by reason",
		}, []string{"reason"}),
		EmptyFanouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_rfq_empty_fanouts_total",
			Help: "Total requirement submissions that produced zero RFQs",
		}),
		QuotesSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_rfq_quotes_submitted_total",
			Help: "Total quotes submitted by sellers",
		}),
		FanoutDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradegate_rfq_fanout_duration_seconds",
			Help:    "Duration of requirement fanout",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) ObserveFanout(created int, seconds float64) {
	m.RFQsCreated.Add(float64(created))
	if created == 0 {
		m.EmptyFanouts.Inc()
	}
	m.FanoutDuration.Observe(seconds)
}

func (m *Metrics) IncrementSkipped(reason string) {
	m.CategoriesSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementQuotesSubmitted() {
	m.QuotesSubmitted.Inc()
}
