package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	LeadsCreated       prometheus.Counter
	QuotaRejections    prometheus.Counter
	ExpiredFilteredOut prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		LeadsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_leads_created_total",
			Help: "Total leads accepted and persisted",
		}),
		QuotaRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_lead_quota_rejections_total",
			Help: "Total lead creations rejected by the unverified-buyer quota",
		}),
		ExpiredFilteredOut: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_leads_expired_filtered_total",
			Help: "Total expired leads excluded from seller listings at read time",
		}),
	}
}

func (m *Metrics) IncrementLeadsCreated() {
	m.LeadsCreated.Inc()
}

func (m *Metrics) IncrementQuotaRejections() {
	m.QuotaRejections.Inc()
}

func (m *Metrics) AddExpiredFiltered(n int) {
	m.ExpiredFilteredOut.Add(float64(n))
}
