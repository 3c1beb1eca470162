package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus instruments.
type Metrics struct {
	ClaimAttempts   *prometheus.CounterVec
	ListingsCreated prometheus.Counter
	ListingsSwept   prometheus.Counter
}

// New registers and returns the service metrics.
func New() *Metrics {
	return &Metrics{
		ClaimAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sharebite_claim_attempts_total",
			Help: "Total number of claim attempts by outcome",
		}, []string{"result"}),
		ListingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sharebite_listings_created_total",
			Help: "Total number of food listings created",
		}),
		ListingsSwept: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sharebite_listings_swept_total",
			Help: "Total number of expired listings removed by the sweeper",
		}),
	}
}

// ObserveClaim records a claim attempt outcome.
func (m *Metrics) ObserveClaim(result string) {
	if m == nil {
		return
	}
	m.ClaimAttempts.WithLabelValues(result).Inc()
}

// ObserveListingCreated records a listing creation.
func (m *Metrics) ObserveListingCreated() {
	if m == nil {
		return
	}
	m.ListingsCreated.Inc()
}

// ObserveSwept records expired listings removed by the sweeper.
func (m *Metrics) ObserveSwept(count int64) {
	if m == nil || count <= 0 {
		return
	}
	m.ListingsSwept.Add(float64(count))
}
