package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for document issuance.
type Metrics struct {
	// Issuance attempts by outcome: issued, duplicate, rejected.
	Issuances *prometheus.CounterVec
}

// New creates a new Metrics instance with all document metrics registered.
func New() *Metrics {
	return &Metrics{
		Issuances: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "docproof_documents_issuances_total",
			Help: "Total document issuance attempts by outcome",
		}, []string{"outcome"}),
	}
}

// Observe records one issuance outcome.
func (m *Metrics) Observe(outcome string) {
	m.Issuances.WithLabelValues(outcome).Inc()
}
