package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for wallet authentication.
type Metrics struct {
	// Authentication attempts by outcome: success, bad_signature,
	// unknown_wallet, stale_nonce, locked_out.
	AuthAttempts *prometheus.CounterVec
}

// New creates a new Metrics instance with all auth metrics registered.
func New() *Metrics {
	return &Metrics{
		AuthAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "docproof_auth_attempts_total",
			Help: "Total wallet authentication attempts by outcome",
		}, []string{"outcome"}),
	}
}

// Observe records one attempt outcome.
func (m *Metrics) Observe(outcome string) {
	m.AuthAttempts.WithLabelValues(outcome).Inc()
}
