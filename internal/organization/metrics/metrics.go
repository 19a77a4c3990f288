package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the organization module.
type Metrics struct {
	ChallengesIssued prometheus.Counter
	KYCSubmissions   prometheus.Counter
	KYCDecisions     *prometheus.CounterVec
}

// New creates a new Metrics instance with all organization metrics registered.
func New() *Metrics {
	return &Metrics{
		ChallengesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docproof_org_challenges_issued_total",
			Help: "Total wallet challenges issued (including lazily created organizations)",
		}),

		KYCSubmissions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docproof_org_kyc_submissions_total",
			Help: "Total KYC profile submissions accepted",
		}),

		KYCDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "docproof_org_kyc_decisions_total",
			Help: "Total KYC approval decisions by outcome",
		}, []string{"decision"}),
	}
}
