package audit

import "time"

// Action classifies an audited operation.
type Action string

const (
	ActionAuthChallenge  Action = "auth_challenge"
	ActionAuthSuccess    Action = "auth_success"
	ActionAuthFailure    Action = "auth_failure"
	ActionKYCSubmitted   Action = "kyc_submitted"
	ActionKYCDecision    Action = "kyc_decision"
	ActionDocIssued      Action = "doc_issued"
	ActionVerifierSignup Action = "verifier_signup"
	ActionVerification   Action = "verification_recorded"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Wallet    string    `json:"wallet,omitempty"`
	Action    Action    `json:"action"`
	Outcome   string    `json:"outcome,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	Device    string    `json:"device,omitempty"`
}
