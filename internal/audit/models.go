package audit

import "time"

// Actions emitted by the entitlement engine. Keep the list here so consumers
// have one place to discover what can appear on the topic.
const (
	ActionLeadCreated        = "lead_created"
	ActionLeadQuotaExceeded  = "lead_quota_exceeded"
	ActionBuyerVerified      = "buyer_verified"
	ActionVerificationDenied = "verification_denied"
	ActionRequirementFanout  = "requirement_fanout"
	ActionQuoteSubmitted     = "quote_submitted"
	ActionContactRedacted    = "contact_redacted"
)

// Event is emitted from domain logic to capture key decisions. Keep it
// transport-agnostic so sinks (Kafka, log, memory) can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
	Actor     string    `json:"actor,omitempty"`   // buyer or seller account ID
	Action    string    `json:"action"`            // one of the Action* constants
	Subject   string    `json:"subject,omitempty"` // lead/RFQ/buyer the action concerns
	Outcome   string    `json:"outcome,omitempty"` // success or a denial reason
	ClientIP  string    `json:"client_ip,omitempty"`
	Device    string    `json:"device,omitempty"`
}
