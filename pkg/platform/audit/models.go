package audit

import (
	"time"

	"meldingen/pkg/domain"
)

// Event is emitted from the melding service to capture lifecycle mutations.
// Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time        `json:"timestamp"`
	MeldingID domain.MeldingID `json:"melding_id"`
	Action    string           `json:"action"`
	FromState string           `json:"from_state,omitempty"`
	ToState   string           `json:"to_state,omitempty"`
	// Detail carries action specific context, e.g. the operator supplied
	// completion text or a detached asset id.
	Detail string `json:"detail,omitempty"`
}

type AuditEvent string

const (
	EventMeldingCreated    AuditEvent = "melding_created"
	EventMeldingUpdated    AuditEvent = "melding_updated"
	EventTransitionApplied AuditEvent = "transition_applied"
	EventTokenInvalidated  AuditEvent = "token_invalidated"
	EventAssetAdded        AuditEvent = "asset_added"
	EventAssetRemoved      AuditEvent = "asset_removed"
	EventMeldingDeleted    AuditEvent = "melding_deleted"
)
