package sentinel

import "errors"

// Sentinel errors for domain facts. Stores, guards, and the state machine
// return these (optionally wrapped) so orchestrating actions and the transport
// layer above them can translate each failure into its own remediation.
//
// These represent factual states about a melding and its collaborators:
// - ErrNotFound: melding, asset, attachment, or classification does not exist
// - ErrInvalidToken: supplied possession token does not match the stored one
// - ErrTokenExpired: token matches but its expiry moment has passed
// - ErrInvalidState: operation attempted from a lifecycle state that forbids it
// - ErrInvalidTransition: state machine rejects the (state, transition) pair
// - ErrClassificationNotFound: classifier produced a name no category matches;
//   recoverable, actions log it and continue without a category
// - ErrRelationshipExists: association between two entities already present
// - ErrConflict: concurrent save lost against a newer version
var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidToken           = errors.New("invalid token")
	ErrTokenExpired           = errors.New("token expired")
	ErrInvalidState           = errors.New("invalid state")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrClassificationNotFound = errors.New("classification not found")
	ErrRelationshipExists     = errors.New("relationship exists")
	ErrConflict               = errors.New("conflict")
)
