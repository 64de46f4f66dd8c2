package workflow

import "errors"

// Action names one of the three outbound calls.
type Action string

const (
	ActionCreateSchema      Action = "create_schema"
	ActionFetchSchema       Action = "fetch_schema"
	ActionCreateAttestation Action = "create_attestation"
)

// Actions lists every action in display order.
func Actions() []Action {
	return []Action{ActionCreateSchema, ActionFetchSchema, ActionCreateAttestation}
}

// Static user-facing failure messages.
const (
	MessageCreateSchemaFailed      = "Failed to create schema. Please try again."
	MessageFetchSchemaFailed       = "Failed to fetch schema. Please try again."
	MessageCreateAttestationFailed = "Failed to create attestation. Please try again."
)

// FailureMessage returns the static message shown when action fails.
func FailureMessage(action Action) string {
	switch action {
	case ActionCreateSchema:
		return MessageCreateSchemaFailed
	case ActionFetchSchema:
		return MessageFetchSchemaFailed
	case ActionCreateAttestation:
		return MessageCreateAttestationFailed
	default:
		return ""
	}
}

var (
	// ErrBusy is returned when the double-submit guard refuses a call.
	ErrBusy = errors.New("workflow: action already in flight")
	// ErrSuperseded is returned to the caller of a call whose response was
	// discarded because a newer call of the same action was issued.
	ErrSuperseded = errors.New("workflow: superseded by a newer call")
)
