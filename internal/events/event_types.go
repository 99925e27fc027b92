package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIdentitySignedUp  EventType = "identity_signed_up"
	EventIdentitySignedIn  EventType = "identity_signed_in"
	EventSessionRefreshed  EventType = "session_refreshed"
	EventIdentitySignedOut EventType = "identity_signed_out"
	EventOTPRequested      EventType = "otp_requested"
	EventMemberCreated     EventType = "member_created"
	EventMemberDeleted     EventType = "member_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	IdentityID string      `json:"identity_id"`
	ActorID    string      `json:"actor_id,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, identityID, actorID string, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		IdentityID: identityID,
		ActorID:    actorID,
		Timestamp:  time.Now().UTC(),
		Payload:    payload,
	}
}

// SignedInPayload payload.
type SignedInPayload struct {
	Method string `json:"method"`
}

// MemberDeletedPayload payload.
type MemberDeletedPayload struct {
	DeletedTeams  int `json:"deleted_teams"`
	DeletedLists  int `json:"deleted_lists"`
	UnlinkedTeams int `json:"unlinked_teams"`
	UnlinkedLists int `json:"unlinked_lists"`
}

// MemberCreatedPayload payload.
type MemberCreatedPayload struct {
	TeamID     string `json:"team_id"`
	MemberRole string `json:"member_role"`
}
