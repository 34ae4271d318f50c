package types

import "time"

// User event types.
const (
	UserCreated = "user.created"
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"
)

// UserEvent is published after a user change has been committed.
type UserEvent struct {
	// ID uniquely identifies the event.
	ID string `json:"id"`

	// Type is one of UserCreated, UserUpdated or UserDeleted.
	Type string `json:"type"`

	// User is the record after the change, or its last state for deletions.
	User User `json:"user"`

	OccurredAt time.Time `json:"occurred_at"`
}
