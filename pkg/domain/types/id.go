package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// UserID is the opaque identity of a messaging platform user (Messenger PSID)
type UserID string

// Validate checks if the user ID is usable as a store key
func (id UserID) Validate() error {
	if id == "" {
		return goerr.New("user ID is required")
	}
	return nil
}

// String returns the string representation of the user ID
func (id UserID) String() string {
	return string(id)
}

// ReminderID is a UUID-based identifier for Reminder
type ReminderID string

// NewReminderID generates a new UUID v4 ReminderID
func NewReminderID() ReminderID {
	return ReminderID(uuid.New().String())
}

// String returns the string representation of the reminder ID
func (id ReminderID) String() string {
	return string(id)
}

// SessionID is a UUID-based identifier for Session. It doubles as the
// correlation token handed to the NLU collaborator so that multi-turn
// context survives across messages.
type SessionID string

// NewSessionID generates a new UUID v4 SessionID
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

// String returns the string representation of the session ID
func (id SessionID) String() string {
	return string(id)
}
