// Package session tracks senders who are mid-registration. A session exists
// only between the registration keyword and the name-entry message.
package session

import (
	"context"
	"errors"
	"time"
)

// Stage enumerates the registration-in-progress sub-states. There is exactly
// one today: the bot is waiting for the sender to type their name.
type Stage string

const StageAwaitingName Stage = "awaiting_name"

// Session captures one sender's registration progress.
type Session struct {
	SenderID  string    `json:"sender_id"`
	Stage     Stage     `json:"stage"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrNotFound indicates that no session exists for the sender.
var ErrNotFound = errors.New("session not found")

// Store defines the persistence contract for registration sessions.
type Store interface {
	// Get returns the current session for the sender or ErrNotFound.
	Get(ctx context.Context, senderID string) (*Session, error)
	// Set saves the provided session for the sender.
	Set(ctx context.Context, senderID string, s *Session) error
	// Clear removes the session for the sender.
	Clear(ctx context.Context, senderID string) error
}

// Enumerable is implemented by stores that can list every live session.
// The cleaner uses it to expire abandoned registrations.
type Enumerable interface {
	All(ctx context.Context) ([]*Session, error)
}
