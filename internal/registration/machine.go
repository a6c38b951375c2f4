package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/grafamedia/keuangan-bot/internal/domain"
	"github.com/grafamedia/keuangan-bot/internal/ledger"
	"github.com/grafamedia/keuangan-bot/internal/session"
)

var (
	// ErrInvalidTransition indicates a requested transition is not allowed.
	ErrInvalidTransition = errors.New("invalid registration transition")
	// ErrEmptyName indicates a name-entry message with no content.
	ErrEmptyName = errors.New("display name is empty")
)

// UserStore is the slice of the ledger the machine needs.
type UserStore interface {
	FindUser(ctx context.Context, senderID string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
}

// Resolution is the answer to "who is this sender right now".
type Resolution struct {
	State State
	User  *domain.User
}

// Machine implements the registration flow. Whether a sender is registered
// is re-derived from the user store on every message, so the machine
// survives restarts for already-registered users; the session store only
// disambiguates the registration-in-progress sub-state.
type Machine struct {
	users    UserStore
	sessions session.Store
	log      *slog.Logger
}

// NewMachine creates a registration machine over the given stores.
func NewMachine(users UserStore, sessions session.Store, log *slog.Logger) *Machine {
	if log == nil {
		log = slog.Default()
	}

	return &Machine{
		users:    users,
		sessions: sessions,
		log:      log,
	}
}

// Resolve determines the sender's current state, loading the user record
// when they are registered.
func (m *Machine) Resolve(ctx context.Context, senderID string) (Resolution, error) {
	user, err := m.users.FindUser(ctx, senderID)
	if err == nil {
		return Resolution{State: StateRegistered, User: user}, nil
	}
	if !errors.Is(err, ledger.ErrUserNotFound) {
		return Resolution{}, fmt.Errorf("resolve sender %s: %w", senderID, err)
	}

	_, err = m.sessions.Get(ctx, senderID)
	if err == nil {
		return Resolution{State: StateAwaitingName}, nil
	}
	if !errors.Is(err, session.ErrNotFound) {
		return Resolution{}, fmt.Errorf("resolve sender session %s: %w", senderID, err)
	}

	return Resolution{State: StateUnregistered}, nil
}

// Begin moves an unregistered sender into AwaitingName by creating their
// session entry.
func (m *Machine) Begin(ctx context.Context, senderID string) error {
	if !IsTransitionAllowed(StateUnregistered, StateAwaitingName) {
		return ErrInvalidTransition
	}

	if err := m.sessions.Set(ctx, senderID, &session.Session{Stage: session.StageAwaitingName}); err != nil {
		return fmt.Errorf("begin registration for %s: %w", senderID, err)
	}

	transitionRecorder(string(StateUnregistered), string(StateAwaitingName))

	return nil
}

// Complete finishes the flow: the message body becomes the display name
// verbatim, a User record is created, and the session entry is deleted.
func (m *Machine) Complete(ctx context.Context, senderID, name string, now time.Time) (*domain.User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	if !IsTransitionAllowed(StateAwaitingName, StateRegistered) {
		return nil, ErrInvalidTransition
	}

	user := &domain.User{
		SenderID:       senderID,
		Name:           name,
		RegisteredDate: domain.DateOf(now),
		RegisteredTime: domain.ClockOf(now),
	}

	if err := m.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if err := m.sessions.Clear(ctx, senderID); err != nil {
		// the user exists; a stale session only costs one extra lookup
		m.log.Warn("failed to clear registration session", slog.String("sender_id", senderID), slog.Any("error", err))
	}

	transitionRecorder(string(StateAwaitingName), string(StateRegistered))

	return user, nil
}
