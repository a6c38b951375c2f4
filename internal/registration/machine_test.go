package registration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafamedia/keuangan-bot/internal/ledger"
	"github.com/grafamedia/keuangan-bot/internal/session"
)

func newTestMachine() (*Machine, ledger.Store, session.Store) {
	store := ledger.NewMemory()
	sessions := session.NewMemoryStore()
	return NewMachine(store, sessions, nil), store, sessions
}

func TestMachine_ResolveUnseenSender(t *testing.T) {
	machine, _, _ := newTestMachine()

	res, err := machine.Resolve(context.Background(), "628")
	require.NoError(t, err)
	assert.Equal(t, StateUnregistered, res.State)
	assert.Nil(t, res.User)
}

func TestMachine_FullFlow(t *testing.T) {
	machine, _, sessions := newTestMachine()
	ctx := context.Background()
	now := time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)

	require.NoError(t, machine.Begin(ctx, "628"))

	res, err := machine.Resolve(ctx, "628")
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingName, res.State)

	user, err := machine.Complete(ctx, "628", "Budi Santoso", now)
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", user.Name)
	assert.Equal(t, "2025-03-15", string(user.RegisteredDate))
	assert.Equal(t, "14:30:00", string(user.RegisteredTime))

	// session is gone, sender resolves as registered from the user store
	_, err = sessions.Get(ctx, "628")
	assert.ErrorIs(t, err, session.ErrNotFound)

	res, err = machine.Resolve(ctx, "628")
	require.NoError(t, err)
	assert.Equal(t, StateRegistered, res.State)
	require.NotNil(t, res.User)
	assert.Equal(t, "Budi Santoso", res.User.Name)
}

func TestMachine_CompleteRejectsEmptyName(t *testing.T) {
	machine, _, sessions := newTestMachine()
	ctx := context.Background()

	require.NoError(t, machine.Begin(ctx, "628"))

	_, err := machine.Complete(ctx, "628", "   ", time.Now())
	assert.ErrorIs(t, err, ErrEmptyName)

	// the sender stays mid-registration and can retry
	_, err = sessions.Get(ctx, "628")
	assert.NoError(t, err)
}

func TestMachine_CompleteKeepsNameVerbatim(t *testing.T) {
	machine, _, _ := newTestMachine()

	user, err := machine.Complete(context.Background(), "628", "  dewi  ", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "  dewi  ", user.Name)
}

func TestMachine_CompleteConflict(t *testing.T) {
	machine, store, _ := newTestMachine()
	ctx := context.Background()

	_, err := machine.Complete(ctx, "628", "First", time.Now())
	require.NoError(t, err)

	_, err = machine.Complete(ctx, "628", "Second", time.Now())
	assert.ErrorIs(t, err, ledger.ErrConflict)

	found, err := store.FindUser(ctx, "628")
	require.NoError(t, err)
	assert.Equal(t, "First", found.Name)
}

func TestIsTransitionAllowed(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateUnregistered, StateAwaitingName, true},
		{StateAwaitingName, StateRegistered, true},
		{StateAwaitingName, StateUnregistered, true},
		{StateUnregistered, StateRegistered, false},
		{StateRegistered, StateUnregistered, false},
		{StateRegistered, StateAwaitingName, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsTransitionAllowed(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
