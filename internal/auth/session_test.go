package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionIssueResolveRevoke(t *testing.T) {
	manager := NewSessionManager(NewMemorySessionStore(), time.Hour)
	ctx := context.Background()

	session, err := manager.Issue(ctx, 42)
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	assert.Equal(t, int64(42), session.UserID)

	resolved, err := manager.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, resolved.UserID)

	require.NoError(t, manager.Revoke(ctx, session.Token))
	_, err = manager.Resolve(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionTokensAreUnique(t *testing.T) {
	manager := NewSessionManager(NewMemorySessionStore(), time.Hour)
	ctx := context.Background()

	first, err := manager.Issue(ctx, 1)
	require.NoError(t, err)
	second, err := manager.Issue(ctx, 1)
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
}

func TestResolveEmptyToken(t *testing.T) {
	manager := NewSessionManager(NewMemorySessionStore(), time.Hour)

	_, err := manager.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStoreExpiresSessions(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	session := &Session{Token: "tok", UserID: 1, CreatedAt: time.Now()}
	require.NoError(t, store.Save(ctx, session, -time.Second))

	_, err := store.Get(ctx, "tok")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRevokeUnknownTokenIsNoop(t *testing.T) {
	manager := NewSessionManager(NewMemorySessionStore(), time.Hour)

	assert.NoError(t, manager.Revoke(context.Background(), "missing"))
	assert.NoError(t, manager.Revoke(context.Background(), ""))
}
