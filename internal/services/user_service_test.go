package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnomeshade/internal/core"
	"gnomeshade/internal/log"
	"gnomeshade/internal/storage"
)

func newUserService(t *testing.T) (*UserService, *storage.Store, *fakePublisher) {
	t.Helper()
	db, err := storage.Open(context.Background(), storage.SQLite, filepath.Join(t.TempDir(), "users.db"), log.Discard())
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	store := storage.NewStore(db)
	pub := &fakePublisher{}
	return NewUserService(store, NewNotifier(pub, nil, nil), nil), store, pub
}

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, store, pub := newUserService(t)

	user, err := svc.Register(ctx, "  alice ", "correct horse", "Alice Liddell")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	cp, err := store.Counterparties.FindByID(ctx, user.CounterpartyID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", cp.Name)
	require.Len(t, pub.events, 1)
	assert.Equal(t, core.EntityCounterparties, pub.events[0].Entity)

	got, err := svc.Authenticate(ctx, "alice", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "alice", "wrong horse")
	assert.ErrorIs(t, err, core.ErrBadLogin)
	_, err = svc.Authenticate(ctx, "bob", "correct horse")
	assert.ErrorIs(t, err, core.ErrBadLogin)

	_, err = svc.Register(ctx, "alice", "another password", "Other Alice")
	assert.ErrorIs(t, err, core.ErrConflict)
}

func TestUserService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newUserService(t)

	_, err := svc.Register(ctx, "alice", "short", "Alice")
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)

	_, err = svc.Register(ctx, "al", "long enough", "Alice")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestUserService_EnsureUser(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newUserService(t)

	created, err := svc.EnsureUser(ctx, "admin", "first password", "Administrator")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureUser(ctx, "admin", "second password", "Administrator")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = svc.Authenticate(ctx, "admin", "first password")
	assert.NoError(t, err, "an existing user keeps their password")
}
