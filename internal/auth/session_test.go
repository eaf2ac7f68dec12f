package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_EstablishAndCurrent(t *testing.T) {
	session := NewSession(nil, zerolog.Nop())

	assert.Nil(t, session.Current())

	user := User{ID: uuid.New(), Email: "ana@example.com"}
	session.Establish(user)

	current := session.Current()
	require.NotNil(t, current)
	assert.Equal(t, user.ID, current.ID)
}

func TestSession_SubscribersNotified(t *testing.T) {
	session := NewSession(nil, zerolog.Nop())

	var seen []*User
	unsubscribe := session.Subscribe(func(u *User) {
		seen = append(seen, u)
	})

	user := User{ID: uuid.New()}
	session.Establish(user)
	require.NoError(t, session.SignOut(context.Background()))

	require.Len(t, seen, 2)
	assert.Equal(t, user.ID, seen[0].ID)
	assert.Nil(t, seen[1])

	unsubscribe()
	session.Establish(user)
	assert.Len(t, seen, 2)
}

func TestSession_SignOutClearsEvenOnRemoteFailure(t *testing.T) {
	remoteErr := errors.New("backend unreachable")
	session := NewSession(func(ctx context.Context) error { return remoteErr }, zerolog.Nop())

	session.Establish(User{ID: uuid.New()})

	err := session.SignOut(context.Background())

	assert.ErrorIs(t, err, remoteErr)
	assert.Nil(t, session.Current())
}
