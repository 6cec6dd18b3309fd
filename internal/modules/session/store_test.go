package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"realtysite/internal/remote"
	"realtysite/internal/remote/remotetest"
)

var ana = remote.User{ID: "u1", Email: "ana@example.com"}

func anaSession() *remote.Session {
	return &remote.Session{AccessToken: "tok-1", ExpiresAt: time.Now().Add(time.Hour), User: ana}
}

type recorded struct{ prev, next *remote.User }

func record(s *Store) *[]recorded {
	var got []recorded
	s.Subscribe(func(_ context.Context, prev, next *remote.User) {
		got = append(got, recorded{prev, next})
	})
	return &got
}

func TestNewStoreIsLoading(t *testing.T) {
	m := &remotetest.Client{}
	s := NewStore(m)
	assert.True(t, s.Loading())
	assert.False(t, s.Authenticated())
	assert.Equal(t, 1, m.Subscribers())

	s.Close()
	assert.Equal(t, 0, m.Subscribers())
}

func TestInitWithoutTokenIsSignedOut(t *testing.T) {
	s := NewStore(&remotetest.Client{})
	require.NoError(t, s.Init(context.Background(), ""))
	assert.False(t, s.Loading())
	assert.Nil(t, s.User())
}

func TestInitResolvesToken(t *testing.T) {
	m := &remotetest.Client{}
	m.On("CurrentUser", mock.Anything, "tok-1").Return(&ana, nil)
	s := NewStore(m)
	got := record(s)

	require.NoError(t, s.Init(context.Background(), "tok-1"))
	assert.False(t, s.Loading())
	assert.Equal(t, "tok-1", s.AccessToken())
	require.Len(t, *got, 1)
	assert.Nil(t, (*got)[0].prev)
	assert.Equal(t, "u1", (*got)[0].next.ID)
}

func TestInitAuthFailureStaysLoading(t *testing.T) {
	m := &remotetest.Client{}
	m.On("CurrentUser", mock.Anything, "tok-1").Return(nil, errors.New("timeout"))
	s := NewStore(m)

	assert.Error(t, s.Init(context.Background(), "tok-1"))
	assert.True(t, s.Loading())
	assert.False(t, s.Authenticated())
}

func TestLoginFailureLeavesSessionAbsent(t *testing.T) {
	m := &remotetest.Client{}
	authErr := remote.Wrap("signin", "", remote.ErrInvalidCredentials)
	m.On("SignIn", mock.Anything, "ana@example.com", "bad").Return(nil, authErr)
	s := NewStore(m)
	require.NoError(t, s.Init(context.Background(), ""))
	got := record(s)

	err := s.Login(context.Background(), "ana@example.com", "bad")
	assert.Same(t, authErr, err)
	assert.Nil(t, s.User())
	assert.Empty(t, *got)
}

func TestLoginAndLogout(t *testing.T) {
	m := &remotetest.Client{}
	m.On("SignIn", mock.Anything, "ana@example.com", "secret123").Return(anaSession(), nil)
	m.On("SignOut", mock.Anything, "tok-1").Return(nil)
	s := NewStore(m)
	got := record(s)

	require.NoError(t, s.Login(context.Background(), "ana@example.com", "secret123"))
	assert.True(t, s.Authenticated())
	assert.False(t, s.Loading())

	require.NoError(t, s.Logout(context.Background()))
	assert.False(t, s.Authenticated())
	require.Len(t, *got, 2)
	assert.Nil(t, (*got)[1].next)
}

func TestLogoutClearsEvenWhenRemoteFails(t *testing.T) {
	m := &remotetest.Client{}
	m.On("SignIn", mock.Anything, mock.Anything, mock.Anything).Return(anaSession(), nil)
	m.On("SignOut", mock.Anything, "tok-1").Return(errors.New("unreachable"))
	s := NewStore(m)
	require.NoError(t, s.Login(context.Background(), "ana@example.com", "secret123"))

	assert.Error(t, s.Logout(context.Background()))
	assert.False(t, s.Authenticated())
}

func TestSignUpDoesNotSignIn(t *testing.T) {
	m := &remotetest.Client{}
	m.On("SignUp", mock.Anything, "bia@example.com", "secret123").
		Return(&remote.Account{User: remote.User{ID: "u2"}, Confirmed: false}, nil)
	s := NewStore(m)
	require.NoError(t, s.Init(context.Background(), ""))

	acc, err := s.SignUp(context.Background(), "bia@example.com", "secret123")
	require.NoError(t, err)
	assert.False(t, acc.Confirmed)
	assert.False(t, s.Authenticated())
}

func TestSignedOutEventForOwnTokenClears(t *testing.T) {
	m := &remotetest.Client{}
	m.On("SignIn", mock.Anything, mock.Anything, mock.Anything).Return(anaSession(), nil)
	s := NewStore(m)
	require.NoError(t, s.Login(context.Background(), "ana@example.com", "secret123"))

	m.Emit(remote.AuthEvent{Type: remote.EventSignedOut, AccessToken: "other"})
	assert.True(t, s.Authenticated())

	m.Emit(remote.AuthEvent{Type: remote.EventSignedOut, AccessToken: "tok-1"})
	assert.False(t, s.Authenticated())
}
