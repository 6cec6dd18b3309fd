// Package remotetest provides a testify mock of remote.Client for store tests.
package remotetest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"realtysite/internal/pkg/observer"
	"realtysite/internal/remote"
)

type Client struct {
	mock.Mock
	events observer.List[remote.AuthEvent]
}

var _ remote.Client = (*Client)(nil)

func (m *Client) Select(ctx context.Context, table string, q remote.Query) ([]remote.Row, error) {
	args := m.Called(ctx, table, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]remote.Row), args.Error(1)
}

func (m *Client) Insert(ctx context.Context, table string, rows ...remote.Row) error {
	args := m.Called(ctx, table, rows)
	return args.Error(0)
}

func (m *Client) Update(ctx context.Context, table string, patch remote.Row, match ...remote.Filter) error {
	args := m.Called(ctx, table, patch, match)
	return args.Error(0)
}

func (m *Client) Delete(ctx context.Context, table string, match ...remote.Filter) error {
	args := m.Called(ctx, table, match)
	return args.Error(0)
}

func (m *Client) SignIn(ctx context.Context, email, password string) (*remote.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.Session), args.Error(1)
}

func (m *Client) SignUp(ctx context.Context, email, password string) (*remote.Account, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.Account), args.Error(1)
}

func (m *Client) SignOut(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

func (m *Client) CurrentUser(ctx context.Context, accessToken string) (*remote.User, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.User), args.Error(1)
}

// OnAuthStateChange is not mocked; use Emit to deliver events.
func (m *Client) OnAuthStateChange(fn func(remote.AuthEvent)) (unsubscribe func()) {
	return m.events.Add(func(_ context.Context, ev remote.AuthEvent) { fn(ev) })
}

func (m *Client) Emit(ev remote.AuthEvent) {
	m.events.Notify(context.Background(), ev)
}

func (m *Client) Subscribers() int {
	return m.events.Len()
}
