// Package remote defines the contract of the hosted data service the site is
// built on: table-scoped select/insert/update/delete plus an auth facility.
//
// Stores only ever talk to a Client; sqlbackend and rest are the two
// implementations shipped with the repo.
package remote

import (
	"context"
	"time"
)

// Table names used by the site.
const (
	TableProperties = "properties"
	TableFavorites  = "favorites"
	TableContacts   = "contacts"
)

// Row is a weakly typed record as returned by the service. Callers must map it
// into typed values at the boundary.
type Row map[string]any

// Filter is an equality match on one column.
type Filter struct {
	Column string
	Value  any
}

// Eq builds an equality filter.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

type Order struct {
	Column    string
	Ascending bool
}

// Embed attaches the related row of another table under Alias, joining
// LocalColumn of the selected table to ForeignColumn of Table.
type Embed struct {
	Alias         string
	Table         string
	LocalColumn   string
	ForeignColumn string
}

// Query describes a select. Empty Columns means all columns, Limit <= 0 means
// no limit.
type Query struct {
	Columns []string
	Filters []Filter
	Order   *Order
	Limit   int
	Embeds  []Embed
}

type Tables interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
	Insert(ctx context.Context, table string, rows ...Row) error
	Update(ctx context.Context, table string, patch Row, match ...Filter) error
	Delete(ctx context.Context, table string, match ...Filter) error
}

// User is the authenticated actor as reported by the auth facility.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the result of a successful sign-in.
type Session struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

// Account is the result of a sign-up. Confirmed is false when the service
// requires the address to be verified before the first sign-in.
type Account struct {
	User      User `json:"user"`
	Confirmed bool `json:"confirmed"`
}

type AuthEventType string

const (
	EventSignedIn  AuthEventType = "SIGNED_IN"
	EventSignedOut AuthEventType = "SIGNED_OUT"
)

// AuthEvent is delivered to OnAuthStateChange observers. For EventSignedOut
// only AccessToken is guaranteed to be set.
type AuthEvent struct {
	Type        AuthEventType
	AccessToken string
	User        *User
}

type Auth interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Account, error)
	SignOut(ctx context.Context, accessToken string) error
	// CurrentUser returns nil, nil when the token is unknown, expired or revoked.
	CurrentUser(ctx context.Context, accessToken string) (*User, error)
	OnAuthStateChange(fn func(AuthEvent)) (unsubscribe func())
}

type Client interface {
	Tables
	Auth
}

type accessTokenKey struct{}

// WithAccessToken attaches the caller's access token so that row-level
// security on the service applies to the call.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenKey{}, token)
}

func AccessToken(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}
