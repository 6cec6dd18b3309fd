// Package session tracks who is signed in and mediates sign-in, sign-up and
// sign-out against the remote auth facility.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"

	"realtysite/internal/pkg/jwt"
	"realtysite/internal/pkg/observer"
	"realtysite/internal/remote"
)

type transition struct {
	prev, next *remote.User
}

// Store holds at most one session. Until Init completes the store is loading,
// which is different from being signed out.
type Store struct {
	auth remote.Auth

	mu      sync.RWMutex
	session *remote.Session
	loading bool

	observers       observer.List[transition]
	unsubscribeAuth func()
}

func NewStore(auth remote.Auth) *Store {
	s := &Store{auth: auth, loading: true}
	s.unsubscribeAuth = auth.OnAuthStateChange(s.onAuthEvent)
	return s
}

// onAuthEvent clears the session when its token is signed out elsewhere.
func (s *Store) onAuthEvent(ev remote.AuthEvent) {
	if ev.Type != remote.EventSignedOut || ev.AccessToken == "" {
		return
	}
	s.mu.RLock()
	mine := s.session != nil && s.session.AccessToken == ev.AccessToken
	s.mu.RUnlock()
	if mine {
		s.set(context.Background(), nil)
	}
}

// set replaces the session and notifies observers when the user changed.
func (s *Store) set(ctx context.Context, next *remote.Session) {
	s.mu.Lock()
	var prevUser, nextUser *remote.User
	if s.session != nil {
		u := s.session.User
		prevUser = &u
	}
	if next != nil {
		u := next.User
		nextUser = &u
	}
	s.session = next
	s.loading = false
	s.mu.Unlock()

	if sameUser(prevUser, nextUser) {
		return
	}
	s.observers.Notify(ctx, transition{prev: prevUser, next: nextUser})
}

func sameUser(a, b *remote.User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

// Init resolves an existing access token. An empty or rejected token leaves
// the store signed out. A failing auth service keeps the store loading.
func (s *Store) Init(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		s.set(ctx, nil)
		return nil
	}

	u, err := s.auth.CurrentUser(ctx, accessToken)
	if err != nil {
		glog.Errorf("session init failed: %v", err)
		return err
	}
	if u == nil {
		s.set(ctx, nil)
		return nil
	}
	s.set(ctx, &remote.Session{AccessToken: accessToken, ExpiresAt: jwt.ExpiresAt(accessToken), User: *u})
	return nil
}

// Login signs in and, on success, establishes the session. Dependent stores
// have reacted by the time Login returns. Auth errors are returned as is.
func (s *Store) Login(ctx context.Context, email, password string) error {
	sess, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		glog.V(1).Infof("session login failed: %v", err)
		return err
	}
	s.set(ctx, sess)
	glog.Infof("session login user=%s", sess.User.ID)
	return nil
}

// SignUp creates an account. It never signs in: the service may require the
// address to be confirmed first.
func (s *Store) SignUp(ctx context.Context, email, password string) (*remote.Account, error) {
	acc, err := s.auth.SignUp(ctx, email, password)
	if err != nil {
		glog.V(1).Infof("session signup failed: %v", err)
		return nil, err
	}
	return acc, nil
}

// Logout signs the token out remotely and clears the session. The session is
// cleared even when the remote call fails.
func (s *Store) Logout(ctx context.Context) error {
	token := s.AccessToken()
	var err error
	if token != "" {
		if err = s.auth.SignOut(ctx, token); err != nil {
			glog.Errorf("session logout failed: %v", err)
		}
	}
	s.set(ctx, nil)
	return err
}

// User returns a copy of the signed in user, or nil.
func (s *Store) User() *remote.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	u := s.session.User
	return &u
}

func (s *Store) Session() *remote.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.AccessToken
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Authenticated() bool {
	return s.User() != nil
}

// Expired reports whether the session token has passed its expiry at now.
// Sessions without a known expiry never expire here.
func (s *Store) Expired(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil || s.session.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.session.ExpiresAt)
}

// Subscribe is called with the previous and the new user whenever the
// signed in user changes. Either may be nil.
func (s *Store) Subscribe(fn func(ctx context.Context, prev, next *remote.User)) (unsubscribe func()) {
	return s.observers.Add(func(ctx context.Context, t transition) { fn(ctx, t.prev, t.next) })
}

// Close detaches from the auth facility. The store stays readable.
func (s *Store) Close() {
	s.unsubscribeAuth()
}
