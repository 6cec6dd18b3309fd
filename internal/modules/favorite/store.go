// Package favorite keeps the signed-in visitor's bookmarked properties.
// Additions and removals are applied locally first and committed afterwards.
package favorite

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/golang/glog"

	"realtysite/internal/domain"
	"realtysite/internal/pkg/observer"
	"realtysite/internal/remote"
)

// SessionSource is the part of the session store favorites depend on.
type SessionSource interface {
	User() *remote.User
	AccessToken() string
	Subscribe(fn func(ctx context.Context, prev, next *remote.User)) (unsubscribe func())
}

type ChangeKind string

const (
	ChangeLoaded     ChangeKind = "loaded"
	ChangeAdded      ChangeKind = "added"
	ChangeRemoved    ChangeKind = "removed"
	ChangeRolledBack ChangeKind = "rolled_back"
	ChangeCleared    ChangeKind = "cleared"
)

type Change struct {
	Kind  ChangeKind
	ID    string
	Count int
}

type Store struct {
	tables  remote.Tables
	session SessionSource

	mu      sync.RWMutex
	items   []domain.Property
	loading bool

	observers          observer.List[Change]
	unsubscribeSession func()
}

// NewStore attaches to session. It must be created before the session is
// established so that the sign-in triggers the initial fetch.
func NewStore(tables remote.Tables, session SessionSource) *Store {
	s := &Store{
		tables:  tables,
		session: session,
		items:   []domain.Property{},
	}
	s.unsubscribeSession = session.Subscribe(s.onSessionChange)
	return s
}

func (s *Store) onSessionChange(ctx context.Context, prev, next *remote.User) {
	switch {
	case next == nil:
		s.clear(ctx)
	case prev == nil || prev.ID != next.ID:
		if prev != nil {
			s.clear(ctx)
		}
		if err := s.fetch(ctx, next.ID); err != nil {
			glog.Errorf("favorites fetch user=%s failed: %v", next.ID, err)
		}
	}
}

func (s *Store) clear(ctx context.Context) {
	s.mu.Lock()
	s.items = []domain.Property{}
	s.mu.Unlock()
	s.observers.Notify(ctx, Change{Kind: ChangeCleared})
}

func (s *Store) remoteCtx(ctx context.Context) context.Context {
	return remote.WithAccessToken(ctx, s.session.AccessToken())
}

// fetch replaces the set with the user's favorites as stored remotely.
func (s *Store) fetch(ctx context.Context, userID string) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	rows, err := s.tables.Select(s.remoteCtx(ctx), remote.TableFavorites, remote.Query{
		Columns: []string{domain.FavColPropertyID},
		Filters: []remote.Filter{remote.Eq(domain.FavColUserID, userID)},
		Order:   &remote.Order{Column: domain.ColCreatedAt, Ascending: true},
		Embeds: []remote.Embed{{
			Alias:         domain.FavoritePropertyAlias,
			Table:         remote.TableProperties,
			LocalColumn:   domain.FavColPropertyID,
			ForeignColumn: domain.ColID,
		}},
	})
	if err != nil {
		return err
	}

	items := make([]domain.Property, 0, len(rows))
	for _, row := range rows {
		embedded, ok := row[domain.FavoritePropertyAlias].(remote.Row)
		if !ok {
			continue
		}
		p, err := domain.PropertyFromRow(embedded)
		if err != nil {
			glog.Warningf("favorites fetch skipped row: %v", err)
			continue
		}
		items = append(items, p)
	}

	s.mu.Lock()
	if u := s.session.User(); u == nil || u.ID != userID {
		s.mu.Unlock()
		return nil
	}
	s.items = items
	s.mu.Unlock()

	glog.V(1).Infof("favorites loaded user=%s count=%d", userID, len(items))
	s.observers.Notify(ctx, Change{Kind: ChangeLoaded, Count: len(items)})
	return nil
}

// Add bookmarks p. The property shows as a favorite immediately; if the
// remote insert fails it is taken out again.
func (s *Store) Add(ctx context.Context, p domain.Property) error {
	u := s.session.User()
	if u == nil {
		return ErrNotAuthenticated
	}

	s.mu.Lock()
	if containsID(s.items, p.ID) {
		s.mu.Unlock()
		return nil
	}
	s.items = append(slices.Clone(s.items), p)
	count := len(s.items)
	s.mu.Unlock()
	s.observers.Notify(ctx, Change{Kind: ChangeAdded, ID: p.ID, Count: count})

	err := s.tables.Insert(s.remoteCtx(ctx), remote.TableFavorites, remote.Row{
		domain.FavColUserID:     u.ID,
		domain.FavColPropertyID: p.ID,
	})
	if err == nil || errors.Is(err, remote.ErrConflict) {
		return nil
	}

	s.mu.Lock()
	s.items = withoutID(s.items, p.ID)
	count = len(s.items)
	s.mu.Unlock()
	s.observers.Notify(ctx, Change{Kind: ChangeRolledBack, ID: p.ID, Count: count})

	glog.Errorf("favorites add user=%s property=%s failed, rolled back: %v", u.ID, p.ID, err)
	return fmt.Errorf("%w: %w", ErrWriteFailed, err)
}

// Remove drops id from the set. A failed delete resynchronizes the whole set
// from the server, since the local set may have drifted.
func (s *Store) Remove(ctx context.Context, id string) error {
	u := s.session.User()
	if u == nil {
		return ErrNotAuthenticated
	}

	s.mu.Lock()
	s.items = withoutID(s.items, id)
	count := len(s.items)
	s.mu.Unlock()
	s.observers.Notify(ctx, Change{Kind: ChangeRemoved, ID: id, Count: count})

	err := s.tables.Delete(s.remoteCtx(ctx), remote.TableFavorites,
		remote.Eq(domain.FavColUserID, u.ID),
		remote.Eq(domain.FavColPropertyID, id),
	)
	if err == nil {
		return nil
	}

	glog.Errorf("favorites remove user=%s property=%s failed, resyncing: %v", u.ID, id, err)
	if ferr := s.fetch(ctx, u.ID); ferr != nil {
		glog.Errorf("favorites resync user=%s failed: %v", u.ID, ferr)
	}
	return fmt.Errorf("%w: %w", ErrWriteFailed, err)
}

// withoutID is the inverse of an append: a new slice without any entry for id.
func withoutID(items []domain.Property, id string) []domain.Property {
	out := make([]domain.Property, 0, len(items))
	for _, p := range items {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

func containsID(items []domain.Property, id string) bool {
	return slices.ContainsFunc(items, func(p domain.Property) bool { return p.ID == id })
}

func (s *Store) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return containsID(s.items, id)
}

func (s *Store) List() []domain.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Subscribe(fn func(ctx context.Context, c Change)) (unsubscribe func()) {
	return s.observers.Add(fn)
}

// Close detaches from the session and empties the set.
func (s *Store) Close() {
	s.unsubscribeSession()
	s.mu.Lock()
	s.items = []domain.Property{}
	s.mu.Unlock()
}
