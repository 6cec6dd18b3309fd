// Package listing holds the in-memory property catalog shared by the public
// pages and the admin area, kept in sync with the remote properties table.
package listing

import (
	"context"
	"slices"
	"sync"

	"github.com/golang/glog"

	"realtysite/internal/domain"
	"realtysite/internal/pkg/observer"
	"realtysite/internal/remote"
)

type ConnectionStatus string

const (
	StatusChecking ConnectionStatus = "checking"
	StatusOnline   ConnectionStatus = "online"
	StatusOffline  ConnectionStatus = "offline"
)

type ChangeKind string

const (
	ChangeRefreshed ChangeKind = "refreshed"
	ChangeCreated   ChangeKind = "created"
	ChangeUpdated   ChangeKind = "updated"
	ChangeDeleted   ChangeKind = "deleted"
	ChangeStatus    ChangeKind = "status"
)

// Change is sent to subscribers after the store state moved.
type Change struct {
	Kind   ChangeKind       `json:"kind"`
	ID     string           `json:"id,omitempty"`
	Count  int              `json:"count"`
	Status ConnectionStatus `json:"status"`
}

type Store struct {
	tables remote.Tables

	mu         sync.RWMutex
	properties []domain.Property
	loading    bool
	status     ConnectionStatus

	observers observer.List[Change]
}

func NewStore(tables remote.Tables) *Store {
	return &Store{
		tables:     tables,
		properties: []domain.Property{},
		status:     StatusChecking,
	}
}

// Refresh reloads the whole catalog, newest first. On failure the previous
// collection is kept and the store goes offline.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	rows, err := s.tables.Select(ctx, remote.TableProperties, remote.Query{
		Order: &remote.Order{Column: domain.ColCreatedAt, Ascending: false},
	})

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.status = StatusOffline
		change := s.changeLocked(ChangeStatus, "")
		s.mu.Unlock()

		glog.Errorf("listing refresh failed, keeping %d cached properties: %v", change.Count, err)
		s.observers.Notify(ctx, change)
		return err
	}

	props := make([]domain.Property, 0, len(rows))
	for _, row := range rows {
		p, err := domain.PropertyFromRow(row)
		if err != nil {
			glog.Warningf("listing refresh skipped row: %v", err)
			continue
		}
		props = append(props, p)
	}
	s.properties = props
	s.status = StatusOnline
	change := s.changeLocked(ChangeRefreshed, "")
	s.mu.Unlock()

	glog.V(1).Infof("listing refreshed count=%d", len(props))
	s.observers.Notify(ctx, change)
	return nil
}

// Create inserts the draft as is and reloads the catalog.
func (s *Store) Create(ctx context.Context, draft domain.Property) error {
	if draft.ID == "" {
		draft.ID = domain.NewPropertyID()
	}
	if err := s.tables.Insert(ctx, remote.TableProperties, draft.ToRow()); err != nil {
		glog.Errorf("listing create id=%s failed: %v", draft.ID, err)
		return opError("create", draft.ID, err)
	}
	s.afterWrite(ctx, ChangeCreated, draft.ID)
	return nil
}

// Update writes every editable field of p, keyed by its id, and reloads the
// catalog.
func (s *Store) Update(ctx context.Context, p domain.Property) error {
	patch := p.ToRow()
	delete(patch, domain.ColID)
	if err := s.tables.Update(ctx, remote.TableProperties, patch, remote.Eq(domain.ColID, p.ID)); err != nil {
		glog.Errorf("listing update id=%s failed: %v", p.ID, err)
		return opError("update", p.ID, err)
	}
	s.afterWrite(ctx, ChangeUpdated, p.ID)
	return nil
}

// Delete removes the property remotely and then from the cached collection,
// without a reload.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.tables.Delete(ctx, remote.TableProperties, remote.Eq(domain.ColID, id)); err != nil {
		glog.Errorf("listing delete id=%s failed: %v", id, err)
		return opError("delete", id, err)
	}

	s.mu.Lock()
	s.properties = slices.DeleteFunc(slices.Clone(s.properties), func(p domain.Property) bool {
		return p.ID == id
	})
	change := s.changeLocked(ChangeDeleted, id)
	s.mu.Unlock()

	s.observers.Notify(ctx, change)
	return nil
}

func (s *Store) afterWrite(ctx context.Context, kind ChangeKind, id string) {
	// The write itself succeeded; a failed reload only leaves the cache stale.
	_ = s.Refresh(ctx)

	s.mu.RLock()
	change := s.changeLocked(kind, id)
	s.mu.RUnlock()
	s.observers.Notify(ctx, change)
}

// CheckConnection probes the properties table without touching the
// collection.
func (s *Store) CheckConnection(ctx context.Context) ConnectionStatus {
	s.setStatus(ctx, StatusChecking)

	_, err := s.tables.Select(ctx, remote.TableProperties, remote.Query{
		Columns: []string{domain.ColID},
		Limit:   1,
	})
	status := StatusOnline
	if err != nil {
		glog.Errorf("listing connection check failed: %v", err)
		status = StatusOffline
	}
	s.setStatus(ctx, status)
	return status
}

func (s *Store) setStatus(ctx context.Context, status ConnectionStatus) {
	s.mu.Lock()
	if s.status == status {
		s.mu.Unlock()
		return
	}
	s.status = status
	change := s.changeLocked(ChangeStatus, "")
	s.mu.Unlock()
	s.observers.Notify(ctx, change)
}

func (s *Store) changeLocked(kind ChangeKind, id string) Change {
	return Change{Kind: kind, ID: id, Count: len(s.properties), Status: s.status}
}

// Properties returns a copy of the catalog, newest first.
func (s *Store) Properties() []domain.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.properties)
}

func (s *Store) Get(id string) (domain.Property, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.properties {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Property{}, false
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Status() ConnectionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Store) Subscribe(fn func(ctx context.Context, c Change)) (unsubscribe func()) {
	return s.observers.Add(fn)
}
