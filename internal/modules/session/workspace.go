package session

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
	"github.com/jellydator/ttlcache/v3"

	"realtysite/internal/modules/favorite"
	"realtysite/internal/remote"
)

// Workspace is the pair of client stores bound to one access token.
type Workspace struct {
	Session   *Store
	Favorites *favorite.Store
}

func (w *Workspace) Close() {
	w.Favorites.Close()
	w.Session.Close()
}

// Workspaces keeps a workspace per access token while it is in use. Idle
// workspaces expire and are closed, and so do workspaces whose token expired.
type Workspaces struct {
	client  remote.Client
	idleTTL time.Duration
	cache   *ttlcache.Cache[string, *Workspace]
	now     func() time.Time
}

func NewWorkspaces(client remote.Client, idleTTL time.Duration) *Workspaces {
	cache := ttlcache.New[string, *Workspace](
		ttlcache.WithTTL[string, *Workspace](idleTTL),
	)
	cache.OnEviction(func(ctx context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *Workspace]) {
		glog.V(1).Infof("session workspace evicted reason=%d", reason)
		item.Value().Close()
	})
	return &Workspaces{client: client, idleTTL: idleTTL, cache: cache, now: time.Now}
}

// Start runs the expiry loop until ctx is done.
func (w *Workspaces) Start(ctx context.Context) {
	go w.cache.Start()
	go func() {
		<-ctx.Done()
		w.cache.Stop()
	}()
}

func (w *Workspaces) newWorkspace() *Workspace {
	s := NewStore(w.client)
	return &Workspace{
		Session:   s,
		Favorites: favorite.NewStore(w.client, s),
	}
}

// Resolve returns the workspace of token, building it on first use. Only
// workspaces with a live session are kept; otherwise the returned workspace
// is already closed and reports signed out, or still loading when the auth
// service failed.
func (w *Workspaces) Resolve(ctx context.Context, token string) (*Workspace, error) {
	if item := w.cache.Get(token); item != nil {
		ws := item.Value()
		if !ws.Session.Expired(w.now()) {
			return ws, nil
		}
		glog.V(1).Infof("session workspace token expired user=%s", ws.Session.User().ID)
		w.cache.Delete(token)
	}

	ws := w.newWorkspace()
	if err := ws.Session.Init(ctx, token); err != nil {
		ws.Close()
		return ws, err
	}
	if !ws.Session.Authenticated() || ws.Session.Expired(w.now()) {
		ws.Close()
		if ws.Session.Authenticated() {
			return w.signedOut(ctx), nil
		}
		return ws, nil
	}

	item, found := w.cache.GetOrSet(token, ws, ttlcache.WithTTL[string, *Workspace](w.ttlFor(ws)))
	if found {
		ws.Close()
	}
	return item.Value(), nil
}

// ttlFor bounds the idle TTL by the time left on the session token.
func (w *Workspaces) ttlFor(ws *Workspace) time.Duration {
	sess := ws.Session.Session()
	if sess == nil || sess.ExpiresAt.IsZero() {
		return w.idleTTL
	}
	return min(w.idleTTL, max(sess.ExpiresAt.Sub(w.now()), time.Millisecond))
}

// signedOut is a closed workspace with no session.
func (w *Workspaces) signedOut(ctx context.Context) *Workspace {
	ws := w.newWorkspace()
	_ = ws.Session.Init(ctx, "")
	ws.Close()
	return ws
}

// Login signs in on a fresh workspace and registers it under the new token.
func (w *Workspaces) Login(ctx context.Context, email, password string) (*Workspace, error) {
	ws := w.newWorkspace()
	if err := ws.Session.Init(ctx, ""); err != nil {
		ws.Close()
		return nil, err
	}
	if err := ws.Session.Login(ctx, email, password); err != nil {
		ws.Close()
		return nil, err
	}
	w.cache.Set(ws.Session.AccessToken(), ws, w.ttlFor(ws))
	return ws, nil
}

// Logout signs the workspace out and forgets it.
func (w *Workspaces) Logout(ctx context.Context, ws *Workspace) error {
	token := ws.Session.AccessToken()
	err := ws.Session.Logout(ctx)
	if token != "" {
		w.cache.Delete(token)
	}
	return err
}

// SignUp creates an account without signing in.
func (w *Workspaces) SignUp(ctx context.Context, email, password string) (*remote.Account, error) {
	ws := w.newWorkspace()
	defer ws.Close()
	return ws.Session.SignUp(ctx, email, password)
}

func (w *Workspaces) Len() int {
	return w.cache.Len()
}

// Close evicts every workspace.
func (w *Workspaces) Close() {
	w.cache.DeleteAll()
}

// ContextKey is where the session middleware puts the caller's *Workspace.
const ContextKey = "workspace"

// Attach exposes ws to the handlers of the current request.
func Attach(c *gin.Context, ws *Workspace) {
	c.Set(ContextKey, ws)
	c.Set(favorite.ContextKey, ws.Favorites)
}

func FromContext(c *gin.Context) (*Workspace, bool) {
	v, ok := c.Get(ContextKey)
	if !ok {
		return nil, false
	}
	ws, ok := v.(*Workspace)
	return ws, ok && ws != nil
}
