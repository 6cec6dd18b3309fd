package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtysite/internal/remote"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Options{URL: srv.URL, AnonKey: "anon", HTTPClient: srv.Client()})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options{URL: "not a url", AnonKey: "k"})
	assert.Error(t, err)
	_, err = New(Options{URL: "https://x.supabase.co"})
	assert.Error(t, err)
}

func TestSelectBuildsPostgrestQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/favorites", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "property_id,property:properties!property_id(*)", q.Get("select"))
		assert.Equal(t, "eq.u1", q.Get("user_id"))
		assert.Equal(t, "created_at.asc", q.Get("order"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))

		writeJSON(w, http.StatusOK, []map[string]any{
			{"property_id": "1", "property": map[string]any{"id": "1", "title": "Casa"}},
			{"property_id": "2", "property": nil},
		})
	})

	ctx := remote.WithAccessToken(context.Background(), "user-token")
	rows, err := c.Select(ctx, remote.TableFavorites, remote.Query{
		Columns: []string{"property_id"},
		Filters: []remote.Filter{remote.Eq("user_id", "u1")},
		Order:   &remote.Order{Column: "created_at", Ascending: true},
		Embeds:  []remote.Embed{{Alias: "property", Table: "properties", LocalColumn: "property_id", ForeignColumn: "id"}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	embedded, ok := rows[0]["property"].(remote.Row)
	require.True(t, ok)
	assert.Equal(t, "Casa", embedded["title"])
	assert.Nil(t, rows[1]["property"])
}

func TestSelectUsesAnonKeyWithoutToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer anon", r.Header.Get("Authorization"))
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		assert.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
		writeJSON(w, http.StatusOK, []any{})
	})

	rows, err := c.Select(context.Background(), remote.TableProperties, remote.Query{
		Order: &remote.Order{Column: "created_at"},
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestInsertConflict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `[{"user_id":"u1","property_id":"1"}]`, string(body))
		writeJSON(w, http.StatusConflict, map[string]any{
			"code":    "23505",
			"message": `duplicate key value violates unique constraint "favorites_pkey"`,
		})
	})

	err := c.Insert(context.Background(), remote.TableFavorites, remote.Row{"user_id": "u1", "property_id": "1"})
	assert.ErrorIs(t, err, remote.ErrConflict)
}

func TestUpdateAndDeleteRequireMatch(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.RawQuery)
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	assert.Error(t, c.Update(ctx, remote.TableProperties, remote.Row{"title": "x"}))
	assert.Error(t, c.Delete(ctx, remote.TableProperties))
	require.NoError(t, c.Update(ctx, remote.TableProperties, remote.Row{"title": "x"}, remote.Eq("id", "7")))
	require.NoError(t, c.Delete(ctx, remote.TableFavorites, remote.Eq("user_id", "u1"), remote.Eq("property_id", "7")))

	assert.Equal(t, []string{
		"PATCH id=eq.7",
		"DELETE property_id=eq.7&user_id=eq.u1",
	}, calls)
}

func TestSignInAndEvents(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/token":
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
			var body credentials
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body.Password != "secret123" {
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"code": 400, "error_code": "invalid_credentials", "msg": "Invalid login credentials",
				})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token": "tok",
				"expires_in":   3600,
				"expires_at":   1900000000,
				"user":         map[string]any{"id": "u1", "email": body.Email},
			})
		case "/auth/v1/logout":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	var events []remote.AuthEvent
	defer c.OnAuthStateChange(func(ev remote.AuthEvent) { events = append(events, ev) })()

	_, err := c.SignIn(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, remote.ErrInvalidCredentials)

	sess, err := c.SignIn(ctx, "ana@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.AccessToken)
	assert.Equal(t, "u1", sess.User.ID)
	assert.Equal(t, int64(1900000000), sess.ExpiresAt.Unix())

	require.NoError(t, c.SignOut(ctx, "tok"))
	require.Len(t, events, 2)
	assert.Equal(t, remote.EventSignedIn, events[0].Type)
	assert.Equal(t, remote.EventSignedOut, events[1].Type)
}

func TestSignInEmailNotConfirmed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "invalid_request", "error_description": "Email not confirmed",
		})
	})
	_, err := c.SignIn(context.Background(), "ana@example.com", "secret123")
	assert.ErrorIs(t, err, remote.ErrEmailNotConfirmed)
}

func TestSignUp(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch body.Email {
		case "taken@example.com":
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"code": 422, "error_code": "user_already_exists", "msg": "User already registered",
			})
		case "auto@example.com":
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token": "tok",
				"user":         map[string]any{"id": "u2", "email": body.Email},
			})
		default:
			writeJSON(w, http.StatusOK, map[string]any{"id": "u3", "email": body.Email})
		}
	})
	ctx := context.Background()

	_, err := c.SignUp(ctx, "taken@example.com", "secret123")
	assert.ErrorIs(t, err, remote.ErrUserExists)

	acc, err := c.SignUp(ctx, "auto@example.com", "secret123")
	require.NoError(t, err)
	assert.True(t, acc.Confirmed)
	assert.Equal(t, "u2", acc.User.ID)

	acc, err = c.SignUp(ctx, "new@example.com", "secret123")
	require.NoError(t, err)
	assert.False(t, acc.Confirmed)
	assert.Equal(t, "u3", acc.User.ID)
}

func TestCurrentUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "invalid JWT"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "u1", "email": "ana@example.com"})
	})
	ctx := context.Background()

	u, err := c.CurrentUser(ctx, "good")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "u1", u.ID)

	u, err = c.CurrentUser(ctx, "bad")
	require.NoError(t, err)
	assert.Nil(t, u)
}
