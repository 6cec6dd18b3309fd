package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"realtysite/internal/database"
	"realtysite/internal/modules/session"
	"realtysite/internal/remote"
	"realtysite/internal/remote/remotetest"
	"realtysite/internal/remote/sqlbackend"
)

func setupWorkspaces(t *testing.T) (*session.Workspaces, string) {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	backend := sqlbackend.New(db, sqlbackend.Options{JWTSecret: "test-secret-123", AccessTTL: time.Hour, AutoConfirm: true})
	require.NoError(t, backend.Migrate())

	_, err = backend.SignUp(t.Context(), "corretor@example.com", "secret123")
	require.NoError(t, err)
	_, err = backend.SignUp(t.Context(), "visitante@example.com", "secret123")
	require.NoError(t, err)

	w := session.NewWorkspaces(backend, time.Minute)
	t.Cleanup(w.Close)

	ws, err := w.Login(t.Context(), "corretor@example.com", "secret123")
	require.NoError(t, err)
	return w, ws.Session.AccessToken()
}

func newRouter(w *session.Workspaces, guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), SessionLoader(w))
	router.GET("/protected", guard, func(c *gin.Context) {
		token := remote.AccessToken(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(userIDKey), "token_set": token != ""})
	})
	return router
}

func get(router *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRequireSession(t *testing.T) {
	w, token := setupWorkspaces(t)
	router := newRouter(w, RequireSession())

	resp := get(router, token)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"token_set":true`)
	assert.NotEmpty(t, resp.Header().Get(RequestIDHeader))

	assert.Equal(t, http.StatusUnauthorized, get(router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "invalid-jwt-here").Code)
}

func TestRequireAdminAllowlist(t *testing.T) {
	w, token := setupWorkspaces(t)

	router := newRouter(w, RequireAdmin([]string{"corretor@example.com"}))
	assert.Equal(t, http.StatusOK, get(router, token).Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "").Code)

	other, err := w.Login(t.Context(), "visitante@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(router, other.Session.AccessToken()).Code)

	open := newRouter(w, RequireAdmin(nil))
	assert.Equal(t, http.StatusOK, get(open, other.Session.AccessToken()).Code)
}

func TestRequireAdminWhileSessionLoading(t *testing.T) {
	m := &remotetest.Client{}
	m.On("CurrentUser", mock.Anything, "tok").Return(nil, errors.New("auth service timeout"))
	w := session.NewWorkspaces(m, time.Minute)
	t.Cleanup(w.Close)

	resp := get(newRouter(w, RequireAdmin(nil)), "tok")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Contains(t, resp.Body.String(), "SESSION_LOADING")

	resp = get(newRouter(w, RequireSession()), "tok")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestRequestIDIsKept(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, requestID(c)) })

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	router.ServeHTTP(resp, req)
	assert.Equal(t, "abc", resp.Body.String())
	assert.Equal(t, "abc", resp.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS([]string{"https://site.example.com"}))
	router.GET("/", func(c *gin.Context) { t.Fatal("preflight must not reach handlers") })

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://site.example.com")
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, "https://site.example.com", resp.Header().Get("Access-Control-Allow-Origin"))

	resp = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	router.ServeHTTP(resp, req)
	assert.Empty(t, resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestErrorLoggerRecovers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), ErrorLogger())
	router.GET("/", func(c *gin.Context) { panic("boom") })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "INTERNAL_SERVER_ERROR")
}
