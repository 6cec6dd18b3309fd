package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtysite/internal/config"
	"realtysite/internal/pkg/pubsub"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testClient struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func (tc *testClient) do(method, path string, body any) (int, envelope) {
	tc.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(tc.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tc.token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}
	resp := httptest.NewRecorder()
	tc.engine.ServeHTTP(resp, req)

	var env envelope
	_ = json.Unmarshal(resp.Body.Bytes(), &env)
	return resp.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func setupServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		RemoteBackend:       config.BackendSQL,
		DatabaseURL:         "file:" + t.Name() + "?mode=memory&cache=shared",
		JWTSecret:           "test-secret",
		JWTAccessTTL:        time.Hour,
		AuthAutoConfirm:     true,
		AdminEmails:         []string{"corretor@example.com"},
		SessionIdleTTL:      time.Minute,
		LeadRelayTimeout:    time.Second,
		QuickFilterStoplist: []string{"brasília", "df"},
	}

	client, err := OpenRemote(cfg)
	require.NoError(t, err)

	s := New(cfg, client, pubsub.New(nil, pubsub.DefaultChannel))
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	t.Cleanup(func() {
		cancel()
		s.Close()
	})
	return s
}

func property(title, location, purpose string) map[string]any {
	return map[string]any{
		"title":       title,
		"location":    location,
		"price":       "R$ 1.000.000",
		"image_url":   "https://img.example.com/" + title + ".jpg",
		"beds":        "3",
		"parking":     "2",
		"area":        "200m²",
		"description": "Imóvel de teste",
		"purpose":     purpose,
		"type":        "Casa",
		"city":        "Brasília",
	}
}

func TestCatalogFavoritesAndContactFlow(t *testing.T) {
	s := setupServer(t)
	visitor := &testClient{t: t, engine: s.Engine}
	admin := &testClient{t: t, engine: s.Engine}

	code, _ := admin.do(http.MethodPost, "/api/v1/admin/properties", property("Casa X", "Lago Sul", "Venda"))
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = admin.do(http.MethodPost, "/api/v1/auth/signup", map[string]string{"email": "corretor@example.com", "password": "secret123"})
	require.Equal(t, http.StatusCreated, code)
	code, env := admin.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "corretor@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, code)
	admin.token = decode[map[string]any](t, env)["access_token"].(string)

	code, _ = admin.do(http.MethodPost, "/api/v1/admin/properties", property("Casa X", "Lago Sul", "Venda"))
	require.Equal(t, http.StatusCreated, code)
	code, _ = admin.do(http.MethodPost, "/api/v1/admin/properties", property("Apto Y", "Noroeste, Brasília", "Aluguel"))
	require.Equal(t, http.StatusCreated, code)

	code, env = visitor.do(http.MethodGet, "/api/v1/properties?purpose=Venda", nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[struct {
		Properties []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"properties"`
		Filters          []string `json:"filters"`
		ConnectionStatus string   `json:"connection_status"`
	}](t, env)
	require.Len(t, list.Properties, 1)
	assert.Equal(t, "Casa X", list.Properties[0].Title)
	assert.Equal(t, []string{"Todos", "Lago Sul", "Noroeste"}, list.Filters)
	assert.Equal(t, "online", list.ConnectionStatus)
	houseID := list.Properties[0].ID

	code, env = visitor.do(http.MethodPost, "/api/v1/favorites/"+houseID, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Faça login para salvar favoritos.", env.Error.Message)

	code, _ = visitor.do(http.MethodPost, "/api/v1/auth/signup", map[string]string{"email": "ana@example.com", "password": "secret123"})
	require.Equal(t, http.StatusCreated, code)
	code, env = visitor.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "ana@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, code)
	visitor.token = decode[map[string]any](t, env)["access_token"].(string)

	code, _ = visitor.do(http.MethodPost, "/api/v1/admin/properties", property("Loft", "Asa Norte", "Venda"))
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = visitor.do(http.MethodPost, "/api/v1/favorites/"+houseID, nil)
	require.Equal(t, http.StatusCreated, code)

	code, env = visitor.do(http.MethodGet, "/api/v1/properties/"+houseID, nil)
	require.Equal(t, http.StatusOK, code)
	detail := decode[map[string]any](t, env)
	assert.Equal(t, true, detail["is_favorite"])

	code, env = visitor.do(http.MethodGet, "/api/v1/favorites", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, decode[map[string]any](t, env)["total"])

	code, _ = visitor.do(http.MethodPost, "/api/v1/properties/"+houseID+"/contact", map[string]string{
		"nome": "Ana", "email": "ana@example.com", "telefone": "61 99999-0000", "mensagem": "Quero visitar",
	})
	assert.Equal(t, http.StatusCreated, code)

	code, _ = admin.do(http.MethodDelete, "/api/v1/admin/properties/"+houseID, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = visitor.do(http.MethodGet, "/api/v1/properties/"+houseID, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = visitor.do(http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = visitor.do(http.MethodGet, "/api/v1/favorites", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestHealth(t *testing.T) {
	s := setupServer(t)
	code, env := (&testClient{t: t, engine: s.Engine}).do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", decode[map[string]any](t, env)["status"])
}
