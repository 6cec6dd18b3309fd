package listing

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"realtysite/internal/remote"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func setupRouter(t *testing.T, lookup FavoriteLookup) (*gin.Engine, *Store, *mock.Mock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, m := loadedStore(t)
	h := NewHandler(s, nil, lookup)

	router := gin.New()
	v1 := router.Group("/api/v1")
	h.RegisterPublicRoutes(v1)
	h.RegisterAdminRoutes(v1.Group("/admin"))
	return router, s, &m.Mock
}

func performRequest(router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var env envelope
	_ = json.Unmarshal(resp.Body.Bytes(), &env)
	return resp, env
}

func validRequest() PropertyRequest {
	return PropertyRequest{
		Title:        "Cobertura Duplex",
		Location:     "Noroeste, Brasília",
		Price:        "R$ 3.500.000",
		ImageURL:     "https://img.example.com/capa.jpg",
		Beds:         "4",
		Parking:      "3",
		Area:         "320m²",
		Description:  "Vista livre",
		FeaturesText: "Piscina, Academia",
		Type:         "Cobertura",
		City:         "Brasília",
	}
}

func TestListFiltersByQueryParams(t *testing.T) {
	router, _, _ := setupRouter(t, nil)

	resp, env := performRequest(router, http.MethodGet, "/api/v1/properties?purpose=Venda", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var data ListResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 1, data.Total)
	assert.Equal(t, "1", data.Properties[0].ID)
	assert.Equal(t, []string{"Todos", "Asa Sul", "Lago Sul"}, data.Filters)
	assert.Equal(t, "Todos", data.ActiveFilter)
	assert.True(t, data.Searching)
	assert.Equal(t, StatusOnline, data.ConnectionStatus)
}

func TestGetDetail(t *testing.T) {
	router, _, _ := setupRouter(t, func(c *gin.Context, id string) (bool, bool) { return id == "1", true })

	resp, env := performRequest(router, http.MethodGet, "/api/v1/properties/1", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var detail DetailResponse
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "Casa X", detail.Property.Title)
	require.NotNil(t, detail.IsFavorite)
	assert.True(t, *detail.IsFavorite)
	assert.Equal(t, "RealEstateListing", detail.JSONLD["@type"])

	resp, env = performRequest(router, http.MethodGet, "/api/v1/properties/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Imóvel não encontrado", env.Error.Message)
}

func TestCreateValidation(t *testing.T) {
	router, _, _ := setupRouter(t, nil)

	req := validRequest()
	req.Title = ""
	req.Purpose = "Permuta"
	resp, env := performRequest(router, http.MethodPost, "/api/v1/admin/properties", req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "required", env.Error.Details["title"])
	assert.Equal(t, "oneof", env.Error.Details["purpose"])
}

func TestCreateRemoteFailureIs502(t *testing.T) {
	router, s, m := setupRouter(t, nil)
	m.On("Insert", mock.Anything, remote.TableProperties, mock.Anything).Return(errRemote)

	resp, env := performRequest(router, http.MethodPost, "/api/v1/admin/properties", validRequest())
	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Equal(t, "REMOTE_WRITE_FAILED", env.Error.Code)
	assert.Equal(t, "Erro ao cadastrar imóvel", env.Error.Message)
	assert.Len(t, s.Properties(), 2)
}

func TestCreateNormalizesDraft(t *testing.T) {
	router, _, m := setupRouter(t, nil)
	m.On("Insert", mock.Anything, remote.TableProperties, mock.MatchedBy(func(rows []remote.Row) bool {
		return len(rows) == 1 &&
			rows[0]["id"] != "" &&
			assert.ObjectsAreEqual([]string{"Piscina", "Academia"}, rows[0]["features"]) &&
			assert.ObjectsAreEqual([]string{"https://img.example.com/capa.jpg"}, rows[0]["images"]) &&
			rows[0]["purpose"] == "Venda"
	})).Return(nil)
	m.On("Select", mock.Anything, remote.TableProperties, mock.Anything).Return(twoRows(), nil)

	resp, _ := performRequest(router, http.MethodPost, "/api/v1/admin/properties", validRequest())
	assert.Equal(t, http.StatusCreated, resp.Code)
	m.AssertExpectations(t)
}

func TestUpdateUnknownIs404(t *testing.T) {
	router, _, _ := setupRouter(t, nil)
	resp, _ := performRequest(router, http.MethodPut, "/api/v1/admin/properties/999", validRequest())
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteRoute(t *testing.T) {
	router, s, m := setupRouter(t, nil)
	m.On("Delete", mock.Anything, remote.TableProperties, []remote.Filter{remote.Eq("id", "2")}).Return(nil)

	resp, _ := performRequest(router, http.MethodDelete, "/api/v1/admin/properties/2", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, s.Properties(), 1)
}
