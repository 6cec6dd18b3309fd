package contact

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"realtysite/internal/remote"
	"realtysite/internal/remote/remotetest"
)

func TestContactRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := &remotetest.Client{}
	m.On("Insert", mock.Anything, remote.TableContacts, mock.Anything).Return(nil)

	router := gin.New()
	NewHandler(NewService(m, catalog(t), nil)).RegisterRoutes(router.Group("/api/v1"))

	cases := []struct {
		name string
		path string
		body any
		want int
	}{
		{"general", "/api/v1/contact", form(), http.StatusCreated},
		{"property", "/api/v1/properties/1/contact", form(), http.StatusCreated},
		{"unknown property", "/api/v1/properties/9/contact", form(), http.StatusNotFound},
		{"missing fields", "/api/v1/contact", map[string]string{"nome": "Ana"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			_ = json.NewEncoder(&buf).Encode(tc.body)
			req := httptest.NewRequest(http.MethodPost, tc.path, &buf)
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			assert.Equal(t, tc.want, resp.Code)
		})
	}
}
