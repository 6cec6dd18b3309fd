package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"realtysite/internal/modules/session"
	"realtysite/internal/pkg/response"
)

// RequireAdmin guards the admin area. Any signed-in user is admitted when
// adminEmails is empty. While the session is still being resolved the
// caller gets 503, never a redirect-worthy 401.
func RequireAdmin(adminEmails []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, ok := session.FromContext(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Faça login para acessar o painel.")
			return
		}
		if ws.Session.Loading() {
			response.Abort(c, http.StatusServiceUnavailable, "SESSION_LOADING", "Verificando sessão")
			return
		}

		u := ws.Session.User()
		if u == nil {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Faça login para acessar o painel.")
			return
		}
		if len(adminEmails) > 0 && !slices.Contains(adminEmails, strings.ToLower(u.Email)) {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Acesso restrito ao administrador.")
			return
		}

		c.Next()
	}
}
