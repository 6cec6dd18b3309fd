package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"

	"realtysite/internal/modules/favorite"
	"realtysite/internal/modules/session"
	"realtysite/internal/pkg/response"
	"realtysite/internal/remote"
)

const userIDKey = "user_id"

// SessionLoader resolves the bearer token, when there is one, into the
// caller's workspace. Requests without a token pass through untouched.
func SessionLoader(workspaces *session.Workspaces) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		ws, err := workspaces.Resolve(c.Request.Context(), token)
		if err != nil {
			glog.Warningf("session resolve failed request_id=%s: %v", requestID(c), err)
		}
		session.Attach(c, ws)
		if u := ws.Session.User(); u != nil {
			c.Set(userIDKey, u.ID)
			c.Request = c.Request.WithContext(remote.WithAccessToken(c.Request.Context(), token))
		}

		c.Next()
	}
}

// RequireSession rejects callers without a signed-in session.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, ok := session.FromContext(c)
		switch {
		case ok && ws.Session.Loading():
			response.Abort(c, http.StatusServiceUnavailable, "SESSION_LOADING", "Verificando sessão")
		case !ok || !ws.Session.Authenticated():
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", favorite.LoginRequiredMessage)
		default:
			c.Next()
		}
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	// Browsers cannot set headers on websocket upgrades.
	return c.Query("access_token")
}
