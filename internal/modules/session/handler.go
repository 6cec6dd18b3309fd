package session

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"realtysite/internal/pkg/response"
	"realtysite/internal/pkg/validator"
	"realtysite/internal/remote"
)

const signUpMessage = "Conta criada! Verifique seu email para confirmar."

type Handler struct {
	workspaces *Workspaces
}

func NewHandler(workspaces *Workspaces) *Handler {
	return &Handler{workspaces: workspaces}
}

func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/signup", h.SignUp)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", h.Me)
	}
}

// Login handles POST /api/v1/auth/login.
//
// @Summary  Sign in
// @Tags     Auth
// @Param    request body CredentialsRequest true "email and password"
// @Success  200 {object} LoginResponse
// @Failure  401 {object} response.Envelope "invalid credentials"
// @Failure  403 {object} response.Envelope "email not confirmed"
// @Router   /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req CredentialsRequest
	if !bindCredentials(c, &req) {
		return
	}

	ws, err := h.workspaces.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	sess := ws.Session.Session()
	response.Success(c, http.StatusOK, LoginResponse{
		AccessToken: sess.AccessToken,
		ExpiresAt:   sess.ExpiresAt,
		User:        sess.User,
		Favorites:   len(ws.Favorites.List()),
	})
}

// SignUp handles POST /api/v1/auth/signup. It never signs in.
//
// @Summary  Create an account
// @Tags     Auth
// @Param    request body CredentialsRequest true "email and password"
// @Success  201 {object} SignUpResponse
// @Failure  409 {object} response.Envelope "email already registered"
// @Router   /auth/signup [post]
func (h *Handler) SignUp(c *gin.Context) {
	var req CredentialsRequest
	if !bindCredentials(c, &req) {
		return
	}

	acc, err := h.workspaces.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, SignUpResponse{
		User:      acc.User,
		Confirmed: acc.Confirmed,
		Message:   signUpMessage,
	})
}

// Logout handles POST /api/v1/auth/logout. Without a session it succeeds.
func (h *Handler) Logout(c *gin.Context) {
	if ws, ok := FromContext(c); ok && ws.Session.Authenticated() {
		// The session is gone locally whatever the remote answered.
		_ = h.workspaces.Logout(c.Request.Context(), ws)
	}
	response.Success(c, http.StatusOK, MeResponse{Authenticated: false})
}

// Me handles GET /api/v1/auth/me.
func (h *Handler) Me(c *gin.Context) {
	ws, ok := FromContext(c)
	if !ok {
		response.Success(c, http.StatusOK, MeResponse{})
		return
	}
	if ws.Session.Loading() {
		response.Error(c, http.StatusServiceUnavailable, "SESSION_LOADING", "Verificando sessão")
		return
	}
	u := ws.Session.User()
	response.Success(c, http.StatusOK, MeResponse{Authenticated: u != nil, User: u})
}

func bindCredentials(c *gin.Context, req *CredentialsRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "Formato de requisição inválido")
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationFailed(c, errs)
		return false
	}
	return true
}

// writeAuthError passes the auth service message through unchanged.
func writeAuthError(c *gin.Context, err error) {
	message := err.Error()
	var re *remote.Error
	if errors.As(err, &re) {
		message = re.Err.Error()
	}

	switch {
	case errors.Is(err, remote.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", message)
	case errors.Is(err, remote.ErrEmailNotConfirmed):
		response.Error(c, http.StatusForbidden, "EMAIL_NOT_CONFIRMED", message)
	case errors.Is(err, remote.ErrUserExists):
		response.Error(c, http.StatusConflict, "EMAIL_EXISTS", message)
	default:
		response.Error(c, http.StatusBadGateway, "AUTH_UNAVAILABLE", "Erro ao processar solicitação")
	}
}
