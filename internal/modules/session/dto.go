package session

import (
	"time"

	"realtysite/internal/remote"
)

type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        remote.User `json:"user"`
	Favorites   int         `json:"favorites"`
}

type SignUpResponse struct {
	User      remote.User `json:"user"`
	Confirmed bool        `json:"confirmed"`
	Message   string      `json:"message"`
}

type MeResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *remote.User `json:"user"`
}
