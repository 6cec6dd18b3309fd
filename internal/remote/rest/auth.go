package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"realtysite/internal/remote"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authUser struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   int64     `json:"expires_at"`
	User        *authUser `json:"user"`
}

// signupResponse is either a session (auto-confirm) or the bare user.
type signupResponse struct {
	tokenResponse
	authUser
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*remote.Session, error) {
	var res tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/v1/token", url.Values{"grant_type": {"password"}},
		credentials{Email: email, Password: password}, "", nil, &res)
	if err != nil {
		return nil, remote.Wrap("signin", "", translateAuth(err))
	}
	if res.AccessToken == "" || res.User == nil {
		return nil, remote.Wrap("signin", "", errors.New("empty session in response"))
	}

	expiresAt := time.Now().Add(time.Duration(res.ExpiresIn) * time.Second)
	if res.ExpiresAt > 0 {
		expiresAt = time.Unix(res.ExpiresAt, 0)
	}
	user := remote.User{ID: res.User.ID, Email: res.User.Email}
	c.authEvents.Notify(ctx, remote.AuthEvent{Type: remote.EventSignedIn, AccessToken: res.AccessToken, User: &user})
	return &remote.Session{AccessToken: res.AccessToken, ExpiresAt: expiresAt, User: user}, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*remote.Account, error) {
	var res signupResponse
	err := c.do(ctx, http.MethodPost, "/auth/v1/signup", nil,
		credentials{Email: email, Password: password}, "", nil, &res)
	if err != nil {
		return nil, remote.Wrap("signup", "", translateAuth(err))
	}

	u := res.authUser
	if res.tokenResponse.User != nil {
		u = *res.tokenResponse.User
	}
	if u.ID == "" {
		return nil, remote.Wrap("signup", "", errors.New("empty user in response"))
	}
	return &remote.Account{
		User:      remote.User{ID: u.ID, Email: u.Email},
		Confirmed: u.EmailConfirmedAt != nil || res.AccessToken != "",
	}, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, accessToken, nil, nil)
	var apiErr *apiError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
		err = nil
	}
	if err != nil {
		return remote.Wrap("signout", "", err)
	}
	c.authEvents.Notify(ctx, remote.AuthEvent{Type: remote.EventSignedOut, AccessToken: accessToken})
	return nil
}

func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*remote.User, error) {
	if accessToken == "" {
		return nil, nil
	}
	var u authUser
	err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, nil, accessToken, nil, &u)
	var apiErr *apiError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
		return nil, nil
	}
	if err != nil {
		return nil, remote.Wrap("user", "", err)
	}
	return &remote.User{ID: u.ID, Email: u.Email}, nil
}

// OnAuthStateChange reports sign-ins and sign-outs made through this client.
func (c *Client) OnAuthStateChange(fn func(remote.AuthEvent)) (unsubscribe func()) {
	return c.authEvents.Add(func(_ context.Context, ev remote.AuthEvent) { fn(ev) })
}

func translateAuth(err error) error {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return err
	}
	text := strings.ToLower(strings.Join([]string{
		apiErr.ErrorCode, apiErr.ErrorName, apiErr.ErrorDescription, apiErr.Msg, apiErr.Message,
	}, " "))
	switch {
	case strings.Contains(text, "email_not_confirmed"), strings.Contains(text, "email not confirmed"):
		return fmt.Errorf("%w: %v", remote.ErrEmailNotConfirmed, err)
	case strings.Contains(text, "invalid_credentials"), strings.Contains(text, "invalid login credentials"),
		strings.Contains(text, "invalid_grant"):
		return fmt.Errorf("%w: %v", remote.ErrInvalidCredentials, err)
	case strings.Contains(text, "user_already_exists"), strings.Contains(text, "already registered"):
		return fmt.Errorf("%w: %v", remote.ErrUserExists, err)
	}
	return err
}
