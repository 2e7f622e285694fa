package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fiitjobs/jobadmin/internal/session"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginUser is the optional user descriptor some backends return with the token
type LoginUser struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token string     `json:"token"`
	User  *LoginUser `json:"user,omitempty"`
}

// Identity builds the display identity for a successful login
func (r *LoginResponse) Identity(email string) session.Identity {
	identity := session.Identity{Email: email}
	if r.User != nil {
		if r.User.Email != "" {
			identity.Email = r.User.Email
		}
		identity.Name = r.User.Name
		identity.Role = r.User.Role
	}
	return identity
}

// Login exchanges email and password for a credential. Any non-2xx response,
// or a 2xx without a token, is reported as ErrAuthentication.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body, err := jsonBody(LoginRequest{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		return nil, err
	}

	var resp LoginResponse
	err = c.do(ctx, request{
		op:          "login",
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        body,
		contentType: "application/json",
	}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
		}
		return nil, err
	}

	if resp.Token == "" {
		return nil, fmt.Errorf("%w: invalid login response", ErrAuthentication)
	}

	return &resp, nil
}

// SessionLogin is the part of the session context a login flow needs
type SessionLogin interface {
	Login(credential string, identity session.Identity) error
}

// Authenticate performs the login exchange and, on success, stores the
// credential and identity in sessions. On failure the session is untouched.
func (c *Client) Authenticate(ctx context.Context, sessions SessionLogin, email, password string) (session.Identity, error) {
	resp, err := c.Login(ctx, email, password)
	if err != nil {
		return session.Identity{}, err
	}

	identity := resp.Identity(strings.TrimSpace(email))
	if err := sessions.Login(resp.Token, identity); err != nil {
		return session.Identity{}, err
	}

	c.logger.Info().Str("email", identity.Email).Msg("Admin logged in")
	return identity, nil
}
