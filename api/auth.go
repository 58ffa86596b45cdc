package api

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token and user identity via
// POST /api/auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	var creds Credentials
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", nil, loginRequest{Email: email, Password: password}, &creds)
	if err != nil {
		return Credentials{}, err
	}
	if err := validateCredentials(creds); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// Register creates an account via POST /api/auth/register. The response
// shape matches Login: the new account is signed in immediately.
func (c *Client) Register(ctx context.Context, name, email, password string) (Credentials, error) {
	var creds Credentials
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", nil, registerRequest{Name: name, Email: email, Password: password}, &creds)
	if err != nil {
		return Credentials{}, err
	}
	if err := validateCredentials(creds); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// validateCredentials rejects a 2xx auth response that is missing either
// half of the token/user pair, so callers never see one without the other.
func validateCredentials(creds Credentials) error {
	if creds.Token == "" || creds.User.ID == "" {
		return errors.Wrap(MalformedResponseErr, "[validateCredentials] missing token or user")
	}
	return nil
}
