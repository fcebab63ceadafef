package api

import (
	"context"
	"net/http"

	"dayplan-cli/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

// Login exchanges credentials for a bearer token. The token is NOT installed
// on the client; callers decide when to adopt it (see SetToken).
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Register creates an account. The backend expects a follow-up login.
func (c *Client) Register(ctx context.Context, email, password, username string) error {
	return c.do(ctx, http.MethodPost, "/register", registerRequest{
		Email:    email,
		Password: password,
		Username: username,
	}, nil)
}

// Me returns the user the current token belongs to.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, "/me", nil, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}
