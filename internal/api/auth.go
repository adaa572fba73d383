package api

import (
	"context"
	"net/http"

	"github.com/abhisek/devquest/internal/profile"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// Login exchanges email and password for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var tok wireToken
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   credentials{Email: email, Password: password},
		schema: "token",
		out:    &tok,
		public: true,
	})
	if err != nil {
		return "", err
	}
	return deref(tok.AccessToken), nil
}

// Register creates an account. The returned token is empty when the service
// requires a separate login.
func (c *Client) Register(ctx context.Context, email, password, fullName string) (string, error) {
	var tok wireToken
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/register",
		body:   credentials{Email: email, Password: password, FullName: fullName},
		schema: "register",
		out:    &tok,
		public: true,
	})
	if err != nil {
		return "", err
	}
	return deref(tok.AccessToken), nil
}

// CurrentUser returns the profile the stored credential belongs to.
func (c *Client) CurrentUser(ctx context.Context) (profile.UserProfile, error) {
	var u wireUser
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/me",
		schema: "user",
		out:    &u,
	})
	if err != nil {
		return profile.UserProfile{}, err
	}
	return u.toProfile(), nil
}
