package api

import (
	"context"
	"net/http"
	"net/url"
)

// SignUp registers a new account and returns the server's confirmation text.
func (c *Client) SignUp(ctx context.Context, username, email, password string) (string, error) {
	var out envelope
	err := c.do(ctx, http.MethodPost, "/api/sign-up", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &out)
	return out.Message, err
}

// VerifyCode confirms an account with the emailed code.
func (c *Client) VerifyCode(ctx context.Context, username, code string) error {
	return c.do(ctx, http.MethodPost, "/api/verify-code", "", map[string]string{
		"username": username,
		"code":     code,
	}, nil)
}

// ResendCode asks the server to issue and email a fresh code.
func (c *Client) ResendCode(ctx context.Context, username string) error {
	return c.do(ctx, http.MethodPost, "/api/resend-code", "", map[string]string{"username": username}, nil)
}

// SignIn authenticates by email or username.
func (c *Client) SignIn(ctx context.Context, identifier, password string) (*Session, error) {
	var out Session
	err := c.do(ctx, http.MethodPost, "/api/sign-in", "", map[string]string{
		"identifier": identifier,
		"password":   password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh trades a valid session for a new one carrying current flags.
func (c *Client) Refresh(ctx context.Context, token string) (*Session, error) {
	var out Session
	if err := c.do(ctx, http.MethodPost, "/api/session/refresh", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckUsernameUnique returns nil when username is free to register.
func (c *Client) CheckUsernameUnique(ctx context.Context, username string) error {
	return c.get(ctx, "/api/check-username-unique", url.Values{"username": {username}}, "", nil)
}

// UserStatus looks up a recipient. An unknown user yields Exists=false and
// no error.
func (c *Client) UserStatus(ctx context.Context, username string) (*UserStatus, error) {
	var out UserStatus
	err := c.get(ctx, "/api/check-user-status", url.Values{"username": {username}}, "", &out)
	if StatusCode(err) == http.StatusNotFound {
		return &UserStatus{Username: username}, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
