// Package api is a typed client for the GhostNote HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/ghostnote/internal/netx"
)

// Client calls the GhostNote HTTP API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for the server at baseURL. Every request is bounded
// by timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) url(path string, q url.Values) string {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	return netx.DoJSON(ctx, c.http, netx.Request{
		Method: method,
		URL:    c.url(path, nil),
		Token:  token,
		Body:   body,
	}, out)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, token string, out any) error {
	return netx.DoJSON(ctx, c.http, netx.Request{
		Method: http.MethodGet,
		URL:    c.url(path, q),
		Token:  token,
	}, out)
}

// StatusCode returns the HTTP status carried by err, or 0 if err did not
// come from a server response.
func StatusCode(err error) int {
	var se *netx.StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// IsUnauthorized reports whether the server rejected the session.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}
