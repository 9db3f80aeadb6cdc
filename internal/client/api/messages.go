package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Send posts an anonymous message to username.
func (c *Client) Send(ctx context.Context, username, content, category string) (*SendResult, error) {
	body := map[string]string{"username": username, "content": content}
	if category != "" {
		body["category"] = category
	}

	var out struct {
		Data SendResult `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/send-message", "", body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Inbox lists the session owner's messages.
func (c *Client) Inbox(ctx context.Context, token string, f InboxFilter) (*Inbox, error) {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if f.UnreadOnly {
		q.Set("unread", strconv.FormatBool(true))
	}

	var out Inbox
	if err := c.get(ctx, "/api/get-messages", q, token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes one message from the owner's inbox.
func (c *Client) Delete(ctx context.Context, token, messageID string) error {
	return c.do(ctx, http.MethodDelete, "/api/delete-message/"+url.PathEscape(messageID), token, nil, nil)
}

// MarkRead flags one message as read.
func (c *Client) MarkRead(ctx context.Context, token, messageID string) error {
	return c.do(ctx, http.MethodPatch, "/api/messages/"+url.PathEscape(messageID)+"/read", token, nil, nil)
}

// Accepting reports the owner's accept-messages flag.
func (c *Client) Accepting(ctx context.Context, token string) (bool, error) {
	var out struct {
		IsAcceptingMessages bool `json:"isAcceptingMessages"`
	}
	err := c.get(ctx, "/api/accept-messages", nil, token, &out)
	return out.IsAcceptingMessages, err
}

// SetAccepting updates the owner's accept-messages flag.
func (c *Client) SetAccepting(ctx context.Context, token string, on bool) error {
	return c.do(ctx, http.MethodPost, "/api/accept-messages", token, map[string]bool{"isAcceptingMessages": on}, nil)
}

// Suggest fetches message ideas. The server always answers, falling back to
// canned suggestions when its provider is unavailable.
func (c *Client) Suggest(ctx context.Context, username, category string) (*Suggestions, error) {
	var out Suggestions
	err := c.do(ctx, http.MethodPost, "/api/suggest-message", "", map[string]string{
		"username": username,
		"category": category,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns the public platform counters.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var out struct {
		Data Stats `json:"data"`
	}
	if err := c.get(ctx, "/api/stats", nil, "", &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}
