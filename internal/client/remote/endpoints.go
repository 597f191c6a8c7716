package remote

import (
	"context"
	"fmt"
	"net/url"

	"tovakustatus-backend/internal/model"
)

type LoginResult struct {
	Token   string            `json:"token"`
	Session model.AuthSession `json:"session"`
}

// RegisterVisitor announces uuid to the server and returns the stored record.
func (c *Client) RegisterVisitor(ctx context.Context, uuid string) (*model.Visitor, error) {
	var v model.Visitor
	if err := c.Post(ctx, "/visitors", map[string]string{"uuid": uuid}, &v); err != nil {
		return nil, err
	}
	if v.UUID != uuid {
		return nil, fmt.Errorf("register visitor %s: %w (got uuid %q)", uuid, ErrMissingRecord, v.UUID)
	}
	return &v, nil
}

func (c *Client) GetVisitor(ctx context.Context, uuid string) (*model.Visitor, error) {
	var v model.Visitor
	if err := c.Get(ctx, []string{"visitors", uuid}, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var out LoginResult
	body := map[string]string{"username": username, "password": password}
	if err := c.Post(ctx, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.Post(ctx, "/auth/logout", nil, nil)
}

// RecordView bumps the view counter of a blog post or talent.
func (c *Client) RecordView(ctx context.Context, collection, id string) error {
	return c.Post(ctx, "/"+url.PathEscape(collection)+"/"+url.PathEscape(id)+"/views", nil, nil)
}
