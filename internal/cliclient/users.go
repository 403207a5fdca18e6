package cliclient

import (
	"context"
	"net/url"
)

// ListUsers returns all users (admin only).
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if _, err := c.Get(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns a single user.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if _, err := c.Get(ctx, "/users/"+url.PathEscape(id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser provisions an account (admin only).
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var user User
	if _, err := c.Post(ctx, "/users", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies a partial update.
func (c *Client) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	var user User
	if _, err := c.Put(ctx, "/users/"+url.PathEscape(id), req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account (admin only).
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.Delete(ctx, "/users/"+url.PathEscape(id))
	return err
}

// GetStats returns dashboard statistics (admin only).
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if _, err := c.Get(ctx, "/users/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
