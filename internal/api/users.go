package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnrecognizedUser is returned when the profile endpoint responds with a
// payload no known envelope shape matches.
var ErrUnrecognizedUser = errors.New("api: unrecognized user payload")

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	c.logger.Debug("fetching user profile")

	var raw json.RawMessage

	if err := c.get(ctx, "/api/users/me", &raw); err != nil {
		return nil, err
	}

	return parseUserEnvelope(raw)
}

// parseUserEnvelope extracts the user object from the profile response. The
// backend has shipped several wrappers over time, so the payload is probed
// in fixed priority order:
//
//  1. {"success": ..., "data": {user}}
//  2. {"user": {user}}
//  3. {"data": {user}}
//  4. the bare user object
//
// The first matching shape wins. A match that yields a user without an id
// is rejected rather than passed along half-empty.
func parseUserEnvelope(data []byte) (*User, error) {
	var envelope struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
		User    json.RawMessage `json:"user"`
	}

	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnrecognizedUser, err)
	}

	switch {
	case envelope.Success != nil && isJSONObject(envelope.Data):
		return decodeUser(envelope.Data)
	case isJSONObject(envelope.User):
		return decodeUser(envelope.User)
	case isJSONObject(envelope.Data):
		return decodeUser(envelope.Data)
	default:
		return decodeUser(data)
	}
}

type userWire struct {
	ID       string `json:"_id"`
	AltID    string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func decodeUser(data json.RawMessage) (*User, error) {
	var wire userWire

	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnrecognizedUser, err)
	}

	id := wireID(wire.ID, wire.AltID)
	if id == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrUnrecognizedUser)
	}

	name := wire.Name
	if name == "" {
		name = wire.Username
	}

	return &User{ID: id, Name: name, Email: wire.Email}, nil
}

// isJSONObject reports whether raw holds a JSON object (not null, not a
// scalar). Probing on the raw bytes keeps "data": null from matching.
func isJSONObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}

	return false
}
