// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// RefreshGrant exchanges a refresh token for a new token set.
type RefreshGrant struct {
	config    *Config
	transport Transport
}

// NewRefreshGrant creates a RefreshGrant.
func NewRefreshGrant(c *Config, t Transport) (*RefreshGrant, error) {
	const op = "auth.NewRefreshGrant"
	if err := validateGrantArgs(c, t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &RefreshGrant{config: c, transport: t}, nil
}

// Token refreshes the token set. A provider error response fails with
// ErrRefreshTokenInvalid wrapping the *ProtocolError.
func (g *RefreshGrant) Token(ctx context.Context, refreshToken RefreshToken) (*TokenResponse, error) {
	const op = "RefreshGrant.Token"
	if refreshToken == "" {
		return nil, fmt.Errorf("%s: refresh token is empty: %w", op, ErrRefreshTokenInvalid)
	}
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {g.config.ClientId},
		"client_secret": {string(g.config.ClientSecret)},
		"refresh_token": {string(refreshToken)},
	}
	resp, err := postToken(ctx, g.config, g.transport, form)
	var pErr *ProtocolError
	switch {
	case errors.As(err, &pErr):
		return nil, fmt.Errorf("%s: %w: %w", op, ErrRefreshTokenInvalid, pErr)
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}
