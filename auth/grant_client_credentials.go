// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"context"
	"fmt"
	"net/url"
)

// ClientCredentialsGrant implements the client credentials grant, which has
// no authorization request or callback.
type ClientCredentialsGrant struct {
	config    *Config
	transport Transport
}

// NewClientCredentialsGrant creates a ClientCredentialsGrant.
func NewClientCredentialsGrant(c *Config, t Transport) (*ClientCredentialsGrant, error) {
	const op = "auth.NewClientCredentialsGrant"
	if err := validateGrantArgs(c, t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &ClientCredentialsGrant{config: c, transport: t}, nil
}

// Token requests a token for the application itself. An empty audience or
// scope falls back to the config's.
func (g *ClientCredentialsGrant) Token(ctx context.Context, audience, scope string) (*TokenResponse, error) {
	const op = "ClientCredentialsGrant.Token"
	if audience == "" {
		audience = g.config.Audience
	}
	if scope == "" {
		scope = g.config.Scope
	}
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {g.config.ClientId},
		"client_secret": {string(g.config.ClientSecret)},
		"scope":         {scope},
	}
	if audience != "" {
		form.Set("audience", audience)
	}
	resp, err := postToken(ctx, g.config, g.transport, form)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}
