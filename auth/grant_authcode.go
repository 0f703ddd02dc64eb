// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"context"
	"fmt"
	"net/url"
)

// AuthCodeGrant implements the authorization code grant. It's stateless.
type AuthCodeGrant struct {
	config    *Config
	transport Transport
}

// NewAuthCodeGrant creates an AuthCodeGrant.
func NewAuthCodeGrant(c *Config, t Transport) (*AuthCodeGrant, error) {
	const op = "auth.NewAuthCodeGrant"
	if err := validateGrantArgs(c, t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &AuthCodeGrant{config: c, transport: t}, nil
}

// AuthURL builds the authorization request URL.
func (g *AuthCodeGrant) AuthURL(req *AuthRequest) (*Redirect, error) {
	const op = "AuthCodeGrant.AuthURL"
	if req == nil {
		return nil, fmt.Errorf("%s: auth request is nil: %w", op, ErrNilParameter)
	}
	if req.State == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingState)
	}
	return &Redirect{
		State: req.State,
		URL:   authCodeURL(g.config, req),
	}, nil
}

// Exchange trades an authorization code for tokens. The code verifier is
// ignored.
func (g *AuthCodeGrant) Exchange(ctx context.Context, code, _ string) (*TokenResponse, error) {
	const op = "AuthCodeGrant.Exchange"
	if code == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingCode)
	}
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {g.config.ClientId},
		"client_secret": {string(g.config.ClientSecret)},
		"code":          {code},
		"redirect_uri":  {g.config.RedirectUrl},
	}
	resp, err := postToken(ctx, g.config, g.transport, form)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}
