// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/oauth2"
)

// PKCEGrant implements the authorization code grant with a PKCE code
// verifier. It's stateless: the verifier it generates must be stored by the
// caller and passed back to Exchange.
type PKCEGrant struct {
	config    *Config
	transport Transport
}

// NewPKCEGrant creates a PKCEGrant.
func NewPKCEGrant(c *Config, t Transport) (*PKCEGrant, error) {
	const op = "auth.NewPKCEGrant"
	if err := validateGrantArgs(c, t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &PKCEGrant{config: c, transport: t}, nil
}

// AuthURL generates a new code verifier and builds the authorization request
// URL carrying its S256 challenge.
func (g *PKCEGrant) AuthURL(req *AuthRequest) (*Redirect, error) {
	const op = "PKCEGrant.AuthURL"
	if req == nil {
		return nil, fmt.Errorf("%s: auth request is nil: %w", op, ErrNilParameter)
	}
	if req.State == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingState)
	}
	v, err := NewCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u := authCodeURL(g.config, req,
		oauth2.SetAuthURLParam("code_challenge", v.Challenge()),
		oauth2.SetAuthURLParam("code_challenge_method", string(v.Method())),
	)
	return &Redirect{
		State:        req.State,
		CodeVerifier: v.Verifier(),
		URL:          u,
	}, nil
}

// Exchange trades an authorization code and the verifier created by AuthURL
// for tokens.
func (g *PKCEGrant) Exchange(ctx context.Context, code, codeVerifier string) (*TokenResponse, error) {
	const op = "PKCEGrant.Exchange"
	if code == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingCode)
	}
	if codeVerifier == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingCodeVerifier)
	}
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {g.config.ClientId},
		"client_secret": {string(g.config.ClientSecret)},
		"code":          {code},
		"redirect_uri":  {g.config.RedirectUrl},
		"code_verifier": {codeVerifier},
	}
	resp, err := postToken(ctx, g.config, g.transport, form)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}
