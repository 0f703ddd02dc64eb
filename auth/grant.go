// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// StartPage selects the page the provider shows first.
type StartPage string

const (
	StartPageLogin        StartPage = "login"
	StartPageRegistration StartPage = "registration"
)

// AuthRequest holds the parameters of one authorization request. Optional
// fields are only sent when they're not empty.
type AuthRequest struct {
	// State is required.
	State string

	// StartPage defaults to StartPageLogin.
	StartPage StartPage

	// Audience overrides the config's audience.
	Audience string

	OrgCode      string
	OrgName      string
	IsCreateOrg  bool
	Lang         string
	LoginHint    string
	ConnectionId string
}

// Redirect is the result of building an authorization request. The caller
// must persist State (and CodeVerifier for PKCE) before sending the user
// agent to URL.
type Redirect struct {
	State        string
	CodeVerifier string
	URL          string
}

// redirectGrant is implemented by the grants that have an authorization
// request and callback phase.
type redirectGrant interface {
	AuthURL(req *AuthRequest) (*Redirect, error)
	Exchange(ctx context.Context, code, codeVerifier string) (*TokenResponse, error)
}

var (
	_ redirectGrant = (*AuthCodeGrant)(nil)
	_ redirectGrant = (*PKCEGrant)(nil)
)

func validateGrantArgs(c *Config, t Transport) error {
	if c == nil {
		return fmt.Errorf("config is nil: %w", ErrNilParameter)
	}
	if t == nil {
		return fmt.Errorf("transport is nil: %w", ErrNilParameter)
	}
	return nil
}

// oauth2Config adapts c for building authorization URLs.
func oauth2Config(c *Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:    c.ClientId,
		RedirectURL: c.RedirectUrl,
		Scopes:      strings.Fields(c.Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.AuthorizationURL(),
			TokenURL: c.TokenURL(),
		},
	}
}

// authCodeURL builds the authorization URL with the required params plus
// every non empty optional param.
func authCodeURL(c *Config, req *AuthRequest, extra ...oauth2.AuthCodeOption) string {
	startPage := req.StartPage
	if startPage == "" {
		startPage = StartPageLogin
	}
	aud := req.Audience
	if aud == "" {
		aud = c.Audience
	}
	params := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("start_page", string(startPage))}
	optional := func(key, value string) {
		if value != "" {
			params = append(params, oauth2.SetAuthURLParam(key, value))
		}
	}
	optional("audience", aud)
	optional("org_code", req.OrgCode)
	if req.IsCreateOrg {
		optional("is_create_org", "true")
	}
	optional("org_name", req.OrgName)
	optional("lang", req.Lang)
	optional("login_hint", req.LoginHint)
	optional("connection_id", req.ConnectionId)
	params = append(params, extra...)
	return oauth2Config(c).AuthCodeURL(req.State, params...)
}

// postToken posts form to the token endpoint and converts a provider error
// payload into an error.
func postToken(ctx context.Context, c *Config, t Transport, form url.Values) (*TokenResponse, error) {
	resp, err := t.PostForm(ctx, c.TokenURL(), form)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("empty token response: %w", ErrTokenExchange)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}
