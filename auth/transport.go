// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	sdkHttp "github.com/kinde-oss/kinde-go/sdk/http"
)

// TokenResponse is the token endpoint's response. When Error is set the
// other fields must be ignored; use Err to check.
type TokenResponse struct {
	AccessToken      AccessToken  `json:"access_token,omitempty"`
	IdToken          IdToken      `json:"id_token,omitempty"`
	RefreshToken     RefreshToken `json:"refresh_token,omitempty"`
	TokenType        string       `json:"token_type,omitempty"`
	ExpiresIn        int64        `json:"expires_in,omitempty"`
	Scope            string       `json:"scope,omitempty"`
	Error            string       `json:"error,omitempty"`
	ErrorDescription string       `json:"error_description,omitempty"`
}

// Err returns a *ProtocolError when the response carries an error, otherwise
// nil.
func (r *TokenResponse) Err() error {
	if r == nil {
		return nil
	}
	return newProtocolError(r.Error, r.ErrorDescription)
}

// Transport posts token requests to the provider's token endpoint.
type Transport interface {
	// PostForm sends form to endpoint. A provider error payload is reported
	// either as a TokenResponse with Error set or as a *ProtocolError.
	PostForm(ctx context.Context, endpoint string, form url.Values) (*TokenResponse, error)
}

// httpTransport is the default Transport. Requests are made by
// golang.org/x/oauth2 with client_id and client_secret in the form body.
type httpTransport struct {
	client *http.Client
}

var _ Transport = (*httpTransport)(nil)

// newHTTPTransport uses an http client built from the config's ProviderCA.
func newHTTPTransport(c *Config) (*httpTransport, error) {
	const op = "auth.newHTTPTransport"
	client, err := c.HttpClient()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &httpTransport{client: client}, nil
}

// PostForm implements the Transport interface by dispatching on the form's
// grant_type. A client carried by ctx (see HttpClientContext) takes
// precedence over the transport's own.
func (t *httpTransport) PostForm(ctx context.Context, endpoint string, form url.Values) (*TokenResponse, error) {
	const op = "httpTransport.PostForm"
	ctx = sdkHttp.ClientContext(ctx, sdkHttp.ContextClient(ctx, t.client))
	conf := &oauth2.Config{
		ClientID:     form.Get("client_id"),
		ClientSecret: form.Get("client_secret"),
		Endpoint: oauth2.Endpoint{
			TokenURL:  endpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	var tk *oauth2.Token
	var err error
	switch gt := form.Get("grant_type"); gt {
	case "authorization_code":
		conf.RedirectURL = form.Get("redirect_uri")
		var opts []oauth2.AuthCodeOption
		for k := range extraParams(form, "code", "redirect_uri") {
			opts = append(opts, oauth2.SetAuthURLParam(k, form.Get(k)))
		}
		tk, err = conf.Exchange(ctx, form.Get("code"), opts...)
	case "refresh_token":
		tk, err = conf.TokenSource(ctx, &oauth2.Token{RefreshToken: form.Get("refresh_token")}).Token()
	case "client_credentials":
		cc := &clientcredentials.Config{
			ClientID:       conf.ClientID,
			ClientSecret:   conf.ClientSecret,
			TokenURL:       endpoint,
			Scopes:         strings.Fields(form.Get("scope")),
			EndpointParams: extraParams(form, "scope"),
			AuthStyle:      oauth2.AuthStyleInParams,
		}
		tk, err = cc.Token(ctx)
	default:
		return nil, fmt.Errorf("%s: grant type %q: %w", op, gt, ErrUnsupportedGrantType)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, retrieveError(err))
	}
	return newTokenResponse(tk), nil
}

// extraParams returns the form values oauth2 doesn't set itself, less the
// named keys.
func extraParams(form url.Values, omit ...string) url.Values {
	extra := url.Values{}
	for k, v := range form {
		switch k {
		case "grant_type", "client_id", "client_secret":
			continue
		}
		extra[k] = v
	}
	for _, k := range omit {
		delete(extra, k)
	}
	return extra
}

// retrieveError converts an oauth2 error: a provider error payload becomes a
// *ProtocolError, anything else wraps ErrTokenExchange.
func retrieveError(err error) error {
	var rErr *oauth2.RetrieveError
	if !errors.As(err, &rErr) {
		return fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}
	if pErr := newProtocolError(rErr.ErrorCode, rErr.ErrorDescription); pErr != nil {
		return pErr
	}
	status := 0
	if rErr.Response != nil {
		status = rErr.Response.StatusCode
	}
	return fmt.Errorf("unexpected status %d: %w", status, ErrTokenExchange)
}

func newTokenResponse(tk *oauth2.Token) *TokenResponse {
	tr := &TokenResponse{
		AccessToken:  AccessToken(tk.AccessToken),
		RefreshToken: RefreshToken(tk.RefreshToken),
		TokenType:    tk.TokenType,
		ExpiresIn:    extraInt(tk.Extra("expires_in")),
	}
	if s, ok := tk.Extra("id_token").(string); ok {
		tr.IdToken = IdToken(s)
	}
	if s, ok := tk.Extra("scope").(string); ok {
		tr.Scope = s
	}
	return tr
}

// extraInt reads a number from a JSON (float64) or form encoded (int64 or
// string) token response.
func extraInt(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}
