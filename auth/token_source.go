// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// tokenSource adapts Client.GetToken to oauth2.TokenSource.
type tokenSource struct {
	ctx    context.Context
	client *Client
	sid    string
}

var _ oauth2.TokenSource = (*tokenSource)(nil)

// TokenSource returns an oauth2.TokenSource for the session's access token.
// Each Token call goes through GetToken, so an expired token is renewed.
func (c *Client) TokenSource(ctx context.Context, sid string) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, client: c, sid: sid}
}

// Token implements oauth2.TokenSource.
func (s *tokenSource) Token() (*oauth2.Token, error) {
	const op = "tokenSource.Token"
	tk, err := s.client.GetToken(s.ctx, s.sid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	exp, _, err := s.client.expiry(s.ctx, s.sid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &oauth2.Token{
		AccessToken: string(tk),
		TokenType:   "Bearer",
		Expiry:      exp,
	}, nil
}

// HTTPClient returns an http client that authorizes its requests with the
// session's access token, for calling APIs protected by the provider.
func (c *Client) HTTPClient(ctx context.Context, sid string) *http.Client {
	return oauth2.NewClient(ctx, c.TokenSource(ctx, sid))
}
