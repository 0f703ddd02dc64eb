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
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"

	"github.com/kinde-oss/kinde-go/session"
)

// Client orchestrates the configured grant for many sessions. Sessions are
// keyed by the caller's session id in the session.Store. A Client is safe for
// concurrent use.
type Client struct {
	config    *Config
	store     session.Store
	transport Transport
	logger    hclog.Logger
	metrics   *Metrics
	now       func() time.Time

	redirect    redirectGrant
	credentials *ClientCredentialsGrant
	refresh     *RefreshGrant

	// refreshGroup collapses concurrent refreshes of one session.
	refreshGroup singleflight.Group
}

// NewClient creates a Client. The config is copied and must be valid.
// Supported options:
//
//	WithLogger
//	WithTransport
//	WithMetrics
//	WithNow
func NewClient(c *Config, store session.Store, opt ...Option) (*Client, error) {
	const op = "auth.NewClient"
	if c == nil {
		return nil, fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	if store == nil {
		return nil, fmt.Errorf("%s: session store is nil: %w", op, ErrNilParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", op, err)
	}
	opts := getClientOpts(opt...)

	cl := &Client{
		config:    c.Clone(),
		store:     store,
		transport: opts.withTransport,
		logger:    opts.withLogger,
		metrics:   opts.withMetrics,
		now:       opts.withNow,
	}
	if cl.transport == nil {
		t, err := newHTTPTransport(cl.config)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		cl.transport = t
	}

	var err error
	switch cl.config.GrantType {
	case AuthorizationCode:
		cl.redirect, err = NewAuthCodeGrant(cl.config, cl.transport)
	case PKCE:
		cl.redirect, err = NewPKCEGrant(cl.config, cl.transport)
	case ClientCredentials:
		cl.credentials, err = NewClientCredentialsGrant(cl.config, cl.transport)
	default:
		err = fmt.Errorf("grant type %q: %w", cl.config.GrantType, ErrUnsupportedGrantType)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if cl.refresh, err = NewRefreshGrant(cl.config, cl.transport); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cl, nil
}

// Config returns a copy of the client's config.
func (c *Client) Config() *Config {
	return c.config.Clone()
}

// LoginResult is returned by Login. Exactly one of Authenticated or Redirect
// is set.
type LoginResult struct {
	// Authenticated is true when the session already holds a valid token or
	// the client credentials exchange completed.
	Authenticated bool

	// Redirect is where to send the user agent for the authorization code
	// and PKCE grants.
	Redirect *Redirect

	// Token is the client credentials token response, when one was
	// requested.
	Token *TokenResponse
}

// Login starts authentication for the session. A session that already holds
// an unexpired token is returned as authenticated without any request.
// Supported options:
//
//	WithState
//	WithOrgCode
//	WithOrgName
//	WithLang
//	WithLoginHint
//	WithConnectionId
//	WithAudience
//	WithScope
func (c *Client) Login(ctx context.Context, sid string, opt ...Option) (*LoginResult, error) {
	const op = "Client.Login"
	if sid == "" {
		return nil, fmt.Errorf("%s: session id is empty: %w", op, ErrInvalidParameter)
	}
	authed, err := c.IsAuthenticated(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if authed {
		c.logger.Debug("login skipped, session already authenticated")
		return &LoginResult{Authenticated: true}, nil
	}
	opts := getRequestOpts(opt...)

	if c.config.GrantType == ClientCredentials {
		tr, err := c.clientCredentialsToken(ctx, opts.withAudience, opts.withScope)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := c.SaveToken(ctx, sid, tr); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &LoginResult{Authenticated: true, Token: tr}, nil
	}

	r, err := c.authorize(ctx, sid, &AuthRequest{StartPage: StartPageLogin}, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &LoginResult{Redirect: r}, nil
}

// Register starts a registration for the session. It supports the same
// options as Login, except WithScope which only applies to client
// credentials.
func (c *Client) Register(ctx context.Context, sid string, opt ...Option) (*Redirect, error) {
	const op = "Client.Register"
	r, err := c.startRegistration(ctx, sid, false, opt...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// CreateOrg starts a registration that creates a new organization, named
// with WithOrgName.
func (c *Client) CreateOrg(ctx context.Context, sid string, opt ...Option) (*Redirect, error) {
	const op = "Client.CreateOrg"
	r, err := c.startRegistration(ctx, sid, true, opt...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

func (c *Client) startRegistration(ctx context.Context, sid string, createOrg bool, opt ...Option) (*Redirect, error) {
	if sid == "" {
		return nil, fmt.Errorf("session id is empty: %w", ErrInvalidParameter)
	}
	if c.redirect == nil {
		return nil, fmt.Errorf("registration with grant type %q: %w", c.config.GrantType, ErrUnsupportedGrantType)
	}
	req := &AuthRequest{StartPage: StartPageRegistration, IsCreateOrg: createOrg}
	return c.authorize(ctx, sid, req, getRequestOpts(opt...))
}

// authorize completes req from opts, builds the redirect and persists its
// state and code verifier.
func (c *Client) authorize(ctx context.Context, sid string, req *AuthRequest, opts requestOptions) (*Redirect, error) {
	req.State = opts.withState
	if req.State == "" {
		if c.config.RequireCallerState {
			return nil, fmt.Errorf("caller state is required: %w", ErrMissingState)
		}
		var err error
		if req.State, err = NewState(); err != nil {
			return nil, err
		}
	}
	req.Audience = opts.withAudience
	req.OrgCode = opts.withOrgCode
	req.OrgName = opts.withOrgName
	req.LoginHint = opts.withLoginHint
	req.ConnectionId = opts.withConnectionId
	if opts.withLang != language.Und {
		req.Lang = opts.withLang.String()
	}

	r, err := c.redirect.AuthURL(req)
	if err != nil {
		return nil, err
	}
	if err := c.set(ctx, sid, KeyOAuthState, []byte(r.State)); err != nil {
		return nil, err
	}
	// a verifier left over from an earlier PKCE request must not be reused
	if err := c.setOrDelete(ctx, sid, KeyOAuthCodeVerifier, r.CodeVerifier); err != nil {
		return nil, err
	}
	c.logger.Debug("authorization request created", "start_page", req.StartPage, "grant_type", c.config.GrantType)
	return r, nil
}

// CallbackParams are the query parameters the provider sends to the
// redirect URL.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// CallbackParamsFromRequest reads the callback parameters from the request's
// query.
func CallbackParamsFromRequest(r *http.Request) *CallbackParams {
	if r == nil || r.URL == nil {
		return &CallbackParams{}
	}
	q := r.URL.Query()
	return &CallbackParams{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}
}

// HandleCallback completes an authorization code or PKCE flow. The steps run
// in order and the first failure is returned:
//
//   - a provider error is returned as a *ProtocolError and the session is
//     left untouched
//   - the state must exactly match the stored state (ErrResponseStateInvalid)
//   - the code must be present (ErrMissingCode)
//   - for PKCE the stored verifier must be present (ErrMissingCodeVerifier)
//   - the code is exchanged; a provider error is returned as a
//     *ProtocolError and nothing is persisted
//
// On success the tokens are saved and the stored state and verifier are
// deleted so the callback can't be replayed.
func (c *Client) HandleCallback(ctx context.Context, sid string, p *CallbackParams) (*TokenResponse, error) {
	const op = "Client.HandleCallback"
	if sid == "" {
		return nil, fmt.Errorf("%s: session id is empty: %w", op, ErrInvalidParameter)
	}
	if p == nil {
		return nil, fmt.Errorf("%s: callback params are nil: %w", op, ErrNilParameter)
	}
	if c.redirect == nil {
		return nil, fmt.Errorf("%s: callback with grant type %q: %w", op, c.config.GrantType, ErrUnsupportedGrantType)
	}
	if err := newProtocolError(p.Error, p.ErrorDescription); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	stored, err := c.getString(ctx, sid, KeyOAuthState)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := validateState(stored, p.State); err != nil {
		c.logger.Warn("callback state validation failed")
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if p.Code == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingCode)
	}
	var verifier string
	if c.config.GrantType == PKCE {
		if verifier, err = c.getString(ctx, sid, KeyOAuthCodeVerifier); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if verifier == "" {
			return nil, fmt.Errorf("%s: %w", op, ErrMissingCodeVerifier)
		}
	}

	tr, err := c.observe(string(c.config.GrantType), func() (*TokenResponse, error) {
		return c.redirect.Exchange(ctx, p.Code, verifier)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.SaveToken(ctx, sid, tr); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.del(ctx, sid, KeyOAuthState); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.del(ctx, sid, KeyOAuthCodeVerifier); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.logger.Debug("callback completed", "grant_type", c.config.GrantType)
	return tr, nil
}

// SaveToken persists the token response into the session, replacing every
// token field: a field missing from tr is deleted. It's the only writer of
// the derived user and featureFlags fields.
func (c *Client) SaveToken(ctx context.Context, sid string, tr *TokenResponse) error {
	const op = "Client.SaveToken"
	if sid == "" {
		return fmt.Errorf("%s: session id is empty: %w", op, ErrInvalidParameter)
	}
	if tr == nil {
		return fmt.Errorf("%s: token response is nil: %w", op, ErrNilParameter)
	}
	if err := tr.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	fields := []struct{ key, value string }{
		{KeyAccessToken, string(tr.AccessToken)},
		{KeyIdToken, string(tr.IdToken)},
		{KeyRefreshToken, string(tr.RefreshToken)},
		{KeyLoginTimeStamp, strconv.FormatInt(c.now().UnixMilli(), 10)},
		{KeyExpiresIn, ""},
	}
	if tr.ExpiresIn > 0 {
		fields[4].value = strconv.FormatInt(tr.ExpiresIn, 10)
	}
	for _, f := range fields {
		if err := c.setOrDelete(ctx, sid, f.key, f.value); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	var user interface{}
	if claims := decodeClaims(string(tr.IdToken)); claims != nil {
		user = userFromClaims(claims)
	}
	if err := c.setJSON(ctx, sid, KeyUser, user); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	var flags interface{}
	if f := flagsFromClaims(decodeClaims(string(tr.AccessToken))); f != nil {
		flags = f
	}
	if err := c.setJSON(ctx, sid, KeyFeatureFlags, flags); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// expiry returns when the session's token expires; ok is false when the
// bookkeeping fields are missing.
func (c *Client) expiry(ctx context.Context, sid string) (time.Time, bool, error) {
	loginAt, ok, err := c.getInt(ctx, sid, KeyLoginTimeStamp)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	expiresIn, ok, err := c.getInt(ctx, sid, KeyExpiresIn)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	return time.UnixMilli(loginAt + expiresIn*1000), true, nil
}

// IsTokenExpired reports whether the session's token is expired. A session
// without the loginTimeStamp or expiresIn fields is expired.
func (c *Client) IsTokenExpired(ctx context.Context, sid string) (bool, error) {
	const op = "Client.IsTokenExpired"
	if sid == "" {
		return true, fmt.Errorf("%s: session id is empty: %w", op, ErrInvalidParameter)
	}
	exp, ok, err := c.expiry(ctx, sid)
	if err != nil {
		return true, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return true, nil
	}
	return c.now().UnixMilli() > exp.UnixMilli(), nil
}

// IsAuthenticated reports whether the session holds an unexpired access
// token.
func (c *Client) IsAuthenticated(ctx context.Context, sid string) (bool, error) {
	const op = "Client.IsAuthenticated"
	tk, err := c.getString(ctx, sid, KeyAccessToken)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if tk == "" {
		return false, nil
	}
	expired, err := c.IsTokenExpired(ctx, sid)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return !expired, nil
}

// GetToken returns the session's access token, renewing it when it's
// expired: the authorization code and PKCE grants use the refresh token, the
// client credentials grant requests a new token. Concurrent renewals of one
// session result in a single request. A caller whose ctx is done stops
// waiting, while the renewal completes for the others. When renewal fails the
// session is purged and the error returned.
func (c *Client) GetToken(ctx context.Context, sid string) (AccessToken, error) {
	const op = "Client.GetToken"
	if sid == "" {
		return "", fmt.Errorf("%s: session id is empty: %w", op, ErrInvalidParameter)
	}
	if tk, ok, err := c.cachedToken(ctx, sid); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	} else if ok {
		return tk, nil
	}
	// the renewal outlives any one caller, so it must not inherit a
	// caller's cancellation
	renewCtx := context.WithoutCancel(ctx)
	ch := c.refreshGroup.DoChan(sid, func() (interface{}, error) {
		return c.renew(renewCtx, sid)
	})
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", fmt.Errorf("%s: %w", op, res.Err)
		}
		if res.Shared {
			c.logger.Trace("token renewal shared with a concurrent caller")
		}
		return res.Val.(AccessToken), nil
	}
}

// cachedToken returns the access token when it's present and unexpired.
func (c *Client) cachedToken(ctx context.Context, sid string) (AccessToken, bool, error) {
	authed, err := c.IsAuthenticated(ctx, sid)
	if err != nil || !authed {
		return "", false, err
	}
	tk, err := c.getString(ctx, sid, KeyAccessToken)
	if err != nil {
		return "", false, err
	}
	return AccessToken(tk), tk != "", nil
}

func (c *Client) renew(ctx context.Context, sid string) (AccessToken, error) {
	// a renewal that completed just before this one started is reused
	if tk, ok, err := c.cachedToken(ctx, sid); err != nil {
		return "", err
	} else if ok {
		return tk, nil
	}

	var tr *TokenResponse
	var err error
	switch c.config.GrantType {
	case ClientCredentials:
		tr, err = c.clientCredentialsToken(ctx, "", "")
	default:
		var rt string
		if rt, err = c.getString(ctx, sid, KeyRefreshToken); err != nil {
			return "", err
		}
		if rt == "" {
			err = fmt.Errorf("no refresh token: %w", ErrMissingCredential)
			break
		}
		tr, err = c.observe("refresh_token", func() (*TokenResponse, error) {
			return c.refresh.Token(ctx, RefreshToken(rt))
		})
	}
	if err == nil {
		err = c.SaveToken(ctx, sid, tr)
	}
	if err != nil {
		c.logger.Debug("token renewal failed, purging session", "grant_type", c.config.GrantType, "error", err)
		if pErr := c.purge(ctx, sid); pErr != nil {
			return "", errors.Join(err, pErr)
		}
		return "", err
	}
	return tr.AccessToken, nil
}

func (c *Client) clientCredentialsToken(ctx context.Context, audience, scope string) (*TokenResponse, error) {
	return c.observe(string(ClientCredentials), func() (*TokenResponse, error) {
		return c.credentials.Token(ctx, audience, scope)
	})
}

// observe records the outcome of a token request.
func (c *Client) observe(grant string, fn func() (*TokenResponse, error)) (*TokenResponse, error) {
	start := time.Now()
	tr, err := fn()
	if c.metrics != nil {
		c.metrics.observe(grant, time.Since(start), err)
	}
	if err != nil {
		c.logger.Debug("token request failed", "grant_type", grant, "error", err)
	}
	return tr, err
}

// Logout purges the session's auth state and returns the provider's logout
// URL for the user agent. It's not an error to log out an empty session.
func (c *Client) Logout(ctx context.Context, sid string) (string, error) {
	const op = "Client.Logout"
	if sid == "" {
		return "", fmt.Errorf("%s: session id is empty: %w", op, ErrInvalidParameter)
	}
	if err := c.purge(ctx, sid); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	q := url.Values{"redirect": {c.config.LogoutRedirectUrl}}
	return c.config.LogoutURL() + "?" + q.Encode(), nil
}
