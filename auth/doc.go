// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

/*
Package auth is a client-side OAuth 2.0 / OIDC helper for the Kinde identity
provider. It drives the authorization code, PKCE and client credentials grants,
persists the resulting tokens in a caller supplied session.Store and exposes
accessors for the claims, permissions, organizations and feature flags carried
by those tokens.

Tokens are decoded but never cryptographically verified. Callers that need
signature, issuer or audience verification must do it themselves.

Config

A Config is created with NewConfig and is immutable once handed to NewClient.
It derives the provider endpoints from the domain:

	{domain}/oauth2/auth   authorization request
	{domain}/oauth2/token  code, credential and refresh exchange
	{domain}/logout        end session

Client

Client is the orchestrator. Each operation takes the session id that keys the
user's state in the session.Store:

	cfg, err := auth.NewConfig(
		"https://example.kinde.com",
		"client-id",
		"client-secret",
		"http://localhost:3000/callback",
		"http://localhost:3000",
		auth.PKCE,
	)
	// handle error
	c, err := auth.NewClient(cfg, memory.New(memory.DefaultTTL))
	// handle error

	res, err := c.Login(ctx, sessionID)
	// handle error
	if !res.Authenticated {
		// redirect the user agent to res.Redirect.URL
	}

	// on the redirect_uri handler
	_, err = c.HandleCallback(ctx, sessionID, auth.CallbackParamsFromRequest(req))
	// handle error

	tk, err := c.GetToken(ctx, sessionID)
	// handle error

	granted, err := c.GetPermission(ctx, sessionID, "read:widgets")
	// handle error

Grants

The grant strategies (AuthCodeGrant, PKCEGrant, ClientCredentialsGrant and
RefreshGrant) are stateless and can be used directly when a caller wants to
manage its own storage.

Testing

StartTestProvider starts an httptest TLS server that implements the provider
endpoints used by this package and issues signed test tokens.
*/
package auth
