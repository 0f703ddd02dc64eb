// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"bytes"
	"encoding/json"
	"encoding/pem"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gopkg.in/square/go-jose.v2/jwt"
)

// TestProvider is a local TLS server implementing the Kinde endpoints used by
// this package: authorization, token (authorization_code, client_credentials
// and refresh_token grants) and logout. It issues ES256 signed tokens whose
// claims are configurable, which makes writing tests much easier.
type TestProvider struct {
	httpServer *httptest.Server
	caCert     string

	mu                   sync.Mutex
	clientID             string
	clientSecret         string
	allowedRedirectURIs  []string
	expectedAuthCode     string
	expectedRefreshToken string
	nextRefreshToken     string
	codeChallenge        string
	replySubject         string
	accessTokenClaims    map[string]interface{}
	idTokenClaims        map[string]interface{}
	expiresIn            int64
	omitIDToken          bool
	omitRefreshToken     bool
	tokenErrorCode       string
	tokenErrorDesc       string
	requestCounts        map[string]int
	lastTokenRequest     url.Values

	signingKey string

	t *testing.T
}

// Defaults used by a new TestProvider.
const (
	TestClientID     = "test-client-id"
	TestClientSecret = "test-client-secret"
	TestRedirectURI  = "https://example.com/callback"
	TestAuthCode     = "test-auth-code"
	TestRefreshToken = "test-refresh-token"
	TestSubject      = "kp_0123456789abcdef"
)

// Stop stops the running TestProvider.
func (p *TestProvider) Stop() {
	p.httpServer.Close()
}

// StartTestProvider creates a disposable TestProvider listening on a random
// port. It is stopped when the test completes.
func StartTestProvider(t *testing.T) *TestProvider {
	t.Helper()
	require := require.New(t)

	p := &TestProvider{
		clientID:             TestClientID,
		clientSecret:         TestClientSecret,
		allowedRedirectURIs:  []string{TestRedirectURI},
		expectedAuthCode:     TestAuthCode,
		expectedRefreshToken: TestRefreshToken,
		nextRefreshToken:     TestRefreshToken,
		replySubject:         TestSubject,
		expiresIn:            3600,
		requestCounts:        map[string]int{},
		t:                    t,
	}
	p.signingKey = TestGenerateSigningKey(t)

	p.httpServer = httptestNewUnstartedServerWithPort(t, p, 0)
	p.httpServer.Config.ErrorLog = log.New(io.Discard, "", 0)
	p.httpServer.StartTLS()
	t.Cleanup(p.httpServer.Close)

	cert := p.httpServer.Certificate()

	var buf bytes.Buffer
	err := pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
	require.NoError(err)
	p.caCert = buf.String()

	return p
}

// SetClientCreds is for configuring the client information required for the
// token requests.
func (p *TestProvider) SetClientCreds(clientID, clientSecret string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clientID = clientID
	p.clientSecret = clientSecret
}

// SetExpectedAuthCode configures the auth code to return from the
// authorization endpoint and the allowed auth code for the token endpoint.
func (p *TestProvider) SetExpectedAuthCode(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expectedAuthCode = code
}

// SetExpectedRefreshToken configures the refresh token accepted by the
// refresh_token grant.
func (p *TestProvider) SetExpectedRefreshToken(rt string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expectedRefreshToken = rt
}

// SetNextRefreshToken configures the refresh token issued with the next
// tokens.
func (p *TestProvider) SetNextRefreshToken(rt string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextRefreshToken = rt
}

// SetAllowedRedirectURIs allows you to configure the allowed redirect URIs.
// If not configured TestRedirectURI is used.
func (p *TestProvider) SetAllowedRedirectURIs(uris []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.allowedRedirectURIs = uris
}

// SetAccessTokenClaims sets additional claims of issued access tokens, for
// example permissions, org_code or feature_flags.
func (p *TestProvider) SetAccessTokenClaims(claims map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accessTokenClaims = claims
}

// SetIdTokenClaims sets additional claims of issued id tokens, for example
// given_name, email or org_codes.
func (p *TestProvider) SetIdTokenClaims(claims map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idTokenClaims = claims
}

// SetExpiresIn sets the expires_in of issued tokens. Zero omits it.
func (p *TestProvider) SetExpiresIn(seconds int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expiresIn = seconds
}

// OmitIDTokens forces the token endpoint to not return an id_token.
func (p *TestProvider) OmitIDTokens() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.omitIDToken = true
}

// OmitRefreshTokens forces the token endpoint to not return a
// refresh_token.
func (p *TestProvider) OmitRefreshTokens() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.omitRefreshToken = true
}

// SetTokenError makes every token request fail with the error payload. An
// empty code clears it.
func (p *TestProvider) SetTokenError(code, description string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokenErrorCode = code
	p.tokenErrorDesc = description
}

// RequestCount returns how many token requests of the grant type were
// received.
func (p *TestProvider) RequestCount(grantType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requestCounts[grantType]
}

// LastTokenRequest returns a copy of the last token request's form.
func (p *TestProvider) LastTokenRequest() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := url.Values{}
	for k, v := range p.lastTokenRequest {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Addr returns the current base URL for the test provider's running webserver.
func (p *TestProvider) Addr() string { return p.httpServer.URL }

// CACert returns the pem-encoded CA certificate used by the test provider's
// HTTPS server.
func (p *TestProvider) CACert() string { return p.caCert }

// HTTPClient returns an http client that trusts the test provider.
func (p *TestProvider) HTTPClient() *http.Client {
	return p.httpServer.Client()
}

// SignToken signs claims with the provider's key for the configured subject.
func (p *TestProvider) SignToken(expiresIn time.Duration, claims map[string]interface{}) string {
	p.t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signToken(expiresIn, claims)
}

// signToken requires p.mu to be held.
func (p *TestProvider) signToken(expiresIn time.Duration, claims map[string]interface{}) string {
	now := time.Now()
	std := jwt.Claims{
		Subject:   p.replySubject,
		Issuer:    p.Addr(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Second)),
		Expiry:    jwt.NewNumericDate(now.Add(expiresIn)),
		Audience:  jwt.Audience{p.clientID},
	}
	return TestSignJWT(p.t, p.signingKey, std, claims)
}

func (p *TestProvider) writeJSON(w http.ResponseWriter, out interface{}) error {
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

func (p *TestProvider) writeAuthErrorResponse(w http.ResponseWriter, req *http.Request, errorCode, errorMessage string) {
	qv := req.URL.Query()

	redirectURI := qv.Get("redirect_uri") +
		"?state=" + url.QueryEscape(qv.Get("state")) +
		"&error=" + url.QueryEscape(errorCode)

	if errorMessage != "" {
		redirectURI += "&error_description=" + url.QueryEscape(errorMessage)
	}

	http.Redirect(w, req, redirectURI, http.StatusFound)
}

func (p *TestProvider) writeTokenErrorResponse(w http.ResponseWriter, statusCode int, errorCode, errorMessage string) error {
	body := struct {
		Code string `json:"error"`
		Desc string `json:"error_description,omitempty"`
	}{
		Code: errorCode,
		Desc: errorMessage,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return p.writeJSON(w, &body)
}

func (p *TestProvider) redirectAllowed(uri string) bool {
	for _, u := range p.allowedRedirectURIs {
		if u == uri {
			return true
		}
	}
	return false
}

// ServeHTTP implements the test provider's http.Handler.
func (p *TestProvider) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch req.URL.Path {
	case authorizationPath:
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		qv := req.URL.Query()

		if qv.Get("response_type") != "code" {
			p.writeAuthErrorResponse(w, req, "unsupported_response_type", "")
			return
		}
		if qv.Get("client_id") != p.clientID {
			p.writeAuthErrorResponse(w, req, "unauthorized_client", "")
			return
		}
		if p.expectedAuthCode == "" {
			p.writeAuthErrorResponse(w, req, "access_denied", "")
			return
		}
		state := qv.Get("state")
		if state == "" {
			p.writeAuthErrorResponse(w, req, "invalid_request", "missing state parameter")
			return
		}
		redirectURI := qv.Get("redirect_uri")
		if redirectURI == "" || !p.redirectAllowed(redirectURI) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		p.codeChallenge = ""
		if qv.Get("code_challenge") != "" {
			if qv.Get("code_challenge_method") != string(S256) {
				p.writeAuthErrorResponse(w, req, "invalid_request", "unsupported code_challenge_method")
				return
			}
			p.codeChallenge = qv.Get("code_challenge")
		}

		redirectURI += "?state=" + url.QueryEscape(state) +
			"&code=" + url.QueryEscape(p.expectedAuthCode)

		http.Redirect(w, req, redirectURI, http.StatusFound)

	case tokenPath:
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := req.ParseForm(); err != nil {
			_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_request", "malformed form")
			return
		}
		grantType := req.PostForm.Get("grant_type")
		p.requestCounts[grantType]++
		p.lastTokenRequest = req.PostForm

		switch {
		case p.tokenErrorCode != "":
			_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, p.tokenErrorCode, p.tokenErrorDesc)
			return
		case req.PostForm.Get("client_id") != p.clientID || req.PostForm.Get("client_secret") != p.clientSecret:
			_ = p.writeTokenErrorResponse(w, http.StatusUnauthorized, "invalid_client", "client authentication failed")
			return
		}

		includeUserTokens := true
		switch grantType {
		case "authorization_code":
			switch {
			case !p.redirectAllowed(req.PostForm.Get("redirect_uri")):
				_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_request", "redirect_uri is not allowed")
				return
			case req.PostForm.Get("code") != p.expectedAuthCode:
				_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_grant", "unexpected auth code")
				return
			case p.codeChallenge != "" && oauth2.S256ChallengeFromVerifier(req.PostForm.Get("code_verifier")) != p.codeChallenge:
				_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_grant", "code_verifier does not match code_challenge")
				return
			}
		case "refresh_token":
			if req.PostForm.Get("refresh_token") != p.expectedRefreshToken {
				_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_grant", "refresh token is invalid or expired")
				return
			}
		case "client_credentials":
			includeUserTokens = false
		default:
			_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "unsupported_grant_type", "bad grant_type")
			return
		}

		lifetime := time.Duration(p.expiresIn) * time.Second
		if lifetime <= 0 {
			lifetime = time.Hour
		}
		reply := struct {
			AccessToken  string `json:"access_token"`
			IdToken      string `json:"id_token,omitempty"`
			RefreshToken string `json:"refresh_token,omitempty"`
			TokenType    string `json:"token_type"`
			ExpiresIn    int64  `json:"expires_in,omitempty"`
			Scope        string `json:"scope,omitempty"`
		}{
			AccessToken: p.signToken(lifetime, p.accessTokenClaims),
			TokenType:   "bearer",
			ExpiresIn:   p.expiresIn,
			Scope:       req.PostForm.Get("scope"),
		}
		if includeUserTokens {
			if !p.omitIDToken {
				reply.IdToken = p.signToken(lifetime, p.idTokenClaims)
			}
			if !p.omitRefreshToken {
				reply.RefreshToken = p.nextRefreshToken
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = p.writeJSON(w, &reply)

	case logoutPath:
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		redirect := req.URL.Query().Get("redirect")
		if redirect == "" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Redirect(w, req, redirect, http.StatusFound)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// httptestNewUnstartedServerWithPort is roughly the same as
// httptest.NewUnstartedServer() but allows the caller to explicitly choose the
// port if desired. A zero port picks a free one.
func httptestNewUnstartedServerWithPort(t *testing.T, handler http.Handler, port int) *httptest.Server {
	t.Helper()
	require := require.New(t)

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	l, err := net.Listen("tcp", addr)
	require.NoError(err)

	return &httptest.Server{
		Listener: l,
		Config:   &http.Server{Handler: handler},
	}
}
