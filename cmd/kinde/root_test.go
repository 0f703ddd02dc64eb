// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gopkg.in/square/go-jose.v2/jwt"

	"github.com/kinde-oss/kinde-go/auth"
)

// testEnv points the KINDE_* variables at tp.
func testEnv(t *testing.T, tp *auth.TestProvider, grant auth.GrantType) {
	t.Helper()
	ca := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(ca, []byte(tp.CACert()), 0o600))
	t.Setenv("KINDE_DOMAIN", tp.Addr())
	t.Setenv("KINDE_CLIENT_ID", auth.TestClientID)
	t.Setenv("KINDE_CLIENT_SECRET", auth.TestClientSecret)
	t.Setenv("KINDE_REDIRECT_URL", auth.TestRedirectURI)
	t.Setenv("KINDE_LOGOUT_REDIRECT_URL", "https://example.com")
	t.Setenv("KINDE_GRANT_TYPE", string(grant))
	t.Setenv("KINDE_PROVIDER_CA_FILE", ca)
}

func testRun(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCmd(t *testing.T) {
	assert, require := assert.New(t), require.New(t)
	tp := auth.StartTestProvider(t)
	tp.SetAccessTokenClaims(map[string]interface{}{"gty": []string{"client_credentials"}})
	testEnv(t, tp, auth.ClientCredentials)

	out, err := testRun(t, "", "token", "--audience", "api.example.com")
	require.NoError(err)
	tok := strings.TrimSpace(out)
	var claims map[string]interface{}
	require.NoError(auth.UnmarshalClaims(tok, &claims))
	assert.Equal(auth.TestSubject, claims["sub"])
	assert.Equal("api.example.com", tp.LastTokenRequest().Get("audience"))

	out, err = testRun(t, "", "token", "--json")
	require.NoError(err)
	var resp map[string]interface{}
	require.NoError(json.Unmarshal([]byte(out), &resp))
	assert.NotEmpty(resp["access_token"])
	assert.EqualValues(3600, resp["expires_in"])
	assert.Equal(2, tp.RequestCount("client_credentials"))
}

func TestTokenCmd_WrongGrant(t *testing.T) {
	assert := assert.New(t)
	tp := auth.StartTestProvider(t)
	testEnv(t, tp, auth.PKCE)
	_, err := testRun(t, "", "token")
	assert.True(errors.Is(err, auth.ErrUnsupportedGrantType))
	assert.Equal(0, tp.RequestCount("client_credentials"))
}

func TestAuthURLCmd(t *testing.T) {
	tp := auth.StartTestProvider(t)
	tests := []struct {
		name         string
		grant        auth.GrantType
		args         []string
		wantParams   map[string]string
		wantVerifier bool
		wantIsErr    error
	}{
		{
			name:         "pkce-login",
			grant:        auth.PKCE,
			args:         []string{"--state", "st_abc", "--lang", "fr-CA", "--org-code", "org_123"},
			wantParams:   map[string]string{"state": "st_abc", "start_page": "login", "lang": "fr-CA", "org_code": "org_123", "code_challenge_method": "S256"},
			wantVerifier: true,
		},
		{
			name:       "authcode-register",
			grant:      auth.AuthorizationCode,
			args:       []string{"--register"},
			wantParams: map[string]string{"start_page": "registration"},
		},
		{
			name:       "create-org",
			grant:      auth.PKCE,
			args:       []string{"--create-org", "--org-name", "Acme"},
			wantParams: map[string]string{"start_page": "registration", "is_create_org": "true", "org_name": "Acme"},
		},
		{name: "exclusive", grant: auth.PKCE, args: []string{"--register", "--create-org"}, wantIsErr: auth.ErrInvalidParameter},
		{name: "bad-lang", grant: auth.PKCE, args: []string{"--lang", "!!"}, wantIsErr: auth.ErrInvalidParameter},
		{name: "client-credentials", grant: auth.ClientCredentials, wantIsErr: auth.ErrUnsupportedGrantType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			testEnv(t, tp, tt.grant)
			out, err := testRun(t, "", append([]string{"auth-url"}, tt.args...)...)
			if tt.wantIsErr != nil {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				return
			}
			require.NoError(err)
			lines := strings.Split(strings.TrimSpace(out), "\n")
			u, err := url.Parse(lines[0])
			require.NoError(err)
			q := u.Query()
			for k, v := range tt.wantParams {
				assert.Equalf(v, q.Get(k), "param %s", k)
			}
			assert.Equal("state: "+q.Get("state"), lines[1])
			if tt.wantVerifier {
				require.Len(lines, 3)
				v := strings.TrimPrefix(lines[2], "code_verifier: ")
				assert.Equal(oauth2.S256ChallengeFromVerifier(v), q.Get("code_challenge"))
			} else {
				assert.Len(lines, 2)
			}
		})
	}
}

func TestClaimsCmd(t *testing.T) {
	assert, require := assert.New(t), require.New(t)
	priv := auth.TestGenerateSigningKey(t)
	tok := auth.TestSignJWT(t, priv, jwt.Claims{Subject: "kp_123", Expiry: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		auth.TestKindeClaims("org_123"))

	out, err := testRun(t, "", "claims", tok)
	require.NoError(err)
	var got map[string]interface{}
	require.NoError(json.Unmarshal([]byte(out), &got))
	assert.Equal("kp_123", got["sub"])
	assert.Equal("org_123", got["org_code"])

	out, err = testRun(t, tok+"\n", "claims")
	require.NoError(err)
	assert.Contains(out, `"org_code": "org_123"`)

	_, err = testRun(t, "", "claims", "not-a-jwt")
	assert.Error(err)
}
