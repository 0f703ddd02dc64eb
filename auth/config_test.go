// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSecret_String(t *testing.T) {
	t.Parallel()
	t.Run("redacted", func(t *testing.T) {
		assert := assert.New(t)
		const want = RedactedClientSecret
		secret := ClientSecret("bob's phone number")
		assert.Equalf(want, secret.String(), "ClientSecret.String() = %v, want %v", secret.String(), want)
	})
}

func TestClientSecret_MarshalJSON(t *testing.T) {
	t.Parallel()
	t.Run("redacted", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		want := fmt.Sprintf(`"%s"`, RedactedClientSecret)
		secret := ClientSecret("bob's phone number")
		got, err := secret.MarshalJSON()
		require.NoError(err)
		assert.Equalf([]byte(want), got, "ClientSecret.MarshalJSON() = %s, want %s", got, want)
	})
}

func TestNewConfig(t *testing.T) {
	t.Parallel()
	testCaPem := TestGenerateCA(t)

	type args struct {
		domain            string
		clientId          string
		clientSecret      ClientSecret
		redirectUrl       string
		logoutRedirectUrl string
		grantType         GrantType
		opt               []Option
	}
	tests := []struct {
		name        string
		args        args
		want        *Config
		wantErr     bool
		wantIsErr   error
		wantContain []string
	}{
		{
			name: "valid-with-all-valid-opts",
			args: args{
				domain:            "https://YOUR_DOMAIN.kinde.com/",
				clientId:          "YOUR_CLIENT_ID",
				clientSecret:      "YOUR_CLIENT_SECRET",
				redirectUrl:       "http://YOUR_REDIRECT_URL",
				logoutRedirectUrl: "http://YOUR_LOGOUT_REDIRECT_URL",
				grantType:         PKCE,
				opt: []Option{
					WithAudience("YOUR_AUD"),
					WithScope("openid email"),
					WithProviderCA(testCaPem),
					WithRequireCallerState(),
				},
			},
			want: &Config{
				Domain:             "https://YOUR_DOMAIN.kinde.com",
				ClientId:           "YOUR_CLIENT_ID",
				ClientSecret:       "YOUR_CLIENT_SECRET",
				RedirectUrl:        "http://YOUR_REDIRECT_URL",
				LogoutRedirectUrl:  "http://YOUR_LOGOUT_REDIRECT_URL",
				GrantType:          PKCE,
				Audience:           "YOUR_AUD",
				Scope:              "openid email",
				ProviderCA:         testCaPem,
				RequireCallerState: true,
			},
		},
		{
			name: "valid-defaults",
			args: args{
				domain:            "https://YOUR_DOMAIN.kinde.com",
				clientId:          "YOUR_CLIENT_ID",
				clientSecret:      "YOUR_CLIENT_SECRET",
				redirectUrl:       "http://YOUR_REDIRECT_URL",
				logoutRedirectUrl: "http://YOUR_LOGOUT_REDIRECT_URL",
				grantType:         AuthorizationCode,
			},
			want: &Config{
				Domain:            "https://YOUR_DOMAIN.kinde.com",
				ClientId:          "YOUR_CLIENT_ID",
				ClientSecret:      "YOUR_CLIENT_SECRET",
				RedirectUrl:       "http://YOUR_REDIRECT_URL",
				LogoutRedirectUrl: "http://YOUR_LOGOUT_REDIRECT_URL",
				GrantType:         AuthorizationCode,
				Scope:             "openid profile email offline",
			},
		},
		{
			name: "client-credentials-without-redirects",
			args: args{
				domain:       "https://YOUR_DOMAIN.kinde.com",
				clientId:     "YOUR_CLIENT_ID",
				clientSecret: "YOUR_CLIENT_SECRET",
				grantType:    ClientCredentials,
			},
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
			wantContain: []string{
				"redirect URL is empty",
				"logout redirect URL is empty",
			},
		},
		{
			name: "client-credentials-without-logout-redirect",
			args: args{
				domain:       "https://YOUR_DOMAIN.kinde.com",
				clientId:     "YOUR_CLIENT_ID",
				clientSecret: "YOUR_CLIENT_SECRET",
				redirectUrl:  "http://YOUR_REDIRECT_URL",
				grantType:    ClientCredentials,
			},
			wantErr:     true,
			wantIsErr:   ErrInvalidParameter,
			wantContain: []string{"logout redirect URL is empty"},
		},
		{
			name: "empty-domain",
			args: args{
				clientId:          "YOUR_CLIENT_ID",
				clientSecret:      "YOUR_CLIENT_SECRET",
				redirectUrl:       "http://YOUR_REDIRECT_URL",
				logoutRedirectUrl: "http://YOUR_LOGOUT_REDIRECT_URL",
				grantType:         PKCE,
			},
			wantErr:     true,
			wantIsErr:   ErrInvalidParameter,
			wantContain: []string{"domain is empty"},
		},
		{
			name: "invalid-domain-scheme",
			args: args{
				domain:            "ftp://YOUR_DOMAIN",
				clientId:          "YOUR_CLIENT_ID",
				clientSecret:      "YOUR_CLIENT_SECRET",
				redirectUrl:       "http://YOUR_REDIRECT_URL",
				logoutRedirectUrl: "http://YOUR_LOGOUT_REDIRECT_URL",
				grantType:         PKCE,
			},
			wantErr:     true,
			wantIsErr:   ErrInvalidParameter,
			wantContain: []string{"not an http or https URL"},
		},
		{
			name: "empty-client-id",
			args: args{
				domain:            "https://YOUR_DOMAIN.kinde.com",
				clientSecret:      "YOUR_CLIENT_SECRET",
				redirectUrl:       "http://YOUR_REDIRECT_URL",
				logoutRedirectUrl: "http://YOUR_LOGOUT_REDIRECT_URL",
				grantType:         PKCE,
			},
			wantErr:     true,
			wantIsErr:   ErrInvalidParameter,
			wantContain: []string{"client id is empty"},
		},
		{
			name: "empty-client-secret",
			args: args{
				domain:            "https://YOUR_DOMAIN.kinde.com",
				clientId:          "YOUR_CLIENT_ID",
				redirectUrl:       "http://YOUR_REDIRECT_URL",
				logoutRedirectUrl: "http://YOUR_LOGOUT_REDIRECT_URL",
				grantType:         PKCE,
			},
			wantErr:     true,
			wantIsErr:   ErrInvalidParameter,
			wantContain: []string{"client secret is empty"},
		},
		{
			name: "empty-redirect",
			args: args{
				domain:            "https://YOUR_DOMAIN.kinde.com",
				clientId:          "YOUR_CLIENT_ID",
				clientSecret:      "YOUR_CLIENT_SECRET",
				logoutRedirectUrl: "http://YOUR_LOGOUT_REDIRECT_URL",
				grantType:         AuthorizationCode,
			},
			wantErr:     true,
			wantIsErr:   ErrInvalidParameter,
			wantContain: []string{"redirect URL is empty"},
		},
		{
			name: "unsupported-grant-type",
			args: args{
				domain:            "https://YOUR_DOMAIN.kinde.com",
				clientId:          "YOUR_CLIENT_ID",
				clientSecret:      "YOUR_CLIENT_SECRET",
				redirectUrl:       "http://YOUR_REDIRECT_URL",
				logoutRedirectUrl: "http://YOUR_LOGOUT_REDIRECT_URL",
				grantType:         "implicit",
			},
			wantErr:     true,
			wantIsErr:   ErrInvalidParameter,
			wantContain: []string{`grant type "implicit" is not supported`},
		},
		{
			name: "empty-scope",
			args: args{
				domain:            "https://YOUR_DOMAIN.kinde.com",
				clientId:          "YOUR_CLIENT_ID",
				clientSecret:      "YOUR_CLIENT_SECRET",
				redirectUrl:       "http://YOUR_REDIRECT_URL",
				logoutRedirectUrl: "http://YOUR_LOGOUT_REDIRECT_URL",
				grantType:         ClientCredentials,
				opt:               []Option{WithScope("")},
			},
			wantErr:     true,
			wantIsErr:   ErrInvalidParameter,
			wantContain: []string{"scope is empty"},
		},
		{
			name: "bad-ca",
			args: args{
				domain:            "https://YOUR_DOMAIN.kinde.com",
				clientId:          "YOUR_CLIENT_ID",
				clientSecret:      "YOUR_CLIENT_SECRET",
				redirectUrl:       "http://YOUR_REDIRECT_URL",
				logoutRedirectUrl: "http://YOUR_LOGOUT_REDIRECT_URL",
				grantType:         ClientCredentials,
				opt:               []Option{WithProviderCA("not a cert")},
			},
			wantErr:   true,
			wantIsErr: ErrInvalidCACert,
		},
		{
			name:      "every-field-missing",
			args:      args{grantType: PKCE},
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
			wantContain: []string{
				"domain is empty",
				"client id is empty",
				"client secret is empty",
				"redirect URL is empty",
				"logout redirect URL is empty",
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := NewConfig(tt.args.domain, tt.args.clientId, tt.args.clientSecret, tt.args.redirectUrl, tt.args.logoutRedirectUrl, tt.args.grantType, tt.args.opt...)
			if tt.wantErr {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				for _, s := range tt.wantContain {
					assert.Contains(err.Error(), s)
				}
				return
			}
			require.NoError(err)
			assert.Equal(tt.want, got)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	var c *Config
	err := c.Validate()
	assert.Truef(errors.Is(err, ErrNilParameter), "wanted \"%s\" but got \"%s\"", ErrNilParameter, err)
}

func TestConfig_Endpoints(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	c, err := NewConfig("https://acme.kinde.com/", "id", "secret", "http://localhost/cb", "http://localhost", PKCE)
	require.NoError(err)
	assert.Equal("https://acme.kinde.com/oauth2/auth", c.AuthorizationURL())
	assert.Equal("https://acme.kinde.com/oauth2/token", c.TokenURL())
	assert.Equal("https://acme.kinde.com/logout", c.LogoutURL())

	clone := c.Clone()
	assert.Equal(c, clone)
	clone.Scope = "changed"
	assert.NotEqual(c.Scope, clone.Scope)
	assert.Nil((*Config)(nil).Clone())
}

func TestConfig_HttpClient(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	testCaPem := TestGenerateCA(t)

	c := &Config{ProviderCA: testCaPem}
	client, err := c.HttpClient()
	require.NoError(err)
	assert.NotNil(client)

	c.ProviderCA = "bad"
	_, err = c.HttpClient()
	assert.Truef(errors.Is(err, ErrInvalidCACert), "wanted \"%s\" but got \"%s\"", ErrInvalidCACert, err)
}
