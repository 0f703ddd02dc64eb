// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-multierror"

	sdkHttp "github.com/kinde-oss/kinde-go/sdk/http"
)

// GrantType is the OAuth 2.0 flow a Config drives.
type GrantType string

const (
	ClientCredentials GrantType = "client_credentials"
	AuthorizationCode GrantType = "authorization_code"
	PKCE              GrantType = "pkce"
)

// Valid reports whether g is a supported grant type.
func (g GrantType) Valid() bool {
	switch g {
	case ClientCredentials, AuthorizationCode, PKCE:
		return true
	default:
		return false
	}
}

// DefaultScope is requested when a Config has no WithScope option.
const DefaultScope = oidc.ScopeOpenID + " profile email offline"

const (
	authorizationPath = "/oauth2/auth"
	tokenPath         = "/oauth2/token"
	logoutPath        = "/logout"
)

type ClientSecret string

// RedactedClientSecret is the redacted string or json for an oauth client secret
const RedactedClientSecret = "[REDACTED: client secret]"

// String will redact the client secret
func (t ClientSecret) String() string {
	return RedactedClientSecret
}

// MarshalJSON will redact the client secret
func (t ClientSecret) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedClientSecret)
}

// Config represents the configuration of a Kinde application. It must not be
// modified once it's been used to create a Client.
type Config struct {
	// Domain is the provider's base URL, for example
	// https://example.kinde.com
	Domain string

	// ClientId is the application id
	ClientId string

	// ClientSecret is the application secret
	ClientSecret ClientSecret

	// RedirectUrl is where the provider sends the user agent after
	// authentication.
	RedirectUrl string

	// LogoutRedirectUrl is where the provider sends the user agent after
	// logout.
	LogoutRedirectUrl string

	GrantType GrantType

	// Audience is an optional API audience to request.
	Audience string

	// Scope is the space delimited scope to request.
	Scope string

	// ProviderCA is an optional CA cert to use when sending requests to the provider.
	ProviderCA string

	// RequireCallerState makes Login, Register and CreateOrg fail unless the
	// caller supplies the state with WithState, instead of generating one.
	RequireCallerState bool
}

// NewConfig composes a new config for a Kinde application.
// Supported options:
//
//	WithAudience
//	WithScope
//	WithProviderCA
//	WithRequireCallerState
func NewConfig(domain, clientId string, clientSecret ClientSecret, redirectUrl, logoutRedirectUrl string, grantType GrantType, opt ...Option) (*Config, error) {
	const op = "auth.NewConfig"
	opts := getConfigOpts(opt...)
	c := &Config{
		Domain:             strings.TrimRight(domain, "/"),
		ClientId:           clientId,
		ClientSecret:       clientSecret,
		RedirectUrl:        redirectUrl,
		LogoutRedirectUrl:  logoutRedirectUrl,
		GrantType:          grantType,
		Audience:           opts.withAudience,
		Scope:              opts.withScope,
		ProviderCA:         opts.withProviderCA,
		RequireCallerState: opts.withRequireCallerState,
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", op, err)
	}
	return c, nil
}

// Validate the configuration. Every invalid field is reported, each error
// naming the field and wrapping ErrInvalidParameter.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	var result *multierror.Error
	if c.Domain == "" {
		result = multierror.Append(result, fmt.Errorf("domain is empty: %w", ErrInvalidParameter))
	} else if u, err := url.Parse(c.Domain); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		result = multierror.Append(result, fmt.Errorf("domain %q is not an http or https URL: %w", c.Domain, ErrInvalidParameter))
	}
	if c.ClientId == "" {
		result = multierror.Append(result, fmt.Errorf("client id is empty: %w", ErrInvalidParameter))
	}
	if c.ClientSecret == "" {
		result = multierror.Append(result, fmt.Errorf("client secret is empty: %w", ErrInvalidParameter))
	}
	if !c.GrantType.Valid() {
		result = multierror.Append(result, fmt.Errorf("grant type %q is not supported: %w", c.GrantType, ErrInvalidParameter))
	}
	if c.RedirectUrl == "" {
		result = multierror.Append(result, fmt.Errorf("redirect URL is empty: %w", ErrInvalidParameter))
	}
	if c.LogoutRedirectUrl == "" {
		result = multierror.Append(result, fmt.Errorf("logout redirect URL is empty: %w", ErrInvalidParameter))
	}
	if c.Scope == "" {
		result = multierror.Append(result, fmt.Errorf("scope is empty: %w", ErrInvalidParameter))
	}
	if c.ProviderCA != "" {
		if _, err := c.HttpClient(); err != nil {
			result = multierror.Append(result, fmt.Errorf("provider CA: %w", err))
		}
	}
	return result.ErrorOrNil()
}

// AuthorizationURL returns the provider's authorization endpoint.
func (c *Config) AuthorizationURL() string { return c.Domain + authorizationPath }

// TokenURL returns the provider's token endpoint.
func (c *Config) TokenURL() string { return c.Domain + tokenPath }

// LogoutURL returns the provider's logout endpoint.
func (c *Config) LogoutURL() string { return c.Domain + logoutPath }

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// HttpClient is a helper function that creates a new http client for the
// provider configured
func (c *Config) HttpClient() (*http.Client, error) {
	const op = "Config.HttpClient"
	client, err := sdkHttp.NewClient(c.ProviderCA)
	if err != nil {
		if errors.Is(err, sdkHttp.ErrInvalidCertificatePem) {
			return nil, fmt.Errorf("%s: could not parse CA PEM value: %w", op, ErrInvalidCACert)
		}
		return nil, fmt.Errorf("%s: could not get an http client: %w", op, err)
	}
	return client, nil
}

// HttpClientContext is a helper function that returns a new Context that
// carries the provided HTTP client. This method sets the same context key used
// by the github.com/coreos/go-oidc and golang.org/x/oauth2 packages, so the
// returned context works for those packages as well.
func HttpClientContext(ctx context.Context, client *http.Client) context.Context {
	return sdkHttp.ClientContext(ctx, client)
}

// configOptions is the set of available options
type configOptions struct {
	withAudience           string
	withScope              string
	withProviderCA         string
	withRequireCallerState bool
}

// configDefaults is a handy way to get the defaults at runtime and during unit
// tests.
func configDefaults() configOptions {
	return configOptions{
		withScope: DefaultScope,
	}
}

// getConfigOpts gets the defaults and applies the opt overrides passed in.
func getConfigOpts(opt ...Option) configOptions {
	opts := configDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithProviderCA provides an optional CA cert for the provider's config
func WithProviderCA(cert string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withProviderCA = cert
		}
	}
}

// WithRequireCallerState requires callers to supply the state of every
// authorization request with WithState.
func WithRequireCallerState() Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withRequireCallerState = true
		}
	}
}
