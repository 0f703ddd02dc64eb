// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

// Package config loads the settings of the kinde command and the example web
// app from a YAML file, .env files and KINDE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kinde-oss/kinde-go/auth"
	"github.com/kinde-oss/kinde-go/session"
	"github.com/kinde-oss/kinde-go/session/memory"
	"github.com/kinde-oss/kinde-go/session/redis"
)

// ErrInvalidConfig is returned when a loaded setting can't be used.
var ErrInvalidConfig = errors.New("invalid config")

const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

const (
	defaultAddr       = ":8080"
	defaultSessionTTL = "24h"
	defaultLogLevel   = "info"
)

// Config is the file layout. Every field can be overridden by the
// environment variable named in its comment.
type Config struct {
	Kinde struct {
		Domain             string `yaml:"domain"`               // KINDE_DOMAIN
		ClientId           string `yaml:"client_id"`            // KINDE_CLIENT_ID
		ClientSecret       string `yaml:"client_secret"`        // KINDE_CLIENT_SECRET
		RedirectUrl        string `yaml:"redirect_url"`         // KINDE_REDIRECT_URL
		LogoutRedirectUrl  string `yaml:"logout_redirect_url"`  // KINDE_LOGOUT_REDIRECT_URL
		GrantType          string `yaml:"grant_type"`           // KINDE_GRANT_TYPE
		Audience           string `yaml:"audience"`             // KINDE_AUDIENCE
		Scope              string `yaml:"scope"`                // KINDE_SCOPE
		ProviderCAFile     string `yaml:"provider_ca_file"`     // KINDE_PROVIDER_CA_FILE
		RequireCallerState bool   `yaml:"require_caller_state"` // KINDE_REQUIRE_CALLER_STATE
	} `yaml:"kinde"`

	Session struct {
		Kind       string `yaml:"kind"`        // KINDE_SESSION_KIND: memory | redis
		TTL        string `yaml:"ttl"`         // KINDE_SESSION_TTL
		CookieName string `yaml:"cookie_name"` // KINDE_SESSION_COOKIE
		Redis      struct {
			Addr   string `yaml:"addr"`   // KINDE_REDIS_ADDR
			DB     int    `yaml:"db"`     // KINDE_REDIS_DB
			Prefix string `yaml:"prefix"` // KINDE_REDIS_PREFIX
		} `yaml:"redis"`
	} `yaml:"session"`

	Server struct {
		Addr string `yaml:"addr"` // KINDE_ADDR
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"` // KINDE_LOG_LEVEL
		JSON  bool   `yaml:"json"`  // KINDE_LOG_JSON
	} `yaml:"log"`
}

// LoadEnvFiles loads .env files into the process environment. Variables that
// are already set aren't overridden, and missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	const op = "config.LoadEnvFiles"
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("%s: %s: %w", op, p, err)
		}
	}
	return nil
}

// Load reads the YAML file at path, applies the environment overrides and
// fills in defaults. An empty path loads from the environment only.
func Load(path string) (*Config, error) {
	const op = "config.Load"
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("%s: unable to parse %s: %w: %w", op, path, ErrInvalidConfig, err)
		}
	}
	if err := c.applyEnv(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// defaults
	if c.Kinde.GrantType == "" {
		c.Kinde.GrantType = string(auth.PKCE)
	}
	if c.Session.Kind == "" {
		c.Session.Kind = SessionMemory
	}
	if c.Session.TTL == "" {
		c.Session.TTL = defaultSessionTTL
	}
	if c.Session.Redis.Prefix == "" {
		c.Session.Redis.Prefix = redis.DefaultPrefix
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"KINDE_DOMAIN":              &c.Kinde.Domain,
		"KINDE_CLIENT_ID":           &c.Kinde.ClientId,
		"KINDE_CLIENT_SECRET":       &c.Kinde.ClientSecret,
		"KINDE_REDIRECT_URL":        &c.Kinde.RedirectUrl,
		"KINDE_LOGOUT_REDIRECT_URL": &c.Kinde.LogoutRedirectUrl,
		"KINDE_GRANT_TYPE":          &c.Kinde.GrantType,
		"KINDE_AUDIENCE":            &c.Kinde.Audience,
		"KINDE_SCOPE":               &c.Kinde.Scope,
		"KINDE_PROVIDER_CA_FILE":    &c.Kinde.ProviderCAFile,
		"KINDE_SESSION_KIND":        &c.Session.Kind,
		"KINDE_SESSION_TTL":         &c.Session.TTL,
		"KINDE_SESSION_COOKIE":      &c.Session.CookieName,
		"KINDE_REDIS_ADDR":          &c.Session.Redis.Addr,
		"KINDE_REDIS_PREFIX":        &c.Session.Redis.Prefix,
		"KINDE_ADDR":                &c.Server.Addr,
		"KINDE_LOG_LEVEL":           &c.Log.Level,
	}
	for k, p := range strs {
		if v, ok := os.LookupEnv(k); ok {
			*p = strings.TrimSpace(v)
		}
	}

	var result *multierror.Error
	bools := map[string]*bool{
		"KINDE_REQUIRE_CALLER_STATE": &c.Kinde.RequireCallerState,
		"KINDE_LOG_JSON":             &c.Log.JSON,
	}
	for k, p := range bools {
		v, ok := os.LookupEnv(k)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s=%q is not a bool: %w", k, v, ErrInvalidConfig))
			continue
		}
		*p = b
	}
	if v, ok := os.LookupEnv("KINDE_REDIS_DB"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("KINDE_REDIS_DB=%q is not an integer: %w", v, ErrInvalidConfig))
		} else {
			c.Session.Redis.DB = n
		}
	}
	return result.ErrorOrNil()
}

// validate checks the settings Load owns. The kinde section is validated by
// auth.Config when ClientConfig builds it.
func (c *Config) validate() error {
	var result *multierror.Error
	if _, err := time.ParseDuration(c.Session.TTL); err != nil {
		result = multierror.Append(result, fmt.Errorf("session ttl %q: %w", c.Session.TTL, ErrInvalidConfig))
	}
	switch c.Session.Kind {
	case SessionMemory:
	case SessionRedis:
		if c.Session.Redis.Addr == "" {
			result = multierror.Append(result, fmt.Errorf("redis session store requires an addr: %w", ErrInvalidConfig))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("session kind %q is not %s or %s: %w", c.Session.Kind, SessionMemory, SessionRedis, ErrInvalidConfig))
	}
	if hclog.LevelFromString(c.Log.Level) == hclog.NoLevel {
		result = multierror.Append(result, fmt.Errorf("log level %q: %w", c.Log.Level, ErrInvalidConfig))
	}
	return result.ErrorOrNil()
}

// ClientConfig builds the auth.Config of the kinde section.
func (c *Config) ClientConfig() (*auth.Config, error) {
	const op = "Config.ClientConfig"
	k := c.Kinde
	opts := []auth.Option{auth.WithAudience(k.Audience)}
	if k.Scope != "" {
		opts = append(opts, auth.WithScope(k.Scope))
	}
	if k.ProviderCAFile != "" {
		pem, err := os.ReadFile(k.ProviderCAFile)
		if err != nil {
			return nil, fmt.Errorf("%s: unable to read provider CA: %w", op, err)
		}
		opts = append(opts, auth.WithProviderCA(string(pem)))
	}
	if k.RequireCallerState {
		opts = append(opts, auth.WithRequireCallerState())
	}
	ac, err := auth.NewConfig(k.Domain, k.ClientId, auth.ClientSecret(k.ClientSecret), k.RedirectUrl, k.LogoutRedirectUrl, auth.GrantType(k.GrantType), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ac, nil
}

// SessionTTL is the parsed session ttl.
func (c *Config) SessionTTL() time.Duration {
	d, _ := time.ParseDuration(c.Session.TTL)
	return d
}

// SessionStore creates the configured session backend.
func (c *Config) SessionStore() (session.Store, error) {
	const op = "Config.SessionStore"
	switch c.Session.Kind {
	case SessionRedis:
		s, err := redis.Dial(c.Session.Redis.Addr, c.Session.Redis.DB,
			redis.WithPrefix(c.Session.Redis.Prefix),
			redis.WithTTL(c.SessionTTL()),
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return s, nil
	case SessionMemory, "":
		return memory.New(c.SessionTTL()), nil
	default:
		return nil, fmt.Errorf("%s: session kind %q: %w", op, c.Session.Kind, ErrInvalidConfig)
	}
}

// Logger creates the named logger at the configured level. A nil w writes to
// stderr.
func (c *Config) Logger(name string, w io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(c.Log.Level),
		JSONFormat: c.Log.JSON,
		Output:     w,
	})
}
