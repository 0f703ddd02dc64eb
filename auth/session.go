// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/hashicorp/go-multierror"
)

// Session keys. The names are shared with the other Kinde SDKs so sessions
// remain readable across deployments.
const (
	KeyOAuthState        = "oauthState"
	KeyOAuthCodeVerifier = "oauthCodeVerifier"
	KeyAccessToken       = "accessToken"
	KeyIdToken           = "idToken"
	KeyRefreshToken      = "refreshToken"
	KeyLoginTimeStamp    = "loginTimeStamp"
	KeyExpiresIn         = "expiresIn"
	KeyUser              = "user"
	KeyFeatureFlags      = "featureFlags"
)

// authKeys are removed by Logout and by a failed refresh.
var authKeys = []string{
	KeyOAuthState,
	KeyOAuthCodeVerifier,
	KeyAccessToken,
	KeyIdToken,
	KeyRefreshToken,
	KeyLoginTimeStamp,
	KeyExpiresIn,
	KeyUser,
	KeyFeatureFlags,
}

func (c *Client) getString(ctx context.Context, sid, key string) (string, error) {
	b, found, err := c.store.Get(ctx, sid, key)
	if err != nil {
		return "", fmt.Errorf("unable to read %s: %w: %w", key, ErrSessionStore, err)
	}
	if !found {
		return "", nil
	}
	return string(b), nil
}

// getInt returns ok false when key is absent or not a decimal integer.
func (c *Client) getInt(ctx context.Context, sid, key string) (int64, bool, error) {
	s, err := c.getString(ctx, sid, key)
	if err != nil || s == "" {
		return 0, false, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

// getJSON returns false when key is absent or doesn't decode into dest.
func (c *Client) getJSON(ctx context.Context, sid, key string, dest interface{}) (bool, error) {
	b, found, err := c.store.Get(ctx, sid, key)
	if err != nil {
		return false, fmt.Errorf("unable to read %s: %w: %w", key, ErrSessionStore, err)
	}
	if !found || len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *Client) set(ctx context.Context, sid, key string, value []byte) error {
	if err := c.store.Set(ctx, sid, key, value); err != nil {
		return fmt.Errorf("unable to write %s: %w: %w", key, ErrSessionStore, err)
	}
	return nil
}

func (c *Client) del(ctx context.Context, sid, key string) error {
	if err := c.store.Delete(ctx, sid, key); err != nil {
		return fmt.Errorf("unable to delete %s: %w: %w", key, ErrSessionStore, err)
	}
	return nil
}

// setOrDelete deletes key when value is empty.
func (c *Client) setOrDelete(ctx context.Context, sid, key, value string) error {
	if value == "" {
		return c.del(ctx, sid, key)
	}
	return c.set(ctx, sid, key, []byte(value))
}

// setJSON deletes key when value is nil.
func (c *Client) setJSON(ctx context.Context, sid, key string, value interface{}) error {
	if value == nil {
		return c.del(ctx, sid, key)
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("unable to encode %s: %w", key, err)
	}
	return c.set(ctx, sid, key, b)
}

// purge removes every auth key, attempting all of them even when one fails.
func (c *Client) purge(ctx context.Context, sid string) error {
	var result *multierror.Error
	for _, k := range authKeys {
		if err := c.del(ctx, sid, k); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
