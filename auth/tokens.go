// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"encoding/json"
	"fmt"
)

// Tokens from the token endpoint. Each type prints and marshals as a
// redaction placeholder so a token can't leak into logs or JSON output; use
// string(tk) for the raw value.
type (
	// AccessToken is a Kinde access token: a JWT carrying org_code,
	// permissions and feature_flags claims.
	AccessToken string

	// IdToken is the OpenID Connect id token describing the user.
	IdToken string

	// RefreshToken is an opaque token only the refresh grant uses.
	RefreshToken string
)

// Redaction placeholders.
const (
	RedactedAccessToken  = "[REDACTED: access_token]"
	RedactedIdToken      = "[REDACTED: id_token]"
	RedactedRefreshToken = "[REDACTED: refresh_token]"
)

func (AccessToken) String() string { return RedactedAccessToken }
func (AccessToken) MarshalJSON() ([]byte, error) { return json.Marshal(RedactedAccessToken) }
func (IdToken) String() string { return RedactedIdToken }
func (IdToken) MarshalJSON() ([]byte, error) { return json.Marshal(RedactedIdToken) }
func (RefreshToken) String() string { return RedactedRefreshToken }
func (RefreshToken) MarshalJSON() ([]byte, error) { return json.Marshal(RedactedRefreshToken) }

// Claims decodes the access token's claims into claims without verifying
// the signature.
func (t AccessToken) Claims(claims interface{}) error {
	return tokenClaims("AccessToken.Claims", AccessTokenType, string(t), claims)
}

// Claims decodes the id token's claims into claims without verifying the
// signature.
func (t IdToken) Claims(claims interface{}) error {
	return tokenClaims("IdToken.Claims", IdTokenType, string(t), claims)
}

func tokenClaims(op string, kind TokenType, raw string, claims interface{}) error {
	switch {
	case raw == "":
		return fmt.Errorf("%s: %s is empty: %w", op, kind, ErrInvalidParameter)
	case claims == nil:
		return fmt.Errorf("%s: claims interface is nil: %w", op, ErrNilParameter)
	}
	if err := UnmarshalClaims(raw, claims); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
