// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"fmt"

	"gopkg.in/square/go-jose.v2/jwt"
)

// UnmarshalClaims will retrieve the claims from the provided raw JWT token
// and unmarshal them into dest. The token's signature is not verified.
func UnmarshalClaims(token string, dest interface{}) error {
	const op = "auth.UnmarshalClaims"
	if token == "" {
		return fmt.Errorf("%s: token is empty: %w", op, ErrInvalidParameter)
	}
	if dest == nil {
		return fmt.Errorf("%s: claims interface is nil: %w", op, ErrNilParameter)
	}
	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return fmt.Errorf("%s: malformed jwt: %w", op, err)
	}
	if err := parsed.UnsafeClaimsWithoutVerification(dest); err != nil {
		return fmt.Errorf("%s: unable to decode claims: %w", op, err)
	}
	return nil
}

// decodeClaims returns nil for a missing or malformed token, which callers
// treat as absent claims.
func decodeClaims(token string) map[string]interface{} {
	if token == "" {
		return nil
	}
	var claims map[string]interface{}
	if err := UnmarshalClaims(token, &claims); err != nil {
		return nil
	}
	return claims
}

// claimString returns the string claim or "" when it's absent or another type.
func claimString(claims map[string]interface{}, name string) string {
	s, _ := claims[name].(string)
	return s
}

// claimStrings returns the string array claim, skipping non string entries.
func claimStrings(claims map[string]interface{}, name string) []string {
	raw, ok := claims[name].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
