// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter           = errors.New("invalid parameter")
	ErrNilParameter               = errors.New("nil parameter")
	ErrInvalidCACert              = errors.New("invalid CA certificate")
	ErrIdGeneratorFailed          = errors.New("id generation failed")
	ErrUnsupportedGrantType       = errors.New("unsupported grant type")
	ErrUnsupportedChallengeMethod = errors.New("unsupported PKCE challenge method")
	ErrResponseStateInvalid       = errors.New("authentication failed because it tries to validate state")
	ErrMissingState               = errors.New("state is missing")
	ErrMissingCode                = errors.New("authorization code is missing")
	ErrMissingCodeVerifier        = errors.New("code verifier is missing")
	ErrTokenExchange              = errors.New("token exchange failed")
	ErrProviderResponse           = errors.New("provider error response")
	ErrRefreshTokenInvalid        = errors.New("refresh token is invalid or expired")
	ErrMissingCredential          = errors.New("request is missing required authentication credential")
	ErrNotFound                   = errors.New("not found")
	ErrFlagNotFound               = errors.New("flag not found")
	ErrFlagTypeMismatch           = errors.New("flag type mismatch")
	ErrSessionStore               = errors.New("session store")
)

// ProtocolError is an error reported by the provider, either as the error
// parameters of an authorization callback or as the error payload of a token
// endpoint response.
type ProtocolError struct {
	Code        string
	Description string
}

// Error returns the description, or the code when there is no description.
func (e *ProtocolError) Error() string {
	if e.Description != "" {
		return e.Description
	}
	return e.Code
}

// Unwrap supports errors.Is(err, ErrProviderResponse)
func (e *ProtocolError) Unwrap() error {
	return ErrProviderResponse
}

// newProtocolError returns nil when code is empty.
func newProtocolError(code, description string) error {
	if code == "" {
		return nil
	}
	return &ProtocolError{Code: code, Description: description}
}

// FlagTypeMismatchError is returned when a flag is requested as one type but
// stored as another.
type FlagTypeMismatchError struct {
	Code      string
	Requested FlagType
	Stored    FlagType
}

// Error names both types.
func (e *FlagTypeMismatchError) Error() string {
	return fmt.Sprintf("flag %q is type %s - requested type %s", e.Code, e.Stored, e.Requested)
}

// Unwrap supports errors.Is(err, ErrFlagTypeMismatch)
func (e *FlagTypeMismatchError) Unwrap() error {
	return ErrFlagTypeMismatch
}
