// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"fmt"

	"golang.org/x/oauth2"

	"github.com/kinde-oss/kinde-go/sdk/id"
)

// ChallengeMethod represents PKCE code challenge methods as defined by RFC
// 7636.
type ChallengeMethod string

const (
	// S256 is the SHA-256 code challenge method, the only one supported.
	S256 ChallengeMethod = "S256"
)

// verifierEntropy is the number of random bytes in a verifier; hex encoded it
// produces verifierLen unreserved characters, within RFC 7636's 43-128 range.
const (
	verifierEntropy = 43
	verifierLen     = verifierEntropy * 2
)

// CodeVerifier represents an OAuth PKCE code verifier.
type CodeVerifier interface {
	// Verifier returns the code verifier sent with the token request.
	Verifier() string

	// Challenge returns the code challenge sent with the authorization
	// request.
	Challenge() string

	// Method returns the code challenge method.
	Method() ChallengeMethod

	// Copy returns a copy of the verifier
	Copy() CodeVerifier
}

// S256Verifier represents an OAuth PKCE code verifier that uses the S256
// challenge method. It implements the CodeVerifier interface.
type S256Verifier struct {
	verifier  string
	challenge string
	method    ChallengeMethod
}

// ensure that S256Verifier implements the CodeVerifier interface
var _ CodeVerifier = (*S256Verifier)(nil)

// NewCodeVerifier creates a new CodeVerifier (*S256Verifier).
func NewCodeVerifier() (*S256Verifier, error) {
	const op = "auth.NewCodeVerifier"
	data, err := id.Random(verifierEntropy)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create verifier data %w: %w", op, ErrIdGeneratorFailed, err)
	}
	v := &S256Verifier{
		verifier: data,
		method:   S256,
	}
	if v.challenge, err = CreateCodeChallenge(v.method, v); err != nil {
		return nil, fmt.Errorf("%s: unable to create code challenge: %w", op, err)
	}
	return v, nil
}

func (v *S256Verifier) Verifier() string        { return v.verifier }  // Verifier implements the CodeVerifier.Verifier() interface function.
func (v *S256Verifier) Challenge() string       { return v.challenge } // Challenge implements the CodeVerifier.Challenge() interface function.
func (v *S256Verifier) Method() ChallengeMethod { return v.method }    // Method implements the CodeVerifier.Method() interface function.

// Copy returns a copy of the verifier.
func (v *S256Verifier) Copy() CodeVerifier {
	return &S256Verifier{
		verifier:  v.verifier,
		challenge: v.challenge,
		method:    v.method,
	}
}

// CreateCodeChallenge creates a code challenge from the verifier. Supported
// ChallengeMethods: S256
//
// See: https://tools.ietf.org/html/rfc7636#section-4.2
func CreateCodeChallenge(method ChallengeMethod, v CodeVerifier) (string, error) {
	const op = "auth.CreateCodeChallenge"
	if v == nil {
		return "", fmt.Errorf("%s: verifier is nil: %w", op, ErrNilParameter)
	}
	switch method {
	case S256:
		return oauth2.S256ChallengeFromVerifier(v.Verifier()), nil
	default:
		return "", fmt.Errorf("%s: %s is invalid: %w", op, method, ErrUnsupportedChallengeMethod)
	}
}
