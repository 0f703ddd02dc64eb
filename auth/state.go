// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"crypto/subtle"
	"fmt"

	"github.com/kinde-oss/kinde-go/sdk/id"
)

// statePrefix is prepended to generated state values.
const statePrefix = "st"

// NewState creates a new random state, the opaque anti-CSRF value that is
// round-tripped through the authorization request and validated on callback.
func NewState() (string, error) {
	const op = "auth.NewState"
	st, err := id.New(statePrefix)
	if err != nil {
		return "", fmt.Errorf("%s: unable to generate a state: %w: %w", op, ErrIdGeneratorFailed, err)
	}
	return st, nil
}

// validateState requires an exact match between the stored and returned
// state. A missing stored state always fails.
func validateState(stored, returned string) error {
	const op = "auth.validateState"
	if stored == "" {
		return fmt.Errorf("%s: no stored state: %w", op, ErrResponseStateInvalid)
	}
	if returned == "" {
		return fmt.Errorf("%s: %w: %w", op, ErrResponseStateInvalid, ErrMissingState)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(returned)) != 1 {
		return fmt.Errorf("%s: state mismatch: %w", op, ErrResponseStateInvalid)
	}
	return nil
}
