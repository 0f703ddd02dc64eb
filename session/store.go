// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

// Package session defines the key-value contract used to persist a user's
// authentication state between requests. Backends live in sub-packages
// (memory, redis); any other store can be plugged in by implementing Store.
package session

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidParameter is returned by backends for an empty session id or key.
var ErrInvalidParameter = errors.New("invalid parameter")

// Store persists named fields for a session identified by sessionID.
//
// Implementations must be concurrently safe and must guarantee
// read-after-write consistency for a single session id and key.
type Store interface {
	// Get returns the value stored under key for the session. found is false
	// when the session or key doesn't exist, which is not an error.
	Get(ctx context.Context, sessionID, key string) (value []byte, found bool, err error)

	// Set stores value under key for the session, creating the session if
	// needed.
	Set(ctx context.Context, sessionID, key string, value []byte) error

	// Delete removes key from the session. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, sessionID, key string) error
}

// Validate checks the session id and key every backend requires.
func Validate(sessionID, key string) error {
	switch {
	case sessionID == "":
		return fmt.Errorf("session id is empty: %w", ErrInvalidParameter)
	case key == "":
		return fmt.Errorf("key is empty: %w", ErrInvalidParameter)
	}
	return nil
}
