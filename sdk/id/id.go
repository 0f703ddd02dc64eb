// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package id

import (
	"encoding/hex"
	"fmt"

	"github.com/hashicorp/go-uuid"
)

// DefaultEntropy is the number of random bytes used by New.
const DefaultEntropy = 28

// New generates a random hex ID with an optional prefix.
func New(optionalPrefix string) (string, error) {
	id, err := Random(DefaultEntropy)
	if err != nil {
		return "", err
	}
	switch {
	case optionalPrefix != "":
		return fmt.Sprintf("%s_%s", optionalPrefix, id), nil
	default:
		return id, nil
	}
}

// Random returns entropyBytes of cryptographically random data, hex encoded.
// The result only contains characters from the RFC 3986 unreserved set.
func Random(entropyBytes int) (string, error) {
	if entropyBytes <= 0 {
		return "", fmt.Errorf("entropy must be greater than zero")
	}
	b, err := uuid.GenerateRandomBytes(entropyBytes)
	if err != nil {
		return "", fmt.Errorf("unable to generate id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
