// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyOpts(t *testing.T) {
	// ApplyOpts testing is covered by other tests but we do have just more
	// more test to add here.
	// Let's make sure we don't panic on nil options
	anonymousOpts := struct {
		Names []string
	}{
		nil,
	}
	ApplyOpts(anonymousOpts, nil)
}

func TestSharedOptions(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	cOpts := getConfigOpts(WithAudience("aud"), WithScope("openid"))
	assert.Equal("aud", cOpts.withAudience)
	assert.Equal("openid", cOpts.withScope)

	rOpts := getRequestOpts(WithAudience("aud"), WithScope("openid"))
	assert.Equal("aud", rOpts.withAudience)
	assert.Equal("openid", rOpts.withScope)
}
