// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	s1, err := NewState()
	require.NoError(err)
	s2, err := NewState()
	require.NoError(err)
	assert.True(strings.HasPrefix(s1, statePrefix+"_"))
	assert.NotEqual(s1, s2)
}

func TestValidateState(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		stored    string
		returned  string
		wantIsErr []error
	}{
		{name: "match", stored: "st_abc", returned: "st_abc"},
		{name: "mismatch", stored: "st_abc", returned: "st_abd", wantIsErr: []error{ErrResponseStateInvalid}},
		{name: "prefix", stored: "st_abc", returned: "st_ab", wantIsErr: []error{ErrResponseStateInvalid}},
		{name: "no-stored", stored: "", returned: "st_abc", wantIsErr: []error{ErrResponseStateInvalid}},
		{name: "both-empty", wantIsErr: []error{ErrResponseStateInvalid}},
		{name: "no-returned", stored: "st_abc", wantIsErr: []error{ErrResponseStateInvalid, ErrMissingState}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			err := validateState(tt.stored, tt.returned)
			if len(tt.wantIsErr) == 0 {
				require.NoError(err)
				return
			}
			require.Error(err)
			for _, want := range tt.wantIsErr {
				assert.Truef(errors.Is(err, want), "wanted \"%s\" but got \"%s\"", want, err)
			}
		})
	}
}
