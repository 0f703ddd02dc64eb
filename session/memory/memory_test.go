// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinde-oss/kinde-go/session"
)

func TestStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("read-after-write", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := New(0)
		require.NoError(s.Set(ctx, "sid", "accessToken", []byte("a")))
		got, found, err := s.Get(ctx, "sid", "accessToken")
		require.NoError(err)
		assert.True(found)
		assert.Equal([]byte("a"), got)

		require.NoError(s.Set(ctx, "sid", "accessToken", []byte("b")))
		got, _, err = s.Get(ctx, "sid", "accessToken")
		require.NoError(err)
		assert.Equal([]byte("b"), got)
	})
	t.Run("sessions-are-isolated", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := New(0)
		require.NoError(s.Set(ctx, "alice", "user", []byte("alice")))
		_, found, err := s.Get(ctx, "bob", "user")
		require.NoError(err)
		assert.False(found)
	})
	t.Run("delete-missing-is-noop", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := New(0)
		require.NoError(s.Delete(ctx, "sid", "refreshToken"))
		require.NoError(s.Set(ctx, "sid", "refreshToken", []byte("r")))
		require.NoError(s.Delete(ctx, "sid", "refreshToken"))
		_, found, err := s.Get(ctx, "sid", "refreshToken")
		require.NoError(err)
		assert.False(found)
		assert.Equal(0, s.Len())
	})
	t.Run("returned-value-is-a-copy", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := New(0)
		v := []byte("abc")
		require.NoError(s.Set(ctx, "sid", "k", v))
		v[0] = 'z'
		got, _, err := s.Get(ctx, "sid", "k")
		require.NoError(err)
		got[1] = 'z'
		again, _, err := s.Get(ctx, "sid", "k")
		require.NoError(err)
		assert.Equal([]byte("abc"), again)
	})
	t.Run("expires", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := New(10 * time.Millisecond)
		require.NoError(s.Set(ctx, "sid", "k", []byte("v")))
		time.Sleep(25 * time.Millisecond)
		_, found, err := s.Get(ctx, "sid", "k")
		require.NoError(err)
		assert.False(found)
	})
	t.Run("one-entry-per-session", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := New(0)
		require.NoError(s.Set(ctx, "sid", "accessToken", []byte("a")))
		require.NoError(s.Set(ctx, "sid", "idToken", []byte("i")))
		require.NoError(s.Set(ctx, "other", "accessToken", []byte("b")))
		assert.Equal(2, s.Len())

		require.NoError(s.Delete(ctx, "sid", "accessToken"))
		got, found, err := s.Get(ctx, "sid", "idToken")
		require.NoError(err)
		assert.True(found)
		assert.Equal([]byte("i"), got)
		assert.Equal(2, s.Len())
	})
	t.Run("fields-expire-with-the-session", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := New(200 * time.Millisecond)
		require.NoError(s.Set(ctx, "sid", "accessToken", []byte("a")))
		time.Sleep(120 * time.Millisecond)
		// a later write keeps the whole session alive
		require.NoError(s.Set(ctx, "sid", "loginTimeStamp", []byte("1")))
		time.Sleep(120 * time.Millisecond)
		_, found, err := s.Get(ctx, "sid", "accessToken")
		require.NoError(err)
		assert.True(found)

		time.Sleep(200 * time.Millisecond)
		for _, k := range []string{"accessToken", "loginTimeStamp"} {
			_, found, err := s.Get(ctx, "sid", k)
			require.NoError(err)
			assert.Falsef(found, "key %s", k)
		}
	})
	t.Run("invalid-parameters", func(t *testing.T) {
		assert := assert.New(t)
		s := New(0)
		_, _, err := s.Get(ctx, "", "k")
		assert.True(errors.Is(err, session.ErrInvalidParameter))
		err = s.Set(ctx, "sid", "", nil)
		assert.True(errors.Is(err, session.ErrInvalidParameter))
		err = s.Delete(ctx, "", "")
		assert.True(errors.Is(err, session.ErrInvalidParameter))
	})
}
