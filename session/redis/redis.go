// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

// Package redis provides a session.Store backed by Redis. Each session is a
// single Redis hash whose fields are the session keys.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	rdb "github.com/redis/go-redis/v9"

	"github.com/kinde-oss/kinde-go/session"
)

// DefaultPrefix is prepended to every session id to build the hash key.
const DefaultPrefix = "kinde:session:"

// Store is a session.Store that keeps each session in a Redis hash.
type Store struct {
	c      rdb.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ session.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(p string) Option {
	return func(s *Store) { s.prefix = p }
}

// WithTTL expires a whole session ttl after its last write. Zero disables
// expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// New creates a Store using an existing client.
func New(c rdb.UniversalClient, opt ...Option) (*Store, error) {
	if c == nil {
		return nil, fmt.Errorf("redis.New: client is nil: %w", session.ErrInvalidParameter)
	}
	s := &Store{c: c, prefix: DefaultPrefix}
	for _, o := range opt {
		if o != nil {
			o(s)
		}
	}
	return s, nil
}

// Dial creates a Store with a new client for addr and db.
func Dial(addr string, db int, opt ...Option) (*Store, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis.Dial: addr is empty: %w", session.ErrInvalidParameter)
	}
	return New(rdb.NewClient(&rdb.Options{Addr: addr, DB: db}), opt...)
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}

// Get implements session.Store.
func (s *Store) Get(ctx context.Context, sessionID, key string) ([]byte, bool, error) {
	const op = "redis.(Store).Get"
	if err := session.Validate(sessionID, key); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	b, err := s.c.HGet(ctx, s.key(sessionID), key).Bytes()
	switch {
	case errors.Is(err, rdb.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return b, true, nil
}

// Set implements session.Store.
func (s *Store) Set(ctx context.Context, sessionID, key string, value []byte) error {
	const op = "redis.(Store).Set"
	if err := session.Validate(sessionID, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	k := s.key(sessionID)
	_, err := s.c.TxPipelined(ctx, func(p rdb.Pipeliner) error {
		p.HSet(ctx, k, key, value)
		if s.ttl > 0 {
			p.Expire(ctx, k, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Delete implements session.Store.
func (s *Store) Delete(ctx context.Context, sessionID, key string) error {
	const op = "redis.(Store).Delete"
	if err := session.Validate(sessionID, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.c.HDel(ctx, s.key(sessionID), key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.c.Close()
}
