// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

// Package memory provides a process-local session.Store backed by go-cache.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kinde-oss/kinde-go/session"
)

// DefaultTTL is how long an untouched session is retained.
const DefaultTTL = 24 * time.Hour

// fields is one session's values. It's only read or written with Store.mu
// held.
type fields map[string][]byte

// Store is an in-memory session.Store. Each session is a single cache entry
// that expires, with all of its fields, once the store's TTL has passed
// since the session's last write.
type Store struct {
	mu sync.Mutex
	c  *gocache.Cache
}

var _ session.Store = (*Store)(nil)

// New creates a Store. A ttl <= 0 uses DefaultTTL.
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{c: gocache.New(ttl, time.Minute)}
}

// session returns the session's fields, or nil. s.mu must be held.
func (s *Store) session(sessionID string) fields {
	v, ok := s.c.Get(sessionID)
	if !ok {
		return nil
	}
	f, _ := v.(fields)
	return f
}

// Get implements session.Store.
func (s *Store) Get(_ context.Context, sessionID, key string) ([]byte, bool, error) {
	const op = "memory.(Store).Get"
	if err := session.Validate(sessionID, key); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.session(sessionID)[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

// Set implements session.Store. Every write restarts the session's TTL.
func (s *Store) Set(_ context.Context, sessionID, key string, value []byte) error {
	const op = "memory.(Store).Set"
	if err := session.Validate(sessionID, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.session(sessionID)
	if f == nil {
		f = fields{}
	}
	f[key] = append([]byte(nil), value...)
	s.c.SetDefault(sessionID, f)
	return nil
}

// Delete implements session.Store. The session's TTL is left as is, and a
// session without fields is dropped.
func (s *Store) Delete(_ context.Context, sessionID, key string) error {
	const op = "memory.(Store).Delete"
	if err := session.Validate(sessionID, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.session(sessionID)
	if f == nil {
		return nil
	}
	delete(f, key)
	if len(f) == 0 {
		s.c.Delete(sessionID)
	}
	return nil
}

// Len returns the number of sessions, including expired ones not yet
// evicted.
func (s *Store) Len() int {
	return s.c.ItemCount()
}
