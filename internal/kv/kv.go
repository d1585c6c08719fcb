// Package kv provides the string key-value backends settings are persisted in.
package kv

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Store is a string key-value store. Get reports ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type prefixed struct {
	prefix string
	next   Store
}

// WithPrefix scopes every key of next under prefix.
func WithPrefix(next Store, prefix string) Store {
	if prefix == "" {
		return next
	}
	return prefixed{prefix: prefix, next: next}
}

func (p prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.next.Get(ctx, p.prefix+key)
}

func (p prefixed) Set(ctx context.Context, key, value string) error {
	return p.next.Set(ctx, p.prefix+key, value)
}

func (p prefixed) Remove(ctx context.Context, key string) error {
	return p.next.Remove(ctx, p.prefix+key)
}

// UserScoper is implemented by stores that keep a native owner column and
// scope rows by it instead of by key prefix.
type UserScoper interface {
	ForUser(userID uuid.UUID) Store
}

// UserKeyPrefix is the key namespace of userID in stores without an owner
// column.
func UserKeyPrefix(userID uuid.UUID) string {
	return fmt.Sprintf("u:%s:", userID)
}

// ForUser scopes s to userID, natively when s is a UserScoper and by key
// prefix otherwise.
func ForUser(s Store, userID uuid.UUID) Store {
	if scoper, ok := s.(UserScoper); ok {
		return scoper.ForUser(userID)
	}
	return WithPrefix(s, UserKeyPrefix(userID))
}
