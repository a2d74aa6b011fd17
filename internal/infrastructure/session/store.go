// Package session provides the session stores that replace browser-local
// storage of username, token and balance.
package session

import (
	"context"
	"fmt"

	"github.com/qkart/storefront/internal/domain"
)

// Store is a closable domain.SessionStore
type Store interface {
	domain.SessionStore
	Close() error
}

// Open returns the store selected by kind ("memory" or "redis")
func Open(ctx context.Context, kind, redisURL string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(ctx, redisURL)
	default:
		return nil, fmt.Errorf("unknown session store type: %s", kind)
	}
}
