package domain

import (
	"context"
	"time"
)

// ShopClient defines the interface for the remote product/cart API
type ShopClient interface {
	ListProducts(ctx context.Context) ([]Product, error)
	SearchProducts(ctx context.Context, query string) ([]Product, error)
	GetCart(ctx context.Context, token string) ([]CartEntry, error)
	UpdateCart(ctx context.Context, token string, update CartUpdate) ([]CartEntry, error)
}

// SessionStore persists sessions across requests
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Notifier receives user-visible notifications
type Notifier interface {
	Notify(n Notification)
}
