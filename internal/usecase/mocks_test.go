package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/qkart/storefront/internal/domain"
)

// MockShopClient is a mock implementation of domain.ShopClient
type MockShopClient struct {
	mu sync.Mutex

	products    []domain.Product
	productsErr error
	searchFn    func(ctx context.Context, query string) ([]domain.Product, error)
	cart        []domain.CartEntry
	cartErr     error
	updateFn    func(update domain.CartUpdate) ([]domain.CartEntry, error)

	listCalls    int
	searchCalls  []string
	cartTokens   []string
	updateTokens []string
	updates      []domain.CartUpdate
}

func NewMockShopClient() *MockShopClient {
	return &MockShopClient{}
}

func (m *MockShopClient) ListProducts(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.productsErr != nil {
		return nil, m.productsErr
	}
	return m.products, nil
}

func (m *MockShopClient) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	m.mu.Lock()
	m.searchCalls = append(m.searchCalls, query)
	fn := m.searchFn
	m.mu.Unlock()
	if fn == nil {
		return []domain.Product{}, nil
	}
	return fn(ctx, query)
}

func (m *MockShopClient) GetCart(ctx context.Context, token string) ([]domain.CartEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cartTokens = append(m.cartTokens, token)
	if m.cartErr != nil {
		return nil, m.cartErr
	}
	return m.cart, nil
}

func (m *MockShopClient) UpdateCart(ctx context.Context, token string, update domain.CartUpdate) ([]domain.CartEntry, error) {
	m.mu.Lock()
	m.updateTokens = append(m.updateTokens, token)
	m.updates = append(m.updates, update)
	fn := m.updateFn
	m.mu.Unlock()
	if fn == nil {
		return []domain.CartEntry{{ProductID: update.ProductID, Quantity: update.Quantity}}, nil
	}
	return fn(update)
}

func (m *MockShopClient) SearchQueries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.searchCalls...)
}

func (m *MockShopClient) UpdateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.updates)
}

// recordingNotifier collects notifications in order
type recordingNotifier struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (r *recordingNotifier) Notify(n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recordingNotifier) All() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notification(nil), r.items...)
}

// fakeClock is a manually advanced Scheduler
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) Schedule(d time.Duration, f func()) func() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if t.stopped || t.fired {
			return false
		}
		t.stopped = true
		return true
	}
}

// Advance moves the clock to `to`, running due timers in schedule order
func (c *fakeClock) Advance(to time.Duration) {
	for {
		c.mu.Lock()
		var due *fakeTimer
		for _, t := range c.timers {
			if !t.stopped && !t.fired && t.at <= to {
				due = t
				break
			}
		}
		if due == nil {
			c.now = to
			c.mu.Unlock()
			return
		}
		due.fired = true
		c.now = due.at
		c.mu.Unlock()
		due.f()
	}
}

func (c *fakeClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

var testCatalog = []domain.Product{
	{ID: "BW0jAAeDJmlZCF8i", Name: "UNIFACTOR Mens Running Shoes", Category: "Fashion", Cost: 50, Rating: 5, ImageURL: "https://example.com/shoes.png"},
	{ID: "KCRwjF7lN97HnEaY", Name: "YONEX Smash Badminton Racquet", Category: "Sports", Cost: 100, Rating: 5, ImageURL: "https://example.com/racquet.png"},
	{ID: "PmInA797xJhMIPti", Name: "Tan Leatherette Weekender Duffle", Category: "Fashion", Cost: 150, Rating: 4, ImageURL: "https://example.com/duffle.png"},
}

func loggedIn() *domain.Session {
	return &domain.Session{ID: "s1", Username: "crio.do", Token: "secret-token", Balance: 5000}
}
