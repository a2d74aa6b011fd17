package session

import (
	"context"
	"sync"
	"time"

	"github.com/qkart/storefront/internal/domain"
)

// storedSession is a single session with its expiration
type storedSession struct {
	session    domain.Session
	expiration time.Time
}

// MemoryStore is a thread-safe in-memory session store with TTL support
type MemoryStore struct {
	data  map[string]storedSession
	mutex sync.RWMutex
	stop  chan struct{}
	once  sync.Once
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{
		data: make(map[string]storedSession),
		stop: make(chan struct{}),
	}

	// Remove expired sessions every 10 minutes
	go store.cleanupExpired(10 * time.Minute)

	return store
}

// Get retrieves a session by id
func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, exists := s.data[id]
	if !exists || time.Now().After(item.expiration) {
		return nil, domain.ErrSessionNotFound
	}

	session := item.session
	return &session, nil
}

// Save stores a copy of the session with TTL
func (s *MemoryStore) Save(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidRequest
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[session.ID] = storedSession{
		session:    *session,
		expiration: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes a session
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, id)
	return nil
}

// Size returns the current number of stored sessions, expired ones included
func (s *MemoryStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// Close stops the cleanup goroutine
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

// cleanupExpired removes expired sessions periodically
func (s *MemoryStore) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.removeExpired(time.Now())
		}
	}
}

func (s *MemoryStore) removeExpired(now time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for id, item := range s.data {
		if now.After(item.expiration) {
			delete(s.data, id)
		}
	}
}
