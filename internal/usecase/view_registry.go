package usecase

import (
	"sync"
	"time"

	"github.com/qkart/storefront/internal/domain"
)

const maxSweepInterval = time.Minute

type registeredView struct {
	view       *StorefrontView
	lastAccess time.Time
}

// ViewRegistry keeps one StorefrontView per session id. Views unused for
// longer than the idle TTL are closed and forgotten.
type ViewRegistry struct {
	svc     *StorefrontService
	opts    ViewOptions
	idleTTL time.Duration

	mu    sync.Mutex
	views map[string]registeredView

	stop chan struct{}
	once sync.Once
}

// NewViewRegistry creates an empty registry. With a positive idleTTL a
// background sweep evicts idle views until Close.
func NewViewRegistry(svc *StorefrontService, opts ViewOptions, idleTTL time.Duration) *ViewRegistry {
	r := &ViewRegistry{
		svc:     svc,
		opts:    opts,
		idleTTL: idleTTL,
		views:   make(map[string]registeredView),
		stop:    make(chan struct{}),
	}

	if idleTTL > 0 {
		interval := idleTTL
		if interval > maxSweepInterval {
			interval = maxSweepInterval
		}
		go r.sweep(interval)
	}
	return r
}

// Get returns the view for session, creating it on first use. A view whose
// session token changed, or that sat idle past the TTL, is replaced.
func (r *ViewRegistry) Get(session *domain.Session) *StorefrontView {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.views[session.ID]; ok {
		if entry.view.session.Token == session.Token && !r.expired(entry, now) {
			entry.lastAccess = now
			r.views[session.ID] = entry
			return entry.view
		}
		entry.view.Close()
	}

	view := NewStorefrontView(r.svc, session, r.opts)
	r.views[session.ID] = registeredView{view: view, lastAccess: now}
	return view
}

// Drop closes and forgets the view of session id
func (r *ViewRegistry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.views[id]; ok {
		entry.view.Close()
		delete(r.views, id)
	}
}

// Len returns the number of live views
func (r *ViewRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Close stops the sweep and closes every view
func (r *ViewRegistry) Close() {
	r.once.Do(func() { close(r.stop) })

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, entry := range r.views {
		entry.view.Close()
		delete(r.views, id)
	}
}

func (r *ViewRegistry) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.removeIdle(time.Now())
		}
	}
}

// removeIdle evicts the views idle past the TTL as of now
func (r *ViewRegistry) removeIdle(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entry := range r.views {
		if r.expired(entry, now) {
			entry.view.Close()
			delete(r.views, id)
			removed++
		}
	}
	return removed
}

func (r *ViewRegistry) expired(entry registeredView, now time.Time) bool {
	return r.idleTTL > 0 && now.Sub(entry.lastAccess) > r.idleTTL
}
