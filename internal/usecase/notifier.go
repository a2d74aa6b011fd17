package usecase

import (
	"sync"
	"time"

	"github.com/qkart/storefront/internal/domain"
	"github.com/qkart/storefront/internal/infrastructure/metrics"
)

// NotifierFunc adapts a function to domain.Notifier
type NotifierFunc func(n domain.Notification)

// Notify calls f(n)
func (f NotifierFunc) Notify(n domain.Notification) {
	f(n)
}

// SnackQueue keeps the most recent notifications for display. It holds at
// most maxSnack entries, evicting the oldest, and with preventDuplicate set
// it drops a notification whose message is already queued.
type SnackQueue struct {
	mu               sync.Mutex
	maxSnack         int
	preventDuplicate bool
	items            []domain.Notification
}

// NewSnackQueue creates a queue; maxSnack below 1 is treated as 1
func NewSnackQueue(maxSnack int, preventDuplicate bool) *SnackQueue {
	if maxSnack < 1 {
		maxSnack = 1
	}
	return &SnackQueue{
		maxSnack:         maxSnack,
		preventDuplicate: preventDuplicate,
	}
}

// Notify enqueues n
func (q *SnackQueue) Notify(n domain.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	metrics.RecordNotification(string(n.Variant))

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.preventDuplicate {
		for _, queued := range q.items {
			if queued.Message == n.Message {
				return
			}
		}
	}

	q.items = append(q.items, n)
	if len(q.items) > q.maxSnack {
		q.items = q.items[len(q.items)-q.maxSnack:]
	}
}

// Drain returns the queued notifications and empties the queue
func (q *SnackQueue) Drain() []domain.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items
	q.items = nil
	if out == nil {
		return []domain.Notification{}
	}
	return out
}

// Len returns the number of queued notifications
func (q *SnackQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func notifyError(n domain.Notifier, message string) {
	n.Notify(domain.Notification{Variant: domain.VariantError, Message: message})
}

func notifyWarning(n domain.Notifier, message string) {
	n.Notify(domain.Notification{Variant: domain.VariantWarning, Message: message})
}
