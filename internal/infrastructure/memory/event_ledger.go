package memory

import (
	"context"
	"sync"
	"time"
)

// EventLedger remembers processed webhook event ids for a bounded time.
type EventLedger struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
	now  func() time.Time
}

func NewEventLedger(ttl time.Duration) *EventLedger {
	return &EventLedger{ttl: ttl, seen: make(map[string]time.Time), now: time.Now}
}

// Record returns true the first time id is seen within the TTL.
func (l *EventLedger) Record(ctx context.Context, id string) (bool, error) {
	_ = ctx
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if at, ok := l.seen[id]; ok && (l.ttl <= 0 || now.Sub(at) < l.ttl) {
		return false, nil
	}
	l.seen[id] = now
	return true, nil
}
