package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type setNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// EventLedger records processed webhook event ids with SETNX so every replica shares one view.
type EventLedger struct {
	rdb     setNXer
	service string
	ttl     time.Duration
	now     func() time.Time
}

func NewEventLedger(rdb *redis.Client, ttl time.Duration) *EventLedger {
	return newEventLedger(rdb, ttl)
}

func newEventLedger(rdb setNXer, ttl time.Duration) *EventLedger {
	if ttl <= 0 {
		ttl = TTLDedup
	}
	return &EventLedger{rdb: rdb, service: "webhook", ttl: ttl, now: time.Now}
}

// Record returns true when id had not been recorded within the TTL.
func (l *EventLedger) Record(ctx context.Context, id string) (bool, error) {
	key := fmt.Sprintf(KeyDedup, l.service, id)
	first, err := l.rdb.SetNX(ctx, key, l.now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis ledger: %w", err)
	}
	return first, nil
}
