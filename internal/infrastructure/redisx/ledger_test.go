package redisx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	keys map[string]time.Duration
	err  error
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, exp time.Duration) *redis.BoolCmd {
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if _, ok := f.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = exp
	return redis.NewBoolResult(true, nil)
}

func TestEventLedgerRecord(t *testing.T) {
	rdb := &fakeRedis{keys: map[string]time.Duration{}}
	l := newEventLedger(rdb, 0)

	first, err := l.Record(context.Background(), "evt_1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := l.Record(context.Background(), "evt_1")
	require.NoError(t, err)
	assert.False(t, again)

	assert.Equal(t, TTLDedup, rdb.keys["dedup:webhook:evt_1"])
}

func TestEventLedgerError(t *testing.T) {
	l := newEventLedger(&fakeRedis{err: errors.New("connection refused")}, time.Hour)
	_, err := l.Record(context.Background(), "evt_1")
	assert.ErrorContains(t, err, "redis ledger")
}
