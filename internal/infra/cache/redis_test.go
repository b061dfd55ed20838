package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjmpn2/merchbooth/internal/payment"
)

// 何も待ち受けていないポート
func unreachable() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
}

func TestNewRedisClient_FailsFast(t *testing.T) {
	_, err := NewRedisClient("127.0.0.1:1", "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}

func TestRedisIdempotencyStore_GuardRefusesWhenRedisDown(t *testing.T) {
	rdb := unreachable()
	defer rdb.Close()

	inner := payment.NewMockGateway(0)
	g := payment.NewGuardedGateway(inner, NewRedisIdempotencyStore(rdb, time.Hour), time.Second)

	_, err := g.Charge(context.Background(), payment.ChargeRequest{
		Amount:         decimal.NewFromInt(35),
		IdempotencyKey: "k",
	})
	assert.ErrorIs(t, err, payment.ErrGatewayUnavailable)
	assert.Equal(t, 0, inner.Charges())
}

func TestRedisIdempotencyStore_PutSurfacesErrors(t *testing.T) {
	rdb := unreachable()
	defer rdb.Close()

	s := NewRedisIdempotencyStore(rdb, 0)
	assert.Equal(t, payment.DefaultRecordTTL, s.ttl)
	assert.Error(t, s.Put(context.Background(), "k", payment.Record{Approved: true}))
}

func TestRedisIdempotencyStore_DeleteSurfacesErrors(t *testing.T) {
	rdb := unreachable()
	defer rdb.Close()

	g := payment.NewGuardedGateway(payment.NewMockGateway(0), NewRedisIdempotencyStore(rdb, time.Hour), time.Second)
	assert.ErrorIs(t, g.Release(context.Background(), "k"), payment.ErrGatewayUnavailable)
}
