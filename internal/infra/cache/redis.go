// Package cache holds the Redis-backed stores.
package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tjmpn2/merchbooth/internal/payment"
)

// NewRedisClient connects to addr and pings it with a short timeout.
// useTLS is for managed Redis that only accepts TLS.
func NewRedisClient(addr, password string, useTLS bool) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr, Password: password}
	if useTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

const keyPrefix = "merchbooth:charge:"

// RedisIdempotencyStore shares charge outcomes between registers.
type RedisIdempotencyStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewRedisIdempotencyStore(rdb redis.UniversalClient, ttl time.Duration) *RedisIdempotencyStore {
	if ttl <= 0 {
		ttl = payment.DefaultRecordTTL
	}
	return &RedisIdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (payment.Record, bool, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return payment.Record{}, false, nil
	}
	if err != nil {
		return payment.Record{}, false, err
	}

	var rec payment.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return payment.Record{}, false, fmt.Errorf("decode charge record %s: %w", key, err)
	}
	return rec, true, nil
}

// Put keeps the first outcome written for a key.
func (s *RedisIdempotencyStore) Put(ctx context.Context, key string, rec payment.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.SetNX(ctx, keyPrefix+key, raw, s.ttl).Err()
}

func (s *RedisIdempotencyStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, keyPrefix+key).Err()
}
