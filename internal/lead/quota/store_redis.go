package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "tradegate/pkg/domain"
)

// Redis key prefix for buyer lead quota counters.
const quotaKeyPrefix = "quota:lead:"

// reserveScript checks the counter against the limit and increments it in
// one atomic step on the Redis server, so concurrent reserves for the same
// buyer serialize there. A fresh windowed counter gets its TTL on creation.
//
// KEYS[1] = counter key, ARGV[1] = limit, ARGV[2] = window seconds (0 = none)
// Returns {allowed, used}.
var reserveScript = redis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
if used >= tonumber(ARGV[1]) then
  return {0, used}
end
used = redis.call('INCR', KEYS[1])
local window = tonumber(ARGV[2])
if window > 0 and used == 1 then
  redis.call('EXPIRE', KEYS[1], window)
end
return {1, used}
`)

// releaseScript decrements without going below zero.
var releaseScript = redis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
if used > 0 then
  redis.call('DECR', KEYS[1])
end
return used
`)

// RedisStore is the production quota store for multi-instance deployments:
// every instance shares the same counters and the Lua reserve keeps the cap
// race-free across them.
//
// A window behaves as a fixed window anchored at first use (counter TTL),
// which matches the "counter that eventually resets" reading of the cap.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Reserve(ctx context.Context, buyerID id.BuyerID, limit int, window time.Duration) (*Result, error) {
	res, err := reserveScript.Run(ctx, s.client,
		[]string{quotaKeyPrefix + buyerID.String()},
		limit, int(window.Seconds()),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("reserve quota slot: %w", err)
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("reserve quota slot: unexpected script reply %v", res)
	}

	allowed := res[0] == 1
	used := int(res[1])
	out := &Result{Allowed: allowed, Used: used, Limit: limit}
	if allowed {
		out.Remaining = limit - used
	}
	return out, nil
}

func (s *RedisStore) Release(ctx context.Context, buyerID id.BuyerID, _ time.Duration) error {
	if err := releaseScript.Run(ctx, s.client, []string{quotaKeyPrefix + buyerID.String()}).Err(); err != nil {
		return fmt.Errorf("release quota slot: %w", err)
	}
	return nil
}

func (s *RedisStore) Usage(ctx context.Context, buyerID id.BuyerID, _ time.Duration) (int, error) {
	used, err := s.client.Get(ctx, quotaKeyPrefix+buyerID.String()).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("read quota usage: %w", err)
	}
	return used, nil
}
