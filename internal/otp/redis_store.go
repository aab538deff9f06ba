package otp

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "notehub:otp:"

// verifyScript returns 0 missing, 1 matched, 2 mismatch, 3 exhausted.
var verifyScript = redis.NewScript(`
local code = redis.call('HGET', KEYS[1], 'code')
if not code then
  return 0
end
if code == ARGV[1] then
  redis.call('DEL', KEYS[1])
  return 1
end
local n = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
if n >= tonumber(ARGV[2]) then
  redis.call('DEL', KEYS[1])
  return 3
end
return 2
`)

type RedisStore struct {
	rdb redis.UniversalClient
}

func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	key := keyPrefix + email

	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key, "code", code, "attempts", 0)
		p.PExpire(ctx, key, ttl)
		return nil
	})
	return err
}

func (s *RedisStore) Verify(ctx context.Context, email, code string, maxAttempts int) (Outcome, error) {
	n, err := verifyScript.Run(ctx, s.rdb, []string{keyPrefix + email}, code, maxAttempts).Int()
	if err != nil {
		return Missing, err
	}

	switch n {
	case 1:
		return Matched, nil
	case 2:
		return Mismatch, nil
	case 3:
		return Exhausted, nil
	default:
		return Missing, nil
	}
}

func (s *RedisStore) Delete(ctx context.Context, email string) error {
	return s.rdb.Del(ctx, keyPrefix+email).Err()
}
