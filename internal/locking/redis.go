package locking

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "salonbook:lock:"

// compare-and-delete so a holder whose TTL lapsed cannot free someone else's claim
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, redisKeyPrefix+key, owner, ttl).Result()
}

func (s *RedisStore) Release(ctx context.Context, key, owner string) error {
	return releaseScript.Run(ctx, s.client, []string{redisKeyPrefix + key}, owner).Err()
}
