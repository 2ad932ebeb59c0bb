package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "staffbook/pkg/errors"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (*Lease, error) {
	lease := &Lease{Key: key, Owner: uuid.NewString(), ExpiresAt: time.Now().UTC().Add(l.ttl)}

	ok, err := l.client.SetNX(ctx, key, lease.Owner, l.ttl).Result()
	if err != nil {
		return nil, apperrors.Internal("Failed to acquire slot lock", err)
	}
	if !ok {
		return nil, errBusy()
	}
	return lease, nil
}

func (l *RedisLocker) Release(ctx context.Context, lease *Lease) error {
	if lease == nil {
		return nil
	}
	if err := releaseScript.Run(ctx, l.client, []string{lease.Key}, lease.Owner).Err(); err != nil {
		return apperrors.Internal("Failed to release slot lock", err)
	}
	return nil
}
