package locker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CycleLock is a Redis-backed advisory lock held for the duration of one
// dispatch cycle. It keeps overlapping dispatcher replicas from running
// concurrent cycles; the per-job CAS claim remains the correctness backstop.
type CycleLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	token  string
}

func NewCycleLock(client *redis.Client, key string, ttl time.Duration) *CycleLock {
	return &CycleLock{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

// Acquire takes the lock if free. The TTL bounds how long a crashed holder
// can block other replicas.
func (l *CycleLock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

// Release frees the lock only if this instance still holds it.
func (l *CycleLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err()
	if err == redis.Nil {
		err = nil
	}
	l.token = ""
	return err
}

var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)
