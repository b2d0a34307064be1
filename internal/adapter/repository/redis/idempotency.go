package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const processingMarker = "processing"

// claimScript sets the key unless present and otherwise returns what is
// stored, in one round trip. A nil reply means the caller owns the key.
var claimScript = redis.NewScript(`
if redis.call('SET', KEYS[1], ARGV[1], 'NX', 'PX', ARGV[2]) then
	return false
end
return redis.call('GET', KEYS[1])
`)

// IdempotencyStore remembers responses to submissions and transitions
// keyed by the client's Idempotency-Key.
type IdempotencyStore struct {
	client redis.UniversalClient
	prefix string
}

func NewIdempotencyStore(client redis.UniversalClient) *IdempotencyStore {
	return &IdempotencyStore{client: client, prefix: keyPrefix + "idempotency:"}
}

// CheckAndSet claims key for the caller. When someone else holds it the
// stored value comes back: the final response, or the processing marker
// while the first request is still running.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	value := response
	if value == nil {
		value = []byte(processingMarker)
	}

	existing, err := claimScript.Run(ctx, s.client, []string{s.prefix + key}, value, max(ttl.Milliseconds(), 1)).Text()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil, nil
	case err != nil:
		return false, nil, err
	}
	return true, []byte(existing), nil
}

// Update replaces the marker with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, response, ttl).Err()
}

// Release drops a claim so a failed request can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
