package presence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "chat:active:"

// clearIfMatches deletes the key only when it still holds the given conversation.
var clearIfMatches = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore shares presence across API instances
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) SetActive(ctx context.Context, userKey, conversationID string, ttl time.Duration) error {
	return s.client.Set(ctx, keyPrefix+userKey, conversationID, ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context, userKey, conversationID string) error {
	if conversationID == "" {
		return s.client.Del(ctx, keyPrefix+userKey).Err()
	}
	return clearIfMatches.Run(ctx, s.client, []string{keyPrefix + userKey}, conversationID).Err()
}

func (s *RedisStore) Active(ctx context.Context, userKey string) (string, error) {
	v, err := s.client.Get(ctx, keyPrefix+userKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}
