package codes

import (
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "time"

  "github.com/redis/go-redis/v9"

  "github.com/kru-nsru/survey-portal-backend/internal/logger"
)

// expiryGrace is added on top of the logical TTL when setting the Redis key
// TTL, so the service layer still sees the entry shortly after logical expiry
// and can report "expired" instead of "not found".
const expiryGrace = 10 * time.Minute

type RedisStore struct {
  log    *logger.Logger
  client *redis.Client
  prefix string
}

func NewRedisStore(log *logger.Logger, address, password string) (*RedisStore, error) {
  opt := &redis.Options{
    Addr:     address,
    Password: password,
    DB:       0,
  }
  rdb := redis.NewClient(opt)

  ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
  defer cancel()
  if err := rdb.Ping(ctx).Err(); err != nil {
    return nil, fmt.Errorf("redis ping failed: %w", err)
  }
  return &RedisStore{
    log:    log.With("component", "CodeRedisStore"),
    client: rdb,
    prefix: "otp:",
  }, nil
}

func (s *RedisStore) Get(ctx context.Context, identity string) (Entry, bool, error) {
  raw, err := s.client.Get(ctx, s.prefix+identity).Result()
  if errors.Is(err, redis.Nil) {
    return Entry{}, false, nil
  }
  if err != nil {
    s.log.Warn("Failed to get code entry from redis", "identity", identity, "error", err)
    return Entry{}, false, fmt.Errorf("failed to get code entry: %w", err)
  }
  var entry Entry
  if err := json.Unmarshal([]byte(raw), &entry); err != nil {
    s.log.Warn("Failed to decode code entry from redis", "identity", identity, "error", err)
    return Entry{}, false, fmt.Errorf("failed to decode code entry: %w", err)
  }
  return entry, true, nil
}

func (s *RedisStore) Set(ctx context.Context, identity string, entry Entry, ttl time.Duration) error {
  payload, err := json.Marshal(entry)
  if err != nil {
    return fmt.Errorf("failed to encode code entry: %w", err)
  }
  if err := s.client.Set(ctx, s.prefix+identity, payload, ttl+expiryGrace).Err(); err != nil {
    s.log.Warn("Failed to set code entry in redis", "identity", identity, "error", err)
    return fmt.Errorf("failed to set code entry: %w", err)
  }
  return nil
}

func (s *RedisStore) Delete(ctx context.Context, identity string) error {
  if err := s.client.Del(ctx, s.prefix+identity).Err(); err != nil {
    s.log.Warn("Failed to delete code entry from redis", "identity", identity, "error", err)
    return fmt.Errorf("failed to delete code entry: %w", err)
  }
  return nil
}
