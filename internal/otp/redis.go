package otp

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/expodesk/expodesk/internal/settings"
	"github.com/redis/go-redis/v9"
)

// redisKeyTTLSlack keeps entries around past their validity window so the
// lazy expiry check can report Expired instead of NotFound.
const redisKeyTTLSlack = time.Minute

// RedisStore keeps codes in Redis so multiple instances share one OTP space
// and in-flight codes survive process restarts.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: strings.TrimSpace(prefix)}
}

// Put stores the entry with a TTL, overwriting any prior one for the email.
func (s *RedisStore) Put(ctx context.Context, email string, entry Entry) error {
	payload, errMarshal := json.Marshal(entry)
	if errMarshal != nil {
		return errMarshal
	}
	ttl := settings.OTPLifetime + redisKeyTTLSlack
	return s.client.Set(ctx, s.buildKey(email), payload, ttl).Err()
}

// Get returns the entry for the email, if present.
func (s *RedisStore) Get(ctx context.Context, email string) (Entry, bool, error) {
	raw, errGet := s.client.Get(ctx, s.buildKey(email)).Bytes()
	if errGet == redis.Nil {
		return Entry{}, false, nil
	}
	if errGet != nil {
		return Entry{}, false, errGet
	}
	var entry Entry
	if errUnmarshal := json.Unmarshal(raw, &entry); errUnmarshal != nil {
		return Entry{}, false, errUnmarshal
	}
	return entry, true, nil
}

// Delete removes the entry for the email.
func (s *RedisStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, s.buildKey(email)).Err()
}

func (s *RedisStore) buildKey(email string) string {
	if s.prefix == "" {
		return "otp:" + email
	}
	return s.prefix + ":otp:" + email
}
