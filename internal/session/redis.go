package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPattern = "sender:session:%s"
	lockKeyPattern    = "sender:lock:%s"
	lockTTL           = 5 * time.Second
)

// ErrLocked indicates that a concurrent operation already holds the
// per-sender lock.
var ErrLocked = errors.New("sender is locked, try again later")

// RedisStore persists registration sessions in Redis with a TTL, so a fleet
// of processes shares the mid-registration state.
type RedisStore struct {
	client *redis.Client
	log    *slog.Logger
	ttl    time.Duration
}

// NewRedisStore initializes a Redis-backed session store. Sessions expire
// after ttl even if never completed.
func NewRedisStore(client *redis.Client, log *slog.Logger, ttl time.Duration) *RedisStore {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &RedisStore{
		client: client,
		log:    log,
		ttl:    ttl,
	}
}

func (s *RedisStore) Get(ctx context.Context, senderID string) (*Session, error) {
	key := sessionKey(senderID)

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}

		s.log.Error("failed to get session from redis", "sender_id", senderID, "error", err)
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		s.log.Error("failed to decode session", "sender_id", senderID, "error", err)
		return nil, err
	}

	return &sess, nil
}

func (s *RedisStore) Set(ctx context.Context, senderID string, sess *Session) error {
	sess.SenderID = senderID
	sess.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(sess)
	if err != nil {
		s.log.Error("failed to encode session", "sender_id", senderID, "error", err)
		return err
	}

	if err := s.client.Set(ctx, sessionKey(senderID), data, s.ttl).Err(); err != nil {
		s.log.Error("failed to save session in redis", "sender_id", senderID, "error", err)
		return err
	}

	return nil
}

func (s *RedisStore) Clear(ctx context.Context, senderID string) error {
	if err := s.client.Del(ctx, sessionKey(senderID)).Err(); err != nil {
		s.log.Error("failed to clear session", "sender_id", senderID, "error", err)
		return err
	}

	return nil
}

// Lock takes the short-TTL per-sender lock. It keeps two processes from
// interleaving one sender's registration sequence.
func (s *RedisStore) Lock(ctx context.Context, senderID string) error {
	key := fmt.Sprintf(lockKeyPattern, senderID)

	acquired, err := s.client.SetNX(ctx, key, 1, lockTTL).Result()
	if err != nil {
		s.log.Error("failed to acquire sender lock", "sender_id", senderID, "error", err)
		return err
	}

	if !acquired {
		s.log.Warn("sender lock already held", "sender_id", senderID)
		return ErrLocked
	}

	return nil
}

// Unlock releases the per-sender lock.
func (s *RedisStore) Unlock(ctx context.Context, senderID string) {
	key := fmt.Sprintf(lockKeyPattern, senderID)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.log.Error("failed to release sender lock", "sender_id", senderID, "error", err)
	}
}

func sessionKey(senderID string) string {
	return fmt.Sprintf(sessionKeyPattern, senderID)
}
