package helpers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps the single active session per user in Redis. A session
// is a hash under user:session:<uid> holding the current session ID; tokens
// minted under an older session ID stop resolving as soon as the hash is
// rewritten (login supersedes) or deleted (logout revokes).
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

// Save records sid as the user's current session and resets the TTL.
func (s *SessionStore) Save(ctx context.Context, userID, sid, email, name string) error {
	key := sessionKey(userID)
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    userID,
		"sid":        sid,
		"email":      email,
		"name":       name,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Resolve reports whether sid is the user's current session.
func (s *SessionStore) Resolve(ctx context.Context, userID, sid string) (bool, error) {
	current, err := s.rdb.HGet(ctx, sessionKey(userID), "sid").Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	return current == sid, nil
}

// Rotate swaps in a new session ID, keeping the remaining TTL semantics of
// Save (the window restarts on every rotation).
func (s *SessionStore) Rotate(ctx context.Context, userID, sid string) error {
	key := sessionKey(userID)
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"sid":        sid,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Revoke deletes the user's session, invalidating all outstanding tokens.
func (s *SessionStore) Revoke(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, sessionKey(userID)).Err()
}
