// Package contextstore persists conversation context between turns of a
// session. Context lives in Redis under a per-session key with a TTL, so
// a stale session simply expires instead of feeding old entities into
// new queries.
package contextstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "eda-copilot/internal/common/errors"
	"eda-copilot/internal/common/logger"
	"eda-copilot/internal/intent"
)

const keyPrefix = "edacopilot:context:"

// Store reads and writes per-session conversation context.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// New builds a store over an established Redis client.
func New(client *redis.Client, ttl time.Duration, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{client: client, ttl: ttl, log: log}
}

func sessionKey(sessionID string) string {
	return keyPrefix + sessionID
}

// Load returns the remembered context for a session. A session with no
// stored context gets an empty one, not an error.
func (s *Store) Load(ctx context.Context, sessionID string) (intent.ConversationContext, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err == redis.Nil {
		return intent.ConversationContext{}, nil
	}
	if err != nil {
		return nil, apperrors.NewContextStoreFailedError(err)
	}

	var cc intent.ConversationContext
	if err := json.Unmarshal(data, &cc); err != nil {
		// A corrupt record is unrecoverable; drop it and start fresh.
		s.log.Warn("discarding unreadable context record", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		s.client.Del(ctx, sessionKey(sessionID))
		return intent.ConversationContext{}, nil
	}
	return cc, nil
}

// Save replaces the session's context and refreshes its TTL.
func (s *Store) Save(ctx context.Context, sessionID string, cc intent.ConversationContext) error {
	data, err := json.Marshal(cc)
	if err != nil {
		return apperrors.NewContextStoreFailedError(err)
	}
	if err := s.client.Set(ctx, sessionKey(sessionID), data, s.ttl).Err(); err != nil {
		return apperrors.NewContextStoreFailedError(err)
	}
	return nil
}

// Clear forgets a session's context.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return apperrors.NewContextStoreFailedError(err)
	}
	return nil
}
