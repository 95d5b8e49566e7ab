package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"CVForgeBot/model"
)

// RedisSessionStore keeps sessions as JSON under <prefix>:session:<userID>
// with a sliding TTL.
type RedisSessionStore struct {
	rdb     *goredis.Client
	catalog *model.Catalog
	prefix  string
	ttl     time.Duration
	log     zerolog.Logger
}

type redisSession struct {
	Phase model.Phase `json:"phase"`
	Field string      `json:"field,omitempty"`
}

// NewRedisSessionStore connects to the Redis server at url (redis://host:port/db).
func NewRedisSessionStore(ctx context.Context, url, prefix string, ttl time.Duration, catalog *model.Catalog, logger zerolog.Logger) (*RedisSessionStore, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second

	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisSessionStoreFromClient(rdb, prefix, ttl, catalog, logger), nil
}

// NewRedisSessionStoreFromClient wraps an existing client.
func NewRedisSessionStoreFromClient(rdb *goredis.Client, prefix string, ttl time.Duration, catalog *model.Catalog, logger zerolog.Logger) *RedisSessionStore {
	if prefix == "" {
		prefix = "cvbot"
	}
	return &RedisSessionStore{
		rdb:     rdb,
		catalog: catalog,
		prefix:  prefix,
		ttl:     ttl,
		log:     logger.With().Str("component", "redis_sessions").Logger(),
	}
}

func (s *RedisSessionStore) key(userID int64) string {
	return fmt.Sprintf("%s:session:%d", s.prefix, userID)
}

func (s *RedisSessionStore) Get(ctx context.Context, userID int64) (model.UserSession, error) {
	raw, err := s.rdb.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return model.IdleSession(userID), nil
	}
	if err != nil {
		return model.UserSession{}, fmt.Errorf("error reading session: %w", err)
	}

	var stored redisSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("dropping unreadable session")
		return model.IdleSession(userID), nil
	}

	switch stored.Phase {
	case model.PhaseActive:
		field, ok := s.catalog.Lookup(stored.Field)
		if !ok {
			// the catalog changed under a live session
			s.log.Warn().Int64("user_id", userID).Str("field", stored.Field).Msg("session cursor no longer in catalog")
			return model.IdleSession(userID), nil
		}
		return model.ActiveSession(userID, field), nil
	case model.PhaseAwaitingConfirmation:
		return model.AwaitingConfirmation(userID), nil
	default:
		return model.IdleSession(userID), nil
	}
}

func (s *RedisSessionStore) Save(ctx context.Context, session model.UserSession) error {
	if session.Phase == model.PhaseIdle {
		return s.Delete(ctx, session.UserID)
	}

	stored := redisSession{Phase: session.Phase}
	if session.Cursor != nil {
		stored.Field = session.Cursor.Name
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	if err := s.rdb.Set(ctx, s.key(session.UserID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, userID int64) error {
	if err := s.rdb.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Close() error {
	return s.rdb.Close()
}
