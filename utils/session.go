package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mindease/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// SessionStore persists portal sessions in Redis.
type SessionStore interface {
	Create(ctx context.Context, sess models.SessionContext) (*models.SessionContext, error)
	Get(ctx context.Context, id string) (*models.SessionContext, error)
	Save(ctx context.Context, sess *models.SessionContext) error
	Delete(ctx context.Context, id string) error
}

type RedisSessionStore struct {
	docs   *JSONStore[models.SessionContext]
	sealer *TokenSealer
}

func NewRedisSessionStore(client redis.Cmdable, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{docs: NewJSONStore[models.SessionContext](client, SessionPrefix, ttl)}
}

// WithSealer encrypts the backend tokens of every session written from now on.
func (s *RedisSessionStore) WithSealer(sealer *TokenSealer) *RedisSessionStore {
	s.sealer = sealer
	return s
}

func (s *RedisSessionStore) put(ctx context.Context, sess *models.SessionContext) error {
	if s.sealer == nil {
		return s.docs.Put(ctx, sess.ID, sess)
	}
	stored := *sess
	var err error
	if stored.AccessToken, err = s.sealer.Seal(sess.AccessToken); err != nil {
		return err
	}
	if stored.RefreshToken, err = s.sealer.Seal(sess.RefreshToken); err != nil {
		return err
	}
	return s.docs.Put(ctx, sess.ID, &stored)
}

// Create assigns a fresh id and stores the session.
func (s *RedisSessionStore) Create(ctx context.Context, sess models.SessionContext) (*models.SessionContext, error) {
	now := time.Now()
	sess.ID = uuid.NewString()
	sess.CreatedAt = now
	sess.UpdatedAt = now
	if err := s.put(ctx, &sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &sess, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*models.SessionContext, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	sess, err := s.docs.Get(ctx, id)
	if err != nil || s.sealer == nil {
		return sess, err
	}
	// A session sealed under another key is unusable; treat it as gone.
	if sess.AccessToken, err = s.sealer.Open(sess.AccessToken); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if sess.RefreshToken, err = s.sealer.Open(sess.RefreshToken); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return sess, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, sess *models.SessionContext) error {
	if sess == nil || sess.ID == "" {
		return errors.New("session has no id")
	}
	sess.UpdatedAt = time.Now()
	return s.put(ctx, sess)
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.docs.Delete(ctx, id)
}
