package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"dealership_api/internal/adapters/observability"
	"dealership_api/internal/domain"
)

const keyPrefix = "session:"

// SessionStore keeps one principal per opaque token, expiring after ttl.
type SessionStore struct{ c *redis.Client }

func New(addr, pass string, db int) *SessionStore {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}))
}

func NewWithClient(c *redis.Client) *SessionStore { return &SessionStore{c: c} }

func (s *SessionStore) Ping(ctx context.Context) error { return s.c.Ping(ctx).Err() }

func (s *SessionStore) Create(ctx context.Context, p domain.Principal, ttl time.Duration) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	token := uuid.NewString()
	if err := s.c.Set(ctx, keyPrefix+token, b, ttl).Err(); err != nil {
		return "", err
	}
	observability.ObserveSession("create")
	return token, nil
}

// Get returns domain.ErrNotFound for unknown or expired tokens.
func (s *SessionStore) Get(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, domain.ErrNotFound
	}
	v, err := s.c.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveSession("miss")
		return domain.Principal{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Principal{}, err
	}
	var p domain.Principal
	if err := json.Unmarshal(v, &p); err != nil {
		return domain.Principal{}, err
	}
	observability.ObserveSession("hit")
	return p, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	observability.ObserveSession("delete")
	return s.c.Del(ctx, keyPrefix+token).Err()
}
