package redisstore

import (
	"context"
	"errors"
	"time"

	"shipping/internal/adapters/out/quotesession"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/quote"
	"shipping/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "shipping:quote-session:"

// SessionStore keeps each quote session under its own key with the session
// TTL, so Redis expires it without any purge job.
type SessionStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewSessionStore(client *redis.Client, now func() time.Time) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{client: client, now: now}
}

func (s *SessionStore) Save(ctx context.Context, session *quote.Session) error {
	ttl := session.TTL(s.now())
	if ttl <= 0 {
		return errs.NewValueIsOutOfRangeError("quote session ttl", ttl, "1ns", "unbounded")
	}
	doc, err := quotesession.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.ID()), doc, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, id kernel.UUID) (*quote.Session, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errs.NewObjectNotFoundError("quote session", id.String())
	}
	if err != nil {
		return nil, err
	}

	session, err := quotesession.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(s.now()) {
		return nil, errs.NewObjectNotFoundError("quote session", id.String())
	}
	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	return s.client.Del(ctx, sessionKey(id)).Err()
}

func sessionKey(id kernel.UUID) string {
	return sessionKeyPrefix + id.String()
}
