package quote

import (
	"slices"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/errs"
)

// DefaultSessionTTL is how long a quote stays selectable.
const DefaultSessionTTL = 30 * time.Minute

// Session is a computed quote awaiting the customer's selection. It lives in
// a short-TTL store and is consumed when a shipment is created from it.
type Session struct {
	id            kernel.UUID
	request       Request
	options       []Option
	cheapestIndex int
	createdAt     time.Time
	expiresAt     time.Time
}

// NewSession ranks nothing itself: options must already be ordered.
func NewSession(id kernel.UUID, req Request, options []Option, now time.Time, ttl time.Duration) (*Session, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("session ttl", ttl, "1ns", "unbounded")
	}

	opts := slices.Clone(options)
	cheapest := CheapestIndex(opts)
	for i := range opts {
		opts[i].Cheapest = i == cheapest
	}
	return &Session{
		id:            id,
		request:       req,
		options:       opts,
		cheapestIndex: cheapest,
		createdAt:     now.UTC(),
		expiresAt:     now.UTC().Add(ttl),
	}, nil
}

// RestoreSession rebuilds a stored session as-is.
func RestoreSession(id kernel.UUID, req Request, options []Option, createdAt, expiresAt time.Time) *Session {
	return &Session{
		id:            id,
		request:       req,
		options:       slices.Clone(options),
		cheapestIndex: CheapestIndex(options),
		createdAt:     createdAt,
		expiresAt:     expiresAt,
	}
}

func (s *Session) ID() kernel.UUID      { return s.id }
func (s *Session) Request() Request     { return s.request }
func (s *Session) Options() []Option    { return slices.Clone(s.options) }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

// CheapestIndex is -1 when no carrier could quote.
func (s *Session) CheapestIndex() int { return s.cheapestIndex }

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.expiresAt)
}

// TTL returns the remaining lifetime at now, never negative.
func (s *Session) TTL(now time.Time) time.Duration {
	return max(s.expiresAt.Sub(now), 0)
}
