package ports

import (
	"context"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/quote"
)

// QuoteSessionStore keeps quote sessions until they expire.
type QuoteSessionStore interface {
	Save(ctx context.Context, session *quote.Session) error

	// Get returns errs.ErrObjectNotFound for unknown and expired sessions.
	Get(ctx context.Context, id kernel.UUID) (*quote.Session, error)

	Delete(ctx context.Context, id kernel.UUID) error
}
