package queries

import (
	"context"
	"errors"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/quote"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/guard"
)

var ErrGetQuoteSessionQueryIsNotConstructed = errors.New(
	"GetQuoteSessionQuery must be created via NewGetQuoteSessionQuery constructor",
)

type GetQuoteSessionQuery struct {
	sessionID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetQuoteSessionQuery(sessionID kernel.UUID) (GetQuoteSessionQuery, error) {
	if err := sessionID.Validate(); err != nil {
		return GetQuoteSessionQuery{}, err
	}
	return GetQuoteSessionQuery{sessionID: sessionID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetQuoteSessionQuery) Validate() error {
	return q.guard.Validate(ErrGetQuoteSessionQueryIsNotConstructed)
}

func (q GetQuoteSessionQuery) SessionID() kernel.UUID { return q.sessionID }

// GetQuoteSessionQueryHandler returns a session that has not expired yet.
type GetQuoteSessionQueryHandler struct {
	store ports.QuoteSessionStore
}

func NewGetQuoteSessionQueryHandler(store ports.QuoteSessionStore) GetQuoteSessionQueryHandler {
	return GetQuoteSessionQueryHandler{store: store}
}

func (h GetQuoteSessionQueryHandler) Handle(ctx context.Context, query GetQuoteSessionQuery) (*quote.Session, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.store.Get(ctx, query.SessionID())
}
