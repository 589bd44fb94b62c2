package commands

import (
	"context"
	"time"

	"shipping/internal/core/domain/model/carrier"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/quote"
	"shipping/internal/core/domain/services"
	"shipping/internal/core/ports"

	"go.uber.org/zap"
)

// CreateQuoteCommandHandler prices a quote request with the current carrier
// settings and keeps the ranked options in a short-lived session.
//
// Carriers that cannot be priced are logged and left out. A failure to store
// the session is logged too: the options are still returned, but the session
// cannot be used to create a shipment later.
type CreateQuoteCommandHandler struct {
	uowFactory CarrierUoWFactory
	sessions   ports.QuoteSessionStore
	calculator services.RateCalculator
	ttl        time.Duration
	clock      Clock
	logger     *zap.Logger
}

func NewCreateQuoteCommandHandler(
	uowFactory CarrierUoWFactory,
	sessions ports.QuoteSessionStore,
	ttl time.Duration,
	clock Clock,
	logger *zap.Logger,
) CreateQuoteCommandHandler {
	if ttl <= 0 {
		ttl = quote.DefaultSessionTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return CreateQuoteCommandHandler{
		uowFactory: uowFactory,
		sessions:   sessions,
		calculator: services.NewRateCalculator(),
		ttl:        ttl,
		clock:      clock,
		logger:     logger.With(zap.String("component", "create_quote")),
	}
}

func (h CreateQuoteCommandHandler) Handle(ctx context.Context, cmd CreateQuoteCommand) (*quote.Session, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	configs, err := h.loadConfigs(ctx)
	if err != nil {
		return nil, err
	}

	options, failures, err := h.calculator.Quote(cmd.Request(), configs)
	if err != nil {
		return nil, err
	}
	for _, f := range failures {
		h.logger.Warn("carrier dropped from quote", zap.String("carrier", f.CarrierID), zap.Error(f.Err))
	}

	session, err := quote.NewSession(kernel.NewUUID(), cmd.Request(), options, h.clock(), h.ttl)
	if err != nil {
		return nil, err
	}
	if err = h.sessions.Save(ctx, session); err != nil {
		h.logger.Error("quote session not stored", zap.Stringer("session", session.ID()), zap.Error(err))
	}
	return session, nil
}

// loadConfigs reads the carrier settings, bootstrapping the defaults when
// the store is empty.
func (h CreateQuoteCommandHandler) loadConfigs(ctx context.Context) ([]carrier.Config, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.CarrierConfigRepository()
	configs, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(configs) > 0 {
		return configs, nil
	}

	configs = carrier.Defaults()
	if err = repo.EnsureDefaults(ctx, configs); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	h.logger.Info("carrier settings bootstrapped", zap.Int("carriers", len(configs)))
	return configs, nil
}
