package commands

import (
	"context"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/quote"
	"shipping/internal/core/domain/model/shipment"
	"shipping/internal/core/ports"

	"go.uber.org/zap"
)

// CreateShipmentResult is returned once the shipment is stored as rated.
type CreateShipmentResult struct {
	ShipmentID kernel.UUID
	Status     shipment.Status
	Rates      []shipment.Rate
}

// CreateShipmentCommandHandler creates the provider-side shipment and stores
// the local record in status rated.
//
// The provider is called before the transaction starts, so a provider
// failure leaves no local state behind.
type CreateShipmentCommandHandler struct {
	uowFactory ShipmentUoWFactory
	provider   ports.Provider
	sessions   ports.QuoteSessionStore
	clock      Clock
	logger     *zap.Logger
}

func NewCreateShipmentCommandHandler(
	uowFactory ShipmentUoWFactory,
	provider ports.Provider,
	sessions ports.QuoteSessionStore,
	clock Clock,
	logger *zap.Logger,
) CreateShipmentCommandHandler {
	if clock == nil {
		clock = time.Now
	}
	return CreateShipmentCommandHandler{
		uowFactory: uowFactory,
		provider:   provider,
		sessions:   sessions,
		clock:      clock,
		logger:     logger.With(zap.String("component", "create_shipment")),
	}
}

func (h CreateShipmentCommandHandler) Handle(ctx context.Context, cmd CreateShipmentCommand) (CreateShipmentResult, error) {
	if err := cmd.Validate(); err != nil {
		return CreateShipmentResult{}, err
	}

	parcel, currency, session, err := h.resolveSource(ctx, cmd)
	if err != nil {
		return CreateShipmentResult{}, err
	}

	s, err := shipment.NewShipment(shipment.Params{
		ID:            kernel.NewUUID(),
		OrderID:       cmd.OrderID(),
		Currency:      currency,
		To:            cmd.To(),
		From:          cmd.From(),
		Parcel:        parcel,
		CustomerEmail: cmd.CustomerEmail(),
		CreatedAt:     h.clock(),
	})
	if err != nil {
		return CreateShipmentResult{}, err
	}

	created, err := h.provider.CreateShipmentAndRates(ctx, ports.ShipmentRequest{
		Reference:     s.ID().String(),
		To:            s.To(),
		From:          s.From(),
		Parcel:        s.Parcel(),
		Currency:      s.Currency(),
		OrderID:       s.OrderID(),
		CustomerEmail: s.CustomerEmail(),
	})
	if err != nil {
		return CreateShipmentResult{}, err
	}

	if err = s.Rate(h.provider.Name(), created.ProviderShipmentID, created.Rates, h.clock()); err != nil {
		return CreateShipmentResult{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return CreateShipmentResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.ShipmentRepository().Add(ctx, s); err != nil {
		return CreateShipmentResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CreateShipmentResult{}, err
	}

	if session != nil {
		if err = h.sessions.Delete(ctx, session.ID()); err != nil {
			h.logger.Warn("quote session not released", zap.Stringer("session", session.ID()), zap.Error(err))
		}
	}

	h.logger.Info("shipment rated",
		zap.Stringer("shipment", s.ID()),
		zap.String("provider", s.Provider()),
		zap.String("provider_shipment_id", s.ProviderShipmentID()),
		zap.Int("rates", len(s.Rates())),
	)

	return CreateShipmentResult{
		ShipmentID: s.ID(),
		Status:     s.Status(),
		Rates:      s.Rates(),
	}, nil
}

// resolveSource picks the parcel and currency from the command, falling back
// to the referenced quote session.
func (h CreateShipmentCommandHandler) resolveSource(
	ctx context.Context,
	cmd CreateShipmentCommand,
) (kernel.Parcel, kernel.Currency, *quote.Session, error) {
	var session *quote.Session
	if id := cmd.QuoteSessionID(); id != nil {
		var err error
		if session, err = h.sessions.Get(ctx, *id); err != nil {
			return kernel.Parcel{}, kernel.Currency{}, nil, err
		}
	}

	var parcel kernel.Parcel
	switch {
	case cmd.Parcel() != nil:
		parcel = *cmd.Parcel()
	case session != nil:
		parcel = session.Request().Parcel()
	}

	currency := kernel.MustCurrency(kernel.DefaultCurrency)
	switch {
	case cmd.Currency() != nil:
		currency = *cmd.Currency()
	case session != nil:
		currency = session.Request().Currency()
	}

	return parcel, currency, session, nil
}
