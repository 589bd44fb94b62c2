package commands

import (
	"context"
	"time"

	"shipping/internal/core/domain/model/shipment"

	"go.uber.org/zap"
)

// CancelShipmentCommandHandler cancels draft and rated shipments. A shipment
// with a purchased label is rejected with a conflict.
type CancelShipmentCommandHandler struct {
	uowFactory ShipmentUoWFactory
	clock      Clock
	logger     *zap.Logger
}

func NewCancelShipmentCommandHandler(uowFactory ShipmentUoWFactory, clock Clock, logger *zap.Logger) CancelShipmentCommandHandler {
	if clock == nil {
		clock = time.Now
	}
	return CancelShipmentCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		logger:     logger.With(zap.String("component", "cancel_shipment")),
	}
}

func (h CancelShipmentCommandHandler) Handle(ctx context.Context, cmd CancelShipmentCommand) (*shipment.Shipment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ShipmentRepository()
	s, err := repo.GetForUpdate(ctx, cmd.ShipmentID())
	if err != nil {
		return nil, err
	}

	reason := cmd.Reason()
	if cmd.Actor() != "" {
		reason = cmd.Actor() + ": " + reason
	}
	if err = s.Cancel(reason, h.clock()); err != nil {
		return nil, err
	}

	if err = repo.Update(ctx, s); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Info("shipment cancelled", zap.Stringer("shipment", s.ID()), zap.String("actor", cmd.Actor()))
	return s, nil
}
