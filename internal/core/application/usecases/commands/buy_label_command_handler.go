package commands

import (
	"context"
	"fmt"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/shipment"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"

	"go.uber.org/zap"
)

// BuyLabelResult carries the purchased label. AlreadyPurchased is set when
// the label was bought by an earlier call and no provider call was made.
type BuyLabelResult struct {
	ShipmentID       kernel.UUID
	Label            shipment.Label
	AlreadyPurchased bool
}

// BuyLabelCommandHandler buys the label of a rated shipment.
//
// The shipment row stays locked from the status check until commit, so of
// two concurrent purchases only the first reaches the provider; the second
// waits and then returns the stored label. Provider failures are returned
// unchanged and nothing is persisted. The label-ready notification and the
// status broadcast happen after commit and never fail the purchase.
//
// Example:
//
//	cmd, _ := NewBuyLabelCommand(shipmentID, "rate_123")
//	result, err := handler.Handle(ctx, cmd)
//	var perr *errs.ProviderError
//	if errors.As(err, &perr) {
//	    // show perr.Message to the operator
//	}
type BuyLabelCommandHandler struct {
	uowFactory ShipmentUoWFactory
	provider   ports.Provider
	notifier   ports.Notifier
	publisher  ports.StatusPublisher
	clock      Clock
	logger     *zap.Logger
}

func NewBuyLabelCommandHandler(
	uowFactory ShipmentUoWFactory,
	provider ports.Provider,
	notifier ports.Notifier,
	publisher ports.StatusPublisher,
	clock Clock,
	logger *zap.Logger,
) BuyLabelCommandHandler {
	if clock == nil {
		clock = time.Now
	}
	return BuyLabelCommandHandler{
		uowFactory: uowFactory,
		provider:   provider,
		notifier:   notifier,
		publisher:  publisher,
		clock:      clock,
		logger:     logger.With(zap.String("component", "buy_label")),
	}
}

func (h BuyLabelCommandHandler) Handle(ctx context.Context, cmd BuyLabelCommand) (BuyLabelResult, error) {
	if err := cmd.Validate(); err != nil {
		return BuyLabelResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return BuyLabelResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ShipmentRepository()
	s, err := repo.GetForUpdate(ctx, cmd.ShipmentID())
	if err != nil {
		return BuyLabelResult{}, err
	}

	if label, ok := s.Label(); ok {
		if s.SelectedRateID() != cmd.RateID() {
			return BuyLabelResult{}, errs.NewConflictError("label",
				fmt.Sprintf("already purchased with rate %s", s.SelectedRateID()))
		}
		return BuyLabelResult{ShipmentID: s.ID(), Label: label, AlreadyPurchased: true}, nil
	}

	if _, err = s.Status().PurchaseLabel(); err != nil {
		return BuyLabelResult{}, err
	}
	if _, ok := s.FindRate(cmd.RateID()); !ok {
		return BuyLabelResult{}, errs.NewObjectNotFoundError("rate", cmd.RateID())
	}

	previous := s.Status()
	label, err := h.provider.BuyLabel(ctx, s.ProviderShipmentID(), cmd.RateID())
	if err != nil {
		h.logger.Warn("label purchase failed", zap.Stringer("shipment", s.ID()), zap.Error(err))
		return BuyLabelResult{}, err
	}

	if err = label.Validate(); err != nil {
		err = errs.NewProviderErrorWithCause(h.provider.Name(), "buy label", err)
		h.logPurchaseNotStored(s, label, err)
		return BuyLabelResult{}, err
	}

	now := h.clock()
	if err = s.PurchaseLabel(cmd.RateID(), label, now); err != nil {
		h.logPurchaseNotStored(s, label, err)
		return BuyLabelResult{}, err
	}

	if err = repo.Update(ctx, s); err != nil {
		h.logPurchaseNotStored(s, label, err)
		return BuyLabelResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		h.logPurchaseNotStored(s, label, err)
		return BuyLabelResult{}, err
	}

	h.logger.Info("label purchased",
		zap.Stringer("shipment", s.ID()),
		zap.String("tracking_number", label.TrackingNumber),
		zap.String("carrier", label.Carrier),
	)

	h.afterPurchase(ctx, s, label, previous, now)

	return BuyLabelResult{ShipmentID: s.ID(), Label: label}, nil
}

func (h BuyLabelCommandHandler) afterPurchase(
	ctx context.Context,
	s *shipment.Shipment,
	label shipment.Label,
	previous shipment.Status,
	at time.Time,
) {
	if s.CustomerEmail() != "" {
		err := h.notifier.LabelReady(ctx, ports.LabelReady{
			ShipmentID:     s.ID(),
			OrderID:        s.OrderID(),
			CustomerEmail:  s.CustomerEmail(),
			TrackingNumber: label.TrackingNumber,
			LabelURL:       label.URL,
			Carrier:        label.Carrier,
			Service:        label.Service,
		})
		if err != nil {
			h.logger.Warn("label-ready notification failed", zap.Stringer("shipment", s.ID()), zap.Error(err))
		}
	}

	err := h.publisher.PublishStatusChange(ctx, ports.StatusChange{
		ShipmentID:     s.ID(),
		TrackingNumber: label.TrackingNumber,
		From:           previous,
		To:             s.Status(),
		At:             at,
	})
	if err != nil {
		h.logger.Warn("status change not published", zap.Stringer("shipment", s.ID()), zap.Error(err))
	}
}

// The provider has already charged for the label; operators need the
// tracking number to reconcile by hand.
func (h BuyLabelCommandHandler) logPurchaseNotStored(s *shipment.Shipment, label shipment.Label, err error) {
	h.logger.Error("purchased label not stored",
		zap.Stringer("shipment", s.ID()),
		zap.String("provider_shipment_id", s.ProviderShipmentID()),
		zap.String("tracking_number", label.TrackingNumber),
		zap.String("label_url", label.URL),
		zap.Error(err),
	)
}
