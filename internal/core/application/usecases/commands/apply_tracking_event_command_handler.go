package commands

import (
	"context"
	"errors"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/shipment"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"

	"go.uber.org/zap"
)

// TrackingOutcome tells what happened to a tracking event.
type TrackingOutcome string

const (
	// TrackingApplied means the headline status was updated.
	TrackingApplied TrackingOutcome = "applied"
	// TrackingRecorded means the event was logged without a status change
	// (unmatched, stale or unchanged status).
	TrackingRecorded TrackingOutcome = "recorded"
	// TrackingIgnored means no shipment matched; nothing was stored.
	TrackingIgnored TrackingOutcome = "ignored"
)

type TrackingResult struct {
	Outcome    TrackingOutcome
	ShipmentID kernel.UUID
	Status     shipment.Status
}

// ApplyTrackingEventCommandHandler finds the shipment an event refers to,
// by tracking number first and provider shipment id second, and applies it.
// Events for unknown shipments are ignored rather than rejected so that
// carriers do not keep retrying them.
type ApplyTrackingEventCommandHandler struct {
	uowFactory ShipmentUoWFactory
	publisher  ports.StatusPublisher
	clock      Clock
	logger     *zap.Logger
}

func NewApplyTrackingEventCommandHandler(
	uowFactory ShipmentUoWFactory,
	publisher ports.StatusPublisher,
	clock Clock,
	logger *zap.Logger,
) ApplyTrackingEventCommandHandler {
	if clock == nil {
		clock = time.Now
	}
	return ApplyTrackingEventCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		clock:      clock,
		logger:     logger.With(zap.String("component", "apply_tracking_event")),
	}
}

func (h ApplyTrackingEventCommandHandler) Handle(ctx context.Context, cmd ApplyTrackingEventCommand) (TrackingResult, error) {
	if err := cmd.Validate(); err != nil {
		return TrackingResult{}, err
	}
	ev := cmd.Event()
	log := h.logger.With(
		zap.String("provider", ev.Provider),
		zap.String("tracking_number", ev.TrackingNumber),
		zap.String("provider_shipment_id", ev.ProviderShipmentID),
		zap.String("raw_status", ev.RawStatus),
	)

	if !ev.HasTarget() {
		log.Info("ignored event: no shipment reference")
		return TrackingResult{Outcome: TrackingIgnored}, nil
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return TrackingResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ShipmentRepository()
	s, err := h.find(ctx, repo, ev)
	if errors.Is(err, errs.ErrObjectNotFound) {
		log.Info("ignored event: unknown shipment")
		return TrackingResult{Outcome: TrackingIgnored}, nil
	}
	if err != nil {
		return TrackingResult{}, err
	}

	previous := s.Status()
	now := h.clock()
	changed, err := s.ApplyTracking(ev, now)
	if err != nil {
		return TrackingResult{}, err
	}

	if err = repo.Update(ctx, s); err != nil {
		return TrackingResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return TrackingResult{}, err
	}

	result := TrackingResult{Outcome: TrackingRecorded, ShipmentID: s.ID(), Status: s.Status()}
	if !changed || previous == s.Status() {
		log.Info("tracking event recorded", zap.Stringer("shipment", s.ID()), zap.Stringer("status", s.Status()))
		return result, nil
	}

	result.Outcome = TrackingApplied
	log.Info("shipment status changed",
		zap.Stringer("shipment", s.ID()),
		zap.Stringer("from", previous),
		zap.Stringer("to", s.Status()),
	)

	err = h.publisher.PublishStatusChange(ctx, ports.StatusChange{
		ShipmentID:     s.ID(),
		TrackingNumber: s.TrackingNumber(),
		From:           previous,
		To:             s.Status(),
		At:             now,
	})
	if err != nil {
		log.Warn("status change not published", zap.Error(err))
	}
	return result, nil
}

func (h ApplyTrackingEventCommandHandler) find(
	ctx context.Context,
	repo ports.ShipmentRepository,
	ev shipment.TrackingEvent,
) (*shipment.Shipment, error) {
	if ev.TrackingNumber != "" {
		s, err := repo.FindByTrackingNumber(ctx, ev.TrackingNumber)
		if err == nil || !errors.Is(err, errs.ErrObjectNotFound) || ev.ProviderShipmentID == "" {
			return s, err
		}
	}
	return repo.FindByProviderShipmentID(ctx, ev.ProviderShipmentID)
}
