package commands

import (
	"errors"

	"shipping/internal/core/domain/model/shipment"
	"shipping/internal/pkg/guard"
)

var ErrApplyTrackingEventCommandIsNotConstructed = errors.New(
	"ApplyTrackingEventCommand must be created via NewApplyTrackingEventCommand constructor",
)

// ApplyTrackingEventCommand applies one normalized carrier webhook event.
type ApplyTrackingEventCommand struct {
	event shipment.TrackingEvent

	guard guard.ConstructorGuard
}

func NewApplyTrackingEventCommand(event shipment.TrackingEvent) ApplyTrackingEventCommand {
	return ApplyTrackingEventCommand{
		event: event,
		guard: guard.NewConstructorGuard(),
	}
}

func (c ApplyTrackingEventCommand) Validate() error {
	return c.guard.Validate(ErrApplyTrackingEventCommandIsNotConstructed)
}

func (c ApplyTrackingEventCommand) Event() shipment.TrackingEvent {
	return c.event
}
