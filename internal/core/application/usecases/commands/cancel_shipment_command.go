package commands

import (
	"errors"
	"strings"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/guard"
)

var ErrCancelShipmentCommandIsNotConstructed = errors.New(
	"CancelShipmentCommand must be created via NewCancelShipmentCommand constructor",
)

// CancelShipmentCommand cancels a shipment that has no label yet.
type CancelShipmentCommand struct {
	shipmentID kernel.UUID
	reason     string
	actor      string

	guard guard.ConstructorGuard
}

func NewCancelShipmentCommand(shipmentID kernel.UUID, reason, actor string) (CancelShipmentCommand, error) {
	if err := shipmentID.Validate(); err != nil {
		return CancelShipmentCommand{}, err
	}
	return CancelShipmentCommand{
		shipmentID: shipmentID,
		reason:     strings.TrimSpace(reason),
		actor:      strings.TrimSpace(actor),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c CancelShipmentCommand) Validate() error {
	return c.guard.Validate(ErrCancelShipmentCommandIsNotConstructed)
}

func (c CancelShipmentCommand) ShipmentID() kernel.UUID { return c.shipmentID }
func (c CancelShipmentCommand) Reason() string          { return c.reason }
func (c CancelShipmentCommand) Actor() string           { return c.actor }
