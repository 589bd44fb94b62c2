package commands

import (
	"errors"
	"strings"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/errs"
	"shipping/internal/pkg/guard"
)

var ErrBuyLabelCommandIsNotConstructed = errors.New(
	"BuyLabelCommand must be created via NewBuyLabelCommand constructor",
)

// BuyLabelCommand purchases the label of a rated shipment for one of its rates.
// Repeating it for an already purchased shipment returns the stored label.
type BuyLabelCommand struct { //nolint:recvcheck //using for validation
	shipmentID kernel.UUID
	rateID     string

	guard guard.ConstructorGuard
}

func NewBuyLabelCommand(shipmentID kernel.UUID, rateID string) (BuyLabelCommand, error) {
	c := BuyLabelCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		c.setShipmentID(shipmentID),
		c.setRateID(rateID),
	); err != nil {
		return BuyLabelCommand{}, err
	}
	return c, nil
}

func (c BuyLabelCommand) Validate() error {
	return c.guard.Validate(ErrBuyLabelCommandIsNotConstructed)
}

func (c BuyLabelCommand) ShipmentID() kernel.UUID { return c.shipmentID }
func (c BuyLabelCommand) RateID() string          { return c.rateID }

func (c *BuyLabelCommand) setShipmentID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.shipmentID = id
	return nil
}

func (c *BuyLabelCommand) setRateID(rateID string) error {
	rateID = strings.TrimSpace(rateID)
	if rateID == "" {
		return errs.NewValueIsRequiredError("rate id")
	}
	c.rateID = rateID
	return nil
}
