package commands

import (
	"errors"
	"strings"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/errs"
	"shipping/internal/pkg/guard"
)

var ErrCreateShipmentCommandIsNotConstructed = errors.New(
	"CreateShipmentCommand must be created via NewCreateShipmentCommand constructor",
)

// CreateShipmentParams is the raw input of NewCreateShipmentCommand. Parcel
// and Currency may be left empty when QuoteSessionID names a stored quote;
// they are then taken from that quote.
type CreateShipmentParams struct {
	To             kernel.Address
	From           kernel.Address
	Parcel         *kernel.Parcel
	Currency       *kernel.Currency
	OrderID        string
	CustomerEmail  string
	QuoteSessionID *kernel.UUID
}

// CreateShipmentCommand creates a shipment at the active provider and rates it.
type CreateShipmentCommand struct { //nolint:recvcheck //using for validation
	to             kernel.Address
	from           kernel.Address
	parcel         *kernel.Parcel
	currency       *kernel.Currency
	orderID        string
	customerEmail  string
	quoteSessionID *kernel.UUID

	guard guard.ConstructorGuard
}

func NewCreateShipmentCommand(p CreateShipmentParams) (CreateShipmentCommand, error) {
	c := CreateShipmentCommand{
		orderID:       strings.TrimSpace(p.OrderID),
		customerEmail: strings.TrimSpace(p.CustomerEmail),
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setAddress(&c.to, "to", p.To),
		c.setAddress(&c.from, "from", p.From),
		c.setSource(p.Parcel, p.Currency, p.QuoteSessionID),
	); err != nil {
		return CreateShipmentCommand{}, err
	}
	return c, nil
}

func (c CreateShipmentCommand) Validate() error {
	return c.guard.Validate(ErrCreateShipmentCommandIsNotConstructed)
}

func (c CreateShipmentCommand) To() kernel.Address           { return c.to }
func (c CreateShipmentCommand) From() kernel.Address         { return c.from }
func (c CreateShipmentCommand) Parcel() *kernel.Parcel       { return c.parcel }
func (c CreateShipmentCommand) Currency() *kernel.Currency   { return c.currency }
func (c CreateShipmentCommand) OrderID() string              { return c.orderID }
func (c CreateShipmentCommand) CustomerEmail() string        { return c.customerEmail }
func (c CreateShipmentCommand) QuoteSessionID() *kernel.UUID { return c.quoteSessionID }

func (c *CreateShipmentCommand) setAddress(dst *kernel.Address, side string, a kernel.Address) error {
	if err := a.RequireStreet(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause(side+" address", err)
	}
	*dst = a
	return nil
}

func (c *CreateShipmentCommand) setSource(parcel *kernel.Parcel, currency *kernel.Currency, sessionID *kernel.UUID) error {
	if sessionID != nil {
		if err := sessionID.Validate(); err != nil {
			return err
		}
		c.quoteSessionID = sessionID
	}
	if parcel != nil {
		if err := parcel.Validate(); err != nil {
			return err
		}
		c.parcel = parcel
	}
	if currency != nil && !currency.IsZero() {
		c.currency = currency
	}
	if c.parcel == nil && c.quoteSessionID == nil {
		return errs.NewValueIsRequiredError("parcel")
	}
	return nil
}
