// Package queries contains the read side: shipment lookups, the dashboard
// summary, the CSV export, carrier settings and stored quote sessions.
// Shipment queries read the tables directly with SQL.
package queries

import (
	"errors"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/shipment"
	"shipping/internal/pkg/guard"
)

var ErrGetShipmentQueryIsNotConstructed = errors.New(
	"GetShipmentQuery must be created via NewGetShipmentQuery constructor",
)

// GetShipmentQuery loads one shipment with its activity log.
type GetShipmentQuery struct {
	shipmentID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetShipmentQuery(shipmentID kernel.UUID) (GetShipmentQuery, error) {
	if err := shipmentID.Validate(); err != nil {
		return GetShipmentQuery{}, err
	}
	return GetShipmentQuery{shipmentID: shipmentID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetShipmentQuery) Validate() error {
	return q.guard.Validate(ErrGetShipmentQueryIsNotConstructed)
}

func (q GetShipmentQuery) ShipmentID() kernel.UUID { return q.shipmentID }

type ParcelView struct {
	LengthCm float64
	WidthCm  float64
	HeightCm float64
	WeightKg float64
}

type ActivityView struct {
	At      time.Time
	Type    string
	Payload map[string]any
}

// GetShipmentQueryResponse is the full shipment record.
type GetShipmentQueryResponse struct {
	ID                 kernel.UUID
	OrderID            string
	Status             shipment.Status
	Currency           string
	To                 kernel.AddressParams
	From               kernel.AddressParams
	Parcel             ParcelView
	CustomerEmail      string
	Provider           string
	ProviderShipmentID string
	Rates              []shipment.Rate
	SelectedRateID     string
	Carrier            string
	Service            string
	TrackingNumber     string
	LabelURL           string
	LastEventAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Activity           []ActivityView
}
