package ports

import (
	"context"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/shipment"
)

// ShipmentRequest is what a provider needs to create a shipment and rate it.
type ShipmentRequest struct {
	Reference     string
	To            kernel.Address
	From          kernel.Address
	Parcel        kernel.Parcel
	Currency      kernel.Currency
	OrderID       string
	CustomerEmail string
}

// ProviderShipment is the provider-side shipment with its offers. Rate
// amounts are in minor units of Rate.Currency, which is the requested
// currency whenever the provider quotes in it.
type ProviderShipment struct {
	ProviderShipmentID string
	Rates              []shipment.Rate
}

// Provider is a carrier integration. Exactly one is active per deployment.
// Failures are returned as *errs.ProviderError carrying the upstream message;
// implementations never retry.
type Provider interface {
	Name() string
	CreateShipmentAndRates(ctx context.Context, req ShipmentRequest) (ProviderShipment, error)
	BuyLabel(ctx context.Context, providerShipmentID, rateID string) (shipment.Label, error)
}

// WebhookParser turns a provider's raw tracking webhook into a canonical event.
// A payload that cannot be decoded yields a validation error.
type WebhookParser interface {
	ParseWebhook(body []byte) (shipment.TrackingEvent, error)
}
