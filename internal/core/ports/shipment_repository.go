// Package ports defines the contracts between the shipping core and its
// adapters: persistence, carrier providers, notifications and authorization.
package ports

import (
	"context"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/shipment"
)

// ShipmentRepository defines the persistence contract for shipment aggregates.
// Lookups made inside a unit of work lock the returned row until the
// transaction ends, serializing concurrent label purchases and webhook
// updates of the same shipment.
type ShipmentRepository interface {
	// Add persists a new shipment.
	Add(ctx context.Context, aggregate *shipment.Shipment) error

	// Update persists the state and the new activity entries of an existing shipment.
	Update(ctx context.Context, aggregate *shipment.Shipment) error

	// Get retrieves a shipment without locking it.
	Get(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error)

	// GetForUpdate retrieves a shipment and locks its row.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error)

	// FindByTrackingNumber locks and returns the shipment carrying trackingNumber.
	// Returns errs.ErrObjectNotFound when there is none.
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*shipment.Shipment, error)

	// FindByProviderShipmentID locks and returns the shipment created at the
	// provider under providerShipmentID.
	FindByProviderShipmentID(ctx context.Context, providerShipmentID string) (*shipment.Shipment, error)
}
