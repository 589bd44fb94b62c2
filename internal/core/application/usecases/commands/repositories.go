// Package commands contains the operations that change shipping state:
// quoting, shipment creation, label purchase, cancellation, tracking updates
// and carrier settings changes. Handlers validate the command, open a unit of
// work, apply the domain change and commit.
package commands

import (
	"context"
	"time"

	"shipping/internal/core/ports"
)

// Unit of Work interfaces narrowed to what each handler touches.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	ShipmentRepoFactory interface {
		ShipmentRepository() ports.ShipmentRepository
	}

	CarrierRepoFactory interface {
		CarrierConfigRepository() ports.CarrierConfigRepository
	}

	// ShipmentUoW is used by commands that only modify shipments.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   repo := uow.ShipmentRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	ShipmentUoW interface {
		TxManager
		ShipmentRepoFactory
	}

	ShipmentUoWFactory interface {
		Create() ShipmentUoW
	}

	// CarrierUoW is used by commands that read or change carrier settings.
	CarrierUoW interface {
		TxManager
		CarrierRepoFactory
	}

	CarrierUoWFactory interface {
		Create() CarrierUoW
	}
)

// Clock returns the current time. Handlers default to time.Now.
type Clock func() time.Time
