package ports

import (
	"context"

	"shipping/internal/core/domain/model/carrier"
)

// CarrierConfigRepository stores one configuration per carrier.
// Writes are last-write-wins; every save bumps the stored version.
type CarrierConfigRepository interface {
	// List returns all configurations ordered by carrier id.
	List(ctx context.Context) ([]carrier.Config, error)

	// Get returns the configuration of one carrier or errs.ErrObjectNotFound.
	Get(ctx context.Context, carrierID string) (carrier.Config, error)

	// Save upserts cfg and returns it with its new version and timestamp.
	Save(ctx context.Context, cfg carrier.Config) (carrier.Config, error)

	// EnsureDefaults inserts the given configurations for carriers that have
	// none yet, leaving existing rows untouched.
	EnsureDefaults(ctx context.Context, defaults []carrier.Config) error
}
