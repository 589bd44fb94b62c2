package shipmentrepo

import (
	"context"
	"errors"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/shipment"
	"shipping/internal/pkg/errs"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// GormShipmentRepository stores shipments through the transaction handed in
// by the unit of work. Every lookup takes a row lock, so callers holding the
// transaction are serialized per shipment.
type GormShipmentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

func NewGormShipmentRepository(db *gorm.DB, tracker aggregateTracker) *GormShipmentRepository {
	return &GormShipmentRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormShipmentRepository) Add(ctx context.Context, aggregate *shipment.Shipment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, entries, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	if err = db.Create(&dto).Error; err != nil {
		if isDuplicateKey(err) {
			return errs.NewConflictError("shipment", "already exists: "+aggregate.ID().String())
		}
		return err
	}
	if err = r.appendActivity(db, entries); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormShipmentRepository) Update(ctx context.Context, aggregate *shipment.Shipment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, entries, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	result := db.Model(&ShipmentDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("shipment", aggregate.ID().String())
	}

	if err = r.appendActivity(db, entries); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormShipmentRepository) Get(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, r.db.WithContext(ctx), "shipment", id.String(), "id = ?", id.Bytes())
}

func (r *GormShipmentRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, r.locked(ctx), "shipment", id.String(), "id = ?", id.Bytes())
}

func (r *GormShipmentRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*shipment.Shipment, error) {
	if trackingNumber == "" {
		return nil, errs.NewValueIsRequiredError("tracking number")
	}
	return r.first(ctx, r.locked(ctx), "tracking number", trackingNumber, "tracking_number = ?", trackingNumber)
}

func (r *GormShipmentRepository) FindByProviderShipmentID(
	ctx context.Context,
	providerShipmentID string,
) (*shipment.Shipment, error) {
	if providerShipmentID == "" {
		return nil, errs.NewValueIsRequiredError("provider shipment id")
	}
	return r.first(ctx, r.locked(ctx), "provider shipment id", providerShipmentID,
		"provider_shipment_id = ?", providerShipmentID)
}

func (r *GormShipmentRepository) locked(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *GormShipmentRepository) first(
	ctx context.Context,
	db *gorm.DB,
	param string,
	id any,
	query string,
	args ...any,
) (*shipment.Shipment, error) {
	var dto ShipmentDTO
	if err := db.Order("created_at").First(&dto, append([]any{query}, args...)...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError(param, id)
		}
		return nil, err
	}

	var entries []ActivityDTO
	if err := r.db.WithContext(ctx).
		Where("shipment_id = ?", dto.ID).
		Order("seq").
		Find(&entries).Error; err != nil {
		return nil, err
	}

	return toDomain(dto, entries)
}

// appendActivity inserts entries that are not stored yet. Stored entries are
// never rewritten.
func (r *GormShipmentRepository) appendActivity(db *gorm.DB, entries []ActivityDTO) error {
	if len(entries) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entries).Error
}

// isDuplicateKey recognises a unique violation from lib/pq, or one gorm
// translated from the MySQL driver (error 1062).
func isDuplicateKey(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
