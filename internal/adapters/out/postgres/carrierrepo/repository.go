package carrierrepo

import (
	"context"
	"errors"
	"strings"
	"time"

	"shipping/internal/core/domain/model/carrier"
	"shipping/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCarrierConfigRepository stores carrier configurations. Save is an
// upsert that bumps the revision; concurrent saves of the same carrier are
// serialized by a row lock and the last one wins.
type GormCarrierConfigRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormCarrierConfigRepository(db *gorm.DB, now func() time.Time) *GormCarrierConfigRepository {
	if now == nil {
		now = time.Now
	}
	return &GormCarrierConfigRepository{db: db, now: now}
}

func (r *GormCarrierConfigRepository) List(ctx context.Context) ([]carrier.Config, error) {
	var dtos []CarrierConfigDTO
	if err := r.db.WithContext(ctx).Order("id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	configs := make([]carrier.Config, 0, len(dtos))
	for _, dto := range dtos {
		c, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, nil
}

func (r *GormCarrierConfigRepository) Get(ctx context.Context, carrierID string) (carrier.Config, error) {
	id := strings.ToLower(strings.TrimSpace(carrierID))
	if id == "" {
		return carrier.Config{}, errs.NewValueIsRequiredError("carrier id")
	}

	var dto CarrierConfigDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&dto, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return carrier.Config{}, errs.NewObjectNotFoundError("carrier", id)
		}
		return carrier.Config{}, err
	}
	return toDomain(dto)
}

func (r *GormCarrierConfigRepository) Save(ctx context.Context, cfg carrier.Config) (carrier.Config, error) {
	if err := cfg.Validate(); err != nil {
		return carrier.Config{}, err
	}

	db := r.db.WithContext(ctx)

	var current []CarrierConfigDTO
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "version").
		Where("id = ?", cfg.ID()).
		Limit(1).
		Find(&current).Error; err != nil {
		return carrier.Config{}, err
	}
	var previous int64
	if len(current) > 0 {
		previous = current[0].Version
	}

	next := cfg.NextRevision(previous, r.now().UTC())
	dto, err := fromDomain(next)
	if err != nil {
		return carrier.Config{}, err
	}
	if err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&dto).Error; err != nil {
		return carrier.Config{}, err
	}
	return next, nil
}

// EnsureDefaults inserts the given configurations as revision 1, leaving
// carriers that already have a row untouched.
func (r *GormCarrierConfigRepository) EnsureDefaults(ctx context.Context, defaults []carrier.Config) error {
	if len(defaults) == 0 {
		return nil
	}

	at := r.now().UTC()
	dtos := make([]CarrierConfigDTO, 0, len(defaults))
	for _, c := range defaults {
		dto, err := fromDomain(c.NextRevision(0, at))
		if err != nil {
			return err
		}
		dtos = append(dtos, dto)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&dtos).Error
}
