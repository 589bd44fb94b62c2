// Package carrierrepo persists carrier pricing configurations, one row per
// carrier, each stamped with a revision number.
package carrierrepo

import (
	"encoding/json"
	"time"

	"shipping/internal/core/domain/model/carrier"

	"gorm.io/datatypes"
)

type CarrierConfigDTO struct {
	ID                         string `gorm:"size:32;primaryKey"`
	DisplayName                string `gorm:"size:128"`
	Enabled                    bool
	VolumetricDivisor          float64
	BaseRatePerKg              SpeedRatesDTO `gorm:"embedded;embeddedPrefix:base_rate_per_kg_"`
	MinCharge                  SpeedRatesDTO `gorm:"embedded;embeddedPrefix:min_charge_"`
	FuelSurchargePct           float64
	MarkupPct                  float64
	RemoteAreaSurchargeFlat    float64
	RemoteAreaPostcodePrefixes datatypes.JSON
	EtaDays                    SpeedDaysDTO `gorm:"embedded;embeddedPrefix:eta_days_"`
	WeightIncrementKg          float64
	Version                    int64
	UpdatedAt                  time.Time `gorm:"autoUpdateTime:false"`
}

func (CarrierConfigDTO) TableName() string {
	return "carrier_configs"
}

type SpeedRatesDTO struct {
	Standard float64
	Express  float64
}

type SpeedDaysDTO struct {
	Standard int
	Express  int
}

func fromDomain(c carrier.Config) (CarrierConfigDTO, error) {
	p := c.Params()
	prefixes := p.RemoteAreaPostcodePrefixes
	if prefixes == nil {
		prefixes = []string{}
	}
	raw, err := json.Marshal(prefixes)
	if err != nil {
		return CarrierConfigDTO{}, err
	}
	return CarrierConfigDTO{
		ID:                         p.ID,
		DisplayName:                p.DisplayName,
		Enabled:                    p.Enabled,
		VolumetricDivisor:          p.VolumetricDivisor,
		BaseRatePerKg:              SpeedRatesDTO(p.BaseRatePerKg),
		MinCharge:                  SpeedRatesDTO(p.MinCharge),
		FuelSurchargePct:           p.FuelSurchargePct,
		MarkupPct:                  p.MarkupPct,
		RemoteAreaSurchargeFlat:    p.RemoteAreaSurchargeFlat,
		RemoteAreaPostcodePrefixes: raw,
		EtaDays:                    SpeedDaysDTO(p.EtaDays),
		WeightIncrementKg:          p.WeightIncrementKg,
		Version:                    c.Version(),
		UpdatedAt:                  c.UpdatedAt(),
	}, nil
}

// ToParams maps a stored row back to configuration parameters. It is shared
// with the read side.
func (d CarrierConfigDTO) ToParams() (carrier.Params, error) {
	var prefixes []string
	if len(d.RemoteAreaPostcodePrefixes) > 0 {
		if err := json.Unmarshal(d.RemoteAreaPostcodePrefixes, &prefixes); err != nil {
			return carrier.Params{}, err
		}
	}
	return carrier.Params{
		ID:                         d.ID,
		DisplayName:                d.DisplayName,
		Enabled:                    d.Enabled,
		VolumetricDivisor:          d.VolumetricDivisor,
		BaseRatePerKg:              carrier.SpeedRates(d.BaseRatePerKg),
		MinCharge:                  carrier.SpeedRates(d.MinCharge),
		FuelSurchargePct:           d.FuelSurchargePct,
		MarkupPct:                  d.MarkupPct,
		RemoteAreaSurchargeFlat:    d.RemoteAreaSurchargeFlat,
		RemoteAreaPostcodePrefixes: prefixes,
		EtaDays:                    carrier.SpeedDays(d.EtaDays),
		WeightIncrementKg:          d.WeightIncrementKg,
	}, nil
}

func toDomain(d CarrierConfigDTO) (carrier.Config, error) {
	p, err := d.ToParams()
	if err != nil {
		return carrier.Config{}, err
	}
	return carrier.RestoreConfig(p, d.Version, d.UpdatedAt.UTC())
}
