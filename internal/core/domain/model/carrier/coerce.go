package carrier

import (
	"errors"

	"shipping/internal/pkg/errs"
)

// SpeedInput is a partially specified pair of per-speed amounts.
type SpeedInput struct {
	Standard *float64
	Express  *float64
}

// SpeedDaysInput is a partially specified pair of per-speed transit times.
type SpeedDaysInput struct {
	Standard *int
	Express  *int
}

// Input is an administrator-supplied configuration where every field may be
// absent. A nil field keeps the current (or default) value.
type Input struct {
	DisplayName                *string
	Enabled                    *bool
	VolumetricDivisor          *float64
	BaseRatePerKg              SpeedInput
	MinCharge                  SpeedInput
	FuelSurchargePct           *float64
	MarkupPct                  *float64
	RemoteAreaSurchargeFlat    *float64
	RemoteAreaPostcodePrefixes []string
	EtaDays                    SpeedDaysInput
	WeightIncrementKg          *float64
}

// Coerce builds a configuration for id from in, starting from the carrier
// defaults. Missing, NaN, infinite or negative values silently fall back to
// the default so that a sloppy bulk save never produces an unusable carrier.
// It only fails when id is empty.
func Coerce(id string, in Input) (Config, error) {
	base := Default(id)
	if err := base.Validate(); err != nil {
		return Config{}, errs.NewValueIsRequiredError("carrier id")
	}
	return base.merge(in, true)
}

// Apply sets every field present in in through the per-field setters.
// Unlike Coerce it rejects invalid values, reporting all of them at once.
func (c Config) Apply(in Input) (Config, error) {
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c.merge(in, false)
}

func (c Config) merge(in Input, lenient bool) (Config, error) {
	var problems []error
	step := func(next Config, err error) {
		if err != nil {
			if !lenient {
				problems = append(problems, err)
			}
			return
		}
		c = next
	}

	if in.DisplayName != nil {
		c = c.WithDisplayName(*in.DisplayName)
	}
	if in.Enabled != nil {
		c = c.WithEnabled(*in.Enabled)
	}
	if in.VolumetricDivisor != nil {
		step(c.WithVolumetricDivisor(*in.VolumetricDivisor))
	}
	if v := in.BaseRatePerKg.Standard; v != nil {
		step(c.WithBaseRatePerKg(Standard, *v))
	}
	if v := in.BaseRatePerKg.Express; v != nil {
		step(c.WithBaseRatePerKg(Express, *v))
	}
	if v := in.MinCharge.Standard; v != nil {
		step(c.WithMinCharge(Standard, *v))
	}
	if v := in.MinCharge.Express; v != nil {
		step(c.WithMinCharge(Express, *v))
	}
	if in.FuelSurchargePct != nil {
		step(c.WithFuelSurchargePct(*in.FuelSurchargePct))
	}
	if in.MarkupPct != nil {
		step(c.WithMarkupPct(*in.MarkupPct))
	}
	if in.RemoteAreaSurchargeFlat != nil {
		step(c.WithRemoteAreaSurchargeFlat(*in.RemoteAreaSurchargeFlat))
	}
	if in.RemoteAreaPostcodePrefixes != nil {
		c = c.WithRemoteAreaPostcodePrefixes(in.RemoteAreaPostcodePrefixes)
	}
	if v := in.EtaDays.Standard; v != nil {
		step(c.WithEtaDays(Standard, *v))
	}
	if v := in.EtaDays.Express; v != nil {
		step(c.WithEtaDays(Express, *v))
	}
	if in.WeightIncrementKg != nil {
		step(c.WithWeightIncrementKg(*in.WeightIncrementKg))
	}

	if err := errors.Join(problems...); err != nil {
		return Config{}, err
	}
	return c, nil
}
