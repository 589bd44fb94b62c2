package services

import (
	"cmp"
	"fmt"
	"slices"

	"shipping/internal/core/domain/model/carrier"
	"shipping/internal/core/domain/model/quote"
	"shipping/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CarrierFailure describes a carrier dropped from a quote because its
// configuration could not be priced.
type CarrierFailure struct {
	CarrierID string
	Err       error
}

// RateCalculator turns a quote request and the carrier configurations into
// ranked, priced options. It is pure: no I/O, no clock.
//
// Pricing per enabled carrier:
//   - chargeable weight = max(actual, L×W×H / divisor), rounded up to the weight increment if set
//   - base   = max(chargeable × rate[speed], minCharge[speed])
//   - fuel   = base × fuel% / 100
//   - remote = flat surcharge when the destination postcode is in a remote area
//   - markup = (base + fuel) × markup% / 100
//   - total  = base + fuel + remote + markup, rounded to the currency minor unit
//
// Options are ordered by total, then transit days, then carrier id.
//
// Example usage:
//
//	calc := NewRateCalculator()
//	options, failures, err := calc.Quote(req, configs)
//	if err != nil {
//	    // malformed request, nothing was priced
//	}
//	for _, f := range failures {
//	    // carrier f.CarrierID was skipped
//	}
type RateCalculator struct{}

func NewRateCalculator() RateCalculator {
	return RateCalculator{}
}

// Quote prices req with every enabled carrier in configs that the request
// does not filter out. An invalid request fails before any carrier is
// priced. A carrier that cannot be priced is reported in the failures and
// left out; the others are still returned. No eligible carrier yields an
// empty, non-nil slice.
func (c RateCalculator) Quote(req quote.Request, configs []carrier.Config) ([]quote.Option, []CarrierFailure, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	if err := req.Parcel().Validate(); err != nil {
		return nil, nil, err
	}

	options := make([]quote.Option, 0, len(configs))
	var failures []CarrierFailure
	for _, cfg := range configs {
		if !cfg.Enabled() || !req.Wants(cfg.ID()) {
			continue
		}
		opt, err := c.price(req, cfg)
		if err != nil {
			failures = append(failures, CarrierFailure{CarrierID: cfg.ID(), Err: err})
			continue
		}
		options = append(options, opt)
	}

	slices.SortStableFunc(options, func(a, b quote.Option) int {
		return cmp.Or(
			cmp.Compare(a.PriceMinor, b.PriceMinor),
			cmp.Compare(a.EtaDays, b.EtaDays),
			cmp.Compare(a.Carrier, b.Carrier),
		)
	})
	if i := quote.CheapestIndex(options); i >= 0 {
		options[i].Cheapest = true
	}
	return options, failures, nil
}

// ChargeableWeightKg returns max(actual, volumetric) for cfg, rounded up to
// the carrier weight increment, together with the volumetric weight.
func (c RateCalculator) ChargeableWeightKg(req quote.Request, cfg carrier.Config) (chargeable, volumetric decimal.Decimal, err error) {
	parcel := req.Parcel()
	vol, err := parcel.VolumetricWeightKg(cfg.VolumetricDivisor())
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	volumetric = decimal.NewFromFloat(vol)
	chargeable = decimal.Max(decimal.NewFromFloat(parcel.WeightKg()), volumetric)
	if inc := cfg.WeightIncrementKg(); inc > 0 {
		step := decimal.NewFromFloat(inc)
		chargeable = chargeable.Div(step).Ceil().Mul(step)
	}
	return chargeable, volumetric, nil
}

func (c RateCalculator) price(req quote.Request, cfg carrier.Config) (opt quote.Option, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pricing carrier %q panicked: %v", cfg.ID(), r)
		}
	}()

	if err = cfg.Validate(); err != nil {
		return quote.Option{}, err
	}

	chargeable, volumetric, err := c.ChargeableWeightKg(req, cfg)
	if err != nil {
		return quote.Option{}, err
	}

	speed := req.Speed()
	if cfg.BaseRatePerKg().For(speed) <= 0 && cfg.MinCharge().For(speed) <= 0 {
		return quote.Option{}, errs.NewValueIsRequiredErrorWithCause("carrier rate",
			fmt.Errorf("carrier %q has no %s rate or minimum charge", cfg.ID(), speed))
	}
	base := chargeable.Mul(decimal.NewFromFloat(cfg.BaseRatePerKg().For(speed)))
	base = decimal.Max(base, decimal.NewFromFloat(cfg.MinCharge().For(speed)))

	fuel := base.Mul(decimal.NewFromFloat(cfg.FuelSurchargePct())).Div(hundred)

	remoteArea := req.ForceRemoteArea() || cfg.IsRemote(req.To().PostalCode())
	remote := decimal.Zero
	if remoteArea {
		remote = decimal.NewFromFloat(cfg.RemoteAreaSurchargeFlat())
	}

	markup := base.Add(fuel).Mul(decimal.NewFromFloat(cfg.MarkupPct())).Div(hundred)
	total := decimal.Max(base.Add(fuel).Add(remote).Add(markup), decimal.Zero)

	// markup absorbs the rounding so the breakdown adds up to the price
	cur := req.Currency()
	priceMinor := cur.ToMinorUnits(total)
	baseMinor := cur.ToMinorUnits(base)
	fuelMinor := cur.ToMinorUnits(fuel)
	remoteMinor := cur.ToMinorUnits(remote)
	return quote.Option{
		Carrier:            cfg.ID(),
		CarrierName:        cfg.DisplayName(),
		Speed:              speed,
		ActualWeightKg:     req.Parcel().WeightKg(),
		VolumetricWeightKg: volumetric.InexactFloat64(),
		ChargeableWeightKg: chargeable.InexactFloat64(),
		PriceMinor:         priceMinor,
		Currency:           cur.Code(),
		EtaDays:            cfg.EtaDays().For(speed),
		RemoteArea:         remoteArea,
		Breakdown: quote.Breakdown{
			BaseMinor:   baseMinor,
			FuelMinor:   fuelMinor,
			RemoteMinor: remoteMinor,
			MarkupMinor: priceMinor - baseMinor - fuelMinor - remoteMinor,
		},
	}, nil
}
