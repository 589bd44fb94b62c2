package carrier

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"shipping/internal/pkg/errs"
	"shipping/internal/pkg/guard"
)

// ErrConfigIsNotConstructed is returned when a Config was not created via NewConfig,
// RestoreConfig, Coerce or Default.
var ErrConfigIsNotConstructed = errs.NewValueIsRequiredError("carrier config must be created via NewConfig")

// Params carries every editable field of a carrier configuration.
type Params struct {
	ID                         string
	DisplayName                string
	Enabled                    bool
	VolumetricDivisor          float64
	BaseRatePerKg              SpeedRates
	MinCharge                  SpeedRates
	FuelSurchargePct           float64
	MarkupPct                  float64
	RemoteAreaSurchargeFlat    float64
	RemoteAreaPostcodePrefixes []string
	EtaDays                    SpeedDays
	WeightIncrementKg          float64
}

// Config is the pricing configuration of one carrier.
//
// Config is immutable: every With* setter validates its argument and returns
// a modified copy, leaving the receiver untouched. Amounts are expressed in
// the currency of the quote request.
//
// Invariants:
//   - ID is a non-empty lower-case identifier
//   - VolumetricDivisor is strictly positive
//   - every rate, charge, percentage and surcharge is finite and not negative
//   - remote-area prefixes are trimmed, upper-cased, non-empty and unique
type Config struct {
	id                string
	displayName       string
	enabled           bool
	volumetricDivisor float64
	baseRatePerKg     SpeedRates
	minCharge         SpeedRates
	fuelSurchargePct  float64
	markupPct         float64
	remoteFlat        float64
	remotePrefixes    []string
	etaDays           SpeedDays
	weightIncrementKg float64

	version   int64
	updatedAt time.Time

	guard guard.ConstructorGuard
}

// NewConfig validates p strictly and reports every violation at once.
func NewConfig(p Params) (Config, error) {
	c := Config{
		id:          normalizeID(p.ID),
		displayName: strings.TrimSpace(p.DisplayName),
		enabled:     p.Enabled,
		etaDays:     p.EtaDays,
		guard:       guard.NewConstructorGuard(),
	}
	if c.displayName == "" {
		c.displayName = c.id
	}
	c.remotePrefixes = NormalizePrefixes(p.RemoteAreaPostcodePrefixes)

	var idErr error
	if c.id == "" {
		idErr = errs.NewValueIsRequiredError("carrier id")
	}

	if err := errors.Join(
		idErr,
		setDivisor(&c.volumetricDivisor, p.VolumetricDivisor),
		setAmount(&c.baseRatePerKg.Standard, "base rate per kg (standard)", p.BaseRatePerKg.Standard),
		setAmount(&c.baseRatePerKg.Express, "base rate per kg (express)", p.BaseRatePerKg.Express),
		setAmount(&c.minCharge.Standard, "min charge (standard)", p.MinCharge.Standard),
		setAmount(&c.minCharge.Express, "min charge (express)", p.MinCharge.Express),
		setAmount(&c.fuelSurchargePct, "fuel surcharge pct", p.FuelSurchargePct),
		setAmount(&c.markupPct, "markup pct", p.MarkupPct),
		setAmount(&c.remoteFlat, "remote area surcharge", p.RemoteAreaSurchargeFlat),
		setAmount(&c.weightIncrementKg, "weight increment kg", p.WeightIncrementKg),
		validateEta(p.EtaDays),
	); err != nil {
		return Config{}, err
	}
	return c, nil
}

// RestoreConfig rebuilds a persisted configuration together with its revision.
func RestoreConfig(p Params, version int64, updatedAt time.Time) (Config, error) {
	c, err := NewConfig(p)
	if err != nil {
		return Config{}, err
	}
	c.version = version
	c.updatedAt = updatedAt
	return c, nil
}

// Validate checks that c was constructed and that its invariants still hold.
// The rate calculator relies on it to drop misconfigured carriers.
func (c Config) Validate() error {
	if err := c.guard.Validate(ErrConfigIsNotConstructed); err != nil {
		return err
	}
	if c.id == "" {
		return errs.NewValueIsRequiredError("carrier id")
	}
	if c.volumetricDivisor <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("volumetric divisor",
			fmt.Errorf("%v is not positive", c.volumetricDivisor))
	}
	return nil
}

func (c Config) ID() string                           { return c.id }
func (c Config) DisplayName() string                  { return c.displayName }
func (c Config) Enabled() bool                        { return c.enabled }
func (c Config) VolumetricDivisor() float64           { return c.volumetricDivisor }
func (c Config) BaseRatePerKg() SpeedRates            { return c.baseRatePerKg }
func (c Config) MinCharge() SpeedRates                { return c.minCharge }
func (c Config) FuelSurchargePct() float64            { return c.fuelSurchargePct }
func (c Config) MarkupPct() float64                   { return c.markupPct }
func (c Config) RemoteAreaSurchargeFlat() float64     { return c.remoteFlat }
func (c Config) EtaDays() SpeedDays                   { return c.etaDays }
func (c Config) WeightIncrementKg() float64           { return c.weightIncrementKg }
func (c Config) Version() int64                       { return c.version }
func (c Config) UpdatedAt() time.Time                 { return c.updatedAt }
func (c Config) RemoteAreaPostcodePrefixes() []string { return slices.Clone(c.remotePrefixes) }

// Params returns the editable fields of c.
func (c Config) Params() Params {
	return Params{
		ID:                         c.id,
		DisplayName:                c.displayName,
		Enabled:                    c.enabled,
		VolumetricDivisor:          c.volumetricDivisor,
		BaseRatePerKg:              c.baseRatePerKg,
		MinCharge:                  c.minCharge,
		FuelSurchargePct:           c.fuelSurchargePct,
		MarkupPct:                  c.markupPct,
		RemoteAreaSurchargeFlat:    c.remoteFlat,
		RemoteAreaPostcodePrefixes: slices.Clone(c.remotePrefixes),
		EtaDays:                    c.etaDays,
		WeightIncrementKg:          c.weightIncrementKg,
	}
}

// IsRemote reports whether postcode starts with one of the remote-area
// prefixes, ignoring case and surrounding spaces.
func (c Config) IsRemote(postcode string) bool {
	postcode = strings.ToUpper(strings.TrimSpace(postcode))
	if postcode == "" {
		return false
	}
	for _, p := range c.remotePrefixes {
		if strings.HasPrefix(postcode, p) {
			return true
		}
	}
	return false
}

// NextRevision returns c stamped as the revision written after previous.
func (c Config) NextRevision(previous int64, at time.Time) Config {
	c.version = previous + 1
	c.updatedAt = at
	return c
}

func (c Config) WithEnabled(enabled bool) Config {
	c.enabled = enabled
	return c
}

func (c Config) WithDisplayName(name string) Config {
	if name = strings.TrimSpace(name); name != "" {
		c.displayName = name
	}
	return c
}

func (c Config) WithVolumetricDivisor(v float64) (Config, error) {
	if err := setDivisor(&c.volumetricDivisor, v); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) WithBaseRatePerKg(speed Speed, v float64) (Config, error) {
	if err := setSpeedAmount(&c.baseRatePerKg, "base rate per kg", speed, v); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) WithMinCharge(speed Speed, v float64) (Config, error) {
	if err := setSpeedAmount(&c.minCharge, "min charge", speed, v); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) WithFuelSurchargePct(v float64) (Config, error) {
	if err := setAmount(&c.fuelSurchargePct, "fuel surcharge pct", v); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) WithMarkupPct(v float64) (Config, error) {
	if err := setAmount(&c.markupPct, "markup pct", v); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) WithRemoteAreaSurchargeFlat(v float64) (Config, error) {
	if err := setAmount(&c.remoteFlat, "remote area surcharge", v); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) WithWeightIncrementKg(v float64) (Config, error) {
	if err := setAmount(&c.weightIncrementKg, "weight increment kg", v); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) WithRemoteAreaPostcodePrefixes(prefixes []string) Config {
	c.remotePrefixes = NormalizePrefixes(prefixes)
	return c
}

func (c Config) WithEtaDays(speed Speed, days int) (Config, error) {
	if err := speed.Validate(); err != nil {
		return Config{}, err
	}
	if days < 0 {
		return Config{}, errs.NewValueIsInvalidErrorWithCause("eta days", fmt.Errorf("%d is negative", days))
	}
	if speed == Express {
		c.etaDays.Express = days
	} else {
		c.etaDays.Standard = days
	}
	return c, nil
}

func setSpeedAmount(dst *SpeedRates, name string, speed Speed, v float64) error {
	if err := speed.Validate(); err != nil {
		return err
	}
	target := &dst.Standard
	if speed == Express {
		target = &dst.Express
	}
	return setAmount(target, fmt.Sprintf("%s (%s)", name, speed), v)
}

// NormalizePrefixes trims and upper-cases prefixes, dropping blanks and duplicates
// while keeping the first-seen order.
func NormalizePrefixes(prefixes []string) []string {
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" || slices.Contains(out, p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func setDivisor(dst *float64, v float64) error {
	if !isFinite(v) || v <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("volumetric divisor",
			fmt.Errorf("%v is not a positive finite number", v))
	}
	*dst = v
	return nil
}

func setAmount(dst *float64, name string, v float64) error {
	if !isFinite(v) || v < 0 {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%v is not a finite non-negative number", v))
	}
	*dst = v
	return nil
}

func validateEta(d SpeedDays) error {
	if d.Standard < 0 || d.Express < 0 {
		return errs.NewValueIsInvalidErrorWithCause("eta days", fmt.Errorf("%+v has a negative value", d))
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
