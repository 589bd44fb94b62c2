package kernel

import (
	"errors"
	"fmt"
	"math"

	"shipping/internal/pkg/errs"
	"shipping/internal/pkg/guard"
)

// ErrParcelIsNotConstructed is returned when a Parcel was not created via NewParcel.
var ErrParcelIsNotConstructed = errs.NewValueIsRequiredError("parcel must be created via NewParcel")

// Parcel is the immutable physical description of a package: outer
// dimensions in centimetres and actual weight in kilograms.
type Parcel struct { //nolint:recvcheck //using for validation
	lengthCm float64
	widthCm  float64
	heightCm float64
	weightKg float64

	guard guard.ConstructorGuard
}

// NewParcel requires every measurement to be finite and strictly positive.
// All violations are reported together.
func NewParcel(lengthCm, widthCm, heightCm, weightKg float64) (Parcel, error) {
	p := Parcel{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		setPositive(&p.lengthCm, "parcel length", lengthCm),
		setPositive(&p.widthCm, "parcel width", widthCm),
		setPositive(&p.heightCm, "parcel height", heightCm),
		setPositive(&p.weightKg, "parcel weight", weightKg),
	); err != nil {
		return Parcel{}, err
	}
	return p, nil
}

func (p Parcel) Validate() error {
	return p.guard.Validate(ErrParcelIsNotConstructed)
}

func (p Parcel) LengthCm() float64 { return p.lengthCm }
func (p Parcel) WidthCm() float64  { return p.widthCm }
func (p Parcel) HeightCm() float64 { return p.heightCm }
func (p Parcel) WeightKg() float64 { return p.weightKg }

// VolumeCm3 returns L×W×H.
func (p Parcel) VolumeCm3() float64 {
	return p.lengthCm * p.widthCm * p.heightCm
}

// VolumetricWeightKg converts the volume into an equivalent weight with the
// carrier divisor (cm³ per kg).
func (p Parcel) VolumetricWeightKg(divisor float64) (float64, error) {
	if divisor <= 0 || math.IsNaN(divisor) || math.IsInf(divisor, 0) {
		return 0, errs.NewValueIsInvalidErrorWithCause("volumetric divisor",
			fmt.Errorf("%v is not a positive finite number", divisor))
	}
	return p.VolumeCm3() / divisor, nil
}

func setPositive(dst *float64, name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%v is not a positive finite number", v))
	}
	*dst = v
	return nil
}
