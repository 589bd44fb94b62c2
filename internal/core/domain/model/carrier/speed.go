package carrier

import (
	"fmt"
	"strings"

	"shipping/internal/pkg/errs"
)

// Speed is the service level a quote is requested for.
type Speed int

const (
	UnknownSpeed Speed = iota
	Standard
	Express
)

func (s Speed) String() string {
	switch s {
	case Standard:
		return "standard"
	case Express:
		return "express"
	default:
		return "unknown"
	}
}

func (s Speed) Validate() error {
	if s != Standard && s != Express {
		return errs.NewValueIsInvalidErrorWithCause("speed", fmt.Errorf("%d is not a valid speed", s))
	}
	return nil
}

// ParseSpeed accepts "standard" and "express" in any case. Empty input means Standard.
func ParseSpeed(s string) (Speed, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return Standard, nil
	case "express":
		return Express, nil
	default:
		return UnknownSpeed, errs.NewValueIsInvalidErrorWithCause("speed",
			fmt.Errorf("%q is not one of standard, express", s))
	}
}

// SpeedRates holds one monetary value per speed.
type SpeedRates struct {
	Standard float64
	Express  float64
}

// For returns the value for speed; unknown speeds yield 0.
func (r SpeedRates) For(speed Speed) float64 {
	switch speed {
	case Standard:
		return r.Standard
	case Express:
		return r.Express
	default:
		return 0
	}
}

// SpeedDays holds a transit estimate in days per speed.
type SpeedDays struct {
	Standard int
	Express  int
}

func (d SpeedDays) For(speed Speed) int {
	switch speed {
	case Standard:
		return d.Standard
	case Express:
		return d.Express
	default:
		return 0
	}
}
