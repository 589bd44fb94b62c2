package carrier

// DefaultVolumetricDivisor is the cm³-per-kg factor used when a carrier does not set one.
const DefaultVolumetricDivisor = 5000

// Supported carrier identifiers. The settings store bootstraps one
// configuration for each of them.
const (
	DHL    = "dhl"
	FedEx  = "fedex"
	UPS    = "ups"
	Aramex = "aramex"
)

// SupportedCarriers lists the carriers in bootstrap order.
func SupportedCarriers() []string {
	return []string{DHL, FedEx, UPS, Aramex}
}

func defaultParams(id string) Params {
	switch id {
	case DHL:
		return Params{
			ID: DHL, DisplayName: "DHL Express", Enabled: true,
			VolumetricDivisor:       DefaultVolumetricDivisor,
			BaseRatePerKg:           SpeedRates{Standard: 22, Express: 38},
			MinCharge:               SpeedRates{Standard: 60, Express: 95},
			FuelSurchargePct:        12,
			MarkupPct:               5,
			RemoteAreaSurchargeFlat: 25,
			EtaDays:                 SpeedDays{Standard: 6, Express: 3},
		}
	case FedEx:
		return Params{
			ID: FedEx, DisplayName: "FedEx", Enabled: true,
			VolumetricDivisor:       DefaultVolumetricDivisor,
			BaseRatePerKg:           SpeedRates{Standard: 24, Express: 36},
			MinCharge:               SpeedRates{Standard: 65, Express: 90},
			FuelSurchargePct:        14,
			MarkupPct:               5,
			RemoteAreaSurchargeFlat: 30,
			EtaDays:                 SpeedDays{Standard: 5, Express: 2},
		}
	case UPS:
		return Params{
			ID: UPS, DisplayName: "UPS", Enabled: true,
			VolumetricDivisor:       DefaultVolumetricDivisor,
			BaseRatePerKg:           SpeedRates{Standard: 21, Express: 34},
			MinCharge:               SpeedRates{Standard: 58, Express: 88},
			FuelSurchargePct:        13,
			MarkupPct:               5,
			RemoteAreaSurchargeFlat: 28,
			EtaDays:                 SpeedDays{Standard: 6, Express: 3},
		}
	case Aramex:
		return Params{
			ID: Aramex, DisplayName: "Aramex", Enabled: true,
			VolumetricDivisor:       DefaultVolumetricDivisor,
			BaseRatePerKg:           SpeedRates{Standard: 18, Express: 30},
			MinCharge:               SpeedRates{Standard: 50, Express: 80},
			FuelSurchargePct:        10,
			MarkupPct:               5,
			RemoteAreaSurchargeFlat: 20,
			EtaDays:                 SpeedDays{Standard: 7, Express: 4},
		}
	default:
		return Params{
			ID: id, DisplayName: id, Enabled: true,
			VolumetricDivisor: DefaultVolumetricDivisor,
			EtaDays:           SpeedDays{Standard: 7, Express: 3},
		}
	}
}

// Default returns the built-in configuration for id. Unknown carriers get a
// zero-priced template that an administrator is expected to fill in; the
// rate calculator drops it until a rate or minimum charge is set.
func Default(id string) Config {
	c, err := NewConfig(defaultParams(normalizeID(id)))
	if err != nil {
		// only reachable for an empty id
		return Config{}
	}
	return c
}

// Defaults returns the built-in configuration of every supported carrier.
func Defaults() []Config {
	out := make([]Config, 0, len(SupportedCarriers()))
	for _, id := range SupportedCarriers() {
		out = append(out, Default(id))
	}
	return out
}
