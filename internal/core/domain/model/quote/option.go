package quote

import "shipping/internal/core/domain/model/carrier"

// Breakdown splits an option price into its components, in minor units.
type Breakdown struct {
	BaseMinor   int64
	FuelMinor   int64
	RemoteMinor int64
	MarkupMinor int64
}

// Option is one priced carrier offer of a quote.
type Option struct {
	Carrier            string
	CarrierName        string
	Speed              carrier.Speed
	ActualWeightKg     float64
	VolumetricWeightKg float64
	ChargeableWeightKg float64
	PriceMinor         int64
	Currency           string
	EtaDays            int
	RemoteArea         bool
	Breakdown          Breakdown
	Cheapest           bool
}

// CheapestIndex returns the index of the cheapest option of a ranked list,
// or -1 when the list is empty.
func CheapestIndex(options []Option) int {
	best := -1
	for i, o := range options {
		if best < 0 || o.PriceMinor < options[best].PriceMinor {
			best = i
		}
	}
	return best
}
