package shipment

import (
	"strings"

	"shipping/internal/pkg/errs"
)

// Rate is one provider offer captured when the shipment was rated. ID is the
// provider-native identifier later passed to label purchase.
type Rate struct {
	ID          string `json:"id"`
	Carrier     string `json:"carrier"`
	Service     string `json:"service"`
	AmountMinor int64  `json:"amountMinor"`
	Currency    string `json:"currency"`
	EtaDays     int    `json:"etaDays,omitempty"`
}

func (r Rate) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errs.NewValueIsRequiredError("rate id")
	}
	if r.AmountMinor < 0 {
		return errs.NewValueIsOutOfRangeError("rate amount", r.AmountMinor, 0, "unbounded")
	}
	return nil
}

// Label is the result of a successful label purchase.
type Label struct {
	URL            string
	TrackingNumber string
	Carrier        string
	Service        string
}

func (l Label) Validate() error {
	if strings.TrimSpace(l.TrackingNumber) == "" {
		return errs.NewValueIsRequiredError("tracking number")
	}
	if strings.TrimSpace(l.URL) == "" {
		return errs.NewValueIsRequiredError("label url")
	}
	return nil
}
