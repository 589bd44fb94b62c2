package shipment

import (
	"strings"
	"time"
)

// TrackingEvent is a carrier webhook payload normalized to the canonical
// vocabulary. Status is Unknown when the raw status matched nothing.
type TrackingEvent struct {
	Provider           string
	TrackingNumber     string
	ProviderShipmentID string
	Status             Status
	RawStatus          string
	// OccurredAt is the carrier timestamp; zero when the payload carries none.
	OccurredAt time.Time
}

// HasTarget reports whether the event names a shipment to look up.
func (e TrackingEvent) HasTarget() bool {
	return strings.TrimSpace(e.TrackingNumber) != "" || strings.TrimSpace(e.ProviderShipmentID) != ""
}

func (e TrackingEvent) payload() map[string]any {
	p := map[string]any{
		"provider":  e.Provider,
		"rawStatus": e.RawStatus,
	}
	if e.Status != Unknown {
		p["status"] = e.Status.String()
	}
	if e.TrackingNumber != "" {
		p["trackingNumber"] = e.TrackingNumber
	}
	if !e.OccurredAt.IsZero() {
		p["occurredAt"] = e.OccurredAt.UTC().Format(time.RFC3339)
	}
	return p
}
