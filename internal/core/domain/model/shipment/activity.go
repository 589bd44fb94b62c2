package shipment

import (
	"maps"
	"time"
)

// ActivityType classifies an entry of the shipment activity log.
type ActivityType string

const (
	ActivityRated          ActivityType = "rated"
	ActivityLabelPurchased ActivityType = "label_purchased"
	ActivityStatusChanged  ActivityType = "status_changed"
	ActivityStaleEvent     ActivityType = "stale_event"
	ActivityUnmatchedEvent ActivityType = "unmatched_event"
	ActivityCancelled      ActivityType = "cancelled"
)

// Activity is one immutable entry of the append-only activity log.
type Activity struct {
	at      time.Time
	typ     ActivityType
	payload map[string]any
}

// NewActivity is used by repositories to rebuild persisted entries.
func NewActivity(at time.Time, typ ActivityType, payload map[string]any) Activity {
	return Activity{at: at.UTC(), typ: typ, payload: maps.Clone(payload)}
}

func (a Activity) At() time.Time      { return a.at }
func (a Activity) Type() ActivityType { return a.typ }

// Payload returns a copy of the entry details.
func (a Activity) Payload() map[string]any {
	return maps.Clone(a.payload)
}
