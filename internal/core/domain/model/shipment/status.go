package shipment

import (
	"fmt"
	"strings"

	"shipping/internal/pkg/errs"
)

// Status is the lifecycle state of a shipment record.
//
// State transitions:
//
//	Draft ──> Rated ──> LabelPurchased ──> InTransit ──> OutForDelivery ──> Delivered
//	  │         │              │
//	  └────┬────┘              └──> ReturnToSender | Exception (and back, by later events)
//	       v
//	   Cancelled
//
// Once a label is purchased the status is driven only by carrier tracking
// events. Tracking statuses may follow each other in any order so that a
// wrong event can be corrected by a later one; the history is kept in the
// activity log. Cancelled is final.
type Status int

const (
	// Unknown is the zero value and is never persisted.
	Unknown Status = iota
	Draft
	Rated
	LabelPurchased
	InTransit
	OutForDelivery
	Delivered
	ReturnToSender
	Exception
	Cancelled
)

var statusNames = map[Status]string{
	Unknown:        "unknown",
	Draft:          "draft",
	Rated:          "rated",
	LabelPurchased: "label_purchased",
	InTransit:      "in_transit",
	OutForDelivery: "out_for_delivery",
	Delivered:      "delivered",
	ReturnToSender: "return_to_sender",
	Exception:      "exception",
	Cancelled:      "cancelled",
}

// AllStatuses lists every valid status in lifecycle order.
func AllStatuses() []Status {
	return []Status{
		Draft, Rated, LabelPurchased, InTransit, OutForDelivery,
		Delivered, ReturnToSender, Exception, Cancelled,
	}
}

// String returns the snake_case name used in the API and in storage.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[Unknown]
}

// ParseStatus is the inverse of String. "unknown" is rejected.
func ParseStatus(name string) (Status, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range statusNames {
		if n == name && s != Unknown {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", name))
}

func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// IsTracking reports whether s can only be reached through a carrier event.
func (s Status) IsTracking() bool {
	switch s { //nolint:exhaustive // the rest are not tracking statuses
	case InTransit, OutForDelivery, Delivered, ReturnToSender, Exception:
		return true
	default:
		return false
	}
}

// HasLabel reports whether a label has been bought in this state.
func (s Status) HasLabel() bool {
	return s == LabelPurchased || s.IsTracking()
}

// Rate transitions Draft to Rated.
func (s Status) Rate() (Status, error) {
	if s != Draft {
		return Unknown, transitionConflict(s, Rated)
	}
	return Rated, nil
}

// PurchaseLabel transitions Rated to LabelPurchased.
func (s Status) PurchaseLabel() (Status, error) {
	if s != Rated {
		return Unknown, transitionConflict(s, LabelPurchased)
	}
	return LabelPurchased, nil
}

// Track moves a shipment with a label to the tracking status target.
// Repeating the current status is allowed.
func (s Status) Track(target Status) (Status, error) {
	if !target.IsTracking() || !s.HasLabel() {
		return Unknown, transitionConflict(s, target)
	}
	return target, nil
}

// Cancel is allowed only before a label exists.
func (s Status) Cancel() (Status, error) {
	if s != Draft && s != Rated {
		return Unknown, transitionConflict(s, Cancelled)
	}
	return Cancelled, nil
}

func transitionConflict(from, to Status) error {
	return errs.NewConflictError("shipment status", fmt.Sprintf("cannot move from %s to %s", from, to))
}
