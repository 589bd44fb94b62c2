package ports

import (
	"context"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/shipment"
)

// LabelReady is sent to the customer once a label has been bought.
type LabelReady struct {
	ShipmentID     kernel.UUID
	OrderID        string
	CustomerEmail  string
	TrackingNumber string
	LabelURL       string
	Carrier        string
	Service        string
}

// Notifier hands label-ready notifications to the email collaborator.
// Delivery is best effort; callers only log failures.
type Notifier interface {
	LabelReady(ctx context.Context, n LabelReady) error
}

// StatusChange describes a headline status change of a shipment.
type StatusChange struct {
	ShipmentID     kernel.UUID
	TrackingNumber string
	From           shipment.Status
	To             shipment.Status
	At             time.Time
}

// StatusPublisher broadcasts status changes to interested services.
type StatusPublisher interface {
	PublishStatusChange(ctx context.Context, change StatusChange) error
}
