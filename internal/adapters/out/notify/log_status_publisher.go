package notify

import (
	"context"

	"shipping/internal/core/ports"

	"go.uber.org/zap"
)

var _ ports.StatusPublisher = (*LogStatusPublisher)(nil)

// LogStatusPublisher writes status changes to the log. It stands in for the
// Redis publisher when no Redis is configured.
type LogStatusPublisher struct {
	logger *zap.Logger
}

func NewLogStatusPublisher(logger *zap.Logger) *LogStatusPublisher {
	return &LogStatusPublisher{logger: logger.With(zap.String("component", "status_log"))}
}

func (p *LogStatusPublisher) PublishStatusChange(_ context.Context, change ports.StatusChange) error {
	p.logger.Info("shipment status changed",
		zap.Stringer("shipment", change.ShipmentID),
		zap.String("tracking", change.TrackingNumber),
		zap.Stringer("from", change.From),
		zap.Stringer("to", change.To),
		zap.Time("at", change.At),
	)
	return nil
}
