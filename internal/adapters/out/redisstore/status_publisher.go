package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"shipping/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// DefaultStatusChannel is the channel shipment status changes are published on.
const DefaultStatusChannel = "shipping.shipment.status"

// StatusMessage is the JSON payload of a status change notification.
type StatusMessage struct {
	ShipmentID     string `json:"shipment_id"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	From           string `json:"from"`
	To             string `json:"to"`
	Timestamp      int64  `json:"timestamp"`
}

type StatusPublisher struct {
	client  *redis.Client
	channel string
}

func NewStatusPublisher(client *redis.Client, channel string) *StatusPublisher {
	if channel == "" {
		channel = DefaultStatusChannel
	}
	return &StatusPublisher{client: client, channel: channel}
}

func (p *StatusPublisher) PublishStatusChange(ctx context.Context, change ports.StatusChange) error {
	msg, err := json.Marshal(StatusMessage{
		ShipmentID:     change.ShipmentID.String(),
		TrackingNumber: change.TrackingNumber,
		From:           change.From.String(),
		To:             change.To.String(),
		Timestamp:      change.At.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal status change: %w", err)
	}

	if err = p.client.Publish(ctx, p.channel, msg).Err(); err != nil {
		return fmt.Errorf("failed to publish status change: %w", err)
	}
	return nil
}

// Subscribe returns a subscription to the status channel, for dashboards
// and tests.
func (p *StatusPublisher) Subscribe(ctx context.Context) *redis.PubSub {
	return p.client.Subscribe(ctx, p.channel)
}
