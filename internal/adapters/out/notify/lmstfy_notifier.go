// Package notify hands label-ready notifications to the email service.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"shipping/internal/core/ports"

	"github.com/bitleak/lmstfy/client"
	"go.uber.org/zap"
)

const (
	TemplateLabelReady = "shipping.label_ready"

	jobTTLSeconds = 24 * 60 * 60
	jobTries      = 3
)

var (
	_ ports.Notifier = (*LmstfyNotifier)(nil)
	_ ports.Notifier = (*LogNotifier)(nil)
)

// JobPublisher is the part of the lmstfy client the notifier uses.
type JobPublisher interface {
	Publish(queue string, data []byte, ttlSecond uint32, tries uint16, delaySecond uint32) (string, error)
}

type LmstfyOptions struct {
	Host      string
	Port      int
	Namespace string
	Token     string
}

func NewLmstfyClient(opts LmstfyOptions) *client.LmstfyClient {
	return client.NewLmstfyClient(opts.Host, opts.Port, opts.Namespace, opts.Token)
}

// EmailJob is the job body consumed by the email worker.
type EmailJob struct {
	Template string            `json:"template"`
	To       string            `json:"to"`
	Data     map[string]string `json:"data"`
}

// LmstfyNotifier publishes one email job per label to a lmstfy queue.
type LmstfyNotifier struct {
	publisher JobPublisher
	queue     string
	logger    *zap.Logger
}

func NewLmstfyNotifier(publisher JobPublisher, queue string, logger *zap.Logger) *LmstfyNotifier {
	return &LmstfyNotifier{
		publisher: publisher,
		queue:     queue,
		logger:    logger.With(zap.String("component", "lmstfy_notifier")),
	}
}

// LabelReady skips shipments without a customer email.
func (n *LmstfyNotifier) LabelReady(ctx context.Context, msg ports.LabelReady) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(msg.CustomerEmail) == "" {
		n.logger.Debug("no customer email, label-ready skipped", zap.Stringer("shipment", msg.ShipmentID))
		return nil
	}

	body, err := json.Marshal(labelReadyJob(msg))
	if err != nil {
		return err
	}

	jobID, err := n.publisher.Publish(n.queue, body, jobTTLSeconds, jobTries, 0)
	if err != nil {
		return fmt.Errorf("lmstfy publish failed: %w", err)
	}

	n.logger.Info("label-ready queued",
		zap.Stringer("shipment", msg.ShipmentID),
		zap.String("job", jobID),
	)
	return nil
}

// LogNotifier only logs. It is used when no queue is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With(zap.String("component", "log_notifier"))}
}

func (n *LogNotifier) LabelReady(_ context.Context, msg ports.LabelReady) error {
	n.logger.Info("label ready",
		zap.Stringer("shipment", msg.ShipmentID),
		zap.String("to", msg.CustomerEmail),
		zap.String("tracking", msg.TrackingNumber),
		zap.String("label", msg.LabelURL),
	)
	return nil
}

func labelReadyJob(msg ports.LabelReady) EmailJob {
	return EmailJob{
		Template: TemplateLabelReady,
		To:       msg.CustomerEmail,
		Data: map[string]string{
			"shipmentId":     msg.ShipmentID.String(),
			"orderId":        msg.OrderID,
			"trackingNumber": msg.TrackingNumber,
			"labelUrl":       msg.LabelURL,
			"carrier":        msg.Carrier,
			"service":        msg.Service,
		},
	}
}
