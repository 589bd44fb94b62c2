// Package simulator is an in-process provider used for development and as the
// default backend. It never fails and prices rates from the parcel alone.
package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/shipment"
	"shipping/internal/core/domain/services"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/atomic"
)

const (
	Name = "simulator"

	volumetricDivisor = 5000
	labelBaseURL      = "https://labels.simulator.local"
)

var (
	_ ports.Provider      = (*Simulator)(nil)
	_ ports.WebhookParser = (*Simulator)(nil)
)

type service struct {
	carrier string
	name    string
	base    decimal.Decimal
	perKg   decimal.Decimal
	etaDays int
}

var catalogue = []service{
	{carrier: "simpost", name: "economy", base: decimal.NewFromInt(8), perKg: decimal.RequireFromString("4.5"), etaDays: 9},
	{carrier: "simpost", name: "standard", base: decimal.NewFromInt(12), perKg: decimal.NewFromInt(6), etaDays: 5},
	{carrier: "simexpress", name: "express", base: decimal.NewFromInt(20), perKg: decimal.RequireFromString("9.5"), etaDays: 2},
}

type Simulator struct {
	node      *snowflake.Node
	created   atomic.Int64
	purchased atomic.Int64
}

// New returns a simulator whose ids are generated by snowflake node nodeID.
func New(nodeID int64) (*Simulator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, errs.NewValueIsOutOfRangeErrorWithCause("simulator node id", nodeID, 0, 1023, err)
	}
	return &Simulator{node: node}, nil
}

func (s *Simulator) Name() string { return Name }

// Created is the number of shipments rated since start.
func (s *Simulator) Created() int64 { return s.created.Load() }

// Purchased is the number of labels bought since start.
func (s *Simulator) Purchased() int64 { return s.purchased.Load() }

func (s *Simulator) CreateShipmentAndRates(ctx context.Context, req ports.ShipmentRequest) (ports.ProviderShipment, error) {
	if err := ctx.Err(); err != nil {
		return ports.ProviderShipment{}, errs.NewProviderErrorWithCause(Name, "create shipment", err)
	}

	currency := req.Currency
	if currency.IsZero() {
		currency = kernel.MustCurrency("USD")
	}

	weight := decimal.NewFromFloat(req.Parcel.WeightKg())
	volumetric := decimal.NewFromFloat(req.Parcel.VolumeCm3()).Div(decimal.NewFromInt(volumetricDivisor))
	chargeable := decimal.Max(weight, volumetric)

	rates := make([]shipment.Rate, 0, len(catalogue))
	for _, svc := range catalogue {
		amount := svc.base.Add(svc.perKg.Mul(chargeable))
		rates = append(rates, shipment.Rate{
			ID:          "sim_rate_" + s.node.Generate().Base36(),
			Carrier:     svc.carrier,
			Service:     svc.name,
			AmountMinor: currency.ToMinorUnits(amount),
			Currency:    currency.Code(),
			EtaDays:     svc.etaDays,
		})
	}

	s.created.Inc()
	return ports.ProviderShipment{
		ProviderShipmentID: "sim_shp_" + s.node.Generate().Base36(),
		Rates:              rates,
	}, nil
}

// BuyLabel returns a label with a fresh tracking number. The carrier and
// service are filled from the stored rate.
func (s *Simulator) BuyLabel(ctx context.Context, providerShipmentID, rateID string) (shipment.Label, error) {
	if err := ctx.Err(); err != nil {
		return shipment.Label{}, errs.NewProviderErrorWithCause(Name, "buy label", err)
	}

	tracking := "SIM" + strings.ToUpper(s.node.Generate().Base36())
	s.purchased.Inc()
	return shipment.Label{
		URL:            fmt.Sprintf("%s/%s/%s.pdf", labelBaseURL, providerShipmentID, rateID),
		TrackingNumber: tracking,
	}, nil
}

// Webhook is the payload the simulator posts for tracking updates.
type Webhook struct {
	TrackingNumber     string    `json:"trackingNumber,omitempty"`
	ProviderShipmentID string    `json:"providerShipmentId,omitempty"`
	Status             string    `json:"status"`
	OccurredAt         time.Time `json:"occurredAt,omitempty"`
}

// ParseWebhook reads a Webhook and infers the canonical status from its
// free-text status.
func (s *Simulator) ParseWebhook(body []byte) (shipment.TrackingEvent, error) {
	var in Webhook
	if err := json.Unmarshal(body, &in); err != nil {
		return shipment.TrackingEvent{}, errs.NewValueIsInvalidErrorWithCause("webhook payload", err)
	}

	return shipment.TrackingEvent{
		Provider:           Name,
		TrackingNumber:     strings.TrimSpace(in.TrackingNumber),
		ProviderShipmentID: strings.TrimSpace(in.ProviderShipmentID),
		Status:             services.InferStatus(in.Status),
		RawStatus:          in.Status,
		OccurredAt:         in.OccurredAt,
	}, nil
}
