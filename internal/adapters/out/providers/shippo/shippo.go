// Package shippo implements the shipping provider on top of the Shippo API.
package shippo

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"shipping/internal/adapters/out/providers"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/shipment"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"
)

const (
	Name           = "shippo"
	DefaultBaseURL = "https://api.goshippo.com"
)

var (
	_ ports.Provider      = (*Client)(nil)
	_ ports.WebhookParser = (*Client)(nil)
)

type Config struct {
	Token      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	api *providers.JSONClient
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errs.NewValueIsRequiredError("shippo token")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	api, err := providers.NewJSONClient(providers.ClientOptions{
		Provider:   Name,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		HTTPClient: cfg.HTTPClient,
		Authorize: func(r *http.Request) {
			r.Header.Set("Authorization", "ShippoToken "+cfg.Token)
		},
		ErrorMessage: errorMessage,
	})
	if err != nil {
		return nil, err
	}
	return &Client{api: api}, nil
}

func (c *Client) Name() string { return Name }

func (c *Client) CreateShipmentAndRates(ctx context.Context, req ports.ShipmentRequest) (ports.ProviderShipment, error) {
	in := shipmentRequest{
		AddressFrom: toAddress(req.From),
		AddressTo:   toAddress(req.To),
		Parcels:     []parcel{toParcel(req.Parcel)},
		Async:       false,
		Metadata:    strings.TrimSpace(req.Reference + " " + req.OrderID),
	}

	var out shipmentResponse
	if err := c.api.Do(ctx, "create shipment", http.MethodPost, "/shipments/", in, &out); err != nil {
		return ports.ProviderShipment{}, err
	}
	if out.ObjectID == "" {
		return ports.ProviderShipment{}, errs.NewProviderError(Name, "create shipment",
			messagesOr(out.Messages, "response has no shipment id"))
	}

	rates := make([]shipment.Rate, 0, len(out.Rates))
	for _, r := range out.Rates {
		rate, err := r.toDomain(req.Currency)
		if err != nil {
			return ports.ProviderShipment{}, errs.NewProviderErrorWithCause(Name, "create shipment", err)
		}
		rates = append(rates, rate)
	}

	return ports.ProviderShipment{ProviderShipmentID: out.ObjectID, Rates: rates}, nil
}

// BuyLabel buys rateID. Shippo rate ids are global, so the shipment id is
// not sent; the carrier and service come back empty and are taken from the
// stored rate.
func (c *Client) BuyLabel(ctx context.Context, _ string, rateID string) (shipment.Label, error) {
	in := transactionRequest{Rate: rateID, LabelFileType: "PDF", Async: false}

	var out transactionResponse
	if err := c.api.Do(ctx, "buy label", http.MethodPost, "/transactions/", in, &out); err != nil {
		return shipment.Label{}, err
	}
	if out.Status != "SUCCESS" {
		return shipment.Label{}, errs.NewProviderError(Name, "buy label",
			messagesOr(out.Messages, "transaction status "+out.Status))
	}
	if out.TrackingNumber == "" || out.LabelURL == "" {
		return shipment.Label{}, errs.NewProviderError(Name, "buy label", "response has no label")
	}

	return shipment.Label{
		URL:            out.LabelURL,
		TrackingNumber: out.TrackingNumber,
	}, nil
}

// ParseWebhook decodes a track_updated notification.
func (c *Client) ParseWebhook(body []byte) (shipment.TrackingEvent, error) {
	var in webhook
	if err := json.Unmarshal(body, &in); err != nil {
		return shipment.TrackingEvent{}, errs.NewValueIsInvalidErrorWithCause("webhook payload", err)
	}

	ts := in.Data.TrackingStatus
	raw := ts.Status
	if ts.Substatus != nil && ts.Substatus.Code != "" {
		raw += "/" + ts.Substatus.Code
	}

	event := shipment.TrackingEvent{
		Provider:       Name,
		TrackingNumber: strings.TrimSpace(in.Data.TrackingNumber),
		Status:         mapStatus(ts),
		RawStatus:      raw,
	}
	if at, err := time.Parse(time.RFC3339, ts.StatusDate); err == nil {
		event.OccurredAt = at
	}
	return event, nil
}

var statusTable = map[string]shipment.Status{
	"PRE_TRANSIT": shipment.Unknown,
	"TRANSIT":     shipment.InTransit,
	"DELIVERED":   shipment.Delivered,
	"RETURNED":    shipment.ReturnToSender,
	"FAILURE":     shipment.Exception,
	"UNKNOWN":     shipment.Unknown,
}

func mapStatus(ts trackingStatus) shipment.Status {
	status := statusTable[strings.ToUpper(ts.Status)]
	if status == shipment.InTransit && ts.Substatus != nil && ts.Substatus.Code == "out_for_delivery" {
		return shipment.OutForDelivery
	}
	return status
}

func toAddress(a kernel.Address) address {
	return address{
		Name:    a.Name(),
		Street1: a.Line1(),
		Street2: a.Line2(),
		City:    a.City(),
		State:   a.State(),
		Zip:     a.PostalCode(),
		Country: a.Country(),
		Phone:   a.Phone(),
		Email:   a.Email(),
	}
}

func toParcel(p kernel.Parcel) parcel {
	return parcel{
		Length:       formatFloat(p.LengthCm()),
		Width:        formatFloat(p.WidthCm()),
		Height:       formatFloat(p.HeightCm()),
		DistanceUnit: "cm",
		Weight:       formatFloat(p.WeightKg()),
		MassUnit:     "kg",
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// toDomain prefers the amount in the requested currency when Shippo
// provides one.
func (r rate) toDomain(requested kernel.Currency) (shipment.Rate, error) {
	amount, code := r.Amount, r.Currency
	if !requested.IsZero() && strings.EqualFold(r.CurrencyLocal, requested.Code()) && r.AmountLocal != "" {
		amount, code = r.AmountLocal, r.CurrencyLocal
	}

	cur, err := kernel.ParseCurrency(code)
	if err != nil {
		return shipment.Rate{}, err
	}
	minor, err := cur.ParseMinorUnits(amount)
	if err != nil {
		return shipment.Rate{}, err
	}

	service := r.ServiceLevel.Token
	if service == "" {
		service = r.ServiceLevel.Name
	}
	return shipment.Rate{
		ID:          r.ObjectID,
		Carrier:     r.Provider,
		Service:     service,
		AmountMinor: minor,
		Currency:    cur.Code(),
		EtaDays:     r.EstimatedDays,
	}, nil
}

func messagesOr(messages []message, fallback string) string {
	texts := make([]string, 0, len(messages))
	for _, m := range messages {
		if t := strings.TrimSpace(m.Text); t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) == 0 {
		return fallback
	}
	return strings.Join(texts, "; ")
}

// errorMessage reads {"detail": "..."} and the field error maps Shippo
// returns on 4xx.
func errorMessage(body []byte) string {
	var detail struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &detail) == nil && detail.Detail != "" {
		return detail.Detail
	}

	var fields map[string][]string
	if json.Unmarshal(body, &fields) != nil || len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(fields[k], ", "))
	}
	return strings.Join(parts, "; ")
}
