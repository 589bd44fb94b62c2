// Package easypost implements the shipping provider on top of the EasyPost
// v2 API.
package easypost

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shipping/internal/adapters/out/providers"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/shipment"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

const (
	Name           = "easypost"
	DefaultBaseURL = "https://api.easypost.com"
)

var (
	_ ports.Provider      = (*Client)(nil)
	_ ports.WebhookParser = (*Client)(nil)
)

var (
	cmPerInch = decimal.RequireFromString("2.54")
	ozPerKg   = decimal.RequireFromString("35.27396195")
)

type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	api *providers.JSONClient
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errs.NewValueIsRequiredError("easypost api key")
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
			r.SetBasicAuth(cfg.APIKey, "")
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
	in := shipmentEnvelope{Shipment: shipmentRequest{
		ToAddress:   toAddress(req.To, req.CustomerEmail),
		FromAddress: toAddress(req.From, ""),
		Parcel:      toParcel(req.Parcel),
		Reference:   firstNonEmpty(req.OrderID, req.Reference),
	}}
	if !req.Currency.IsZero() {
		in.Shipment.Options = &options{Currency: req.Currency.Code()}
	}

	var out shipmentResponse
	if err := c.api.Do(ctx, "create shipment", http.MethodPost, "/v2/shipments", in, &out); err != nil {
		return ports.ProviderShipment{}, err
	}
	if out.ID == "" {
		return ports.ProviderShipment{}, errs.NewProviderError(Name, "create shipment", "response has no shipment id")
	}

	rates := make([]shipment.Rate, 0, len(out.Rates))
	for _, r := range out.Rates {
		rate, err := r.toDomain()
		if err != nil {
			return ports.ProviderShipment{}, errs.NewProviderErrorWithCause(Name, "create shipment", err)
		}
		rates = append(rates, rate)
	}

	return ports.ProviderShipment{ProviderShipmentID: out.ID, Rates: rates}, nil
}

func (c *Client) BuyLabel(ctx context.Context, providerShipmentID, rateID string) (shipment.Label, error) {
	if strings.TrimSpace(providerShipmentID) == "" {
		return shipment.Label{}, errs.NewValueIsRequiredError("provider shipment id")
	}

	in := buyRequest{Rate: rateRef{ID: rateID}}
	path := "/v2/shipments/" + url.PathEscape(providerShipmentID) + "/buy"

	var out shipmentResponse
	if err := c.api.Do(ctx, "buy label", http.MethodPost, path, in, &out); err != nil {
		return shipment.Label{}, err
	}
	if out.TrackingCode == "" || out.PostageLabel == nil || out.PostageLabel.LabelURL == "" {
		return shipment.Label{}, errs.NewProviderError(Name, "buy label", "response has no label")
	}

	label := shipment.Label{
		URL:            out.PostageLabel.LabelURL,
		TrackingNumber: out.TrackingCode,
	}
	if out.SelectedRate != nil {
		label.Carrier = out.SelectedRate.Carrier
		label.Service = out.SelectedRate.Service
	}
	return label, nil
}

// ParseWebhook decodes a tracker event. Only tracker.* events carry a status.
func (c *Client) ParseWebhook(body []byte) (shipment.TrackingEvent, error) {
	var in event
	if err := json.Unmarshal(body, &in); err != nil {
		return shipment.TrackingEvent{}, errs.NewValueIsInvalidErrorWithCause("webhook payload", err)
	}

	raw := in.Result.Status
	if in.Result.StatusDetail != "" {
		raw += "/" + in.Result.StatusDetail
	}

	ev := shipment.TrackingEvent{
		Provider:           Name,
		TrackingNumber:     strings.TrimSpace(in.Result.TrackingCode),
		ProviderShipmentID: strings.TrimSpace(in.Result.ShipmentID),
		RawStatus:          raw,
	}
	if strings.HasPrefix(in.Description, "tracker.") {
		ev.Status = statusTable[strings.ToLower(in.Result.Status)]
	}
	if at, err := time.Parse(time.RFC3339, in.Result.UpdatedAt); err == nil {
		ev.OccurredAt = at
	}
	return ev, nil
}

var statusTable = map[string]shipment.Status{
	"pre_transit":      shipment.Unknown,
	"in_transit":       shipment.InTransit,
	"out_for_delivery": shipment.OutForDelivery,
	"delivered":        shipment.Delivered,
	"return_to_sender": shipment.ReturnToSender,
	"failure":          shipment.Exception,
	"cancelled":        shipment.Exception,
	"error":            shipment.Exception,
	"unknown":          shipment.Unknown,
}

func toAddress(a kernel.Address, email string) address {
	if email == "" {
		email = a.Email()
	}
	return address{
		Name:    a.Name(),
		Street1: a.Line1(),
		Street2: a.Line2(),
		City:    a.City(),
		State:   a.State(),
		Zip:     a.PostalCode(),
		Country: a.Country(),
		Phone:   a.Phone(),
		Email:   email,
	}
}

// toParcel converts to inches and ounces, rounded up to one decimal.
func toParcel(p kernel.Parcel) parcel {
	inches := func(cm float64) float64 {
		return decimal.NewFromFloat(cm).Div(cmPerInch).RoundUp(1).InexactFloat64()
	}
	return parcel{
		Length: inches(p.LengthCm()),
		Width:  inches(p.WidthCm()),
		Height: inches(p.HeightCm()),
		Weight: decimal.NewFromFloat(p.WeightKg()).Mul(ozPerKg).RoundUp(1).InexactFloat64(),
	}
}

func (r rate) toDomain() (shipment.Rate, error) {
	cur, err := kernel.ParseCurrency(r.Currency)
	if err != nil {
		return shipment.Rate{}, err
	}
	minor, err := cur.ParseMinorUnits(r.Rate)
	if err != nil {
		return shipment.Rate{}, err
	}

	var eta int
	if r.DeliveryDays != nil {
		eta = *r.DeliveryDays
	}
	return shipment.Rate{
		ID:          r.ID,
		Carrier:     r.Carrier,
		Service:     r.Service,
		AmountMinor: minor,
		Currency:    cur.Code(),
		EtaDays:     eta,
	}, nil
}

// errorMessage reads {"error": {"message": "...", "errors": [...]}}.
func errorMessage(body []byte) string {
	var in errorEnvelope
	if json.Unmarshal(body, &in) != nil || in.Error.Message == "" {
		return ""
	}

	parts := []string{in.Error.Message}
	for _, fe := range in.Error.Errors {
		if fe.Field != "" && fe.Message != "" {
			parts = append(parts, fe.Field+": "+fe.Message)
		}
	}
	return strings.Join(parts, "; ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
