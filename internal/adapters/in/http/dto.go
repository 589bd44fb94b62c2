package http

import (
	"errors"
	"strings"
	"time"

	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/application/usecases/queries"
	"shipping/internal/core/domain/model/carrier"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/quote"
	"shipping/internal/core/domain/model/shipment"
)

// DefaultCurrency is used by quote requests that name no currency.
const DefaultCurrency = "USD"

type QuoteAddress struct {
	Country  string `json:"country" validate:"required,len=2"`
	City     string `json:"city" validate:"required"`
	Postcode string `json:"postcode"`
}

func (a QuoteAddress) toDomain() (kernel.Address, error) {
	return kernel.NewAddress(kernel.AddressParams{
		City:       a.City,
		PostalCode: a.Postcode,
		Country:    a.Country,
	})
}

type Dimensions struct {
	L float64 `json:"l" validate:"gt=0"`
	W float64 `json:"w" validate:"gt=0"`
	H float64 `json:"h" validate:"gt=0"`
}

type QuoteRequest struct {
	From       QuoteAddress    `json:"from"`
	To         QuoteAddress    `json:"to"`
	WeightKg   float64         `json:"weightKg" validate:"gt=0"`
	DimsCm     Dimensions      `json:"dimsCm"`
	Speed      string          `json:"speed" validate:"required,oneof=standard express"`
	Carriers   map[string]bool `json:"carriers"`
	Currency   string          `json:"currency" validate:"omitempty,len=3"`
	RemoteArea bool            `json:"remoteArea"`
}

func (r QuoteRequest) toDomain() (quote.Request, error) {
	from, fromErr := r.From.toDomain()
	to, toErr := r.To.toDomain()
	parcel, parcelErr := kernel.NewParcel(r.DimsCm.L, r.DimsCm.W, r.DimsCm.H, r.WeightKg)
	speed, speedErr := carrier.ParseSpeed(r.Speed)

	code := r.Currency
	if code == "" {
		code = DefaultCurrency
	}
	currency, currencyErr := kernel.ParseCurrency(code)

	if err := errors.Join(fromErr, toErr, parcelErr, speedErr, currencyErr); err != nil {
		return quote.Request{}, err
	}
	return quote.NewRequest(quote.RequestParams{
		From:            from,
		To:              to,
		Parcel:          parcel,
		Speed:           speed,
		Currency:        currency,
		Carriers:        r.Carriers,
		ForceRemoteArea: r.RemoteArea,
	})
}

type Breakdown struct {
	Base   string `json:"base"`
	Fuel   string `json:"fuel"`
	Remote string `json:"remote"`
	Markup string `json:"markup"`
}

type QuoteOption struct {
	Carrier            string    `json:"carrier"`
	CarrierName        string    `json:"carrierName"`
	Speed              string    `json:"speed"`
	ActualWeightKg     float64   `json:"actualWeightKg"`
	VolumetricWeightKg float64   `json:"volumetricWeightKg"`
	ChargeableWeightKg float64   `json:"chargeableWeightKg"`
	Price              string    `json:"price"`
	PriceMinor         int64     `json:"priceMinor"`
	Currency           string    `json:"currency"`
	EtaDays            int       `json:"etaDays"`
	RemoteArea         bool      `json:"remoteArea"`
	Cheapest           bool      `json:"cheapest"`
	Breakdown          Breakdown `json:"breakdown"`
}

// QuoteResponse always carries an options array; CheapestIndex is null when
// it is empty.
type QuoteResponse struct {
	SessionID     string        `json:"sessionId"`
	ExpiresAt     time.Time     `json:"expiresAt"`
	Options       []QuoteOption `json:"options"`
	CheapestIndex *int          `json:"cheapestIndex"`
}

func newQuoteResponse(s *quote.Session) QuoteResponse {
	options := s.Options()
	resp := QuoteResponse{
		SessionID: s.ID().String(),
		ExpiresAt: s.ExpiresAt().UTC(),
		Options:   make([]QuoteOption, 0, len(options)),
	}
	for _, o := range options {
		resp.Options = append(resp.Options, QuoteOption{
			Carrier:            o.Carrier,
			CarrierName:        o.CarrierName,
			Speed:              o.Speed.String(),
			ActualWeightKg:     o.ActualWeightKg,
			VolumetricWeightKg: o.VolumetricWeightKg,
			ChargeableWeightKg: o.ChargeableWeightKg,
			Price:              formatMinor(o.PriceMinor, o.Currency),
			PriceMinor:         o.PriceMinor,
			Currency:           o.Currency,
			EtaDays:            o.EtaDays,
			RemoteArea:         o.RemoteArea,
			Cheapest:           o.Cheapest,
			Breakdown: Breakdown{
				Base:   formatMinor(o.Breakdown.BaseMinor, o.Currency),
				Fuel:   formatMinor(o.Breakdown.FuelMinor, o.Currency),
				Remote: formatMinor(o.Breakdown.RemoteMinor, o.Currency),
				Markup: formatMinor(o.Breakdown.MarkupMinor, o.Currency),
			},
		})
	}
	if i := s.CheapestIndex(); i >= 0 && len(options) > 0 {
		resp.CheapestIndex = &i
	}
	return resp
}

// formatMinor renders a minor-unit amount in major units with the precision
// of the currency, e.g. 6930 USD -> "69.30".
func formatMinor(minor int64, code string) string {
	c, err := kernel.ParseCurrency(code)
	if err != nil {
		c = kernel.MustCurrency(DefaultCurrency)
	}
	return c.FromMinorUnits(minor).StringFixed(c.Scale())
}

type Address struct {
	Name     string `json:"name,omitempty"`
	Line1    string `json:"line1" validate:"required"`
	Line2    string `json:"line2,omitempty"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state,omitempty"`
	Postcode string `json:"postcode,omitempty"`
	Country  string `json:"country" validate:"required,len=2"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

func (a Address) toDomain() (kernel.Address, error) {
	return kernel.NewAddress(kernel.AddressParams{
		Name:       a.Name,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.Postcode,
		Country:    a.Country,
		Phone:      a.Phone,
		Email:      a.Email,
	})
}

func newAddress(p kernel.AddressParams) Address {
	return Address{
		Name:     p.Name,
		Line1:    p.Line1,
		Line2:    p.Line2,
		City:     p.City,
		State:    p.State,
		Postcode: p.PostalCode,
		Country:  p.Country,
		Phone:    p.Phone,
		Email:    p.Email,
	}
}

type Parcel struct {
	LengthCm float64 `json:"lengthCm" validate:"gt=0"`
	WidthCm  float64 `json:"widthCm" validate:"gt=0"`
	HeightCm float64 `json:"heightCm" validate:"gt=0"`
	WeightKg float64 `json:"weightKg" validate:"gt=0"`
}

// CreateShipmentRequest may omit parcel and currency when QuoteSessionID
// names a stored quote.
type CreateShipmentRequest struct {
	To             Address `json:"to"`
	From           Address `json:"from"`
	Parcel         *Parcel `json:"parcel"`
	Currency       string  `json:"currency" validate:"omitempty,len=3"`
	OrderID        string  `json:"orderId"`
	CustomerEmail  string  `json:"customerEmail" validate:"omitempty,email"`
	QuoteSessionID string  `json:"quoteSessionId" validate:"omitempty,uuid"`
}

func (r CreateShipmentRequest) toCommand() (commands.CreateShipmentCommand, error) {
	to, toErr := r.To.toDomain()
	from, fromErr := r.From.toDomain()
	params := commands.CreateShipmentParams{
		To:            to,
		From:          from,
		OrderID:       r.OrderID,
		CustomerEmail: r.CustomerEmail,
	}

	var parcelErr, currencyErr, sessionErr error
	if r.Parcel != nil {
		var parcel kernel.Parcel
		parcel, parcelErr = kernel.NewParcel(r.Parcel.LengthCm, r.Parcel.WidthCm, r.Parcel.HeightCm, r.Parcel.WeightKg)
		params.Parcel = &parcel
	}
	if r.Currency != "" {
		var currency kernel.Currency
		currency, currencyErr = kernel.ParseCurrency(r.Currency)
		params.Currency = &currency
	}
	if r.QuoteSessionID != "" {
		var id kernel.UUID
		id, sessionErr = kernel.UUIDFromString(r.QuoteSessionID)
		params.QuoteSessionID = &id
	}

	if err := errors.Join(toErr, fromErr, parcelErr, currencyErr, sessionErr); err != nil {
		return commands.CreateShipmentCommand{}, err
	}
	return commands.NewCreateShipmentCommand(params)
}

type Rate struct {
	ID          string `json:"id"`
	Carrier     string `json:"carrier"`
	Service     string `json:"service"`
	Amount      string `json:"amount"`
	AmountMinor int64  `json:"amountMinor"`
	Currency    string `json:"currency"`
	EtaDays     int    `json:"etaDays,omitempty"`
}

func newRates(rates []shipment.Rate) []Rate {
	out := make([]Rate, 0, len(rates))
	for _, r := range rates {
		out = append(out, Rate{
			ID:          r.ID,
			Carrier:     r.Carrier,
			Service:     r.Service,
			Amount:      formatMinor(r.AmountMinor, r.Currency),
			AmountMinor: r.AmountMinor,
			Currency:    r.Currency,
			EtaDays:     r.EtaDays,
		})
	}
	return out
}

type CreateShipmentResponse struct {
	ShipmentID string `json:"shipmentId"`
	Status     string `json:"status"`
	Rates      []Rate `json:"rates"`
}

type LabelRequest struct {
	RateID string `json:"rateId" validate:"required"`
}

type BuyLabelRequest struct {
	ShipmentID string `json:"shipmentId" validate:"required,uuid"`
	RateID     string `json:"rateId" validate:"required"`
}

type LabelResponse struct {
	ShipmentID       string `json:"shipmentId"`
	LabelURL         string `json:"labelUrl"`
	TrackingNumber   string `json:"trackingNumber"`
	Carrier          string `json:"carrier"`
	Service          string `json:"service"`
	AlreadyPurchased bool   `json:"alreadyPurchased"`
}

func newLabelResponse(r commands.BuyLabelResult) LabelResponse {
	return LabelResponse{
		ShipmentID:       r.ShipmentID.String(),
		LabelURL:         r.Label.URL,
		TrackingNumber:   r.Label.TrackingNumber,
		Carrier:          r.Label.Carrier,
		Service:          r.Label.Service,
		AlreadyPurchased: r.AlreadyPurchased,
	}
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type ShipmentStatusResponse struct {
	ShipmentID string `json:"shipmentId"`
	Status     string `json:"status"`
}

type Activity struct {
	At      time.Time      `json:"at"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

type ShipmentResponse struct {
	ID                 string     `json:"id"`
	OrderID            string     `json:"orderId,omitempty"`
	Status             string     `json:"status"`
	Currency           string     `json:"currency"`
	To                 Address    `json:"to"`
	From               Address    `json:"from"`
	Parcel             Parcel     `json:"parcel"`
	CustomerEmail      string     `json:"customerEmail,omitempty"`
	Provider           string     `json:"provider"`
	ProviderShipmentID string     `json:"providerShipmentId,omitempty"`
	Rates              []Rate     `json:"rates"`
	SelectedRateID     string     `json:"selectedRateId,omitempty"`
	Carrier            string     `json:"carrier,omitempty"`
	Service            string     `json:"service,omitempty"`
	TrackingNumber     string     `json:"trackingNumber,omitempty"`
	LabelURL           string     `json:"labelUrl,omitempty"`
	LastEventAt        *time.Time `json:"lastEventAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	Activity           []Activity `json:"activity"`
}

func newShipmentResponse(r queries.GetShipmentQueryResponse) ShipmentResponse {
	activity := make([]Activity, 0, len(r.Activity))
	for _, a := range r.Activity {
		activity = append(activity, Activity{At: a.At, Type: a.Type, Payload: a.Payload})
	}
	return ShipmentResponse{
		ID:       r.ID.String(),
		OrderID:  r.OrderID,
		Status:   r.Status.String(),
		Currency: r.Currency,
		To:       newAddress(r.To),
		From:     newAddress(r.From),
		Parcel: Parcel{
			LengthCm: r.Parcel.LengthCm,
			WidthCm:  r.Parcel.WidthCm,
			HeightCm: r.Parcel.HeightCm,
			WeightKg: r.Parcel.WeightKg,
		},
		CustomerEmail:      r.CustomerEmail,
		Provider:           r.Provider,
		ProviderShipmentID: r.ProviderShipmentID,
		Rates:              newRates(r.Rates),
		SelectedRateID:     r.SelectedRateID,
		Carrier:            r.Carrier,
		Service:            r.Service,
		TrackingNumber:     r.TrackingNumber,
		LabelURL:           r.LabelURL,
		LastEventAt:        r.LastEventAt,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		Activity:           activity,
	}
}

type ShipmentRow struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"orderId,omitempty"`
	Status         string    `json:"status"`
	Provider       string    `json:"provider"`
	Carrier        string    `json:"carrier,omitempty"`
	Service        string    `json:"service,omitempty"`
	TrackingNumber string    `json:"trackingNumber,omitempty"`
	CustomerEmail  string    `json:"customerEmail,omitempty"`
	Currency       string    `json:"currency"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func newShipmentRow(r queries.ShipmentRow) ShipmentRow {
	return ShipmentRow{
		ID:             r.ID.String(),
		OrderID:        r.OrderID,
		Status:         r.Status.String(),
		Provider:       r.Provider,
		Carrier:        r.Carrier,
		Service:        r.Service,
		TrackingNumber: r.TrackingNumber,
		CustomerEmail:  r.CustomerEmail,
		Currency:       r.Currency,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type SummaryResponse struct {
	Total  int64            `json:"total"`
	Counts map[string]int64 `json:"counts"`
	Recent []ShipmentRow    `json:"recent"`
}

func newSummaryResponse(r queries.GetShipmentsSummaryQueryResponse) SummaryResponse {
	resp := SummaryResponse{
		Total:  r.Total,
		Counts: make(map[string]int64, len(r.Counts)),
		Recent: make([]ShipmentRow, 0, len(r.Recent)),
	}
	for status, n := range r.Counts {
		resp.Counts[status.String()] = n
	}
	for _, row := range r.Recent {
		resp.Recent = append(resp.Recent, newShipmentRow(row))
	}
	return resp
}

type SpeedAmounts struct {
	Standard *float64 `json:"standard,omitempty"`
	Express  *float64 `json:"express,omitempty"`
}

type SpeedDays struct {
	Standard *int `json:"standard,omitempty"`
	Express  *int `json:"express,omitempty"`
}

// CarrierInput is a partial carrier configuration; absent fields keep their
// current value.
type CarrierInput struct {
	DisplayName                *string      `json:"displayName,omitempty"`
	Enabled                    *bool        `json:"enabled,omitempty"`
	VolumetricDivisor          *float64     `json:"volumetricDivisor,omitempty"`
	BaseRatePerKg              SpeedAmounts `json:"baseRatePerKg"`
	MinCharge                  SpeedAmounts `json:"minCharge"`
	FuelSurchargePct           *float64     `json:"fuelSurchargePct,omitempty"`
	MarkupPct                  *float64     `json:"markupPct,omitempty"`
	RemoteAreaSurchargeFlat    *float64     `json:"remoteAreaSurchargeFlat,omitempty"`
	RemoteAreaPostcodePrefixes []string     `json:"remoteAreaPostcodePrefixes,omitempty"`
	EtaDays                    SpeedDays    `json:"etaDays"`
	WeightIncrementKg          *float64     `json:"weightIncrementKg,omitempty"`
}

func (in CarrierInput) toDomain() carrier.Input {
	return carrier.Input{
		DisplayName:                in.DisplayName,
		Enabled:                    in.Enabled,
		VolumetricDivisor:          in.VolumetricDivisor,
		BaseRatePerKg:              carrier.SpeedInput{Standard: in.BaseRatePerKg.Standard, Express: in.BaseRatePerKg.Express},
		MinCharge:                  carrier.SpeedInput{Standard: in.MinCharge.Standard, Express: in.MinCharge.Express},
		FuelSurchargePct:           in.FuelSurchargePct,
		MarkupPct:                  in.MarkupPct,
		RemoteAreaSurchargeFlat:    in.RemoteAreaSurchargeFlat,
		RemoteAreaPostcodePrefixes: in.RemoteAreaPostcodePrefixes,
		EtaDays:                    carrier.SpeedDaysInput{Standard: in.EtaDays.Standard, Express: in.EtaDays.Express},
		WeightIncrementKg:          in.WeightIncrementKg,
	}
}

type CarrierEntry struct {
	ID string `json:"id" validate:"required"`
	CarrierInput
}

type SaveCarriersRequest struct {
	Carriers []CarrierEntry `json:"carriers" validate:"required,min=1,dive"`
}

func (r SaveCarriersRequest) entries() []commands.CarrierSettingsEntry {
	entries := make([]commands.CarrierSettingsEntry, 0, len(r.Carriers))
	for _, c := range r.Carriers {
		entries = append(entries, commands.CarrierSettingsEntry{
			CarrierID: strings.TrimSpace(c.ID),
			Input:     c.CarrierInput.toDomain(),
		})
	}
	return entries
}

type SpeedValues struct {
	Standard float64 `json:"standard"`
	Express  float64 `json:"express"`
}

type SpeedDayValues struct {
	Standard int `json:"standard"`
	Express  int `json:"express"`
}

type Carrier struct {
	ID                         string         `json:"id"`
	DisplayName                string         `json:"displayName"`
	Enabled                    bool           `json:"enabled"`
	VolumetricDivisor          float64        `json:"volumetricDivisor"`
	BaseRatePerKg              SpeedValues    `json:"baseRatePerKg"`
	MinCharge                  SpeedValues    `json:"minCharge"`
	FuelSurchargePct           float64        `json:"fuelSurchargePct"`
	MarkupPct                  float64        `json:"markupPct"`
	RemoteAreaSurchargeFlat    float64        `json:"remoteAreaSurchargeFlat"`
	RemoteAreaPostcodePrefixes []string       `json:"remoteAreaPostcodePrefixes"`
	EtaDays                    SpeedDayValues `json:"etaDays"`
	WeightIncrementKg          float64        `json:"weightIncrementKg"`
	Version                    int64          `json:"version"`
	UpdatedAt                  *time.Time     `json:"updatedAt,omitempty"`
}

func newCarrier(c carrier.Config) Carrier {
	prefixes := c.RemoteAreaPostcodePrefixes()
	if prefixes == nil {
		prefixes = []string{}
	}
	out := Carrier{
		ID:                         c.ID(),
		DisplayName:                c.DisplayName(),
		Enabled:                    c.Enabled(),
		VolumetricDivisor:          c.VolumetricDivisor(),
		BaseRatePerKg:              SpeedValues{Standard: c.BaseRatePerKg().Standard, Express: c.BaseRatePerKg().Express},
		MinCharge:                  SpeedValues{Standard: c.MinCharge().Standard, Express: c.MinCharge().Express},
		FuelSurchargePct:           c.FuelSurchargePct(),
		MarkupPct:                  c.MarkupPct(),
		RemoteAreaSurchargeFlat:    c.RemoteAreaSurchargeFlat(),
		RemoteAreaPostcodePrefixes: prefixes,
		EtaDays:                    SpeedDayValues{Standard: c.EtaDays().Standard, Express: c.EtaDays().Express},
		WeightIncrementKg:          c.WeightIncrementKg(),
		Version:                    c.Version(),
	}
	if at := c.UpdatedAt(); !at.IsZero() {
		at = at.UTC()
		out.UpdatedAt = &at
	}
	return out
}

type CarrierList struct {
	Carriers []Carrier `json:"carriers"`
}

func newCarrierList(configs []carrier.Config) CarrierList {
	list := CarrierList{Carriers: make([]Carrier, 0, len(configs))}
	for _, c := range configs {
		list.Carriers = append(list.Carriers, newCarrier(c))
	}
	return list
}
