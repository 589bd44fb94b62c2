// Package quotesession encodes quote sessions as self-contained JSON
// documents. Both session stores keep this document, so a session written by
// one backend can be read by the other.
package quotesession

import (
	"encoding/json"
	"time"

	"shipping/internal/core/domain/model/carrier"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/quote"
)

type Document struct {
	ID        string           `json:"id"`
	Request   RequestDocument  `json:"request"`
	Options   []OptionDocument `json:"options"`
	CreatedAt time.Time        `json:"createdAt"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

type RequestDocument struct {
	From            AddressDocument `json:"from"`
	To              AddressDocument `json:"to"`
	Parcel          ParcelDocument  `json:"parcel"`
	Speed           string          `json:"speed"`
	Currency        string          `json:"currency"`
	Carriers        map[string]bool `json:"carriers,omitempty"`
	ForceRemoteArea bool            `json:"forceRemoteArea,omitempty"`
}

type AddressDocument struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

func addressDocument(a kernel.Address) AddressDocument {
	return AddressDocument(a.Params())
}

func (d AddressDocument) toDomain() (kernel.Address, error) {
	return kernel.NewAddress(kernel.AddressParams(d))
}

type ParcelDocument struct {
	LengthCm float64 `json:"lengthCm"`
	WidthCm  float64 `json:"widthCm"`
	HeightCm float64 `json:"heightCm"`
	WeightKg float64 `json:"weightKg"`
}

type OptionDocument struct {
	Carrier            string          `json:"carrier"`
	CarrierName        string          `json:"carrierName"`
	Speed              string          `json:"speed"`
	ActualWeightKg     float64         `json:"actualWeightKg"`
	VolumetricWeightKg float64         `json:"volumetricWeightKg"`
	ChargeableWeightKg float64         `json:"chargeableWeightKg"`
	PriceMinor         int64           `json:"priceMinor"`
	Currency           string          `json:"currency"`
	EtaDays            int             `json:"etaDays"`
	RemoteArea         bool            `json:"remoteArea"`
	Breakdown          quote.Breakdown `json:"breakdown"`
	Cheapest           bool            `json:"cheapest"`
}

func Marshal(s *quote.Session) ([]byte, error) {
	return json.Marshal(FromDomain(s))
}

func Unmarshal(data []byte) (*quote.Session, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.ToDomain()
}

func FromDomain(s *quote.Session) Document {
	req := s.Request()
	parcel := req.Parcel()

	options := s.Options()
	docs := make([]OptionDocument, 0, len(options))
	for _, o := range options {
		docs = append(docs, OptionDocument{
			Carrier:            o.Carrier,
			CarrierName:        o.CarrierName,
			Speed:              o.Speed.String(),
			ActualWeightKg:     o.ActualWeightKg,
			VolumetricWeightKg: o.VolumetricWeightKg,
			ChargeableWeightKg: o.ChargeableWeightKg,
			PriceMinor:         o.PriceMinor,
			Currency:           o.Currency,
			EtaDays:            o.EtaDays,
			RemoteArea:         o.RemoteArea,
			Breakdown:          o.Breakdown,
			Cheapest:           o.Cheapest,
		})
	}

	return Document{
		ID: s.ID().String(),
		Request: RequestDocument{
			From: addressDocument(req.From()),
			To:   addressDocument(req.To()),
			Parcel: ParcelDocument{
				LengthCm: parcel.LengthCm(),
				WidthCm:  parcel.WidthCm(),
				HeightCm: parcel.HeightCm(),
				WeightKg: parcel.WeightKg(),
			},
			Speed:           req.Speed().String(),
			Currency:        req.Currency().Code(),
			Carriers:        req.Carriers(),
			ForceRemoteArea: req.ForceRemoteArea(),
		},
		Options:   docs,
		CreatedAt: s.CreatedAt(),
		ExpiresAt: s.ExpiresAt(),
	}
}

func (d Document) ToDomain() (*quote.Session, error) {
	id, err := kernel.UUIDFromString(d.ID)
	if err != nil {
		return nil, err
	}
	from, err := d.Request.From.toDomain()
	if err != nil {
		return nil, err
	}
	to, err := d.Request.To.toDomain()
	if err != nil {
		return nil, err
	}
	p := d.Request.Parcel
	parcel, err := kernel.NewParcel(p.LengthCm, p.WidthCm, p.HeightCm, p.WeightKg)
	if err != nil {
		return nil, err
	}
	speed, err := carrier.ParseSpeed(d.Request.Speed)
	if err != nil {
		return nil, err
	}
	currency, err := kernel.ParseCurrency(d.Request.Currency)
	if err != nil {
		return nil, err
	}

	req, err := quote.NewRequest(quote.RequestParams{
		From:            from,
		To:              to,
		Parcel:          parcel,
		Speed:           speed,
		Currency:        currency,
		Carriers:        d.Request.Carriers,
		ForceRemoteArea: d.Request.ForceRemoteArea,
	})
	if err != nil {
		return nil, err
	}

	options := make([]quote.Option, 0, len(d.Options))
	for _, o := range d.Options {
		optSpeed, err := carrier.ParseSpeed(o.Speed)
		if err != nil {
			return nil, err
		}
		options = append(options, quote.Option{
			Carrier:            o.Carrier,
			CarrierName:        o.CarrierName,
			Speed:              optSpeed,
			ActualWeightKg:     o.ActualWeightKg,
			VolumetricWeightKg: o.VolumetricWeightKg,
			ChargeableWeightKg: o.ChargeableWeightKg,
			PriceMinor:         o.PriceMinor,
			Currency:           o.Currency,
			EtaDays:            o.EtaDays,
			RemoteArea:         o.RemoteArea,
			Breakdown:          o.Breakdown,
			Cheapest:           o.Cheapest,
		})
	}

	return quote.RestoreSession(id, req, options, d.CreatedAt.UTC(), d.ExpiresAt.UTC()), nil
}
