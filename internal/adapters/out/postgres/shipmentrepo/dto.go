// Package shipmentrepo persists shipment aggregates. The headline record lives
// in the shipments table; the activity log is kept append-only in
// shipment_activities, keyed by (shipment_id, seq).
package shipmentrepo

import (
	"encoding/json"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/shipment"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ShipmentDTO is the row of the shipments table.
type ShipmentDTO struct {
	ID                 uuid.UUID      `gorm:"type:varchar(36);primaryKey"`
	OrderID            string         `gorm:"size:128;index"`
	Currency           string         `gorm:"size:3"`
	ToAddress          datatypes.JSON `gorm:"not null"`
	FromAddress        datatypes.JSON `gorm:"not null"`
	Parcel             ParcelDTO      `gorm:"embedded;embeddedPrefix:parcel_"`
	CustomerEmail      string         `gorm:"size:320"`
	Provider           string         `gorm:"size:32"`
	ProviderShipmentID string         `gorm:"size:128;index"`
	Rates              datatypes.JSON
	SelectedRateID     string `gorm:"size:128"`
	Carrier            string `gorm:"size:64"`
	Service            string `gorm:"size:128"`
	TrackingNumber     string `gorm:"size:128;index"`
	LabelURL           string `gorm:"size:1024"`
	Status             int    `gorm:"index"`
	LastEventAt        *time.Time
	CreatedAt          time.Time `gorm:"index;autoCreateTime:false"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime:false"`
}

func (ShipmentDTO) TableName() string {
	return "shipments"
}

// ParcelDTO is embedded into the shipments table with the parcel_ prefix.
type ParcelDTO struct {
	LengthCm float64
	WidthCm  float64
	HeightCm float64
	WeightKg float64
}

// ActivityDTO is one entry of the append-only activity log.
type ActivityDTO struct {
	ShipmentID uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	Seq        int       `gorm:"primaryKey;autoIncrement:false"`
	At         time.Time `gorm:"index"`
	Type       string    `gorm:"size:32"`
	Payload    datatypes.JSON
}

func (ActivityDTO) TableName() string {
	return "shipment_activities"
}

// AddressDTO is the JSON document stored in the address columns.
type AddressDTO struct {
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

func fromAddress(a kernel.Address) AddressDTO {
	p := a.Params()
	return AddressDTO{
		Name: p.Name, Line1: p.Line1, Line2: p.Line2, City: p.City, State: p.State,
		PostalCode: p.PostalCode, Country: p.Country, Phone: p.Phone, Email: p.Email,
	}
}

func (d AddressDTO) toDomain() (kernel.Address, error) {
	return kernel.NewAddress(kernel.AddressParams{
		Name: d.Name, Line1: d.Line1, Line2: d.Line2, City: d.City, State: d.State,
		PostalCode: d.PostalCode, Country: d.Country, Phone: d.Phone, Email: d.Email,
	})
}

func fromDomain(s *shipment.Shipment) (ShipmentDTO, []ActivityDTO, error) {
	to, err := json.Marshal(fromAddress(s.To()))
	if err != nil {
		return ShipmentDTO{}, nil, err
	}
	from, err := json.Marshal(fromAddress(s.From()))
	if err != nil {
		return ShipmentDTO{}, nil, err
	}
	rates, err := json.Marshal(s.Rates())
	if err != nil {
		return ShipmentDTO{}, nil, err
	}

	var lastEventAt *time.Time
	if at := s.LastEventAt(); !at.IsZero() {
		lastEventAt = &at
	}

	id := s.ID().Bytes()
	dto := ShipmentDTO{
		ID:          id,
		OrderID:     s.OrderID(),
		Currency:    s.Currency().Code(),
		ToAddress:   to,
		FromAddress: from,
		Parcel: ParcelDTO{
			LengthCm: s.Parcel().LengthCm(),
			WidthCm:  s.Parcel().WidthCm(),
			HeightCm: s.Parcel().HeightCm(),
			WeightKg: s.Parcel().WeightKg(),
		},
		CustomerEmail:      s.CustomerEmail(),
		Provider:           s.Provider(),
		ProviderShipmentID: s.ProviderShipmentID(),
		Rates:              rates,
		SelectedRateID:     s.SelectedRateID(),
		Carrier:            s.Carrier(),
		Service:            s.Service(),
		TrackingNumber:     s.TrackingNumber(),
		LabelURL:           s.LabelURL(),
		Status:             int(s.Status()),
		LastEventAt:        lastEventAt,
		CreatedAt:          s.CreatedAt(),
		UpdatedAt:          s.UpdatedAt(),
	}

	activity := s.Activity()
	entries := make([]ActivityDTO, 0, len(activity))
	for i, a := range activity {
		payload, err := json.Marshal(a.Payload())
		if err != nil {
			return ShipmentDTO{}, nil, err
		}
		entries = append(entries, ActivityDTO{
			ShipmentID: id,
			Seq:        i,
			At:         a.At(),
			Type:       string(a.Type()),
			Payload:    payload,
		})
	}
	return dto, entries, nil
}

func toDomain(dto ShipmentDTO, entries []ActivityDTO) (*shipment.Shipment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	currency, err := kernel.ParseCurrency(dto.Currency)
	if err != nil {
		return nil, err
	}

	var to, from AddressDTO
	if err = json.Unmarshal(dto.ToAddress, &to); err != nil {
		return nil, err
	}
	if err = json.Unmarshal(dto.FromAddress, &from); err != nil {
		return nil, err
	}
	toAddr, err := to.toDomain()
	if err != nil {
		return nil, err
	}
	fromAddr, err := from.toDomain()
	if err != nil {
		return nil, err
	}

	parcel, err := kernel.NewParcel(dto.Parcel.LengthCm, dto.Parcel.WidthCm, dto.Parcel.HeightCm, dto.Parcel.WeightKg)
	if err != nil {
		return nil, err
	}

	var rates []shipment.Rate
	if len(dto.Rates) > 0 {
		if err = json.Unmarshal(dto.Rates, &rates); err != nil {
			return nil, err
		}
	}

	activity := make([]shipment.Activity, 0, len(entries))
	for _, e := range entries {
		var payload map[string]any
		if len(e.Payload) > 0 {
			if err = json.Unmarshal(e.Payload, &payload); err != nil {
				return nil, err
			}
		}
		activity = append(activity, shipment.NewActivity(e.At, shipment.ActivityType(e.Type), payload))
	}

	var lastEventAt time.Time
	if dto.LastEventAt != nil {
		lastEventAt = dto.LastEventAt.UTC()
	}

	return shipment.RestoreShipment(shipment.RestoreParams{
		Params: shipment.Params{
			ID:            id,
			OrderID:       dto.OrderID,
			Currency:      currency,
			To:            toAddr,
			From:          fromAddr,
			Parcel:        parcel,
			CustomerEmail: dto.CustomerEmail,
			CreatedAt:     dto.CreatedAt.UTC(),
		},
		Provider:           dto.Provider,
		ProviderShipmentID: dto.ProviderShipmentID,
		Rates:              rates,
		SelectedRateID:     dto.SelectedRateID,
		Carrier:            dto.Carrier,
		Service:            dto.Service,
		TrackingNumber:     dto.TrackingNumber,
		LabelURL:           dto.LabelURL,
		Status:             shipment.Status(dto.Status),
		Activity:           activity,
		LastEventAt:        lastEventAt,
		UpdatedAt:          dto.UpdatedAt.UTC(),
	})
}
