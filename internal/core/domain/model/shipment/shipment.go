package shipment

import (
	"errors"
	"slices"
	"strings"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/errs"
)

// ErrShipmentIsNotConstructed is returned when a Shipment was not created via
// NewShipment or RestoreShipment.
var ErrShipmentIsNotConstructed = errors.New("shipment must be created via NewShipment")

// Params carries the caller-supplied data of a new shipment.
type Params struct {
	ID            kernel.UUID
	OrderID       string
	Currency      kernel.Currency
	To            kernel.Address
	From          kernel.Address
	Parcel        kernel.Parcel
	CustomerEmail string
	CreatedAt     time.Time
}

// Shipment is the aggregate root tracking one parcel from rating to delivery.
//
// Invariants:
//   - the status only changes through the transitions of Status
//   - every transition appends exactly one Activity; entries are never removed
//   - providerShipmentID is set once, when the shipment is rated
//   - trackingNumber is set once, when the label is purchased
//
// Records are never deleted; they form the audit trail of the parcel.
type Shipment struct {
	id            kernel.UUID
	orderID       string
	currency      kernel.Currency
	to            kernel.Address
	from          kernel.Address
	parcel        kernel.Parcel
	customerEmail string

	provider           string
	providerShipmentID string
	rates              []Rate

	selectedRateID string
	carrier        string
	service        string
	trackingNumber string
	labelURL       string

	status      Status
	activity    []Activity
	lastEventAt time.Time

	createdAt time.Time
	updatedAt time.Time

	isConstructed bool
}

// NewShipment creates a Draft shipment. Both addresses need a street line,
// the currency must be set and the parcel valid.
func NewShipment(p Params) (*Shipment, error) {
	s := &Shipment{
		orderID:       strings.TrimSpace(p.OrderID),
		customerEmail: strings.TrimSpace(p.CustomerEmail),
		status:        Draft,
		createdAt:     p.CreatedAt.UTC(),
		updatedAt:     p.CreatedAt.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		s.setID(p.ID),
		s.setCurrency(p.Currency),
		s.setAddress(&s.to, "to", p.To),
		s.setAddress(&s.from, "from", p.From),
		s.setParcel(p.Parcel),
	); err != nil {
		return nil, err
	}
	return s, nil
}

// RestoreParams is the persisted state of a shipment.
type RestoreParams struct {
	Params

	Provider           string
	ProviderShipmentID string
	Rates              []Rate
	SelectedRateID     string
	Carrier            string
	Service            string
	TrackingNumber     string
	LabelURL           string
	Status             Status
	Activity           []Activity
	LastEventAt        time.Time
	UpdatedAt          time.Time
}

// RestoreShipment rebuilds a shipment loaded from storage. Addresses are
// not re-validated against the street requirement so that older records stay
// readable.
func RestoreShipment(p RestoreParams) (*Shipment, error) {
	if err := errors.Join(p.ID.Validate(), p.Status.Validate(), p.Parcel.Validate()); err != nil {
		return nil, err
	}
	return &Shipment{
		id:                 p.ID,
		orderID:            p.OrderID,
		currency:           p.Currency,
		to:                 p.To,
		from:               p.From,
		parcel:             p.Parcel,
		customerEmail:      p.CustomerEmail,
		provider:           p.Provider,
		providerShipmentID: p.ProviderShipmentID,
		rates:              slices.Clone(p.Rates),
		selectedRateID:     p.SelectedRateID,
		carrier:            p.Carrier,
		service:            p.Service,
		trackingNumber:     p.TrackingNumber,
		labelURL:           p.LabelURL,
		status:             p.Status,
		activity:           slices.Clone(p.Activity),
		lastEventAt:        p.LastEventAt,
		createdAt:          p.CreatedAt,
		updatedAt:          p.UpdatedAt,
		isConstructed:      true,
	}, nil
}

func (s *Shipment) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrShipmentIsNotConstructed
	}
	return nil
}

func (s *Shipment) ID() kernel.UUID            { return s.id }
func (s *Shipment) OrderID() string            { return s.orderID }
func (s *Shipment) Currency() kernel.Currency  { return s.currency }
func (s *Shipment) To() kernel.Address         { return s.to }
func (s *Shipment) From() kernel.Address       { return s.from }
func (s *Shipment) Parcel() kernel.Parcel      { return s.parcel }
func (s *Shipment) CustomerEmail() string      { return s.customerEmail }
func (s *Shipment) Provider() string           { return s.provider }
func (s *Shipment) ProviderShipmentID() string { return s.providerShipmentID }
func (s *Shipment) Rates() []Rate              { return slices.Clone(s.rates) }
func (s *Shipment) SelectedRateID() string     { return s.selectedRateID }
func (s *Shipment) Carrier() string            { return s.carrier }
func (s *Shipment) Service() string            { return s.service }
func (s *Shipment) TrackingNumber() string     { return s.trackingNumber }
func (s *Shipment) LabelURL() string           { return s.labelURL }
func (s *Shipment) Status() Status             { return s.status }
func (s *Shipment) Activity() []Activity       { return slices.Clone(s.activity) }
func (s *Shipment) LastEventAt() time.Time     { return s.lastEventAt }
func (s *Shipment) CreatedAt() time.Time       { return s.createdAt }
func (s *Shipment) UpdatedAt() time.Time       { return s.updatedAt }

// Label returns the purchased label. ok is false before purchase.
func (s *Shipment) Label() (Label, bool) {
	if !s.status.HasLabel() {
		return Label{}, false
	}
	return Label{
		URL:            s.labelURL,
		TrackingNumber: s.trackingNumber,
		Carrier:        s.carrier,
		Service:        s.service,
	}, true
}

// FindRate looks a rate up in the snapshot taken when the shipment was rated.
func (s *Shipment) FindRate(rateID string) (Rate, bool) {
	i := slices.IndexFunc(s.rates, func(r Rate) bool { return r.ID == rateID })
	if i < 0 {
		return Rate{}, false
	}
	return s.rates[i], true
}

// Rate records the provider shipment and its offers and moves Draft to Rated.
func (s *Shipment) Rate(provider, providerShipmentID string, rates []Rate, at time.Time) error {
	next, err := s.status.Rate()
	if err != nil {
		return err
	}
	if strings.TrimSpace(providerShipmentID) == "" {
		return errs.NewValueIsRequiredError("provider shipment id")
	}
	if s.providerShipmentID != "" {
		return errs.NewConflictError("provider shipment id", "already assigned")
	}
	for _, r := range rates {
		if err = r.Validate(); err != nil {
			return err
		}
	}

	s.provider = provider
	s.providerShipmentID = providerShipmentID
	s.rates = slices.Clone(rates)
	s.transition(next, at, ActivityRated, map[string]any{
		"provider":           provider,
		"providerShipmentId": providerShipmentID,
		"rates":              len(rates),
	})
	return nil
}

// PurchaseLabel stores the label bought for rateID and moves Rated to LabelPurchased.
func (s *Shipment) PurchaseLabel(rateID string, label Label, at time.Time) error {
	next, err := s.status.PurchaseLabel()
	if err != nil {
		return err
	}
	rate, ok := s.FindRate(rateID)
	if !ok {
		return errs.NewObjectNotFoundError("rate", rateID)
	}
	if err = label.Validate(); err != nil {
		return err
	}
	if s.trackingNumber != "" && s.trackingNumber != label.TrackingNumber {
		return errs.NewConflictError("tracking number", "already assigned")
	}

	if label.Carrier == "" {
		label.Carrier = rate.Carrier
	}
	if label.Service == "" {
		label.Service = rate.Service
	}

	s.selectedRateID = rateID
	s.trackingNumber = label.TrackingNumber
	s.labelURL = label.URL
	s.carrier = label.Carrier
	s.service = label.Service
	s.transition(next, at, ActivityLabelPurchased, map[string]any{
		"rateId":         rateID,
		"trackingNumber": label.TrackingNumber,
		"carrier":        label.Carrier,
		"service":        label.Service,
	})
	return nil
}

// ApplyTracking applies a normalized carrier event received at receivedAt.
//
// The event is always recorded. The headline status changes only when the
// event maps to a canonical status and is not older than the last applied
// event; changed reports whether it did. Events for shipments without a
// label are rejected with a conflict.
func (s *Shipment) ApplyTracking(ev TrackingEvent, receivedAt time.Time) (changed bool, err error) {
	if ev.Status == Unknown {
		if !s.status.HasLabel() {
			return false, transitionConflict(s.status, Unknown)
		}
		s.appendActivity(receivedAt, ActivityUnmatchedEvent, ev.payload())
		return false, nil
	}

	next, err := s.status.Track(ev.Status)
	if err != nil {
		return false, err
	}

	occurredAt := ev.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = receivedAt
	}
	if !s.lastEventAt.IsZero() && occurredAt.Before(s.lastEventAt) {
		s.appendActivity(receivedAt, ActivityStaleEvent, ev.payload())
		return false, nil
	}

	payload := ev.payload()
	payload["from"] = s.status.String()
	s.lastEventAt = occurredAt.UTC()
	s.transition(next, receivedAt, ActivityStatusChanged, payload)
	return true, nil
}

// Cancel moves a Draft or Rated shipment to Cancelled.
func (s *Shipment) Cancel(reason string, at time.Time) error {
	next, err := s.status.Cancel()
	if err != nil {
		return err
	}
	s.transition(next, at, ActivityCancelled, map[string]any{"reason": reason})
	return nil
}

func (s *Shipment) transition(next Status, at time.Time, typ ActivityType, payload map[string]any) {
	s.status = next
	s.appendActivity(at, typ, payload)
}

func (s *Shipment) appendActivity(at time.Time, typ ActivityType, payload map[string]any) {
	s.activity = append(s.activity, NewActivity(at, typ, payload))
	s.updatedAt = at.UTC()
}

func (s *Shipment) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

func (s *Shipment) setCurrency(c kernel.Currency) error {
	if c.IsZero() {
		return errs.NewValueIsRequiredError("currency")
	}
	s.currency = c
	return nil
}

func (s *Shipment) setAddress(dst *kernel.Address, side string, a kernel.Address) error {
	if err := a.RequireStreet(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause(side+" address", err)
	}
	*dst = a
	return nil
}

func (s *Shipment) setParcel(p kernel.Parcel) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.parcel = p
	return nil
}
