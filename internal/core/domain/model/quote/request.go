package quote

import (
	"errors"
	"strings"

	"shipping/internal/core/domain/model/carrier"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/errs"
	"shipping/internal/pkg/guard"
)

// ErrRequestIsNotConstructed is returned when a Request was not created via NewRequest.
var ErrRequestIsNotConstructed = errs.NewValueIsRequiredError("quote request must be created via NewRequest")

// Request is a validated quote request.
type Request struct {
	from     kernel.Address
	to       kernel.Address
	parcel   kernel.Parcel
	speed    carrier.Speed
	currency kernel.Currency
	carriers map[string]bool
	remote   bool

	guard guard.ConstructorGuard
}

// RequestParams carries the raw input of NewRequest.
type RequestParams struct {
	From     kernel.Address
	To       kernel.Address
	Parcel   kernel.Parcel
	Speed    carrier.Speed
	Currency kernel.Currency
	// Carriers optionally filters carriers by id; false excludes a carrier.
	Carriers map[string]bool
	// ForceRemoteArea applies the remote-area surcharge regardless of postcode.
	ForceRemoteArea bool
}

func NewRequest(p RequestParams) (Request, error) {
	if err := errors.Join(
		p.From.Validate(),
		p.To.Validate(),
		p.Parcel.Validate(),
		p.Speed.Validate(),
		requireCurrency(p.Currency),
	); err != nil {
		return Request{}, err
	}

	carriers := make(map[string]bool, len(p.Carriers))
	for id, on := range p.Carriers {
		carriers[strings.ToLower(strings.TrimSpace(id))] = on
	}
	return Request{
		from:     p.From,
		to:       p.To,
		parcel:   p.Parcel,
		speed:    p.Speed,
		currency: p.Currency,
		carriers: carriers,
		remote:   p.ForceRemoteArea,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (r Request) Validate() error {
	return r.guard.Validate(ErrRequestIsNotConstructed)
}

func (r Request) From() kernel.Address      { return r.from }
func (r Request) To() kernel.Address        { return r.to }
func (r Request) Parcel() kernel.Parcel     { return r.parcel }
func (r Request) Speed() carrier.Speed      { return r.speed }
func (r Request) Currency() kernel.Currency { return r.currency }
func (r Request) ForceRemoteArea() bool     { return r.remote }

// Carriers returns the request-level carrier filter.
func (r Request) Carriers() map[string]bool {
	out := make(map[string]bool, len(r.carriers))
	for k, v := range r.carriers {
		out[k] = v
	}
	return out
}

// Wants reports whether the request filter leaves carrierID in.
// Carriers not named in the filter are included.
func (r Request) Wants(carrierID string) bool {
	on, named := r.carriers[carrierID]
	return !named || on
}

func requireCurrency(c kernel.Currency) error {
	if c.IsZero() {
		return errs.NewValueIsRequiredError("currency")
	}
	return nil
}
