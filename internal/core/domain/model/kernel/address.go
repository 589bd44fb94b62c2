package kernel

import (
	"errors"
	"fmt"
	"strings"

	"shipping/internal/pkg/errs"
	"shipping/internal/pkg/guard"
)

// ErrAddressIsNotConstructed is returned when an Address was not created via NewAddress.
var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError("address must be created via NewAddress")

// AddressParams carries the raw fields accepted by NewAddress.
type AddressParams struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      string
	Email      string
}

// Address is an immutable postal endpoint used both as origin and destination.
// Country is stored as an upper-case ISO 3166-1 alpha-2 code; the postal code
// drives the remote-area surcharge.
type Address struct { //nolint:recvcheck //using for validation
	name       string
	line1      string
	line2      string
	city       string
	state      string
	postalCode string
	country    string
	phone      string
	email      string

	guard guard.ConstructorGuard
}

// NewAddress validates the city and country and trims every field.
// Street lines are optional here because quote requests only carry
// country, city and postcode; see RequireStreet for label purchase.
func NewAddress(p AddressParams) (Address, error) {
	a := Address{
		name:       strings.TrimSpace(p.Name),
		line1:      strings.TrimSpace(p.Line1),
		line2:      strings.TrimSpace(p.Line2),
		state:      strings.TrimSpace(p.State),
		postalCode: strings.TrimSpace(p.PostalCode),
		phone:      strings.TrimSpace(p.Phone),
		email:      strings.TrimSpace(p.Email),
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(a.setCity(p.City), a.setCountry(p.Country)); err != nil {
		return Address{}, err
	}
	return a, nil
}

func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

// RequireStreet reports a validation error when the first street line is empty.
func (a Address) RequireStreet() error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.line1 == "" {
		return errs.NewValueIsRequiredError("address line1")
	}
	return nil
}

func (a Address) Name() string       { return a.name }
func (a Address) Line1() string      { return a.line1 }
func (a Address) Line2() string      { return a.line2 }
func (a Address) City() string       { return a.city }
func (a Address) State() string      { return a.state }
func (a Address) PostalCode() string { return a.postalCode }
func (a Address) Country() string    { return a.country }
func (a Address) Phone() string      { return a.phone }
func (a Address) Email() string      { return a.email }

// Params returns the address fields, e.g. for persistence.
func (a Address) Params() AddressParams {
	return AddressParams{
		Name:       a.name,
		Line1:      a.line1,
		Line2:      a.line2,
		City:       a.city,
		State:      a.state,
		PostalCode: a.postalCode,
		Country:    a.country,
		Phone:      a.phone,
		Email:      a.email,
	}
}

func (a Address) String() string {
	return fmt.Sprintf("%s, %s %s", a.city, a.postalCode, a.country)
}

func (a *Address) setCity(city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return errs.NewValueIsRequiredError("address city")
	}
	a.city = city
	return nil
}

func (a *Address) setCountry(country string) error {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return errs.NewValueIsRequiredError("address country")
	}
	if len(country) != 2 {
		return errs.NewValueIsInvalidErrorWithCause("address country",
			fmt.Errorf("%q is not an ISO 3166-1 alpha-2 code", country))
	}
	a.country = country
	return nil
}
