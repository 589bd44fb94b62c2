// Package kernel provides the shared value objects of the shipping domain.
//
// The package includes:
//   - UUID: identifiers for shipment records and quote sessions
//   - Address: origin/destination endpoints; the postcode drives remote-area surcharges
//   - Parcel: immutable dimensions and weight with volumetric weight conversion
//   - Currency: ISO 4217 codes with minor-unit precision for price rounding
//
// Every value object is guarded so that zero values fail validation.
package kernel
