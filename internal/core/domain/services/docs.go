// Package services provides the domain services of the shipping system.
//
// The package includes:
//   - RateCalculator: prices a parcel with every enabled carrier and ranks the options
//   - InferStatus: generic substring mapping of carrier status text to canonical statuses
//
// Both are pure functions of their inputs.
package services
