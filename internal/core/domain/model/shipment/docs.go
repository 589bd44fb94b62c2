// Package shipment contains the Shipment aggregate and its lifecycle.
//
// A shipment is created as a Draft, becomes Rated once the provider returns a
// shipment id and offers, and LabelPurchased after a label is bought. From
// there only carrier tracking events move it. Draft and Rated shipments may be
// cancelled by an administrator. Every transition is recorded in an
// append-only activity log.
package shipment
