package services

import (
	"strings"

	"shipping/internal/core/domain/model/shipment"
)

type statusRule struct {
	needles []string
	status  shipment.Status
}

// Rules are checked in order; the first rule with a matching needle wins.
// "out for delivery" and the negative outcomes come before the bare
// "deliver" so that "delivery exception" is not read as delivered.
var inferenceRules = []statusRule{
	{needles: []string{"pre_transit", "pre-transit", "pre transit", "label created"}, status: shipment.Unknown},
	{needles: []string{"out for delivery", "out_for_delivery", "out-for-delivery"}, status: shipment.OutForDelivery},
	{needles: []string{"return"}, status: shipment.ReturnToSender},
	{needles: []string{"exception", "failure", "failed", "cancel", "undeliver"}, status: shipment.Exception},
	{needles: []string{"deliver"}, status: shipment.Delivered},
	{needles: []string{"transit", "ship"}, status: shipment.InTransit},
}

// InferStatus maps free-text carrier statuses to the canonical set by
// substring matching. It returns shipment.Unknown when nothing matches.
func InferStatus(raw string) shipment.Status {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return shipment.Unknown
	}
	for _, rule := range inferenceRules {
		for _, needle := range rule.needles {
			if strings.Contains(s, needle) {
				return rule.status
			}
		}
	}
	return shipment.Unknown
}
