package queries

import (
	"errors"

	"shipping/internal/core/domain/model/shipment"
	"shipping/internal/pkg/errs"
	"shipping/internal/pkg/guard"
)

const (
	DefaultSummaryRecent = 10
	MaxSummaryRecent     = 100
)

var ErrGetShipmentsSummaryQueryIsNotConstructed = errors.New(
	"GetShipmentsSummaryQuery must be created via NewGetShipmentsSummaryQuery constructor",
)

// GetShipmentsSummaryQuery backs the dashboard: counts by status and the
// most recently created shipments.
type GetShipmentsSummaryQuery struct {
	recent int

	guard guard.ConstructorGuard
}

func NewGetShipmentsSummaryQuery(recent int) (GetShipmentsSummaryQuery, error) {
	if recent < 0 || recent > MaxSummaryRecent {
		return GetShipmentsSummaryQuery{}, errs.NewValueIsOutOfRangeError("recent", recent, 0, MaxSummaryRecent)
	}
	return GetShipmentsSummaryQuery{recent: recent, guard: guard.NewConstructorGuard()}, nil
}

func (q GetShipmentsSummaryQuery) Validate() error {
	return q.guard.Validate(ErrGetShipmentsSummaryQueryIsNotConstructed)
}

func (q GetShipmentsSummaryQuery) Recent() int { return q.recent }

// GetShipmentsSummaryQueryResponse has a count for every status, zero included.
type GetShipmentsSummaryQueryResponse struct {
	Total  int64
	Counts map[shipment.Status]int64
	Recent []ShipmentRow
}
