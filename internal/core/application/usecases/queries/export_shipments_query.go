package queries

import (
	"errors"
	"time"

	"shipping/internal/core/domain/model/shipment"
	"shipping/internal/pkg/errs"
	"shipping/internal/pkg/guard"
)

var ErrExportShipmentsQueryIsNotConstructed = errors.New(
	"ExportShipmentsQuery must be created via NewExportShipmentsQuery constructor",
)

// ExportShipmentsQuery selects shipments created in [from, to) with an
// optional status filter. Zero bounds are open.
type ExportShipmentsQuery struct {
	from   time.Time
	to     time.Time
	status shipment.Status

	guard guard.ConstructorGuard
}

// NewExportShipmentsQuery takes shipment.Unknown as "any status".
func NewExportShipmentsQuery(from, to time.Time, status shipment.Status) (ExportShipmentsQuery, error) {
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return ExportShipmentsQuery{}, errs.NewValueIsInvalidError("export range: from must be before to")
	}
	if status != shipment.Unknown {
		if err := status.Validate(); err != nil {
			return ExportShipmentsQuery{}, err
		}
	}
	return ExportShipmentsQuery{from: from, to: to, status: status, guard: guard.NewConstructorGuard()}, nil
}

func (q ExportShipmentsQuery) Validate() error {
	return q.guard.Validate(ErrExportShipmentsQueryIsNotConstructed)
}

func (q ExportShipmentsQuery) From() time.Time         { return q.from }
func (q ExportShipmentsQuery) To() time.Time           { return q.to }
func (q ExportShipmentsQuery) Status() shipment.Status { return q.status }
