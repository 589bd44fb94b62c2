package queries

import (
	"context"

	"shipping/internal/core/domain/model/shipment"

	"gorm.io/gorm"
)

// ExportShipmentsQueryHandler lists shipments oldest first for the CSV export.
type ExportShipmentsQueryHandler struct {
	db *gorm.DB
}

func NewExportShipmentsQueryHandler(db *gorm.DB) ExportShipmentsQueryHandler {
	return ExportShipmentsQueryHandler{db: db}
}

func (h ExportShipmentsQueryHandler) Handle(ctx context.Context, query ExportShipmentsQuery) ([]ShipmentRow, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	tx := h.db.WithContext(ctx).Table("shipments").Select(shipmentRowColumns)
	if !query.From().IsZero() {
		tx = tx.Where("created_at >= ?", query.From())
	}
	if !query.To().IsZero() {
		tx = tx.Where("created_at < ?", query.To())
	}
	if query.Status() != shipment.Unknown {
		tx = tx.Where("status = ?", int(query.Status()))
	}

	rows, err := tx.Order("created_at, id").Rows()
	if err != nil {
		return nil, err
	}
	return scanShipmentRows(rows)
}
