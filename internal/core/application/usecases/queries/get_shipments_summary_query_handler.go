package queries

import (
	"context"

	"shipping/internal/core/domain/model/shipment"

	"gorm.io/gorm"
)

type GetShipmentsSummaryQueryHandler struct {
	db *gorm.DB
}

func NewGetShipmentsSummaryQueryHandler(db *gorm.DB) GetShipmentsSummaryQueryHandler {
	return GetShipmentsSummaryQueryHandler{db: db}
}

func (h GetShipmentsSummaryQueryHandler) Handle(
	ctx context.Context,
	query GetShipmentsSummaryQuery,
) (GetShipmentsSummaryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetShipmentsSummaryQueryResponse{}, err
	}

	db := h.db.WithContext(ctx)
	resp := GetShipmentsSummaryQueryResponse{
		Counts: make(map[shipment.Status]int64),
		Recent: make([]ShipmentRow, 0),
	}
	for _, s := range shipment.AllStatuses() {
		resp.Counts[s] = 0
	}

	rows, err := db.Raw(`
		SELECT status, COUNT(*)
		FROM shipments
		GROUP BY status
	`).Rows()
	if err != nil {
		return GetShipmentsSummaryQueryResponse{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var status int
		var count int64
		if err = rows.Scan(&status, &count); err != nil {
			return GetShipmentsSummaryQueryResponse{}, err
		}
		resp.Counts[shipment.Status(status)] = count
		resp.Total += count
	}
	if err = rows.Err(); err != nil {
		return GetShipmentsSummaryQueryResponse{}, err
	}

	if query.Recent() == 0 {
		return resp, nil
	}

	recent, err := db.Raw(`
		SELECT `+shipmentRowColumns+`
		FROM shipments
		ORDER BY created_at DESC, id
		LIMIT ?
	`, query.Recent()).Rows()
	if err != nil {
		return GetShipmentsSummaryQueryResponse{}, err
	}
	if resp.Recent, err = scanShipmentRows(recent); err != nil {
		return GetShipmentsSummaryQueryResponse{}, err
	}
	return resp, nil
}
