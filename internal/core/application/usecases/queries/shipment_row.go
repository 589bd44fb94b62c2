package queries

import (
	"database/sql"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/shipment"
)

// ShipmentRow is the flat shipment projection used by listings and exports.
type ShipmentRow struct {
	ID             kernel.UUID
	OrderID        string
	Status         shipment.Status
	Provider       string
	Carrier        string
	Service        string
	TrackingNumber string
	CustomerEmail  string
	Currency       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const shipmentRowColumns = "id, order_id, status, provider, carrier, service, tracking_number, customer_email, currency, created_at, updated_at"

func scanShipmentRows(rows *sql.Rows) ([]ShipmentRow, error) {
	defer rows.Close()

	result := make([]ShipmentRow, 0)
	for rows.Next() {
		var (
			r      ShipmentRow
			id     string
			status int
		)
		err := rows.Scan(&id, &r.OrderID, &status, &r.Provider, &r.Carrier, &r.Service,
			&r.TrackingNumber, &r.CustomerEmail, &r.Currency, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if r.ID, err = kernel.UUIDFromString(id); err != nil {
			return nil, err
		}
		r.Status = shipment.Status(status)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
