package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/shipment"
	"shipping/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetShipmentQueryHandler reads a shipment and its activity log.
type GetShipmentQueryHandler struct {
	db *gorm.DB
}

func NewGetShipmentQueryHandler(db *gorm.DB) GetShipmentQueryHandler {
	return GetShipmentQueryHandler{db: db}
}

func (h GetShipmentQueryHandler) Handle(ctx context.Context, query GetShipmentQuery) (GetShipmentQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetShipmentQueryResponse{}, err
	}

	db := h.db.WithContext(ctx)
	id := query.ShipmentID().String()

	var (
		resp            GetShipmentQueryResponse
		rawID           string
		status          int
		to, from, rates []byte
		orderID, email  sql.NullString
		lastEventAt     sql.NullTime
	)
	row := db.Raw(`
		SELECT
			id, order_id, status, currency, to_address, from_address,
			parcel_length_cm, parcel_width_cm, parcel_height_cm, parcel_weight_kg,
			customer_email, provider, provider_shipment_id, rates,
			selected_rate_id, carrier, service, tracking_number, label_url,
			last_event_at, created_at, updated_at
		FROM shipments
		WHERE id = ?
	`, id).Row()
	err := row.Scan(
		&rawID, &orderID, &status, &resp.Currency, &to, &from,
		&resp.Parcel.LengthCm, &resp.Parcel.WidthCm, &resp.Parcel.HeightCm, &resp.Parcel.WeightKg,
		&email, &resp.Provider, &resp.ProviderShipmentID, &rates,
		&resp.SelectedRateID, &resp.Carrier, &resp.Service, &resp.TrackingNumber, &resp.LabelURL,
		&lastEventAt, &resp.CreatedAt, &resp.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetShipmentQueryResponse{}, errs.NewObjectNotFoundError("shipment", id)
	}
	if err != nil {
		return GetShipmentQueryResponse{}, err
	}

	if resp.ID, err = kernel.UUIDFromString(rawID); err != nil {
		return GetShipmentQueryResponse{}, err
	}
	resp.Status = shipment.Status(status)
	resp.OrderID = orderID.String
	resp.CustomerEmail = email.String
	if lastEventAt.Valid {
		at := lastEventAt.Time
		resp.LastEventAt = &at
	}
	if err = json.Unmarshal(to, &resp.To); err != nil {
		return GetShipmentQueryResponse{}, err
	}
	if err = json.Unmarshal(from, &resp.From); err != nil {
		return GetShipmentQueryResponse{}, err
	}
	resp.Rates = make([]shipment.Rate, 0)
	if len(rates) > 0 {
		if err = json.Unmarshal(rates, &resp.Rates); err != nil {
			return GetShipmentQueryResponse{}, err
		}
	}

	if resp.Activity, err = h.activity(db, id); err != nil {
		return GetShipmentQueryResponse{}, err
	}
	return resp, nil
}

func (h GetShipmentQueryHandler) activity(db *gorm.DB, shipmentID string) ([]ActivityView, error) {
	rows, err := db.Raw(`
		SELECT at, type, payload
		FROM shipment_activities
		WHERE shipment_id = ?
		ORDER BY seq
	`, shipmentID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]ActivityView, 0)
	for rows.Next() {
		var (
			entry   ActivityView
			payload []byte
		)
		if err = rows.Scan(&entry.At, &entry.Type, &payload); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			if err = json.Unmarshal(payload, &entry.Payload); err != nil {
				return nil, err
			}
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
