package http

import (
	"encoding/csv"
	"net/http"
	"strings"
	"time"

	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/application/usecases/queries"
	"shipping/internal/core/domain/model/shipment"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"
)

var exportHeader = []string{
	"id", "order_id", "status", "provider", "carrier", "service",
	"tracking_number", "customer_email", "currency", "created_at", "updated_at",
}

// ListCarriers handles GET /api/v1/admin/carriers.
func (s *Server) ListCarriers(ctx echo.Context) error {
	configs, err := s.h.GetCarriers.Handle(ctx.Request().Context(), queries.NewGetCarrierSettingsQuery())
	if err != nil {
		return s.renderError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, newCarrierList(configs))
}

// SaveCarriers handles PUT /api/v1/admin/carriers.
func (s *Server) SaveCarriers(ctx echo.Context) error {
	var req SaveCarriersRequest
	if ok, err := bind(ctx, &req); !ok {
		return err
	}

	cmd, err := commands.NewSaveCarrierSettingsCommand(req.entries(), principalFrom(ctx).Subject)
	if err != nil {
		return s.renderError(ctx, err)
	}
	saved, err := s.h.SaveCarriers.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.renderError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, newCarrierList(saved))
}

// PatchCarrier handles PATCH /api/v1/admin/carriers/:carrierId.
func (s *Server) PatchCarrier(ctx echo.Context) error {
	var req CarrierInput
	if ok, err := bind(ctx, &req); !ok {
		return err
	}

	cmd, err := commands.NewPatchCarrierSettingsCommand(ctx.Param("carrierId"), req.toDomain(), principalFrom(ctx).Subject)
	if err != nil {
		return s.renderError(ctx, err)
	}
	updated, err := s.h.PatchCarrier.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.renderError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, newCarrier(updated))
}

// ShipmentsSummary handles GET /api/v1/admin/shipments/summary?recent=N.
func (s *Server) ShipmentsSummary(ctx echo.Context) error {
	var recent *int
	if err := runtime.BindQueryParameter("form", true, false, "recent", ctx.QueryParams(), &recent); err != nil {
		return badRequest(ctx, err)
	}
	n := queries.DefaultSummaryRecent
	if recent != nil {
		n = *recent
	}

	query, err := queries.NewGetShipmentsSummaryQuery(n)
	if err != nil {
		return s.renderError(ctx, err)
	}
	summary, err := s.h.Summary.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.renderError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, newSummaryResponse(summary))
}

// ExportShipments handles GET /api/v1/admin/shipments/export.csv. from and to
// accept RFC 3339 timestamps or plain dates; status filters by one status.
func (s *Server) ExportShipments(ctx echo.Context) error {
	var (
		from, to *time.Time
		status   *string
	)
	params := ctx.QueryParams()
	if err := runtime.BindQueryParameter("form", true, false, "from", params, &from); err != nil {
		return badRequest(ctx, err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "to", params, &to); err != nil {
		return badRequest(ctx, err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "status", params, &status); err != nil {
		return badRequest(ctx, err)
	}

	var (
		fromAt, toAt time.Time
		st           shipment.Status
	)
	if from != nil {
		fromAt = *from
	}
	if to != nil {
		toAt = *to
	}
	if status != nil && strings.TrimSpace(*status) != "" {
		parsed, err := shipment.ParseStatus(*status)
		if err != nil {
			return s.renderError(ctx, err)
		}
		st = parsed
	}

	query, err := queries.NewExportShipmentsQuery(fromAt, toAt, st)
	if err != nil {
		return s.renderError(ctx, err)
	}
	rows, err := s.h.Export.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.renderError(ctx, err)
	}

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="shipments.csv"`)
	res.WriteHeader(http.StatusOK)

	w := csv.NewWriter(res)
	_ = w.Write(exportHeader)
	for _, r := range rows {
		_ = w.Write([]string{
			r.ID.String(),
			r.OrderID,
			r.Status.String(),
			r.Provider,
			r.Carrier,
			r.Service,
			r.TrackingNumber,
			r.CustomerEmail,
			r.Currency,
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		s.logger.Warn("csv export interrupted", zap.Error(err))
	}
	return nil
}
