package http

import (
	"net/http"

	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/application/usecases/queries"
	"shipping/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// CreateShipment handles POST /api/v1/shipments.
func (s *Server) CreateShipment(ctx echo.Context) error {
	var req CreateShipmentRequest
	if ok, err := bind(ctx, &req); !ok {
		return err
	}

	cmd, err := req.toCommand()
	if err != nil {
		return s.renderError(ctx, err)
	}
	result, err := s.h.CreateShipment.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.renderError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CreateShipmentResponse{
		ShipmentID: result.ShipmentID.String(),
		Status:     result.Status.String(),
		Rates:      newRates(result.Rates),
	})
}

// GetShipment handles GET /api/v1/shipments/:id.
func (s *Server) GetShipment(ctx echo.Context) error {
	id, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, err)
	}
	query, err := queries.NewGetShipmentQuery(id)
	if err != nil {
		return s.renderError(ctx, err)
	}

	result, err := s.h.GetShipment.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.renderError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, newShipmentResponse(result))
}

// BuyShipmentLabel handles POST /api/v1/shipments/:id/label.
func (s *Server) BuyShipmentLabel(ctx echo.Context) error {
	id, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, err)
	}
	var req LabelRequest
	if ok, err := bind(ctx, &req); !ok {
		return err
	}
	return s.buyLabel(ctx, id, req.RateID)
}

// BuyLabel handles POST /api/v1/labels.
func (s *Server) BuyLabel(ctx echo.Context) error {
	var req BuyLabelRequest
	if ok, err := bind(ctx, &req); !ok {
		return err
	}
	id, err := kernel.UUIDFromString(req.ShipmentID)
	if err != nil {
		return badRequest(ctx, err)
	}
	return s.buyLabel(ctx, id, req.RateID)
}

func (s *Server) buyLabel(ctx echo.Context, id kernel.UUID, rateID string) error {
	cmd, err := commands.NewBuyLabelCommand(id, rateID)
	if err != nil {
		return s.renderError(ctx, err)
	}
	result, err := s.h.BuyLabel.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.renderError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, newLabelResponse(result))
}

// CancelShipment handles POST /api/v1/shipments/:id/cancel. Admin only.
func (s *Server) CancelShipment(ctx echo.Context) error {
	id, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, err)
	}
	var req CancelRequest
	if ok, err := bind(ctx, &req); !ok {
		return err
	}

	cmd, err := commands.NewCancelShipmentCommand(id, req.Reason, principalFrom(ctx).Subject)
	if err != nil {
		return s.renderError(ctx, err)
	}
	cancelled, err := s.h.CancelShipment.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.renderError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, ShipmentStatusResponse{
		ShipmentID: cancelled.ID().String(),
		Status:     cancelled.Status().String(),
	})
}
