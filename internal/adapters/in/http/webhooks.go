package http

import (
	"io"
	"net/http"
	"strings"

	"shipping/internal/core/application/usecases/commands"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const maxWebhookBytes = 1 << 20

// TrackingWebhook handles POST /webhooks/:provider.
//
// The shared token is checked before anything else is looked at. Once the
// payload parses, the carrier always gets 200: unknown shipments and storage
// failures are logged, not reported, so that carriers stop redelivering.
func (s *Server) TrackingWebhook(ctx echo.Context) error {
	if !s.validWebhookToken(ctx) {
		return respond(ctx, http.StatusUnauthorized, "invalid webhook token")
	}

	provider := strings.ToLower(ctx.Param("provider"))
	parser, ok := s.webhooks[provider]
	if !ok {
		return respond(ctx, http.StatusNotFound, "unknown provider "+provider)
	}

	body, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxWebhookBytes))
	if err != nil {
		return respond(ctx, http.StatusBadRequest, "cannot read body")
	}
	event, err := parser.ParseWebhook(body)
	if err != nil {
		return badRequest(ctx, err)
	}
	if event.Provider == "" {
		event.Provider = provider
	}

	log := s.logger.With(
		zap.String("provider", provider),
		zap.String("tracking_number", event.TrackingNumber),
		zap.String("provider_shipment_id", event.ProviderShipmentID),
		zap.String("raw_status", event.RawStatus),
	)

	result, err := s.h.ApplyTracking.Handle(ctx.Request().Context(), commands.NewApplyTrackingEventCommand(event))
	if err != nil {
		log.Error("tracking event not applied", zap.Error(err))
		return ctx.NoContent(http.StatusOK)
	}
	log.Info("tracking event received",
		zap.String("outcome", string(result.Outcome)),
		zap.String("status", result.Status.String()))
	return ctx.NoContent(http.StatusOK)
}
