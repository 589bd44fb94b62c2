package http

import (
	"net/http"

	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/application/usecases/queries"
	"shipping/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// CreateQuote handles POST /api/v1/quotes.
func (s *Server) CreateQuote(ctx echo.Context) error {
	var req QuoteRequest
	if ok, err := bind(ctx, &req); !ok {
		return err
	}

	request, err := req.toDomain()
	if err != nil {
		return s.renderError(ctx, err)
	}
	cmd, err := commands.NewCreateQuoteCommand(request)
	if err != nil {
		return s.renderError(ctx, err)
	}

	session, err := s.h.CreateQuote.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.renderError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, newQuoteResponse(session))
}

// GetQuote handles GET /api/v1/quotes/:id. Expired sessions are not found.
func (s *Server) GetQuote(ctx echo.Context) error {
	id, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, err)
	}
	query, err := queries.NewGetQuoteSessionQuery(id)
	if err != nil {
		return s.renderError(ctx, err)
	}

	session, err := s.h.GetQuote.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.renderError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, newQuoteResponse(session))
}
