// Package http is the inbound REST adapter. It binds and validates requests,
// runs the matching command or query and maps domain errors to status codes.
package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/application/usecases/queries"
	"shipping/internal/core/domain/model/carrier"
	"shipping/internal/core/domain/model/quote"
	"shipping/internal/core/domain/model/shipment"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

// Use case contracts the server depends on. The command and query handlers
// satisfy them directly.
type (
	QuoteCreator interface {
		Handle(ctx context.Context, cmd commands.CreateQuoteCommand) (*quote.Session, error)
	}
	QuoteGetter interface {
		Handle(ctx context.Context, query queries.GetQuoteSessionQuery) (*quote.Session, error)
	}
	ShipmentCreator interface {
		Handle(ctx context.Context, cmd commands.CreateShipmentCommand) (commands.CreateShipmentResult, error)
	}
	LabelBuyer interface {
		Handle(ctx context.Context, cmd commands.BuyLabelCommand) (commands.BuyLabelResult, error)
	}
	ShipmentCanceller interface {
		Handle(ctx context.Context, cmd commands.CancelShipmentCommand) (*shipment.Shipment, error)
	}
	TrackingApplier interface {
		Handle(ctx context.Context, cmd commands.ApplyTrackingEventCommand) (commands.TrackingResult, error)
	}
	ShipmentGetter interface {
		Handle(ctx context.Context, query queries.GetShipmentQuery) (queries.GetShipmentQueryResponse, error)
	}
	ShipmentsSummarizer interface {
		Handle(ctx context.Context, query queries.GetShipmentsSummaryQuery) (queries.GetShipmentsSummaryQueryResponse, error)
	}
	ShipmentsExporter interface {
		Handle(ctx context.Context, query queries.ExportShipmentsQuery) ([]queries.ShipmentRow, error)
	}
	CarrierSettingsGetter interface {
		Handle(ctx context.Context, query queries.GetCarrierSettingsQuery) ([]carrier.Config, error)
	}
	CarrierSettingsSaver interface {
		Handle(ctx context.Context, cmd commands.SaveCarrierSettingsCommand) ([]carrier.Config, error)
	}
	CarrierSettingsPatcher interface {
		Handle(ctx context.Context, cmd commands.PatchCarrierSettingsCommand) (carrier.Config, error)
	}
)

// Handlers groups the use cases exposed over HTTP.
type Handlers struct {
	CreateQuote    QuoteCreator
	GetQuote       QuoteGetter
	CreateShipment ShipmentCreator
	BuyLabel       LabelBuyer
	CancelShipment ShipmentCanceller
	ApplyTracking  TrackingApplier
	GetShipment    ShipmentGetter
	Summary        ShipmentsSummarizer
	Export         ShipmentsExporter
	GetCarriers    CarrierSettingsGetter
	SaveCarriers   CarrierSettingsSaver
	PatchCarrier   CarrierSettingsPatcher
}

type Config struct {
	Handlers Handlers
	// Webhooks maps the {provider} path segment to its payload parser.
	Webhooks     map[string]ports.WebhookParser
	WebhookToken string
	Authorizer   ports.Authorizer
	// OpenAPI enables request validation and the swagger UI when set.
	OpenAPI *OpenAPI
	Logger  *zap.Logger
}

// Server serves the shipping REST API.
type Server struct {
	h            Handlers
	webhooks     map[string]ports.WebhookParser
	webhookToken string
	authorizer   ports.Authorizer
	openapi      *OpenAPI
	logger       *zap.Logger
}

func NewServer(cfg Config) (*Server, error) {
	if err := cfg.Handlers.validate(); err != nil {
		return nil, err
	}
	if cfg.Authorizer == nil {
		return nil, errs.NewValueIsRequiredError("authorizer")
	}
	if cfg.Logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}
	webhooks := make(map[string]ports.WebhookParser, len(cfg.Webhooks))
	for name, p := range cfg.Webhooks {
		webhooks[strings.ToLower(name)] = p
	}
	return &Server{
		h:            cfg.Handlers,
		webhooks:     webhooks,
		webhookToken: cfg.WebhookToken,
		authorizer:   cfg.Authorizer,
		openapi:      cfg.OpenAPI,
		logger:       cfg.Logger.With(zap.String("component", "http")),
	}, nil
}

func (h Handlers) validate() error {
	v := reflect.ValueOf(h)
	for i := range v.NumField() {
		if v.Field(i).IsNil() {
			return errs.NewValueIsRequiredError("handler " + v.Type().Field(i).Name)
		}
	}
	return nil
}

// Register mounts every route on e and installs the validator and the error
// handler.
func (s *Server) Register(e *echo.Echo) error {
	e.Validator = NewValidator()
	e.HTTPErrorHandler = s.HTTPErrorHandler

	var validate []echo.MiddlewareFunc
	if s.openapi != nil {
		validate = append(validate, s.openapi.ValidateRequest())
		if err := s.openapi.RegisterSwagger(); err != nil {
			return err
		}
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}
	admin := append([]echo.MiddlewareFunc{s.requireRole(ports.RoleAdmin)}, validate...)

	api := e.Group("/api/v1")
	api.POST("/quotes", s.CreateQuote, validate...)
	api.GET("/quotes/:id", s.GetQuote, validate...)
	api.POST("/shipments", s.CreateShipment, validate...)
	api.GET("/shipments/:id", s.GetShipment, validate...)
	api.POST("/shipments/:id/label", s.BuyShipmentLabel, validate...)
	api.POST("/labels", s.BuyLabel, validate...)
	api.POST("/shipments/:id/cancel", s.CancelShipment, admin...)

	api.GET("/admin/carriers", s.ListCarriers, admin...)
	api.PUT("/admin/carriers", s.SaveCarriers, admin...)
	api.PATCH("/admin/carriers/:carrierId", s.PatchCarrier, admin...)
	api.GET("/admin/shipments/summary", s.ShipmentsSummary, admin...)
	api.GET("/admin/shipments/export.csv", s.ExportShipments, admin...)

	e.POST("/webhooks/:provider", s.TrackingWebhook)
	return nil
}

// Validator adapts go-playground/validator to echo. Field paths in errors use
// the json names.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

func (v *Validator) Validate(i any) error {
	return v.v.Struct(i)
}

// bind decodes the body into dst and validates it. It returns a rendered 400
// response as error when either step fails, so callers return it as is.
func bind(ctx echo.Context, dst any) (bool, error) {
	if err := ctx.Bind(dst); err != nil {
		return false, respond(ctx, http.StatusBadRequest, "malformed request body")
	}
	if err := ctx.Validate(dst); err != nil {
		return false, badRequest(ctx, err)
	}
	return true, nil
}
