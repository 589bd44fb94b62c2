package http

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var openapiSpec []byte

// OpenAPI is the parsed API description. It validates requests against the
// documented schemas and feeds the swagger UI.
type OpenAPI struct {
	doc    *openapi3.T
	router routers.Router
}

func LoadOpenAPI(ctx context.Context) (*OpenAPI, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &OpenAPI{doc: doc, router: router}, nil
}

// ValidateRequest rejects JSON requests that do not match the document with
// 400. Undocumented routes pass through. Authentication is enforced by the
// route middleware, not here.
func (o *OpenAPI) ValidateRequest() echo.MiddlewareFunc {
	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			req := ctx.Request()
			route, params, err := o.router.FindRoute(req)
			if err != nil {
				return next(ctx)
			}
			if req.ContentLength != 0 && !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
				return respond(ctx, http.StatusUnsupportedMediaType, "content type must be "+echo.MIMEApplicationJSON)
			}
			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: params,
				Route:      route,
				Options:    options,
			}
			if err := openapi3filter.ValidateRequest(req.Context(), input); err != nil {
				return badRequest(ctx, err)
			}
			return next(ctx)
		}
	}
}

type swaggerDoc string

func (d swaggerDoc) ReadDoc() string { return string(d) }

var registerSwagger sync.Once

// RegisterSwagger publishes the document to the swagger UI handler. Only the
// first call in a process has an effect.
func (o *OpenAPI) RegisterSwagger() error {
	data, err := o.doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal openapi document: %w", err)
	}
	registerSwagger.Do(func() {
		swag.Register(swag.Name, swaggerDoc(data))
	})
	return nil
}
