package http

import (
	"errors"
	"net/http"
	"strings"

	"shipping/internal/pkg/errs"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail points at one offending request field.
type ErrorDetail struct {
	Path string `json:"path"`
	Info string `json:"info"`
}

func respond(ctx echo.Context, code int, message string, details ...ErrorDetail) error {
	return ctx.JSON(code, Error{Code: code, Message: message, Details: details})
}

// badRequest renders a malformed request. Validator errors are flattened to
// one detail per field.
func badRequest(ctx echo.Context, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]ErrorDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, ErrorDetail{
				Path: fieldPath(fe.Namespace()),
				Info: describeTag(fe),
			})
		}
		return respond(ctx, http.StatusBadRequest, "request validation failed", details...)
	}

	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		detail := ErrorDetail{Info: reqErr.Reason}
		if reqErr.Parameter != nil {
			detail.Path = reqErr.Parameter.Name
		}
		if detail.Info == "" && reqErr.Err != nil {
			detail.Info = reqErr.Err.Error()
		}
		return respond(ctx, http.StatusBadRequest, "request does not match the API schema", detail)
	}

	return respond(ctx, http.StatusBadRequest, err.Error())
}

// fieldPath drops the top-level struct name: "quoteRequest.dimsCm.l" -> "dimsCm.l".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte", "max":
		return "must be at most " + fe.Param()
	case "len":
		return "must have length " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be an email address"
	case "uuid":
		return "must be a uuid"
	default:
		return "failed on " + fe.Tag()
	}
}

// renderError maps application errors to status codes. Provider messages are
// passed through verbatim; unexpected errors are logged and hidden.
func (s *Server) renderError(ctx echo.Context, err error) error {
	var (
		perr  *errs.ProviderError
		nferr *errs.ObjectNotFoundError
	)
	switch {
	case errors.As(err, &perr):
		return respond(ctx, http.StatusBadGateway, perr.Message)
	case errors.As(err, &nferr):
		return respond(ctx, http.StatusNotFound, nferr.ParamName+" not found")
	case errors.Is(err, errs.ErrObjectNotFound):
		return respond(ctx, http.StatusNotFound, err.Error())
	case errs.IsValidation(err):
		return respond(ctx, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, errs.ErrConflict):
		return respond(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		return respond(ctx, http.StatusUnauthorized, err.Error())
	case errors.Is(err, errs.ErrForbidden):
		return respond(ctx, http.StatusForbidden, err.Error())
	default:
		s.logger.Error("request failed",
			zap.String("method", ctx.Request().Method),
			zap.String("path", ctx.Path()),
			zap.Error(err))
		return respond(ctx, http.StatusInternalServerError, "internal error")
	}
}

// HTTPErrorHandler renders errors that escape handlers, such as unknown
// routes, in the same envelope as handler errors.
func (s *Server) HTTPErrorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			message = m
		}
		err = respond(ctx, he.Code, message)
	} else {
		err = s.renderError(ctx, err)
	}
	if err != nil {
		s.logger.Warn("write error response", zap.Error(err))
	}
}
