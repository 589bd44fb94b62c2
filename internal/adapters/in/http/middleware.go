package http

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"shipping/internal/core/ports"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const (
	principalKey = "principal"

	// WebhookTokenHeader carries the shared secret configured at the provider.
	WebhookTokenHeader = "X-Webhook-Token"
)

// RequestLogger logs one line per request.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency.Round(time.Microsecond)),
			}
			if v.RequestID != "" {
				fields = append(fields, zap.String("request_id", v.RequestID))
			}
			switch {
			case v.Status >= http.StatusInternalServerError:
				logger.Error("request", append(fields, zap.Error(v.Error))...)
			case v.Status >= http.StatusBadRequest:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
			return nil
		},
	})
}

// requireRole authenticates the bearer token and checks the caller holds role.
func (s *Server) requireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token, ok := bearerToken(ctx.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return respond(ctx, http.StatusUnauthorized, "bearer token is required")
			}
			p, err := s.authorizer.Authenticate(ctx.Request().Context(), token)
			if err != nil {
				return s.renderError(ctx, err)
			}
			if !p.HasRole(role) {
				return respond(ctx, http.StatusForbidden, "role "+role+" is required")
			}
			ctx.Set(principalKey, p)
			return next(ctx)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func principalFrom(ctx echo.Context) ports.Principal {
	p, _ := ctx.Get(principalKey).(ports.Principal)
	return p
}

// validWebhookToken compares in constant time. An empty configured token
// rejects every call.
func (s *Server) validWebhookToken(ctx echo.Context) bool {
	if s.webhookToken == "" {
		return false
	}
	got := ctx.Request().Header.Get(WebhookTokenHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.webhookToken)) == 1
}
