// Package jwtauth verifies HS256 bearer tokens issued by the platform's
// auth service.
package jwtauth

import (
	"context"
	"errors"
	"strings"
	"time"

	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v5"
)

var _ ports.Authorizer = (*Authorizer)(nil)

type Config struct {
	Secret []byte
	// Issuer is checked when set.
	Issuer string
	Now    func() time.Time
}

type claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

type Authorizer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewAuthorizer(cfg Config) (*Authorizer, error) {
	if len(cfg.Secret) == 0 {
		return nil, errs.NewValueIsRequiredError("jwt secret")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Authorizer{secret: cfg.Secret, issuer: cfg.Issuer, now: cfg.Now}, nil
}

// Authenticate returns the principal of a valid token. Every failure is an
// unauthorized AuthError; role checks are left to the caller.
func (a *Authorizer) Authenticate(_ context.Context, token string) (ports.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ports.Principal{}, errs.NewUnauthorizedError("bearer token is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return ports.Principal{}, mapJWTError(err)
	}

	if strings.TrimSpace(parsed.Subject) == "" {
		return ports.Principal{}, errs.NewUnauthorizedError("token has no subject")
	}
	return ports.Principal{Subject: parsed.Subject, Roles: parsed.Roles}, nil
}

// Issue signs a token for subject. It is used by tooling and tests.
func (a *Authorizer) Issue(subject string, roles []string, ttl time.Duration) (string, error) {
	now := a.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Roles: roles,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(a.secret)
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return errs.NewUnauthorizedError("token is expired")
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return errs.NewUnauthorizedError("token signature is invalid")
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return errs.NewUnauthorizedError("token issuer mismatch")
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return errs.NewUnauthorizedError("token has no expiry")
	default:
		return errs.NewUnauthorizedError("token is invalid")
	}
}
