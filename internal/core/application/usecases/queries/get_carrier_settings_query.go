package queries

import (
	"context"
	"errors"
	"slices"
	"strings"

	"shipping/internal/core/domain/model/carrier"
	"shipping/internal/pkg/guard"
)

var ErrGetCarrierSettingsQueryIsNotConstructed = errors.New(
	"GetCarrierSettingsQuery must be created via NewGetCarrierSettingsQuery constructor",
)

// GetCarrierSettingsQuery lists the effective carrier configurations.
type GetCarrierSettingsQuery struct {
	guard guard.ConstructorGuard
}

func NewGetCarrierSettingsQuery() GetCarrierSettingsQuery {
	return GetCarrierSettingsQuery{guard: guard.NewConstructorGuard()}
}

func (q GetCarrierSettingsQuery) Validate() error {
	return q.guard.Validate(ErrGetCarrierSettingsQueryIsNotConstructed)
}

// CarrierConfigLister is the read part of ports.CarrierConfigRepository.
type CarrierConfigLister interface {
	List(ctx context.Context) ([]carrier.Config, error)
}

// GetCarrierSettingsQueryHandler returns the stored configurations, with the
// built-in default (version 0) standing in for supported carriers that have
// not been stored yet.
type GetCarrierSettingsQueryHandler struct {
	lister CarrierConfigLister
}

func NewGetCarrierSettingsQueryHandler(lister CarrierConfigLister) GetCarrierSettingsQueryHandler {
	return GetCarrierSettingsQueryHandler{lister: lister}
}

func (h GetCarrierSettingsQueryHandler) Handle(ctx context.Context, query GetCarrierSettingsQuery) ([]carrier.Config, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	stored, err := h.lister.List(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(stored))
	result := slices.Clone(stored)
	for _, c := range stored {
		seen[c.ID()] = true
	}
	for _, d := range carrier.Defaults() {
		if !seen[d.ID()] {
			result = append(result, d)
		}
	}

	slices.SortFunc(result, func(a, b carrier.Config) int { return strings.Compare(a.ID(), b.ID()) })
	return result, nil
}
