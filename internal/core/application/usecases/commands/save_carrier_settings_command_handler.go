package commands

import (
	"context"

	"shipping/internal/core/domain/model/carrier"

	"go.uber.org/zap"
)

// SaveCarrierSettingsCommandHandler coerces and stores a bulk settings save
// and returns the complete stored set. Concurrent saves are last-write-wins.
type SaveCarrierSettingsCommandHandler struct {
	uowFactory CarrierUoWFactory
	logger     *zap.Logger
}

func NewSaveCarrierSettingsCommandHandler(uowFactory CarrierUoWFactory, logger *zap.Logger) SaveCarrierSettingsCommandHandler {
	return SaveCarrierSettingsCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With(zap.String("component", "carrier_settings")),
	}
}

func (h SaveCarrierSettingsCommandHandler) Handle(ctx context.Context, cmd SaveCarrierSettingsCommand) ([]carrier.Config, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	configs := make([]carrier.Config, 0, len(cmd.Entries()))
	for _, e := range cmd.Entries() {
		cfg, err := carrier.Coerce(e.CarrierID, e.Input)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.CarrierConfigRepository()
	for _, cfg := range configs {
		saved, err := repo.Save(ctx, cfg)
		if err != nil {
			return nil, err
		}
		h.logger.Info("carrier settings saved",
			zap.String("carrier", saved.ID()),
			zap.Int64("version", saved.Version()),
			zap.Bool("enabled", saved.Enabled()),
			zap.String("actor", cmd.Actor()),
		)
	}

	stored, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return stored, nil
}

// PatchCarrierSettingsCommandHandler applies a partial change to one carrier
// through the per-field setters. Invalid values are rejected.
type PatchCarrierSettingsCommandHandler struct {
	uowFactory CarrierUoWFactory
	logger     *zap.Logger
}

func NewPatchCarrierSettingsCommandHandler(uowFactory CarrierUoWFactory, logger *zap.Logger) PatchCarrierSettingsCommandHandler {
	return PatchCarrierSettingsCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With(zap.String("component", "carrier_settings")),
	}
}

func (h PatchCarrierSettingsCommandHandler) Handle(ctx context.Context, cmd PatchCarrierSettingsCommand) (carrier.Config, error) {
	if err := cmd.Validate(); err != nil {
		return carrier.Config{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return carrier.Config{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.CarrierConfigRepository()
	current, err := repo.Get(ctx, cmd.CarrierID())
	if err != nil {
		return carrier.Config{}, err
	}

	next, err := current.Apply(cmd.Input())
	if err != nil {
		return carrier.Config{}, err
	}

	saved, err := repo.Save(ctx, next)
	if err != nil {
		return carrier.Config{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return carrier.Config{}, err
	}

	h.logger.Info("carrier settings patched",
		zap.String("carrier", saved.ID()),
		zap.Int64("version", saved.Version()),
		zap.String("actor", cmd.Actor()),
	)
	return saved, nil
}
