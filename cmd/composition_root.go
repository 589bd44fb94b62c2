package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	httpin "shipping/internal/adapters/in/http"
	"shipping/internal/adapters/out/jwtauth"
	"shipping/internal/adapters/out/notify"
	"shipping/internal/adapters/out/postgres"
	"shipping/internal/adapters/out/postgres/carrierrepo"
	"shipping/internal/adapters/out/postgres/quotesessionrepo"
	"shipping/internal/adapters/out/providers/easypost"
	"shipping/internal/adapters/out/providers/shippo"
	"shipping/internal/adapters/out/providers/simulator"
	"shipping/internal/adapters/out/redisstore"
	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/application/usecases/queries"
	"shipping/internal/core/domain/model/carrier"
	"shipping/internal/core/ports"
	"shipping/internal/jobs"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// provider is what the composition root needs from a carrier backend.
type provider interface {
	ports.Provider
	ports.WebhookParser
}

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	logger     *zap.Logger

	provider   provider
	sessions   ports.QuoteSessionStore
	purger     jobs.SessionPurger
	notifier   ports.Notifier
	publisher  ports.StatusPublisher
	authorizer *jwtauth.Authorizer
	redis      *redis.Client
}

// NewCompositionRoot builds the outbound adapters selected by cfg. Redis,
// when configured, holds quote sessions and carries status broadcasts;
// otherwise sessions live in the database and are purged by a job.
func NewCompositionRoot(ctx context.Context, cfg Config, gormDB *gorm.DB, logger *zap.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:     logger,
	}

	p, err := newProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", cfg.Provider, err)
	}
	c.provider = p

	c.authorizer, err = jwtauth.NewAuthorizer(jwtauth.Config{Secret: []byte(cfg.JWTSecret), Issuer: cfg.JWTIssuer})
	if err != nil {
		return nil, err
	}

	if cfg.RedisAddr != "" {
		c.redis, err = redisstore.NewClient(ctx, redisstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		c.sessions = redisstore.NewSessionStore(c.redis, time.Now)
		c.publisher = redisstore.NewStatusPublisher(c.redis, cfg.RedisStatusChannel)
	} else {
		store := quotesessionrepo.NewGormQuoteSessionStore(gormDB, time.Now)
		c.sessions = store
		c.purger = store
		c.publisher = notify.NewLogStatusPublisher(logger)
	}

	if cfg.LmstfyHost != "" {
		lmstfy := notify.NewLmstfyClient(notify.LmstfyOptions{
			Host:      cfg.LmstfyHost,
			Port:      cfg.LmstfyPort,
			Namespace: cfg.LmstfyNamespace,
			Token:     cfg.LmstfyToken,
		})
		c.notifier = notify.NewLmstfyNotifier(lmstfy, cfg.LmstfyQueue, logger)
	} else {
		c.notifier = notify.NewLogNotifier(logger)
	}
	return c, nil
}

func newProvider(cfg Config) (provider, error) {
	switch cfg.Provider {
	case shippo.Name:
		return shippo.New(shippo.Config{Token: cfg.ShippoToken, BaseURL: cfg.ShippoBaseURL, Timeout: cfg.ProviderTimeout})
	case easypost.Name:
		return easypost.New(easypost.Config{APIKey: cfg.EasyPostAPIKey, BaseURL: cfg.EasyPostBaseURL, Timeout: cfg.ProviderTimeout})
	case simulator.Name, "":
		return simulator.New(cfg.SimulatorNodeID)
	default:
		return nil, errors.New("unknown provider")
	}
}

// EnsureCarrierDefaults stores the built-in configuration of every supported
// carrier that has none yet.
func (c *CompositionRoot) EnsureCarrierDefaults(ctx context.Context) error {
	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() { _ = uow.Rollback(ctx) }()

	if err := uow.CarrierConfigRepository().EnsureDefaults(ctx, carrier.Defaults()); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

func (c *CompositionRoot) shipmentUoWFactory() commands.ShipmentUoWFactory {
	return FuncShipmentUoWFactory(func() commands.ShipmentUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) carrierUoWFactory() commands.CarrierUoWFactory {
	return FuncCarrierUoWFactory(func() commands.CarrierUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateQuoteCommandHandler() commands.CreateQuoteCommandHandler {
	return commands.NewCreateQuoteCommandHandler(c.carrierUoWFactory(), c.sessions, c.cfg.QuoteSessionTTL, nil, c.logger)
}

func (c *CompositionRoot) CreateCreateShipmentCommandHandler() commands.CreateShipmentCommandHandler {
	return commands.NewCreateShipmentCommandHandler(c.shipmentUoWFactory(), c.provider, c.sessions, nil, c.logger)
}

func (c *CompositionRoot) CreateBuyLabelCommandHandler() commands.BuyLabelCommandHandler {
	return commands.NewBuyLabelCommandHandler(c.shipmentUoWFactory(), c.provider, c.notifier, c.publisher, nil, c.logger)
}

func (c *CompositionRoot) CreateCancelShipmentCommandHandler() commands.CancelShipmentCommandHandler {
	return commands.NewCancelShipmentCommandHandler(c.shipmentUoWFactory(), nil, c.logger)
}

func (c *CompositionRoot) CreateApplyTrackingEventCommandHandler() commands.ApplyTrackingEventCommandHandler {
	return commands.NewApplyTrackingEventCommandHandler(c.shipmentUoWFactory(), c.publisher, nil, c.logger)
}

func (c *CompositionRoot) CreateSaveCarrierSettingsCommandHandler() commands.SaveCarrierSettingsCommandHandler {
	return commands.NewSaveCarrierSettingsCommandHandler(c.carrierUoWFactory(), c.logger)
}

func (c *CompositionRoot) CreatePatchCarrierSettingsCommandHandler() commands.PatchCarrierSettingsCommandHandler {
	return commands.NewPatchCarrierSettingsCommandHandler(c.carrierUoWFactory(), c.logger)
}

func (c *CompositionRoot) CreateGetShipmentQueryHandler() queries.GetShipmentQueryHandler {
	return queries.NewGetShipmentQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetShipmentsSummaryQueryHandler() queries.GetShipmentsSummaryQueryHandler {
	return queries.NewGetShipmentsSummaryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateExportShipmentsQueryHandler() queries.ExportShipmentsQueryHandler {
	return queries.NewExportShipmentsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetCarrierSettingsQueryHandler() queries.GetCarrierSettingsQueryHandler {
	return queries.NewGetCarrierSettingsQueryHandler(carrierrepo.NewGormCarrierConfigRepository(c.gormDB, time.Now))
}

func (c *CompositionRoot) CreateGetQuoteSessionQueryHandler() queries.GetQuoteSessionQueryHandler {
	return queries.NewGetQuoteSessionQueryHandler(c.sessions)
}

// CreateHTTPServer wires every use case into the REST adapter.
func (c *CompositionRoot) CreateHTTPServer(openapi *httpin.OpenAPI) (*httpin.Server, error) {
	return httpin.NewServer(httpin.Config{
		Handlers: httpin.Handlers{
			CreateQuote:    c.CreateCreateQuoteCommandHandler(),
			GetQuote:       c.CreateGetQuoteSessionQueryHandler(),
			CreateShipment: c.CreateCreateShipmentCommandHandler(),
			BuyLabel:       c.CreateBuyLabelCommandHandler(),
			CancelShipment: c.CreateCancelShipmentCommandHandler(),
			ApplyTracking:  c.CreateApplyTrackingEventCommandHandler(),
			GetShipment:    c.CreateGetShipmentQueryHandler(),
			Summary:        c.CreateGetShipmentsSummaryQueryHandler(),
			Export:         c.CreateExportShipmentsQueryHandler(),
			GetCarriers:    c.CreateGetCarrierSettingsQueryHandler(),
			SaveCarriers:   c.CreateSaveCarrierSettingsCommandHandler(),
			PatchCarrier:   c.CreatePatchCarrierSettingsCommandHandler(),
		},
		Webhooks:     map[string]ports.WebhookParser{c.provider.Name(): c.provider},
		WebhookToken: c.cfg.WebhookToken,
		Authorizer:   c.authorizer,
		OpenAPI:      openapi,
		Logger:       c.logger,
	})
}

// CreateJobManager returns the background jobs of the selected adapters.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	var list []jobs.Job
	if c.purger != nil {
		list = append(list, jobs.NewQuoteSessionPurgeJob(c.purger, c.cfg.QuotePurgeSchedule, c.logger))
	}
	return jobs.NewJobManager(c.logger, list...)
}

// Authorizer is exposed for token tooling.
func (c *CompositionRoot) Authorizer() *jwtauth.Authorizer { return c.authorizer }

func (c *CompositionRoot) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

type FuncShipmentUoWFactory func() commands.ShipmentUoW

func (f FuncShipmentUoWFactory) Create() commands.ShipmentUoW {
	return f()
}

type FuncCarrierUoWFactory func() commands.CarrierUoW

func (f FuncCarrierUoWFactory) Create() commands.CarrierUoW {
	return f()
}
