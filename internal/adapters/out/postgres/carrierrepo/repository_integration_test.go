package carrierrepo_test

import (
	"context"
	"testing"
	"time"

	"shipping/internal/adapters/out/postgres/carrierrepo"
	"shipping/internal/core/domain/model/carrier"
	"shipping/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type CarrierConfigRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *carrierrepo.GormCarrierConfigRepository
	now        time.Time
}

func (suite *CarrierConfigRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&carrierrepo.CarrierConfigDTO{}))
}

func (suite *CarrierConfigRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE carrier_configs").Error)
	suite.now = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	suite.repository = carrierrepo.NewGormCarrierConfigRepository(suite.db, func() time.Time { return suite.now })
}

func (suite *CarrierConfigRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *CarrierConfigRepositoryIntegrationTestSuite) TestEnsureDefaults() {
	ctx := context.Background()

	suite.Require().NoError(suite.repository.EnsureDefaults(ctx, carrier.Defaults()))
	suite.Require().NoError(suite.repository.EnsureDefaults(ctx, carrier.Defaults()))

	configs, err := suite.repository.List(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(configs, 4)
	ids := make([]string, 0, len(configs))
	for _, c := range configs {
		ids = append(ids, c.ID())
		suite.Equal(int64(1), c.Version())
		suite.True(c.UpdatedAt().Equal(suite.now))
	}
	suite.Equal([]string{"aramex", "dhl", "fedex", "ups"}, ids)
}

func (suite *CarrierConfigRepositoryIntegrationTestSuite) TestEnsureDefaultsKeepsEditedRows() {
	ctx := context.Background()
	edited, err := carrier.Default(carrier.DHL).WithMarkupPct(20)
	suite.Require().NoError(err)
	_, err = suite.repository.Save(ctx, edited)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.repository.EnsureDefaults(ctx, carrier.Defaults()))

	got, err := suite.repository.Get(ctx, "DHL")
	suite.Require().NoError(err)
	suite.InDelta(20, got.MarkupPct(), 1e-9)
}

func (suite *CarrierConfigRepositoryIntegrationTestSuite) TestSaveBumpsVersionAndRoundTrips() {
	ctx := context.Background()
	cfg := carrier.Default(carrier.Aramex).
		WithEnabled(false).
		WithRemoteAreaPostcodePrefixes([]string{" ae9 ", "AE8", "ae9"})
	cfg, err := cfg.WithBaseRatePerKg(carrier.Express, 31.5)
	suite.Require().NoError(err)

	first, err := suite.repository.Save(ctx, cfg)
	suite.Require().NoError(err)
	suite.Equal(int64(1), first.Version())

	suite.now = suite.now.Add(time.Hour)
	second, err := suite.repository.Save(ctx, cfg)
	suite.Require().NoError(err)
	suite.Equal(int64(2), second.Version())

	got, err := suite.repository.Get(ctx, carrier.Aramex)
	suite.Require().NoError(err)
	suite.False(got.Enabled())
	suite.Equal([]string{"AE9", "AE8"}, got.RemoteAreaPostcodePrefixes())
	suite.InDelta(31.5, got.BaseRatePerKg().Express, 1e-9)
	suite.Equal(int64(2), got.Version())
	suite.True(got.UpdatedAt().Equal(suite.now))
	suite.Equal(cfg.Params(), got.Params())
}

func (suite *CarrierConfigRepositoryIntegrationTestSuite) TestGetUnknownCarrier() {
	_, err := suite.repository.Get(context.Background(), "pigeon")

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *CarrierConfigRepositoryIntegrationTestSuite) TestSaveRejectsUnconstructedConfig() {
	_, err := suite.repository.Save(context.Background(), carrier.Config{})

	suite.Require().ErrorIs(err, carrier.ErrConfigIsNotConstructed)
}

func TestCarrierConfigRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(CarrierConfigRepositoryIntegrationTestSuite))
}
