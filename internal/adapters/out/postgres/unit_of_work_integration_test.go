package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	postgres_adapter "shipping/internal/adapters/out/postgres"
	"shipping/internal/core/domain/model/carrier"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/shipment"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := postgres_adapter.Open(postgres_adapter.DriverPostgres, dsn, postgres_adapter.PoolSettings{MaxOpenConns: 8})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))

	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE shipments, shipment_activities, carrier_configs, quote_sessions").Error
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().Error(uow.Commit(ctx), "commit without begin")
	suite.Require().Error(uow.Rollback(ctx), "rollback without begin")

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "nested begin is a no-op")
	suite.Require().NoError(uow.Commit(ctx))
	suite.Require().Error(uow.Rollback(ctx), "deferred rollback after commit")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RollbackDiscardsWrites() {
	ctx := context.Background()
	s := newShipment(suite)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.ShipmentRepository().Add(ctx, s))
	suite.Require().NoError(uow.CarrierConfigRepository().EnsureDefaults(ctx, carrier.Defaults()))
	suite.Require().NoError(uow.Rollback(ctx))

	_, err := suite.factory.Create().ShipmentRepository().Get(ctx, s.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	configs, err := suite.factory.Create().CarrierConfigRepository().List(ctx)
	suite.Require().NoError(err)
	suite.Empty(configs)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_CommitTracksAggregates() {
	ctx := context.Background()
	s := newShipment(suite)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.ShipmentRepository().Add(ctx, s))
	suite.Require().NoError(uow.Commit(ctx))

	tracked := uow.(*postgres_adapter.GormUnitOfWork).TrackedIDs()
	suite.Require().Len(tracked, 1)
	suite.True(tracked[0].IsEqual(s.ID()))

	got, err := suite.factory.Create().ShipmentRepository().Get(ctx, s.ID())
	suite.Require().NoError(err)
	suite.Equal(shipment.Rated, got.Status())
}

// Two transactions racing to buy a label: the second one waits for the row
// lock and then sees the purchase of the first.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RowLockSerializesPurchases() {
	ctx := context.Background()
	s := newShipment(suite)
	setup := suite.factory.Create()
	suite.Require().NoError(setup.Begin(ctx))
	suite.Require().NoError(setup.ShipmentRepository().Add(ctx, s))
	suite.Require().NoError(setup.Commit(ctx))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		purchases int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uow := suite.factory.Create()
			if err := uow.Begin(ctx); err != nil {
				suite.Fail(err.Error())
				return
			}
			defer func() { _ = uow.Rollback(ctx) }()

			repo := uow.ShipmentRepository()
			locked, err := repo.GetForUpdate(ctx, s.ID())
			if err != nil {
				suite.Fail(err.Error())
				return
			}
			if _, has := locked.Label(); has {
				return
			}
			time.Sleep(50 * time.Millisecond)
			label := shipment.Label{URL: "https://l/1.pdf", TrackingNumber: "TRK-1", Carrier: "dhl", Service: "express"}
			if err = locked.PurchaseLabel("rate_1", label, time.Now()); err != nil {
				suite.Fail(err.Error())
				return
			}
			if err = repo.Update(ctx, locked); err != nil {
				suite.Fail(err.Error())
				return
			}
			if err = uow.Commit(ctx); err != nil {
				suite.Fail(err.Error())
				return
			}
			mu.Lock()
			purchases++
			mu.Unlock()
		}()
	}
	wg.Wait()

	suite.Equal(1, purchases)
	got, err := suite.factory.Create().ShipmentRepository().Get(ctx, s.ID())
	suite.Require().NoError(err)
	suite.Equal(shipment.LabelPurchased, got.Status())
	suite.Len(got.Activity(), 2)
}

func newShipment(suite *UnitOfWorkIntegrationTestSuite) *shipment.Shipment {
	addr, err := kernel.NewAddress(kernel.AddressParams{Line1: "1 Main St", City: "Austin", Country: "US"})
	suite.Require().NoError(err)
	parcel, err := kernel.NewParcel(20, 20, 20, 2)
	suite.Require().NoError(err)
	s, err := shipment.NewShipment(shipment.Params{
		ID: kernel.NewUUID(), Currency: kernel.MustCurrency("USD"), To: addr, From: addr, Parcel: parcel,
		CreatedAt: time.Now().UTC(),
	})
	suite.Require().NoError(err)
	suite.Require().NoError(s.Rate("simulator", "sim_1", []shipment.Rate{
		{ID: "rate_1", Carrier: "dhl", Service: "express", AmountMinor: 1000, Currency: "USD"},
	}, time.Now().UTC()))
	return s
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
