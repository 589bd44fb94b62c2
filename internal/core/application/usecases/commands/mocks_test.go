package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/domain/model/carrier"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/quote"
	"shipping/internal/core/domain/model/shipment"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type MockShipmentRepository struct{ mock.Mock }

func (m *MockShipmentRepository) Add(ctx context.Context, s *shipment.Shipment) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShipmentRepository) Update(ctx context.Context, s *shipment.Shipment) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShipmentRepository) Get(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*shipment.Shipment, error) {
	args := m.Called(ctx, trackingNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindByProviderShipmentID(ctx context.Context, id string) (*shipment.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Shipment), args.Error(1)
}

type MockCarrierRepository struct{ mock.Mock }

func (m *MockCarrierRepository) List(ctx context.Context) ([]carrier.Config, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]carrier.Config), args.Error(1)
}

func (m *MockCarrierRepository) Get(ctx context.Context, id string) (carrier.Config, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(carrier.Config), args.Error(1)
}

func (m *MockCarrierRepository) Save(ctx context.Context, cfg carrier.Config) (carrier.Config, error) {
	args := m.Called(ctx, cfg)
	return args.Get(0).(carrier.Config), args.Error(1)
}

func (m *MockCarrierRepository) EnsureDefaults(ctx context.Context, defaults []carrier.Config) error {
	args := m.Called(ctx, defaults)
	return args.Error(0)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) ShipmentRepository() ports.ShipmentRepository {
	args := m.Called()
	return args.Get(0).(ports.ShipmentRepository)
}

func (m *MockUoW) CarrierConfigRepository() ports.CarrierConfigRepository {
	args := m.Called()
	return args.Get(0).(ports.CarrierConfigRepository)
}

type MockShipmentUoWFactory struct{ mock.Mock }

func (m *MockShipmentUoWFactory) Create() commands.ShipmentUoW {
	args := m.Called()
	return args.Get(0).(commands.ShipmentUoW)
}

type MockCarrierUoWFactory struct{ mock.Mock }

func (m *MockCarrierUoWFactory) Create() commands.CarrierUoW {
	args := m.Called()
	return args.Get(0).(commands.CarrierUoW)
}

type MockProvider struct{ mock.Mock }

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) CreateShipmentAndRates(ctx context.Context, req ports.ShipmentRequest) (ports.ProviderShipment, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.ProviderShipment), args.Error(1)
}

func (m *MockProvider) BuyLabel(ctx context.Context, providerShipmentID, rateID string) (shipment.Label, error) {
	args := m.Called(ctx, providerShipmentID, rateID)
	return args.Get(0).(shipment.Label), args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) LabelReady(ctx context.Context, n ports.LabelReady) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) PublishStatusChange(ctx context.Context, change ports.StatusChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

type MockSessionStore struct{ mock.Mock }

func (m *MockSessionStore) Save(ctx context.Context, s *quote.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionStore) Get(ctx context.Context, id kernel.UUID) (*quote.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quote.Session), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// memoryShipments is a ShipmentRepository whose transactions are serialized
// by a mutex held from Begin to Commit/Rollback, mimicking row locks.
type memoryShipments struct {
	mu    sync.Mutex
	rows  map[string]*shipment.Shipment
	locks sync.Mutex
}

func newMemoryShipments(items ...*shipment.Shipment) *memoryShipments {
	m := &memoryShipments{rows: map[string]*shipment.Shipment{}}
	for _, s := range items {
		m.rows[s.ID().String()] = s
	}
	return m
}

func (m *memoryShipments) Create() commands.ShipmentUoW {
	return &memoryUoW{store: m}
}

type memoryUoW struct {
	store  *memoryShipments
	active bool
}

func (u *memoryUoW) Begin(context.Context) error {
	u.store.locks.Lock()
	u.active = true
	return nil
}

func (u *memoryUoW) Commit(context.Context) error {
	return u.release()
}

func (u *memoryUoW) Rollback(context.Context) error {
	return u.release()
}

func (u *memoryUoW) release() error {
	if !u.active {
		return nil
	}
	u.active = false
	u.store.locks.Unlock()
	return nil
}

func (u *memoryUoW) ShipmentRepository() ports.ShipmentRepository { return u.store }

func (m *memoryShipments) Add(_ context.Context, s *shipment.Shipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[s.ID().String()] = s
	return nil
}

func (m *memoryShipments) Update(ctx context.Context, s *shipment.Shipment) error {
	return m.Add(ctx, s)
}

func (m *memoryShipments) Get(_ context.Context, id kernel.UUID) (*shipment.Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id.String()]
	if !ok {
		return nil, errs.NewObjectNotFoundError("shipment", id)
	}
	return s, nil
}

func (m *memoryShipments) GetForUpdate(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error) {
	return m.Get(ctx, id)
}

func (m *memoryShipments) FindByTrackingNumber(_ context.Context, tn string) (*shipment.Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if s.TrackingNumber() == tn {
			return s, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("tracking number", tn)
}

func (m *memoryShipments) FindByProviderShipmentID(_ context.Context, id string) (*shipment.Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if s.ProviderShipmentID() == id {
			return s, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("provider shipment id", id)
}

func testAddress(t *testing.T, country string) kernel.Address {
	t.Helper()
	a, err := kernel.NewAddress(kernel.AddressParams{
		Name: "Test", Line1: "1 Test Street", City: "Testville", PostalCode: "T1 1AA", Country: country,
	})
	require.NoError(t, err)
	return a
}

func testParcel(t *testing.T) kernel.Parcel {
	t.Helper()
	p, err := kernel.NewParcel(30, 25, 15, 1)
	require.NoError(t, err)
	return p
}

func ratedShipment(t *testing.T) *shipment.Shipment {
	t.Helper()
	s, err := shipment.NewShipment(shipment.Params{
		ID:            kernel.NewUUID(),
		Currency:      kernel.MustCurrency("USD"),
		To:            testAddress(t, "US"),
		From:          testAddress(t, "GB"),
		Parcel:        testParcel(t),
		CustomerEmail: "customer@example.com",
		CreatedAt:     fixedNow,
	})
	require.NoError(t, err)
	require.NoError(t, s.Rate("mock", "shp_1", []shipment.Rate{
		{ID: "rate_1", Carrier: "dhl", Service: "express", AmountMinor: 6930, Currency: "USD"},
	}, fixedNow))
	return s
}

func purchasedShipment(t *testing.T) *shipment.Shipment {
	t.Helper()
	s := ratedShipment(t)
	require.NoError(t, s.PurchaseLabel("rate_1", testLabel(), fixedNow))
	return s
}

func testLabel() shipment.Label {
	return shipment.Label{URL: "https://labels.example.com/1.pdf", TrackingNumber: "TRK123", Carrier: "dhl", Service: "express"}
}

func nopLogger() *zap.Logger { return zap.NewNop() }
