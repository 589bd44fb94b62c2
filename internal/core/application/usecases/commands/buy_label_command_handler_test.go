package commands_test

import (
	"errors"
	"sync"
	"testing"

	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/shipment"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewBuyLabelCommand(t *testing.T) {
	_, err := commands.NewBuyLabelCommand(kernel.UUID{}, " ")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "UUID")
	assert.Contains(t, err.Error(), "rate id")

	var cmd commands.BuyLabelCommand
	require.ErrorIs(t, cmd.Validate(), commands.ErrBuyLabelCommandIsNotConstructed)
}

func TestBuyLabelCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	s := ratedShipment(t)
	cmd, err := commands.NewBuyLabelCommand(s.ID(), "rate_1")
	require.NoError(t, err)

	repo := new(MockShipmentRepository)
	uow := new(MockUoW)
	provider := new(MockProvider)
	notifier := new(MockNotifier)
	publisher := new(MockPublisher)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("ShipmentRepository").Return(repo).Once(),
		repo.On("GetForUpdate", ctx, s.ID()).Return(s, nil).Once(),
		provider.On("BuyLabel", ctx, "shp_1", "rate_1").Return(testLabel(), nil).Once(),
		repo.On("Update", ctx, s).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		notifier.On("LabelReady", ctx, mock.MatchedBy(func(n ports.LabelReady) bool {
			return n.CustomerEmail == "customer@example.com" && n.TrackingNumber == "TRK123"
		})).Return(nil).Once(),
		publisher.On("PublishStatusChange", ctx, mock.MatchedBy(func(c ports.StatusChange) bool {
			return c.From == shipment.Rated && c.To == shipment.LabelPurchased
		})).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockShipmentUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewBuyLabelCommandHandler(factory, provider, notifier, publisher, clock, nopLogger())
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.False(t, result.AlreadyPurchased)
	assert.Equal(t, testLabel(), result.Label)
	assert.Equal(t, shipment.LabelPurchased, s.Status())

	for _, m := range []interface{ AssertExpectations(mock.TestingT) bool }{factory, uow, repo, provider, notifier, publisher} {
		m.AssertExpectations(t)
	}
}

func TestBuyLabelCommandHandler_Handle_AlreadyPurchased(t *testing.T) {
	ctx := t.Context()
	s := purchasedShipment(t)
	cmd, err := commands.NewBuyLabelCommand(s.ID(), "rate_1")
	require.NoError(t, err)

	repo := new(MockShipmentRepository)
	uow := new(MockUoW)
	provider := new(MockProvider)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ShipmentRepository").Return(repo).Once()
	repo.On("GetForUpdate", ctx, s.ID()).Return(s, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockShipmentUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewBuyLabelCommandHandler(factory, provider, new(MockNotifier), new(MockPublisher), clock, nopLogger())
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, result.AlreadyPurchased)
	assert.Equal(t, "TRK123", result.Label.TrackingNumber)
	provider.AssertNotCalled(t, "BuyLabel", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestBuyLabelCommandHandler_Handle_DifferentRateAfterPurchase(t *testing.T) {
	ctx := t.Context()
	s := purchasedShipment(t)
	cmd, err := commands.NewBuyLabelCommand(s.ID(), "rate_other")
	require.NoError(t, err)

	repo := new(MockShipmentRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("ShipmentRepository").Return(repo)
	uow.On("Rollback", ctx).Return(nil)
	repo.On("GetForUpdate", ctx, s.ID()).Return(s, nil)
	factory := new(MockShipmentUoWFactory)
	factory.On("Create").Return(uow)

	handler := commands.NewBuyLabelCommandHandler(factory, new(MockProvider), new(MockNotifier), new(MockPublisher), clock, nopLogger())
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrConflict)
}

func TestBuyLabelCommandHandler_Handle_ProviderError(t *testing.T) {
	ctx := t.Context()
	s := ratedShipment(t)
	cmd, err := commands.NewBuyLabelCommand(s.ID(), "rate_1")
	require.NoError(t, err)

	repo := new(MockShipmentRepository)
	uow := new(MockUoW)
	provider := new(MockProvider)
	upstream := errs.NewProviderError("mock", "buy label", "insufficient postage balance")

	uow.On("Begin", ctx).Return(nil)
	uow.On("ShipmentRepository").Return(repo)
	uow.On("Rollback", ctx).Return(nil)
	repo.On("GetForUpdate", ctx, s.ID()).Return(s, nil)
	provider.On("BuyLabel", ctx, "shp_1", "rate_1").Return(shipment.Label{}, upstream).Once()
	factory := new(MockShipmentUoWFactory)
	factory.On("Create").Return(uow)

	handler := commands.NewBuyLabelCommandHandler(factory, provider, new(MockNotifier), new(MockPublisher), clock, nopLogger())
	_, err = handler.Handle(ctx, cmd)

	var perr *errs.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "insufficient postage balance", perr.Message)
	assert.Equal(t, shipment.Rated, s.Status())
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestBuyLabelCommandHandler_Handle_UnusableLabelIsLogged(t *testing.T) {
	ctx := t.Context()
	s := ratedShipment(t)
	cmd, err := commands.NewBuyLabelCommand(s.ID(), "rate_1")
	require.NoError(t, err)

	repo := new(MockShipmentRepository)
	uow := new(MockUoW)
	provider := new(MockProvider)

	uow.On("Begin", ctx).Return(nil)
	uow.On("ShipmentRepository").Return(repo)
	uow.On("Rollback", ctx).Return(nil)
	repo.On("GetForUpdate", ctx, s.ID()).Return(s, nil)
	provider.On("BuyLabel", ctx, "shp_1", "rate_1").Return(shipment.Label{URL: "https://labels.example/x.pdf"}, nil).Once()
	factory := new(MockShipmentUoWFactory)
	factory.On("Create").Return(uow)

	core, logs := observer.New(zap.ErrorLevel)
	handler := commands.NewBuyLabelCommandHandler(factory, provider, new(MockNotifier), new(MockPublisher), clock, zap.New(core))
	_, err = handler.Handle(ctx, cmd)

	var perr *errs.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "mock", perr.Provider)
	assert.Equal(t, shipment.Rated, s.Status())
	entries := logs.FilterMessage("purchased label not stored").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "https://labels.example/x.pdf", entries[0].ContextMap()["label_url"])
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestBuyLabelCommandHandler_Handle_Rejections(t *testing.T) {
	ctx := t.Context()

	cancelled := ratedShipment(t)
	require.NoError(t, cancelled.Cancel("test", fixedNow))

	tests := map[string]struct {
		shipment *shipment.Shipment
		rateID   string
		repoErr  error
		want     error
	}{
		"cancelled shipment": {shipment: cancelled, rateID: "rate_1", want: errs.ErrConflict},
		"unknown rate":       {shipment: ratedShipment(t), rateID: "rate_x", want: errs.ErrObjectNotFound},
		"unknown shipment":   {rateID: "rate_1", repoErr: errs.NewObjectNotFoundError("shipment", "x"), want: errs.ErrObjectNotFound},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			id := kernel.NewUUID()
			if tt.shipment != nil {
				id = tt.shipment.ID()
			}
			cmd, err := commands.NewBuyLabelCommand(id, tt.rateID)
			require.NoError(t, err)

			repo := new(MockShipmentRepository)
			uow := new(MockUoW)
			provider := new(MockProvider)
			uow.On("Begin", ctx).Return(nil)
			uow.On("ShipmentRepository").Return(repo)
			uow.On("Rollback", ctx).Return(nil)
			if tt.repoErr != nil {
				repo.On("GetForUpdate", ctx, id).Return(nil, tt.repoErr)
			} else {
				repo.On("GetForUpdate", ctx, id).Return(tt.shipment, nil)
			}
			factory := new(MockShipmentUoWFactory)
			factory.On("Create").Return(uow)

			handler := commands.NewBuyLabelCommandHandler(factory, provider, new(MockNotifier), new(MockPublisher), clock, nopLogger())
			_, err = handler.Handle(ctx, cmd)

			require.ErrorIs(t, err, tt.want)
			provider.AssertNotCalled(t, "BuyLabel", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestBuyLabelCommandHandler_Handle_NotificationFailureKeepsPurchase(t *testing.T) {
	ctx := t.Context()
	s := ratedShipment(t)
	store := newMemoryShipments(s)
	provider := new(MockProvider)
	notifier := new(MockNotifier)
	publisher := new(MockPublisher)

	provider.On("BuyLabel", ctx, "shp_1", "rate_1").Return(testLabel(), nil).Once()
	notifier.On("LabelReady", ctx, mock.Anything).Return(errors.New("queue unavailable")).Once()
	publisher.On("PublishStatusChange", ctx, mock.Anything).Return(errors.New("redis down")).Once()

	cmd, err := commands.NewBuyLabelCommand(s.ID(), "rate_1")
	require.NoError(t, err)
	handler := commands.NewBuyLabelCommandHandler(store, provider, notifier, publisher, clock, nopLogger())

	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, "TRK123", result.Label.TrackingNumber)
	stored, err := store.Get(ctx, s.ID())
	require.NoError(t, err)
	assert.Equal(t, shipment.LabelPurchased, stored.Status())
}

func TestBuyLabelCommandHandler_Handle_ConcurrentCallsBuyOnce(t *testing.T) {
	ctx := t.Context()
	s := ratedShipment(t)
	store := newMemoryShipments(s)
	provider := new(MockProvider)
	notifier := new(MockNotifier)
	publisher := new(MockPublisher)

	provider.On("BuyLabel", mock.Anything, "shp_1", "rate_1").Return(testLabel(), nil).Once()
	notifier.On("LabelReady", mock.Anything, mock.Anything).Return(nil)
	publisher.On("PublishStatusChange", mock.Anything, mock.Anything).Return(nil)

	cmd, err := commands.NewBuyLabelCommand(s.ID(), "rate_1")
	require.NoError(t, err)
	handler := commands.NewBuyLabelCommandHandler(store, provider, notifier, publisher, clock, nopLogger())

	const callers = 8
	results := make([]commands.BuyLabelResult, callers)
	errList := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errList[i] = handler.Handle(ctx, cmd)
		}()
	}
	wg.Wait()

	purchased := 0
	for i := range callers {
		require.NoError(t, errList[i])
		assert.Equal(t, "TRK123", results[i].Label.TrackingNumber)
		if !results[i].AlreadyPurchased {
			purchased++
		}
	}
	assert.Equal(t, 1, purchased)
	provider.AssertNumberOfCalls(t, "BuyLabel", 1)
}
