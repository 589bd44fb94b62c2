package commands_test

import (
	"testing"

	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/shipment"
	"shipping/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCancelShipmentCommandHandler_Handle(t *testing.T) {
	ctx := t.Context()
	s := ratedShipment(t)
	repo := new(MockShipmentRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("ShipmentRepository").Return(repo).Once(),
		repo.On("GetForUpdate", ctx, s.ID()).Return(s, nil).Once(),
		repo.On("Update", ctx, s).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockShipmentUoWFactory)
	factory.On("Create").Return(uow).Once()

	cmd, err := commands.NewCancelShipmentCommand(s.ID(), " customer changed mind ", "ops@example.com")
	require.NoError(t, err)

	handler := commands.NewCancelShipmentCommandHandler(factory, clock, nopLogger())
	got, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, shipment.Cancelled, got.Status())
	last := got.Activity()[len(got.Activity())-1]
	assert.Equal(t, shipment.ActivityCancelled, last.Type())
	assert.Equal(t, "ops@example.com: customer changed mind", last.Payload()["reason"])
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestCancelShipmentCommandHandler_Handle_LabelPurchased(t *testing.T) {
	ctx := t.Context()
	s := purchasedShipment(t)
	repo := new(MockShipmentRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil)
	uow.On("ShipmentRepository").Return(repo)
	uow.On("Rollback", ctx).Return(nil)
	repo.On("GetForUpdate", ctx, s.ID()).Return(s, nil)
	factory := new(MockShipmentUoWFactory)
	factory.On("Create").Return(uow)

	cmd, err := commands.NewCancelShipmentCommand(s.ID(), "", "")
	require.NoError(t, err)

	handler := commands.NewCancelShipmentCommandHandler(factory, clock, nopLogger())
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrConflict)
	assert.Equal(t, shipment.LabelPurchased, s.Status())
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestNewCancelShipmentCommand_InvalidID(t *testing.T) {
	_, err := commands.NewCancelShipmentCommand(kernel.UUID{}, "x", "y")

	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}
