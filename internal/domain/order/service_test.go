package order_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/marketplace/internal/domain/order"
	"github.com/example/marketplace/internal/infrastructure/store/mocks"
)

func seedOrder(store *mocks.MockOrderStore, id string, status order.Status) *order.Order {
	o := &order.Order{
		ID:          id,
		UserID:      "buyer-1",
		Status:      status,
		TotalAmount: 500,
		CreatedAt:   time.Now().Add(-time.Hour),
		UpdatedAt:   time.Now().Add(-time.Hour),
	}
	store.Seed(o)
	return o
}

func TestUpdateStatusAdvancesSequentially(t *testing.T) {
	store := mocks.NewMockOrderStore()
	publisher := mocks.NewMockPublisher()
	svc := order.NewService(store, publisher)
	seedOrder(store, "order-1", order.StatusPending)

	ctx := context.Background()
	for _, target := range []order.Status{
		order.StatusConfirmed,
		order.StatusPreparing,
		order.StatusShipped,
		order.StatusDelivered,
	} {
		o, err := svc.UpdateStatus(ctx, "order-1", target)
		require.NoError(t, err)
		assert.Equal(t, target, o.Status)
	}

	assert.Len(t, publisher.PublishCalls, 4)
	for _, call := range publisher.PublishCalls {
		assert.Equal(t, "order-1", call.Key)
		assert.Equal(t, order.EventOrderStatusChanged, call.EventType)
	}
}

func TestUpdateStatusRejectsSkippingAhead(t *testing.T) {
	store := mocks.NewMockOrderStore()
	svc := order.NewService(store, nil)
	seedOrder(store, "order-1", order.StatusPending)

	_, err := svc.UpdateStatus(context.Background(), "order-1", order.StatusShipped)
	assert.ErrorIs(t, err, order.ErrInvalidTransition)

	// The store was never touched.
	assert.Empty(t, store.StatusCalls)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	store := mocks.NewMockOrderStore()
	svc := order.NewService(store, nil)
	seedOrder(store, "order-1", order.StatusPending)

	_, err := svc.UpdateStatus(context.Background(), "order-1", order.Status("refunded"))
	assert.ErrorIs(t, err, order.ErrUnknownStatus)
}

func TestUpdateStatusOrderNotFound(t *testing.T) {
	svc := order.NewService(mocks.NewMockOrderStore(), nil)

	_, err := svc.UpdateStatus(context.Background(), "missing", order.StatusConfirmed)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestUpdateStatusCancelFromAnyActiveState(t *testing.T) {
	for _, from := range []order.Status{
		order.StatusPending,
		order.StatusConfirmed,
		order.StatusPreparing,
		order.StatusShipped,
	} {
		store := mocks.NewMockOrderStore()
		svc := order.NewService(store, nil)
		seedOrder(store, "order-1", from)

		o, err := svc.UpdateStatus(context.Background(), "order-1", order.StatusCancelled)
		require.NoError(t, err, "cancel from %s", from)
		assert.Equal(t, order.StatusCancelled, o.Status)
		assert.Nil(t, o.DeliveredAt)
	}
}

func TestDeliveredSetsTimestampOnce(t *testing.T) {
	store := mocks.NewMockOrderStore()
	svc := order.NewService(store, nil)
	seedOrder(store, "order-1", order.StatusShipped)

	before := time.Now()
	o, err := svc.UpdateStatus(context.Background(), "order-1", order.StatusDelivered)
	require.NoError(t, err)
	require.NotNil(t, o.DeliveredAt)
	assert.False(t, o.DeliveredAt.Before(before))

	firstDelivered := *o.DeliveredAt

	// Delivered is terminal; any further change is rejected and the
	// timestamp survives untouched.
	_, err = svc.UpdateStatus(context.Background(), "order-1", order.StatusCancelled)
	assert.ErrorIs(t, err, order.ErrOrderDelivered)

	stored, err := store.Get(context.Background(), "order-1")
	require.NoError(t, err)
	require.NotNil(t, stored.DeliveredAt)
	assert.Equal(t, firstDelivered, *stored.DeliveredAt)
}

func TestUpdateStatusFromCancelledRejected(t *testing.T) {
	store := mocks.NewMockOrderStore()
	svc := order.NewService(store, nil)
	seedOrder(store, "order-1", order.StatusCancelled)

	_, err := svc.UpdateStatus(context.Background(), "order-1", order.StatusConfirmed)
	assert.ErrorIs(t, err, order.ErrOrderCancelled)
}

func TestUpdateStatusPublishFailureDoesNotFail(t *testing.T) {
	store := mocks.NewMockOrderStore()
	publisher := mocks.NewMockPublisher()
	publisher.PublishErr = assert.AnError
	svc := order.NewService(store, publisher)
	seedOrder(store, "order-1", order.StatusPending)

	o, err := svc.UpdateStatus(context.Background(), "order-1", order.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, o.Status)
}

func TestUpdateStatusStoreFailure(t *testing.T) {
	store := mocks.NewMockOrderStore()
	store.UpdateStatusErr = assert.AnError
	publisher := mocks.NewMockPublisher()
	svc := order.NewService(store, publisher)
	seedOrder(store, "order-1", order.StatusPending)

	_, err := svc.UpdateStatus(context.Background(), "order-1", order.StatusConfirmed)
	assert.Error(t, err)
	// No event goes out for a change that was not persisted.
	assert.Empty(t, publisher.PublishCalls)
}
