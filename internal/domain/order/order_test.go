package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"pending", "confirmed", "preparing", "shipped", "delivered", "cancelled"} {
		status, err := ParseStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, Status(valid), status)
	}

	for _, invalid := range []string{"", "Pending", "refunded", "done"} {
		_, err := ParseStatus(invalid)
		assert.ErrorIs(t, err, ErrUnknownStatus, "ParseStatus(%q)", invalid)
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusPreparing, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusPreparing, StatusShipped, true},
		{StatusPreparing, StatusCancelled, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, true},

		// No skipping ahead
		{StatusPending, StatusPreparing, false},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusConfirmed, StatusShipped, false},
		{StatusConfirmed, StatusDelivered, false},
		{StatusPreparing, StatusDelivered, false},

		// No going back
		{StatusConfirmed, StatusPending, false},
		{StatusShipped, StatusPreparing, false},
		{StatusDelivered, StatusShipped, false},

		// Terminal states allow nothing
		{StatusDelivered, StatusCancelled, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusDelivered, false},

		// Self-transitions are not allowed
		{StatusPending, StatusPending, false},
		{StatusShipped, StatusShipped, false},
	}

	for _, tt := range tests {
		got := tt.from.CanTransitionTo(tt.to)
		assert.Equal(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusConfirmed.Terminal())
	assert.False(t, StatusPreparing.Terminal())
	assert.False(t, StatusShipped.Terminal())
}

func TestTransitionError(t *testing.T) {
	delivered := &Order{Status: StatusDelivered}
	assert.ErrorIs(t, delivered.transitionError(StatusCancelled), ErrOrderDelivered)

	cancelled := &Order{Status: StatusCancelled}
	assert.ErrorIs(t, cancelled.transitionError(StatusConfirmed), ErrOrderCancelled)

	pending := &Order{Status: StatusPending}
	assert.ErrorIs(t, pending.transitionError(StatusShipped), ErrInvalidTransition)
}
