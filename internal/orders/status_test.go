package orders

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusShipped},
		{StatusConfirmed, StatusCancelled},
		{StatusShipped, StatusDelivered},
	}
	for _, tc := range legal {
		require.True(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	illegal := []struct{ from, to Status }{
		{StatusShipped, StatusCancelled},
		{StatusDelivered, StatusCancelled},
		{StatusPending, StatusShipped},
		{StatusPending, StatusDelivered},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusConfirmed},
		{StatusDelivered, StatusPending},
		{StatusConfirmed, StatusPending},
		{StatusPending, StatusPending},
	}
	for _, tc := range illegal {
		require.False(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTransitionLeavesStateOnError(t *testing.T) {
	got, err := Transition(StatusShipped, StatusCancelled)
	require.Equal(t, StatusShipped, got)

	var te *InvalidTransitionError
	require.ErrorAs(t, err, &te)
	require.Equal(t, StatusShipped, te.From)
	require.Equal(t, StatusCancelled, te.To)
}

func TestValidStatus(t *testing.T) {
	require.True(t, ValidStatus(StatusPending))
	require.True(t, ValidStatus(StatusCancelled))
	require.False(t, ValidStatus(Status("RETURNED")))
	require.False(t, ValidStatus(Status("")))
}
