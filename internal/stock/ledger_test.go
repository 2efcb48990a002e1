package stock

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReserveDecrementsAll(t *testing.T) {
	l := NewMemory(map[string]int{"collar": 5, "dije": 5})

	err := l.Reserve(context.Background(), "ORD-000001", []Delta{
		{SKU: "collar", Qty: 2},
		{SKU: "dije", Qty: 2},
	})
	require.NoError(t, err)
	require.Equal(t, 3, l.Available("collar"))
	require.Equal(t, 3, l.Available("dije"))
}

func TestReserveAllOrNothing(t *testing.T) {
	l := NewMemory(map[string]int{"collar": 5, "dije": 3})

	err := l.Reserve(context.Background(), "ORD-000001", []Delta{
		{SKU: "collar", Qty: 2},
		{SKU: "dije", Qty: 5}, // short
	})
	var short *InsufficientStockError
	require.ErrorAs(t, err, &short)
	require.Equal(t, "dije", short.SKU)
	require.Equal(t, 5, short.Requested)
	require.Equal(t, 3, short.Available)

	// nothing anywhere was decremented
	require.Equal(t, 5, l.Available("collar"))
	require.Equal(t, 3, l.Available("dije"))
}

func TestReserveReportsFirstShortSKUInOrder(t *testing.T) {
	l := NewMemory(map[string]int{"aaa": 0, "zzz": 0})

	err := l.Reserve(context.Background(), "ORD-000001", []Delta{
		{SKU: "zzz", Qty: 1},
		{SKU: "aaa", Qty: 1},
	})
	var short *InsufficientStockError
	require.ErrorAs(t, err, &short)
	require.Equal(t, "aaa", short.SKU) // checked in ascending SKU order
}

func TestReserveUnknownSKU(t *testing.T) {
	l := NewMemory(map[string]int{"collar": 5})

	err := l.Reserve(context.Background(), "ORD-000001", []Delta{{SKU: "anillo", Qty: 1}})
	var short *InsufficientStockError
	require.ErrorAs(t, err, &short)
	require.Equal(t, 0, short.Available)
}

func TestRestoreIsIdempotentPerOrder(t *testing.T) {
	l := NewMemory(map[string]int{"collar": 5})
	ctx := context.Background()

	require.NoError(t, l.Reserve(ctx, "ORD-000001", []Delta{{SKU: "collar", Qty: 3}}))
	require.Equal(t, 2, l.Available("collar"))

	ds, err := l.Restore(ctx, "ORD-000001")
	require.NoError(t, err)
	require.Equal(t, []Delta{{SKU: "collar", Qty: 3}}, ds)
	require.Equal(t, 5, l.Available("collar"))

	// second restore must not double-credit
	ds, err = l.Restore(ctx, "ORD-000001")
	require.NoError(t, err)
	require.Empty(t, ds)
	require.Equal(t, 5, l.Available("collar"))
}

func TestRestoreWithoutReservationIsNoop(t *testing.T) {
	l := NewMemory(map[string]int{"collar": 5})
	ds, err := l.Restore(context.Background(), "ORD-000099")
	require.NoError(t, err)
	require.Empty(t, ds)
	require.Equal(t, 5, l.Available("collar"))
}

func TestReserveIdempotentForSameOrder(t *testing.T) {
	l := NewMemory(map[string]int{"collar": 5})
	ctx := context.Background()
	ds := []Delta{{SKU: "collar", Qty: 2}}

	require.NoError(t, l.Reserve(ctx, "ORD-000001", ds))
	require.NoError(t, l.Reserve(ctx, "ORD-000001", ds)) // replay
	require.Equal(t, 3, l.Available("collar"))
}

func TestReserveEmptyDeltasRejected(t *testing.T) {
	l := NewMemory(map[string]int{"collar": 5})
	err := l.Reserve(context.Background(), "ORD-000001", nil)
	require.Error(t, err)
	require.Equal(t, 5, l.Available("collar"))
}

func TestReserveAfterRestoreCanRestoreAgain(t *testing.T) {
	l := NewMemory(map[string]int{"collar": 5})
	ctx := context.Background()

	require.NoError(t, l.Reserve(ctx, "ORD-000001", []Delta{{SKU: "collar", Qty: 2}}))
	_, err := l.Restore(ctx, "ORD-000001")
	require.NoError(t, err)
	require.Equal(t, 5, l.Available("collar"))

	// a fresh hold under the same order must be restorable again
	require.NoError(t, l.Reserve(ctx, "ORD-000001", []Delta{{SKU: "collar", Qty: 1}}))
	require.Equal(t, 4, l.Available("collar"))

	ds, err := l.Restore(ctx, "ORD-000001")
	require.NoError(t, err)
	require.Equal(t, []Delta{{SKU: "collar", Qty: 1}}, ds)
	require.Equal(t, 5, l.Available("collar"))
}

func TestConcurrentReservesNeverOversell(t *testing.T) {
	const stock = 30
	l := NewMemory(map[string]int{"collar": stock})
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			err := l.Reserve(ctx, fmt.Sprintf("ORD-%06d", n), []Delta{{SKU: "collar", Qty: 1}})
			if err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, stock, granted)
	require.Equal(t, 0, l.Available("collar"))
}

func TestConcurrentReserveAndRestoreDisjointSKUs(t *testing.T) {
	l := NewMemory(map[string]int{"collar": 10, "dije": 10})
	ctx := context.Background()
	require.NoError(t, l.Reserve(ctx, "ORD-000001", []Delta{{SKU: "collar", Qty: 4}}))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = l.Restore(ctx, "ORD-000001")
	}()
	go func() {
		defer wg.Done()
		_ = l.Reserve(ctx, "ORD-000002", []Delta{{SKU: "dije", Qty: 4}})
	}()
	wg.Wait()

	require.Equal(t, 10, l.Available("collar"))
	require.Equal(t, 6, l.Available("dije"))
}
