package trade

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func fill(clock string, price, qty, commission float64, side Side) Fill {
	return Fill{
		Date:       day,
		Time:       MustTimeOfDay(clock),
		Price:      price,
		Quantity:   qty,
		Commission: commission,
		Side:       side,
	}
}

func TestAddFillLongRoundTrip(t *testing.T) {
	t.Parallel()

	tr := New("T1", "AAPL", Long)
	require.NoError(t, AddFill(tr, fill("14:30:00", 10, 100, 1, Long)))
	assert.False(t, tr.Closed())
	assert.True(t, tr.ExitDate.IsZero())

	require.NoError(t, AddFill(tr, fill("15:00:00", 12, 100, 1, Short)))
	assert.InDelta(t, 198.0, tr.RealizedPnL, 1e-9)
	assert.InDelta(t, 2.0, tr.Commission, 1e-9)
	assert.True(t, tr.Closed())
	assert.Equal(t, day, tr.ExitDate)
	require.NotNil(t, tr.ExitTime)
	assert.Equal(t, "15:00:00", tr.ExitTime.String())
	assert.Len(t, tr.Fills, 2)
	assert.Equal(t, "T1", tr.Fills[0].TradeID)
}

func TestAddFillShortRoundTrip(t *testing.T) {
	t.Parallel()

	tr := New("T2", "TSLA", Short)
	require.NoError(t, AddFill(tr, fill("10:00:00", 50, 10, 0.5, Short)))
	require.NoError(t, AddFill(tr, fill("10:05:00", 45, 10, 0.5, Long)))

	assert.InDelta(t, 49.0, tr.RealizedPnL, 1e-9)
	assert.True(t, tr.Closed())
}

func TestAddFillWeightedAverage(t *testing.T) {
	t.Parallel()

	tr := New("T3", "AAPL", Long)
	fills := []Fill{
		fill("09:31:00", 10, 100, 0, Long),
		fill("09:32:00", 11, 50, 0, Long),
		fill("09:33:00", 9.5, 25, 0, Long),
	}
	var notional, qty float64
	for _, f := range fills {
		require.NoError(t, AddFill(tr, f))
		notional += f.Price * f.Quantity
		qty += f.Quantity
		assert.InDelta(t, notional/qty, tr.EntryPrice, 1e-9)
	}
	assert.InDelta(t, 175.0, tr.EntryQuantity, 1e-9)
	assert.False(t, tr.HasExit())
	assert.Equal(t, 0.0, tr.RealizedPnL)
}

func TestAddFillPartialExits(t *testing.T) {
	t.Parallel()

	tr := New("T4", "AAPL", Long)
	require.NoError(t, AddFill(tr, fill("09:31", 10, 100, 1, Long)))
	require.NoError(t, AddFill(tr, fill("09:40", 12, 40, 1, Short)))

	// (12 - 10) * 40 - 2
	assert.InDelta(t, 78.0, tr.RealizedPnL, 1e-9)
	assert.True(t, tr.Open())
	assert.InDelta(t, 60.0, tr.OpenQuantity(), 1e-9)

	require.NoError(t, AddFill(tr, fill("09:50", 14, 60, 1, Short)))
	// exit avg = (12*40 + 14*60) / 100 = 13.2
	assert.InDelta(t, 13.2, tr.ExitPrice, 1e-9)
	assert.InDelta(t, 317.0, tr.RealizedPnL, 1e-9)
	assert.True(t, tr.Closed())
	assert.Equal(t, "09:50:00", tr.ExitTime.String())
}

func TestAddFillScaleInAfterExitRecomputesPnL(t *testing.T) {
	t.Parallel()

	tr := New("T5", "AAPL", Long)
	require.NoError(t, AddFill(tr, fill("09:31", 10, 100, 0, Long)))
	require.NoError(t, AddFill(tr, fill("09:32", 12, 50, 0, Short)))
	require.NoError(t, AddFill(tr, fill("09:33", 13, 100, 0, Long)))

	// entry avg = 11.5, exit 12 on 50 units
	assert.InDelta(t, 11.5, tr.EntryPrice, 1e-9)
	assert.InDelta(t, 25.0, tr.RealizedPnL, 1e-9)
}

func TestClosureNeverReverts(t *testing.T) {
	t.Parallel()

	tr := New("T6", "AAPL", Long)
	require.NoError(t, AddFill(tr, fill("09:31", 10, 10, 0, Long)))
	require.NoError(t, AddFill(tr, fill("09:35", 11, 10, 0, Short)))
	require.True(t, tr.Closed())
	exitDate := tr.ExitDate

	require.NoError(t, AddFill(tr, fill("09:40", 10.5, 5, 0, Long)))
	assert.False(t, tr.Closed())
	assert.Equal(t, exitDate, tr.ExitDate)
	assert.NotNil(t, tr.ExitTime)
}

func TestPnLSignSymmetry(t *testing.T) {
	t.Parallel()

	long := New("L", "X", Long)
	require.NoError(t, AddFill(long, fill("09:31", 20, 30, 0, Long)))
	require.NoError(t, AddFill(long, fill("09:45", 23, 30, 0, Short)))

	short := New("S", "X", Short)
	require.NoError(t, AddFill(short, fill("09:31", 20, 30, 0, Short)))
	require.NoError(t, AddFill(short, fill("09:45", 23, 30, 0, Long)))

	assert.InDelta(t, long.RealizedPnL, -short.RealizedPnL, 1e-9)

	longC := New("LC", "X", Long)
	require.NoError(t, AddFill(longC, fill("09:31", 20, 30, 1.5, Long)))
	require.NoError(t, AddFill(longC, fill("09:45", 23, 30, 1.5, Short)))
	shortC := New("SC", "X", Short)
	require.NoError(t, AddFill(shortC, fill("09:31", 20, 30, 1.5, Short)))
	require.NoError(t, AddFill(shortC, fill("09:45", 23, 30, 1.5, Long)))

	assert.InDelta(t, long.RealizedPnL-3, longC.RealizedPnL, 1e-9)
	assert.InDelta(t, short.RealizedPnL-3, shortC.RealizedPnL, 1e-9)
}

func TestAddFillSetsEntryOnFirstFill(t *testing.T) {
	t.Parallel()

	tr := New("T7", "AAPL", Long)
	f := fill("13:05", 10, 1, 0, Long)
	f.Date = day.Add(15 * time.Hour)
	require.NoError(t, AddFill(tr, f))
	assert.Equal(t, day, tr.EntryDate)
	assert.Equal(t, "13:05:00", tr.EntryTime.String())

	at, ok := tr.EntryAt()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 10, 13, 5, 0, 0, time.UTC), at)
}

func TestAddFillRejectsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		fill  Fill
		field string
	}{
		{"zero price", fill("09:31", 0, 1, 0, Long), "price"},
		{"negative price", fill("09:31", -1, 1, 0, Long), "price"},
		{"zero quantity", fill("09:31", 10, 0, 0, Long), "quantity"},
		{"negative quantity", fill("09:31", 10, -5, 0, Long), "quantity"},
		{"negative commission", fill("09:31", 10, 1, -1, Long), "commission"},
		{"bad side", fill("09:31", 10, 1, 0, Side("FLAT")), "side"},
		{"missing date", Fill{Price: 1, Quantity: 1, Side: Long}, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New("T", "AAPL", Long)
			err := AddFill(tr, tt.fill)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidFill))

			var fe *InvalidFillError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
			assert.Empty(t, tr.Fills)
			assert.Equal(t, 0.0, tr.EntryQuantity)
		})
	}
}

func TestAddFillRejectsOverClose(t *testing.T) {
	t.Parallel()

	tr := New("T8", "AAPL", Long)
	err := AddFill(tr, fill("09:31", 10, 1, 0, Short))
	assert.ErrorIs(t, err, ErrInvalidFill)

	require.NoError(t, AddFill(tr, fill("09:31", 10, 5, 0, Long)))
	err = AddFill(tr, fill("09:32", 10, 6, 0, Short))
	assert.ErrorIs(t, err, ErrInvalidFill)
	assert.Len(t, tr.Fills, 1)
	assert.Equal(t, 0.0, tr.ExitQuantity)
}

func TestLocksSerialiseFills(t *testing.T) {
	t.Parallel()

	var locks Locks
	tr := New("T9", "AAPL", Long)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, locks.AddFill(tr, fill("09:31", 10, 1, 0.1, Long)))
		}()
	}
	wg.Wait()

	assert.InDelta(t, 50.0, tr.EntryQuantity, 1e-9)
	assert.InDelta(t, 5.0, tr.Commission, 1e-9)
	assert.Len(t, tr.Fills, 50)
	assert.Equal(t, 0, locks.size())
}
