package equity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rustyeddy/tradejournal/market"
	"github.com/rustyeddy/tradejournal/trade"
)

var day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func at(clock string) time.Time { return trade.MustTimeOfDay(clock).On(day) }

func fill(clock string, price, qty, commission float64, side trade.Side) trade.Fill {
	return trade.Fill{
		Date:       day,
		Time:       trade.MustTimeOfDay(clock),
		Price:      price,
		Quantity:   qty,
		Commission: commission,
		Side:       side,
	}
}

func newTrade(t *testing.T, side trade.Side, fills ...trade.Fill) *trade.Trade {
	t.Helper()
	tr := trade.New("T1", "AAPL", side)
	for _, f := range fills {
		require.NoError(t, trade.AddFill(tr, f))
	}
	return tr
}

func series(closes map[string]float64) *market.Series {
	var cs []market.Candle
	for clock, c := range closes {
		cs = append(cs, market.Candle{Symbol: "AAPL", Timeframe: market.M1, Time: at(clock), Close: c})
	}
	return market.NewSeries("AAPL", market.M1, cs)
}

func TestBuildLongRoundTrip(t *testing.T) {
	t.Parallel()

	tr := newTrade(t, trade.Long,
		fill("14:30", 10, 100, 1, trade.Long),
		fill("14:33", 12, 100, 1, trade.Short),
	)
	s := series(map[string]float64{
		"14:29": 9.9, "14:30": 10, "14:31": 11, "14:32": 11.5, "14:33": 12,
	})

	pts := NewBuilder(nil).Build(tr, s, 0)
	require.Len(t, pts, 6)
	assert.Equal(t, at("14:29"), pts[0].Time)
	assert.Equal(t, at("14:34"), pts[5].Time)

	first := pts[0]
	assert.Equal(t, 0.0, first.RealizedPnL)
	assert.Equal(t, 0.0, first.PositionSize)
	assert.Equal(t, 0.0, first.PositionValue)

	entry := pts[1]
	assert.InDelta(t, -1001.0, entry.CashBalance, 1e-9)
	assert.InDelta(t, 100.0, entry.PositionSize, 1e-9)
	assert.InDelta(t, 10.0, entry.AvgPrice, 1e-9)
	assert.InDelta(t, 1000.0, entry.PositionValue, 1e-9)
	assert.InDelta(t, -1.0, entry.TotalPnL, 1e-9)
	assert.InDelta(t, 1.0, entry.Commission, 1e-9)

	mid := pts[2]
	require.NotNil(t, mid.CurrentPrice)
	assert.Equal(t, 11.0, *mid.CurrentPrice)
	assert.InDelta(t, 100.0, mid.UnrealizedPnL, 1e-9)
	assert.InDelta(t, 99.0, mid.TotalPnL, 1e-9)

	last := pts[len(pts)-1]
	assert.InDelta(t, tr.RealizedPnL, last.TotalPnL, 1e-9)
	assert.InDelta(t, 198.0, last.RealizedPnL, 1e-9)
	assert.Equal(t, 0.0, last.PositionSize)
	assert.Equal(t, 0.0, last.AvgPrice)
	assert.InDelta(t, 2.0, last.Commission, 1e-9)
}

func TestBuildShortRoundTrip(t *testing.T) {
	t.Parallel()

	tr := newTrade(t, trade.Short,
		fill("10:00", 50, 10, 0.5, trade.Short),
		fill("10:02", 45, 10, 0.5, trade.Long),
	)
	s := series(map[string]float64{"10:00": 50, "10:01": 47, "10:02": 45})

	pts := NewBuilder(nil).Build(tr, s, 0)
	require.Len(t, pts, 5)

	mid := pts[2]
	assert.InDelta(t, 499.5, mid.CashBalance, 1e-9)
	assert.InDelta(t, (2*50-47)*10.0, mid.PositionValue, 1e-9)
	assert.InDelta(t, 30.0, mid.UnrealizedPnL, 1e-9)

	last := pts[len(pts)-1]
	assert.InDelta(t, 49.0, last.TotalPnL, 1e-9)
	assert.InDelta(t, tr.RealizedPnL, last.TotalPnL, 1e-9)
}

func TestBuildInitialBalance(t *testing.T) {
	t.Parallel()

	tr := newTrade(t, trade.Long,
		fill("14:30", 10, 100, 1, trade.Long),
		fill("14:31", 12, 100, 1, trade.Short),
	)
	pts := NewBuilder(nil).Build(tr, series(map[string]float64{"14:30": 10}), 5000)

	assert.Equal(t, 5000.0, pts[0].CashBalance)
	assert.Equal(t, 0.0, pts[0].RealizedPnL)
	last := pts[len(pts)-1]
	assert.InDelta(t, 5198.0, last.CashBalance, 1e-9)
	assert.InDelta(t, 198.0, last.TotalPnL, 1e-9)
}

func TestBuildScalesInAndOut(t *testing.T) {
	t.Parallel()

	tr := newTrade(t, trade.Long,
		fill("09:31", 10, 100, 0, trade.Long),
		fill("09:31:30", 11, 100, 0, trade.Long),
		fill("09:33", 12, 50, 0, trade.Short),
	)
	s := series(map[string]float64{"09:30": 10, "09:32": 11, "09:33": 12})
	pts := NewBuilder(nil).Build(tr, s, 0)

	// 09:30 .. 09:34 on whole minutes
	require.Len(t, pts, 5)
	assert.InDelta(t, 100.0, pts[1].PositionSize, 1e-9)
	assert.InDelta(t, 200.0, pts[2].PositionSize, 1e-9)
	assert.InDelta(t, 10.5, pts[2].AvgPrice, 1e-9)
	assert.InDelta(t, 150.0, pts[3].PositionSize, 1e-9)
	assert.InDelta(t, 10.5, pts[3].AvgPrice, 1e-9)
	assert.InDelta(t, 150*(12-10.5), pts[3].UnrealizedPnL, 1e-9)
}

func TestBuildWithoutCandlesFallsBackToAvgPrice(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	tr := newTrade(t, trade.Long,
		fill("14:30", 10, 100, 0, trade.Long),
		fill("14:32", 12, 100, 0, trade.Short),
	)

	pts := NewBuilder(zap.New(core)).Build(tr, nil, 0)
	require.Len(t, pts, 5)

	assert.Nil(t, pts[0].CurrentPrice)
	require.NotNil(t, pts[1].CurrentPrice)
	assert.Equal(t, 10.0, *pts[1].CurrentPrice)
	assert.Equal(t, 0.0, pts[1].UnrealizedPnL)
	assert.Nil(t, pts[4].CurrentPrice)
	assert.InDelta(t, 200.0, pts[4].TotalPnL, 1e-9)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "T1", logs.All()[0].ContextMap()["trade_id"])
}

func TestBuildEmptyTrade(t *testing.T) {
	t.Parallel()

	b := NewBuilder(nil)
	assert.Empty(t, b.Build(trade.New("E", "AAPL", trade.Long), series(nil), 0))
	assert.Empty(t, b.Build(nil, nil, 0))
}

func TestBuildUnsortedLedger(t *testing.T) {
	t.Parallel()

	tr := trade.New("U", "AAPL", trade.Long)
	tr.Fills = trade.Ledger{
		fill("14:35", 12, 10, 0, trade.Short),
		fill("14:30", 10, 10, 0, trade.Long),
	}
	pts := NewBuilder(nil).Build(tr, nil, 0)
	require.Len(t, pts, 8)
	assert.Equal(t, at("14:29"), pts[0].Time)
	assert.InDelta(t, 20.0, pts[7].TotalPnL, 1e-9)
}
