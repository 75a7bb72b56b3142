package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/market"
	"github.com/rustyeddy/tradejournal/trade"
)

func roundTrip(t *testing.T, side trade.Side, entryDay, exitDay time.Time, entryClock, exitClock string) *trade.Trade {
	t.Helper()
	tr := trade.New("X", "AAPL", side)
	require.NoError(t, trade.AddFill(tr, trade.Fill{
		Date: entryDay, Time: trade.MustTimeOfDay(entryClock), Price: 10, Quantity: 100, Side: side,
	}))
	require.NoError(t, trade.AddFill(tr, trade.Fill{
		Date: exitDay, Time: trade.MustTimeOfDay(exitClock), Price: 11, Quantity: 100, Side: side.Opposite(),
	}))
	return tr
}

func candleAt(day time.Time, clock string, close float64) market.Candle {
	return market.Candle{Symbol: "AAPL", Timeframe: market.M1, Time: trade.MustTimeOfDay(clock).On(day), Close: close}
}

func TestExcursion(t *testing.T) {
	t.Parallel()

	next := monday.AddDate(0, 0, 1)
	candles := []market.Candle{
		candleAt(monday.AddDate(0, 0, -1), "15:00", 1),
		candleAt(monday, "09:00", 1),
		candleAt(monday, "09:45", 9.5),
		candleAt(monday, "15:00", 12),
		candleAt(next, "10:00", 11),
		candleAt(next, "10:30", 30),
		candleAt(next.AddDate(0, 0, 1), "10:00", 30),
	}

	long := roundTrip(t, trade.Long, monday, next, "09:30", "10:00")
	mae, mfe := Excursion(long, candles, LiteralExcursion)
	assert.InDelta(t, 0.5, mae, 1e-9)
	assert.InDelta(t, 2.0, mfe, 1e-9)

	short := roundTrip(t, trade.Short, monday, next, "09:30", "10:00")
	mae, mfe = Excursion(short, candles, LiteralExcursion)
	assert.InDelta(t, 0.5, mae, 1e-9)
	assert.InDelta(t, 2.0, mfe, 1e-9)

	mae, mfe = Excursion(short, candles, SideAwareExcursion)
	assert.InDelta(t, 2.0, mae, 1e-9)
	assert.InDelta(t, 0.5, mfe, 1e-9)
}

func TestExcursionIgnoresCandlesOutsideTheTrade(t *testing.T) {
	t.Parallel()

	tr := trade.New("I", "AAPL", trade.Long)
	require.NoError(t, trade.AddFill(tr, trade.Fill{
		Date: monday, Time: trade.MustTimeOfDay("10:00"), Price: 100, Quantity: 10, Side: trade.Long,
	}))
	require.NoError(t, trade.AddFill(tr, trade.Fill{
		Date: monday, Time: trade.MustTimeOfDay("10:05"), Price: 101, Quantity: 10, Side: trade.Short,
	}))
	candles := []market.Candle{
		candleAt(monday, "09:00", 80),
		candleAt(monday, "10:02", 99),
		candleAt(monday, "10:04", 102),
		candleAt(monday, "15:00", 130),
	}

	mae, mfe := Excursion(tr, candles, LiteralExcursion)
	assert.InDelta(t, 1.0, mae, 1e-9)
	assert.InDelta(t, 2.0, mfe, 1e-9)
}

func TestExcursionWindow(t *testing.T) {
	t.Parallel()

	closed := roundTrip(t, trade.Long, monday, monday, "09:30", "10:45")
	from, to, ok := ExcursionWindow(closed)
	require.True(t, ok)
	assert.Equal(t, trade.MustTimeOfDay("09:30").On(monday), from)
	assert.Equal(t, trade.MustTimeOfDay("10:45").On(monday), to)

	partial := trade.New("P", "AAPL", trade.Long)
	require.NoError(t, trade.AddFill(partial, trade.Fill{
		Date: monday, Time: trade.MustTimeOfDay("09:30"), Price: 10, Quantity: 100, Side: trade.Long,
	}))
	require.NoError(t, trade.AddFill(partial, trade.Fill{
		Date: monday, Time: trade.MustTimeOfDay("11:00"), Price: 11, Quantity: 40, Side: trade.Short,
	}))
	_, to, ok = ExcursionWindow(partial)
	require.True(t, ok)
	assert.Equal(t, trade.MustTimeOfDay("11:00").On(monday), to)

	datesOnly := &trade.Trade{
		Side: trade.Long, EntryDate: monday, ExitDate: monday.AddDate(0, 0, 1),
		EntryQuantity: 1, ExitQuantity: 1,
	}
	from, to, ok = ExcursionWindow(datesOnly)
	require.True(t, ok)
	assert.Equal(t, monday, from)
	assert.Equal(t, monday.AddDate(0, 0, 2).Add(-time.Nanosecond), to)

	_, _, ok = ExcursionWindow(trade.New("E", "AAPL", trade.Long))
	assert.False(t, ok)
}

func TestExcursionWithoutData(t *testing.T) {
	t.Parallel()

	tr := roundTrip(t, trade.Long, monday, monday, "09:30", "10:00")
	mae, mfe := Excursion(tr, nil, LiteralExcursion)
	assert.Zero(t, mae)
	assert.Zero(t, mfe)

	open := trade.New("O", "AAPL", trade.Long)
	require.NoError(t, trade.AddFill(open, trade.Fill{
		Date: monday, Time: trade.MustTimeOfDay("09:30"), Price: 10, Quantity: 1, Side: trade.Long,
	}))
	mae, mfe = Excursion(open, []market.Candle{candleAt(monday, "10:00", 12)}, LiteralExcursion)
	assert.Zero(t, mae)
	assert.Zero(t, mfe)
}

func TestParseExcursionMode(t *testing.T) {
	t.Parallel()

	m, ok := ParseExcursionMode("")
	assert.True(t, ok)
	assert.Equal(t, LiteralExcursion, m)
	m, ok = ParseExcursionMode("side_aware")
	assert.True(t, ok)
	assert.Equal(t, SideAwareExcursion, m)
	_, ok = ParseExcursionMode("reversed")
	assert.False(t, ok)
}

func TestHoldTime(t *testing.T) {
	t.Parallel()

	intraday := roundTrip(t, trade.Long, monday, monday, "09:30", "10:45")
	assert.Equal(t, 75.0, HoldTime(intraday))

	overnight := roundTrip(t, trade.Long, monday, monday.AddDate(0, 0, 1), "15:30", "09:30")
	assert.Equal(t, 18.0*60, HoldTime(overnight))

	datesOnly := &trade.Trade{EntryDate: monday, ExitDate: monday.AddDate(0, 0, 2)}
	assert.Equal(t, 2880.0, HoldTime(datesOnly))

	assert.Equal(t, 0.0, HoldTime(&trade.Trade{EntryDate: monday}))
	assert.Equal(t, 0.0, HoldTime(nil))

	s := Summarize(intraday)
	assert.Equal(t, 75.0, s.HoldMinutes)
	assert.InDelta(t, 100.0, s.ProfitLoss, 1e-9)
	assert.Equal(t, trade.MustTimeOfDay("09:30").On(monday), s.EntryAt)
}
