package equity

import (
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/market"
	"github.com/rustyeddy/tradejournal/trade"
)

// Step is the replay granularity. It matches the resolution of 1m candles.
const Step = time.Minute

// Point is one mark-to-market sample of a trade's equity.
// CurrentPrice is nil when no candle or average price was available.
type Point struct {
	Time          time.Time `json:"datetime"`
	Symbol        string    `json:"symbol"`
	Balance       float64   `json:"balance"`
	CashBalance   float64   `json:"cash_balance"`
	PositionValue float64   `json:"position_value"`
	PositionSize  float64   `json:"position_size"`
	AvgPrice      float64   `json:"avg_price"`
	CurrentPrice  *float64  `json:"current_price"`
	RealizedPnL   float64   `json:"realized_pnl"`
	UnrealizedPnL float64   `json:"unrealized_pnl"`
	TotalPnL      float64   `json:"total_pnl"`
	Commission    float64   `json:"commission"`
}

// Builder replays a trade's fills against a price series.
type Builder struct {
	log *zap.Logger
}

// NewBuilder returns a Builder that reports missing price data on log.
// A nil logger discards output.
func NewBuilder(log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{log: log}
}

// book is the running cash/position state during replay.
type book struct {
	side       trade.Side
	cash       float64
	position   float64
	avgPrice   float64
	commission float64
}

func (b *book) apply(f trade.Fill) {
	b.commission += f.Commission
	b.cash -= f.Commission

	notional := f.Price * f.Quantity
	if f.Side == b.side {
		if b.side == trade.Long {
			b.cash -= notional
		} else {
			b.cash += notional
		}
		if b.position > 0 {
			total := b.avgPrice*b.position + notional
			b.position += f.Quantity
			b.avgPrice = total / b.position
		} else {
			b.position = f.Quantity
			b.avgPrice = f.Price
		}
		return
	}

	if b.side == trade.Long {
		b.cash += notional
	} else {
		b.cash -= notional
	}
	b.position -= f.Quantity
	if b.position <= 0 {
		b.position = 0
		b.avgPrice = 0
	}
}

// mark values the open position at price. Shorts are valued by inverting
// around the average entry, so a falling price raises the value.
func (b *book) mark(price float64) (value, unrealized float64) {
	if b.position <= 0 {
		return 0, 0
	}
	if b.side == trade.Long {
		return price * b.position, (price - b.avgPrice) * b.position
	}
	return (2*b.avgPrice - price) * b.position, (b.avgPrice - price) * b.position
}

// Build returns one point per minute from one minute before the first fill
// to one minute after the last fill. Fills are applied once their timestamp
// is at or before the sample time. It returns nil for a trade without fills
// and never fails: without candles the open position is marked at its
// average price.
func (b *Builder) Build(t *trade.Trade, series *market.Series, initialBalance float64) []Point {
	if t == nil || len(t.Fills) == 0 {
		return nil
	}

	fills := t.Fills.Sorted()
	start := fills[0].At().Add(-Step)
	end := fills[len(fills)-1].At().Add(Step)

	if series.Len() == 0 {
		b.log.Warn("no price data for equity curve",
			zap.String("trade_id", t.ID),
			zap.String("symbol", t.Symbol),
			zap.Time("start", start),
			zap.Time("end", end),
		)
	}

	bk := &book{side: t.Side, cash: initialBalance}
	points := make([]Point, 0, int(end.Sub(start)/Step)+1)
	next := 0

	for now := start; !now.After(end); now = now.Add(Step) {
		for next < len(fills) && !fills[next].At().After(now) {
			bk.apply(fills[next])
			next++
		}

		var current *float64
		if price, ok := series.CloseAt(now); ok {
			current = &price
		} else if bk.avgPrice > 0 {
			price := bk.avgPrice
			current = &price
		}

		var value, unrealized float64
		if current != nil {
			value, unrealized = bk.mark(*current)
		}

		balance := bk.cash + value
		points = append(points, Point{
			Time:          now,
			Symbol:        t.Symbol,
			Balance:       balance,
			CashBalance:   bk.cash,
			PositionValue: value,
			PositionSize:  bk.position,
			AvgPrice:      bk.avgPrice,
			CurrentPrice:  current,
			RealizedPnL:   bk.cash - initialBalance,
			UnrealizedPnL: unrealized,
			TotalPnL:      balance - initialBalance,
			Commission:    bk.commission,
		})
	}
	return points
}
