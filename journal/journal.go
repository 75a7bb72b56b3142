// Package journal persists trades, fills and candles in SQLite and renders
// them as CSV and Org-mode.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/tradejournal/market"
	"github.com/rustyeddy/tradejournal/trade"
)

// ErrNotFound is returned when a trade id does not exist.
var ErrNotFound = errors.New("not found")

// Filter narrows ListTrades. Zero fields match everything. From and To
// bound the entry date, both inclusive.
type Filter struct {
	Symbol     string
	Side       trade.Side
	StrategyID string
	From       time.Time
	To         time.Time
	Limit      int
}

// Journal is the trade store used by the CLI and the analytics service.
type Journal interface {
	CreateTrade(ctx context.Context, t *trade.Trade) error
	GetTrade(ctx context.Context, id string) (*trade.Trade, error)
	ListTrades(ctx context.Context, f Filter) ([]*trade.Trade, error)
	DeleteTrade(ctx context.Context, id string) error
	AddFill(ctx context.Context, tradeID string, f trade.Fill) (*trade.Trade, error)
	Close() error
}

// CandleStore reads and writes price history.
type CandleStore interface {
	SaveCandles(ctx context.Context, candles []market.Candle) (int, error)
	Candles(ctx context.Context, symbol string, tf market.Timeframe, start, end time.Time) (*market.Series, error)
}
