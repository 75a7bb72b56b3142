// Package pgcandles reads price history from a TimescaleDB candles
// hypertable, bucketing raw bars into the requested timeframe.
package pgcandles

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/market"
)

var (
	ErrTimeframeNotSupported = errors.New("timeframe not supported")
	ErrSymbolRequired        = errors.New("symbol required")
)

var bucketToInterval = map[market.Timeframe]string{
	market.M1:  "1 minute",
	market.M5:  "5 minutes",
	market.M15: "15 minutes",
	market.M30: "30 minutes",
	market.H1:  "1 hour",
	market.H4:  "4 hours",
	market.D1:  "1 day",
}

// Params selects one bucketed range. Nil bounds are open.
type Params struct {
	Bucket string
	Symbol string
	Start  *time.Time
	End    *time.Time
}

// Row is one aggregated bucket as stored.
type Row struct {
	Bucket time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.NullDecimal
}

type candlesRepository interface {
	Aggregates(ctx context.Context, arg Params) ([]Row, error)
}

// Store holds the pool and the queries run against it.
type Store struct {
	candles candlesRepository
	pool    *pgxpool.Pool
	log     *zap.Logger
}

// New connects to dbURL and verifies connectivity.
func New(ctx context.Context, dbURL string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Debug("postgres candle source connected",
		zap.String("host", config.ConnConfig.Host),
		zap.String("database", config.ConnConfig.Database),
	)
	return &Store{candles: queries{pool: pool}, pool: pool, log: log}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Candles returns the bars for symbol bucketed to tf between start and end
// inclusive. Zero bounds are open. A range with no data yields an empty
// series.
func (s *Store) Candles(ctx context.Context, symbol string, tf market.Timeframe, start, end time.Time) (*market.Series, error) {
	if symbol == "" {
		return nil, ErrSymbolRequired
	}
	bucket, ok := bucketToInterval[tf]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTimeframeNotSupported, tf)
	}

	args := Params{Bucket: bucket, Symbol: symbol}
	if !start.IsZero() {
		st := start.UTC()
		args.Start = &st
	}
	if !end.IsZero() {
		en := end.UTC()
		args.End = &en
	}

	rows, err := s.candles.Aggregates(ctx, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return market.NewSeries(symbol, tf, nil), nil
		}
		return nil, fmt.Errorf("candles %s %s: %w", symbol, tf, err)
	}

	if s.log != nil {
		s.log.Debug("loaded candles",
			zap.String("symbol", symbol),
			zap.String("timeframe", string(tf)),
			zap.Int("count", len(rows)),
		)
	}
	return market.NewSeries(symbol, tf, convertCandles(rows, symbol, tf)), nil
}

func convertCandles(rows []Row, symbol string, tf market.Timeframe) []market.Candle {
	candles := make([]market.Candle, 0, len(rows))
	for _, r := range rows {
		var vol float64
		if r.Volume.Valid {
			vol = r.Volume.Decimal.InexactFloat64()
		}
		candles = append(candles, market.Candle{
			Symbol:    symbol,
			Timeframe: tf,
			Time:      r.Bucket.UTC(),
			Open:      r.Open.InexactFloat64(),
			High:      r.High.InexactFloat64(),
			Low:       r.Low.InexactFloat64(),
			Close:     r.Close.InexactFloat64(),
			Volume:    vol,
			Session:   market.SessionReg,
		})
	}
	return candles
}

const aggregatesQuery = `
SELECT time_bucket($1::interval, ts) AS bucket,
       first(open, ts)  AS open,
       max(high)        AS high,
       min(low)         AS low,
       last(close, ts)  AS close,
       sum(volume)      AS volume
FROM candles
WHERE symbol = $2
  AND ($3::timestamptz IS NULL OR ts >= $3)
  AND ($4::timestamptz IS NULL OR ts <= $4)
GROUP BY bucket
ORDER BY bucket`

type queries struct {
	pool *pgxpool.Pool
}

func (q queries) Aggregates(ctx context.Context, arg Params) ([]Row, error) {
	rows, err := q.pool.Query(ctx, aggregatesQuery, arg.Bucket, arg.Symbol, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[Row])
}
