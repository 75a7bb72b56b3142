package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/tradejournal/market"
)

// SaveCandles upserts candles keyed by symbol, timeframe and time, in one
// transaction. It returns the number of rows written.
func (j *SQLite) SaveCandles(ctx context.Context, candles []market.Candle) (int, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO candles (symbol, timeframe, ts, open, high, low, close, volume, session)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, timeframe, ts) DO UPDATE SET
			open = excluded.open, high = excluded.high, low = excluded.low,
			close = excluded.close, volume = excluded.volume, session = excluded.session`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for _, c := range candles {
		if c.Symbol == "" || c.Timeframe == "" {
			return 0, fmt.Errorf("candle at %s: symbol and timeframe are required", c.Time.Format(time.RFC3339))
		}
		session := c.Session
		if session == "" {
			session = market.SessionReg
		}
		if _, err := stmt.ExecContext(ctx,
			c.Symbol, string(c.Timeframe), c.Time.UTC().Unix(),
			c.Open, c.High, c.Low, c.Close, c.Volume, string(session),
		); err != nil {
			return 0, fmt.Errorf("save candle %s %s: %w", c.Symbol, c.Time.Format(time.RFC3339), err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// Candles returns the stored candles of symbol and tf with start <= time <=
// end. A zero start or end leaves that side open.
func (j *SQLite) Candles(ctx context.Context, symbol string, tf market.Timeframe, start, end time.Time) (*market.Series, error) {
	q := `SELECT ts, open, high, low, close, volume, session FROM candles WHERE symbol = ? AND timeframe = ?`
	args := []any{symbol, string(tf)}
	if !start.IsZero() {
		q += ` AND ts >= ?`
		args = append(args, start.UTC().Unix())
	}
	if !end.IsZero() {
		q += ` AND ts <= ?`
		args = append(args, end.UTC().Unix())
	}
	q += ` ORDER BY ts ASC`

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.Candle
	for rows.Next() {
		var (
			ts      int64
			session string
		)
		c := market.Candle{Symbol: symbol, Timeframe: tf}
		if err := rows.Scan(&ts, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume, &session); err != nil {
			return nil, err
		}
		c.Time = time.Unix(ts, 0).UTC()
		c.Session = market.Session(session)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return market.NewSeries(symbol, tf, out), nil
}
