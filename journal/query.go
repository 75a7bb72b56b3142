package journal

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/trade"
)

// ListTrades returns the trades matching f ordered by entry date and time,
// oldest first, each with its fills. Trades without an entry sort last.
func (j *SQLite) ListTrades(ctx context.Context, f Filter) ([]*trade.Trade, error) {
	var (
		where []string
		args  []any
	)
	if f.Symbol != "" {
		where = append(where, "symbol = ?")
		args = append(args, f.Symbol)
	}
	if f.Side != "" {
		where = append(where, "side = ?")
		args = append(args, string(f.Side))
	}
	if f.StrategyID != "" {
		where = append(where, "strategy_id = ?")
		args = append(args, f.StrategyID)
	}
	if !f.From.IsZero() {
		where = append(where, "entry_date >= ?")
		args = append(args, trade.FormatDate(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "entry_date <= ?")
		args = append(args, trade.FormatDate(f.To))
	}

	q := `SELECT ` + tradeColumns + ` FROM trades`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY entry_date IS NULL, entry_date ASC, entry_time ASC, id ASC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}

	var out []*trade.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, t := range out {
		if t.Fills, err = loadFills(ctx, j.db, t.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func nullDate(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: trade.FormatDate(t), Valid: true}
}

func nullClock(t *trade.TimeOfDay) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.String(), Valid: true}
}

func parseNullDate(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	return trade.ParseDate(s.String)
}

func parseNullClock(s sql.NullString) (*trade.TimeOfDay, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	tod, err := trade.ParseTimeOfDay(s.String)
	if err != nil {
		return nil, err
	}
	return &tod, nil
}
