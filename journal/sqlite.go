package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/tradejournal/internal/id"
	"github.com/rustyeddy/tradejournal/trade"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type SQLite struct {
	db    *sql.DB
	locks trade.Locks
	newID func() string
}

var _ Journal = (*SQLite)(nil)
var _ CandleStore = (*SQLite)(nil)

// NewSQLite opens (creating if needed) the journal at path and applies the
// schema. Foreign keys are enforced so deleting a trade removes its fills.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db, newID: id.New}, nil
}

// CreateTrade inserts t with its aggregate fields. Fills already on t are
// not stored; use AddFill. An empty ID is assigned a new ULID.
func (j *SQLite) CreateTrade(ctx context.Context, t *trade.Trade) error {
	if t.ID == "" {
		t.ID = j.newID()
	}
	if !t.Side.Valid() {
		return fmt.Errorf("create trade %s: invalid side %q", t.ID, t.Side)
	}
	if t.Symbol == "" {
		return fmt.Errorf("create trade %s: symbol is required", t.ID)
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO trades
		(id, symbol, side, strategy_id, entry_price, entry_quantity, exit_price, exit_quantity,
		 commission, fees, realized_pnl, stop_loss, take_profit, entry_date, entry_time, exit_date, exit_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Symbol, string(t.Side), t.StrategyID,
		t.EntryPrice, t.EntryQuantity, t.ExitPrice, t.ExitQuantity,
		t.Commission, t.Fees, t.RealizedPnL, t.StopLoss, t.TakeProfit,
		nullDate(t.EntryDate), nullClock(t.EntryTime), nullDate(t.ExitDate), nullClock(t.ExitTime),
	)
	if err != nil {
		return fmt.Errorf("create trade %s: %w", t.ID, err)
	}
	return nil
}

// GetTrade returns the trade with its fills in the order they were added.
func (j *SQLite) GetTrade(ctx context.Context, tradeID string) (*trade.Trade, error) {
	return getTrade(ctx, j.db, tradeID)
}

// DeleteTrade removes the trade and, by cascade, its fills.
func (j *SQLite) DeleteTrade(ctx context.Context, tradeID string) error {
	unlock := j.locks.Lock(tradeID)
	defer unlock()

	res, err := j.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, tradeID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
	}
	return nil
}

// AddFill applies f to the stored trade as one unit of work: the trade is
// locked, reloaded inside a transaction, accumulated, and the fill and the
// new aggregate are written together. A rejected fill leaves the journal
// unchanged.
func (j *SQLite) AddFill(ctx context.Context, tradeID string, f trade.Fill) (*trade.Trade, error) {
	unlock := j.locks.Lock(tradeID)
	defer unlock()

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	t, err := getTrade(ctx, tx, tradeID)
	if err != nil {
		return nil, err
	}

	if f.ID == "" {
		f.ID = j.newID()
	}
	if err := trade.AddFill(t, f); err != nil {
		return nil, err
	}
	added := t.Fills[len(t.Fills)-1]

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO fills (id, trade_id, date, time, price, quantity, commission, side)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		added.ID, t.ID, trade.FormatDate(added.Date), added.Time.String(),
		added.Price, added.Quantity, added.Commission, string(added.Side),
	); err != nil {
		return nil, fmt.Errorf("insert fill: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE trades SET
			entry_price = ?, entry_quantity = ?, exit_price = ?, exit_quantity = ?,
			commission = ?, realized_pnl = ?,
			entry_date = ?, entry_time = ?, exit_date = ?, exit_time = ?
		WHERE id = ?`,
		t.EntryPrice, t.EntryQuantity, t.ExitPrice, t.ExitQuantity,
		t.Commission, t.RealizedPnL,
		nullDate(t.EntryDate), nullClock(t.EntryTime), nullDate(t.ExitDate), nullClock(t.ExitTime),
		t.ID,
	); err != nil {
		return nil, fmt.Errorf("update trade: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return t, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

const tradeColumns = `id, symbol, side, strategy_id, entry_price, entry_quantity, exit_price, exit_quantity,
	commission, fees, realized_pnl, stop_loss, take_profit, entry_date, entry_time, exit_date, exit_time`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (*trade.Trade, error) {
	var (
		t                                        trade.Trade
		side                                     string
		entryDate, entryTime, exitDate, exitTime sql.NullString
	)
	err := row.Scan(
		&t.ID, &t.Symbol, &side, &t.StrategyID,
		&t.EntryPrice, &t.EntryQuantity, &t.ExitPrice, &t.ExitQuantity,
		&t.Commission, &t.Fees, &t.RealizedPnL, &t.StopLoss, &t.TakeProfit,
		&entryDate, &entryTime, &exitDate, &exitTime,
	)
	if err != nil {
		return nil, err
	}
	t.Side = trade.Side(side)

	if t.EntryDate, err = parseNullDate(entryDate); err != nil {
		return nil, err
	}
	if t.EntryTime, err = parseNullClock(entryTime); err != nil {
		return nil, err
	}
	if t.ExitDate, err = parseNullDate(exitDate); err != nil {
		return nil, err
	}
	if t.ExitTime, err = parseNullClock(exitTime); err != nil {
		return nil, err
	}
	return &t, nil
}

func getTrade(ctx context.Context, q queryer, tradeID string) (*trade.Trade, error) {
	row := q.QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = ?`, tradeID)
	t, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
		}
		return nil, err
	}
	if t.Fills, err = loadFills(ctx, q, tradeID); err != nil {
		return nil, err
	}
	return t, nil
}

func loadFills(ctx context.Context, q queryer, tradeID string) (trade.Ledger, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, trade_id, date, time, price, quantity, commission, side
		FROM fills
		WHERE trade_id = ?
		ORDER BY seq ASC`, tradeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out trade.Ledger
	for rows.Next() {
		var (
			f               trade.Fill
			date, tod, side string
		)
		if err := rows.Scan(&f.ID, &f.TradeID, &date, &tod, &f.Price, &f.Quantity, &f.Commission, &side); err != nil {
			return nil, err
		}
		if f.Date, err = trade.ParseDate(date); err != nil {
			return nil, err
		}
		if f.Time, err = trade.ParseTimeOfDay(tod); err != nil {
			return nil, err
		}
		f.Side = trade.Side(side)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
