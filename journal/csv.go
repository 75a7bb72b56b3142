package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/equity"
	"github.com/rustyeddy/tradejournal/market"
	"github.com/rustyeddy/tradejournal/trade"
)

var equityHeader = []string{
	"datetime", "symbol", "balance", "cash_balance", "position_value", "position_size",
	"avg_price", "current_price", "realized_pnl", "unrealized_pnl", "total_pnl", "commission",
}

// WriteEquityCSV writes one row per point. A nil current price is written
// as an empty field.
func WriteEquityCSV(w io.Writer, points []equity.Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(equityHeader); err != nil {
		return err
	}
	for _, p := range points {
		current := ""
		if p.CurrentPrice != nil {
			current = f(*p.CurrentPrice)
		}
		if err := cw.Write([]string{
			p.Time.UTC().Format(time.RFC3339),
			p.Symbol,
			f(p.Balance),
			f(p.CashBalance),
			f(p.PositionValue),
			f(p.PositionSize),
			f(p.AvgPrice),
			current,
			f(p.RealizedPnL),
			f(p.UnrealizedPnL),
			f(p.TotalPnL),
			f(p.Commission),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var tradesHeader = []string{
	"id", "symbol", "side", "strategy_id", "entry_date", "entry_time", "exit_date", "exit_time",
	"entry_price", "entry_quantity", "exit_price", "exit_quantity", "commission", "fees", "realized_pnl", "status",
}

// WriteTradesCSV writes one row per trade aggregate.
func WriteTradesCSV(w io.Writer, trades []*trade.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tradesHeader); err != nil {
		return err
	}
	for _, t := range trades {
		if err := cw.Write([]string{
			t.ID,
			t.Symbol,
			string(t.Side),
			t.StrategyID,
			trade.FormatDate(t.EntryDate),
			clock(t.EntryTime),
			trade.FormatDate(t.ExitDate),
			clock(t.ExitTime),
			f(t.EntryPrice),
			f(t.EntryQuantity),
			f(t.ExitPrice),
			f(t.ExitQuantity),
			f(t.Commission),
			f(t.Fees),
			f(t.RealizedPnL),
			status(t),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var candleTimeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05"}

// ReadCandlesCSV parses semicolon separated rows of
// time;open;high;low;close;volume[;session]. A leading header row is
// skipped. Times without a zone are UTC; an empty volume is zero.
func ReadCandlesCSV(r io.Reader, symbol string, tf market.Timeframe) ([]market.Candle, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []market.Candle
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "time") {
			continue
		}
		if len(rec) < 6 {
			return nil, fmt.Errorf("line %d: want at least 6 fields, got %d", line, len(rec))
		}

		c := market.Candle{Symbol: symbol, Timeframe: tf, Session: market.SessionReg}
		if c.Time, err = parseCandleTime(rec[0]); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		prices := []*float64{&c.Open, &c.High, &c.Low, &c.Close}
		for i, dst := range prices {
			if *dst, err = strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64); err != nil {
				return nil, fmt.Errorf("line %d field %d: %w", line, i+2, err)
			}
		}
		if v := strings.TrimSpace(rec[5]); v != "" {
			if c.Volume, err = strconv.ParseFloat(v, 64); err != nil {
				return nil, fmt.Errorf("line %d volume: %w", line, err)
			}
		}
		if len(rec) > 6 {
			if c.Session, err = market.ParseSession(rec[6]); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func parseCandleTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range candleTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid candle time %q", s)
}

func clock(t *trade.TimeOfDay) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func status(t *trade.Trade) string {
	switch {
	case t.Closed():
		return "closed"
	case t.HasEntry():
		return "open"
	}
	return "new"
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
