package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/analytics"
	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/internal/pgcandles"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/trade"
)

func openJournal() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

// newService wires the journal to the configured candle source. The
// returned close func releases the candle source only.
func newService(ctx context.Context, j *journal.SQLite) (*analytics.Service, func(), error) {
	var (
		candles analytics.CandleSource = j
		closeFn                        = func() {}
	)
	if cfg.Candles.Source == config.SourcePostgres {
		pg, err := pgcandles.New(ctx, cfg.Candles.PostgresURL, logger.Named("pgcandles"))
		if err != nil {
			return nil, nil, fmt.Errorf("connect candles: %w", err)
		}
		candles = pg
		closeFn = func() { _ = pg.Close() }
	}

	svc := analytics.New(j, candles, analytics.Config{
		InitialBalance: cfg.Equity.InitialBalance,
		Workers:        cfg.Equity.Workers,
		Timeframe:      cfg.Candles.Timeframe,
		Excursion:      cfg.ExcursionMode(),
		PValue:         cfg.PValueEstimator(),
	}, logger.Named("analytics"))
	return svc, closeFn, nil
}

type filterFlags struct {
	symbol   string
	side     string
	strategy string
	from     string
	to       string
	limit    int
}

func (f *filterFlags) register(c *cobra.Command) {
	c.Flags().StringVarP(&f.symbol, "symbol", "s", "", "only trades on symbol")
	c.Flags().StringVar(&f.side, "side", "", "only LONG or SHORT trades")
	c.Flags().StringVar(&f.strategy, "strategy", "", "only trades tagged with strategy")
	c.Flags().StringVar(&f.from, "from", "", "earliest entry date (YYYY-MM-DD)")
	c.Flags().StringVar(&f.to, "to", "", "latest entry date (YYYY-MM-DD)")
	c.Flags().IntVar(&f.limit, "limit", 0, "maximum number of trades")
}

func (f *filterFlags) filter() (journal.Filter, error) {
	out := journal.Filter{Symbol: f.symbol, StrategyID: f.strategy, Limit: f.limit}
	if f.side != "" {
		s, err := trade.ParseSide(f.side)
		if err != nil {
			return out, err
		}
		out.Side = s
	}
	if f.from != "" {
		d, err := trade.ParseDate(f.from)
		if err != nil {
			return out, fmt.Errorf("from: %w", err)
		}
		out.From = d
	}
	if f.to != "" {
		d, err := trade.ParseDate(f.to)
		if err != nil {
			return out, fmt.Errorf("to: %w", err)
		}
		out.To = d
	}
	return out, nil
}
