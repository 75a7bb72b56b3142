// Package analytics joins the journal with price history: it builds equity
// curves and performance reports for sets of trades.
package analytics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/tradejournal/equity"
	"github.com/rustyeddy/tradejournal/internal/trace"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/market"
	"github.com/rustyeddy/tradejournal/metrics"
	"github.com/rustyeddy/tradejournal/trade"
)

// TradeSource is the read side of the journal.
type TradeSource interface {
	GetTrade(ctx context.Context, id string) (*trade.Trade, error)
	ListTrades(ctx context.Context, f journal.Filter) ([]*trade.Trade, error)
}

// CandleSource loads price history. Zero bounds are open, set bounds inclusive.
type CandleSource interface {
	Candles(ctx context.Context, symbol string, tf market.Timeframe, start, end time.Time) (*market.Series, error)
}

// Config tunes a Service. Zero values fall back to 1m candles, one worker,
// literal excursions and the approximate p-value.
type Config struct {
	InitialBalance float64
	Workers        int
	Timeframe      market.Timeframe
	Excursion      metrics.ExcursionMode
	PValue         metrics.PValueEstimator
}

type Service struct {
	trades     TradeSource
	candles    CandleSource
	cfg        Config
	builder    *equity.Builder
	aggregator *metrics.Aggregator
	log        *zap.Logger
}

func New(trades TradeSource, candles CandleSource, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = market.M1
	}
	if cfg.Excursion == "" {
		cfg.Excursion = metrics.LiteralExcursion
	}
	if cfg.PValue == nil {
		cfg.PValue = metrics.Approximate{}
	}
	return &Service{
		trades:     trades,
		candles:    candles,
		cfg:        cfg,
		builder:    equity.NewBuilder(log.Named("equity")),
		aggregator: metrics.NewAggregator(metrics.WithPValue(cfg.PValue)),
		log:        log,
	}
}

// EquityCurve loads one trade and replays it against its price history.
func (s *Service) EquityCurve(ctx context.Context, tradeID string) ([]equity.Point, error) {
	t, err := s.trades.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	return s.curve(ctx, t)
}

// EquityCurves builds the curves of trades concurrently, at most
// cfg.Workers at a time, keyed by trade ID. The first failure cancels the
// trades not yet started.
func (s *Service) EquityCurves(ctx context.Context, trades []*trade.Trade) (map[string][]equity.Point, error) {
	ctx, span := trace.StartSpan(ctx, "analytics.EquityCurves")
	defer span.End()
	span.SetAttributes(attribute.Int("trades", len(trades)))

	curves := make([][]equity.Point, len(trades))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, t := range trades {
		i, t := i, t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			points, err := s.curve(gctx, t)
			if err != nil {
				return err
			}
			curves[i] = points
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	out := make(map[string][]equity.Point, len(trades))
	for i, t := range trades {
		out[t.ID] = curves[i]
	}
	return out, nil
}

func (s *Service) curve(ctx context.Context, t *trade.Trade) ([]equity.Point, error) {
	first, last, ok := t.Fills.Span()
	if !ok {
		return nil, nil
	}
	series, err := s.candles.Candles(ctx, t.Symbol, s.cfg.Timeframe, first.Add(-equity.Step), last.Add(equity.Step))
	if err != nil {
		return nil, fmt.Errorf("trade %s: %w", t.ID, err)
	}
	return s.builder.Build(t, series, s.cfg.InitialBalance), nil
}

// Performance aggregates every trade matching f. MAE and MFE come from the
// candles of each trade's holding days, loaded concurrently.
func (s *Service) Performance(ctx context.Context, f journal.Filter) (metrics.Report, error) {
	ctx, span := trace.StartSpan(ctx, "analytics.Performance")
	defer span.End()

	trades, err := s.trades.ListTrades(ctx, f)
	if err != nil {
		span.RecordError(err)
		return metrics.EmptyReport(), err
	}
	span.SetAttributes(attribute.Int("trades", len(trades)))

	summaries := make([]metrics.TradeSummary, len(trades))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, t := range trades {
		i, t := i, t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sum := metrics.Summarize(t)
			mae, mfe, err := s.excursion(gctx, t)
			if err != nil {
				return err
			}
			sum.MAE, sum.MFE = mae, mfe
			summaries[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return metrics.EmptyReport(), err
	}

	r := s.aggregator.Aggregate(summaries)
	s.log.Debug("performance computed",
		append(trace.Fields(ctx),
			zap.Int("trades", r.TotalTrades),
			zap.Float64("net_pnl", r.Net.TotalPnL),
			zap.String("pvalue", s.cfg.PValue.Name()),
		)...,
	)
	return r, nil
}

func (s *Service) excursion(ctx context.Context, t *trade.Trade) (mae, mfe float64, err error) {
	from, to, ok := metrics.ExcursionWindow(t)
	if !ok {
		return 0, 0, nil
	}

	series, err := s.candles.Candles(ctx, t.Symbol, s.cfg.Timeframe, from, to)
	if err != nil {
		return 0, 0, fmt.Errorf("trade %s: %w", t.ID, err)
	}
	if series.Len() == 0 {
		s.log.Debug("no candles for excursion",
			zap.String("trade_id", t.ID),
			zap.String("symbol", t.Symbol),
		)
	}
	mae, mfe = metrics.Excursion(t, series.Candles(), s.cfg.Excursion)
	return mae, mfe, nil
}

// Timing classifies the equity curve of every trade matching f and counts
// the shapes per entry day.
func (s *Service) Timing(ctx context.Context, f journal.Filter) ([]equity.DayCount, error) {
	trades, err := s.trades.ListTrades(ctx, f)
	if err != nil {
		return nil, err
	}
	curves, err := s.EquityCurves(ctx, trades)
	if err != nil {
		return nil, err
	}

	in := make([]equity.Curve, 0, len(trades))
	for _, t := range trades {
		if t.EntryDate.IsZero() {
			continue
		}
		in = append(in, equity.Curve{EntryDate: t.EntryDate, Points: curves[t.ID]})
	}
	return equity.TimingCounts(in), nil
}

// PValueName names the configured p-value estimator.
func (s *Service) PValueName() string { return s.cfg.PValue.Name() }
