// Package commission estimates broker commissions for fills that were
// recorded without one.
package commission

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Plan is a commission schedule.
type Plan string

const (
	None   Plan = "none"
	Fixed  Plan = "fixed"
	Tiered Plan = "tiered"
)

var (
	ErrUnknownPlan           = errors.New("commission: unknown plan")
	ErrMonthlyVolumeRequired = errors.New("commission: tiered plan requires a monthly volume")
)

// ParsePlan accepts none, fixed and tiered. The empty string is none.
func ParsePlan(s string) (Plan, error) {
	switch Plan(s) {
	case "", None:
		return None, nil
	case Fixed, Tiered:
		return Plan(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlan, s)
}

var (
	maxPct = decimal.RequireFromString("0.01")

	fixedMin  = decimal.NewFromInt(1)
	fixedRate = decimal.RequireFromString("0.005")

	tieredMin = decimal.RequireFromString("0.35")
	// FINRA TAF, clearing and CAT per share, then a flat liquidity fee.
	tieredPassThrough = decimal.RequireFromString("0.000399")
	tieredFlat        = decimal.RequireFromString("0.003")
)

// tiers maps the upper bound of monthly share volume to a per-share rate.
// Volume above the last bound pays overflowRate.
var tiers = []struct {
	upTo decimal.Decimal
	rate decimal.Decimal
}{
	{decimal.NewFromInt(300_000), decimal.RequireFromString("0.0035")},
	{decimal.NewFromInt(3_000_000), decimal.RequireFromString("0.002")},
	{decimal.NewFromInt(20_000_000), decimal.RequireFromString("0.0015")},
	{decimal.NewFromInt(100_000_000), decimal.RequireFromString("0.001")},
}

var overflowRate = decimal.RequireFromString("0.0005")

// Model is an Interactive Brokers style commission schedule. MonthlyVolume
// is the expected monthly share volume and selects the tiered rate.
type Model struct {
	Plan          Plan    `yaml:"model" json:"model"`
	MonthlyVolume float64 `yaml:"monthly_volume" json:"monthly_volume"`
}

func (m Model) Validate() error {
	switch m.Plan {
	case "", None, Fixed:
		return nil
	case Tiered:
		if m.MonthlyVolume <= 0 {
			return ErrMonthlyVolumeRequired
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownPlan, m.Plan)
}

// Commission returns the commission for quantity shares at price. The
// per-order charge is floored at the plan minimum and capped at 1% of trade
// value; the tiered plan adds pass-through fees on top of the cap.
func (m Model) Commission(quantity, price float64) (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	q := decimal.NewFromFloat(quantity)
	p := decimal.NewFromFloat(price)
	ceiling := q.Mul(p).Mul(maxPct)

	var c decimal.Decimal
	switch m.Plan {
	case "", None:
		return 0, nil
	case Fixed:
		c = decimal.Min(decimal.Max(fixedMin, q.Mul(fixedRate)), ceiling)
	case Tiered:
		base := q.Mul(tieredRate(decimal.NewFromFloat(m.MonthlyVolume)))
		fee := q.Mul(tieredPassThrough).Add(tieredFlat)
		c = decimal.Min(decimal.Max(tieredMin, base), ceiling).Add(fee)
	}
	return c.InexactFloat64(), nil
}

func tieredRate(monthly decimal.Decimal) decimal.Decimal {
	for _, t := range tiers {
		if monthly.LessThanOrEqual(t.upTo) {
			return t.rate
		}
	}
	return overflowRate
}
