package market

import (
	"fmt"
	"strings"
	"time"
)

// Session identifies the trading session a candle belongs to.
type Session string

const (
	SessionPre  Session = "PRE"
	SessionReg  Session = "REG"
	SessionPost Session = "POST"
)

// ParseSession accepts PRE, REG, POST (case-insensitive). An empty string is
// treated as the regular session.
func ParseSession(s string) (Session, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "REG", "REGULAR":
		return SessionReg, nil
	case "PRE":
		return SessionPre, nil
	case "POST":
		return SessionPost, nil
	}
	return "", fmt.Errorf("unknown session %q", s)
}

// Timeframe is the candle resolution, e.g. "1m" or "1d".
type Timeframe string

const (
	M1  Timeframe = "1m"
	M5  Timeframe = "5m"
	M15 Timeframe = "15m"
	M30 Timeframe = "30m"
	H1  Timeframe = "1h"
	H4  Timeframe = "4h"
	D1  Timeframe = "1d"
)

// Duration returns the bar length of the timeframe.
func (tf Timeframe) Duration() (time.Duration, error) {
	s := string(tf)
	if s == "" {
		return 0, fmt.Errorf("empty timeframe")
	}
	if strings.HasSuffix(s, "d") {
		d, err := time.ParseDuration(strings.TrimSuffix(s, "d") + "h")
		if err != nil {
			return 0, fmt.Errorf("invalid timeframe %q", s)
		}
		return d * 24, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid timeframe %q", s)
	}
	return d, nil
}

// Candle represents OHLCV data for one bar. Time is the bar open in UTC.
// A null volume from the source is stored as zero.
type Candle struct {
	Symbol    string
	Time      time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Session   Session
	Timeframe Timeframe
}
