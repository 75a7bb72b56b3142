package trade

import (
	"fmt"
	"strings"
)

// Side is the direction of a trade or of a single fill.
type Side string

const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// ParseSide accepts LONG/SHORT and the BUY/SELL aliases used by broker exports.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LONG", "BUY":
		return Long, nil
	case "SHORT", "SELL":
		return Short, nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

func (s Side) Valid() bool { return s == Long || s == Short }

// Sign is +1 for LONG and -1 for SHORT.
func (s Side) Sign() float64 {
	if s == Short {
		return -1
	}
	return 1
}

// Opposite returns the closing direction.
func (s Side) Opposite() Side {
	if s == Short {
		return Long
	}
	return Short
}
