package market

import (
	"strings"

	"github.com/pkg/errors"
)

// Side is the direction of an order.
type Side int

const (
	Long Side = iota
	Short
)

func (s Side) String() string {
	if s == Short {
		return "short"
	}
	return "long"
}

// ParseSide accepts long/buy and short/sell, case-insensitive.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "buy", "l", "b":
		return Long, nil
	case "short", "sell", "s":
		return Short, nil
	default:
		return Long, errors.Errorf("unknown side %q (want long or short)", s)
	}
}
