package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy selects one of the retrieval workflows.
type Strategy string

const (
	StrategyBasic        Strategy = "basic"
	StrategyHierarchical Strategy = "hierarchical"
	StrategyHybrid       Strategy = "hybrid"
	StrategyAdaptive     Strategy = "adaptive"
)

// DefaultStrategy is used when a request does not name a strategy.
const DefaultStrategy = StrategyBasic

// ErrUnknownStrategy is returned when a strategy tag is not one of the
// four recognized values. Retrieval never falls back silently.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategies lists every recognized strategy tag in a stable order.
func Strategies() []Strategy {
	return []Strategy{StrategyBasic, StrategyHierarchical, StrategyHybrid, StrategyAdaptive}
}

// ParseStrategy normalizes a strategy tag. Empty input resolves to the
// default; anything unrecognized fails with ErrUnknownStrategy.
func ParseStrategy(s string) (Strategy, error) {
	if s == "" {
		return DefaultStrategy, nil
	}
	switch Strategy(strings.ToLower(s)) {
	case StrategyBasic:
		return StrategyBasic, nil
	case StrategyHierarchical:
		return StrategyHierarchical, nil
	case StrategyHybrid:
		return StrategyHybrid, nil
	case StrategyAdaptive:
		return StrategyAdaptive, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

func (s Strategy) String() string {
	return string(s)
}
