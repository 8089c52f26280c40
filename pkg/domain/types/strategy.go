package types

import (
	"fmt"
	"strings"
)

// Strategy is a party's advocacy stance
type Strategy string

const (
	StrategyAggressive   Strategy = "aggressive"
	StrategyConservative Strategy = "conservative"
	StrategyBalanced     Strategy = "balanced"
	StrategyDefensive    Strategy = "defensive"
)

// DefaultStrategy applies when a strategy is unset or unrecognized
const DefaultStrategy = StrategyBalanced

// AllStrategies returns all valid strategies
func AllStrategies() []Strategy {
	return []Strategy{
		StrategyAggressive,
		StrategyConservative,
		StrategyBalanced,
		StrategyDefensive,
	}
}

// IsValid checks if the strategy is valid
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyAggressive,
		StrategyConservative,
		StrategyBalanced,
		StrategyDefensive:
		return true
	default:
		return false
	}
}

// Normalize returns the strategy in canonical form, falling back to
// DefaultStrategy for empty or unrecognized values.
func (s Strategy) Normalize() Strategy {
	n := Strategy(strings.ToLower(strings.TrimSpace(string(s))))
	if !n.IsValid() {
		return DefaultStrategy
	}
	return n
}

// String returns the string representation of the strategy
func (s Strategy) String() string {
	return string(s)
}

// ParseStrategy parses a string into a Strategy
func ParseStrategy(s string) (Strategy, error) {
	st := Strategy(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("invalid strategy: %s", s)
	}
	return st, nil
}
