package matcher

import (
	"strings"

	"github.com/agentstation/peerreviews/pkg/errors"
)

// StrategyType selects how the fallback heuristics are evaluated.
type StrategyType string

// String returns the string representation of a strategy type.
func (s StrategyType) String() string {
	return string(s)
}

// Name returns a title-cased name for display ("Linear Scan").
func (s StrategyType) Name() string {
	words := strings.Split(s.String(), "-")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

const (
	// StrategyLinearScan walks the manual entries in order for every remote entry.
	StrategyLinearScan StrategyType = "linear-scan"
	// StrategyIndexed precomputes name, group id and alias lookups.
	StrategyIndexed StrategyType = "indexed"
)

// Strategies lists the supported strategy types.
func Strategies() []StrategyType {
	return []StrategyType{StrategyLinearScan, StrategyIndexed}
}

// ParseStrategy resolves a strategy name; the empty string selects linear-scan.
func ParseStrategy(name string) (StrategyType, error) {
	switch StrategyType(strings.ToLower(strings.TrimSpace(name))) {
	case "", StrategyLinearScan:
		return StrategyLinearScan, nil
	case StrategyIndexed:
		return StrategyIndexed, nil
	}
	return "", &errors.ValidationError{
		Field:   "strategy",
		Value:   name,
		Message: "must be one of linear-scan, indexed",
	}
}

// New returns a matcher over idx for the given strategy.
// Unknown strategies fall back to the linear scan.
func New(strategy StrategyType, idx *Index) Matcher {
	if strategy == StrategyIndexed {
		return NewIndexed(idx)
	}
	return NewLinear(idx)
}
