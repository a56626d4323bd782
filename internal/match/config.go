// Package match implements the similarity scorer and the cross-source
// matcher: pairwise confidence scoring of candidate records and greedy global
// assignment of incoming records to existing ones.
package match

import (
	"github.com/ledgerlab/reconcile/internal/currency"
	"github.com/ledgerlab/reconcile/internal/model"
)

// Weights distributes the composite score across the three signals. The
// defaults follow the 40/30/30 split the scorer's bands are calibrated to.
type Weights struct {
	Amount      int
	Date        int
	Description int
}

// Config is the single configuration surface for scoring and matching.
// Thresholds and tier cut points live here rather than at call sites.
type Config struct {
	// Aliases is the injected vendor-name catalog. Nil disables alias and
	// never-merge handling.
	Aliases *AliasCatalog

	// Rates enables cross-currency amount comparison. Nil means mismatched
	// currencies are scored on the penalty path only.
	Rates currency.RateLookup

	Weights Weights

	// DateWindowDays is the bucket scan radius in days. Existing records
	// dated further from an incoming record than this are never scored.
	DateWindowDays int

	// AmountTolerance is the absolute same-currency delta (in the
	// transaction's currency) still treated as near-exact, absorbing
	// rounding from upstream currency conversion.
	AmountTolerance float64

	// MaxPercentDiff is the largest amount difference, in percent, that
	// still earns partial credit. Beyond it the pair is actively penalized.
	MaxPercentDiff int

	// MinSuggestScore is the minimum confidence for a candidate to be
	// suggested at all. Below it the incoming record is classified new.
	MinSuggestScore int

	// HighThreshold and MediumThreshold are the confidence tier cut points
	// the scorer stamps onto every candidate.
	HighThreshold   int
	MediumThreshold int
}

// Tiers returns the configured tier cut points.
func (c Config) Tiers() model.Tiers {
	return model.Tiers{High: c.HighThreshold, Medium: c.MediumThreshold}
}

// DefaultConfig returns the stock configuration: 40/30/30 weights, a ±3 day
// window, 0.10 amount tolerance, and the 90/55 tier cut points.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Amount:      40,
			Date:        30,
			Description: 30,
		},
		DateWindowDays:  3,
		AmountTolerance: 0.10,
		MaxPercentDiff:  10,
		MinSuggestScore: 55,
		HighThreshold:   90,
		MediumThreshold: 55,
	}
}
