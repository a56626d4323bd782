package match

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/ledgerlab/reconcile/internal/canonical"
	"github.com/ledgerlab/reconcile/internal/model"
)

const (
	descriptionSignalMax = 30

	descScoreExact       = 30
	descScoreNormalized  = 28
	descScoreAlias       = 25
	descScoreContainment = 25
	descScoreHigh        = 25 // similarity >= 90
	descScoreGood        = 20 // similarity >= 80
	descScoreModerate    = 15 // similarity >= 70
	descScoreWeak        = 10 // similarity >= 60
	descScoreBothEmpty   = 10

	// Names the catalog marks as distinct vendors cap the composite score no
	// matter how similar they look.
	neverMergeCap = 50

	containmentMinLength = 4
)

// similarityPercent is the normalized edit-distance ratio mapped to 0-100,
// computed with integer rounding so results are identical across runs.
func similarityPercent(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	dist := levenshtein.ComputeDistance(a, b)
	maxLen := len([]rune(a))
	if lb := len([]rune(b)); lb > maxLen {
		maxLen = lb
	}
	if dist >= maxLen {
		return 0
	}

	return int(((int64(maxLen-dist))*200 + int64(maxLen)) / (2 * int64(maxLen)))
}

// descriptionSignal scores description similarity on normalized text:
// exact, normalized-equal, alias-catalog, containment, then the edit-distance
// bands.
func (s *Scorer) descriptionSignal(a, b model.CandidateRecord) signal {
	if a.Description != "" && a.Description == b.Description {
		return signal{
			score:  descScoreExact,
			max:    descriptionSignalMax,
			reason: "descriptions match exactly",
		}
	}

	na := canonical.Normalize(a.Description)
	nb := canonical.Normalize(b.Description)

	if na == "" && nb == "" {
		return signal{
			score:  descScoreBothEmpty,
			max:    descriptionSignalMax,
			reason: "both descriptions empty after normalization",
		}
	}
	if na == "" || nb == "" {
		return signal{
			score:  0,
			max:    descriptionSignalMax,
			reason: "description missing on one side",
		}
	}

	if s.cfg.Aliases.NeverMerge(na, nb) {
		return signal{
			score:  0,
			max:    descriptionSignalMax,
			cap:    neverMergeCap,
			reason: fmt.Sprintf("%q and %q are cataloged as distinct vendors", na, nb),
		}
	}

	if na == nb {
		return signal{
			score:  descScoreNormalized,
			max:    descriptionSignalMax,
			reason: "descriptions match after normalization",
		}
	}

	if ca, ok := s.cfg.Aliases.Canonical(na); ok {
		if cb, ok := s.cfg.Aliases.Canonical(nb); ok && ca == cb {
			return signal{
				score:  descScoreAlias,
				max:    descriptionSignalMax,
				reason: fmt.Sprintf("both map to known vendor %q", ca),
			}
		}
	}

	// A truncated statement description contained in the fuller one counts
	// as high similarity even when lengths differ a lot.
	if len(na) >= containmentMinLength && len(nb) >= containmentMinLength &&
		(strings.Contains(na, nb) || strings.Contains(nb, na)) {
		return signal{
			score:  descScoreContainment,
			max:    descriptionSignalMax,
			reason: "one description contains the other",
		}
	}

	sim := similarityPercent(na, nb)
	switch {
	case sim >= 90:
		return signal{
			score:  descScoreHigh,
			max:    descriptionSignalMax,
			reason: fmt.Sprintf("description similarity %d%%", sim),
		}
	case sim >= 80:
		return signal{
			score:  descScoreGood,
			max:    descriptionSignalMax,
			reason: fmt.Sprintf("description similarity %d%%", sim),
		}
	case sim >= 70:
		return signal{
			score:  descScoreModerate,
			max:    descriptionSignalMax,
			reason: fmt.Sprintf("description similarity %d%%", sim),
		}
	case sim >= 60:
		return signal{
			score:  descScoreWeak,
			max:    descriptionSignalMax,
			reason: fmt.Sprintf("description similarity %d%%", sim),
		}
	}

	return signal{
		score:  0,
		max:    descriptionSignalMax,
		reason: fmt.Sprintf("description similarity %d%% (below 60%% threshold)", sim),
	}
}
