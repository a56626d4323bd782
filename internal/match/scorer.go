package match

import (
	"github.com/ledgerlab/reconcile/internal/canonical"
	"github.com/ledgerlab/reconcile/internal/model"
)

// Scorer computes bounded 0-100 confidence scores with human-readable
// reasons for pairs of candidate records. Scoring is pure integer
// arithmetic: the same pair always produces byte-identical output.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer with the given configuration.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score compares an incoming record against an existing one and returns the
// scored candidate. existingIndex is the existing record's position in the
// caller's collection, carried through for deterministic tie-breaking.
func (s *Scorer) Score(incoming, existing model.CandidateRecord, existingIndex int) model.MatchCandidate {
	date := s.dateSignal(incoming, existing)
	amount := s.amountSignal(incoming, existing)
	desc := s.descriptionSignal(incoming, existing)

	raw := weighted(date, s.cfg.Weights.Date) +
		weighted(amount, s.cfg.Weights.Amount) +
		weighted(desc, s.cfg.Weights.Description)

	confidence := raw
	for _, sig := range []signal{date, amount, desc} {
		if sig.cap > 0 && confidence > sig.cap {
			confidence = sig.cap
		}
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	return model.MatchCandidate{
		Incoming:           incoming,
		Existing:           existing,
		ExistingIndex:      existingIndex,
		Confidence:         confidence,
		Tier:               s.cfg.Tiers().For(confidence),
		Reasons:            []string{date.reason, amount.reason, desc.reason},
		IsExactFingerprint: canonical.Fingerprint(incoming) == canonical.Fingerprint(existing),
	}
}

// weighted rescales a signal's native-band score to its configured weight.
func weighted(sig signal, weight int) int {
	if sig.max == 0 || weight == 0 {
		return 0
	}
	return (sig.score*weight*2 + sig.max) / (2 * sig.max)
}
