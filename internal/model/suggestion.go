package model

// ConfidenceTier buckets a raw confidence score for filtering and review
// prioritization. Tiers are presentation-level; the engine always works with
// the raw 0-100 score.
type ConfidenceTier string

const (
	// TierHigh covers scores of 90 and above.
	TierHigh ConfidenceTier = "high"
	// TierMedium covers scores from 55 through 89.
	TierMedium ConfidenceTier = "medium"
	// TierLow covers scores from 1 through 54.
	TierLow ConfidenceTier = "low"
	// TierNone means no candidate cleared the minimum-to-suggest threshold.
	TierNone ConfidenceTier = "none"
)

// Default tier cut points, used when no configured Tiers value applies.
const (
	HighConfidenceThreshold   = 90
	MediumConfidenceThreshold = 55
)

// Tiers holds the confidence cut points that bucket scores into tiers. The
// scorer stamps every candidate with the tier its configured cut points
// produce, so downstream consumers never re-derive tiers from constants.
type Tiers struct {
	High   int
	Medium int
}

// DefaultTiers returns the stock 90/55 cut points.
func DefaultTiers() Tiers {
	return Tiers{High: HighConfidenceThreshold, Medium: MediumConfidenceThreshold}
}

// For maps a raw confidence score to its tier under these cut points.
func (t Tiers) For(confidence int) ConfidenceTier {
	switch {
	case confidence >= t.High:
		return TierHigh
	case confidence >= t.Medium:
		return TierMedium
	case confidence > 0:
		return TierLow
	default:
		return TierNone
	}
}

// TierFor maps a raw confidence score to its tier using the default cut
// points.
func TierFor(confidence int) ConfidenceTier {
	return DefaultTiers().For(confidence)
}

// MatchCandidate is a scored relationship between one incoming record and one
// existing record.
type MatchCandidate struct {
	// Incoming is the newly observed record.
	Incoming CandidateRecord `json:"incoming"`

	// Existing is the already-ledgered record it was scored against.
	Existing CandidateRecord `json:"existing"`

	// ExistingIndex is the position of Existing in the caller's collection,
	// used for deterministic tie-breaking and for addressing the record.
	ExistingIndex int `json:"existingIndex"`

	// Confidence is the bounded composite score, 0-100.
	Confidence int `json:"confidence"`

	// Tier is the confidence bucket under the scorer's configured cut
	// points, stamped at scoring time.
	Tier ConfidenceTier `json:"tier"`

	// Reasons lists the contributing and detracting signals in evaluation
	// order. Always populated, even for a failed match, so a reviewer can see
	// why two plausible-looking records were not linked.
	Reasons []string `json:"reasons"`

	// IsExactFingerprint is true when both records share a fingerprint.
	IsExactFingerprint bool `json:"isExactFingerprint"`
}

// SuggestionStatus is the human-settable review state of a suggestion.
// Transitions are one-way (pending -> approved, pending -> rejected) and are
// never produced by the engine itself.
type SuggestionStatus string

const (
	// StatusPending is the default state awaiting human review.
	StatusPending SuggestionStatus = "pending"
	// StatusApproved means a human accepted the suggestion.
	StatusApproved SuggestionStatus = "approved"
	// StatusRejected means a human declined the suggestion.
	StatusRejected SuggestionStatus = "rejected"
)

// MatchSuggestion is the externally visible unit of review work: one incoming
// record, its best-scoring candidate if any cleared the threshold, and the
// review status. Suggestions are produced fresh on every run; only Status is
// expected to persist across runs.
type MatchSuggestion struct {
	// Record is the incoming record the suggestion is about.
	Record CandidateRecord `json:"record"`

	// Candidate is the winning match, or nil when IsNew is true.
	Candidate *MatchCandidate `json:"candidate,omitempty"`

	// IsNew is true when no candidate cleared the minimum-to-suggest
	// threshold, meaning the record should become a new ledger entry.
	IsNew bool `json:"isNew"`

	// Reasons explains the outcome even when no candidate was selected.
	Reasons []string `json:"reasons"`

	// Status is pending until a human approves or rejects. Re-running the
	// engine must never overwrite a non-pending status.
	Status SuggestionStatus `json:"status"`
}

// Confidence returns the candidate confidence, or 0 for a new-record
// suggestion.
func (s MatchSuggestion) Confidence() int {
	if s.Candidate == nil {
		return 0
	}
	return s.Candidate.Confidence
}

// Tier returns the confidence tier of the suggestion: the tier the scorer
// stamped on the candidate, or none for a new-record suggestion. Candidates
// built without a stamp fall back to the default cut points.
func (s MatchSuggestion) Tier() ConfidenceTier {
	if s.Candidate == nil {
		return TierNone
	}
	if s.Candidate.Tier != "" {
		return s.Candidate.Tier
	}
	return TierFor(s.Candidate.Confidence)
}
