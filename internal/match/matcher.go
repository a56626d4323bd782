package match

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/ledgerlab/reconcile/internal/model"
)

// Result is the outcome of a cross-source reconciliation run.
type Result struct {
	// Suggestions holds one entry per usable incoming record, in input
	// order. Matched suggestions carry the winning candidate; new-record
	// suggestions carry IsNew and the reasons no candidate was linked.
	Suggestions []model.MatchSuggestion

	// OnlyIncoming are the incoming records that produced no sufficiently
	// confident candidate (exactly the IsNew suggestions' records).
	OnlyIncoming []model.CandidateRecord

	// OnlyExisting are the existing records never selected as any incoming
	// record's match.
	OnlyExisting []model.CandidateRecord

	// Skipped are malformed records excluded from the run, with reasons.
	Skipped []model.SkippedRecord
}

// Matched returns only the suggestions that link to an existing record.
func (r Result) Matched() []model.MatchSuggestion {
	out := make([]model.MatchSuggestion, 0, len(r.Suggestions))
	for _, s := range r.Suggestions {
		if !s.IsNew {
			out = append(out, s)
		}
	}
	return out
}

// Matcher links incoming records to existing ones. Candidate pairs are
// pre-filtered by bucketing existing records per day and scanning only the
// buckets inside the date window, so a run costs O(n*k) over nearby
// candidates rather than O(n*m) over the full set.
type Matcher struct {
	cfg    Config
	scorer *Scorer
}

// NewMatcher creates a matcher with the given configuration.
func NewMatcher(cfg Config) *Matcher {
	return &Matcher{cfg: cfg, scorer: NewScorer(cfg)}
}

// edge is one scored incoming/existing pairing above the suggestion
// threshold.
type edge struct {
	candidate model.MatchCandidate
	inIdx     int
	exIdx     int
}

// Reconcile matches incoming records against existing ones and classifies
// every usable incoming record. Assignment is a single global pass over all
// candidate pairs in descending confidence order, so an existing record is
// claimed at most once; an incoming record whose best candidate is already
// claimed falls back to its next-best unclaimed one. Malformed records are
// excluded with a reason, never aborting the run.
func (m *Matcher) Reconcile(incoming, existing []model.CandidateRecord) Result {
	var result Result

	usableIncoming := make([]int, 0, len(incoming))
	for i, rec := range incoming {
		if err := rec.Validate(); err != nil {
			result.Skipped = append(result.Skipped, model.SkippedRecord{
				Record: rec,
				Index:  i,
				Reason: fmt.Sprintf("incoming: %v", err),
			})
			continue
		}
		usableIncoming = append(usableIncoming, i)
	}

	buckets := make(map[string][]int, len(existing))
	usableExisting := make(map[int]bool, len(existing))
	for j, rec := range existing {
		if err := rec.Validate(); err != nil {
			result.Skipped = append(result.Skipped, model.SkippedRecord{
				Record: rec,
				Index:  j,
				Reason: fmt.Sprintf("existing: %v", err),
			})
			continue
		}
		usableExisting[j] = true
		day := rec.DateString()
		buckets[day] = append(buckets[day], j)
	}

	// Score every incoming record against its nearby buckets. Track the best
	// candidate per incoming record even below the threshold, so new-record
	// suggestions can explain what almost matched.
	edges := make([]edge, 0, len(usableIncoming))
	bestAny := make(map[int]model.MatchCandidate, len(usableIncoming))
	topTies := make(map[int]int, len(usableIncoming))

	for _, i := range usableIncoming {
		rec := incoming[i]
		for off := -m.cfg.DateWindowDays; off <= m.cfg.DateWindowDays; off++ {
			day := rec.Date.AddDate(0, 0, off).Format("2006-01-02")
			for _, j := range buckets[day] {
				cand := m.scorer.Score(rec, existing[j], j)

				if best, ok := bestAny[i]; !ok || cand.Confidence > best.Confidence {
					bestAny[i] = cand
					topTies[i] = 0
				} else if cand.Confidence == best.Confidence {
					topTies[i]++
				}

				if cand.Confidence >= m.cfg.MinSuggestScore {
					edges = append(edges, edge{candidate: cand, inIdx: i, exIdx: j})
				}
			}
		}
	}

	// Global greedy assignment: highest confidence first, earliest indices
	// breaking ties, each side claimed at most once.
	sort.SliceStable(edges, func(a, b int) bool {
		ea, eb := edges[a], edges[b]
		if ea.candidate.Confidence != eb.candidate.Confidence {
			return ea.candidate.Confidence > eb.candidate.Confidence
		}
		if ea.inIdx != eb.inIdx {
			return ea.inIdx < eb.inIdx
		}
		return ea.exIdx < eb.exIdx
	})

	assigned := make(map[int]model.MatchCandidate, len(usableIncoming))
	claimed := make(map[int]bool, len(existing))
	for _, e := range edges {
		if _, done := assigned[e.inIdx]; done || claimed[e.exIdx] {
			continue
		}
		assigned[e.inIdx] = e.candidate
		claimed[e.exIdx] = true
	}

	for _, i := range usableIncoming {
		rec := incoming[i]

		cand, ok := assigned[i]
		if !ok {
			result.Suggestions = append(result.Suggestions, m.newRecordSuggestion(rec, bestAny, claimed, i))
			result.OnlyIncoming = append(result.OnlyIncoming, rec)
			continue
		}

		reasons := append([]string(nil), cand.Reasons...)
		if ties := topTies[i]; ties > 0 && cand.Confidence == bestAny[i].Confidence {
			reasons = append(reasons, fmt.Sprintf("tied with %d other candidate(s) at confidence %d; earliest kept", ties, cand.Confidence))
		}
		if best := bestAny[i]; cand.Confidence < best.Confidence {
			reasons = append(reasons, fmt.Sprintf("higher-scoring candidate (confidence %d) already claimed by another record", best.Confidence))
		}

		candCopy := cand
		result.Suggestions = append(result.Suggestions, model.MatchSuggestion{
			Record:    rec,
			Candidate: &candCopy,
			IsNew:     false,
			Reasons:   reasons,
			Status:    model.StatusPending,
		})
	}

	for j, rec := range existing {
		if usableExisting[j] && !claimed[j] {
			result.OnlyExisting = append(result.OnlyExisting, rec)
		}
	}

	slog.Debug("Reconciliation run complete",
		"incoming", len(incoming),
		"existing", len(existing),
		"matched", len(result.Suggestions)-len(result.OnlyIncoming),
		"only_incoming", len(result.OnlyIncoming),
		"only_existing", len(result.OnlyExisting),
		"skipped", len(result.Skipped))

	return result
}

// newRecordSuggestion classifies an incoming record that ends up unlinked,
// explaining what almost matched when anything did.
func (m *Matcher) newRecordSuggestion(rec model.CandidateRecord, bestAny map[int]model.MatchCandidate, claimed map[int]bool, i int) model.MatchSuggestion {
	var reasons []string

	switch best, ok := bestAny[i]; {
	case !ok:
		reasons = []string{fmt.Sprintf("no candidates within %d-day window", m.cfg.DateWindowDays)}
	case best.Confidence >= m.cfg.MinSuggestScore && claimed[best.ExistingIndex]:
		reasons = append(append([]string(nil), best.Reasons...),
			fmt.Sprintf("best candidate (confidence %d) already claimed by another record", best.Confidence))
	default:
		reasons = append(append([]string(nil), best.Reasons...),
			fmt.Sprintf("best candidate scored %d (below minimum %d)", best.Confidence, m.cfg.MinSuggestScore))
	}

	return model.MatchSuggestion{
		Record:  rec,
		IsNew:   true,
		Reasons: reasons,
		Status:  model.StatusPending,
	}
}
