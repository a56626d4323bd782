// Package report aggregates matcher and duplicate-detector output across two
// or three record sources into month-level discrepancy counts, missing-record
// sets, and ranked recommendations.
package report

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/ledgerlab/reconcile/internal/canonical"
	"github.com/ledgerlab/reconcile/internal/common"
	"github.com/ledgerlab/reconcile/internal/dedupe"
	"github.com/ledgerlab/reconcile/internal/match"
	"github.com/ledgerlab/reconcile/internal/model"
)

// NamedCollection is one source of records in a reconciliation report, e.g.
// the ledger itself, a CSV export, or a PDF-derived export.
type NamedCollection struct {
	Name    string                  `json:"name"`
	Records []model.CandidateRecord `json:"records"`
}

// Severity ranks a recommendation.
type Severity string

// Recommendation severities, most urgent first.
const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Thresholds drives recommendation ranking. All values are overridable by
// the caller; they are configuration, not business logic.
type Thresholds struct {
	// ImportFailure is the missing-from-ledger count at which the report
	// flags a likely import failure. Any count at or above it is CRITICAL.
	ImportFailure int

	// ManualEntry is the in-ledger-but-not-in-source count at which a HIGH
	// recommendation is emitted.
	ManualEntry int

	// ExportLoss is the third-source missing count above which export data
	// loss is flagged HIGH.
	ExportLoss int

	// NearDuplicates is the near-duplicate group count above which manual
	// review is recommended at MEDIUM.
	NearDuplicates int

	// DiscrepantMonths is the count of months with disagreeing totals above
	// which a MEDIUM review recommendation is emitted.
	DiscrepantMonths int

	// MaxExamples caps how many sample records each recommendation carries.
	MaxExamples int
}

// DefaultThresholds returns the stock thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ImportFailure:    1,
		ManualEntry:      1,
		ExportLoss:       10,
		NearDuplicates:   10,
		DiscrepantMonths: 10,
		MaxExamples:      5,
	}
}

// Recommendation is one ranked, actionable finding.
type Recommendation struct {
	Severity Severity                `json:"severity"`
	Issue    string                  `json:"issue"`
	Action   string                  `json:"action"`
	Examples []model.CandidateRecord `json:"examples,omitempty"`
}

// PairMatching summarizes one pairwise reconciliation between two sources.
type PairMatching struct {
	SourceA     string `json:"sourceA"`
	SourceB     string `json:"sourceB"`
	Matched     int    `json:"matched"`
	OnlyInA     int    `json:"onlyInA"`
	OnlyInB     int    `json:"onlyInB"`
	SkippedA    int    `json:"skippedA"`
	SkippedB    int    `json:"skippedB"`
	HighTier    int    `json:"highTier"`
	MediumTier  int    `json:"mediumTier"`
	LowTier     int    `json:"lowTier"`
	Suggestions []model.MatchSuggestion `json:"-"`
}

// MonthlyDiscrepancy reports per-source record counts for one month where
// the sources disagree. Diffs is keyed "<a>-<b>" per source pair.
type MonthlyDiscrepancy struct {
	Month  string         `json:"month"`
	Counts map[string]int `json:"counts"`
	Diffs  map[string]int `json:"diffs"`
}

// MissingSet is one of the standard missing-transaction sets relevant to
// import pipelines: records present in From but absent (by fingerprint)
// from NotIn.
type MissingSet struct {
	From    string                  `json:"from"`
	NotIn   string                  `json:"notIn"`
	Records []model.CandidateRecord `json:"records"`
}

// Count returns the size of the missing set.
func (m MissingSet) Count() int { return len(m.Records) }

// Report is the JSON-serializable aggregate handed to callers for automated
// threshold checks or human-readable summaries.
type Report struct {
	Sources         []string                     `json:"sources"`
	Totals          map[string]int               `json:"totals"`
	Pairwise        []PairMatching               `json:"pairwise"`
	Monthly         []MonthlyDiscrepancy         `json:"monthlyDiscrepancies"`
	Missing         []MissingSet                 `json:"missing"`
	Duplicates      map[string]dedupe.Duplicates `json:"duplicates"`
	Recommendations []Recommendation             `json:"recommendations"`
}

// Reporter runs multi-source reconciliation reports.
type Reporter struct {
	matchCfg   match.Config
	thresholds Thresholds
	detector   *dedupe.Detector
}

// NewReporter creates a reporter using the given matcher configuration and
// recommendation thresholds.
func NewReporter(matchCfg match.Config, thresholds Thresholds) *Reporter {
	return &Reporter{
		matchCfg:   matchCfg,
		thresholds: thresholds,
		detector:   dedupe.NewDetector(),
	}
}

// Report reconciles 2-3 named sources against each other. By convention the
// first source is the ledger and the second is the newest import source; a
// third source, when present, is an alternate export used to locate
// end-to-end data loss.
func (r *Reporter) Report(sources []NamedCollection) (*Report, error) {
	if len(sources) < 2 {
		return nil, fmt.Errorf("%w: got %d", common.ErrTooFewSources, len(sources))
	}
	if len(sources) > 3 {
		return nil, fmt.Errorf("%w: got %d", common.ErrTooManySources, len(sources))
	}

	rep := &Report{
		Totals:     make(map[string]int, len(sources)),
		Duplicates: make(map[string]dedupe.Duplicates, len(sources)),
	}
	for _, src := range sources {
		rep.Sources = append(rep.Sources, src.Name)
		rep.Totals[src.Name] = len(src.Records)
		rep.Duplicates[src.Name] = r.detector.FindDuplicates(src.Records)
	}

	matcher := match.NewMatcher(r.matchCfg)
	for i := 0; i < len(sources); i++ {
		for j := i + 1; j < len(sources); j++ {
			rep.Pairwise = append(rep.Pairwise, pairSummary(matcher, sources[j], sources[i]))
		}
	}

	rep.Monthly = monthlyDiscrepancies(sources)
	rep.Missing = missingSets(sources)
	rep.Recommendations = r.recommendations(rep)

	slog.Info("Reconciliation report generated",
		"sources", rep.Sources,
		"pairs", len(rep.Pairwise),
		"discrepant_months", len(rep.Monthly),
		"recommendations", len(rep.Recommendations))

	return rep, nil
}

// pairSummary reconciles source b's records (incoming) against source a's
// (existing) and tallies the outcome.
func pairSummary(matcher *match.Matcher, b, a NamedCollection) PairMatching {
	res := matcher.Reconcile(b.Records, a.Records)

	p := PairMatching{
		SourceA:     a.Name,
		SourceB:     b.Name,
		OnlyInA:     len(res.OnlyExisting),
		OnlyInB:     len(res.OnlyIncoming),
		Suggestions: res.Suggestions,
	}
	for _, s := range res.Skipped {
		// Skip reasons are prefixed by which side the record came from.
		if len(s.Reason) >= 9 && s.Reason[:9] == "incoming:" {
			p.SkippedB++
		} else {
			p.SkippedA++
		}
	}
	for _, s := range res.Suggestions {
		if s.IsNew {
			continue
		}
		p.Matched++
		switch s.Tier() {
		case model.TierHigh:
			p.HighTier++
		case model.TierMedium:
			p.MediumTier++
		default:
			p.LowTier++
		}
	}
	return p
}

// monthlyDiscrepancies buckets every source by month and keeps the months
// where counts disagree.
func monthlyDiscrepancies(sources []NamedCollection) []MonthlyDiscrepancy {
	months := make(map[string]map[string]int)
	for _, src := range sources {
		for _, rec := range src.Records {
			if rec.Date.IsZero() {
				continue
			}
			m := rec.Month()
			if months[m] == nil {
				months[m] = make(map[string]int, len(sources))
			}
			months[m][src.Name]++
		}
	}

	keys := make([]string, 0, len(months))
	for m := range months {
		keys = append(keys, m)
	}
	sort.Strings(keys)

	var out []MonthlyDiscrepancy
	for _, m := range keys {
		counts := months[m]
		diffs := make(map[string]int)
		disagree := false
		for i := 0; i < len(sources); i++ {
			for j := i + 1; j < len(sources); j++ {
				a, b := sources[i].Name, sources[j].Name
				d := counts[a] - counts[b]
				diffs[a+"-"+b] = d
				if d != 0 {
					disagree = true
				}
			}
		}
		if !disagree {
			continue
		}
		// Absent sources count as zero for the month.
		full := make(map[string]int, len(sources))
		for _, src := range sources {
			full[src.Name] = counts[src.Name]
		}
		out = append(out, MonthlyDiscrepancy{Month: m, Counts: full, Diffs: diffs})
	}
	return out
}

// missingSets computes the standard fingerprint-membership sets: what the
// import pipeline dropped, what only the ledger has, and (with a third
// source) what the alternate export lost.
func missingSets(sources []NamedCollection) []MissingSet {
	fingerprints := make([]map[string]struct{}, len(sources))
	for i, src := range sources {
		fingerprints[i] = make(map[string]struct{}, len(src.Records))
		for _, rec := range src.Records {
			fingerprints[i][canonical.Fingerprint(rec)] = struct{}{}
		}
	}

	notIn := func(from, in int) MissingSet {
		set := MissingSet{From: sources[from].Name, NotIn: sources[in].Name}
		for _, rec := range sources[from].Records {
			if _, ok := fingerprints[in][canonical.Fingerprint(rec)]; !ok {
				set.Records = append(set.Records, rec)
			}
		}
		return set
	}

	// Ledger is source 0, the newest import source is source 1.
	sets := []MissingSet{
		notIn(1, 0), // likely import failure
		notIn(0, 1), // likely manual entry or bug
	}
	if len(sources) == 3 {
		sets = append(sets,
			notIn(2, 1), // missing from the alternate export
			notIn(2, 0), // end-to-end missing
		)
	}
	return sets
}

// recommendations ranks findings against the configured thresholds.
func (r *Reporter) recommendations(rep *Report) []Recommendation {
	t := r.thresholds
	var recs []Recommendation

	if len(rep.Missing) > 0 && rep.Missing[0].Count() >= t.ImportFailure {
		set := rep.Missing[0]
		recs = append(recs, Recommendation{
			Severity: SeverityCritical,
			Issue:    fmt.Sprintf("%d records in %s failed to reach %s", set.Count(), set.From, set.NotIn),
			Action:   "Re-run the import or investigate import failures",
			Examples: capExamples(set.Records, t.MaxExamples),
		})
	}

	if len(rep.Missing) > 1 && rep.Missing[1].Count() >= t.ManualEntry {
		set := rep.Missing[1]
		recs = append(recs, Recommendation{
			Severity: SeverityHigh,
			Issue:    fmt.Sprintf("%d records in %s are not in %s", set.Count(), set.From, set.NotIn),
			Action:   "Investigate how these records entered the ledger",
			Examples: capExamples(set.Records, t.MaxExamples),
		})
	}

	if len(rep.Missing) > 2 && rep.Missing[2].Count() > t.ExportLoss {
		set := rep.Missing[2]
		recs = append(recs, Recommendation{
			Severity: SeverityHigh,
			Issue:    fmt.Sprintf("%d records in %s are missing from %s", set.Count(), set.From, set.NotIn),
			Action:   "Review the export process for data loss",
			Examples: capExamples(set.Records, t.MaxExamples),
		})
	}

	for _, name := range rep.Sources {
		dups := rep.Duplicates[name]
		if len(dups.Exact) > 0 {
			recs = append(recs, Recommendation{
				Severity: SeverityHigh,
				Issue:    fmt.Sprintf("found %d exact duplicate group(s) in %s", len(dups.Exact), name),
				Action:   "Review and remove duplicate entries before importing",
				Examples: capExamples(sampleRecords(dups.Exact), t.MaxExamples),
			})
		}
		if len(dups.Near) > t.NearDuplicates {
			recs = append(recs, Recommendation{
				Severity: SeverityMedium,
				Issue:    fmt.Sprintf("found %d near-duplicate group(s) in %s (same date/amount, different description)", len(dups.Near), name),
				Action:   "Manual review recommended; these could be legitimate recurring charges or entry errors",
				Examples: capExamples(sampleRecords(dups.WorstNear(3)), t.MaxExamples),
			})
		}
	}

	if len(rep.Monthly) > t.DiscrepantMonths {
		recs = append(recs, Recommendation{
			Severity: SeverityMedium,
			Issue:    fmt.Sprintf("%d months have count discrepancies between sources", len(rep.Monthly)),
			Action:   "Manual review of the worst months recommended",
		})
	}

	if len(recs) == 0 {
		recs = append(recs, Recommendation{
			Severity: SeverityLow,
			Issue:    "sources are consistent",
			Action:   "No action required",
		})
	}

	return recs
}

func capExamples(records []model.CandidateRecord, n int) []model.CandidateRecord {
	if len(records) <= n {
		return append([]model.CandidateRecord(nil), records...)
	}
	return append([]model.CandidateRecord(nil), records[:n]...)
}

func sampleRecords(groups []dedupe.Group) []model.CandidateRecord {
	out := make([]model.CandidateRecord, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Sample)
	}
	return out
}
