// Package dedupe finds duplicate candidate records within a single batch:
// exact duplicates by fingerprint and near duplicates sharing a canonical key
// with differing descriptions.
package dedupe

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/ledgerlab/reconcile/internal/canonical"
	"github.com/ledgerlab/reconcile/internal/model"
)

// Group is a set of records believed to describe the same event. Members
// keep their full record so callers can decide and act without re-querying.
type Group struct {
	// Key is the fingerprint (exact groups) or canonical key (near groups)
	// the members share.
	Key string `json:"key"`

	// Sample is one representative member for display.
	Sample model.CandidateRecord `json:"sample"`

	// Members are all records in the group, in input order.
	Members []model.CandidateRecord `json:"members"`
}

// Duplicates is the result of a single-source scan.
type Duplicates struct {
	// Exact groups share a fingerprint: duplicates by definition.
	Exact []Group `json:"exact"`

	// Near groups share date, amount, and currency but differ in wording.
	// These need human judgment: a recurring charge and a miskeyed duplicate
	// look identical here.
	Near []Group `json:"near"`

	// Skipped are malformed records excluded from grouping.
	Skipped []model.SkippedRecord `json:"skipped,omitempty"`
}

// Detector scans one collection of records for duplicates.
type Detector struct{}

// NewDetector creates a duplicate detector.
func NewDetector() *Detector {
	return &Detector{}
}

// FindDuplicates groups a batch by fingerprint and by canonical key. Groups
// come back ordered by first appearance, so equal inputs produce equal
// output regardless of how the caller assembled the batch.
func (d *Detector) FindDuplicates(records []model.CandidateRecord) Duplicates {
	var result Duplicates

	byFingerprint := make(map[string][]model.CandidateRecord)
	byKey := make(map[string][]model.CandidateRecord)
	var fingerprintOrder, keyOrder []string

	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			result.Skipped = append(result.Skipped, model.SkippedRecord{
				Record: rec,
				Index:  i,
				Reason: fmt.Sprintf("%v", err),
			})
			continue
		}

		c := canonical.Canonicalize(rec)
		if _, seen := byFingerprint[c.Fingerprint]; !seen {
			fingerprintOrder = append(fingerprintOrder, c.Fingerprint)
		}
		byFingerprint[c.Fingerprint] = append(byFingerprint[c.Fingerprint], rec)

		if _, seen := byKey[c.Key]; !seen {
			keyOrder = append(keyOrder, c.Key)
		}
		byKey[c.Key] = append(byKey[c.Key], rec)
	}

	for _, fp := range fingerprintOrder {
		members := byFingerprint[fp]
		if len(members) < 2 {
			continue
		}
		result.Exact = append(result.Exact, Group{
			Key:     fp,
			Sample:  members[0],
			Members: members,
		})
	}

	for _, key := range keyOrder {
		members := byKey[key]
		if len(members) < 2 {
			continue
		}

		distinct := make(map[string]struct{}, len(members))
		for _, rec := range members {
			distinct[canonical.Normalize(rec.Description)] = struct{}{}
		}
		if len(distinct) < 2 {
			continue
		}

		result.Near = append(result.Near, Group{
			Key:     key,
			Sample:  members[0],
			Members: members,
		})
	}

	slog.Debug("Duplicate scan complete",
		"records", len(records),
		"exact_groups", len(result.Exact),
		"near_groups", len(result.Near),
		"skipped", len(result.Skipped))

	return result
}

// AffectedCount returns how many records sit inside exact-duplicate groups.
func (d Duplicates) AffectedCount() int {
	total := 0
	for _, g := range d.Exact {
		total += len(g.Members)
	}
	return total
}

// sortGroupsBySize is used by reporting call sites that want the worst
// groups first.
func sortGroupsBySize(groups []Group) {
	sort.SliceStable(groups, func(a, b int) bool {
		return len(groups[a].Members) > len(groups[b].Members)
	})
}

// WorstNear returns up to n near-duplicate groups ordered by member count.
func (d Duplicates) WorstNear(n int) []Group {
	groups := append([]Group(nil), d.Near...)
	sortGroupsBySize(groups)
	if len(groups) > n {
		groups = groups[:n]
	}
	return groups
}
