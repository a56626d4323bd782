package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlab/reconcile/internal/model"
)

func TestMatcherLinksObviousPair(t *testing.T) {
	matcher := NewMatcher(DefaultConfig())

	incoming := []model.CandidateRecord{
		testRecord("2026-03-14", "NETFLIX.COM", 419.00, "THB"),
	}
	existing := []model.CandidateRecord{
		testRecord("2026-03-01", "Rent", 15000.00, "THB"),
		testRecord("2026-03-14", "Netflix", 419.00, "THB"),
	}

	result := matcher.Reconcile(incoming, existing)

	require.Len(t, result.Suggestions, 1)
	sug := result.Suggestions[0]
	assert.False(t, sug.IsNew)
	require.NotNil(t, sug.Candidate)
	assert.Equal(t, 1, sug.Candidate.ExistingIndex)
	assert.Equal(t, model.StatusPending, sug.Status)
	assert.Empty(t, result.OnlyIncoming)

	// The unclaimed rent entry is reported as existing-only.
	require.Len(t, result.OnlyExisting, 1)
	assert.Equal(t, "Rent", result.OnlyExisting[0].Description)
}

func TestMatcherEachExistingClaimedOnce(t *testing.T) {
	matcher := NewMatcher(DefaultConfig())

	// Both incoming records plausibly match the single existing record; the
	// higher-confidence pairing wins and the other becomes a new record.
	incoming := []model.CandidateRecord{
		testRecord("2026-03-15", "Coffee", 90.00, "THB"),
		testRecord("2026-03-14", "Coffee", 90.00, "THB"),
	}
	existing := []model.CandidateRecord{
		testRecord("2026-03-14", "Coffee", 90.00, "THB"),
	}

	result := matcher.Reconcile(incoming, existing)

	require.Len(t, result.Suggestions, 2)
	assert.True(t, result.Suggestions[0].IsNew)
	assert.False(t, result.Suggestions[1].IsNew)
	assert.Equal(t, 100, result.Suggestions[1].Confidence())

	var joined string
	for _, r := range result.Suggestions[0].Reasons {
		joined += r + "\n"
	}
	assert.Contains(t, joined, "already claimed")
}

func TestMatcherDeterministicTieBreak(t *testing.T) {
	matcher := NewMatcher(DefaultConfig())

	incoming := []model.CandidateRecord{
		testRecord("2026-03-14", "Coffee", 90.00, "THB"),
	}
	// Identical candidates; the earliest index must win every run.
	existing := []model.CandidateRecord{
		testRecord("2026-03-14", "Coffee", 90.00, "THB"),
		testRecord("2026-03-14", "Coffee", 90.00, "THB"),
	}

	for i := 0; i < 10; i++ {
		result := matcher.Reconcile(incoming, existing)
		require.Len(t, result.Suggestions, 1)
		require.NotNil(t, result.Suggestions[0].Candidate)
		assert.Equal(t, 0, result.Suggestions[0].Candidate.ExistingIndex)

		var joined string
		for _, r := range result.Suggestions[0].Reasons {
			joined += r + "\n"
		}
		assert.Contains(t, joined, "earliest kept")
	}
}

func TestMatcherNewRecordOutsideWindow(t *testing.T) {
	matcher := NewMatcher(DefaultConfig())

	incoming := []model.CandidateRecord{
		testRecord("2026-03-14", "Coffee", 90.00, "THB"),
	}
	existing := []model.CandidateRecord{
		testRecord("2026-02-01", "Coffee", 90.00, "THB"),
	}

	result := matcher.Reconcile(incoming, existing)

	require.Len(t, result.Suggestions, 1)
	sug := result.Suggestions[0]
	assert.True(t, sug.IsNew)
	assert.Nil(t, sug.Candidate)
	require.NotEmpty(t, sug.Reasons)
	assert.Contains(t, sug.Reasons[0], "no candidates within 3-day window")
	assert.Len(t, result.OnlyIncoming, 1)
}

func TestMatcherBelowThresholdExplained(t *testing.T) {
	matcher := NewMatcher(DefaultConfig())

	// Same window but mismatched currency with no rates: capped at 50, below
	// the minimum of 55.
	incoming := []model.CandidateRecord{
		testRecord("2026-03-14", "Coffee", 90.00, "THB"),
	}
	existing := []model.CandidateRecord{
		testRecord("2026-03-14", "Coffee", 90.00, "USD"),
	}

	result := matcher.Reconcile(incoming, existing)

	require.Len(t, result.Suggestions, 1)
	sug := result.Suggestions[0]
	assert.True(t, sug.IsNew)

	var joined string
	for _, r := range sug.Reasons {
		joined += r + "\n"
	}
	assert.Contains(t, joined, "below minimum 55")
}

func TestMatcherSkipsMalformedRecords(t *testing.T) {
	matcher := NewMatcher(DefaultConfig())

	bad := model.CandidateRecord{Description: "no date", Amount: 10, Currency: "THB"}
	incoming := []model.CandidateRecord{
		bad,
		testRecord("2026-03-14", "Coffee", 90.00, "THB"),
	}
	badCurrency := testRecord("2026-03-14", "bad currency", 5, "THB")
	badCurrency.Currency = "THBX"
	existing := []model.CandidateRecord{
		testRecord("2026-03-14", "Coffee", 90.00, "THB"),
		badCurrency,
	}

	result := matcher.Reconcile(incoming, existing)

	require.Len(t, result.Skipped, 2)
	assert.Contains(t, result.Skipped[0].Reason, "incoming:")
	assert.Contains(t, result.Skipped[1].Reason, "existing:")

	// The usable pair still reconciles.
	require.Len(t, result.Suggestions, 1)
	assert.False(t, result.Suggestions[0].IsNew)
}

func TestMatcherEmptyInputs(t *testing.T) {
	matcher := NewMatcher(DefaultConfig())

	t.Run("no incoming", func(t *testing.T) {
		result := matcher.Reconcile(nil, []model.CandidateRecord{
			testRecord("2026-03-14", "Coffee", 90.00, "THB"),
		})
		assert.Empty(t, result.Suggestions)
		assert.Len(t, result.OnlyExisting, 1)
	})

	t.Run("no existing", func(t *testing.T) {
		result := matcher.Reconcile([]model.CandidateRecord{
			testRecord("2026-03-14", "Coffee", 90.00, "THB"),
		}, nil)
		require.Len(t, result.Suggestions, 1)
		assert.True(t, result.Suggestions[0].IsNew)
	})
}
