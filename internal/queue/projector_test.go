package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlab/reconcile/internal/model"
)

func suggestion(date, description string, confidence int, status model.SuggestionStatus) model.MatchSuggestion {
	d, _ := time.Parse("2006-01-02", date)
	rec := model.CandidateRecord{
		Date:        d,
		Description: description,
		Amount:      100,
		Currency:    "THB",
		Kind:        model.KindExpense,
	}

	sug := model.MatchSuggestion{Record: rec, Status: status}
	if confidence > 0 {
		sug.Candidate = &model.MatchCandidate{
			Incoming:   rec,
			Existing:   rec,
			Confidence: confidence,
		}
	} else {
		sug.IsNew = true
	}
	return sug
}

func testBatches() []StatementSuggestions {
	return []StatementSuggestions{
		{
			StatementID: "stmt-a",
			Suggestions: []model.MatchSuggestion{
				suggestion("2026-03-01", "Netflix", 95, model.StatusPending),
				suggestion("2026-03-02", "Coffee", 70, model.StatusApproved),
				suggestion("2026-03-03", "Unknown vendor", 0, model.StatusPending),
			},
		},
		{
			StatementID: "stmt-b",
			Suggestions: []model.MatchSuggestion{
				suggestion("2026-03-10", "Grab ride", 60, model.StatusPending),
			},
		},
	}
}

func TestProjectUnfiltered(t *testing.T) {
	page := NewProjector().Project(testBatches(), Filters{}, Page{})

	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 4, page.Stats.Total)
	assert.Equal(t, 3, page.Stats.Pending)
	assert.Equal(t, 1, page.Stats.High)
	assert.Equal(t, 2, page.Stats.Medium)
	assert.Equal(t, 1, page.Stats.Low)
	assert.False(t, page.HasMore)

	// Statement order, then suggestion index.
	require.Len(t, page.Items, 4)
	assert.Equal(t, "stmt-a:0", page.Items[0].ID)
	assert.Equal(t, "stmt-a:1", page.Items[1].ID)
	assert.Equal(t, "stmt-a:2", page.Items[2].ID)
	assert.Equal(t, "stmt-b:0", page.Items[3].ID)
}

func TestProjectFilters(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		wantIDs []string
	}{
		{
			name:    "status pending",
			filters: Filters{Status: "pending"},
			wantIDs: []string{"stmt-a:0", "stmt-a:2", "stmt-b:0"},
		},
		{
			name:    "status all",
			filters: Filters{Status: FilterAll},
			wantIDs: []string{"stmt-a:0", "stmt-a:1", "stmt-a:2", "stmt-b:0"},
		},
		{
			name:    "tier high",
			filters: Filters{Tier: "high"},
			wantIDs: []string{"stmt-a:0"},
		},
		{
			name:    "tier none",
			filters: Filters{Tier: "none"},
			wantIDs: []string{"stmt-a:2"},
		},
		{
			name:    "search matches description",
			filters: Filters{Search: "netflix"},
			wantIDs: []string{"stmt-a:0"},
		},
		{
			name:    "search matches statement id",
			filters: Filters{Search: "stmt-b"},
			wantIDs: []string{"stmt-b:0"},
		},
		{
			name: "date range",
			filters: Filters{
				From: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
			},
			wantIDs: []string{"stmt-a:1", "stmt-a:2"},
		},
		{
			name:    "currency mismatch excludes all",
			filters: Filters{Currency: "USD"},
			wantIDs: nil,
		},
	}

	projector := NewProjector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := projector.Project(testBatches(), tt.filters, Page{})

			var ids []string
			for _, item := range page.Items {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestProjectHonorsStampedTiers(t *testing.T) {
	// A scorer configured with a raised high threshold stamps a 95 as medium;
	// the projection must bucket by the stamp, not by the default cut points.
	sug := suggestion("2026-03-01", "Netflix", 95, model.StatusPending)
	sug.Candidate.Tier = model.TierMedium
	batches := []StatementSuggestions{{StatementID: "stmt-a", Suggestions: []model.MatchSuggestion{sug}}}

	page := NewProjector().Project(batches, Filters{Tier: "medium"}, Page{})

	require.Len(t, page.Items, 1)
	assert.Equal(t, model.TierMedium, page.Items[0].Tier)
	assert.Equal(t, 0, page.Stats.High)
	assert.Equal(t, 1, page.Stats.Medium)
}

func TestProjectStatsCoverFilteredSetNotPage(t *testing.T) {
	page := NewProjector().Project(testBatches(), Filters{}, Page{Number: 1, Limit: 2})

	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 4, page.Stats.Total)
	assert.Equal(t, 3, page.Stats.Pending)
}

func TestProjectPagination(t *testing.T) {
	projector := NewProjector()

	first := projector.Project(testBatches(), Filters{}, Page{Number: 1, Limit: 3})
	require.Len(t, first.Items, 3)
	assert.True(t, first.HasMore)

	second := projector.Project(testBatches(), Filters{}, Page{Number: 2, Limit: 3})
	require.Len(t, second.Items, 1)
	assert.False(t, second.HasMore)
	assert.Equal(t, "stmt-b:0", second.Items[0].ID)

	beyond := projector.Project(testBatches(), Filters{}, Page{Number: 5, Limit: 3})
	assert.Empty(t, beyond.Items)
	assert.False(t, beyond.HasMore)
}

func TestProjectClampsPageArguments(t *testing.T) {
	page := NewProjector().Project(testBatches(), Filters{}, Page{Number: -2, Limit: 5000})

	assert.Equal(t, 1, page.Page)
	assert.Equal(t, MaxLimit, page.Limit)
}

func TestProjectIdempotent(t *testing.T) {
	projector := NewProjector()
	filters := Filters{Status: "pending"}

	first := projector.Project(testBatches(), filters, Page{Number: 1, Limit: 2})
	for i := 0; i < 5; i++ {
		again := projector.Project(testBatches(), filters, Page{Number: 1, Limit: 2})
		assert.Equal(t, first, again)
	}
}

func TestApplyStatuses(t *testing.T) {
	batches := testBatches()

	ApplyStatuses(batches, map[string]model.SuggestionStatus{
		"stmt-a:0": model.StatusRejected,
		"stmt-a:1": model.StatusPending, // never downgrades
		"stmt-b:0": model.StatusApproved,
		"stmt-x:9": model.StatusApproved, // unknown ids ignored
	})

	assert.Equal(t, model.StatusRejected, batches[0].Suggestions[0].Status)
	assert.Equal(t, model.StatusApproved, batches[0].Suggestions[1].Status)
	assert.Equal(t, model.StatusApproved, batches[1].Suggestions[0].Status)
}
