package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlab/reconcile/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testSuggestion(date, description string, confidence int) model.MatchSuggestion {
	d, _ := time.Parse("2006-01-02", date)
	rec := model.CandidateRecord{
		Date:        d,
		Description: description,
		Amount:      100,
		Currency:    "THB",
		Kind:        model.KindExpense,
		SourceRef:   "csv:2",
	}

	sug := model.MatchSuggestion{
		Record:  rec,
		Reasons: []string{"date matches exactly", "amount matches exactly"},
		Status:  model.StatusPending,
	}
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

func TestMigrateIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Migrate(context.Background()))
}

func TestSaveAndGetSuggestions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := NewRun("stmt-a")
	run.Incoming = 2
	require.NoError(t, store.SaveRun(ctx, run))

	suggestions := []model.MatchSuggestion{
		testSuggestion("2026-03-14", "Netflix", 95),
		testSuggestion("2026-03-15", "Unknown vendor", 0),
	}
	require.NoError(t, store.SaveSuggestions(ctx, "stmt-a", run.ID, suggestions))

	loaded, err := store.GetSuggestions(ctx, "stmt-a")
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, "Netflix", loaded[0].Record.Description)
	assert.Equal(t, "2026-03-14", loaded[0].Record.DateString())
	assert.Equal(t, "csv:2", loaded[0].Record.SourceRef)
	assert.Equal(t, model.StatusPending, loaded[0].Status)
	require.NotNil(t, loaded[0].Candidate)
	assert.Equal(t, 95, loaded[0].Candidate.Confidence)
	assert.Equal(t, suggestions[0].Reasons, loaded[0].Reasons)

	assert.True(t, loaded[1].IsNew)
	assert.Nil(t, loaded[1].Candidate)
}

func TestSaveSuggestionsPreservesDecisions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := NewRun("stmt-a")
	require.NoError(t, store.SaveRun(ctx, run))

	suggestions := []model.MatchSuggestion{
		testSuggestion("2026-03-14", "Netflix", 95),
		testSuggestion("2026-03-15", "Coffee", 80),
	}
	require.NoError(t, store.SaveSuggestions(ctx, "stmt-a", run.ID, suggestions))
	require.NoError(t, store.UpdateStatus(ctx, "stmt-a:0", model.StatusApproved))

	// Re-running the statement must not reset the approved suggestion.
	rerun := NewRun("stmt-a")
	require.NoError(t, store.SaveRun(ctx, rerun))
	suggestions[0].Candidate.Confidence = 97
	require.NoError(t, store.SaveSuggestions(ctx, "stmt-a", rerun.ID, suggestions))

	loaded, err := store.GetSuggestions(ctx, "stmt-a")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, model.StatusApproved, loaded[0].Status)
	assert.Equal(t, 97, loaded[0].Candidate.Confidence)
	assert.Equal(t, model.StatusPending, loaded[1].Status)
}

func TestUpdateStatusOneWay(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := NewRun("stmt-a")
	require.NoError(t, store.SaveRun(ctx, run))
	require.NoError(t, store.SaveSuggestions(ctx, "stmt-a", run.ID, []model.MatchSuggestion{
		testSuggestion("2026-03-14", "Netflix", 95),
	}))

	require.NoError(t, store.UpdateStatus(ctx, "stmt-a:0", model.StatusRejected))

	t.Run("decided suggestion cannot flip", func(t *testing.T) {
		err := store.UpdateStatus(ctx, "stmt-a:0", model.StatusApproved)
		assert.ErrorIs(t, err, ErrNotPending)
	})

	t.Run("cannot reset to pending", func(t *testing.T) {
		err := store.UpdateStatus(ctx, "stmt-a:0", model.StatusPending)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("unknown suggestion", func(t *testing.T) {
		err := store.UpdateStatus(ctx, "stmt-z:7", model.StatusApproved)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestGetAllBatchesAndStatuses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	runA := NewRun("stmt-a")
	require.NoError(t, store.SaveRun(ctx, runA))
	require.NoError(t, store.SaveSuggestions(ctx, "stmt-a", runA.ID, []model.MatchSuggestion{
		testSuggestion("2026-03-14", "Netflix", 95),
		testSuggestion("2026-03-15", "Coffee", 80),
	}))

	runB := NewRun("stmt-b")
	require.NoError(t, store.SaveRun(ctx, runB))
	require.NoError(t, store.SaveSuggestions(ctx, "stmt-b", runB.ID, []model.MatchSuggestion{
		testSuggestion("2026-03-20", "Grab ride", 0),
	}))

	require.NoError(t, store.UpdateStatus(ctx, "stmt-a:1", model.StatusApproved))

	batches, err := store.GetAllBatches(ctx)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "stmt-a", batches[0].StatementID)
	assert.Len(t, batches[0].Suggestions, 2)
	assert.Equal(t, "stmt-b", batches[1].StatementID)
	assert.Len(t, batches[1].Suggestions, 1)

	statuses, err := store.GetStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, statuses["stmt-a:1"])
	assert.Equal(t, model.StatusPending, statuses["stmt-b:0"])
}

func TestSaveSuggestionsValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("empty statement id", func(t *testing.T) {
		err := store.SaveSuggestions(ctx, "", "run", []model.MatchSuggestion{testSuggestion("2026-03-14", "x", 1)})
		assert.ErrorIs(t, err, ErrEmptyString)
	})

	t.Run("no suggestions", func(t *testing.T) {
		err := store.SaveSuggestions(ctx, "stmt-a", "run", nil)
		assert.ErrorIs(t, err, ErrEmptySlice)
	})
}
