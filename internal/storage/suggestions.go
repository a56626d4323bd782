package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerlab/reconcile/internal/model"
	"github.com/ledgerlab/reconcile/internal/queue"
)

// Run records one reconciliation of a statement against the ledger.
type Run struct {
	ID          string
	StatementID string
	Incoming    int
	Existing    int
	Matched     int
	New         int
	Skipped     int
	CreatedAt   time.Time
}

// NewRun creates a run with a fresh id.
func NewRun(statementID string) Run {
	return Run{
		ID:          uuid.NewString(),
		StatementID: statementID,
		CreatedAt:   time.Now().UTC(),
	}
}

// SaveRun persists a run summary.
func (s *SQLiteStore) SaveRun(ctx context.Context, run Run) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(run.ID, "run.ID"); err != nil {
		return err
	}
	if err := validateString(run.StatementID, "run.StatementID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, statement_id, incoming_count, existing_count, matched_count, new_count, skipped_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StatementID, run.Incoming, run.Existing, run.Matched, run.New, run.Skipped, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// SaveSuggestions persists the suggestions of one statement run. Suggestions
// are keyed by statement id and index, so re-running a statement replaces the
// engine-produced fields. A previously recorded approved or rejected status
// survives the replace; only pending rows take the incoming status.
func (s *SQLiteStore) SaveSuggestions(ctx context.Context, statementID, runID string, suggestions []model.MatchSuggestion) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(statementID, "statementID"); err != nil {
		return err
	}
	if len(suggestions) == 0 {
		return fmt.Errorf("%w: suggestions", ErrEmptySlice)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO suggestions (id, statement_id, idx, run_id, record_date, description, amount, currency, kind, source_ref, candidate, confidence, is_new, reasons, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			run_id = excluded.run_id,
			record_date = excluded.record_date,
			description = excluded.description,
			amount = excluded.amount,
			currency = excluded.currency,
			kind = excluded.kind,
			source_ref = excluded.source_ref,
			candidate = excluded.candidate,
			confidence = excluded.confidence,
			is_new = excluded.is_new,
			reasons = excluded.reasons,
			status = CASE WHEN suggestions.status != 'pending' THEN suggestions.status ELSE excluded.status END,
			updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("failed to prepare suggestion upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, sug := range suggestions {
		if err := validateStatus(sug.Status); err != nil {
			return fmt.Errorf("suggestion at index %d: %w", i, err)
		}

		var candidateJSON sql.NullString
		if sug.Candidate != nil {
			data, err := json.Marshal(sug.Candidate)
			if err != nil {
				return fmt.Errorf("failed to encode candidate at index %d: %w", i, err)
			}
			candidateJSON = sql.NullString{String: string(data), Valid: true}
		}

		reasonsJSON, err := json.Marshal(sug.Reasons)
		if err != nil {
			return fmt.Errorf("failed to encode reasons at index %d: %w", i, err)
		}

		if _, err := stmt.ExecContext(ctx,
			queue.SuggestionID(statementID, i),
			statementID, i, runID,
			sug.Record.DateString(), sug.Record.Description, sug.Record.Amount,
			sug.Record.Currency, string(sug.Record.Kind), sug.Record.SourceRef,
			candidateJSON, sug.Confidence(), sug.IsNew, string(reasonsJSON),
			string(sug.Status),
		); err != nil {
			return fmt.Errorf("failed to save suggestion at index %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit suggestions: %w", err)
	}
	return nil
}

// GetSuggestions loads the suggestions of one statement, in stable index
// order.
func (s *SQLiteStore) GetSuggestions(ctx context.Context, statementID string) ([]model.MatchSuggestion, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(statementID, "statementID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT record_date, description, amount, currency, kind, source_ref, candidate, is_new, reasons, status
		FROM suggestions
		WHERE statement_id = ?
		ORDER BY idx`, statementID)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var suggestions []model.MatchSuggestion
	for rows.Next() {
		sug, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, sug)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate suggestions: %w", err)
	}
	return suggestions, nil
}

// GetAllBatches loads every stored statement with its suggestions, ordered by
// statement id then suggestion index.
func (s *SQLiteStore) GetAllBatches(ctx context.Context) ([]queue.StatementSuggestions, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT statement_id, record_date, description, amount, currency, kind, source_ref, candidate, is_new, reasons, status
		FROM suggestions
		ORDER BY statement_id, idx`)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var batches []queue.StatementSuggestions
	for rows.Next() {
		var statementID string
		sug, err := scanSuggestionWith(rows, &statementID)
		if err != nil {
			return nil, err
		}
		if len(batches) == 0 || batches[len(batches)-1].StatementID != statementID {
			batches = append(batches, queue.StatementSuggestions{StatementID: statementID})
		}
		last := &batches[len(batches)-1]
		last.Suggestions = append(last.Suggestions, sug)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate suggestions: %w", err)
	}
	return batches, nil
}

// GetStatuses returns the review status of every stored suggestion, keyed by
// suggestion id.
func (s *SQLiteStore) GetStatuses(ctx context.Context) (map[string]model.SuggestionStatus, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, status FROM suggestions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query statuses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	statuses := make(map[string]model.SuggestionStatus)
	for rows.Next() {
		var id, status string
		if err := rows.Scan(&id, &status); err != nil {
			return nil, fmt.Errorf("failed to scan status: %w", err)
		}
		statuses[id] = model.SuggestionStatus(status)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate statuses: %w", err)
	}
	return statuses, nil
}

// UpdateStatus records a human decision on a suggestion. Transitions are
// one-way: only a pending suggestion can be approved or rejected.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, suggestionID string, status model.SuggestionStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(suggestionID, "suggestionID"); err != nil {
		return err
	}
	if err := validateStatus(status); err != nil {
		return err
	}
	if status == model.StatusPending {
		return fmt.Errorf("%w: cannot reset a suggestion to pending", ErrInvalidStatus)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE suggestions
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'pending'`,
		string(status), suggestionID)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		var current string
		err := s.db.QueryRowContext(ctx, `SELECT status FROM suggestions WHERE id = ?`, suggestionID).Scan(&current)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: %s", ErrNotFound, suggestionID)
		}
		if err != nil {
			return fmt.Errorf("failed to look up suggestion: %w", err)
		}
		return fmt.Errorf("%w: %s is %s", ErrNotPending, suggestionID, current)
	}
	return nil
}

type suggestionScanner interface {
	Scan(dest ...any) error
}

func scanSuggestion(rows suggestionScanner) (model.MatchSuggestion, error) {
	return scanSuggestionWith(rows, nil)
}

func scanSuggestionWith(rows suggestionScanner, statementID *string) (model.MatchSuggestion, error) {
	var (
		sug         model.MatchSuggestion
		dateText    string
		kind        string
		sourceRef   sql.NullString
		candidate   sql.NullString
		reasonsText sql.NullString
		status      string
	)

	dest := []any{
		&dateText, &sug.Record.Description, &sug.Record.Amount, &sug.Record.Currency,
		&kind, &sourceRef, &candidate, &sug.IsNew, &reasonsText, &status,
	}
	if statementID != nil {
		dest = append([]any{statementID}, dest...)
	}
	if err := rows.Scan(dest...); err != nil {
		return sug, fmt.Errorf("failed to scan suggestion: %w", err)
	}

	date, err := time.Parse("2006-01-02", dateText)
	if err != nil {
		return sug, fmt.Errorf("failed to parse stored date %q: %w", dateText, err)
	}
	sug.Record.Date = date
	sug.Record.Kind = model.RecordKind(kind)
	sug.Record.SourceRef = sourceRef.String
	sug.Status = model.SuggestionStatus(status)

	if candidate.Valid {
		var c model.MatchCandidate
		if err := json.Unmarshal([]byte(candidate.String), &c); err != nil {
			return sug, fmt.Errorf("failed to decode stored candidate: %w", err)
		}
		sug.Candidate = &c
	}
	if reasonsText.Valid && reasonsText.String != "" {
		if err := json.Unmarshal([]byte(reasonsText.String), &sug.Reasons); err != nil {
			return sug, fmt.Errorf("failed to decode stored reasons: %w", err)
		}
	}
	return sug, nil
}
