// Package queue projects per-statement match suggestions into a paginated,
// filterable review queue of decisions awaiting human approval or rejection.
package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/ledgerlab/reconcile/internal/model"
)

// Filter wildcard accepted by every enumerated filter field.
const FilterAll = "all"

// Pagination bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// StatementSuggestions is the suggestion batch produced for one statement
// run, in the order the matcher emitted it. Statement order plus suggestion
// index is the queue's stable sort key.
type StatementSuggestions struct {
	StatementID string                  `json:"statementId"`
	Suggestions []model.MatchSuggestion `json:"suggestions"`
}

// Filters narrows the queue. Zero values mean "no restriction".
type Filters struct {
	// Status is pending, approved, rejected, or all.
	Status string

	// Currency restricts to one currency code; empty or all means any.
	Currency string

	// Tier restricts to one confidence tier (high/medium/low/none).
	Tier string

	// Search is a case-insensitive substring match over the record
	// description and the statement id.
	Search string

	// From and To bound the record date, inclusive. Zero times are open.
	From time.Time
	To   time.Time
}

// Page selects an offset-based page of the filtered queue.
type Page struct {
	Number int
	Limit  int
}

// Item is one reviewable entry in the queue.
type Item struct {
	// ID addresses the suggestion across runs: statement id plus stable
	// suggestion index.
	ID string `json:"id"`

	StatementID string                 `json:"statementId"`
	Index       int                    `json:"index"`
	Record      model.CandidateRecord  `json:"record"`
	Matched     *model.CandidateRecord `json:"matched,omitempty"`

	Confidence int                    `json:"confidence"`
	Tier       model.ConfidenceTier   `json:"tier"`
	Reasons    []string               `json:"reasons"`
	IsNew      bool                   `json:"isNew"`
	Status     model.SuggestionStatus `json:"status"`
}

// Stats summarizes the filtered set, computed before pagination so UI
// summaries reflect the active filter rather than the current page.
type Stats struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	High    int `json:"highConfidence"`
	Medium  int `json:"mediumConfidence"`
	Low     int `json:"lowConfidence"`
}

// QueuePage is the projection response.
type QueuePage struct {
	Items   []Item `json:"items"`
	HasMore bool   `json:"hasMore"`
	Total   int    `json:"total"`
	Stats   Stats  `json:"stats"`
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
}

// SuggestionID builds the stable identity of one suggestion.
func SuggestionID(statementID string, index int) string {
	return fmt.Sprintf("%s:%d", statementID, index)
}

// ApplyStatuses overlays previously persisted human decisions onto freshly
// produced suggestions, keyed by suggestion identity. A stored non-pending
// status is authoritative: re-running the engine never flips an approved or
// rejected suggestion back to pending.
func ApplyStatuses(statements []StatementSuggestions, prior map[string]model.SuggestionStatus) {
	for si := range statements {
		stmt := &statements[si]
		for i := range stmt.Suggestions {
			status, ok := prior[SuggestionID(stmt.StatementID, i)]
			if ok && status != model.StatusPending {
				stmt.Suggestions[i].Status = status
			}
		}
	}
}

// Projector turns suggestion batches into queue pages.
type Projector struct{}

// NewProjector creates a projector.
func NewProjector() *Projector {
	return &Projector{}
}

// Project filters, counts, and paginates the suggestions. Ordering is the
// statements' natural order then suggestion index, so identical inputs
// produce identical pages and page boundaries never shift between requests.
func (p *Projector) Project(statements []StatementSuggestions, f Filters, page Page) QueuePage {
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Limit < 1 {
		page.Limit = DefaultLimit
	}
	if page.Limit > MaxLimit {
		page.Limit = MaxLimit
	}

	var filtered []Item
	for _, stmt := range statements {
		for i, s := range stmt.Suggestions {
			item := toItem(stmt.StatementID, i, s)
			if p.keep(item, f) {
				filtered = append(filtered, item)
			}
		}
	}

	stats := Stats{Total: len(filtered)}
	for _, item := range filtered {
		if item.Status == model.StatusPending {
			stats.Pending++
		}
		switch item.Tier {
		case model.TierHigh:
			stats.High++
		case model.TierMedium:
			stats.Medium++
		default:
			stats.Low++
		}
	}

	offset := (page.Number - 1) * page.Limit
	end := offset + page.Limit
	if offset > len(filtered) {
		offset = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return QueuePage{
		Items:   filtered[offset:end],
		HasMore: (page.Number-1)*page.Limit+page.Limit < len(filtered),
		Total:   len(filtered),
		Stats:   stats,
		Page:    page.Number,
		Limit:   page.Limit,
	}
}

func toItem(statementID string, index int, s model.MatchSuggestion) Item {
	item := Item{
		ID:          SuggestionID(statementID, index),
		StatementID: statementID,
		Index:       index,
		Record:      s.Record,
		Confidence:  s.Confidence(),
		Tier:        s.Tier(),
		Reasons:     s.Reasons,
		IsNew:       s.IsNew,
		Status:      s.Status,
	}
	if s.Candidate != nil {
		existing := s.Candidate.Existing
		item.Matched = &existing
	}
	return item
}

func (p *Projector) keep(item Item, f Filters) bool {
	if f.Status != "" && f.Status != FilterAll && string(item.Status) != f.Status {
		return false
	}
	if f.Currency != "" && f.Currency != FilterAll && !strings.EqualFold(item.Record.Currency, f.Currency) {
		return false
	}
	if f.Tier != "" && f.Tier != FilterAll && string(item.Tier) != f.Tier {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(item.Record.Description), needle) &&
			!strings.Contains(strings.ToLower(item.StatementID), needle) {
			return false
		}
	}
	if !f.From.IsZero() && item.Record.Date.Before(truncateDay(f.From)) {
		return false
	}
	if !f.To.IsZero() && item.Record.Date.After(endOfDay(f.To)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}
