// Package model defines the data contracts shared by the reconciliation engine:
// candidate records handed in by collaborators, scored match candidates, and
// the reviewable match suggestions handed back out.
package model

import (
	"fmt"
	"time"
)

// RecordKind distinguishes money leaving the ledger from money entering it.
type RecordKind string

const (
	// KindExpense marks an outgoing transaction.
	KindExpense RecordKind = "expense"
	// KindIncome marks an incoming transaction.
	KindIncome RecordKind = "income"
)

// CandidateRecord is a transaction-shaped observation from any origin: a
// parsed statement, a ledger export, an email extraction, or manual entry.
// Records are immutable once produced by their origin; the engine never
// mutates them, including for cross-currency comparison.
type CandidateRecord struct {
	// Date is the calendar day of the transaction. The time component is
	// ignored everywhere; comparisons are day-granular.
	Date time.Time `json:"date"`

	// Description is the free-text description as observed at the origin.
	Description string `json:"description"`

	// Amount is the non-negative transaction amount in Currency.
	Amount float64 `json:"amount"`

	// Currency is the ISO-like 3-letter currency code (e.g. "THB", "USD").
	Currency string `json:"currency"`

	// Kind is expense or income.
	Kind RecordKind `json:"kind"`

	// SourceRef is an opaque reference back to the record's origin: a ledger
	// row id, a CSV line number, a statement upload id. May be empty.
	SourceRef string `json:"sourceRef,omitempty"`
}

// Validate reports why a record is malformed, or nil if it is usable.
// Malformed records are excluded from matching with a reason, never fatal.
func (r CandidateRecord) Validate() error {
	if r.Date.IsZero() {
		return fmt.Errorf("record has no date")
	}
	if r.Amount < 0 {
		return fmt.Errorf("record has negative amount %.2f", r.Amount)
	}
	if len(r.Currency) != 3 {
		return fmt.Errorf("record has invalid currency code %q", r.Currency)
	}
	switch r.Kind {
	case KindExpense, KindIncome, "":
	default:
		return fmt.Errorf("record has unknown kind %q", r.Kind)
	}
	return nil
}

// Month returns the YYYY-MM bucket the record falls into.
func (r CandidateRecord) Month() string {
	return r.Date.Format("2006-01")
}

// DateString returns the canonical YYYY-MM-DD form of the record date.
func (r CandidateRecord) DateString() string {
	return r.Date.Format("2006-01-02")
}

// SkippedRecord reports a record that was excluded from processing, with the
// reason it was excluded. Callers surface these instead of receiving errors.
type SkippedRecord struct {
	Record CandidateRecord `json:"record"`
	Index  int             `json:"index"`
	Reason string          `json:"reason"`
}
