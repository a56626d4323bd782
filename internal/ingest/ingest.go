// Package ingest reads candidate records from the supported interchange
// formats. Row-level problems never abort a file: unusable rows come back as
// skipped records with a reason, and only a structurally unreadable input is
// an error.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledgerlab/reconcile/internal/common"
	"github.com/ledgerlab/reconcile/internal/model"
)

// ReadPath reads a record file, choosing the format from its extension.
func ReadPath(path string) ([]model.CandidateRecord, []model.SkippedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadJSON(f)
	case ".csv":
		return ReadCSV(f)
	case ".ofx", ".qfx":
		return NewOFXReader().Read(f)
	default:
		return nil, nil, fmt.Errorf("%w: %q", common.ErrUnknownFormat, filepath.Ext(path))
	}
}

// Date layouts accepted across formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"02/01/2006",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseKind(s string) (model.RecordKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "expense", "debit":
		return model.KindExpense, nil
	case "income", "credit":
		return model.KindIncome, nil
	default:
		return "", fmt.Errorf("unknown kind %q", s)
	}
}

// validateRows splits rows into usable records and skipped rows. Indexes in
// the skip reports refer to positions in the input slice.
func validateRows(rows []model.CandidateRecord) ([]model.CandidateRecord, []model.SkippedRecord) {
	records := make([]model.CandidateRecord, 0, len(rows))
	var skipped []model.SkippedRecord
	for i, r := range rows {
		if err := r.Validate(); err != nil {
			skipped = append(skipped, model.SkippedRecord{Record: r, Index: i, Reason: err.Error()})
			continue
		}
		records = append(records, r)
	}
	return records, skipped
}
