package ingest

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ledgerlab/reconcile/internal/model"
)

type jsonRecord struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Kind        string  `json:"kind"`
	SourceRef   string  `json:"sourceRef"`
}

// ReadJSON reads a JSON array of records. Entries that cannot be turned into
// a valid record are reported as skipped; a document that is not valid JSON
// at all is an error.
func ReadJSON(r io.Reader) ([]model.CandidateRecord, []model.SkippedRecord, error) {
	var raw []jsonRecord
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("failed to decode JSON records: %w", err)
	}

	records := make([]model.CandidateRecord, 0, len(raw))
	var skipped []model.SkippedRecord

	for i, jr := range raw {
		rec := model.CandidateRecord{
			Description: jr.Description,
			Amount:      jr.Amount,
			Currency:    jr.Currency,
			SourceRef:   jr.SourceRef,
		}
		if rec.SourceRef == "" {
			rec.SourceRef = fmt.Sprintf("json:%d", i)
		}

		date, err := parseDate(jr.Date)
		if err != nil {
			skipped = append(skipped, model.SkippedRecord{Record: rec, Index: i, Reason: err.Error()})
			continue
		}
		rec.Date = date

		kind, err := parseKind(jr.Kind)
		if err != nil {
			skipped = append(skipped, model.SkippedRecord{Record: rec, Index: i, Reason: err.Error()})
			continue
		}
		rec.Kind = kind

		if err := rec.Validate(); err != nil {
			skipped = append(skipped, model.SkippedRecord{Record: rec, Index: i, Reason: err.Error()})
			continue
		}
		records = append(records, rec)
	}

	return records, skipped, nil
}
