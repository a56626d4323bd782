package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ledgerlab/reconcile/internal/model"
)

// Recognized header names per column, lowercased.
var csvColumns = map[string][]string{
	"date":        {"date", "transaction date", "posted"},
	"description": {"description", "memo", "narrative", "details", "payee"},
	"amount":      {"amount", "value", "total"},
	"currency":    {"currency", "ccy", "currency code"},
	"kind":        {"kind", "type", "direction"},
}

// ReadCSV reads records from a headered CSV export. Column order is free;
// headers are matched case-insensitively against a set of common names. Rows
// with unparsable fields are skipped with a reason rather than failing the
// file.
func ReadCSV(r io.Reader) ([]model.CandidateRecord, []model.SkippedRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, nil, err
	}

	var records []model.CandidateRecord
	var skipped []model.SkippedRecord

	for rowIdx := 0; ; rowIdx++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped = append(skipped, model.SkippedRecord{
				Index:  rowIdx,
				Reason: fmt.Sprintf("unreadable row: %v", err),
			})
			continue
		}

		rec, reason := parseCSVRow(row, cols, rowIdx)
		if reason != "" {
			skipped = append(skipped, model.SkippedRecord{Record: rec, Index: rowIdx, Reason: reason})
			continue
		}
		records = append(records, rec)
	}

	return records, skipped, nil
}

func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		for field, aliases := range csvColumns {
			if _, taken := cols[field]; taken {
				continue
			}
			for _, alias := range aliases {
				if name == alias {
					cols[field] = i
					break
				}
			}
		}
	}

	for _, required := range []string{"date", "description", "amount", "currency"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("CSV header is missing a %s column", required)
		}
	}
	return cols, nil
}

func parseCSVRow(row []string, cols map[string]int, rowIdx int) (model.CandidateRecord, string) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := model.CandidateRecord{
		Description: field("description"),
		Currency:    strings.ToUpper(field("currency")),
		SourceRef:   fmt.Sprintf("csv:%d", rowIdx+2),
	}

	date, err := parseDate(field("date"))
	if err != nil {
		return rec, err.Error()
	}
	rec.Date = date

	amountText := strings.ReplaceAll(field("amount"), ",", "")
	amount, err := strconv.ParseFloat(amountText, 64)
	if err != nil {
		return rec, fmt.Sprintf("unparsable amount %q", field("amount"))
	}

	if amount < 0 {
		amount = -amount
	}
	rec.Amount = amount

	// Direction defaults to expense; a kind column overrides.
	kind := model.KindExpense
	if kindText := field("kind"); kindText != "" {
		parsed, err := parseKind(kindText)
		if err != nil {
			return rec, err.Error()
		}
		kind = parsed
	}
	rec.Kind = kind

	if err := rec.Validate(); err != nil {
		return rec, err.Error()
	}
	return rec, ""
}
