package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlab/reconcile/internal/model"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "plain date",
			input: "2026-03-14",
			want:  time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "rfc3339 truncated to day",
			input: "2026-03-14T17:30:00Z",
			want:  time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "surrounding whitespace",
			input: "  2026-03-14  ",
			want:  time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "garbage",
			input:   "not-a-date",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadJSON(t *testing.T) {
	input := `[
		{"date": "2026-03-14", "description": "NETFLIX.COM", "amount": 419.0, "currency": "THB", "kind": "expense"},
		{"date": "2026-03-15", "description": "Salary", "amount": 50000, "currency": "THB", "kind": "income", "sourceRef": "ledger:42"},
		{"date": "bogus", "description": "broken", "amount": 1, "currency": "THB"},
		{"date": "2026-03-16", "description": "bad currency", "amount": 1, "currency": "THBX"}
	]`

	records, skipped, err := ReadJSON(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "NETFLIX.COM", records[0].Description)
	assert.Equal(t, model.KindExpense, records[0].Kind)
	assert.Equal(t, "json:0", records[0].SourceRef)
	assert.Equal(t, model.KindIncome, records[1].Kind)
	assert.Equal(t, "ledger:42", records[1].SourceRef)

	require.Len(t, skipped, 2)
	assert.Equal(t, 2, skipped[0].Index)
	assert.Contains(t, skipped[0].Reason, "date")
	assert.Equal(t, 3, skipped[1].Index)
	assert.Contains(t, skipped[1].Reason, "currency")
}

func TestReadJSONStructurallyBroken(t *testing.T) {
	_, _, err := ReadJSON(strings.NewReader(`{"not": "an array"`))
	assert.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Amount,Currency,Type",
		"2026-03-14,NETFLIX.COM,419.00,THB,expense",
		"2026-03-15,Salary,50000,THB,income",
		`2026-03-16,"Coffee, iced",-90.00,THB,`,
		"bogus,Broken row,1.00,THB,expense",
	}, "\n")

	records, skipped, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, "NETFLIX.COM", records[0].Description)
	assert.Equal(t, model.KindExpense, records[0].Kind)
	assert.Equal(t, model.KindIncome, records[1].Kind)

	// Negative amounts are folded to positive expenses.
	assert.Equal(t, "Coffee, iced", records[2].Description)
	assert.Equal(t, 90.00, records[2].Amount)
	assert.Equal(t, model.KindExpense, records[2].Kind)

	// Source refs point at 1-based file lines, counting the header.
	assert.Equal(t, "csv:2", records[0].SourceRef)

	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].Reason, "date")
}

func TestReadCSVHeaderAliases(t *testing.T) {
	input := strings.Join([]string{
		"Posted,Memo,Value,CCY",
		"2026-03-14,Coffee,90.00,thb",
	}, "\n")

	records, skipped, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Empty(t, skipped)
	require.Len(t, records, 1)
	assert.Equal(t, "Coffee", records[0].Description)
	assert.Equal(t, "THB", records[0].Currency)
}

func TestReadCSVMissingColumn(t *testing.T) {
	input := "Date,Description,Amount\n2026-03-14,Coffee,90.00\n"

	_, _, err := ReadCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "currency")
}

func TestReadOFX(t *testing.T) {
	reader := NewOFXReader()

	records, skipped, err := reader.Read(strings.NewReader(sampleOFX))
	require.NoError(t, err)
	require.Empty(t, skipped)
	require.Len(t, records, 2)

	assert.Equal(t, "STARBUCKS STORE #1234", records[0].Description)
	assert.Equal(t, 25.50, records[0].Amount)
	assert.Equal(t, model.KindExpense, records[0].Kind)
	assert.Equal(t, "USD", records[0].Currency)
	assert.Equal(t, "ofx:2024011501", records[0].SourceRef)

	assert.Equal(t, model.KindIncome, records[1].Kind)
	assert.Equal(t, 1000.00, records[1].Amount)
}

func TestPreprocessOFXFixesSGML(t *testing.T) {
	reader := NewOFXReader()

	fixed := reader.preprocessOFX("<SEVERITY>Info</SEVERITY>\n<DTSERVER\n")
	assert.Contains(t, fixed, "<SEVERITY>INFO</SEVERITY>")
	assert.Contains(t, fixed, "<DTSERVER>")
}

const sampleOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20260314120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20260301120000[0:GMT]
<DTEND>20260331120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260314120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20260315120000[0:GMT]
<TRNAMT>1000.00
<FITID>2024011502
<NAME>PAYROLL DEPOSIT
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1500.00
<DTASOF>20260331120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`
