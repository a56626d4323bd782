package canonical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ledgerlab/reconcile/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases and trims",
			input: "  Starbucks Coffee  ",
			want:  "starbucks coffee",
		},
		{
			name:  "collapses internal whitespace",
			input: "NETFLIX\t\t  SUBSCRIPTION",
			want:  "netflix subscription",
		},
		{
			name:  "punctuation separates tokens",
			input: "NETFLIX.COM",
			want:  "netflix com",
		},
		{
			name:  "star prefix becomes separator",
			input: "GRAB*TRANSPORT",
			want:  "grab transport",
		},
		{
			name:  "digits are kept",
			input: "Invoice #1002",
			want:  "invoice 1002",
		},
		{
			name:  "currency symbols are kept",
			input: "$5 latte",
			want:  "$5 latte",
		},
		{
			name:  "punctuation only normalizes to empty",
			input: "***---***",
			want:  "",
		},
		{
			name:  "empty stays empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestKey(t *testing.T) {
	rec := model.CandidateRecord{
		Date:     time.Date(2026, 3, 14, 17, 30, 0, 0, time.UTC),
		Amount:   42.5,
		Currency: "thb",
	}

	assert.Equal(t, "2026-03-14|42.50|THB", Key(rec))
}

func TestFingerprint(t *testing.T) {
	base := model.CandidateRecord{
		Date:        time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Description: "NETFLIX.COM",
		Amount:      419.0,
		Currency:    "THB",
		Kind:        model.KindExpense,
	}

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Fingerprint(base), Fingerprint(base))
	})

	t.Run("normalization equivalent descriptions collide", func(t *testing.T) {
		other := base
		other.Description = "netflix com"
		assert.Equal(t, Fingerprint(base), Fingerprint(other))
	})

	t.Run("different description differs", func(t *testing.T) {
		other := base
		other.Description = "SPOTIFY.COM"
		assert.NotEqual(t, Fingerprint(base), Fingerprint(other))
	})

	t.Run("different amount differs", func(t *testing.T) {
		other := base
		other.Amount = 420.0
		assert.NotEqual(t, Fingerprint(base), Fingerprint(other))
	})

	t.Run("source ref does not participate", func(t *testing.T) {
		other := base
		other.SourceRef = "csv:17"
		assert.Equal(t, Fingerprint(base), Fingerprint(other))
	})
}

func TestCanonicalize(t *testing.T) {
	rec := model.CandidateRecord{
		Date:        time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		Description: "Coffee",
		Amount:      3.5,
		Currency:    "USD",
	}

	c := Canonicalize(rec)
	assert.Equal(t, Key(rec), c.Key)
	assert.Equal(t, Fingerprint(rec), c.Fingerprint)
}
