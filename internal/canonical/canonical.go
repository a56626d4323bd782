// Package canonical normalizes candidate records into stable comparison keys
// and content fingerprints. Fingerprint equality defines exact duplication;
// key equality defines the coarser candidate pool used to narrow
// near-duplicate search.
package canonical

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"unicode"

	"github.com/ledgerlab/reconcile/internal/model"
)

// Canonical is the result of canonicalizing a record.
type Canonical struct {
	// Key groups records that are plausibly the same event:
	// date|amount|currency.
	Key string

	// Fingerprint adds the normalized description to Key and hashes it.
	// Equal fingerprints mean exact duplicates by definition.
	Fingerprint string
}

// Normalize produces the comparison form of a description: trimmed, internal
// whitespace collapsed, lower-cased, punctuation stripped. Digits and currency
// symbols are kept since they are often load-bearing ("Invoice 1002" vs
// "Invoice 1003"). An empty result is a valid canonical value.
func Normalize(description string) string {
	var b strings.Builder
	b.Grow(len(description))

	space := false
	for _, r := range strings.ToLower(strings.TrimSpace(description)) {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Sc, r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			// Punctuation separates tokens rather than vanishing entirely,
			// so "NETFLIX.COM" and "NETFLIX COM" normalize identically.
			space = true
		}
	}

	return b.String()
}

// Key returns the canonical grouping key for a record.
func Key(r model.CandidateRecord) string {
	return fmt.Sprintf("%s|%.2f|%s", r.DateString(), r.Amount, strings.ToUpper(r.Currency))
}

// Fingerprint returns the deterministic content fingerprint of a record.
// It is a pure function of date, amount, currency, and normalized
// description: identical input always yields identical output.
func Fingerprint(r model.CandidateRecord) string {
	data := fmt.Sprintf("%s|%s", Key(r), Normalize(r.Description))
	sum := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", sum)
}

// Canonicalize returns both the key and the fingerprint for a record.
func Canonicalize(r model.CandidateRecord) Canonical {
	return Canonical{
		Key:         Key(r),
		Fingerprint: Fingerprint(r),
	}
}
