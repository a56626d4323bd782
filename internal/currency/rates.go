// Package currency exposes the exchange-rate lookup capability the scorer
// consumes when totals must be compared across currencies. Rate
// synchronization itself is a separate scheduled-fetch service; this package
// only defines the lookup contract and an in-memory table implementation.
package currency

import (
	"fmt"
	"strings"
	"time"
)

// Rate is the result of a lookup: the conversion factor plus how far the
// quoted date sits from the requested date.
type Rate struct {
	// Value converts one unit of the from-currency into the to-currency.
	Value float64

	// Date is the date the rate was quoted for.
	Date time.Time

	// DaysOff is the absolute distance in days between the requested date and
	// Date. Zero means an exact-date rate.
	DaysOff int
}

// Exact reports whether the rate was quoted for the requested date.
func (r Rate) Exact() bool { return r.DaysOff == 0 }

// QualityScore grades a rate 0-100 by how stale it is relative to the
// requested date: exact rates score 100, then 5 points off per day, floored
// at 50.
func (r Rate) QualityScore() int {
	score := 100 - r.DaysOff*5
	if score < 50 {
		return 50
	}
	return score
}

// RateLookup is the capability injected into the scorer for cross-currency
// amount comparison. Implementations that perform I/O apply their own
// timeout/retry policy; the engine never blocks on this interface beyond a
// single call per scored pair.
type RateLookup interface {
	// Rate returns the conversion rate from one currency to another for the
	// given date, or an error when no usable rate exists.
	Rate(from, to string, date time.Time) (Rate, error)
}

// StaticRates is a RateLookup backed by an in-memory table, keyed by
// currency pair and date. Lookups fall back to the nearest quoted date
// within MaxDaysOff.
type StaticRates struct {
	rates map[string]map[string]float64 // pair -> YYYY-MM-DD -> rate

	// MaxDaysOff bounds the nearest-date fallback search. Default 7.
	MaxDaysOff int
}

// NewStaticRates creates an empty rate table.
func NewStaticRates() *StaticRates {
	return &StaticRates{
		rates:      make(map[string]map[string]float64),
		MaxDaysOff: 7,
	}
}

// Add records a rate for a currency pair on a date. The inverse pair is
// derivable by the caller; it is not added implicitly.
func (s *StaticRates) Add(from, to string, date time.Time, rate float64) {
	pair := pairKey(from, to)
	if s.rates[pair] == nil {
		s.rates[pair] = make(map[string]float64)
	}
	s.rates[pair][date.Format("2006-01-02")] = rate
}

// Rate implements RateLookup with nearest-date fallback.
func (s *StaticRates) Rate(from, to string, date time.Time) (Rate, error) {
	if strings.EqualFold(from, to) {
		return Rate{Value: 1, Date: date}, nil
	}

	byDate, ok := s.rates[pairKey(from, to)]
	if !ok || len(byDate) == 0 {
		return Rate{}, fmt.Errorf("no exchange rate for %s/%s", strings.ToUpper(from), strings.ToUpper(to))
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if v, ok := byDate[day.Format("2006-01-02")]; ok {
		return Rate{Value: v, Date: day}, nil
	}

	// Walk outward one day at a time so the nearest quote wins, preferring
	// the earlier date on ties.
	for off := 1; off <= s.MaxDaysOff; off++ {
		before := day.AddDate(0, 0, -off)
		if v, ok := byDate[before.Format("2006-01-02")]; ok {
			return Rate{Value: v, Date: before, DaysOff: off}, nil
		}
		after := day.AddDate(0, 0, off)
		if v, ok := byDate[after.Format("2006-01-02")]; ok {
			return Rate{Value: v, Date: after, DaysOff: off}, nil
		}
	}

	return Rate{}, fmt.Errorf("no exchange rate for %s/%s within %d days of %s",
		strings.ToUpper(from), strings.ToUpper(to), s.MaxDaysOff, day.Format("2006-01-02"))
}

func pairKey(from, to string) string {
	return strings.ToUpper(from) + "/" + strings.ToUpper(to)
}
