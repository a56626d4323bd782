package match

import (
	"fmt"
	"math"
	"strings"

	"github.com/ledgerlab/reconcile/internal/model"
)

// signal is one scored component of a pair comparison. score is on the
// signal's native band (amount 0-40, date 0-30, description 0-30) and gets
// re-weighted by Config.Weights when composed. cap, when non-zero, bounds the
// final composite confidence.
type signal struct {
	reason string
	score  int
	max    int
	cap    int
}

const (
	amountSignalMax = 40

	amountScoreExact      = 40
	amountScoreVeryClose  = 35
	amountScoreClose      = 25
	amountScoreAcceptable = 15

	// Composite confidence caps. Large amount deltas and currency mismatches
	// penalize the whole pair, not just the amount signal.
	amountFarCap        = 60
	currencyMismatchCap = 50
)

// cents converts a decimal amount to integer cents. All amount arithmetic is
// integral so scores are byte-identical across runs.
func cents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// percentDiffBP returns the difference between two cent amounts in basis
// points (hundredths of a percent) of their average, rounded half-up.
func percentDiffBP(a, b int64) int64 {
	if a == 0 && b == 0 {
		return 0
	}
	if a == 0 || b == 0 {
		return 10000
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	sum := a + b // twice the average
	return (diff*20000 + sum/2) / sum
}

// formatBP renders basis points as a percentage with one decimal place.
func formatBP(bp int64) string {
	tenths := (bp + 5) / 10
	return fmt.Sprintf("%d.%d%%", tenths/10, tenths%10)
}

// amountSignal scores amount proximity for a pair, converting across
// currencies when a rate lookup is configured.
func (s *Scorer) amountSignal(a, b model.CandidateRecord) signal {
	sameCurrency := strings.EqualFold(a.Currency, b.Currency)
	if sameCurrency {
		return s.sameCurrencyAmount(cents(a.Amount), cents(b.Amount))
	}

	from := strings.ToUpper(a.Currency)
	to := strings.ToUpper(b.Currency)

	if s.cfg.Rates == nil {
		return signal{
			score:  0,
			max:    amountSignalMax,
			cap:    currencyMismatchCap,
			reason: fmt.Sprintf("currency mismatch: %s vs %s", from, to),
		}
	}

	rate, err := s.cfg.Rates.Rate(from, to, a.Date)
	if err != nil {
		return signal{
			score:  0,
			max:    amountSignalMax,
			cap:    currencyMismatchCap,
			reason: fmt.Sprintf("currency mismatch: %s vs %s (no exchange rate)", from, to),
		}
	}

	converted := cents(a.Amount * rate.Value)
	sig := s.convertedAmount(converted, cents(b.Amount))
	sig.reason = fmt.Sprintf("cross-currency %s to %s: %s", from, to, sig.reason)

	if quality := rate.QualityScore(); quality < 100 && sig.score > 0 {
		sig.score = sig.score * quality / 100
		sig.reason = fmt.Sprintf("%s (rate quality %d%%)", sig.reason, quality)
	}

	return sig
}

// maxDiffBP is Config.MaxPercentDiff as basis points: the outer edge of the
// last partial-credit band. Tighter settings shrink the inner bands too.
func (s *Scorer) maxDiffBP() int64 {
	return int64(s.cfg.MaxPercentDiff) * 100
}

// sameCurrencyAmount applies the same-currency bands: exact, within the
// absolute tolerance, then the percentage bands (2%/5%/MaxPercentDiff at the
// defaults), then the far penalty.
func (s *Scorer) sameCurrencyAmount(a, b int64) signal {
	if a == b {
		return signal{
			score:  amountScoreExact,
			max:    amountSignalMax,
			reason: "amount matches exactly",
		}
	}

	diff := a - b
	if diff < 0 {
		diff = -diff
	}

	if diff <= cents(s.cfg.AmountTolerance) {
		return signal{
			score:  amountScoreVeryClose,
			max:    amountSignalMax,
			reason: fmt.Sprintf("amount differs by %d.%02d (within tolerance)", diff/100, diff%100),
		}
	}

	bp := percentDiffBP(a, b)
	maxBP := s.maxDiffBP()
	switch {
	case bp <= min(200, maxBP):
		return signal{
			score:  amountScoreVeryClose,
			max:    amountSignalMax,
			reason: fmt.Sprintf("amounts within %s (excellent match)", formatBP(bp)),
		}
	case bp <= min(500, maxBP):
		return signal{
			score:  amountScoreClose,
			max:    amountSignalMax,
			reason: fmt.Sprintf("amounts within %s (good match)", formatBP(bp)),
		}
	case bp <= maxBP:
		return signal{
			score:  amountScoreAcceptable,
			max:    amountSignalMax,
			reason: fmt.Sprintf("amounts within %s (acceptable match)", formatBP(bp)),
		}
	}

	return signal{
		score:  0,
		max:    amountSignalMax,
		cap:    amountFarCap,
		reason: fmt.Sprintf("amounts differ by %s (exceeds %d%% threshold)", formatBP(bp), s.cfg.MaxPercentDiff),
	}
}

// convertedAmount compares a converted amount against the target with a 2%
// band standing in for exactness, absorbing exchange-rate variance.
func (s *Scorer) convertedAmount(converted, target int64) signal {
	bp := percentDiffBP(converted, target)
	maxBP := s.maxDiffBP()
	switch {
	case bp <= min(200, maxBP):
		return signal{
			score:  amountScoreExact,
			max:    amountSignalMax,
			reason: fmt.Sprintf("amounts within %s after conversion", formatBP(bp)),
		}
	case bp <= min(500, maxBP):
		return signal{
			score:  amountScoreClose,
			max:    amountSignalMax,
			reason: fmt.Sprintf("amounts within %s after conversion", formatBP(bp)),
		}
	case bp <= maxBP:
		return signal{
			score:  amountScoreAcceptable,
			max:    amountSignalMax,
			reason: fmt.Sprintf("amounts within %s after conversion", formatBP(bp)),
		}
	}

	return signal{
		score:  0,
		max:    amountSignalMax,
		cap:    amountFarCap,
		reason: fmt.Sprintf("amounts differ by %s after conversion", formatBP(bp)),
	}
}
