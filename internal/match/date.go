package match

import (
	"fmt"
	"time"

	"github.com/ledgerlab/reconcile/internal/model"
)

const (
	dateSignalMax = 30

	dateScoreSameDay   = 30
	dateScoreOneDay    = 25
	dateScoreTwoDays   = 20
	dateScoreThreeDays = 15

	// Each day past the three-day band shaves 5 points off the composite
	// confidence cap, floored at 50.
	dateFarCapPerDay = 5
	dateFarCapFloor  = 50
)

// daysApart returns the absolute day-granular distance between two dates,
// ignoring the time component.
func daysApart(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)

	d := int(da.Sub(db).Hours() / 24)
	if d < 0 {
		d = -d
	}
	return d
}

// dateSignal scores date proximity. Posting-vs-authorization lag means exact
// equality is not required for high confidence; partial credit decays to zero
// over the window and far dates cap the composite score instead.
func (s *Scorer) dateSignal(a, b model.CandidateRecord) signal {
	days := daysApart(a.Date, b.Date)

	switch days {
	case 0:
		return signal{
			score:  dateScoreSameDay,
			max:    dateSignalMax,
			reason: "date matches exactly",
		}
	case 1:
		return signal{
			score:  dateScoreOneDay,
			max:    dateSignalMax,
			reason: "date within 1 day",
		}
	case 2:
		return signal{
			score:  dateScoreTwoDays,
			max:    dateSignalMax,
			reason: "date within 2 days",
		}
	case 3:
		return signal{
			score:  dateScoreThreeDays,
			max:    dateSignalMax,
			reason: "date within 3 days",
		}
	}

	cap := 100 - (days-3)*dateFarCapPerDay
	if cap < dateFarCapFloor {
		cap = dateFarCapFloor
	}

	return signal{
		score:  0,
		max:    dateSignalMax,
		cap:    cap,
		reason: fmt.Sprintf("dates differ by %d days", days),
	}
}
