package billing

import "time"

const (
	PeriodWeekly     = "weekly"
	PeriodBiweekly   = "biweekly"
	PeriodMonthly    = "monthly"
	PeriodQuarterly  = "quarterly"
	PeriodSemiannual = "semiannual"
	PeriodAnnual     = "annual"
)

// NormalizePeriod maps the legacy Portuguese period names that older clients
// still send onto the canonical period constants. Unknown values are returned
// unchanged; NextDueDate treats them as a 30 day interval.
func NormalizePeriod(period string) string {
	switch period {
	case "semanal":
		return PeriodWeekly
	case "quinzenal":
		return PeriodBiweekly
	case "mensal":
		return PeriodMonthly
	case "trimestral":
		return PeriodQuarterly
	case "semestral":
		return PeriodSemiannual
	case "anual":
		return PeriodAnnual
	default:
		return period
	}
}

func ValidPeriod(period string) bool {
	switch period {
	case PeriodWeekly, PeriodBiweekly, PeriodMonthly, PeriodQuarterly, PeriodSemiannual, PeriodAnnual:
		return true
	default:
		return false
	}
}

// NextDueDate returns the due date that follows d for the given payment
// period. Month and year arithmetic relies on time.Date normalization, so
// Jan 31 plus one month rolls into early March rather than clamping to
// Feb 28. Unknown periods fall back to a 30 day interval.
func NextDueDate(d time.Time, period string) time.Time {
	switch NormalizePeriod(period) {
	case PeriodWeekly:
		return d.AddDate(0, 0, 7)
	case PeriodBiweekly:
		return d.AddDate(0, 0, 15)
	case PeriodMonthly:
		return d.AddDate(0, 1, 0)
	case PeriodQuarterly:
		return d.AddDate(0, 3, 0)
	case PeriodSemiannual:
		return d.AddDate(0, 6, 0)
	case PeriodAnnual:
		return d.AddDate(1, 0, 0)
	default:
		return d.AddDate(0, 0, 30)
	}
}
