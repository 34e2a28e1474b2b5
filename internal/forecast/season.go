package forecast

import "time"

const (
	SeasonSummer   = "Summer"
	SeasonMonsoon  = "Monsoon"
	SeasonFestival = "Festival"
	SeasonWinter   = "Winter"
)

// seasonCodes is the fixed label encoding shared by training features and
// next-period lookups, so every product and every run agrees on it.
var seasonCodes = map[string]int{
	SeasonSummer:   0,
	SeasonMonsoon:  1,
	SeasonFestival: 2,
	SeasonWinter:   3,
}

// SeasonFor maps a calendar month to its season label.
func SeasonFor(month time.Month) string {
	switch month {
	case time.March, time.April, time.May, time.June:
		return SeasonSummer
	case time.July, time.August, time.September:
		return SeasonMonsoon
	case time.October, time.November:
		return SeasonFestival
	default:
		return SeasonWinter
	}
}

// SeasonCode returns the numeric feature for a season label, 0 when unknown.
func SeasonCode(season string) int {
	return seasonCodes[season]
}

// NextPeriod returns the calendar month after ref's month, wrapping the year.
func NextPeriod(ref time.Time) (year int, month time.Month) {
	next := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location()).AddDate(0, 1, 0)
	return next.Year(), next.Month()
}
