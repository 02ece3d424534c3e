package history

import "time"

// Mode selects how a history filter interprets its fields. The values
// match the dashboard's filter selector.
type Mode string

const (
	ModeDay   Mode = "dia"
	ModeRange Mode = "rango"
	ModeMonth Mode = "mes"
	ModeYear  Mode = "anio"
)

// Filter selects history records by calendar day, inclusive date range,
// calendar month, or calendar year. Matching uses the timestamps' local
// time semantics.
type Filter struct {
	Mode Mode

	Day time.Time // ModeDay

	Start time.Time // ModeRange, inclusive
	End   time.Time // ModeRange, inclusive (whole end day)

	Month time.Month // ModeMonth
	Year  int        // ModeMonth, ModeYear
}

// Matches reports whether a record timestamp falls inside the filter.
func (f Filter) Matches(ts time.Time) bool {
	t := ts.Local()

	switch f.Mode {
	case ModeDay:
		y, m, d := f.Day.Date()
		ty, tm, td := t.Date()
		return ty == y && tm == m && td == d
	case ModeRange:
		start := startOfDay(f.Start)
		end := endOfDay(f.End)
		return !t.Before(start) && !t.After(end)
	case ModeMonth:
		ty, tm, _ := t.Date()
		return ty == f.Year && tm == f.Month
	case ModeYear:
		return t.Year() == f.Year
	default:
		return false
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999_999_999, time.Local)
}
