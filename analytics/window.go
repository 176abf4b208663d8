/*
window.go - Temporal window resolution

PURPOSE:
  All reporting is scoped to a closed interval of months. Months are
  keyed as year*100+month integers so window membership is a pair of
  integer comparisons, matching how the upstream datasets index time.

DEFAULTS:
  - End absent: the window ends at the current calendar month.
  - Start absent: the window starts a report-specific number of months
    before the resolved end (24 for summaries, 12 for the deep dive), in
    the same month-of-year as the end.

  An inverted window (start after end) matches no months; it is never an
  error.

SEE ALSO:
  - schema.go: Per-report default lookbacks
  - classify.go: Window membership during classification
*/
package analytics

import "time"

// MonthID is a month keyed as year*100+month.
type MonthID int

// NewMonthID builds a MonthID from a calendar year and month.
func NewMonthID(year, month int) MonthID {
	return MonthID(year*100 + month)
}

// Year returns the calendar year component.
func (m MonthID) Year() int { return int(m) / 100 }

// Month returns the calendar month component (1-12).
func (m MonthID) Month() int { return int(m) % 100 }

// Label formats the month the way heatmaps and rankings display it,
// e.g. "Jan 23".
func (m MonthID) Label() string {
	return MonthLabel(m.Year(), m.Month())
}

// MonthLabel formats a (year, month) pair as e.g. "Jan 23".
func MonthLabel(year, month int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("Jan 06")
}

// Window is a closed interval of months.
type Window struct {
	Start MonthID
	End   MonthID
}

// Contains reports whether the month falls inside the window, boundaries
// included.
func (w Window) Contains(m MonthID) bool {
	return w.Start <= m && m <= w.End
}

// WindowRequest carries the raw, possibly partial date-range parameters.
// Zero means absent.
type WindowRequest struct {
	YearFrom  int
	MonthFrom int
	YearTo    int
	MonthTo   int
}

// ResolveWindow turns a partial request into a concrete window using the
// report's default lookback (in months, always a whole number of years).
func ResolveWindow(req WindowRequest, lookbackMonths int, now time.Time) Window {
	yearTo, monthTo := req.YearTo, req.MonthTo
	if yearTo == 0 {
		yearTo = now.Year()
		monthTo = int(now.Month())
	}

	yearFrom, monthFrom := req.YearFrom, req.MonthFrom
	if yearFrom == 0 {
		yearFrom = yearTo - lookbackMonths/12
		monthFrom = monthTo
	}

	if monthFrom == 0 {
		monthFrom = 1
	}
	if monthTo == 0 {
		monthTo = 12
	}

	return Window{Start: NewMonthID(yearFrom, monthFrom), End: NewMonthID(yearTo, monthTo)}
}
