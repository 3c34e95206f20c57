// Package report resolves reporting periods, aggregates ledger data and
// orchestrates artifact compilation.
package report

import (
	"fmt"
	"time"

	"inesa/internal/core"
)

// RangeToken names a reporting window preset. Custom selects a caller
// supplied pair of dates.
type RangeToken string

const (
	RangeToday     RangeToken = "today"
	RangeYesterday RangeToken = "yesterday"
	Range7Days     RangeToken = "7days"
	Range1Month    RangeToken = "1month"
	Range3Months   RangeToken = "3months"
	Range6Months   RangeToken = "6months"
	Range1Year     RangeToken = "1year"
	RangeCustom    RangeToken = "custom"
)

// CustomRange carries the raw custom-range inputs in YYYY-MM-DD form.
type CustomRange struct {
	Start string
	End   string
}

// Resolve maps a range token to an inclusive day-boundary period relative to
// now. Unknown tokens fall back to the 7days preset; this is the documented
// default, matching the period filter's initial selection.
//
// For RangeCustom the pair must be present, parsable and ordered, otherwise
// core.ErrInvalidRange is returned. Resolve is a pure function of its inputs.
func Resolve(token RangeToken, now time.Time, custom CustomRange) (core.ReportPeriod, error) {
	if token == RangeCustom {
		return resolveCustom(now.Location(), custom)
	}

	end := endOfDay(now)
	var start time.Time
	switch token {
	case RangeToday:
		start = startOfDay(now)
	case RangeYesterday:
		y := now.AddDate(0, 0, -1)
		return core.ReportPeriod{Start: startOfDay(y), End: endOfDay(y)}, nil
	case Range1Month:
		start = startOfDay(now.AddDate(0, -1, 0))
	case Range3Months:
		start = startOfDay(now.AddDate(0, -3, 0))
	case Range6Months:
		start = startOfDay(now.AddDate(0, -6, 0))
	case Range1Year:
		start = startOfDay(now.AddDate(-1, 0, 0))
	default: // Range7Days and anything unrecognized
		start = startOfDay(now.AddDate(0, 0, -7))
	}

	return core.ReportPeriod{Start: start, End: end}, nil
}

func resolveCustom(loc *time.Location, custom CustomRange) (core.ReportPeriod, error) {
	if custom.Start == "" || custom.End == "" {
		return core.ReportPeriod{}, fmt.Errorf("%w: start and end dates are required", core.ErrInvalidRange)
	}
	start, err := time.ParseInLocation(core.WireDateLayout, custom.Start, loc)
	if err != nil {
		return core.ReportPeriod{}, fmt.Errorf("%w: start date %q is not YYYY-MM-DD", core.ErrInvalidRange, custom.Start)
	}
	end, err := time.ParseInLocation(core.WireDateLayout, custom.End, loc)
	if err != nil {
		return core.ReportPeriod{}, fmt.Errorf("%w: end date %q is not YYYY-MM-DD", core.ErrInvalidRange, custom.End)
	}
	if start.After(end) {
		return core.ReportPeriod{}, fmt.Errorf("%w: start date must not be after end date", core.ErrInvalidRange)
	}
	return core.ReportPeriod{Start: startOfDay(start), End: endOfDay(end)}, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
