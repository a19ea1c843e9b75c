// Package report selects reports for a period and computes the dashboard aggregates.
package report

import (
	"strings"

	"github.com/abelzeko/petrodata/internal/entities"
)

// PeriodKind names a reporting window.
type PeriodKind string

const (
	PeriodDay   PeriodKind = "DAILY"
	PeriodWeek  PeriodKind = "WEEKLY"
	PeriodMonth PeriodKind = "MONTHLY"
	// PeriodAll applies no date restriction. Unrecognised kinds behave the same way.
	PeriodAll PeriodKind = "ALL"
)

// weekSpan is the number of days in the trailing weekly window, anchor included.
const weekSpan = 7

// ParsePeriodKind accepts daily/weekly/monthly or day/week/month in any case.
// Anything else maps to PeriodAll.
func ParsePeriodKind(s string) PeriodKind {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DAILY", "DAY":
		return PeriodDay
	case "WEEKLY", "WEEK":
		return PeriodWeek
	case "MONTHLY", "MONTH":
		return PeriodMonth
	default:
		return PeriodAll
	}
}

// Label is the human form of the kind, e.g. "Weekly".
func (k PeriodKind) Label() string {
	switch k {
	case PeriodDay:
		return "Daily"
	case PeriodWeek:
		return "Weekly"
	case PeriodMonth:
		return "Monthly"
	default:
		return "All-time"
	}
}

// Window returns the inclusive first and last day covered by kind at anchor.
// For PeriodAll both bounds are zero.
func Window(kind PeriodKind, anchor entities.Date) (from, to entities.Date) {
	switch kind {
	case PeriodDay:
		return anchor, anchor
	case PeriodWeek:
		return anchor.AddDays(-(weekSpan - 1)), anchor
	case PeriodMonth:
		first := entities.NewDate(anchor.Year(), anchor.Month(), 1)
		return first, entities.NewDate(anchor.Year(), anchor.Month()+1, 1).AddDays(-1)
	default:
		return entities.Date{}, entities.Date{}
	}
}

// Filter keeps the reports whose date falls in the period, preserving order.
// Dates carry no time of day, so comparisons are on calendar days only.
func Filter(reports []entities.DailyReport, kind PeriodKind, anchor entities.Date) []entities.DailyReport {
	out := make([]entities.DailyReport, 0, len(reports))
	for _, r := range reports {
		if inPeriod(r.Date, kind, anchor) {
			out = append(out, r)
		}
	}
	return out
}

func inPeriod(d entities.Date, kind PeriodKind, anchor entities.Date) bool {
	switch kind {
	case PeriodDay:
		return d.Equal(anchor)
	case PeriodWeek:
		start := anchor.AddDays(-(weekSpan - 1))
		return !d.Before(start) && !d.After(anchor)
	case PeriodMonth:
		return d.Month() == anchor.Month() && d.Year() == anchor.Year()
	default:
		return true
	}
}
