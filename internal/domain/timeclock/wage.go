package timeclock

import (
	"math"
	"time"
)

// SessionMinutes rounds a clock-in/clock-out span to whole minutes.
func SessionMinutes(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}

// SessionWage pays whole hours only: a session under 60 minutes earns
// nothing. Clock-out sessions and manual entries intentionally use
// different formulas; do not unify them.
func SessionWage(durationMinutes int, hourlyRate float64) float64 {
	return math.Floor(float64(durationMinutes)/60) * hourlyRate
}

// ManualWage is the back-dated entry formula: linear per-minute pay, so
// fractional hours are compensated. Multiply before dividing so round
// figures stay exact (150 minutes at 10000/hr is 25000, not 24999.99...).
func ManualWage(durationMinutes int, hourlyRate float64) float64 {
	return float64(durationMinutes) * hourlyRate / 60
}

// NewSessionLog builds the ledger row for a completed clock-in/clock-out
// pair, freezing the employee's current rate.
func NewSessionLog(employeeID string, start, end time.Time, hourlyRate float64) WorkLog {
	minutes := SessionMinutes(start, end)
	return WorkLog{
		EmployeeID:      employeeID,
		StartTime:       &start,
		EndTime:         &end,
		DurationMinutes: minutes,
		WageRate:        hourlyRate,
		WageAmount:      SessionWage(minutes, hourlyRate),
		CreatedAt:       end,
	}
}

// NewManualLog builds a back-dated ledger row. Start and end are placeholders
// at the configured hour of the worked day; only the duration matters.
func NewManualLog(employeeID string, day time.Time, hours float64, hourlyRate float64, now time.Time) WorkLog {
	placeholder := time.Date(day.Year(), day.Month(), day.Day(), ManualEntryHour, 0, 0, 0, day.Location())
	minutes := int(math.Round(hours * 60))
	return WorkLog{
		EmployeeID:      employeeID,
		StartTime:       &placeholder,
		EndTime:         &placeholder,
		DurationMinutes: minutes,
		WageRate:        hourlyRate,
		WageAmount:      ManualWage(minutes, hourlyRate),
		CreatedAt:       now,
	}
}

// UnpaidTotal sums the outstanding balance over session rows. Payment markers
// contribute nothing and no row may contribute a negative amount.
func UnpaidTotal(entries []WorkLog) float64 {
	var total float64
	for _, entry := range entries {
		total += entry.Unpaid()
	}
	return total
}

// FilterLogs narrows a loaded ledger page by inclusive day bounds on the
// creation time and by entry kind. Zero bounds disable the respective check.
func FilterLogs(entries []WorkLog, from, to time.Time, kind string) []WorkLog {
	out := make([]WorkLog, 0, len(entries))
	for _, entry := range entries {
		if !from.IsZero() && entry.CreatedAt.Before(startOfDay(from)) {
			continue
		}
		if !to.IsZero() && !entry.CreatedAt.Before(startOfDay(to).AddDate(0, 0, 1)) {
			continue
		}
		switch kind {
		case FilterWork:
			if entry.IsPayMarker {
				continue
			}
		case FilterPay:
			if !entry.IsPayMarker {
				continue
			}
		}
		out = append(out, entry)
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
