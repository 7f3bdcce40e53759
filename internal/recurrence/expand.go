package recurrence

import "time"

// Occurrence is one generated trigger instant of a series.
type Occurrence struct {
	Index int
	At    time.Time
}

// Generate produces the trigger instants for a reminder that first fires at
// first. A non-repeating policy yields first alone, even when it has passed;
// callers decide whether a past single-shot is scheduled.
//
// For repeating policies a first instant before now is replaced by the next
// occurrence strictly after now that keeps the weekday (weekly) or day of
// month (monthly) and the time of day. Subsequent instants are offset from
// that anchor by whole periods. Monthly instants clamp to the last day of
// shorter months without drifting the series' day of month.
func Generate(first time.Time, freq Freq, now time.Time) []Occurrence {
	if freq == None {
		return []Occurrence{{Index: 0, At: first}}
	}

	anchor := first
	if first.Before(now) {
		anchor = NextAfter(first, freq, now)
	}

	n := freq.MaxOccurrences()
	out := make([]Occurrence, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Occurrence{Index: i, At: step(anchor, freq, first.Day(), i)})
	}
	return out
}

// NextAfter returns the first occurrence of first's pattern strictly after now.
func NextAfter(first time.Time, freq Freq, now time.Time) time.Time {
	loc := first.Location()
	now = now.In(loc)
	h, m, s := first.Clock()

	switch freq {
	case Weekly:
		candidate := time.Date(now.Year(), now.Month(), now.Day(), h, m, s, 0, loc)
		offset := (int(first.Weekday()) - int(candidate.Weekday()) + 7) % 7
		candidate = candidate.AddDate(0, 0, offset)
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 7)
		}
		return candidate

	case Monthly:
		candidate := clampedDate(now.Year(), now.Month(), first.Day(), h, m, s, loc)
		if !candidate.After(now) {
			candidate = clampedDate(now.Year(), now.Month()+1, first.Day(), h, m, s, loc)
		}
		return candidate

	case Yearly:
		candidate := clampedDate(now.Year(), first.Month(), first.Day(), h, m, s, loc)
		if !candidate.After(now) {
			candidate = clampedDate(now.Year()+1, first.Month(), first.Day(), h, m, s, loc)
		}
		return candidate
	}

	if first.After(now) {
		return first
	}
	return time.Time{}
}

// Advance moves t forward by one period. day is the series' day of month,
// used to undo clamping from a previous short month.
func Advance(t time.Time, freq Freq, day int) time.Time {
	return step(t, freq, day, 1)
}

func step(anchor time.Time, freq Freq, day, n int) time.Time {
	h, m, s := anchor.Clock()
	loc := anchor.Location()

	switch freq {
	case Weekly:
		return anchor.AddDate(0, 0, 7*n)
	case Monthly:
		return clampedDate(anchor.Year(), anchor.Month()+time.Month(n), day, h, m, s, loc)
	case Yearly:
		return clampedDate(anchor.Year()+n, anchor.Month(), day, h, m, s, loc)
	}
	return anchor
}

// clampedDate builds a date, normalising month overflow and clamping day to
// the month's last day.
func clampedDate(year int, month time.Month, day, h, m, s int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	year, month = first.Year(), first.Month()
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, h, m, s, 0, loc)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
