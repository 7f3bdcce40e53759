package notify

import (
	"time"

	"github.com/dukerupert/petcare/internal/model"
)

// QuietHours is a daily window [Start, End) during which new triggers are held
// back. Start after End means the window spans midnight.
type QuietHours struct {
	Enabled bool
	Start   model.Clock
	End     model.Clock
}

func QuietHoursFrom(s model.QuietHoursSettings) QuietHours {
	return QuietHours{Enabled: s.Enabled, Start: s.StartTime, End: s.EndTime}
}

// Window returns the quiet window containing t, in t's location.
// ok is false when t is outside quiet hours or the window is unusable.
func (q QuietHours) Window(t time.Time) (start, end time.Time, ok bool) {
	if !q.Enabled {
		return time.Time{}, time.Time{}, false
	}
	sh, sm, err := q.Start.HourMinute()
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	eh, em, err := q.End.HourMinute()
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	startMin, endMin := sh*60+sm, eh*60+em
	if startMin == endMin {
		return time.Time{}, time.Time{}, false
	}

	y, mo, d := t.Date()
	loc := t.Location()
	at := func(dayOffset, minutes int) time.Time {
		return time.Date(y, mo, d+dayOffset, minutes/60, minutes%60, 0, 0, loc)
	}
	nowMin := t.Hour()*60 + t.Minute()

	if startMin < endMin {
		if nowMin >= startMin && nowMin < endMin {
			return at(0, startMin), at(0, endMin), true
		}
		return time.Time{}, time.Time{}, false
	}

	switch {
	case nowMin >= startMin:
		return at(0, startMin), at(1, endMin), true
	case nowMin < endMin:
		return at(-1, startMin), at(0, endMin), true
	}
	return time.Time{}, time.Time{}, false
}

// Defer moves at to the end of the quiet window that now is in, but only when
// at itself falls before that window closes. Otherwise at is returned as is.
func (q QuietHours) Defer(at, now time.Time) (time.Time, bool) {
	_, end, ok := q.Window(now)
	if !ok || !at.Before(end) {
		return at, false
	}
	return end, true
}
