package status

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/dukerupert/petcare/internal/model"
	"github.com/dukerupert/petcare/internal/recurrence"
)

// ReminderWithStatus decorates a reminder with its derived status.
type ReminderWithStatus struct {
	model.Reminder
	Status      model.ReminderStatus `json:"status"`
	DaysUntil   int                  `json:"days_until"`
	RepeatLabel string               `json:"repeat_label"`
}

// Vaccine derives a vaccine's status. Any administered dose counts as
// completed, even when a booster is already past due.
func Vaccine(nextDue, administered model.Date, now time.Time) model.VaccineStatus {
	if !administered.IsZero() {
		return model.VaccineCompleted
	}

	due, err := nextDue.In(now.Location())
	if err != nil {
		slog.Error("invalid vaccine due date", "next_due_date", nextDue, "error", err)
		return model.VaccineUpcoming
	}

	if due.Before(startOfDay(now)) {
		return model.VaccineOverdue
	}
	return model.VaccineUpcoming
}

// Reminder derives a reminder's status at minute precision. The past check
// runs first, so a reminder earlier today is past rather than today.
func Reminder(date model.Date, clock model.Clock, now time.Time) model.ReminderStatus {
	at, err := model.Combine(date, clock, now.Location())
	if err != nil {
		slog.Error("invalid reminder date", "date", date, "time", clock, "error", err)
		return model.ReminderUpcoming
	}

	if at.Before(now.Truncate(time.Minute)) {
		return model.ReminderPast
	}
	if sameDay(at, now) {
		return model.ReminderToday
	}
	return model.ReminderUpcoming
}

// WithStatus decorates reminders with status and days until.
func WithStatus(reminders []model.Reminder, now time.Time) []ReminderWithStatus {
	out := make([]ReminderWithStatus, 0, len(reminders))
	for _, r := range reminders {
		freq, _ := recurrence.Parse(string(r.Repeat))
		out = append(out, ReminderWithStatus{
			Reminder:    r,
			Status:      Reminder(r.ReminderDate, r.ReminderTime, now),
			DaysUntil:   DaysUntil(r.ReminderDate, now),
			RepeatLabel: freq.Describe(),
		})
	}
	return out
}

// DaysUntil counts calendar days from now's day to date. Negative for past dates.
func DaysUntil(date model.Date, now time.Time) int {
	d, err := date.In(now.Location())
	if err != nil {
		return 0
	}
	hours := d.Sub(startOfDay(now)).Hours()
	return int(math.Round(hours / 24))
}

// SortReminders orders reminders by their combined date and time. Equal
// instants keep their input order.
func SortReminders(reminders []model.Reminder, loc *time.Location) {
	key := func(r model.Reminder) time.Time {
		t, err := model.Combine(r.ReminderDate, r.ReminderTime, loc)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	sort.SliceStable(reminders, func(i, j int) bool {
		return key(reminders[i]).Before(key(reminders[j]))
	})
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
