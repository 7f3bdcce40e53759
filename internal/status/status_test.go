package status

import (
	"testing"
	"time"

	"github.com/dukerupert/petcare/internal/model"
)

func TestVaccineAdministeredIsCompleted(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	for _, due := range []model.Date{"2020-01-01", "2026-10-17", "2030-06-01"} {
		got := Vaccine(due, "2026-01-05", now)
		if got != model.VaccineCompleted {
			t.Errorf("due %s: status = %q, want %q", due, got, model.VaccineCompleted)
		}
	}
}

func TestVaccineOverdueBoundary(t *testing.T) {
	due := model.Date("2026-10-17")

	tests := []struct {
		now  time.Time
		want model.VaccineStatus
	}{
		{time.Date(2026, 10, 16, 23, 59, 0, 0, time.UTC), model.VaccineUpcoming},
		{time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), model.VaccineUpcoming},
		{time.Date(2026, 10, 17, 23, 59, 0, 0, time.UTC), model.VaccineUpcoming},
		{time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), model.VaccineOverdue},
		{time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), model.VaccineOverdue},
	}

	for _, tt := range tests {
		if got := Vaccine(due, "", tt.now); got != tt.want {
			t.Errorf("now %v: status = %q, want %q", tt.now, got, tt.want)
		}
	}
}

func TestVaccineNeverRegresses(t *testing.T) {
	due := model.Date("2026-03-10")
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	seenOverdue := false

	for i := 0; i < 30*24; i++ {
		s := Vaccine(due, "", now.Add(time.Duration(i)*time.Hour))
		if s == model.VaccineOverdue {
			seenOverdue = true
		} else if seenOverdue {
			t.Fatalf("status regressed to %q at hour %d", s, i)
		}
	}
	if !seenOverdue {
		t.Fatal("expected vaccine to become overdue")
	}
}

func TestVaccineOverdueThenAdministered(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	due := model.DateOf(now.AddDate(0, 0, -1))

	if got := Vaccine(due, "", now); got != model.VaccineOverdue {
		t.Fatalf("status = %q, want overdue", got)
	}
	if got := Vaccine(due, model.DateOf(now), now); got != model.VaccineCompleted {
		t.Errorf("status = %q, want completed", got)
	}
}

func TestReminderStatus(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 30, 45, 0, time.UTC)

	tests := []struct {
		name  string
		date  model.Date
		clock model.Clock
		want  model.ReminderStatus
	}{
		{"yesterday", "2026-10-16", "18:00", model.ReminderPast},
		{"earlier today", "2026-10-17", "09:00", model.ReminderPast},
		{"same minute", "2026-10-17", "12:30", model.ReminderToday},
		{"later today", "2026-10-17", "20:00", model.ReminderToday},
		{"tomorrow", "2026-10-18", "08:00", model.ReminderUpcoming},
	}

	for _, tt := range tests {
		if got := Reminder(tt.date, tt.clock, now); got != tt.want {
			t.Errorf("%s: status = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 10, 17, 22, 0, 0, 0, time.UTC)

	tests := []struct {
		date model.Date
		want int
	}{
		{"2026-10-17", 0},
		{"2026-10-18", 1},
		{"2026-10-10", -7},
		{"2027-10-17", 365},
	}
	for _, tt := range tests {
		if got := DaysUntil(tt.date, now); got != tt.want {
			t.Errorf("DaysUntil(%s) = %d, want %d", tt.date, got, tt.want)
		}
	}
}

func TestSortRemindersStable(t *testing.T) {
	reminders := []model.Reminder{
		{Meta: model.Meta{ID: "c"}, ReminderDate: "2026-10-20", ReminderTime: "09:00"},
		{Meta: model.Meta{ID: "a"}, ReminderDate: "2026-10-18", ReminderTime: "10:00"},
		{Meta: model.Meta{ID: "b1"}, ReminderDate: "2026-10-18", ReminderTime: "08:00"},
		{Meta: model.Meta{ID: "b2"}, ReminderDate: "2026-10-18", ReminderTime: "08:00"},
	}

	SortReminders(reminders, time.UTC)

	want := []string{"b1", "b2", "a", "c"}
	for i, id := range want {
		if reminders[i].ID != id {
			t.Errorf("reminders[%d] = %q, want %q", i, reminders[i].ID, id)
		}
	}
}

func TestWithStatus(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	out := WithStatus([]model.Reminder{
		{ReminderDate: "2026-10-20", ReminderTime: "09:00"},
		{ReminderDate: "2026-10-20", ReminderTime: "09:00", Repeat: model.RepeatMonthly},
	}, now)

	if len(out) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out))
	}
	if out[0].RepeatLabel != "Does not repeat" || out[1].RepeatLabel != "Repeats monthly" {
		t.Errorf("repeat labels = %q, %q", out[0].RepeatLabel, out[1].RepeatLabel)
	}
	if out[0].Status != model.ReminderUpcoming {
		t.Errorf("status = %q, want upcoming", out[0].Status)
	}
	if out[0].DaysUntil != 3 {
		t.Errorf("days until = %d, want 3", out[0].DaysUntil)
	}
}

func TestGrooming(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		next model.Date
		want GroomingDue
	}{
		{"", GroomingNone},
		{"2026-10-10", GroomingOverdue},
		{"2026-10-17", GroomingDueSoon},
		{"2026-10-24", GroomingDueSoon},
		{"2026-11-30", GroomingOK},
	}
	for _, tt := range tests {
		if got := Grooming(tt.next, now); got != tt.want {
			t.Errorf("Grooming(%q) = %q, want %q", tt.next, got, tt.want)
		}
	}
}
