package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/petcare/internal/model"
	"github.com/dukerupert/petcare/internal/notify"
	"github.com/dukerupert/petcare/internal/notify/notifytest"
)

type staticSettings struct {
	s   model.Settings
	err error
}

func (f staticSettings) Get(context.Context) (model.Settings, error) { return f.s, f.err }

// Saturday 2025-03-15 10:00 UTC
var now = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func newScheduler(n notify.Notifier, settings notify.SettingsSource) *notify.Scheduler {
	s := notify.NewScheduler(n, settings, nil, time.UTC)
	s.SetClock(func() time.Time { return now })
	return s
}

func reminder(date model.Date, clock model.Clock, repeat model.Repeat) model.Reminder {
	return model.Reminder{
		Meta:         model.Meta{ID: "r1"},
		PetID:        "p1",
		Type:         model.ReminderMedicine,
		Title:        "Heartworm pill",
		ReminderDate: date,
		ReminderTime: clock,
		Repeat:       repeat,
	}
}

func TestScheduleSingleFuture(t *testing.T) {
	n := notifytest.New()
	s := newScheduler(n, nil)

	res, err := s.Schedule(context.Background(), reminder("2025-03-16", "09:00", model.RepeatNone))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if res.Skipped != notify.SkipNone {
		t.Fatalf("skipped = %q", res.Skipped)
	}
	if len(res.Handles) != 1 || res.Primary != res.Handles[0] {
		t.Errorf("handles = %v primary = %q", res.Handles, res.Primary)
	}
	p := n.Pending()[0]
	want := time.Date(2025, 3, 16, 9, 0, 0, 0, time.UTC)
	if !p.At.Equal(want) {
		t.Errorf("at = %v, want %v", p.At, want)
	}
	if p.Payload.ReminderID != "r1" || p.Payload.PetID != "p1" || p.Payload.Body != "Reminder for medicine" {
		t.Errorf("payload = %+v", p.Payload)
	}
}

func TestScheduleSinglePastIsSkipped(t *testing.T) {
	n := notifytest.New()
	s := newScheduler(n, nil)

	res, err := s.Schedule(context.Background(), reminder("2025-03-15", "09:59", model.RepeatNone))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if res.Skipped != notify.SkipPastSchedule {
		t.Errorf("skipped = %q, want past_schedule", res.Skipped)
	}
	if res.Primary != "" || len(n.Pending()) != 0 {
		t.Error("expected nothing scheduled")
	}
}

func TestSchedulePermissionDenied(t *testing.T) {
	n := notifytest.New()
	n.Denied = true
	s := newScheduler(n, nil)

	res, err := s.Schedule(context.Background(), reminder("2025-04-01", "09:00", model.RepeatWeekly))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if res.Skipped != notify.SkipPermissionDenied || res.Primary != "" {
		t.Errorf("result = %+v", res)
	}
}

func TestScheduleCategoryDisabled(t *testing.T) {
	settings := model.DefaultSettings()
	settings.Notifications.Categories[model.CategoryReminder] = model.CategorySettings{Enabled: false}
	n := notifytest.New()
	s := newScheduler(n, staticSettings{s: settings})

	res, err := s.Schedule(context.Background(), reminder("2025-04-01", "09:00", model.RepeatNone))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if res.Skipped != notify.SkipCategoryDisabled {
		t.Errorf("skipped = %q, want category_disabled", res.Skipped)
	}
}

func TestScheduleSettingsError(t *testing.T) {
	s := newScheduler(notifytest.New(), staticSettings{err: errors.New("disk gone")})
	if _, err := s.Schedule(context.Background(), reminder("2025-04-01", "09:00", model.RepeatNone)); err == nil {
		t.Error("expected settings error to propagate")
	}
}

func TestScheduleWeeklyFromPastStart(t *testing.T) {
	n := notifytest.New()
	s := newScheduler(n, nil)

	// ten days before a Saturday is a Wednesday
	res, err := s.Schedule(context.Background(), reminder("2025-03-05", "09:00", model.RepeatWeekly))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(res.Handles) != 52 {
		t.Fatalf("handles = %d, want 52", len(res.Handles))
	}

	pending := n.Pending()
	first := time.Date(2025, 3, 19, 9, 0, 0, 0, time.UTC)
	if !pending[0].At.Equal(first) {
		t.Errorf("first = %v, want %v", pending[0].At, first)
	}
	if !pending[0].At.After(now) {
		t.Error("first occurrence must be after now")
	}
	for i := 1; i < len(pending); i++ {
		if d := pending[i].At.Sub(pending[i-1].At); d != 7*24*time.Hour {
			t.Fatalf("gap %d = %v, want 7 days", i, d)
		}
		if pending[i].Payload.Occurrence != i {
			t.Errorf("occurrence[%d] = %d", i, pending[i].Payload.Occurrence)
		}
	}
	if res.Primary != pending[0].Handle {
		t.Errorf("primary = %q, want %q", res.Primary, pending[0].Handle)
	}
}

func TestScheduleMonthly(t *testing.T) {
	n := notifytest.New()
	s := newScheduler(n, nil)

	res, err := s.Schedule(context.Background(), reminder("2025-04-10", "08:30", model.RepeatMonthly))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(res.Handles) != 12 {
		t.Fatalf("handles = %d, want 12", len(res.Handles))
	}
	pending := n.Pending()
	for i, p := range pending {
		want := time.Date(2025, time.April+time.Month(i), 10, 8, 30, 0, 0, time.UTC)
		if !p.At.Equal(want) {
			t.Errorf("occurrence %d = %v, want %v", i, p.At, want)
		}
	}
}

func TestScheduleDefersPrimaryInQuietHours(t *testing.T) {
	settings := model.DefaultSettings()
	settings.Notifications.QuietHours = model.QuietHoursSettings{Enabled: true, StartTime: "22:00", EndTime: "07:00"}
	n := notifytest.New()
	s := notify.NewScheduler(n, staticSettings{s: settings}, nil, time.UTC)
	late := time.Date(2025, 3, 15, 23, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return late })

	res, err := s.Schedule(context.Background(), reminder("2025-03-15", "23:30", model.RepeatNone))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	want := time.Date(2025, 3, 16, 7, 0, 0, 0, time.UTC)
	if !res.Deferred || !res.First.Equal(want) {
		t.Errorf("deferred=%v first=%v, want %v", res.Deferred, res.First, want)
	}

	res, err = s.Schedule(context.Background(), reminder("2025-03-20", "23:30", model.RepeatWeekly))
	if err != nil {
		t.Fatalf("schedule weekly: %v", err)
	}
	if res.Deferred {
		t.Error("trigger outside the current quiet window should not be deferred")
	}
}

func TestScheduleGroupingAndSound(t *testing.T) {
	settings := model.DefaultSettings()
	settings.Notifications.Grouping = true
	settings.Notifications.Categories[model.CategoryReminder] = model.CategorySettings{Enabled: true, Sound: model.SoundSilent}
	n := notifytest.New()
	s := newScheduler(n, staticSettings{s: settings})

	if _, err := s.Schedule(context.Background(), reminder("2025-04-01", "09:00", model.RepeatNone)); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	p := n.Pending()[0].Payload
	if p.Sound != model.SoundSilent || p.Group != "reminder" {
		t.Errorf("payload = %+v", p)
	}
}

func TestSchedulePartialFailureRollsBack(t *testing.T) {
	n := notifytest.New()
	n.FailAfter = 3
	s := newScheduler(n, nil)

	_, err := s.Schedule(context.Background(), reminder("2025-04-01", "09:00", model.RepeatWeekly))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(n.Pending()) != 0 {
		t.Errorf("pending = %d, want 0 after rollback", len(n.Pending()))
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	n := notifytest.New()
	n.StrictCancel = true
	s := newScheduler(n, nil)
	ctx := context.Background()

	res, _ := s.Schedule(ctx, reminder("2025-04-01", "09:00", model.RepeatNone))
	s.Cancel(ctx, res.Primary)
	s.Cancel(ctx, res.Primary)

	if len(n.Cancelled) != 1 {
		t.Errorf("cancelled = %v, want one handle", n.Cancelled)
	}
	if n.CancelCalls != 2 {
		t.Errorf("cancel calls = %d, want 2", n.CancelCalls)
	}
}

func TestCancelReminderCancelsWholeSeries(t *testing.T) {
	n := notifytest.New()
	s := newScheduler(n, nil)
	ctx := context.Background()

	r := reminder("2025-04-01", "09:00", model.RepeatMonthly)
	res, _ := s.Schedule(ctx, r)
	res.Apply(&r)

	s.CancelReminder(ctx, r)
	if len(n.Pending()) != 0 {
		t.Errorf("pending = %d, want 0", len(n.Pending()))
	}
}

func TestReschedule(t *testing.T) {
	n := notifytest.New()
	s := newScheduler(n, nil)
	ctx := context.Background()

	old := reminder("2025-04-01", "09:00", model.RepeatWeekly)
	res, _ := s.Schedule(ctx, old)
	res.Apply(&old)

	next := old
	next.Repeat = model.RepeatNone
	res, err := s.Reschedule(ctx, old, next)
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if len(res.Handles) != 1 || len(n.Pending()) != 1 {
		t.Errorf("handles = %d pending = %d, want 1/1", len(res.Handles), len(n.Pending()))
	}
}

func TestCancelAll(t *testing.T) {
	n := notifytest.New()
	s := newScheduler(n, nil)
	ctx := context.Background()

	s.Schedule(ctx, reminder("2025-04-01", "09:00", model.RepeatWeekly))
	s.CancelAll(ctx)
	if len(n.Pending()) != 0 {
		t.Errorf("pending = %d, want 0", len(n.Pending()))
	}
}
