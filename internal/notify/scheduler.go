package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/petcare/internal/metrics"
	"github.com/dukerupert/petcare/internal/model"
	"github.com/dukerupert/petcare/internal/recurrence"
)

// Scheduler submits reminder alarms to a Notifier.
type Scheduler struct {
	notifier Notifier
	settings SettingsSource
	logger   *slog.Logger
	loc      *time.Location
	now      func() time.Time
}

// NewScheduler creates a scheduler. settings may be nil, in which case the
// defaults apply.
func NewScheduler(n Notifier, settings SettingsSource, logger *slog.Logger, loc *time.Location) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		notifier: n,
		settings: settings,
		logger:   logger.With("component", "notify"),
		loc:      loc,
		now:      time.Now,
	}
}

// SetClock replaces the time source.
func (s *Scheduler) SetClock(now func() time.Time) { s.now = now }

func (s *Scheduler) loadSettings(ctx context.Context) (model.Settings, error) {
	if s.settings == nil {
		return model.DefaultSettings(), nil
	}
	return s.settings.Get(ctx)
}

// Schedule submits the alarms for r. Soft failures (permission denied, past
// single-shot, disabled category) return a Result with Skipped set and no error.
// If a submission fails partway, the handles already issued are cancelled.
func (s *Scheduler) Schedule(ctx context.Context, r model.Reminder) (Result, error) {
	log := s.logger.With("reminder_id", r.ID, "pet_id", r.PetID)

	granted, err := s.notifier.RequestPermission(ctx)
	if err != nil {
		log.Warn("notification permission check failed", "error", err)
	}
	if !granted {
		log.Warn("notification permission not granted")
		return s.skip(SkipPermissionDenied), nil
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load notification settings: %w", err)
	}
	if !settings.Notifications.CategoryEnabled(model.CategoryReminder) {
		log.Info("reminder notifications disabled")
		return s.skip(SkipCategoryDisabled), nil
	}

	freq, err := recurrence.Parse(string(r.Repeat))
	if err != nil {
		return Result{}, fmt.Errorf("schedule reminder: %w", err)
	}
	first, err := model.Combine(r.ReminderDate, r.ReminderTime, s.loc)
	if err != nil {
		return Result{}, fmt.Errorf("schedule reminder: %w", err)
	}

	now := s.now().In(s.loc)
	if freq == recurrence.None && first.Before(now) {
		log.Warn("not scheduling notification for past date", "at", first)
		return s.skip(SkipPastSchedule), nil
	}

	occurrences := recurrence.Generate(first, freq, now)

	res := Result{}
	quiet := QuietHoursFrom(settings.Notifications.QuietHours)
	if deferred, ok := quiet.Defer(occurrences[0].At, now); ok {
		log.Info("deferring notification past quiet hours", "from", occurrences[0].At, "to", deferred)
		occurrences[0].At = deferred
		res.Deferred = true
		metrics.NotificationsDeferred.Inc()
	}
	res.First = occurrences[0].At

	base := Payload{
		ReminderID: r.ID,
		PetID:      r.PetID,
		Title:      r.Title,
		Body:       body(r),
		Category:   model.CategoryReminder,
		Sound:      settings.Notifications.Sound(model.CategoryReminder),
	}
	if settings.Notifications.Grouping {
		base.Group = string(model.CategoryReminder)
	}

	for _, occ := range occurrences {
		p := base
		p.Occurrence = occ.Index
		handle, err := s.notifier.ScheduleAt(ctx, occ.At, p)
		if err != nil {
			s.cancel(ctx, res.Handles)
			return Result{}, fmt.Errorf("schedule occurrence %d: %w", occ.Index, err)
		}
		res.Handles = append(res.Handles, handle)
	}
	res.Primary = res.Handles[0]
	metrics.NotificationsScheduled.WithLabelValues(string(model.CategoryReminder)).Add(float64(len(res.Handles)))

	log.Debug("scheduled reminder notifications", "count", len(res.Handles), "first", res.First)
	return res, nil
}

func (s *Scheduler) skip(reason SkipReason) Result {
	metrics.NotificationsSkipped.WithLabelValues(string(reason)).Inc()
	return Result{Skipped: reason}
}

func body(r model.Reminder) string {
	if r.Description != "" {
		return r.Description
	}
	return fmt.Sprintf("Reminder for %s", r.Type)
}

// Cancel cancels every handle. Errors from already fired or unknown handles are
// logged and swallowed, so calling it twice is safe.
func (s *Scheduler) Cancel(ctx context.Context, handles ...string) {
	s.cancel(ctx, handles)
}

// CancelReminder cancels every alarm tracked on r.
func (s *Scheduler) CancelReminder(ctx context.Context, r model.Reminder) {
	s.cancel(ctx, r.Handles())
}

func (s *Scheduler) cancel(ctx context.Context, handles []string) {
	for _, h := range handles {
		if h == "" {
			continue
		}
		if err := s.notifier.Cancel(ctx, h); err != nil {
			s.logger.Warn("cancel notification failed", "handle", h, "error", err)
			metrics.NotificationsCancelled.WithLabelValues("error").Inc()
			continue
		}
		metrics.NotificationsCancelled.WithLabelValues("ok").Inc()
	}
}

// CancelAll clears every scheduled alarm. Failures are logged.
func (s *Scheduler) CancelAll(ctx context.Context) {
	if err := s.notifier.CancelAll(ctx); err != nil {
		s.logger.Warn("cancel all notifications failed", "error", err)
	}
}

// Reschedule cancels the alarms tracked on old and schedules next.
func (s *Scheduler) Reschedule(ctx context.Context, old, next model.Reminder) (Result, error) {
	s.CancelReminder(ctx, old)
	return s.Schedule(ctx, next)
}
