package petcare

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dukerupert/petcare/internal/model"
	"github.com/dukerupert/petcare/internal/notify"
	"github.com/dukerupert/petcare/internal/status"
)

// ListReminders returns reminders in chronological order with their derived
// status. petID may be empty.
func (s *Service) ListReminders(ctx context.Context, petID string) ([]status.ReminderWithStatus, error) {
	var (
		rs  []model.Reminder
		err error
	)
	if petID != "" {
		rs, err = s.repos.Reminders.GetByPetID(ctx, petID)
	} else {
		rs, err = s.repos.Reminders.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	return status.WithStatus(rs, s.today()), nil
}

func (s *Service) GetReminder(ctx context.Context, id string) (*model.Reminder, error) {
	return s.repos.Reminders.GetByID(ctx, id)
}

func (s *Service) prepareReminder(ctx context.Context, r *model.Reminder) error {
	if r.Repeat == "" {
		r.Repeat = model.RepeatNone
	}
	if r.ReminderTime == "" {
		settings, err := s.repos.Settings.Get(ctx)
		if err != nil {
			return err
		}
		r.ReminderTime = settings.DefaultReminderTime
	}
	if err := s.check(r); err != nil {
		return err
	}
	return s.requirePet(ctx, r.PetID)
}

// AddReminder schedules the reminder's notifications and then stores it with the
// issued handles. A scheduling failure is logged and the reminder is saved
// without handles.
func (s *Service) AddReminder(ctx context.Context, r *model.Reminder) (notify.Result, error) {
	r.NotificationID, r.NotificationIDs = "", nil
	if err := s.prepareReminder(ctx, r); err != nil {
		return notify.Result{}, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return notify.Result{}, fmt.Errorf("generate reminder id: %w", err)
	}
	r.ID = id.String()

	res, err := s.sched.Schedule(ctx, *r)
	if err != nil {
		s.logger.Warn("scheduling reminder failed, saving without notifications", "reminder_id", r.ID, "error", err)
		res = notify.Result{}
	}
	res.Apply(r)

	if err := s.repos.Reminders.Save(ctx, r); err != nil {
		s.sched.Cancel(ctx, res.Handles...)
		return notify.Result{}, fmt.Errorf("create reminder: %w", err)
	}
	s.broadcast("reminder", "created", r.ID, r.PetID)
	return res, nil
}

// UpdateReminder cancels the stored reminder's alarms, schedules the new values
// and saves. If the save fails the freshly scheduled alarms are cancelled too.
func (s *Service) UpdateReminder(ctx context.Context, id string, r *model.Reminder) (notify.Result, error) {
	old, err := s.repos.Reminders.GetByID(ctx, id)
	if err != nil {
		return notify.Result{}, err
	}
	r.ID = id
	r.NotificationID, r.NotificationIDs = "", nil
	if err := s.prepareReminder(ctx, r); err != nil {
		return notify.Result{}, err
	}

	res, err := s.sched.Reschedule(ctx, *old, *r)
	if err != nil {
		s.logger.Warn("rescheduling reminder failed, saving without notifications", "reminder_id", id, "error", err)
		res = notify.Result{}
	}
	res.Apply(r)

	if err := s.repos.Reminders.Save(ctx, r); err != nil {
		// The stored record still lists the old handles, which Reschedule already
		// cancelled, so the new series would be unreachable.
		s.sched.Cancel(ctx, res.Handles...)
		return notify.Result{}, fmt.Errorf("update reminder: %w", err)
	}
	s.broadcast("reminder", "updated", id, r.PetID)
	return res, nil
}

// DeleteReminder cancels every tracked alarm before removing the record.
func (s *Service) DeleteReminder(ctx context.Context, id string) error {
	r, err := s.repos.Reminders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	s.sched.CancelReminder(ctx, *r)
	if err := s.repos.Reminders.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	s.broadcast("reminder", "deleted", id, r.PetID)
	return nil
}
