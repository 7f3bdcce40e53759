// Package notify turns reminders into scheduled device notifications.
package notify

import (
	"context"
	"time"

	"github.com/dukerupert/petcare/internal/model"
)

// Payload travels with every scheduled notification.
type Payload struct {
	ReminderID string                     `json:"reminder_id"`
	PetID      string                     `json:"pet_id"`
	Occurrence int                        `json:"occurrence"`
	Title      string                     `json:"title"`
	Body       string                     `json:"body"`
	Category   model.NotificationCategory `json:"category"`
	Sound      model.NotificationSound    `json:"sound"`
	// Group is set to the category when notification grouping is on.
	Group string `json:"group,omitempty"`
}

// Notifier is the device notification subsystem.
type Notifier interface {
	RequestPermission(ctx context.Context) (bool, error)
	ScheduleAt(ctx context.Context, at time.Time, p Payload) (string, error)
	Cancel(ctx context.Context, handle string) error
	CancelAll(ctx context.Context) error
}

// SettingsSource supplies the current notification preferences.
type SettingsSource interface {
	Get(ctx context.Context) (model.Settings, error)
}

// SkipReason explains why a reminder was saved without an alarm.
type SkipReason string

const (
	SkipNone             SkipReason = ""
	SkipPermissionDenied SkipReason = "permission_denied"
	SkipPastSchedule     SkipReason = "past_schedule"
	SkipCategoryDisabled SkipReason = "category_disabled"
)

// Result is the outcome of scheduling one reminder.
type Result struct {
	Handles []string
	// Primary is the first handle, or empty when nothing was scheduled.
	Primary string
	Skipped SkipReason
	// Deferred is set when the primary trigger was pushed past quiet hours.
	Deferred bool
	// First is the primary trigger instant after any deferral.
	First time.Time
}

// Apply records the scheduled handles on r.
func (res Result) Apply(r *model.Reminder) {
	r.NotificationID = res.Primary
	r.NotificationIDs = res.Handles
}
