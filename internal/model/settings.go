package model

type NotificationCategory string

const (
	CategoryReminder NotificationCategory = "reminder"
	CategoryVaccine  NotificationCategory = "vaccine"
	CategoryHealth   NotificationCategory = "health"
	CategoryExpense  NotificationCategory = "expense"
	CategoryGeneral  NotificationCategory = "general"
)

type NotificationSound string

const (
	SoundDefault NotificationSound = "default"
	SoundGentle  NotificationSound = "gentle"
	SoundUrgent  NotificationSound = "urgent"
	SoundSilent  NotificationSound = "silent"
)

type CategorySettings struct {
	Enabled bool              `json:"enabled"`
	Sound   NotificationSound `json:"sound" validate:"omitempty,oneof=default gentle urgent silent"`
	Vibrate bool              `json:"vibrate"`
}

type QuietHoursSettings struct {
	Enabled   bool  `json:"enabled"`
	StartTime Clock `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime   Clock `json:"end_time" validate:"omitempty,datetime=15:04"`
}

type NotificationSettings struct {
	Categories map[NotificationCategory]CategorySettings `json:"categories" validate:"dive"`
	QuietHours QuietHoursSettings                        `json:"quiet_hours"`
	Grouping   bool                                      `json:"grouping"`
}

type Settings struct {
	DefaultCurrency      string               `json:"default_currency" validate:"omitempty,oneof=USD EUR GBP JPY CAD AUD"`
	DefaultReminderTime  Clock                `json:"default_reminder_time" validate:"omitempty,datetime=15:04"`
	NotificationsEnabled bool                 `json:"notifications_enabled"`
	Language             string               `json:"language,omitempty"`
	ThemeMode            string               `json:"theme_mode,omitempty" validate:"omitempty,oneof=light dark system"`
	Notifications        NotificationSettings `json:"notifications"`
}

// DefaultSettings mirrors a fresh install.
func DefaultSettings() Settings {
	cats := make(map[NotificationCategory]CategorySettings)
	for _, c := range []NotificationCategory{CategoryReminder, CategoryVaccine, CategoryHealth, CategoryExpense, CategoryGeneral} {
		cats[c] = CategorySettings{Enabled: true, Sound: SoundDefault, Vibrate: true}
	}
	return Settings{
		DefaultCurrency:      "USD",
		DefaultReminderTime:  "09:00",
		NotificationsEnabled: true,
		Notifications: NotificationSettings{
			Categories: cats,
			QuietHours: QuietHoursSettings{StartTime: "22:00", EndTime: "07:00"},
		},
	}
}

// CategoryEnabled treats a category missing from the map as enabled.
func (n NotificationSettings) CategoryEnabled(c NotificationCategory) bool {
	cs, ok := n.Categories[c]
	if !ok {
		return true
	}
	return cs.Enabled
}

// Sound returns the configured sound for a category.
func (n NotificationSettings) Sound(c NotificationCategory) NotificationSound {
	cs, ok := n.Categories[c]
	if !ok || cs.Sound == "" {
		return SoundDefault
	}
	return cs.Sound
}
