package model

type ReminderType string

const (
	ReminderVetVisit ReminderType = "vet_visit"
	ReminderMedicine ReminderType = "medicine"
	ReminderGrooming ReminderType = "grooming"
	ReminderCustom   ReminderType = "custom"
)

type Repeat string

const (
	RepeatNone    Repeat = "none"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
	RepeatYearly  Repeat = "yearly"
)

type ReminderStatus string

const (
	ReminderPast     ReminderStatus = "past"
	ReminderToday    ReminderStatus = "today"
	ReminderUpcoming ReminderStatus = "upcoming"
)

type Reminder struct {
	Meta
	PetID        string       `json:"pet_id" validate:"required"`
	Type         ReminderType `json:"type" validate:"required,oneof=vet_visit medicine grooming custom"`
	Title        string       `json:"title" validate:"required"`
	Description  string       `json:"description,omitempty"`
	ReminderDate Date         `json:"reminder_date" validate:"required,datetime=2006-01-02"`
	ReminderTime Clock        `json:"reminder_time" validate:"required,datetime=15:04"`
	Repeat       Repeat       `json:"repeat" validate:"omitempty,oneof=none weekly monthly"`
	// NotificationID is the primary (first) handle of the scheduled series.
	NotificationID  string   `json:"notification_id,omitempty"`
	NotificationIDs []string `json:"notification_ids,omitempty"`
}

func (r Reminder) OwnerPetID() string { return r.PetID }

// Handles returns every tracked notification handle, primary first.
func (r Reminder) Handles() []string {
	if len(r.NotificationIDs) > 0 {
		return r.NotificationIDs
	}
	if r.NotificationID != "" {
		return []string{r.NotificationID}
	}
	return nil
}
