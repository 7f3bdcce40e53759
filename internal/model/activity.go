package model

type ActivityLog struct {
	Meta
	PetID         string `json:"pet_id" validate:"required"`
	Type          string `json:"type" validate:"required,oneof=exercise play feeding training social other"`
	Date          Date   `json:"date" validate:"required,datetime=2006-01-02"`
	Time          Clock  `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Duration      int    `json:"duration,omitempty" validate:"gte=0"`
	Description   string `json:"description,omitempty"`
	Mood          string `json:"mood,omitempty" validate:"omitempty,oneof=happy calm energetic anxious sick tired other"`
	BehaviorNotes string `json:"behavior_notes,omitempty"`
}

func (a ActivityLog) OwnerPetID() string { return a.PetID }
