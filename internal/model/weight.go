package model

type Weight struct {
	Meta
	PetID  string  `json:"pet_id" validate:"required"`
	Weight float64 `json:"weight" validate:"gt=0"`
	Date   Date    `json:"date" validate:"required,datetime=2006-01-02"`
	Notes  string  `json:"notes,omitempty"`
}

func (w Weight) OwnerPetID() string { return w.PetID }
