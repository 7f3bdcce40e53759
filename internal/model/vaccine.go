package model

type VaccineStatus string

const (
	VaccineUpcoming  VaccineStatus = "upcoming"
	VaccineOverdue   VaccineStatus = "overdue"
	VaccineCompleted VaccineStatus = "completed"
)

// Vaccine.Status is derived on read and never persisted.
type Vaccine struct {
	Meta
	PetID            string        `json:"pet_id" validate:"required"`
	Name             string        `json:"name" validate:"required"`
	DateAdministered Date          `json:"date_administered,omitempty" validate:"omitempty,datetime=2006-01-02"`
	NextDueDate      Date          `json:"next_due_date" validate:"required,datetime=2006-01-02"`
	VetClinicName    string        `json:"vet_clinic_name,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	Status           VaccineStatus `json:"status,omitempty"`
}

func (v Vaccine) OwnerPetID() string { return v.PetID }
