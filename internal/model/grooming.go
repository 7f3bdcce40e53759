package model

type GroomingService string

const (
	GroomingFull          GroomingService = "full_groom"
	GroomingBath          GroomingService = "bath"
	GroomingNailTrim      GroomingService = "nail_trim"
	GroomingHaircut       GroomingService = "haircut"
	GroomingTeethCleaning GroomingService = "teeth_cleaning"
	GroomingOther         GroomingService = "other"
)

type GroomingRecord struct {
	Meta
	PetID            string          `json:"pet_id" validate:"required"`
	ServiceType      GroomingService `json:"service_type" validate:"required,oneof=full_groom bath nail_trim haircut teeth_cleaning other"`
	Date             Date            `json:"date" validate:"required,datetime=2006-01-02"`
	NextGroomingDate Date            `json:"next_grooming_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	GroomerName      string          `json:"groomer_name,omitempty"`
	GroomerPhone     string          `json:"groomer_phone,omitempty"`
	GroomerEmail     string          `json:"groomer_email,omitempty" validate:"omitempty,email"`
	Cost             *float64        `json:"cost,omitempty" validate:"omitempty,gte=0"`
	Notes            string          `json:"notes,omitempty"`
}

func (g GroomingRecord) OwnerPetID() string { return g.PetID }
