package model

type Species string

const (
	SpeciesDog    Species = "dog"
	SpeciesCat    Species = "cat"
	SpeciesBird   Species = "bird"
	SpeciesRabbit Species = "rabbit"
	SpeciesOther  Species = "other"
)

type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

type EmergencyContact struct {
	Name         string `json:"name" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	Relationship string `json:"relationship,omitempty"`
}

type Pet struct {
	Meta
	Name               string            `json:"name" validate:"required"`
	Species            Species           `json:"species" validate:"required,oneof=dog cat bird rabbit other"`
	Breed              string            `json:"breed,omitempty"`
	DateOfBirth        Date              `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Sex                Sex               `json:"sex" validate:"required,oneof=male female unknown"`
	AvatarURI          string            `json:"avatar_uri,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	MicrochipNumber    string            `json:"microchip_number,omitempty"`
	RegistrationNumber string            `json:"registration_number,omitempty"`
	InsuranceID        string            `json:"insurance_id,omitempty"`
	EmergencyContact   *EmergencyContact `json:"emergency_contact,omitempty"`
	PreferredVetID     string            `json:"preferred_vet_id,omitempty"`
}
