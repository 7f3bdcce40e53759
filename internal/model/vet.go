package model

type Vet struct {
	Meta
	Name       string `json:"name" validate:"required"`
	ClinicName string `json:"clinic_name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	Address    string `json:"address,omitempty"`
	Notes      string `json:"notes,omitempty"`
}
