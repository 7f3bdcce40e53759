package model

type MedicalRecord struct {
	Meta
	PetID       string `json:"pet_id" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=vet_visit medication lab_result surgery condition"`
	Title       string `json:"title" validate:"required"`
	Date        Date   `json:"date" validate:"required,datetime=2006-01-02"`
	VetID       string `json:"vet_id,omitempty"`
	Description string `json:"description,omitempty"`
	Notes       string `json:"notes,omitempty"`

	MedicationName string `json:"medication_name,omitempty"`
	Dosage         string `json:"dosage,omitempty"`
	Frequency      string `json:"frequency,omitempty"`
	EndDate        Date   `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`

	TestName string `json:"test_name,omitempty"`
	Results  string `json:"results,omitempty"`

	ConditionName string `json:"condition_name,omitempty"`
	Severity      string `json:"severity,omitempty" validate:"omitempty,oneof=mild moderate severe"`
	IsChronic     bool   `json:"is_chronic,omitempty"`
}

func (m MedicalRecord) OwnerPetID() string { return m.PetID }
