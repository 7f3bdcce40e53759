package model

type Insurance struct {
	Meta
	PetID           string  `json:"pet_id" validate:"required"`
	ProviderName    string  `json:"provider_name" validate:"required"`
	PolicyNumber    string  `json:"policy_number" validate:"required"`
	StartDate       Date    `json:"start_date" validate:"required,datetime=2006-01-02"`
	RenewalDate     Date    `json:"renewal_date" validate:"required,datetime=2006-01-02"`
	MonthlyPremium  float64 `json:"monthly_premium" validate:"gte=0"`
	CoverageDetails string  `json:"coverage_details,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	Email           string  `json:"email,omitempty" validate:"omitempty,email"`
	Website         string  `json:"website,omitempty" validate:"omitempty,url"`
	Notes           string  `json:"notes,omitempty"`
}

func (i Insurance) OwnerPetID() string { return i.PetID }

type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "pending"
	ClaimApproved ClaimStatus = "approved"
	ClaimRejected ClaimStatus = "rejected"
	ClaimPaid     ClaimStatus = "paid"
)

type InsuranceClaim struct {
	Meta
	InsuranceID string      `json:"insurance_id" validate:"required"`
	ClaimNumber string      `json:"claim_number" validate:"required"`
	Date        Date        `json:"date" validate:"required,datetime=2006-01-02"`
	Amount      float64     `json:"amount" validate:"gte=0"`
	Status      ClaimStatus `json:"status" validate:"required,oneof=pending approved rejected paid"`
	Description string      `json:"description,omitempty"`
}
