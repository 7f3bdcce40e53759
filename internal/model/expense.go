package model

type ExpenseCategory string

const (
	ExpenseVet      ExpenseCategory = "vet"
	ExpenseFood     ExpenseCategory = "food"
	ExpenseGrooming ExpenseCategory = "grooming"
	ExpenseToys     ExpenseCategory = "toys"
	ExpenseMedicine ExpenseCategory = "medicine"
	ExpenseOther    ExpenseCategory = "other"
)

type Expense struct {
	Meta
	PetID       string          `json:"pet_id" validate:"required"`
	Category    ExpenseCategory `json:"category" validate:"required,oneof=vet food grooming toys medicine other"`
	Amount      float64         `json:"amount" validate:"gte=0"`
	Date        Date            `json:"date" validate:"required,datetime=2006-01-02"`
	Description string          `json:"description,omitempty"`
	Vendor      string          `json:"vendor,omitempty"`
}

func (e Expense) OwnerPetID() string { return e.PetID }

type RecurringExpense struct {
	Meta
	PetID       string          `json:"pet_id" validate:"required"`
	Category    ExpenseCategory `json:"category" validate:"required,oneof=vet food grooming toys medicine other"`
	Amount      float64         `json:"amount" validate:"gte=0"`
	Frequency   Repeat          `json:"frequency" validate:"required,oneof=weekly monthly yearly"`
	StartDate   Date            `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     Date            `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Description string          `json:"description,omitempty"`
	Vendor      string          `json:"vendor,omitempty"`
	NextDueDate Date            `json:"next_due_date" validate:"omitempty,datetime=2006-01-02"`
	IsActive    bool            `json:"is_active"`
}

func (e RecurringExpense) OwnerPetID() string { return e.PetID }
