package repository

import (
	"context"
	"time"

	"github.com/dukerupert/petcare/internal/kv"
	"github.com/dukerupert/petcare/internal/model"
	"github.com/dukerupert/petcare/internal/status"
)

type (
	Pets              = Collection[model.Pet, *model.Pet]
	Expenses          = Collection[model.Expense, *model.Expense]
	Weights           = Collection[model.Weight, *model.Weight]
	GroomingRecords   = Collection[model.GroomingRecord, *model.GroomingRecord]
	Activities        = Collection[model.ActivityLog, *model.ActivityLog]
	Insurances        = Collection[model.Insurance, *model.Insurance]
	MedicalRecords    = Collection[model.MedicalRecord, *model.MedicalRecord]
	RecurringExpenses = Collection[model.RecurringExpense, *model.RecurringExpense]
	Vets              = Collection[model.Vet, *model.Vet]
)

// Vaccines derives Status on every read and never stores it.
type Vaccines struct {
	*Collection[model.Vaccine, *model.Vaccine]
	now func() time.Time
}

func NewVaccines(store kv.Store, now func() time.Time) *Vaccines {
	return &Vaccines{Collection: NewCollection[model.Vaccine](store, "vaccines"), now: now}
}

func (r *Vaccines) derive(vs []model.Vaccine) []model.Vaccine {
	now := r.now()
	for i := range vs {
		vs[i].Status = status.Vaccine(vs[i].NextDueDate, vs[i].DateAdministered, now)
	}
	return vs
}

func (r *Vaccines) GetAll(ctx context.Context) ([]model.Vaccine, error) {
	vs, err := r.Collection.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return r.derive(vs), nil
}

func (r *Vaccines) GetByID(ctx context.Context, id string) (*model.Vaccine, error) {
	v, err := r.Collection.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Status = status.Vaccine(v.NextDueDate, v.DateAdministered, r.now())
	return v, nil
}

func (r *Vaccines) GetByPetID(ctx context.Context, petID string) ([]model.Vaccine, error) {
	vs, err := r.Collection.GetByPetID(ctx, petID)
	if err != nil {
		return nil, err
	}
	return r.derive(vs), nil
}

// Save strips the derived status before writing and recomputes it on v.
func (r *Vaccines) Save(ctx context.Context, v *model.Vaccine) error {
	v.Status = ""
	if err := r.Collection.Save(ctx, v); err != nil {
		return err
	}
	v.Status = status.Vaccine(v.NextDueDate, v.DateAdministered, r.now())
	return nil
}

// Reminders returns reminders in chronological order.
type Reminders struct {
	*Collection[model.Reminder, *model.Reminder]
	loc *time.Location
}

func NewReminders(store kv.Store, loc *time.Location) *Reminders {
	return &Reminders{Collection: NewCollection[model.Reminder](store, "reminders"), loc: loc}
}

func (r *Reminders) GetAll(ctx context.Context) ([]model.Reminder, error) {
	rs, err := r.Collection.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	status.SortReminders(rs, r.loc)
	return rs, nil
}

func (r *Reminders) GetByPetID(ctx context.Context, petID string) ([]model.Reminder, error) {
	rs, err := r.Collection.GetByPetID(ctx, petID)
	if err != nil {
		return nil, err
	}
	status.SortReminders(rs, r.loc)
	return rs, nil
}

// Claims are owned by an insurance policy rather than a pet.
type Claims struct {
	*Collection[model.InsuranceClaim, *model.InsuranceClaim]
}

func NewClaims(store kv.Store) *Claims {
	return &Claims{Collection: NewCollection[model.InsuranceClaim](store, "insurance_claims")}
}

func (r *Claims) GetByInsuranceID(ctx context.Context, insuranceID string) ([]model.InsuranceClaim, error) {
	return r.Where(ctx, func(c *model.InsuranceClaim) bool { return c.InsuranceID == insuranceID })
}

func (r *Claims) DeleteByInsuranceID(ctx context.Context, insuranceID string) (int, error) {
	return r.DeleteWhere(ctx, func(c *model.InsuranceClaim) bool { return c.InsuranceID == insuranceID })
}

// StageByInsurance stages removal of claims whose policy id matches drop.
func (r *Claims) StageByInsurance(ctx context.Context, drop func(insuranceID string) bool) (Staged, error) {
	return r.Stage(ctx, func(c *model.InsuranceClaim) bool { return drop(c.InsuranceID) })
}
