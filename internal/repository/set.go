package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dukerupert/petcare/internal/kv"
	"github.com/dukerupert/petcare/internal/model"
)

// Set bundles every repository over one store.
type Set struct {
	store kv.Store

	Pets              *Pets
	Vaccines          *Vaccines
	Reminders         *Reminders
	Expenses          *Expenses
	Weights           *Weights
	Grooming          *GroomingRecords
	Activities        *Activities
	Insurance         *Insurances
	Claims            *Claims
	MedicalRecords    *MedicalRecords
	RecurringExpenses *RecurringExpenses
	Vets              *Vets
	Settings          *SettingsRepo
}

// NewSet builds the repositories. now drives derived vaccine status and
// timestamps; loc fixes the calendar used for reminder ordering.
func NewSet(store kv.Store, now func() time.Time, loc *time.Location) *Set {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	s := &Set{
		store:             store,
		Pets:              NewCollection[model.Pet](store, "pets"),
		Vaccines:          NewVaccines(store, now),
		Reminders:         NewReminders(store, loc),
		Expenses:          NewCollection[model.Expense](store, "expenses"),
		Weights:           NewCollection[model.Weight](store, "weights"),
		Grooming:          NewCollection[model.GroomingRecord](store, "grooming"),
		Activities:        NewCollection[model.ActivityLog](store, "activities"),
		Insurance:         NewCollection[model.Insurance](store, "insurance"),
		Claims:            NewClaims(store),
		MedicalRecords:    NewCollection[model.MedicalRecord](store, "medical_records"),
		RecurringExpenses: NewCollection[model.RecurringExpense](store, "recurring_expenses"),
		Vets:              NewCollection[model.Vet](store, "vets"),
		Settings:          NewSettingsRepo(store),
	}
	s.setClock(now)
	return s
}

func (s *Set) setClock(now func() time.Time) {
	s.Pets.SetClock(now)
	s.Vaccines.SetClock(now)
	s.Reminders.SetClock(now)
	s.Expenses.SetClock(now)
	s.Weights.SetClock(now)
	s.Grooming.SetClock(now)
	s.Activities.SetClock(now)
	s.Insurance.SetClock(now)
	s.Claims.SetClock(now)
	s.MedicalRecords.SetClock(now)
	s.RecurringExpenses.SetClock(now)
	s.Vets.SetClock(now)
}

// PetOwned lists every collection whose records belong to a pet. Vets are shared
// and claims hang off insurance, so neither is included.
func (s *Set) PetOwned() []PetOwned {
	return []PetOwned{
		s.Vaccines,
		s.Reminders,
		s.Expenses,
		s.Weights,
		s.Grooming,
		s.Activities,
		s.Insurance,
		s.MedicalRecords,
		s.RecurringExpenses,
	}
}

// Commit writes staged collection values. When the store supports batches all
// values land atomically; otherwise they are written one by one in order.
func (s *Set) Commit(ctx context.Context, staged []Staged) error {
	pending := make(map[string]string, len(staged))
	var order []string
	for _, st := range staged {
		if st.Removed == 0 && st.Saved == 0 {
			continue
		}
		if _, seen := pending[st.Key]; !seen {
			order = append(order, st.Key)
		}
		pending[st.Key] = st.Value
	}
	if len(pending) == 0 {
		return nil
	}

	if b, ok := s.store.(kv.Batcher); ok {
		if err := b.SetMany(ctx, pending); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}
		return nil
	}
	for _, key := range order {
		if err := s.store.SetRaw(ctx, key, pending[key]); err != nil {
			return fmt.Errorf("commit %s: %w", key, err)
		}
	}
	return nil
}
