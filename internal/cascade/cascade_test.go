package cascade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/petcare/internal/kv"
	"github.com/dukerupert/petcare/internal/model"
	"github.com/dukerupert/petcare/internal/notify"
	"github.com/dukerupert/petcare/internal/notify/notifytest"
	"github.com/dukerupert/petcare/internal/repository"
)

var now = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store    kv.Store
	repos    *repository.Set
	notifier *notifytest.Notifier
	sched    *notify.Scheduler
	coord    *Coordinator
}

func newFixture(t *testing.T, store kv.Store) *fixture {
	t.Helper()
	repos := repository.NewSet(store, func() time.Time { return now }, time.UTC)
	n := notifytest.New()
	sched := notify.NewScheduler(n, nil, nil, time.UTC)
	sched.SetClock(func() time.Time { return now })
	return &fixture{
		store:    store,
		repos:    repos,
		notifier: n,
		sched:    sched,
		coord:    NewCoordinator(SetRepositories{repos}, sched, nil),
	}
}

func (f *fixture) addPet(t *testing.T, name string) string {
	t.Helper()
	p := &model.Pet{Name: name, Species: model.SpeciesDog}
	if err := f.repos.Pets.Save(context.Background(), p); err != nil {
		t.Fatalf("save pet: %v", err)
	}
	return p.ID
}

func (f *fixture) addReminder(t *testing.T, petID string, repeat model.Repeat) model.Reminder {
	t.Helper()
	ctx := context.Background()
	r := model.Reminder{PetID: petID, Type: model.ReminderVetVisit, Title: "Checkup", ReminderDate: "2025-05-10", ReminderTime: "09:00", Repeat: repeat}
	res, err := f.sched.Schedule(ctx, r)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	res.Apply(&r)
	if err := f.repos.Reminders.Save(ctx, &r); err != nil {
		t.Fatalf("save reminder: %v", err)
	}
	return r
}

func TestDeletePetRemovesAllDependents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, kv.NewMemory())

	maxID := f.addPet(t, "Max")
	luna := f.addPet(t, "Luna")

	f.repos.Vaccines.Save(ctx, &model.Vaccine{PetID: maxID, Name: "Rabies", NextDueDate: "2026-01-01"})
	f.repos.Vaccines.Save(ctx, &model.Vaccine{PetID: maxID, Name: "DHPP", NextDueDate: "2026-02-01"})
	f.addReminder(t, maxID, model.RepeatNone)
	for _, amt := range []float64{10, 20, 30} {
		f.repos.Expenses.Save(ctx, &model.Expense{PetID: maxID, Category: model.ExpenseFood, Amount: amt, Date: "2025-04-01"})
	}
	f.repos.Expenses.Save(ctx, &model.Expense{PetID: luna, Category: model.ExpenseVet, Amount: 99, Date: "2025-04-01"})

	rep, err := f.coord.DeletePet(ctx, maxID)
	if err != nil {
		t.Fatalf("delete pet: %v", err)
	}

	if rep.Total() != 6 {
		t.Errorf("removed = %d (%v), want 6", rep.Total(), rep.Removed)
	}
	if f.notifier.CancelCalls != 1 || rep.Cancelled != 1 {
		t.Errorf("cancel calls = %d, report = %d, want 1", f.notifier.CancelCalls, rep.Cancelled)
	}
	if len(f.notifier.Pending()) != 0 {
		t.Errorf("alarms still pending: %d", len(f.notifier.Pending()))
	}

	if vs, _ := f.repos.Vaccines.GetByPetID(ctx, maxID); len(vs) != 0 {
		t.Errorf("vaccines left: %d", len(vs))
	}
	if rs, _ := f.repos.Reminders.GetByPetID(ctx, maxID); len(rs) != 0 {
		t.Errorf("reminders left: %d", len(rs))
	}
	if es, _ := f.repos.Expenses.GetByPetID(ctx, maxID); len(es) != 0 {
		t.Errorf("expenses left: %d", len(es))
	}
	if _, err := f.repos.Pets.GetByID(ctx, maxID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("pet lookup err = %v, want ErrNotFound", err)
	}

	if es, _ := f.repos.Expenses.GetByPetID(ctx, luna); len(es) != 1 {
		t.Errorf("other pet's expenses = %d, want 1", len(es))
	}
}

func TestDeletePetCancelsWholeSeries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, kv.NewMemory())
	pet := f.addPet(t, "Max")
	f.addReminder(t, pet, model.RepeatWeekly)

	if _, err := f.coord.DeletePet(ctx, pet); err != nil {
		t.Fatalf("delete pet: %v", err)
	}
	if len(f.notifier.Pending()) != 0 {
		t.Errorf("pending = %d, want 0", len(f.notifier.Pending()))
	}
}

func TestDeletePetExtendedCollections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, kv.NewMemory())
	pet := f.addPet(t, "Max")

	f.repos.Weights.Save(ctx, &model.Weight{PetID: pet, Weight: 12})
	f.repos.Grooming.Save(ctx, &model.GroomingRecord{PetID: pet})
	f.repos.Activities.Save(ctx, &model.ActivityLog{PetID: pet})
	f.repos.MedicalRecords.Save(ctx, &model.MedicalRecord{PetID: pet})
	f.repos.RecurringExpenses.Save(ctx, &model.RecurringExpense{PetID: pet})
	policy := &model.Insurance{PetID: pet, ProviderName: "Acme"}
	f.repos.Insurance.Save(ctx, policy)
	f.repos.Claims.Save(ctx, &model.InsuranceClaim{InsuranceID: policy.ID, ClaimNumber: "C1"})
	f.repos.Claims.Save(ctx, &model.InsuranceClaim{InsuranceID: "other-policy", ClaimNumber: "C2"})
	vet := &model.Vet{Name: "Dr. Lee"}
	f.repos.Vets.Save(ctx, vet)

	rep, err := f.coord.DeletePet(ctx, pet)
	if err != nil {
		t.Fatalf("delete pet: %v", err)
	}
	for _, name := range []string{"weights", "grooming", "activities", "medical_records", "recurring_expenses", "insurance", "insurance_claims"} {
		if rep.Removed[name] != 1 {
			t.Errorf("removed[%s] = %d, want 1", name, rep.Removed[name])
		}
	}
	if claims, _ := f.repos.Claims.GetAll(ctx); len(claims) != 1 {
		t.Errorf("claims left = %d, want 1", len(claims))
	}
	if _, err := f.repos.Vets.GetByID(ctx, vet.ID); err != nil {
		t.Errorf("vet should survive: %v", err)
	}
}

func TestDeletePetNotFound(t *testing.T) {
	f := newFixture(t, kv.NewMemory())
	_, err := f.coord.DeletePet(context.Background(), "ghost")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	var se *StepError
	if errors.As(err, &se) {
		t.Error("missing pet should not be a step failure")
	}
}

// failingBatch accepts single writes but fails batched ones.
type failingBatch struct {
	*kv.Memory
}

func (failingBatch) SetMany(context.Context, map[string]string) error {
	return errors.New("disk full")
}

func TestDeletePetPurgeFailureKeepsPet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, failingBatch{kv.NewMemory()})
	pet := f.addPet(t, "Max")
	f.repos.Expenses.Save(ctx, &model.Expense{PetID: pet, Amount: 5})

	_, err := f.coord.DeletePet(ctx, pet)
	var se *StepError
	if !errors.As(err, &se) || se.Step != StepPurge {
		t.Fatalf("err = %v, want purge StepError", err)
	}
	if _, err := f.repos.Pets.GetByID(ctx, pet); err != nil {
		t.Errorf("pet should remain after failed purge: %v", err)
	}
	if es, _ := f.repos.Expenses.GetByPetID(ctx, pet); len(es) != 1 {
		t.Errorf("batched purge should be all-or-nothing, expenses = %d", len(es))
	}
}

func TestReconcileRemovesOrphans(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, kv.NewMemory())
	pet := f.addPet(t, "Max")

	f.addReminder(t, "ghost", model.RepeatMonthly)
	f.repos.Vaccines.Save(ctx, &model.Vaccine{PetID: "ghost", Name: "Rabies", NextDueDate: "2026-01-01"})
	f.repos.Vaccines.Save(ctx, &model.Vaccine{PetID: pet, Name: "Rabies", NextDueDate: "2026-01-01"})
	orphanPolicy := &model.Insurance{PetID: "ghost"}
	f.repos.Insurance.Save(ctx, orphanPolicy)
	f.repos.Claims.Save(ctx, &model.InsuranceClaim{InsuranceID: orphanPolicy.ID})

	rep, err := f.coord.Reconcile(ctx)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	want := map[string]int{"reminders": 1, "vaccines": 1, "insurance": 1, "insurance_claims": 1}
	for k, v := range want {
		if rep.Removed[k] != v {
			t.Errorf("removed[%s] = %d, want %d", k, rep.Removed[k], v)
		}
	}
	if rep.Cancelled != 1 || len(f.notifier.Pending()) != 0 {
		t.Errorf("cancelled = %d pending = %d", rep.Cancelled, len(f.notifier.Pending()))
	}
	if vs, _ := f.repos.Vaccines.GetByPetID(ctx, pet); len(vs) != 1 {
		t.Errorf("live pet's vaccine removed")
	}

	rep, _ = f.coord.Reconcile(ctx)
	if rep.Total() != 0 {
		t.Errorf("second reconcile removed %d", rep.Total())
	}
}
