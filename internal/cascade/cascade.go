// Package cascade removes a pet together with everything that references it.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/petcare/internal/metrics"
	"github.com/dukerupert/petcare/internal/model"
	"github.com/dukerupert/petcare/internal/repository"
)

type Step string

const (
	StepGather Step = "gather"
	StepCancel Step = "cancel"
	StepPurge  Step = "purge"
	StepRemove Step = "remove"
)

// StepError reports which step of a cascade failed. Steps before it have
// already taken effect.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("cascade %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Canceller cancels a reminder's alarms. Failures are handled by the implementation.
type Canceller interface {
	CancelReminder(ctx context.Context, r model.Reminder)
}

// Repositories is what the coordinator reads and writes.
type Repositories interface {
	GetPet(ctx context.Context, id string) (*model.Pet, error)
	AllPets(ctx context.Context) ([]model.Pet, error)
	DeletePet(ctx context.Context, id string) error
	RemindersFor(ctx context.Context, petID string) ([]model.Reminder, error)
	AllReminders(ctx context.Context) ([]model.Reminder, error)
	InsuranceFor(ctx context.Context, petID string) ([]model.Insurance, error)
	AllInsurance(ctx context.Context) ([]model.Insurance, error)
	PetOwned() []repository.PetOwned
	StageClaims(ctx context.Context, drop func(insuranceID string) bool) (repository.Staged, error)
	Commit(ctx context.Context, staged []repository.Staged) error
}

// Report summarises one cascade or reconcile run.
type Report struct {
	PetID     string         `json:"pet_id,omitempty"`
	Removed   map[string]int `json:"removed"`
	Cancelled int            `json:"cancelled"`
}

// Total is the number of dependent records removed.
func (r Report) Total() int {
	n := 0
	for _, c := range r.Removed {
		n += c
	}
	return n
}

type Coordinator struct {
	repos  Repositories
	notes  Canceller
	logger *slog.Logger
}

func NewCoordinator(repos Repositories, notes Canceller, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{repos: repos, notes: notes, logger: logger.With("component", "cascade")}
}

// DeletePet gathers the pet's dependents, cancels reminder alarms, purges every
// pet-owned collection in one commit and finally removes the pet. A missing pet
// yields repository.ErrNotFound without touching anything.
func (c *Coordinator) DeletePet(ctx context.Context, petID string) (rep Report, err error) {
	start := time.Now()
	defer func() {
		metrics.CascadeDuration.Observe(time.Since(start).Seconds())
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.CascadeDeletes.WithLabelValues(result).Inc()
	}()

	rep = Report{PetID: petID, Removed: map[string]int{}}
	log := c.logger.With("pet_id", petID)

	if _, err := c.repos.GetPet(ctx, petID); err != nil {
		return rep, fmt.Errorf("delete pet: %w", err)
	}

	// gather
	reminders, err := c.repos.RemindersFor(ctx, petID)
	if err != nil {
		return rep, &StepError{Step: StepGather, Err: err}
	}
	policies, err := c.repos.InsuranceFor(ctx, petID)
	if err != nil {
		return rep, &StepError{Step: StepGather, Err: err}
	}

	// cancel
	rep.Cancelled = c.cancelAll(ctx, reminders)

	// purge
	var staged []repository.Staged
	for _, col := range c.repos.PetOwned() {
		st, err := col.StageByPetID(ctx, petID)
		if err != nil {
			return rep, &StepError{Step: StepPurge, Err: err}
		}
		staged = append(staged, st)
	}
	policyIDs := make(map[string]bool, len(policies))
	for _, p := range policies {
		policyIDs[p.ID] = true
	}
	if len(policyIDs) > 0 {
		st, err := c.repos.StageClaims(ctx, func(id string) bool { return policyIDs[id] })
		if err != nil {
			return rep, &StepError{Step: StepPurge, Err: err}
		}
		staged = append(staged, st)
	}
	if err := c.repos.Commit(ctx, staged); err != nil {
		return rep, &StepError{Step: StepPurge, Err: err}
	}
	record(&rep, staged)

	// remove
	if err := c.repos.DeletePet(ctx, petID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return rep, &StepError{Step: StepRemove, Err: err}
	}

	log.Info("pet deleted", "removed", rep.Total(), "cancelled", rep.Cancelled)
	return rep, nil
}

// cancelAll cancels the alarms of every reminder that has any and returns how
// many reminders were cancelled.
func (c *Coordinator) cancelAll(ctx context.Context, reminders []model.Reminder) int {
	n := 0
	for _, r := range reminders {
		if len(r.Handles()) == 0 {
			continue
		}
		c.notes.CancelReminder(ctx, r)
		n++
	}
	return n
}

func record(rep *Report, staged []repository.Staged) {
	for _, st := range staged {
		if st.Removed == 0 {
			continue
		}
		rep.Removed[st.Name] += st.Removed
		metrics.CascadeRemoved.WithLabelValues(st.Name).Add(float64(st.Removed))
	}
}

// Reconcile removes records whose pet no longer exists, cancelling the alarms
// of orphaned reminders first. Claims are dropped when their policy is gone.
func (c *Coordinator) Reconcile(ctx context.Context) (Report, error) {
	rep := Report{Removed: map[string]int{}}

	pets, err := c.repos.AllPets(ctx)
	if err != nil {
		return rep, &StepError{Step: StepGather, Err: err}
	}
	alive := make(map[string]bool, len(pets))
	for _, p := range pets {
		alive[p.ID] = true
	}
	isAlive := func(id string) bool { return alive[id] }

	reminders, err := c.repos.AllReminders(ctx)
	if err != nil {
		return rep, &StepError{Step: StepGather, Err: err}
	}
	var orphans []model.Reminder
	for _, r := range reminders {
		if !alive[r.PetID] {
			orphans = append(orphans, r)
		}
	}
	policies, err := c.repos.AllInsurance(ctx)
	if err != nil {
		return rep, &StepError{Step: StepGather, Err: err}
	}
	livePolicies := make(map[string]bool, len(policies))
	for _, p := range policies {
		if alive[p.PetID] {
			livePolicies[p.ID] = true
		}
	}

	rep.Cancelled = c.cancelAll(ctx, orphans)

	var staged []repository.Staged
	for _, col := range c.repos.PetOwned() {
		st, err := col.StageOrphans(ctx, isAlive)
		if err != nil {
			return rep, &StepError{Step: StepPurge, Err: err}
		}
		staged = append(staged, st)
	}
	st, err := c.repos.StageClaims(ctx, func(id string) bool { return !livePolicies[id] })
	if err != nil {
		return rep, &StepError{Step: StepPurge, Err: err}
	}
	staged = append(staged, st)

	if err := c.repos.Commit(ctx, staged); err != nil {
		return rep, &StepError{Step: StepPurge, Err: err}
	}
	record(&rep, staged)

	if rep.Total() > 0 {
		c.logger.Warn("removed orphaned records", "removed", rep.Removed, "cancelled", rep.Cancelled)
	}
	return rep, nil
}
