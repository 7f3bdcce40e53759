package cascade

import (
	"context"

	"github.com/dukerupert/petcare/internal/model"
	"github.com/dukerupert/petcare/internal/repository"
)

// SetRepositories adapts a repository.Set to Repositories.
type SetRepositories struct {
	*repository.Set
}

func (s SetRepositories) GetPet(ctx context.Context, id string) (*model.Pet, error) {
	return s.Pets.GetByID(ctx, id)
}

func (s SetRepositories) AllPets(ctx context.Context) ([]model.Pet, error) {
	return s.Pets.GetAll(ctx)
}

func (s SetRepositories) DeletePet(ctx context.Context, id string) error {
	return s.Pets.Delete(ctx, id)
}

func (s SetRepositories) RemindersFor(ctx context.Context, petID string) ([]model.Reminder, error) {
	return s.Reminders.GetByPetID(ctx, petID)
}

func (s SetRepositories) AllReminders(ctx context.Context) ([]model.Reminder, error) {
	return s.Reminders.GetAll(ctx)
}

func (s SetRepositories) InsuranceFor(ctx context.Context, petID string) ([]model.Insurance, error) {
	return s.Insurance.GetByPetID(ctx, petID)
}

func (s SetRepositories) AllInsurance(ctx context.Context) ([]model.Insurance, error) {
	return s.Insurance.GetAll(ctx)
}

func (s SetRepositories) StageClaims(ctx context.Context, drop func(insuranceID string) bool) (repository.Staged, error) {
	return s.Claims.StageByInsurance(ctx, drop)
}
