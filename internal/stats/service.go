package stats

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/petcare/internal/model"
	"github.com/dukerupert/petcare/internal/repository"
)

// Service loads repository snapshots and computes statistics on demand.
type Service struct {
	repos *repository.Set
	now   func() time.Time
}

func NewService(repos *repository.Set, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repos: repos, now: now}
}

type snapshot struct {
	pets     []model.Pet
	expenses []model.Expense
	vaccines []model.Vaccine
}

func (s *Service) load(ctx context.Context) (snapshot, error) {
	var snap snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.pets, err = s.repos.Pets.GetAll(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.expenses, err = s.repos.Expenses.GetAll(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.vaccines, err = s.repos.Vaccines.GetAll(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, fmt.Errorf("load statistics snapshot: %w", err)
	}
	return snap, nil
}

// PerPet returns repository.ErrNotFound for an unknown pet.
func (s *Service) PerPet(ctx context.Context, petID string) (PetStatistics, error) {
	if _, err := s.repos.Pets.GetByID(ctx, petID); err != nil {
		return PetStatistics{}, err
	}
	snap, err := s.load(ctx)
	if err != nil {
		return PetStatistics{}, err
	}
	return ForPet(petID, snap.expenses, snap.vaccines, s.now()), nil
}

func (s *Service) Overall(ctx context.Context) (OverallStatistics, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return OverallStatistics{}, err
	}
	return Overall(snap.pets, snap.expenses, snap.vaccines, s.now()), nil
}
