package petcare

import (
	"context"
	"fmt"

	"github.com/dukerupert/petcare/internal/model"
)

// collection is the repository surface Records needs.
type collection[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id string) (*T, error)
	GetByPetID(ctx context.Context, petID string) ([]T, error)
	Save(ctx context.Context, item *T) error
	Delete(ctx context.Context, id string) error
}

// Records applies validation, the owner check and broadcasts to one entity type.
type Records[T any] struct {
	svc    *Service
	entity string
	col    collection[T]
	// check runs after validation on create and update.
	check func(ctx context.Context, item *T) error
	// prepare normalises an item before validation.
	prepare func(item *T)
}

func newRecords[T any](svc *Service, entity string, col collection[T]) *Records[T] {
	r := &Records[T]{svc: svc, entity: entity, col: col}
	r.check = func(ctx context.Context, item *T) error {
		if owned, ok := any(item).(model.PetScoped); ok {
			return svc.requirePet(ctx, owned.OwnerPetID())
		}
		return nil
	}
	return r
}

// Entity is the name used in change broadcasts.
func (r *Records[T]) Entity() string { return r.entity }

// List returns every record, or only the pet's when petID is set.
func (r *Records[T]) List(ctx context.Context, petID string) ([]T, error) {
	if petID != "" {
		return r.col.GetByPetID(ctx, petID)
	}
	return r.col.GetAll(ctx)
}

func (r *Records[T]) Get(ctx context.Context, id string) (*T, error) {
	return r.col.GetByID(ctx, id)
}

func (r *Records[T]) Create(ctx context.Context, item *T) error {
	meta := any(item).(model.Entity).Base()
	meta.ID = ""
	if err := r.validate(ctx, item); err != nil {
		return err
	}
	if err := r.col.Save(ctx, item); err != nil {
		return fmt.Errorf("create %s: %w", r.entity, err)
	}
	r.svc.broadcast(r.entity, "created", meta.ID, ownerOf(item))
	return nil
}

// Update replaces the record with id. It returns repository.ErrNotFound when absent.
func (r *Records[T]) Update(ctx context.Context, id string, item *T) error {
	if _, err := r.col.GetByID(ctx, id); err != nil {
		return err
	}
	meta := any(item).(model.Entity).Base()
	meta.ID = id
	if err := r.validate(ctx, item); err != nil {
		return err
	}
	if err := r.col.Save(ctx, item); err != nil {
		return fmt.Errorf("update %s: %w", r.entity, err)
	}
	r.svc.broadcast(r.entity, "updated", id, ownerOf(item))
	return nil
}

func (r *Records[T]) Delete(ctx context.Context, id string) error {
	existing, err := r.col.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.col.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", r.entity, err)
	}
	r.svc.broadcast(r.entity, "deleted", id, ownerOf(existing))
	return nil
}

func (r *Records[T]) validate(ctx context.Context, item *T) error {
	if r.prepare != nil {
		r.prepare(item)
	}
	if err := r.svc.check(item); err != nil {
		return err
	}
	if r.check != nil {
		return r.check(ctx, item)
	}
	return nil
}

func ownerOf(item any) string {
	if owned, ok := item.(model.PetScoped); ok {
		return owned.OwnerPetID()
	}
	return ""
}
