// Package repository stores each entity type as one JSON collection in a kv.Store.
//
// Every call reads the whole collection, mutates it in memory and writes it back.
// A per-collection mutex serialises writers within one process.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/petcare/internal/kv"
	"github.com/dukerupert/petcare/internal/model"
)

// KeyPrefix namespaces every collection key.
const KeyPrefix = "petcare:"

var ErrNotFound = errors.New("not found")

// Entity constrains P to the pointer type of T that carries model.Meta.
type Entity[T any] interface {
	*T
	model.Entity
}

// Collection is the whole-collection repository for one entity type.
type Collection[T any, P Entity[T]] struct {
	store kv.Store
	key   string
	name  string

	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

func NewCollection[T any, P Entity[T]](store kv.Store, name string) *Collection[T, P] {
	return &Collection[T, P]{
		store: store,
		key:   KeyPrefix + name,
		name:  name,
		now:   time.Now,
		newID: newID,
	}
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// SetClock replaces the timestamp source used by Save.
func (c *Collection[T, P]) SetClock(now func() time.Time) { c.now = now }

// Name is the collection's short name, e.g. "vaccines".
func (c *Collection[T, P]) Name() string { return c.name }

// Key is the kv key the collection is stored under.
func (c *Collection[T, P]) Key() string { return c.key }

func (c *Collection[T, P]) load(ctx context.Context) ([]T, error) {
	raw, ok, err := c.store.GetRaw(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.name, err)
	}
	if !ok || raw == "" {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.name, err)
	}
	return items, nil
}

func (c *Collection[T, P]) encode(items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", c.name, err)
	}
	return string(b), nil
}

func (c *Collection[T, P]) write(ctx context.Context, items []T) error {
	raw, err := c.encode(items)
	if err != nil {
		return err
	}
	if err := c.store.SetRaw(ctx, c.key, raw); err != nil {
		return fmt.Errorf("write %s: %w", c.name, err)
	}
	return nil
}

func (c *Collection[T, P]) GetAll(ctx context.Context) ([]T, error) {
	return c.load(ctx)
}

// GetByID returns ErrNotFound when no record has the id.
func (c *Collection[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	items, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if P(&items[i]).Base().ID == id {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("%s %s: %w", c.name, id, ErrNotFound)
}

// Where returns records matching keep, in stored order.
func (c *Collection[T, P]) Where(ctx context.Context, keep func(*T) bool) ([]T, error) {
	items, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []T{}
	for i := range items {
		if keep(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out, nil
}

// GetByPetID returns the records owned by petID. Collections whose type is not
// pet-scoped always return an empty slice.
func (c *Collection[T, P]) GetByPetID(ctx context.Context, petID string) ([]T, error) {
	return c.Where(ctx, func(item *T) bool {
		return ownedBy(item, petID)
	})
}

// Save inserts or replaces item by id. On insert it assigns the id and
// CreatedAt; on replace it keeps the stored CreatedAt. UpdatedAt is always set.
func (c *Collection[T, P]) Save(ctx context.Context, item *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	return c.write(ctx, c.upsert(items, item))
}

func (c *Collection[T, P]) upsert(items []T, item *T) []T {
	meta := P(item).Base()
	now := c.now().UTC()
	meta.UpdatedAt = now

	if meta.ID != "" {
		for i := range items {
			existing := P(&items[i]).Base()
			if existing.ID == meta.ID {
				meta.CreatedAt = existing.CreatedAt
				items[i] = *item
				return items
			}
		}
	} else {
		meta.ID = c.newID()
	}
	meta.CreatedAt = now
	return append(items, *item)
}

// StageSave computes the collection value after saving items, with the same
// id and timestamp rules as Save, without writing it.
func (c *Collection[T, P]) StageSave(ctx context.Context, items ...*T) (Staged, error) {
	all, err := c.load(ctx)
	if err != nil {
		return Staged{}, err
	}
	for _, item := range items {
		all = c.upsert(all, item)
	}
	raw, err := c.encode(all)
	if err != nil {
		return Staged{}, err
	}
	return Staged{Name: c.name, Key: c.key, Value: raw, Saved: len(items)}, nil
}

// Locked runs fn while holding the collection's write lock, so a staged value
// cannot overwrite a concurrent Save. fn must not call Save or Delete on c.
func (c *Collection[T, P]) Locked(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn()
}

// Delete removes the record with id, returning ErrNotFound if absent.
func (c *Collection[T, P]) Delete(ctx context.Context, id string) error {
	n, err := c.DeleteWhere(ctx, func(item *T) bool { return P(item).Base().ID == id })
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", c.name, id, ErrNotFound)
	}
	return nil
}

// DeleteByPetID removes every record owned by petID and reports how many went.
func (c *Collection[T, P]) DeleteByPetID(ctx context.Context, petID string) (int, error) {
	return c.DeleteWhere(ctx, func(item *T) bool { return ownedBy(item, petID) })
}

// DeleteWhere removes matching records. Nothing is written when none match.
func (c *Collection[T, P]) DeleteWhere(ctx context.Context, drop func(*T) bool) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, removed, err := c.filter(ctx, drop)
	if err != nil || removed == 0 {
		return 0, err
	}
	if err := c.store.SetRaw(ctx, c.key, raw); err != nil {
		return 0, fmt.Errorf("write %s: %w", c.name, err)
	}
	return removed, nil
}

// Stage computes the collection value that would remain after dropping the
// matching records, without writing it. The cascade commits staged values together.
func (c *Collection[T, P]) Stage(ctx context.Context, drop func(*T) bool) (Staged, error) {
	raw, removed, err := c.filter(ctx, drop)
	if err != nil {
		return Staged{}, err
	}
	return Staged{Name: c.name, Key: c.key, Value: raw, Removed: removed}, nil
}

func (c *Collection[T, P]) filter(ctx context.Context, drop func(*T) bool) (string, int, error) {
	items, err := c.load(ctx)
	if err != nil {
		return "", 0, err
	}
	kept := items[:0]
	removed := 0
	for i := range items {
		if drop(&items[i]) {
			removed++
			continue
		}
		kept = append(kept, items[i])
	}
	raw, err := c.encode(kept)
	if err != nil {
		return "", 0, err
	}
	return raw, removed, nil
}

// StageByPetID stages removal of every record owned by petID.
func (c *Collection[T, P]) StageByPetID(ctx context.Context, petID string) (Staged, error) {
	return c.Stage(ctx, func(item *T) bool { return ownedBy(item, petID) })
}

// StageOrphans stages removal of pet-scoped records whose owner is not alive.
func (c *Collection[T, P]) StageOrphans(ctx context.Context, alive func(petID string) bool) (Staged, error) {
	return c.Stage(ctx, func(item *T) bool {
		s, ok := any(item).(model.PetScoped)
		return ok && !alive(s.OwnerPetID())
	})
}

// Staged is a pending whole-collection write.
type Staged struct {
	Name    string
	Key     string
	Value   string
	Removed int
	Saved   int
}

// PetOwned is the pet-keyed view of a collection used by cascades.
type PetOwned interface {
	Name() string
	StageByPetID(ctx context.Context, petID string) (Staged, error)
	StageOrphans(ctx context.Context, alive func(petID string) bool) (Staged, error)
}

func ownedBy(item any, petID string) bool {
	s, ok := item.(model.PetScoped)
	return ok && petID != "" && s.OwnerPetID() == petID
}
