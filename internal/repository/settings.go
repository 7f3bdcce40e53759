package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dukerupert/petcare/internal/kv"
	"github.com/dukerupert/petcare/internal/model"
)

const settingsKey = KeyPrefix + "settings"

// SettingsRepo stores the single settings document.
type SettingsRepo struct {
	store kv.Store
}

func NewSettingsRepo(store kv.Store) *SettingsRepo {
	return &SettingsRepo{store: store}
}

// Get returns stored settings layered over the defaults.
func (r *SettingsRepo) Get(ctx context.Context) (model.Settings, error) {
	s := model.DefaultSettings()
	raw, ok, err := r.store.GetRaw(ctx, settingsKey)
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if !ok || raw == "" {
		return s, nil
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return model.DefaultSettings(), fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

func (r *SettingsRepo) Save(ctx context.Context, s model.Settings) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := r.store.SetRaw(ctx, settingsKey, string(b)); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
