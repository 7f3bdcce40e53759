package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/petcare/internal/notify"
	"github.com/dukerupert/petcare/internal/store"
)

// Notifier implements notify.Notifier on top of the SQLite outbox. The
// Dispatcher delivers entries once their fire time arrives.
type Notifier struct {
	outbox   *store.OutboxStore
	settings notify.SettingsSource
	logger   *slog.Logger
}

func NewNotifier(outbox *store.OutboxStore, settings notify.SettingsSource, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{outbox: outbox, settings: settings, logger: logger.With("component", "push")}
}

// RequestPermission grants scheduling while notifications are switched on in settings.
func (n *Notifier) RequestPermission(ctx context.Context) (bool, error) {
	if n.settings == nil {
		return true, nil
	}
	s, err := n.settings.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("read settings: %w", err)
	}
	return s.NotificationsEnabled, nil
}

func (n *Notifier) ScheduleAt(ctx context.Context, at time.Time, p notify.Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	handle := uuid.NewString()
	if _, err := n.outbox.Create(ctx, handle, at, string(data)); err != nil {
		return "", err
	}
	return handle, nil
}

func (n *Notifier) Cancel(ctx context.Context, handle string) error {
	return n.outbox.Cancel(ctx, handle)
}

func (n *Notifier) CancelAll(ctx context.Context) error {
	count, err := n.outbox.CancelAllPending(ctx)
	if err != nil {
		return err
	}
	n.logger.Info("cancelled pending notifications", "count", count)
	return nil
}
