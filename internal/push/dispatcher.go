package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/petcare/internal/metrics"
	"github.com/dukerupert/petcare/internal/model"
	"github.com/dukerupert/petcare/internal/notify"
	"github.com/dukerupert/petcare/internal/store"
	"github.com/dukerupert/petcare/internal/websocket"
)

const (
	dispatchBatch   = 50
	maxAttempts     = 5
	retentionPeriod = 7 * 24 * time.Hour
)

// Sender delivers a message to one browser subscription.
type Sender interface {
	Send(ctx context.Context, sub *model.PushSubscription, msg Message) error
}

// Broadcaster fans a message out to connected UI clients.
type Broadcaster interface {
	Broadcast(msg websocket.Message)
}

// Dispatcher periodically delivers outbox entries whose fire time has passed.
type Dispatcher struct {
	mu       sync.RWMutex
	outbox   *store.OutboxStore
	subs     *store.PushStore
	sender   Sender
	hub      Broadcaster
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	lastCleanup time.Time
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewDispatcher creates a dispatcher. sender and hub may be nil to skip that channel.
func NewDispatcher(outbox *store.OutboxStore, subs *store.PushStore, sender Sender, hub Broadcaster, interval time.Duration, logger *slog.Logger) *Dispatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		outbox:   outbox,
		subs:     subs,
		sender:   sender,
		hub:      hub,
		logger:   logger.With("component", "dispatcher"),
		interval: interval,
		now:      time.Now,
	}
}

// Start begins the dispatch loop.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	ctx, d.cancel = context.WithCancel(ctx)
	d.done = make(chan struct{})
	d.mu.Unlock()

	go func() {
		defer close(d.done)
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := d.Tick(ctx); err != nil {
					d.logger.Error("dispatch tick", "error", err)
				}
			}
		}
	}()
}

// Stop halts the loop and waits for the in-flight tick.
func (d *Dispatcher) Stop() {
	d.mu.RLock()
	cancel := d.cancel
	done := d.done
	d.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Tick delivers everything currently due and returns how many entries were sent.
func (d *Dispatcher) Tick(ctx context.Context) (int, error) {
	now := d.now()
	due, err := d.outbox.ListDue(ctx, now, dispatchBatch)
	if err != nil {
		return 0, fmt.Errorf("list due: %w", err)
	}

	var subs []model.PushSubscription
	if d.sender != nil && len(due) > 0 {
		subs, err = d.subs.List(ctx)
		if err != nil {
			return 0, fmt.Errorf("list subscriptions: %w", err)
		}
	}

	sent := 0
	for _, n := range due {
		if err := d.deliver(ctx, n, subs); err != nil {
			d.logger.Warn("deliver notification", "handle", n.Handle, "error", err)
			if err := d.outbox.MarkFailed(ctx, n.ID, err.Error(), maxAttempts); err != nil {
				return sent, err
			}
			metrics.NotificationsDispatched.WithLabelValues("push", "error").Inc()
			continue
		}
		if err := d.outbox.MarkSent(ctx, n.ID); err != nil {
			return sent, err
		}
		sent++
	}

	if now.Sub(d.lastCleanup) > time.Hour {
		if err := d.outbox.Cleanup(ctx, now.Add(-retentionPeriod)); err != nil {
			d.logger.Warn("cleanup outbox", "error", err)
		}
		d.lastCleanup = now
	}
	return sent, nil
}

// deliver fails only when every push subscription rejected the message.
// Expired subscriptions are removed and do not count as failures. Connected
// clients are told once; retries only repeat the push.
func (d *Dispatcher) deliver(ctx context.Context, n model.ScheduledNotification, subs []model.PushSubscription) error {
	var p notify.Payload
	if err := json.Unmarshal([]byte(n.Payload), &p); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	if d.hub != nil && n.Attempts == 0 {
		d.hub.Broadcast(websocket.NewMessage("notification", "fired", n.Handle, map[string]any{
			"reminder_id": p.ReminderID,
			"occurrence":  p.Occurrence,
			"title":       p.Title,
			"body":        p.Body,
			"category":    p.Category,
		}).ForPet(p.PetID))
		metrics.NotificationsDispatched.WithLabelValues("websocket", "ok").Inc()
	}

	if d.sender == nil || len(subs) == 0 {
		return nil
	}

	msg := Message{
		Title:  p.Title,
		Body:   p.Body,
		URL:    "/reminders/" + p.ReminderID,
		Tag:    tag(p),
		Silent: p.Sound == model.SoundSilent,
	}

	var failures []error
	for i := range subs {
		err := d.sender.Send(ctx, &subs[i], msg)
		switch {
		case err == nil:
			metrics.NotificationsDispatched.WithLabelValues("push", "ok").Inc()
		case errors.Is(err, ErrExpired):
			if err := d.subs.DeleteByEndpoint(ctx, subs[i].Endpoint); err != nil {
				d.logger.Warn("remove expired subscription", "error", err)
			}
		default:
			failures = append(failures, err)
		}
	}
	if len(failures) > 0 && len(failures) == len(subs) {
		return errors.Join(failures...)
	}
	return nil
}

func tag(p notify.Payload) string {
	if p.Group != "" {
		return p.Group
	}
	return "reminder-" + p.ReminderID
}
