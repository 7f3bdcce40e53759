package push

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/petcare/internal/database"
	"github.com/dukerupert/petcare/internal/model"
	"github.com/dukerupert/petcare/internal/notify"
	"github.com/dukerupert/petcare/internal/store"
	"github.com/dukerupert/petcare/internal/websocket"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []Message
	errFn func(endpoint string) error
}

func (f *fakeSender) Send(_ context.Context, sub *model.PushSubscription, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errFn != nil {
		if err := f.errFn(sub.Endpoint); err != nil {
			return err
		}
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeHub struct {
	msgs []websocket.Message
}

func (f *fakeHub) Broadcast(msg websocket.Message) { f.msgs = append(f.msgs, msg) }

type staticSettings struct{ s model.Settings }

func (f staticSettings) Get(context.Context) (model.Settings, error) { return f.s, nil }

func setupDispatch(t *testing.T) (*store.OutboxStore, *store.PushStore, *Notifier) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	outbox := store.NewOutboxStore(db)
	return outbox, store.NewPushStore(db), NewNotifier(outbox, nil, slog.Default())
}

func TestNotifierScheduleAndCancel(t *testing.T) {
	outbox, _, n := setupDispatch(t)
	ctx := context.Background()

	h, err := n.ScheduleAt(ctx, time.Now().Add(time.Hour), notify.Payload{ReminderID: "r1", Title: "Feed"})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	got, _ := outbox.GetByHandle(ctx, h)
	if got == nil || got.Status != model.OutboxPending {
		t.Fatalf("outbox entry = %+v", got)
	}

	if err := n.Cancel(ctx, h); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := n.Cancel(ctx, h); err != nil {
		t.Errorf("second cancel: %v", err)
	}
	pending, _ := outbox.ListPending(ctx)
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}
}

func TestNotifierPermissionFollowsSettings(t *testing.T) {
	outbox, _, _ := setupDispatch(t)
	s := model.DefaultSettings()
	s.NotificationsEnabled = false
	n := NewNotifier(outbox, staticSettings{s}, nil)

	ok, err := n.RequestPermission(context.Background())
	if err != nil || ok {
		t.Errorf("permission = %v err = %v, want false", ok, err)
	}
}

func TestDispatcherDeliversDue(t *testing.T) {
	outbox, subs, n := setupDispatch(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	subs.CreateSubscription(ctx, "https://push.example/a", "k", "a", "Phone")
	n.ScheduleAt(ctx, now.Add(-time.Minute), notify.Payload{ReminderID: "r1", PetID: "p1", Title: "Pill", Body: "Give pill"})
	future, _ := n.ScheduleAt(ctx, now.Add(time.Hour), notify.Payload{ReminderID: "r2", Title: "Later"})

	sender := &fakeSender{}
	hub := &fakeHub{}
	d := NewDispatcher(outbox, subs, sender, hub, time.Minute, nil)
	d.now = func() time.Time { return now }

	sent, err := d.Tick(ctx)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}
	if len(sender.sent) != 1 || sender.sent[0].Title != "Pill" || sender.sent[0].URL != "/reminders/r1" {
		t.Errorf("push messages = %+v", sender.sent)
	}
	if len(hub.msgs) != 1 || hub.msgs[0].Type != "notification_fired" || hub.msgs[0].PetID != "p1" {
		t.Errorf("hub messages = %+v", hub.msgs)
	}

	f, _ := outbox.GetByHandle(ctx, future)
	if f.Status != model.OutboxPending {
		t.Errorf("future entry status = %q, want pending", f.Status)
	}

	sent, _ = d.Tick(ctx)
	if sent != 0 {
		t.Errorf("second tick sent = %d, want 0", sent)
	}
}

func TestDispatcherRemovesExpiredSubscriptions(t *testing.T) {
	outbox, subs, n := setupDispatch(t)
	ctx := context.Background()
	now := time.Now()

	subs.CreateSubscription(ctx, "https://gone", "k", "a", "")
	subs.CreateSubscription(ctx, "https://ok", "k", "a", "")
	n.ScheduleAt(ctx, now.Add(-time.Second), notify.Payload{ReminderID: "r1"})

	sender := &fakeSender{errFn: func(ep string) error {
		if ep == "https://gone" {
			return ErrExpired
		}
		return nil
	}}
	d := NewDispatcher(outbox, subs, sender, nil, 0, nil)

	if _, err := d.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got, _ := subs.GetByEndpoint(ctx, "https://gone"); got != nil {
		t.Error("expired subscription should be removed")
	}
	if c, _ := subs.Count(ctx); c != 1 {
		t.Errorf("subscriptions = %d, want 1", c)
	}
}

func TestDispatcherRecordsFailure(t *testing.T) {
	outbox, subs, n := setupDispatch(t)
	ctx := context.Background()

	subs.CreateSubscription(ctx, "https://down", "k", "a", "")
	h, _ := n.ScheduleAt(ctx, time.Now().Add(-time.Second), notify.Payload{ReminderID: "r1"})

	sender := &fakeSender{errFn: func(string) error { return errors.New("503") }}
	hub := &fakeHub{}
	d := NewDispatcher(outbox, subs, sender, hub, 0, nil)

	sent, err := d.Tick(ctx)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0", sent)
	}
	got, _ := outbox.GetByHandle(ctx, h)
	if got.Status != model.OutboxPending || got.Attempts != 1 || got.LastError == "" {
		t.Errorf("entry after failure = %+v", got)
	}

	if _, err := d.Tick(ctx); err != nil {
		t.Fatalf("retry tick: %v", err)
	}
	got, _ = outbox.GetByHandle(ctx, h)
	if got.Attempts != 2 {
		t.Errorf("attempts after retry = %d, want 2", got.Attempts)
	}
	if len(hub.msgs) != 1 {
		t.Errorf("hub messages after retry = %d, want 1", len(hub.msgs))
	}
}

func TestDispatcherStartStop(t *testing.T) {
	outbox, subs, _ := setupDispatch(t)
	d := NewDispatcher(outbox, subs, nil, nil, 10*time.Millisecond, nil)
	d.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	d.Stop()
}
