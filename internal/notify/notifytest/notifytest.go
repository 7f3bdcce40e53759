// Package notifytest provides an in-memory notify.Notifier for tests.
package notifytest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dukerupert/petcare/internal/notify"
)

var ErrUnknownHandle = errors.New("unknown notification handle")

// Scheduled is one alarm held by the Notifier.
type Scheduled struct {
	Handle  string
	At      time.Time
	Payload notify.Payload
}

// Notifier records scheduled alarms in memory.
type Notifier struct {
	mu      sync.Mutex
	seq     int
	pending map[string]Scheduled

	// Denied makes RequestPermission report false.
	Denied bool
	// FailAfter makes ScheduleAt fail once this many alarms were accepted. Zero disables.
	FailAfter int
	// StrictCancel makes Cancel return ErrUnknownHandle for handles it does not hold.
	StrictCancel bool

	Cancelled   []string
	CancelCalls int
	scheduled   int
}

func New() *Notifier {
	return &Notifier{pending: make(map[string]Scheduled)}
}

func (n *Notifier) RequestPermission(context.Context) (bool, error) {
	return !n.Denied, nil
}

func (n *Notifier) ScheduleAt(_ context.Context, at time.Time, p notify.Payload) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailAfter > 0 && n.scheduled >= n.FailAfter {
		return "", errors.New("notifier unavailable")
	}
	n.seq++
	n.scheduled++
	h := fmt.Sprintf("n-%d", n.seq)
	n.pending[h] = Scheduled{Handle: h, At: at, Payload: p}
	return h, nil
}

func (n *Notifier) Cancel(_ context.Context, handle string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.CancelCalls++
	if _, ok := n.pending[handle]; !ok {
		if n.StrictCancel {
			return fmt.Errorf("cancel %s: %w", handle, ErrUnknownHandle)
		}
		return nil
	}
	delete(n.pending, handle)
	n.Cancelled = append(n.Cancelled, handle)
	return nil
}

func (n *Notifier) CancelAll(context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for h := range n.pending {
		n.Cancelled = append(n.Cancelled, h)
	}
	n.pending = make(map[string]Scheduled)
	return nil
}

// Pending returns the alarms still scheduled, ordered by fire time.
func (n *Notifier) Pending() []Scheduled {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Scheduled, 0, len(n.pending))
	for _, s := range n.pending {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].At.Equal(out[j].At) {
			return out[i].Payload.Occurrence < out[j].Payload.Occurrence
		}
		return out[i].At.Before(out[j].At)
	})
	return out
}
