package mapview

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/growth-logbook/backend/internal/domain"
)

// Navigator hands a visited region off to the trip detail view.
// target is the detail page URL carrying the region's full name.
type Navigator interface {
	Navigate(ctx context.Context, target string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, target string)

func (f NavigatorFunc) Navigate(ctx context.Context, target string) { f(ctx, target) }

// RegionSelected is the signal emitted when a region without a trip is
// clicked. The binding never creates trips itself; whichever creation flow
// subscribes decides what to do with it.
type RegionSelected struct {
	ID uuid.UUID `json:"id"`
	// Label is the renderer-native label that was clicked.
	Label string `json:"label"`
	// DisplayName is the resolved short name, or Label when it did not resolve.
	DisplayName string          `json:"displayName"`
	RegionID    domain.RegionID `json:"regionId,omitempty"`
	Resolved    bool            `json:"resolved"`
	At          time.Time       `json:"at"`
}

// Notifier delivers RegionSelected signals.
type Notifier interface {
	Notify(ctx context.Context, sel RegionSelected)
}

// Dispatcher fans RegionSelected signals out to subscribers.
// It is safe for concurrent use; with no subscribers signals are dropped.
type Dispatcher struct {
	mu     sync.RWMutex
	next   int
	subs   map[int]func(context.Context, RegionSelected)
	recent []RegionSelected
	keep   int
}

// NewDispatcher creates a Dispatcher that also remembers the last keep
// signals for late readers (keep may be 0).
func NewDispatcher(keep int) *Dispatcher {
	return &Dispatcher{subs: map[int]func(context.Context, RegionSelected){}, keep: keep}
}

// Subscribe registers fn and returns a function that removes it.
func (d *Dispatcher) Subscribe(fn func(context.Context, RegionSelected)) (unsubscribe func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.next
	d.next++
	d.subs[id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subs, id)
	}
}

// Notify delivers sel to every subscriber.
func (d *Dispatcher) Notify(ctx context.Context, sel RegionSelected) {
	d.mu.Lock()
	if d.keep > 0 {
		d.recent = append(d.recent, sel)
		if len(d.recent) > d.keep {
			d.recent = d.recent[len(d.recent)-d.keep:]
		}
	}
	subs := make([]func(context.Context, RegionSelected), 0, len(d.subs))
	for _, fn := range d.subs {
		subs = append(subs, fn)
	}
	d.mu.Unlock()

	for _, fn := range subs {
		fn(ctx, sel)
	}
}

// Recent returns the remembered signals, oldest first.
func (d *Dispatcher) Recent() []RegionSelected {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]RegionSelected(nil), d.recent...)
}

// OutcomeAction says what an interaction event led to.
type OutcomeAction string

const (
	OutcomeNavigate  OutcomeAction = "navigate"
	OutcomeCreate    OutcomeAction = "create"
	OutcomeHighlight OutcomeAction = "highlight"
	OutcomeDownplay  OutcomeAction = "downplay"
	OutcomeIgnored   OutcomeAction = "ignored"
)

// Outcome is the result of handling one interaction event.
type Outcome struct {
	Action   OutcomeAction   `json:"action"`
	Label    string          `json:"label"`
	RegionID domain.RegionID `json:"regionId,omitempty"`
	// Target is the detail view URL for OutcomeNavigate.
	Target string `json:"target,omitempty"`
	// Signal is the dispatched notification for OutcomeCreate.
	Signal *RegionSelected `json:"signal,omitempty"`
}
