// Package headless is a server-side map renderer. It draws nothing: each
// renderer records the options, geometry and actions it receives so they
// can be served to a browser-side chart, and lets callers emit interaction
// events back into the registered handlers.
package headless

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/pkordes/growth-logbook/backend/internal/mapview"
)

// ErrDisposed is returned by every renderer call after Dispose.
var ErrDisposed = errors.New("renderer disposed")

// Engine creates headless renderers.
type Engine struct {
	// Builtin lists map names the renderer pretends to ship geometry for.
	Builtin []string
	// InitErr, when set, makes Init fail.
	InitErr error

	mu      sync.Mutex
	created []*Renderer
}

// Init returns a new renderer attached to c.
func (e *Engine) Init(c mapview.Container) (mapview.Renderer, error) {
	if e.InitErr != nil {
		return nil, e.InitErr
	}
	if c == nil {
		return nil, errors.New("headless: nil container")
	}
	r := &Renderer{
		container: c.ID(),
		builtin:   slices.Clone(e.Builtin),
		maps:      map[string][]byte{},
		handlers:  map[mapview.EventType][]mapview.EventHandler{},
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.created = append(e.created, r)
	return r, nil
}

// Last returns the most recently created renderer, or nil.
func (e *Engine) Last() *Renderer {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.created) == 0 {
		return nil
	}
	return e.created[len(e.created)-1]
}

// Renderer records everything pushed into it.
type Renderer struct {
	mu        sync.Mutex
	container string
	builtin   []string
	option    *mapview.Option
	maps      map[string][]byte
	handlers  map[mapview.EventType][]mapview.EventHandler
	actions   []mapview.Action
	disposed  bool
}

func (r *Renderer) SetOption(opt mapview.Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return ErrDisposed
	}
	r.option = &opt
	return nil
}

func (r *Renderer) On(event mapview.EventType, h mapview.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return
	}
	r.handlers[event] = append(r.handlers[event], h)
}

func (r *Renderer) DispatchAction(a mapview.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return ErrDisposed
	}
	r.actions = append(r.actions, a)
	return nil
}

func (r *Renderer) RegisterMap(name string, geoJSON []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return ErrDisposed
	}
	if err := mapview.ValidateGeoJSON(geoJSON); err != nil {
		return fmt.Errorf("headless: register %q: %w", name, err)
	}
	r.maps[name] = slices.Clone(geoJSON)
	return nil
}

func (r *Renderer) Dispose() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disposed = true
	r.handlers = map[mapview.EventType][]mapview.EventHandler{}
	return nil
}

func (r *Renderer) HasBuiltinMap(name string) bool {
	return slices.Contains(r.builtin, name)
}

// Emit delivers ev to the handlers registered for its type and reports
// how many ran. Handlers run outside the renderer's lock.
func (r *Renderer) Emit(ctx context.Context, ev mapview.Event) int {
	r.mu.Lock()
	hs := slices.Clone(r.handlers[ev.Type])
	r.mu.Unlock()

	for _, h := range hs {
		h(ctx, ev)
	}
	return len(hs)
}

// FormatTooltip runs the tooltip formatter of the current option.
func (r *Renderer) FormatTooltip(label string) (string, bool) {
	r.mu.Lock()
	opt := r.option
	r.mu.Unlock()

	if opt == nil || opt.Tooltip == nil || opt.Tooltip.Formatter == nil {
		return "", false
	}
	return opt.Tooltip.Formatter(label), true
}

// Option returns the last option set.
func (r *Renderer) Option() (mapview.Option, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.option == nil {
		return mapview.Option{}, false
	}
	return *r.option, true
}

// Map returns the geometry registered under name.
func (r *Renderer) Map(name string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.maps[name]
	return b, ok
}

// Actions returns the dispatched actions, oldest first.
func (r *Renderer) Actions() []mapview.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.actions)
}

// Disposed reports whether Dispose was called.
func (r *Renderer) Disposed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disposed
}

// Container is a drawing surface that remembers the fallback message.
type Container struct {
	Name string

	mu       sync.Mutex
	fallback string
}

func NewContainer(name string) *Container { return &Container{Name: name} }

func (c *Container) ID() string { return c.Name }

func (c *Container) ShowFallback(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fallback = message
}

// Fallback returns the message shown, or "" when none was.
func (c *Container) Fallback() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fallback
}
