package mapview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/growth-logbook/backend/internal/domain"
)

// State is the lifecycle state of a Binding.
type State string

const (
	StateUninitialized State = "uninitialized"
	// StateDegraded: the renderer could not be acquired and a static
	// fallback message is shown instead of the map.
	StateDegraded State = "degraded"
	// StateLoading: the renderer exists and geometry is being resolved.
	StateLoading State = "loading"
	StateReady   State = "ready"
)

// DefaultFallbackText is shown in the container when the map cannot be drawn.
const DefaultFallbackText = "Map unavailable. Your trips are still listed below."

var errRendererPanic = errors.New("renderer panicked")

// TripLookup is the read side of the trip store the binding needs.
type TripLookup interface {
	GetByRegion(ctx context.Context, label string) (domain.TripRecord, error)
	VisitedRegions(ctx context.Context) ([]domain.RegionID, error)
}

// Regions is the canonical registry as seen by the binding.
type Regions interface {
	List() []domain.Region
	ResolveRegion(label string) (domain.Region, bool)
}

// Recorder receives binding telemetry.
type Recorder interface {
	MapEvent(eventType, outcome string)
	GeometryLoaded(tier string)
	MapInitialised(state string)
	ResolutionMiss(source string)
}

type nopRecorder struct{}

func (nopRecorder) MapEvent(string, string) {}
func (nopRecorder) GeometryLoaded(string)   {}
func (nopRecorder) MapInitialised(string)   {}
func (nopRecorder) ResolutionMiss(string)   {}

// Config holds the static settings of a Binding.
type Config struct {
	// MapName is the name geometry is registered under and the series refers to.
	MapName string
	// DetailPage is the trip detail view visited regions navigate to.
	DetailPage string
	// FallbackText is shown when the renderer cannot be acquired.
	FallbackText string
}

// Binding connects one renderer instance to the trip store.
// All methods are safe for concurrent use.
type Binding struct {
	id        uuid.UUID
	cfg       Config
	engine    Engine
	geometry  GeometrySource
	trips     TripLookup
	regions   Regions
	navigator Navigator
	notifier  Notifier
	log       *slog.Logger
	metrics   Recorder
	now       func() time.Time

	mu        sync.Mutex
	state     State
	tier      GeometryTier
	renderer  Renderer
	container Container
	option    *Option
	// gen is bumped on every Initialize and Destroy; an initialisation that
	// finds gen moved on has been superseded and must not touch the binding.
	gen uint64
}

// BindingOption configures a Binding.
type BindingOption func(*Binding)

// WithGeometry sets the remote geometry source. Without one the binding
// starts at the built-in tier.
func WithGeometry(g GeometrySource) BindingOption {
	return func(b *Binding) { b.geometry = g }
}

func WithNavigator(n Navigator) BindingOption {
	return func(b *Binding) {
		if n != nil {
			b.navigator = n
		}
	}
}

func WithNotifier(n Notifier) BindingOption {
	return func(b *Binding) {
		if n != nil {
			b.notifier = n
		}
	}
}

func WithLogger(l *slog.Logger) BindingOption {
	return func(b *Binding) {
		if l != nil {
			b.log = l
		}
	}
}

func WithRecorder(m Recorder) BindingOption {
	return func(b *Binding) {
		if m != nil {
			b.metrics = m
		}
	}
}

func WithClock(now func() time.Time) BindingOption {
	return func(b *Binding) { b.now = now }
}

// NewBinding creates an uninitialised binding. engine may be nil, in which
// case Initialize always degrades.
func NewBinding(engine Engine, trips TripLookup, regions Regions, cfg Config, opts ...BindingOption) *Binding {
	if cfg.MapName == "" {
		cfg.MapName = "china"
	}
	if cfg.DetailPage == "" {
		cfg.DetailPage = "trip-detail.html"
	}
	if cfg.FallbackText == "" {
		cfg.FallbackText = DefaultFallbackText
	}
	b := &Binding{
		id:        uuid.New(),
		cfg:       cfg,
		engine:    engine,
		trips:     trips,
		regions:   regions,
		navigator: NavigatorFunc(func(context.Context, string) {}),
		notifier:  dropNotifier{},
		log:       slog.Default(),
		metrics:   nopRecorder{},
		now:       time.Now,
		state:     StateUninitialized,
	}
	for _, o := range opts {
		o(b)
	}
	b.log = b.log.With("binding_id", b.id.String())
	return b
}

type dropNotifier struct{}

func (dropNotifier) Notify(context.Context, RegionSelected) {}

// ID identifies this binding instance in logs and snapshots.
func (b *Binding) ID() uuid.UUID { return b.id }

// State returns the current lifecycle state.
func (b *Binding) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Initialize acquires a renderer on c, resolves geometry through the
// remote, built-in and stub tiers, pushes the classification option and
// wires interaction handlers. It returns the state reached: Ready on
// success, Degraded when no renderer could be acquired. A previous
// renderer is disposed first. If Destroy or another Initialize runs while
// geometry is loading, this call's results are discarded.
func (b *Binding) Initialize(ctx context.Context, c Container) (st State) {
	defer func() {
		if r := recover(); r != nil {
			b.log.ErrorContext(ctx, "map initialisation panicked", "panic", fmt.Sprint(r))
			st = b.degrade(c)
		}
		b.metrics.MapInitialised(string(st))
	}()

	r, gen, st := b.acquire(ctx, c)
	if st != StateLoading {
		return st
	}

	tier := b.loadGeometry(ctx, r)
	b.metrics.GeometryLoaded(string(tier))
	opt := buildOption(b.cfg.MapName, b.ClassificationData(ctx), b.formatTooltip)

	return b.finish(ctx, r, gen, tier, opt)
}

// acquire resets the binding and obtains a renderer. It returns
// StateLoading with the renderer and generation when initialisation should
// continue.
func (b *Binding) acquire(ctx context.Context, c Container) (Renderer, uint64, State) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.teardownLocked(ctx)
	b.gen++

	if b.engine == nil || c == nil {
		b.log.WarnContext(ctx, "map renderer unavailable", "reason", "no engine or container")
		return nil, b.gen, b.degradeLocked(c)
	}

	var r Renderer
	err := protect(func() error {
		var err error
		r, err = b.engine.Init(c)
		return err
	})
	if err == nil && r == nil {
		err = errors.New("engine returned no renderer")
	}
	if err != nil {
		b.log.WarnContext(ctx, "map renderer init failed", "container", c.ID(), "error", err)
		return nil, b.gen, b.degradeLocked(c)
	}

	b.renderer = r
	b.container = c
	b.state = StateLoading
	return r, b.gen, StateLoading
}

func (b *Binding) finish(ctx context.Context, r Renderer, gen uint64, tier GeometryTier, opt Option) State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.gen != gen {
		b.log.InfoContext(ctx, "map initialisation superseded")
		return b.state
	}
	b.tier = tier

	if err := protect(func() error { return r.SetOption(opt) }); err != nil {
		b.log.WarnContext(ctx, "map option rejected, using fallback option", "error", err)
		opt = fallbackOption()
		if err := protect(func() error { return r.SetOption(opt) }); err != nil {
			b.log.ErrorContext(ctx, "map fallback option rejected", "error", err)
			return b.degradeLocked(b.container)
		}
	}
	b.option = &opt

	for _, t := range []EventType{EventClick, EventMouseOver, EventMouseOut} {
		_ = protect(func() error {
			r.On(t, func(ctx context.Context, ev Event) { b.HandleEvent(ctx, ev) })
			return nil
		})
	}

	b.state = StateReady
	b.log.InfoContext(ctx, "map ready", "tier", string(tier), "map", b.cfg.MapName)
	return b.state
}

// loadGeometry walks the geometry tiers and returns the first that worked.
func (b *Binding) loadGeometry(ctx context.Context, r Renderer) GeometryTier {
	name := b.cfg.MapName

	data, err := b.fetchGeometry(ctx)
	if err == nil {
		err = protect(func() error { return r.RegisterMap(name, data) })
		if err == nil {
			return TierRemote
		}
	}
	b.log.WarnContext(ctx, "remote geometry unavailable", "error", err)

	if bm, ok := r.(BuiltinMaps); ok && bm.HasBuiltinMap(name) {
		return TierBuiltin
	}
	b.log.WarnContext(ctx, "built-in geometry unavailable", "error", errNoBuiltinMap, "map", name)

	if err := protect(func() error { return r.RegisterMap(name, stubGeometry) }); err != nil {
		b.log.WarnContext(ctx, "stub geometry rejected", "error", err)
		return TierNone
	}
	return TierStub
}

func (b *Binding) fetchGeometry(ctx context.Context) (data []byte, err error) {
	if b.geometry == nil {
		return nil, errNoGeometrySource
	}
	err = protect(func() error {
		data, err = b.geometry.Fetch(ctx)
		return err
	})
	return data, err
}

// Refresh recomputes the classification and pushes the full option again.
// It reports whether a push happened, which requires the Ready state.
func (b *Binding) Refresh(ctx context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.log.ErrorContext(ctx, "map refresh panicked", "panic", fmt.Sprint(r))
			ok = false
		}
	}()

	b.mu.Lock()
	if b.state != StateReady {
		b.mu.Unlock()
		return false
	}
	gen := b.gen
	b.mu.Unlock()

	opt := buildOption(b.cfg.MapName, b.ClassificationData(ctx), b.formatTooltip)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gen != gen || b.state != StateReady {
		return false
	}
	if err := protect(func() error { return b.renderer.SetOption(opt) }); err != nil {
		b.log.WarnContext(ctx, "map refresh rejected", "error", err)
		return false
	}
	b.option = &opt
	return true
}

// Destroy disposes the renderer and returns the binding to Uninitialized.
// It is safe to call in any state, any number of times.
func (b *Binding) Destroy(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			b.log.ErrorContext(ctx, "map destroy panicked", "panic", fmt.Sprint(r))
		}
	}()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.teardownLocked(ctx)
	b.gen++
}

func (b *Binding) teardownLocked(ctx context.Context) {
	if b.renderer != nil {
		if err := protect(b.renderer.Dispose); err != nil {
			b.log.WarnContext(ctx, "map dispose failed", "error", err)
		}
	}
	b.renderer = nil
	b.container = nil
	b.option = nil
	b.tier = ""
	b.state = StateUninitialized
}

func (b *Binding) degrade(c Container) State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.degradeLocked(c)
}

func (b *Binding) degradeLocked(c Container) State {
	if b.renderer != nil {
		_ = protect(b.renderer.Dispose)
		b.renderer = nil
	}
	if c != nil {
		_ = protect(func() error {
			c.ShowFallback(b.cfg.FallbackText)
			return nil
		})
	}
	b.container = c
	b.option = nil
	b.tier = ""
	b.state = StateDegraded
	return b.state
}

// ClassificationData returns exactly one entry per canonical region, in
// registry order, with Visited 1 when a trip exists for it and 0 otherwise.
// A store failure classifies every region as unvisited.
func (b *Binding) ClassificationData(ctx context.Context) []Classification {
	visited, err := b.trips.VisitedRegions(ctx)
	if err != nil {
		b.log.WarnContext(ctx, "visited set unavailable, showing all regions unvisited", "error", err)
		visited = nil
	}
	return classify(b.regions.List(), visited)
}

// Tooltip builds the hover content for a renderer-native label.
func (b *Binding) Tooltip(ctx context.Context, label string) Tooltip {
	var id domain.RegionID
	if r, ok := b.regions.ResolveRegion(label); ok {
		id = r.ID
	}

	trip, err := b.trips.GetByRegion(ctx, label)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			b.log.WarnContext(ctx, "tooltip trip lookup failed", "label", label, "error", err)
		}
		return emptyTooltip(label, id)
	}
	return tripTooltip(label, trip, id)
}

func (b *Binding) formatTooltip(label string) string {
	return b.Tooltip(context.Background(), label).HTML
}

// HandleEvent routes an interaction event. A click on a region with a trip
// navigates to its detail view; a click anywhere else emits RegionSelected.
// Hover events highlight or downplay the region while the map is Ready.
func (b *Binding) HandleEvent(ctx context.Context, ev Event) (out Outcome) {
	out = Outcome{Action: OutcomeIgnored, Label: ev.Name}
	defer func() {
		if r := recover(); r != nil {
			b.log.ErrorContext(ctx, "map event handler panicked", "event", string(ev.Type), "panic", fmt.Sprint(r))
			out = Outcome{Action: OutcomeIgnored, Label: ev.Name}
		}
		b.metrics.MapEvent(string(ev.Type), string(out.Action))
	}()

	switch ev.Type {
	case EventClick:
		return b.click(ctx, ev.Name)
	case EventMouseOver:
		return b.hover(ctx, ev.Name, ActionHighlight, OutcomeHighlight)
	case EventMouseOut:
		return b.hover(ctx, ev.Name, ActionDownplay, OutcomeDownplay)
	default:
		return out
	}
}

func (b *Binding) click(ctx context.Context, label string) Outcome {
	region, resolved := b.regions.ResolveRegion(label)

	trip, err := b.trips.GetByRegion(ctx, label)
	if err == nil {
		target := b.cfg.DetailPage + "?" + url.Values{"province": {trip.Province}}.Encode()
		b.navigator.Navigate(ctx, target)
		return Outcome{Action: OutcomeNavigate, Label: label, RegionID: region.ID, Target: target}
	}
	if !errors.Is(err, domain.ErrNotFound) {
		b.log.WarnContext(ctx, "click trip lookup failed", "label", label, "error", err)
	}

	sel := RegionSelected{
		ID:          uuid.New(),
		Label:       label,
		DisplayName: label,
		Resolved:    resolved,
		At:          b.now(),
	}
	if resolved {
		sel.DisplayName = region.DisplayName
		sel.RegionID = region.ID
	} else {
		b.metrics.ResolutionMiss("map")
		b.log.InfoContext(ctx, "clicked label did not resolve", "label", label)
	}
	b.notifier.Notify(ctx, sel)
	return Outcome{Action: OutcomeCreate, Label: label, RegionID: sel.RegionID, Signal: &sel}
}

func (b *Binding) hover(ctx context.Context, label, action string, outcome OutcomeAction) Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := Outcome{Action: OutcomeIgnored, Label: label}
	if b.state != StateReady || b.renderer == nil {
		return out
	}
	if err := protect(func() error { return b.renderer.DispatchAction(Action{Type: action, Name: label}) }); err != nil {
		b.log.DebugContext(ctx, "map action rejected", "action", action, "label", label, "error", err)
		return out
	}
	out.Action = outcome
	if r, ok := b.regions.ResolveRegion(label); ok {
		out.RegionID = r.ID
	}
	return out
}

// Snapshot is a point-in-time view of a Binding.
type Snapshot struct {
	ID           uuid.UUID    `json:"id"`
	State        State        `json:"state"`
	GeometryTier GeometryTier `json:"geometryTier,omitempty"`
	Container    string       `json:"container,omitempty"`
	MapName      string       `json:"mapName"`
	Option       *Option      `json:"option,omitempty"`
}

// Snapshot returns the current state and the last option pushed.
func (b *Binding) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Snapshot{ID: b.id, State: b.state, GeometryTier: b.tier, MapName: b.cfg.MapName}
	if b.container != nil {
		s.Container = b.container.ID()
	}
	if b.option != nil {
		opt := b.option.clone()
		s.Option = &opt
	}
	return s
}

// protect runs fn and converts a panic into an error.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errRendererPanic, r)
		}
	}()
	return fn()
}
