// Package mapview binds a choropleth map renderer to the trip store.
//
// The renderer is reached only through the small capability interfaces in
// this file, so any engine (ECharts in a browser, the headless recorder the
// server uses, a test fake) can sit behind a Binding. The binding owns the
// renderer's lifecycle, pushes visited/unvisited classification data into
// it, and routes hover and click events back through region resolution to
// the trip store or to the new-trip creation flow.
//
// Nothing in this package returns an error to its caller or lets a panic
// escape a public method: the map is an enhancement, and every failure
// degrades fidelity instead of blocking the page.
package mapview

import "context"

// EventType names a renderer interaction event.
type EventType string

const (
	EventClick     EventType = "click"
	EventMouseOver EventType = "mouseover"
	EventMouseOut  EventType = "mouseout"
)

// Event is an interaction reported by the renderer. Name is the
// renderer-native region label, usually the short display name.
type Event struct {
	Type EventType `json:"type"`
	Name string    `json:"name"`
}

// EventHandler is called by a renderer for every event it was registered for.
type EventHandler func(ctx context.Context, ev Event)

// Action is a visual instruction dispatched to the renderer
// (e.g. highlight the hovered region).
type Action struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

const (
	ActionHighlight = "highlight"
	ActionDownplay  = "downplay"
)

// Container is the drawing surface a renderer attaches to.
type Container interface {
	ID() string
	// ShowFallback replaces the surface content with a static message.
	ShowFallback(message string)
}

// Engine creates renderers. Init fails when the drawing surface or the
// rendering engine itself cannot be acquired.
type Engine interface {
	Init(c Container) (Renderer, error)
}

// Renderer is one live chart instance.
type Renderer interface {
	SetOption(opt Option) error
	On(event EventType, h EventHandler)
	DispatchAction(a Action) error
	// RegisterMap makes geoJSON available as the geometry set called name.
	RegisterMap(name string, geoJSON []byte) error
	Dispose() error
}

// BuiltinMaps is implemented by renderers that ship geometry for some map
// names and need no registration for them.
type BuiltinMaps interface {
	HasBuiltinMap(name string) bool
}
