package mapview_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/growth-logbook/backend/internal/domain"
	"github.com/pkordes/growth-logbook/backend/internal/mapview"
	"github.com/pkordes/growth-logbook/backend/internal/mapview/headless"
	"github.com/pkordes/growth-logbook/backend/internal/region"
)

const chinaJSON = `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"name":"北京"},"geometry":null}]}`

// fakeTrips is an in-memory mapview.TripLookup keyed by canonical region.
type fakeTrips struct {
	mu      sync.Mutex
	reg     *region.Registry
	trips   map[domain.RegionID]domain.TripRecord
	listErr error
}

func newFakeTrips(provinces ...string) *fakeTrips {
	f := &fakeTrips{reg: region.Default(), trips: map[domain.RegionID]domain.TripRecord{}}
	for _, p := range provinces {
		f.add(domain.TripRecord{Province: p, StartDate: "2024-05-01", EndDate: "2024-05-05", Travelers: "Family", Rating: 4})
	}
	return f
}

func (f *fakeTrips) add(t domain.TripRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reg.ResolveRegion(t.Province)
	if !ok {
		panic("fakeTrips: unresolvable province " + t.Province)
	}
	t.Province = r.FullName
	f.trips[r.ID] = t
}

func (f *fakeTrips) GetByRegion(_ context.Context, label string) (domain.TripRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.reg.Resolve(label)
	if !ok {
		return domain.TripRecord{}, domain.ErrNotFound
	}
	t, ok := f.trips[id]
	if !ok {
		return domain.TripRecord{}, domain.ErrNotFound
	}
	return t, nil
}

func (f *fakeTrips) VisitedRegions(context.Context) ([]domain.RegionID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	ids := make([]domain.RegionID, 0, len(f.trips))
	for id := range f.trips {
		ids = append(ids, id)
	}
	return ids, nil
}

// staticGeometry serves fixed bytes or a fixed error.
type staticGeometry struct {
	data []byte
	err  error
}

func (g staticGeometry) Fetch(context.Context) ([]byte, error) { return g.data, g.err }

// blockingGeometry waits until release is closed.
type blockingGeometry struct {
	started chan struct{}
	release chan struct{}
}

func (g *blockingGeometry) Fetch(ctx context.Context) ([]byte, error) {
	close(g.started)
	<-g.release
	return []byte(chinaJSON), nil
}

type panicEngine struct{}

func (panicEngine) Init(mapview.Container) (mapview.Renderer, error) { panic("boom") }

// recordingNotifier captures RegionSelected signals.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []mapview.RegionSelected
}

func (n *recordingNotifier) Notify(_ context.Context, sel mapview.RegionSelected) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sel)
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func newBinding(engine mapview.Engine, trips mapview.TripLookup, opts ...mapview.BindingOption) *mapview.Binding {
	base := []mapview.BindingOption{
		mapview.WithLogger(quietLogger()),
		mapview.WithClock(func() time.Time { return testNow }),
	}
	return mapview.NewBinding(engine, trips, region.Default(), mapview.Config{}, append(base, opts...)...)
}

func TestInitialize_RemoteGeometryReachesReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chinaJSON))
	}))
	defer srv.Close()

	engine := &headless.Engine{}
	b := newBinding(engine, newFakeTrips("北京"), mapview.WithGeometry(mapview.NewRemoteGeometry(srv.URL, time.Second)))

	st := b.Initialize(context.Background(), headless.NewContainer("map"))

	require.Equal(t, mapview.StateReady, st)
	snap := b.Snapshot()
	assert.Equal(t, mapview.TierRemote, snap.GeometryTier)
	assert.Equal(t, "map", snap.Container)
	require.NotNil(t, snap.Option)

	geo, ok := engine.Last().Map("china")
	require.True(t, ok)
	assert.JSONEq(t, chinaJSON, string(geo))
}

func TestInitialize_FallsBackToBuiltinGeometry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	engine := &headless.Engine{Builtin: []string{"china"}}
	b := newBinding(engine, newFakeTrips(), mapview.WithGeometry(mapview.NewRemoteGeometry(srv.URL, time.Second)))

	require.Equal(t, mapview.StateReady, b.Initialize(context.Background(), headless.NewContainer("map")))
	assert.Equal(t, mapview.TierBuiltin, b.Snapshot().GeometryTier)
	_, registered := engine.Last().Map("china")
	assert.False(t, registered)
}

func TestInitialize_FallsBackToStubGeometry(t *testing.T) {
	engine := &headless.Engine{}
	b := newBinding(engine, newFakeTrips(), mapview.WithGeometry(staticGeometry{data: []byte(`{"type":"Feature"}`)}))

	require.Equal(t, mapview.StateReady, b.Initialize(context.Background(), headless.NewContainer("map")))
	assert.Equal(t, mapview.TierStub, b.Snapshot().GeometryTier)

	geo, ok := engine.Last().Map("china")
	require.True(t, ok)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(geo))
}

func TestInitialize_DegradesWhenEngineFails(t *testing.T) {
	c := headless.NewContainer("map")
	b := newBinding(&headless.Engine{InitErr: errors.New("no canvas")}, newFakeTrips())

	st := b.Initialize(context.Background(), c)

	assert.Equal(t, mapview.StateDegraded, st)
	assert.Equal(t, mapview.DefaultFallbackText, c.Fallback())
	assert.Nil(t, b.Snapshot().Option)
}

func TestInitialize_DegradesWithoutEngine(t *testing.T) {
	c := headless.NewContainer("map")
	b := newBinding(nil, newFakeTrips())

	assert.Equal(t, mapview.StateDegraded, b.Initialize(context.Background(), c))
	assert.NotEmpty(t, c.Fallback())
}

func TestInitialize_EnginePanicDegrades(t *testing.T) {
	c := headless.NewContainer("map")
	b := newBinding(panicEngine{}, newFakeTrips())

	assert.NotPanics(t, func() {
		assert.Equal(t, mapview.StateDegraded, b.Initialize(context.Background(), c))
	})
	assert.NotEmpty(t, c.Fallback())
}

func TestInitialize_SupersededByDestroy(t *testing.T) {
	geo := &blockingGeometry{started: make(chan struct{}), release: make(chan struct{})}
	engine := &headless.Engine{}
	b := newBinding(engine, newFakeTrips(), mapview.WithGeometry(geo))

	done := make(chan mapview.State)
	go func() { done <- b.Initialize(context.Background(), headless.NewContainer("map")) }()

	<-geo.started
	assert.Equal(t, mapview.StateLoading, b.State())
	b.Destroy(context.Background())
	close(geo.release)

	assert.Equal(t, mapview.StateUninitialized, <-done)
	assert.Equal(t, mapview.StateUninitialized, b.State())
	assert.True(t, engine.Last().Disposed())
	_, pushed := engine.Last().Option()
	assert.False(t, pushed)
}

func TestClassificationData_OneEntryPerRegion(t *testing.T) {
	b := newBinding(&headless.Engine{}, newFakeTrips("北京", "广西壮族自治区", "香港"))

	classes := b.ClassificationData(context.Background())

	require.Len(t, classes, 34)
	seen := map[domain.RegionID]bool{}
	visited := 0
	for _, c := range classes {
		assert.Contains(t, []int{0, 1}, c.Visited)
		assert.False(t, seen[c.ID], "duplicate %s", c.ID)
		seen[c.ID] = true
		visited += c.Visited
	}
	assert.Equal(t, 3, visited)
}

func TestClassificationData_StoreErrorMeansAllUnvisited(t *testing.T) {
	trips := newFakeTrips("北京")
	trips.listErr = errors.New("disk gone")
	b := newBinding(&headless.Engine{}, trips)

	classes := b.ClassificationData(context.Background())

	require.Len(t, classes, 34)
	for _, c := range classes {
		assert.Zero(t, c.Visited, c.Name)
	}
}

func TestOption_ColoursVisitedRegions(t *testing.T) {
	b := newBinding(&headless.Engine{}, newFakeTrips("上海"))
	require.Equal(t, mapview.StateReady, b.Initialize(context.Background(), headless.NewContainer("map")))

	opt := b.Snapshot().Option
	require.NotNil(t, opt)
	require.Len(t, opt.Series, 1)
	assert.Equal(t, "china", opt.Series[0].Map)
	for _, d := range opt.Series[0].Data {
		if d.Name == "上海" {
			assert.Equal(t, 1, d.Value)
			assert.Equal(t, mapview.ColorVisited, d.ItemStyle.Color)
		} else {
			assert.Equal(t, mapview.ColorUnvisited, d.ItemStyle.Color, d.Name)
		}
	}
}

func TestHandleEvent_ClickVisitedNavigates(t *testing.T) {
	var target string
	nav := mapview.NavigatorFunc(func(_ context.Context, to string) { target = to })
	notifier := &recordingNotifier{}
	b := newBinding(&headless.Engine{}, newFakeTrips("北京"), mapview.WithNavigator(nav), mapview.WithNotifier(notifier))

	out := b.HandleEvent(context.Background(), mapview.Event{Type: mapview.EventClick, Name: "北京"})

	want := "trip-detail.html?province=" + url.QueryEscape("北京市")
	assert.Equal(t, mapview.OutcomeNavigate, out.Action)
	assert.Equal(t, want, out.Target)
	assert.Equal(t, want, target)
	assert.Equal(t, domain.RegionID("北京"), out.RegionID)
	assert.Empty(t, notifier.sent)
}

func TestHandleEvent_ClickUnvisitedSignalsCreation(t *testing.T) {
	notifier := &recordingNotifier{}
	b := newBinding(&headless.Engine{}, newFakeTrips("北京"), mapview.WithNotifier(notifier))

	out := b.HandleEvent(context.Background(), mapview.Event{Type: mapview.EventClick, Name: "西藏"})

	assert.Equal(t, mapview.OutcomeCreate, out.Action)
	require.NotNil(t, out.Signal)
	require.Len(t, notifier.sent, 1)
	sel := notifier.sent[0]
	assert.Equal(t, "西藏", sel.DisplayName)
	assert.Equal(t, domain.RegionID("西藏"), sel.RegionID)
	assert.True(t, sel.Resolved)
	assert.Equal(t, testNow, sel.At)
	assert.Equal(t, sel.ID, out.Signal.ID)
}

func TestHandleEvent_ClickUnresolvableSignalsCreation(t *testing.T) {
	notifier := &recordingNotifier{}
	b := newBinding(&headless.Engine{}, newFakeTrips(), mapview.WithNotifier(notifier))

	out := b.HandleEvent(context.Background(), mapview.Event{Type: mapview.EventClick, Name: "南海诸岛"})

	assert.Equal(t, mapview.OutcomeCreate, out.Action)
	require.Len(t, notifier.sent, 1)
	assert.False(t, notifier.sent[0].Resolved)
	assert.Equal(t, "南海诸岛", notifier.sent[0].DisplayName)
	assert.Empty(t, notifier.sent[0].RegionID)
}

func TestHandleEvent_HoverDispatchesActionsWhenReady(t *testing.T) {
	engine := &headless.Engine{}
	b := newBinding(engine, newFakeTrips())
	ctx := context.Background()

	out := b.HandleEvent(ctx, mapview.Event{Type: mapview.EventMouseOver, Name: "四川"})
	assert.Equal(t, mapview.OutcomeIgnored, out.Action, "not initialised yet")

	require.Equal(t, mapview.StateReady, b.Initialize(ctx, headless.NewContainer("map")))
	assert.Equal(t, mapview.OutcomeHighlight, b.HandleEvent(ctx, mapview.Event{Type: mapview.EventMouseOver, Name: "四川"}).Action)
	assert.Equal(t, mapview.OutcomeDownplay, b.HandleEvent(ctx, mapview.Event{Type: mapview.EventMouseOut, Name: "四川"}).Action)

	assert.Equal(t, []mapview.Action{
		{Type: mapview.ActionHighlight, Name: "四川"},
		{Type: mapview.ActionDownplay, Name: "四川"},
	}, engine.Last().Actions())
}

func TestRendererEvents_RouteThroughBinding(t *testing.T) {
	var target string
	engine := &headless.Engine{}
	b := newBinding(engine, newFakeTrips("广东"), mapview.WithNavigator(mapview.NavigatorFunc(func(_ context.Context, to string) { target = to })))
	require.Equal(t, mapview.StateReady, b.Initialize(context.Background(), headless.NewContainer("map")))

	ran := engine.Last().Emit(context.Background(), mapview.Event{Type: mapview.EventClick, Name: "广东"})

	assert.Equal(t, 1, ran)
	assert.Equal(t, "trip-detail.html?province="+url.QueryEscape("广东省"), target)
}

func TestTooltip(t *testing.T) {
	trips := newFakeTrips()
	trips.add(domain.TripRecord{Province: "云南省", StartDate: "2023-01-01", EndDate: "2023-01-09", Travelers: "Friends", Rating: 4})
	engine := &headless.Engine{}
	b := newBinding(engine, trips)

	tt := b.Tooltip(context.Background(), "云南")
	assert.True(t, tt.HasTrip)
	assert.Equal(t, "★★★★☆", tt.Stars)
	assert.Equal(t, "2023-01-01 - 2023-01-09", tt.DateRange)
	assert.Contains(t, tt.HTML, "Click for details")
	assert.Contains(t, tt.HTML, "Friends")

	empty := b.Tooltip(context.Background(), "青海")
	assert.False(t, empty.HasTrip)
	assert.Contains(t, empty.HTML, "No trips recorded")

	require.Equal(t, mapview.StateReady, b.Initialize(context.Background(), headless.NewContainer("map")))
	html, ok := engine.Last().FormatTooltip("云南")
	require.True(t, ok)
	assert.Equal(t, tt.HTML, html)
}

func TestTooltip_EscapesMarkup(t *testing.T) {
	trips := newFakeTrips()
	trips.add(domain.TripRecord{Province: "湖南", Travelers: "<script>"})
	b := newBinding(&headless.Engine{}, trips)

	tt := b.Tooltip(context.Background(), "湖南")
	assert.NotContains(t, tt.HTML, "<script>")
	assert.Contains(t, tt.HTML, "No dates")
	assert.Contains(t, tt.HTML, "Not rated")
}

func TestRefresh_PushesNewClassification(t *testing.T) {
	trips := newFakeTrips()
	engine := &headless.Engine{}
	b := newBinding(engine, trips)
	ctx := context.Background()

	assert.False(t, b.Refresh(ctx), "refresh before initialise is a no-op")
	require.Equal(t, mapview.StateReady, b.Initialize(ctx, headless.NewContainer("map")))

	trips.add(domain.TripRecord{Province: "浙江"})
	require.True(t, b.Refresh(ctx))

	opt, ok := engine.Last().Option()
	require.True(t, ok)
	visited := 0
	for _, d := range opt.Series[0].Data {
		visited += d.Value
	}
	assert.Equal(t, 1, visited)
	assert.Equal(t, mapview.StateReady, b.State())
}

func TestDestroy(t *testing.T) {
	engine := &headless.Engine{}
	b := newBinding(engine, newFakeTrips())
	ctx := context.Background()
	require.Equal(t, mapview.StateReady, b.Initialize(ctx, headless.NewContainer("map")))

	b.Destroy(ctx)
	b.Destroy(ctx)

	assert.Equal(t, mapview.StateUninitialized, b.State())
	assert.True(t, engine.Last().Disposed())
	assert.False(t, b.Refresh(ctx))
	assert.Equal(t, mapview.OutcomeIgnored, b.HandleEvent(ctx, mapview.Event{Type: mapview.EventMouseOver, Name: "北京"}).Action)

	// A destroyed binding can be initialised again on a fresh renderer.
	require.Equal(t, mapview.StateReady, b.Initialize(ctx, headless.NewContainer("map")))
	assert.False(t, engine.Last().Disposed())
}
