package mapview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// GeometryTier identifies how map geometry was obtained at initialisation.
type GeometryTier string

const (
	// TierRemote: fetched from the geometry source and registered.
	TierRemote GeometryTier = "remote"
	// TierBuiltin: the renderer ships geometry for the map name.
	TierBuiltin GeometryTier = "builtin"
	// TierStub: an empty FeatureCollection was registered.
	TierStub GeometryTier = "stub"
	// TierNone: every tier failed; the map is drawn without geometry.
	TierNone GeometryTier = "none"
)

// ErrMalformedGeometry is returned when a geometry payload is not a GeoJSON
// FeatureCollection.
var ErrMalformedGeometry = errors.New("malformed geometry")

var (
	errNoGeometrySource = errors.New("no geometry source configured")
	errNoBuiltinMap     = errors.New("renderer has no built-in map")
)

// stubGeometry is the minimal geometry registered when nothing better is
// available. Regions still classify; they just have no shapes.
var stubGeometry = []byte(`{"type":"FeatureCollection","features":[]}`)

// GeometrySource provides the GeoJSON for the closed region set.
type GeometrySource interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// RemoteGeometry fetches GeoJSON over HTTP.
type RemoteGeometry struct {
	client *resty.Client
	url    string
}

// NewRemoteGeometry creates a source for url. A zero timeout leaves the
// request bounded only by ctx and the remote end.
func NewRemoteGeometry(url string, timeout time.Duration) *RemoteGeometry {
	c := resty.New().SetHeader("Accept", "application/json")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &RemoteGeometry{client: c, url: url}
}

// Fetch downloads and validates the geometry payload.
func (g *RemoteGeometry) Fetch(ctx context.Context) ([]byte, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		Get(g.url)
	if err != nil {
		return nil, fmt.Errorf("mapview.RemoteGeometry.Fetch: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("mapview.RemoteGeometry.Fetch: status %d", resp.StatusCode())
	}

	body := resp.Body()
	if err := ValidateGeoJSON(body); err != nil {
		return nil, fmt.Errorf("mapview.RemoteGeometry.Fetch: %w", err)
	}
	return body, nil
}

// ValidateGeoJSON checks that data is a GeoJSON FeatureCollection.
func ValidateGeoJSON(data []byte) error {
	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedGeometry, err)
	}
	if fc.Type != "FeatureCollection" {
		return fmt.Errorf("%w: type %q, want FeatureCollection", ErrMalformedGeometry, fc.Type)
	}
	return nil
}
