package mapview_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/growth-logbook/backend/internal/mapview"
)

func TestDispatcher_FanOutAndUnsubscribe(t *testing.T) {
	d := mapview.NewDispatcher(2)
	var a, b int
	unsubA := d.Subscribe(func(context.Context, mapview.RegionSelected) { a++ })
	d.Subscribe(func(context.Context, mapview.RegionSelected) { b++ })

	d.Notify(context.Background(), mapview.RegionSelected{ID: uuid.New(), Label: "北京"})
	unsubA()
	d.Notify(context.Background(), mapview.RegionSelected{ID: uuid.New(), Label: "上海"})
	d.Notify(context.Background(), mapview.RegionSelected{ID: uuid.New(), Label: "天津"})

	assert.Equal(t, 1, a)
	assert.Equal(t, 3, b)

	recent := d.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "上海", recent[0].Label)
	assert.Equal(t, "天津", recent[1].Label)
}

func TestDispatcher_NoSubscribers(t *testing.T) {
	d := mapview.NewDispatcher(0)
	assert.NotPanics(t, func() {
		d.Notify(context.Background(), mapview.RegionSelected{Label: "北京"})
	})
	assert.Empty(t, d.Recent())
}

func TestStars(t *testing.T) {
	assert.Equal(t, "☆☆☆☆☆", mapview.Stars(0))
	assert.Equal(t, "★★★☆☆", mapview.Stars(3))
	assert.Equal(t, "★★★★★", mapview.Stars(5))
	assert.Equal(t, "★★★★★", mapview.Stars(9))
	assert.Equal(t, "☆☆☆☆☆", mapview.Stars(-1))
}

func TestValidateGeoJSON(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"feature collection", chinaJSON, false},
		{"empty collection", `{"type":"FeatureCollection","features":[]}`, false},
		{"single feature", `{"type":"Feature"}`, true},
		{"not json", `<html>`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapview.ValidateGeoJSON([]byte(tt.data))
			if tt.wantErr {
				assert.True(t, errors.Is(err, mapview.ErrMalformedGeometry), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRemoteGeometry_Fetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(chinaJSON))
	})
	mux.HandleFunc("/bad.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"type":"Topology"}`))
	})
	mux.HandleFunc("/missing.json", http.NotFound)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()

	data, err := mapview.NewRemoteGeometry(srv.URL+"/ok.json", time.Second).Fetch(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, chinaJSON, string(data))

	_, err = mapview.NewRemoteGeometry(srv.URL+"/bad.json", time.Second).Fetch(ctx)
	assert.ErrorIs(t, err, mapview.ErrMalformedGeometry)

	_, err = mapview.NewRemoteGeometry(srv.URL+"/missing.json", time.Second).Fetch(ctx)
	assert.ErrorContains(t, err, "status 404")
}
