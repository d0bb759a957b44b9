package maps

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(&Config{APIKey: "test-key", BaseURL: server.URL})
	return client, server
}

func TestGeocode(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3.0/items/geocode", r.URL.Path)
		assert.Equal(t, "Тверская 1", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		fmt.Fprint(w, `{"result":{"items":[{"point":{"lat":55.757,"lon":37.612}}]}}`)
	}))
	defer server.Close()

	point, err := client.Geocode(context.Background(), "Тверская 1")
	require.NoError(t, err)
	assert.InDelta(t, 55.757, point.Lat, 0.001)
	assert.InDelta(t, 37.612, point.Lon, 0.001)
}

func TestGeocodeNoResults(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"result":{"items":[]}}`)
	}))
	defer server.Close()

	_, err := client.Geocode(context.Background(), "nowhere at all")
	assert.Error(t, err)
}

func TestRouteRoundsUpToMinutes(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/routing/7.0.0/global", r.URL.Path)
		fmt.Fprint(w, `{"result":[{"total_duration":1234}]}`)
	}))
	defer server.Close()

	minutes, err := client.Route(context.Background(), Point{Lat: 55, Lon: 37}, Point{Lat: 56, Lon: 38})
	require.NoError(t, err)
	// 1234 seconds is 20.6 minutes.
	assert.Equal(t, 21, minutes)
}

func TestTravelMinutes(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/3.0/items/geocode":
			fmt.Fprint(w, `{"result":{"items":[{"point":{"lat":55.7,"lon":37.6}}]}}`)
		case "/routing/7.0.0/global":
			fmt.Fprint(w, `{"result":[{"total_duration":600}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	minutes, err := client.TravelMinutes(context.Background(), "дом", "клиника")
	require.NoError(t, err)
	assert.Equal(t, 10, minutes)
}

func TestServerErrorSurfaces(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer server.Close()

	_, err := client.Geocode(context.Background(), "anywhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
