package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atmoview/atmoview/internal/geo"
)

func TestOpenElevationLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/lookup", r.URL.Path)

		var req struct {
			Locations []geo.Point `json:"locations"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Locations, 3)

		// Second elevation is null; it must map to 0.
		fmt.Fprint(w, `{"results": [
			{"latitude": 10, "longitude": 20, "elevation": 132.5},
			{"latitude": 11, "longitude": 21, "elevation": null},
			{"latitude": 12, "longitude": 22, "elevation": -4}
		]}`)
	}))
	defer srv.Close()

	client := NewOpenElevationClient(srv.Client(), srv.URL)
	points := []geo.Point{{Lat: 10, Lon: 20}, {Lat: 11, Lon: 21}, {Lat: 12, Lon: 22}}

	elevations, err := client.Lookup(context.Background(), points)
	require.NoError(t, err)
	assert.Equal(t, []float64{132.5, 0, -4}, elevations)
}

func TestOpenElevationResultCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [{"latitude": 10, "longitude": 20, "elevation": 5}]}`)
	}))
	defer srv.Close()

	client := NewOpenElevationClient(srv.Client(), srv.URL)
	_, err := client.Lookup(context.Background(), []geo.Point{{Lat: 10, Lon: 20}, {Lat: 11, Lon: 21}})
	assert.ErrorContains(t, err, "1 results for 2 points")
}

func TestRapidChatHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-RapidAPI-Key"))
		assert.NotEmpty(t, r.Header.Get("X-RapidAPI-Host"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["query"])

		fmt.Fprint(w, `{"result": "hi there"}`)
	}))
	defer srv.Close()

	client := NewRapidChatClient(srv.Client(), "secret", srv.URL+"/ask")
	raw, err := client.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.JSONEq(t, `{"result": "hi there"}`, string(raw))
}

func TestRapidChatMissingKey(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	client := NewRapidChatClient(srv.Client(), "", srv.URL)
	_, err := client.Complete(context.Background(), "hello")
	assert.Error(t, err)
	assert.Zero(t, hits, "missing key must fail before any network call")
}

func TestRapidChatStatusErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewRapidChatClient(srv.Client(), "secret", srv.URL)
	_, err := client.Complete(context.Background(), "hello")

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.Code)
}
