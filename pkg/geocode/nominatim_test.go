package geocode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonidyasin/tablebot/pkg/geocode"
)

func TestReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "55.7558", r.URL.Query().Get("lat"))
		assert.Equal(t, "37.6173", r.URL.Query().Get("lon"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name": "Red Square, Moscow, Russia"}`))
	}))
	defer srv.Close()

	client := geocode.New(geocode.WithEndpoint(srv.URL))
	addr, err := client.ReverseGeocode(context.Background(), 55.7558, 37.6173)
	require.NoError(t, err)
	assert.Equal(t, "Red Square, Moscow, Russia", addr)
}

func TestReverseGeocodeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "Unable to geocode"}`))
	}))
	defer srv.Close()

	client := geocode.New(geocode.WithEndpoint(srv.URL))
	_, err := client.ReverseGeocode(context.Background(), 0, 0)
	assert.ErrorContains(t, err, "Unable to geocode")
}

func TestReverseGeocodeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := geocode.New(geocode.WithEndpoint(srv.URL))
	_, err := client.ReverseGeocode(context.Background(), 1, 1)
	assert.Error(t, err)
}

func TestReverseGeocodeEmptyAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := geocode.New(geocode.WithEndpoint(srv.URL))
	_, err := client.ReverseGeocode(context.Background(), 1, 1)
	assert.Error(t, err)
}
