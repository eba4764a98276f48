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

func TestExtractCoords_AtSegment(t *testing.T) {
	r := NewResolver()

	lat, lng, err := r.ExtractCoords(context.Background(),
		"https://www.google.com/maps/@24.7136,46.6753,17z")

	require.NoError(t, err)
	assert.Equal(t, 24.7136, lat)
	assert.Equal(t, 46.6753, lng)
}

func TestExtractCoords_DataSegmentWinsOverViewport(t *testing.T) {
	r := NewResolver()

	lat, lng, err := r.ExtractCoords(context.Background(),
		"https://www.google.com/maps/place/Somewhere/@24.70,46.60,15z/data=!3m1!4b1!3d24.7136!4d46.6753")

	require.NoError(t, err)
	assert.Equal(t, 24.7136, lat)
	assert.Equal(t, 46.6753, lng)
}

func TestExtractCoords_QueryParam(t *testing.T) {
	r := NewResolver()

	tests := []string{
		"https://maps.google.com/?q=24.7136,46.6753",
		"https://maps.google.com/?ll=24.7136, 46.6753",
		"https://www.google.com/maps/search/?api=1&query=24.7136,46.6753",
	}
	for _, u := range tests {
		lat, lng, err := r.ExtractCoords(context.Background(), u)
		require.NoError(t, err, u)
		assert.Equal(t, 24.7136, lat)
		assert.Equal(t, 46.6753, lng)
	}
}

func TestExtractCoords_NegativeCoordinates(t *testing.T) {
	r := NewResolver()

	lat, lng, err := r.ExtractCoords(context.Background(),
		"https://www.google.com/maps/@-33.8688,-151.2093,12z")

	require.NoError(t, err)
	assert.Equal(t, -33.8688, lat)
	assert.Equal(t, -151.2093, lng)
}

func TestExtractCoords_NoCoordinates(t *testing.T) {
	r := NewResolver()

	_, _, err := r.ExtractCoords(context.Background(),
		"https://www.google.com/maps/place/Riyadh")
	assert.ErrorIs(t, err, ErrNoCoordinates)

	_, _, err = r.ExtractCoords(context.Background(), "not a url at all")
	assert.ErrorIs(t, err, ErrNoCoordinates)
}

func TestExtractCoords_OutOfRangePairRejected(t *testing.T) {
	r := NewResolver()

	_, _, err := r.ExtractCoords(context.Background(),
		"https://maps.google.com/?q=124.7136,46.6753")
	assert.ErrorIs(t, err, ErrNoCoordinates)
}

func TestIsShortHost(t *testing.T) {
	assert.True(t, isShortHost("maps.app.goo.gl"))
	assert.True(t, isShortHost("goo.gl"))
	assert.False(t, isShortHost("www.google.com"))
	assert.False(t, isShortHost("evilgoo.gl.example.com"))
}

func TestExpand_FollowsRedirects(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	finalURL := target.URL + "/maps/@24.7136,46.6753,17z"
	short := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, finalURL, http.StatusFound)
	}))
	defer short.Close()

	r := NewResolver()
	expanded, err := r.expand(context.Background(), short.URL+"/abc123")

	require.NoError(t, err)
	assert.Equal(t, finalURL, expanded)

	lat, lng, err := parseCoordsFromString(t, expanded)
	require.NoError(t, err)
	assert.Equal(t, 24.7136, lat)
	assert.Equal(t, 46.6753, lng)
}

func parseCoordsFromString(t *testing.T, raw string) (float64, float64, error) {
	t.Helper()
	r := NewResolver()
	return r.ExtractCoords(context.Background(), fmt.Sprint(raw))
}
