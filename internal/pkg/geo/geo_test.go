package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance_SamePoint(t *testing.T) {
	d := HaversineDistance(24.7136, 46.6753, 24.7136, 46.6753)
	assert.Equal(t, 0.0, d)
}

func TestHaversineDistance_KnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		wantMeters             float64
		tolerance              float64
	}{
		{
			// ~870 m, the outside point from the attendance dashboards' demo data
			name: "riyadh short hop",
			lat1: 24.7136, lng1: 46.6753,
			lat2: 24.7200, lng2: 46.6800,
			wantMeters: 855,
			tolerance:  30,
		},
		{
			name: "one degree of latitude",
			lat1: 0, lng1: 0,
			lat2: 1, lng2: 0,
			wantMeters: 111195,
			tolerance:  50,
		},
		{
			name: "paris to london",
			lat1: 48.8566, lng1: 2.3522,
			lat2: 51.5074, lng2: -0.1278,
			wantMeters: 343500,
			tolerance:  1500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := HaversineDistance(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			assert.InDelta(t, tt.wantMeters, d, tt.tolerance)
		})
	}
}

func TestHaversineDistance_Symmetric(t *testing.T) {
	d1 := HaversineDistance(24.7136, 46.6753, 24.7300, 46.6900)
	d2 := HaversineDistance(24.7300, 46.6900, 24.7136, 46.6753)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestWithinRadius_BoundaryIsInside(t *testing.T) {
	center := struct{ lat, lng float64 }{24.7136, 46.6753}
	d := HaversineDistance(24.7200, 46.6800, center.lat, center.lng)

	// Exactly on the boundary counts as inside.
	assert.True(t, WithinRadius(24.7200, 46.6800, center.lat, center.lng, d))
	assert.False(t, WithinRadius(24.7200, 46.6800, center.lat, center.lng, d-1))
	assert.True(t, WithinRadius(24.7200, 46.6800, center.lat, center.lng, d+1))
}

func TestWithinRadius_CenterAlwaysInside(t *testing.T) {
	assert.True(t, WithinRadius(24.7136, 46.6753, 24.7136, 46.6753, 10))
}

func TestValidCoordinate(t *testing.T) {
	assert.True(t, ValidCoordinate(0, 0))
	assert.True(t, ValidCoordinate(-90, 180))
	assert.True(t, ValidCoordinate(90, -180))
	assert.False(t, ValidCoordinate(90.001, 0))
	assert.False(t, ValidCoordinate(0, -180.5))
	assert.False(t, ValidCoordinate(-91, 200))
}
