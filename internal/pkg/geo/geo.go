package geo

import "math"

// earthRadiusM is the spherical Earth radius used by the haversine
// formula, in meters.
const earthRadiusM = 6371000

// HaversineDistance returns the great-circle distance between two
// WGS-84 coordinates in meters.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLng := (lng2 - lng1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// WithinRadius reports whether the point lies inside or on the boundary
// of the circle around (centerLat, centerLng). The boundary counts as
// inside.
func WithinRadius(lat, lng, centerLat, centerLng float64, radiusM float64) bool {
	return HaversineDistance(lat, lng, centerLat, centerLng) <= radiusM
}

// ValidCoordinate reports whether lat/lng are inside WGS-84 ranges.
func ValidCoordinate(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
