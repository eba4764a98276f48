package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   "))
	assert.True(t, IsEmpty("\t\n"))
	assert.False(t, IsEmpty("x"))
	assert.False(t, IsEmpty(" x "))
}

func TestCoordinateRanges(t *testing.T) {
	assert.True(t, IsValidLatitude(0))
	assert.True(t, IsValidLatitude(-90))
	assert.True(t, IsValidLatitude(90))
	assert.False(t, IsValidLatitude(90.0001))
	assert.False(t, IsValidLatitude(-100))

	assert.True(t, IsValidLongitude(180))
	assert.True(t, IsValidLongitude(-180))
	assert.False(t, IsValidLongitude(180.0001))
}

func TestIsValidHexColor(t *testing.T) {
	assert.True(t, IsValidHexColor("#FF5733"))
	assert.True(t, IsValidHexColor("#00ff00"))
	assert.False(t, IsValidHexColor("FF5733"))
	assert.False(t, IsValidHexColor("#FFF"))
	assert.False(t, IsValidHexColor("#GGGGGG"))
	assert.False(t, IsValidHexColor("#FF5733AA"))
}

func TestIsValidDateTime(t *testing.T) {
	ts, ok := IsValidDateTime("2025-11-07T10:30:00Z")
	assert.True(t, ok)
	assert.Equal(t, 2025, ts.Year())

	_, ok = IsValidDateTime("2025-11-07T10:30:00+03:00")
	assert.True(t, ok)

	_, ok = IsValidDateTime("2025-11-07 10:30:00")
	assert.False(t, ok)

	_, ok = IsValidDateTime("not-a-time")
	assert.False(t, ok)
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "latitude", Message: "latitude must be between -90 and 90"},
		{Field: "radius_m", Message: "radius_m must be at least 10"},
	}

	assert.Contains(t, errs.Error(), "latitude:")
	assert.Contains(t, errs.Error(), "radius_m:")

	m := errs.ToMap()
	assert.Len(t, m, 2)
	assert.Equal(t, "radius_m must be at least 10", m["radius_m"])
}
