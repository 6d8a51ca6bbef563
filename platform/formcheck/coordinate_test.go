package formcheck

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidCoordinateLatitude(t *testing.T) {
	valid := []any{0.0, 90.0, -90.0, 45.5, -45.5, 0.000001, -0.000001, 12, int64(-7), json.Number("51.5074")}
	for _, v := range valid {
		assert.True(t, IsValidCoordinate(v, AxisLatitude), "latitude %v", v)
	}

	invalid := []any{91.0, -91.0, "45", math.NaN(), nil, math.Inf(1), math.Inf(-1), true, json.Number("abc")}
	for _, v := range invalid {
		assert.False(t, IsValidCoordinate(v, AxisLatitude), "latitude %v", v)
	}
}

func TestIsValidCoordinateLongitude(t *testing.T) {
	valid := []any{0.0, 180.0, -180.0, 120.5, -120.5, 0.000001, -0.000001, float32(179.5)}
	for _, v := range valid {
		assert.True(t, IsValidCoordinate(v, AxisLongitude), "longitude %v", v)
	}

	invalid := []any{181.0, -181.0, "120", math.NaN(), nil, math.Inf(1), math.Inf(-1)}
	for _, v := range invalid {
		assert.False(t, IsValidCoordinate(v, AxisLongitude), "longitude %v", v)
	}
}

func TestIsValidCoordinateAxisDefaults(t *testing.T) {
	assert.True(t, IsValidCoordinate(45.0, ""))
	assert.False(t, IsValidCoordinate(91.0, ""), "omitted axis checks latitude range")
	assert.False(t, IsValidCoordinate(120.0, ""))

	assert.False(t, IsValidCoordinate(45.0, Axis("invalid")))
	assert.False(t, IsValidCoordinate(0.0, Axis("LAT")))
}

func TestIsValidCoordinateRangeProperty(t *testing.T) {
	for v := -200.0; v <= 200.0; v += 0.5 {
		assert.Equal(t, v >= -90 && v <= 90, IsValidCoordinate(v, AxisLatitude), "lat %v", v)
		assert.Equal(t, v >= -180 && v <= 180, IsValidCoordinate(v, AxisLongitude), "lng %v", v)
	}
}

func TestCoordinateKind(t *testing.T) {
	kind, ok := CoordinateKind(95.0, AxisLatitude)
	assert.False(t, ok)
	assert.Equal(t, KindOutOfRange, kind)

	kind, ok = CoordinateKind("95", AxisLatitude)
	assert.False(t, ok)
	assert.Equal(t, KindInvalidType, kind)

	kind, ok = CoordinateKind(math.NaN(), AxisLongitude)
	assert.False(t, ok)
	assert.Equal(t, KindInvalidType, kind)

	_, ok = CoordinateKind(-3.5339, AxisLongitude)
	assert.True(t, ok)
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange(50.7184, AxisLatitude))
	assert.False(t, InRange(math.Inf(1), AxisLongitude))
}
