// Package formcheck holds the structural checks applied to citizen issue
// reports and account credentials before anything reaches storage.
// Every function is pure: no I/O, no shared state, no panics.
package formcheck

import (
	"encoding/json"
	"math"
)

// Axis tags a coordinate as a latitude or a longitude.
// The zero value means the caller did not say, and is checked as a latitude.
type Axis string

const (
	AxisLatitude  Axis = "lat"
	AxisLongitude Axis = "lng"
)

const (
	maxLatitude  = 90.0
	maxLongitude = 180.0
)

// IsValidCoordinate reports whether value is a finite number inside the
// range of axis. Non-numeric values (strings, nil, bools) are rejected
// regardless of what they look like, as is any axis other than
// AxisLatitude, AxisLongitude or the empty Axis.
func IsValidCoordinate(value any, axis Axis) bool {
	_, ok := CoordinateKind(value, axis)
	return ok
}

// CoordinateKind classifies a coordinate. It returns ("", true) when the
// value is acceptable, otherwise the reason it was rejected.
func CoordinateKind(value any, axis Axis) (Kind, bool) {
	limit, known := axisLimit(axis)
	if !known {
		return KindInvalidType, false
	}

	f, numeric := toFloat(value)
	if !numeric || math.IsNaN(f) || math.IsInf(f, 0) {
		return KindInvalidType, false
	}

	if f < -limit || f > limit {
		return KindOutOfRange, false
	}
	return "", true
}

// InRange is the typed counterpart of IsValidCoordinate for callers that
// already hold a float64.
func InRange(v float64, axis Axis) bool {
	return IsValidCoordinate(v, axis)
}

func axisLimit(axis Axis) (float64, bool) {
	switch axis {
	case "", AxisLatitude:
		return maxLatitude, true
	case AxisLongitude:
		return maxLongitude, true
	default:
		return 0, false
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
