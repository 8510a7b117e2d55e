package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/NERVsystems/navermcp/pkg/geo"
)

// ArgumentError reports a missing or malformed tool argument.
type ArgumentError struct {
	Key    string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Key, e.Reason)
}

// Arguments wraps the raw argument map of a tool call. Accessors coerce
// loosely typed values (numbers sent as strings, objects sent as JSON
// strings) and only check shape, never domain rules.
type Arguments map[string]any

// Has reports whether key is present and non-null.
func (a Arguments) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// String returns a required string argument.
func (a Arguments) String(key string) (string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return "", &ArgumentError{Key: key, Reason: "is required"}
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", &ArgumentError{Key: key, Reason: "must be a string"}
	}
	return s, nil
}

// OptionalString returns a string argument or def when absent.
func (a Arguments) OptionalString(key, def string) (string, error) {
	if !a.Has(key) {
		return def, nil
	}
	return a.String(key)
}

// Float returns a required numeric argument.
func (a Arguments) Float(key string) (float64, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return 0, &ArgumentError{Key: key, Reason: "is required"}
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, &ArgumentError{Key: key, Reason: "must be a number"}
	}
	return f, nil
}

// OptionalInt returns an integer argument or def when absent. Fractions
// are truncated; values outside the int32 range are rejected.
func (a Arguments) OptionalInt(key string, def int) (int, error) {
	if !a.Has(key) {
		return def, nil
	}
	f, err := a.Float(key)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, &ArgumentError{Key: key, Reason: "must be an integer within range"}
	}
	return int(f), nil
}

// Coordinate returns a required {latitude, longitude} object.
func (a Arguments) Coordinate(key string) (geo.Coordinate, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return geo.Coordinate{}, &ArgumentError{Key: key, Reason: "is required"}
	}
	c, err := toCoordinate(v)
	if err != nil {
		return geo.Coordinate{}, &ArgumentError{Key: key, Reason: err.Error()}
	}
	return c, nil
}

// OptionalCoordinate returns nil when key is absent.
func (a Arguments) OptionalCoordinate(key string) (*geo.Coordinate, error) {
	if !a.Has(key) {
		return nil, nil
	}
	c, err := a.Coordinate(key)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Coordinates returns an optional list of {latitude, longitude} objects.
func (a Arguments) Coordinates(key string) ([]geo.Coordinate, error) {
	if !a.Has(key) {
		return nil, nil
	}
	items, err := toSlice(a[key])
	if err != nil {
		return nil, &ArgumentError{Key: key, Reason: "must be an array of coordinates"}
	}
	coords := make([]geo.Coordinate, 0, len(items))
	for i, item := range items {
		c, err := toCoordinate(item)
		if err != nil {
			return nil, &ArgumentError{Key: fmt.Sprintf("%s[%d]", key, i), Reason: err.Error()}
		}
		coords = append(coords, c)
	}
	return coords, nil
}

// PlanarPoint returns a required {x, y} object.
func (a Arguments) PlanarPoint(key string) (PlanarPoint, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return PlanarPoint{}, &ArgumentError{Key: key, Reason: "is required"}
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return PlanarPoint{}, &ArgumentError{Key: key, Reason: "must be an object with x and y"}
	}
	x, err := requireFloat(m, "x")
	if err != nil {
		return PlanarPoint{}, &ArgumentError{Key: key, Reason: err.Error()}
	}
	y, err := requireFloat(m, "y")
	if err != nil {
		return PlanarPoint{}, &ArgumentError{Key: key, Reason: err.Error()}
	}
	return PlanarPoint{X: x, Y: y}, nil
}

// Strings returns an optional list of strings. A single string is treated
// as a one-element list.
func (a Arguments) Strings(key string) ([]string, error) {
	if !a.Has(key) {
		return nil, nil
	}
	if s, ok := a[key].(string); ok {
		if strings.HasPrefix(strings.TrimSpace(s), "[") {
			items, err := toSlice(s)
			if err != nil {
				return nil, &ArgumentError{Key: key, Reason: "must be an array of strings"}
			}
			list, err := cast.ToStringSliceE(items)
			if err != nil {
				return nil, &ArgumentError{Key: key, Reason: "must be an array of strings"}
			}
			return list, nil
		}
		return []string{s}, nil
	}
	list, err := cast.ToStringSliceE(a[key])
	if err != nil {
		return nil, &ArgumentError{Key: key, Reason: "must be an array of strings"}
	}
	return list, nil
}

func toFloat(v any) (float64, error) {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	return cast.ToFloat64E(v)
}

func toCoordinate(v any) (geo.Coordinate, error) {
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("must be an object with latitude and longitude")
	}
	lat, err := requireFloat(m, "latitude")
	if err != nil {
		return geo.Coordinate{}, err
	}
	lng, err := requireFloat(m, "longitude")
	if err != nil {
		return geo.Coordinate{}, err
	}
	return geo.Coordinate{Latitude: lat, Longitude: lng}, nil
}

func requireFloat(m map[string]any, key string) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%s is required", key)
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return f, nil
}

// toSlice accepts a slice or a JSON array string.
func toSlice(v any) ([]any, error) {
	if s, ok := v.(string); ok {
		var items []any
		if err := json.Unmarshal([]byte(s), &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	return cast.ToSliceE(v)
}
