// Package geo provides the coordinate type shared by the provider client,
// the route orchestrator and the tool layer.
package geo

import (
	"fmt"
	"math"
	"strconv"
)

// Coordinate represents a WGS-84 geographic coordinate with standardized JSON
// field names.
//
// Example:
//
//	c := geo.Coordinate{Latitude: 37.5014, Longitude: 127.0269}
//	if err := c.Validate(); err != nil { ... }
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RangeError reports a coordinate component outside its valid range.
type RangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid %s value: %f (must be between %g and %g)", e.Field, e.Value, e.Min, e.Max)
}

// Validate checks that latitude is within [-90, 90] and longitude within [-180, 180].
// NaN is outside every range.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return &RangeError{Field: "latitude", Value: c.Latitude, Min: -90, Max: 90}
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return &RangeError{Field: "longitude", Value: c.Longitude, Min: -180, Max: 180}
	}
	return nil
}

// LngLat formats the coordinate as "lng,lat", the order the Naver APIs expect.
func (c Coordinate) LngLat() string {
	return strconv.FormatFloat(c.Longitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Latitude, 'f', -1, 64)
}

// FromLngLat builds a coordinate from a [lng, lat] pair as found in route paths.
// It returns false if the pair is malformed.
func FromLngLat(pair []float64) (Coordinate, bool) {
	if len(pair) < 2 {
		return Coordinate{}, false
	}
	return Coordinate{Latitude: pair[1], Longitude: pair[0]}, true
}

// String returns a human-readable representation of the coordinate
func (c Coordinate) String() string {
	return fmt.Sprintf("(%f, %f)", c.Latitude, c.Longitude)
}
