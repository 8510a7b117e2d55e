package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/NERVsystems/navermcp/pkg/geo"
	"github.com/NERVsystems/navermcp/pkg/metrics"
)

// ResultStatus tells a caller how a geocoding result was produced.
type ResultStatus string

const (
	StatusOK       ResultStatus = "ok"
	StatusEmpty    ResultStatus = "empty"
	StatusFallback ResultStatus = "fallback"
)

// NoResultsMessage is attached to empty geocoding results.
const NoResultsMessage = "no results"

// Geocoding pagination limits
const (
	MinCount = 1
	MaxCount = 100
)

// GeocodeOptions are optional geocoding parameters.
type GeocodeOptions struct {
	Filter       Filter
	Coordinate   *geo.Coordinate // bias results and compute distance from here
	Language     string          // "kor" or "eng"
	Page         int
	Count        int // clamped to [MinCount, MaxCount]
	UseDummyData bool
}

func (o GeocodeOptions) params(query string) url.Values {
	params := url.Values{}
	params.Set("query", query)
	if !o.Filter.IsZero() {
		params.Set("filter", o.Filter.String())
	}
	if o.Coordinate != nil {
		params.Set("coordinate", o.Coordinate.LngLat())
	}
	if o.Language != "" {
		params.Set("language", o.Language)
	}
	if o.Page > 0 {
		params.Set("page", strconv.Itoa(o.Page))
	}
	if o.Count != 0 {
		params.Set("count", strconv.Itoa(ClampCount(o.Count)))
	}
	return params
}

// ClampCount limits a requested page size to what the API accepts.
func ClampCount(n int) int {
	if n < MinCount {
		return MinCount
	}
	if n > MaxCount {
		return MaxCount
	}
	return n
}

// GeocodeMeta is the pagination block of a geocoding response.
type GeocodeMeta struct {
	TotalCount int `json:"totalCount"`
	Page       int `json:"page"`
	Count      int `json:"count"`
}

// AddressElement is one component of a structured address.
type AddressElement struct {
	Types     []string `json:"types"`
	LongName  string   `json:"longName"`
	ShortName string   `json:"shortName"`
	Code      string   `json:"code"`
}

// AddressCandidate is a single geocoding match. X is the longitude and Y the
// latitude; Distance is in meters from GeocodeOptions.Coordinate.
type AddressCandidate struct {
	RoadAddress     string           `json:"roadAddress"`
	JibunAddress    string           `json:"jibunAddress"`
	EnglishAddress  string           `json:"englishAddress,omitempty"`
	AddressElements []AddressElement `json:"addressElements,omitempty"`
	X               float64          `json:"x"`
	Y               float64          `json:"y"`
	Distance        float64          `json:"distance"`
}

// UnmarshalJSON accepts x and y as either strings or numbers; the API sends
// strings. A missing or non-numeric distance becomes 0.
func (a *AddressCandidate) UnmarshalJSON(data []byte) error {
	var raw struct {
		RoadAddress     string           `json:"roadAddress"`
		JibunAddress    string           `json:"jibunAddress"`
		EnglishAddress  string           `json:"englishAddress"`
		AddressElements []AddressElement `json:"addressElements"`
		X               any              `json:"x"`
		Y               any              `json:"y"`
		Distance        any              `json:"distance"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	x, err := cast.ToFloat64E(raw.X)
	if err != nil {
		return fmt.Errorf("address x: %w", err)
	}
	y, err := cast.ToFloat64E(raw.Y)
	if err != nil {
		return fmt.Errorf("address y: %w", err)
	}

	*a = AddressCandidate{
		RoadAddress:     raw.RoadAddress,
		JibunAddress:    raw.JibunAddress,
		EnglishAddress:  raw.EnglishAddress,
		AddressElements: raw.AddressElements,
		X:               x,
		Y:               y,
	}
	if d, err := cast.ToFloat64E(raw.Distance); err == nil {
		a.Distance = d
	}
	return nil
}

// Coordinate returns the candidate's position.
func (a AddressCandidate) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: a.Y, Longitude: a.X}
}

// DisplayAddress returns the road address, or the jibun address when the
// road address is empty.
func (a AddressCandidate) DisplayAddress() string {
	if a.RoadAddress != "" {
		return a.RoadAddress
	}
	return a.JibunAddress
}

// GeocodeResult is the outcome of a forward geocoding call.
type GeocodeResult struct {
	Status       ResultStatus       `json:"status"`
	Query        string             `json:"query"`
	Meta         GeocodeMeta        `json:"meta"`
	Addresses    []AddressCandidate `json:"addresses"`
	ErrorMessage string             `json:"errorMessage,omitempty"`
	Origin
}

type geocodeResponse struct {
	Status       string             `json:"status"`
	Meta         GeocodeMeta        `json:"meta"`
	Addresses    []AddressCandidate `json:"addresses"`
	ErrorMessage string             `json:"errorMessage"`
}

// Geocode resolves a free-form address to candidate coordinates. When the
// call fails and a fallback is enabled, a synthetic result is returned
// instead of the error.
func (c *Client) Geocode(ctx context.Context, query string, opts GeocodeOptions) (*GeocodeResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, newRequestError(OpGeocode, "address query must not be empty")
	}
	if opts.Coordinate != nil {
		if err := opts.Coordinate.Validate(); err != nil {
			return nil, newRequestError(OpGeocode, err.Error())
		}
	}

	var resp geocodeResponse
	err := c.get(ctx, OpGeocode, GeocodePath, opts.params(query), &resp)
	if err == nil {
		err = geocodeStatusError(resp.Status, resp.ErrorMessage)
	}
	if err != nil {
		if c.fallbackEnabled(opts.UseDummyData) {
			c.logger.Warn("returning synthetic geocode result", "query", query, "error", err)
			metrics.FallbacksTotal.WithLabelValues(OpGeocode).Inc()
			return syntheticGeocode(query, err), nil
		}
		return nil, err
	}

	if len(resp.Addresses) == 0 {
		metrics.EmptyResultsTotal.WithLabelValues(OpGeocode).Inc()
		return &GeocodeResult{
			Status:       StatusEmpty,
			Query:        query,
			Meta:         resp.Meta,
			Addresses:    []AddressCandidate{},
			ErrorMessage: NoResultsMessage,
			Origin:       authentic(),
		}, nil
	}

	return &GeocodeResult{
		Status:    StatusOK,
		Query:     query,
		Meta:      resp.Meta,
		Addresses: resp.Addresses,
		Origin:    authentic(),
	}, nil
}

// geocodeStatusError maps the body-level status of a 200 response.
func geocodeStatusError(status, message string) error {
	switch status {
	case "", "OK":
		return nil
	case "INVALID_REQUEST":
		return &APIError{Op: OpGeocode, Kind: KindRequest, Message: statusMessage(status, message), Guidance: GuidanceAddressFormat}
	default:
		return &APIError{Op: OpGeocode, Kind: KindUpstream, Message: statusMessage(status, message), Guidance: GuidanceUpstream}
	}
}

func statusMessage(status, message string) string {
	if message == "" {
		return status
	}
	return status + ": " + message
}
