package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/spf13/cast"

	"github.com/NERVsystems/navermcp/pkg/geo"
	"github.com/NERVsystems/navermcp/pkg/metrics"
)

// Coordinate systems accepted by the reverse geocoder.
const (
	CoordsLatLng = "latlng"
	CoordsUTMK   = "utmk"
	CoordsTM128  = "tm128"
	CoordsEPSG   = "epsg"
	CoordsNaver  = "naver"
	CoordsBessel = "bessel"
)

// CoordsTypes lists the accepted coords_type values.
var CoordsTypes = []string{CoordsLatLng, CoordsUTMK, CoordsTM128, CoordsEPSG, CoordsNaver, CoordsBessel}

// DefaultOrders requests both lot-number and road-name conversions.
const DefaultOrders = "addr,roadaddr"

// Reverse geocoder status codes.
const (
	reverseCodeOK        = 0
	reverseCodeNoResults = 3
	reverseCodeInvalid   = 100
)

// ReverseGeocodeOptions are optional reverse-geocoding parameters.
type ReverseGeocodeOptions struct {
	CoordsType   string // one of CoordsTypes; empty means latlng
	Orders       string // comma separated; empty means DefaultOrders
	UseDummyData bool
}

// ReverseStatus is the provider's status block.
type ReverseStatus struct {
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Center is a point in the requested coordinate system.
type Center struct {
	CRS string  `json:"crs"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

// UnmarshalJSON accepts x and y as strings or numbers.
func (c *Center) UnmarshalJSON(data []byte) error {
	var raw struct {
		CRS string `json:"crs"`
		X   any    `json:"x"`
		Y   any    `json:"y"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	x, err := cast.ToFloat64E(raw.X)
	if err != nil {
		return fmt.Errorf("center x: %w", err)
	}
	y, err := cast.ToFloat64E(raw.Y)
	if err != nil {
		return fmt.Errorf("center y: %w", err)
	}
	*c = Center{CRS: raw.CRS, X: x, Y: y}
	return nil
}

// AreaCoords wraps an area's center point.
type AreaCoords struct {
	Center Center `json:"center"`
}

// Area is one level of the administrative hierarchy.
type Area struct {
	Name   string     `json:"name"`
	Alias  string     `json:"alias,omitempty"`
	Coords AreaCoords `json:"coords"`
}

// Region is the administrative hierarchy from country (area0) down to
// village (area4).
type Region struct {
	Area0 Area `json:"area0"`
	Area1 Area `json:"area1"`
	Area2 Area `json:"area2"`
	Area3 Area `json:"area3"`
	Area4 Area `json:"area4"`
}

// Addition carries extra land information such as building name or zip code.
type Addition struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Land is the parcel or road-address detail of a result.
type Land struct {
	Type      string      `json:"type"`
	Number1   string      `json:"number1"`
	Number2   string      `json:"number2"`
	Addition0 Addition    `json:"addition0"`
	Addition1 Addition    `json:"addition1"`
	Addition2 Addition    `json:"addition2"`
	Addition3 Addition    `json:"addition3"`
	Addition4 Addition    `json:"addition4"`
	Name      string      `json:"name,omitempty"`
	Coords    *AreaCoords `json:"coords,omitempty"`
}

// ResultCode identifies the conversion that produced a result.
type ResultCode struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	MappingID string `json:"mappingId"`
}

// ReverseGeocodeEntry is a single conversion (addr, roadaddr, admcode, legalcode).
type ReverseGeocodeEntry struct {
	Name   string     `json:"name"`
	Code   ResultCode `json:"code"`
	Region Region     `json:"region"`
	Land   *Land      `json:"land,omitempty"`
}

// ReverseGeocodeResult is the outcome of a reverse geocoding call.
type ReverseGeocodeResult struct {
	Status         ResultStatus          `json:"status"`
	ProviderStatus ReverseStatus         `json:"providerStatus"`
	Coords         string                `json:"coords"`
	Results        []ReverseGeocodeEntry `json:"results"`
	ErrorMessage   string                `json:"errorMessage,omitempty"`
	Origin
}

type reverseGeocodeResponse struct {
	Status  ReverseStatus         `json:"status"`
	Results []ReverseGeocodeEntry `json:"results"`
}

// ReverseGeocode converts a coordinate into administrative and road addresses.
// Failures fall back to synthetic data under the same policy as Geocode.
func (c *Client) ReverseGeocode(ctx context.Context, coord geo.Coordinate, opts ReverseGeocodeOptions) (*ReverseGeocodeResult, error) {
	coordsType := strings.ToLower(strings.TrimSpace(opts.CoordsType))
	if coordsType == "" || coordsType == CoordsLatLng {
		if err := coord.Validate(); err != nil {
			return nil, newRequestError(OpReverseGeocode, err.Error())
		}
	} else if !validCoordsType(coordsType) {
		return nil, newRequestError(OpReverseGeocode,
			fmt.Sprintf("unsupported coords_type %q (expected one of %s)", opts.CoordsType, strings.Join(CoordsTypes, ", ")))
	} else if !finite(coord.Latitude) || !finite(coord.Longitude) {
		return nil, newRequestError(OpReverseGeocode, "coordinates must be finite numbers")
	}

	orders := opts.Orders
	if orders == "" {
		orders = DefaultOrders
	}

	params := url.Values{}
	params.Set("coords", coord.LngLat())
	params.Set("output", "json")
	params.Set("orders", orders)
	if coordsType != "" {
		params.Set("coords_type", coordsType)
	}

	var resp reverseGeocodeResponse
	err := c.get(ctx, OpReverseGeocode, ReverseGeocodePath, params, &resp)
	if err == nil {
		err = reverseStatusError(resp.Status)
	}
	if err != nil {
		if c.fallbackEnabled(opts.UseDummyData) {
			c.logger.Warn("returning synthetic reverse geocode result", "coords", coord.LngLat(), "error", err)
			metrics.FallbacksTotal.WithLabelValues(OpReverseGeocode).Inc()
			return syntheticReverseGeocode(coord, err), nil
		}
		return nil, err
	}

	if len(resp.Results) == 0 {
		metrics.EmptyResultsTotal.WithLabelValues(OpReverseGeocode).Inc()
		return &ReverseGeocodeResult{
			Status:         StatusEmpty,
			ProviderStatus: resp.Status,
			Coords:         coord.LngLat(),
			Results:        []ReverseGeocodeEntry{},
			ErrorMessage:   NoResultsMessage,
			Origin:         authentic(),
		}, nil
	}

	return &ReverseGeocodeResult{
		Status:         StatusOK,
		ProviderStatus: resp.Status,
		Coords:         coord.LngLat(),
		Results:        resp.Results,
		Origin:         authentic(),
	}, nil
}

func reverseStatusError(status ReverseStatus) error {
	switch status.Code {
	case reverseCodeOK, reverseCodeNoResults:
		return nil
	case reverseCodeInvalid:
		return &APIError{Op: OpReverseGeocode, Kind: KindRequest, Message: statusMessage(status.Name, status.Message), Guidance: GuidanceInvalidParams}
	default:
		return &APIError{Op: OpReverseGeocode, Kind: KindUpstream, Message: statusMessage(status.Name, status.Message), Guidance: GuidanceUpstream}
	}
}

func validCoordsType(t string) bool {
	for _, v := range CoordsTypes {
		if v == t {
			return true
		}
	}
	return false
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
