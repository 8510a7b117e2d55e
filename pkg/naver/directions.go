package naver

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/NERVsystems/navermcp/pkg/geo"
)

// RouteOption selects the route-search strategy.
type RouteOption string

const (
	OptionFastest      RouteOption = "trafast"
	OptionComfort      RouteOption = "tracomfort"
	OptionOptimal      RouteOption = "traoptimal"
	OptionAvoidToll    RouteOption = "traavoidtoll"
	OptionAvoidCarOnly RouteOption = "traavoidcaronly"
)

// DefaultRouteOption is used when no option is given.
const DefaultRouteOption = OptionFastest

var routeOptionAliases = map[string]RouteOption{
	"trafast":         OptionFastest,
	"fastest":         OptionFastest,
	"tracomfort":      OptionComfort,
	"comfort":         OptionComfort,
	"traoptimal":      OptionOptimal,
	"optimal":         OptionOptimal,
	"traavoidtoll":    OptionAvoidToll,
	"avoid-toll":      OptionAvoidToll,
	"traavoidcaronly": OptionAvoidCarOnly,
	"avoid-car-only":  OptionAvoidCarOnly,
}

// RouteOptions lists the wire names of all route options.
func RouteOptions() []string {
	return []string{
		string(OptionFastest),
		string(OptionComfort),
		string(OptionOptimal),
		string(OptionAvoidToll),
		string(OptionAvoidCarOnly),
	}
}

// ParseRouteOption accepts a wire name or its alias; empty means the default.
func ParseRouteOption(s string) (RouteOption, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultRouteOption, nil
	}
	if opt, ok := routeOptionAliases[s]; ok {
		return opt, nil
	}
	aliases := make([]string, 0, len(routeOptionAliases))
	for k := range routeOptionAliases {
		aliases = append(aliases, k)
	}
	sort.Strings(aliases)
	return "", fmt.Errorf("unknown route option %q (expected one of %s)", s, strings.Join(aliases, ", "))
}

// Language selects the language of guidance text.
type Language string

const (
	LangKorean   Language = "ko"
	LangEnglish  Language = "en"
	LangJapanese Language = "ja"
	LangChinese  Language = "zh"
)

// Languages lists the supported guidance languages.
func Languages() []string {
	return []string{string(LangKorean), string(LangEnglish), string(LangJapanese), string(LangChinese)}
}

// ParseLanguage validates a language code; empty means the provider default.
func ParseLanguage(s string) (Language, error) {
	switch l := Language(strings.ToLower(strings.TrimSpace(s))); l {
	case "", LangKorean, LangEnglish, LangJapanese, LangChinese:
		return l, nil
	default:
		return "", fmt.Errorf("unsupported language %q (expected one of %s)", s, strings.Join(Languages(), ", "))
	}
}

// MaxWaypoints is the directions-15 API limit.
const MaxWaypoints = 15

// RouteRequest describes a driving route.
type RouteRequest struct {
	Start     geo.Coordinate
	Goal      geo.Coordinate
	Waypoints []geo.Coordinate
	Option    RouteOption
	Lang      Language
}

func (r RouteRequest) validate(op string) error {
	if err := r.Start.Validate(); err != nil {
		return newRequestError(op, "start: "+err.Error())
	}
	if err := r.Goal.Validate(); err != nil {
		return newRequestError(op, "goal: "+err.Error())
	}
	if len(r.Waypoints) > MaxWaypoints {
		return newRequestError(op, fmt.Sprintf("too many waypoints: %d (maximum is %d)", len(r.Waypoints), MaxWaypoints))
	}
	for i, wp := range r.Waypoints {
		if err := wp.Validate(); err != nil {
			return newRequestError(op, fmt.Sprintf("waypoint[%d]: %v", i, err))
		}
	}
	return nil
}

func (r RouteRequest) option() RouteOption {
	if r.Option == "" {
		return DefaultRouteOption
	}
	return r.Option
}

func (r RouteRequest) params() url.Values {
	params := url.Values{}
	params.Set("start", r.Start.LngLat())
	params.Set("goal", r.Goal.LngLat())
	params.Set("option", string(r.option()))
	if r.Lang != "" {
		params.Set("lang", string(r.Lang))
	}
	if len(r.Waypoints) > 0 {
		points := make([]string, len(r.Waypoints))
		for i, wp := range r.Waypoints {
			points[i] = wp.LngLat()
		}
		params.Set("waypoints", strings.Join(points, "|"))
	}
	return params
}

// Summary describes the selected route as a whole.
type Summary struct {
	Start         geo.Coordinate   `json:"start"`
	Goal          geo.Coordinate   `json:"goal"`
	Waypoints     []geo.Coordinate `json:"waypoints,omitempty"`
	Distance      int              `json:"distance"`
	Duration      int              `json:"duration"`
	DepartureTime string           `json:"departureTime,omitempty"`
	BBox          []geo.Coordinate `json:"bbox,omitempty"`
	TollFare      int              `json:"tollFare"`
	TaxiFare      int              `json:"taxiFare"`
	FuelPrice     int              `json:"fuelPrice"`
}

// Section is a named stretch of road with its congestion level.
type Section struct {
	PointIndex int    `json:"pointIndex"`
	PointCount int    `json:"pointCount"`
	Distance   int    `json:"distance"`
	Name       string `json:"name"`
	Congestion int    `json:"congestion"`
	Speed      int    `json:"speed"`
}

// Guide is a turn-by-turn instruction.
type Guide struct {
	PointIndex   int    `json:"pointIndex"`
	Type         int    `json:"type"`
	Instructions string `json:"instructions"`
	Distance     int    `json:"distance"`
	Duration     int    `json:"duration"`
}

// RouteResult is the selected route. Distance is in meters and Duration in
// milliseconds.
type RouteResult struct {
	Code            int              `json:"code"`
	Message         string           `json:"message"`
	CurrentDateTime string           `json:"currentDateTime,omitempty"`
	Option          RouteOption      `json:"option"`
	Distance        int              `json:"distance"`
	Duration        int              `json:"duration"`
	Summary         Summary          `json:"summary"`
	Path            []geo.Coordinate `json:"path"`
	Sections        []Section        `json:"sections,omitempty"`
	Guides          []Guide          `json:"guides,omitempty"`
	Origin
}

type location struct {
	Location []float64 `json:"location"`
}

type directionsResponse struct {
	Code            int                   `json:"code"`
	Message         string                `json:"message"`
	CurrentDateTime string                `json:"currentDateTime"`
	Route           map[string][]rawRoute `json:"route"`
}

type rawRoute struct {
	Summary struct {
		Start         location    `json:"start"`
		Goal          location    `json:"goal"`
		Waypoints     []location  `json:"waypoints"`
		Distance      int         `json:"distance"`
		Duration      int         `json:"duration"`
		DepartureTime string      `json:"departureTime"`
		BBox          [][]float64 `json:"bbox"`
		TollFare      int         `json:"tollFare"`
		TaxiFare      int         `json:"taxiFare"`
		FuelPrice     int         `json:"fuelPrice"`
	} `json:"summary"`
	Path    [][]float64 `json:"path"`
	Section []Section   `json:"section"`
	Guide   []Guide     `json:"guide"`
}

// Route finds a driving route between two points. Use RouteWithWaypoints
// for intermediate stops. Routing never falls back to synthetic data.
func (c *Client) Route(ctx context.Context, req RouteRequest) (*RouteResult, error) {
	if len(req.Waypoints) > 0 {
		return nil, newRequestError(OpRoute, "waypoints are not accepted here, use routeWithWaypoints")
	}
	return c.route(ctx, OpRoute, DirectionsPath, req)
}

// RouteWithWaypoints finds a driving route through up to MaxWaypoints
// intermediate stops, in order.
func (c *Client) RouteWithWaypoints(ctx context.Context, req RouteRequest) (*RouteResult, error) {
	return c.route(ctx, OpRouteWithWaypoints, Directions15Path, req)
}

func (c *Client) route(ctx context.Context, op, path string, req RouteRequest) (*RouteResult, error) {
	if err := req.validate(op); err != nil {
		return nil, err
	}

	var resp directionsResponse
	if err := c.get(ctx, op, path, req.params(), &resp); err != nil {
		return nil, err
	}

	if resp.Code != 0 {
		c.logger.Info("no route found", "op", op, "code", resp.Code, "message", resp.Message)
		return nil, &RouteError{Code: resp.Code, Message: resp.Message}
	}

	option := req.option()
	variants := resp.Route[string(option)]
	if len(variants) == 0 {
		return nil, &APIError{
			Op:       op,
			Kind:     KindDecode,
			Message:  fmt.Sprintf("response contained no route for option %s", option),
			Guidance: GuidanceDataError,
		}
	}

	return newRouteResult(resp, option, variants[0]), nil
}

func newRouteResult(resp directionsResponse, option RouteOption, r rawRoute) *RouteResult {
	summary := Summary{
		Start:         toCoordinate(r.Summary.Start.Location),
		Goal:          toCoordinate(r.Summary.Goal.Location),
		Distance:      r.Summary.Distance,
		Duration:      r.Summary.Duration,
		DepartureTime: r.Summary.DepartureTime,
		BBox:          toCoordinates(r.Summary.BBox),
		TollFare:      r.Summary.TollFare,
		TaxiFare:      r.Summary.TaxiFare,
		FuelPrice:     r.Summary.FuelPrice,
	}
	for _, wp := range r.Summary.Waypoints {
		summary.Waypoints = append(summary.Waypoints, toCoordinate(wp.Location))
	}

	return &RouteResult{
		Code:            resp.Code,
		Message:         resp.Message,
		CurrentDateTime: resp.CurrentDateTime,
		Option:          option,
		Distance:        r.Summary.Distance,
		Duration:        r.Summary.Duration,
		Summary:         summary,
		Path:            toCoordinates(r.Path),
		Sections:        r.Section,
		Guides:          r.Guide,
		Origin:          authentic(),
	}
}

func toCoordinate(lngLat []float64) geo.Coordinate {
	c, _ := geo.FromLngLat(lngLat)
	return c
}

func toCoordinates(points [][]float64) []geo.Coordinate {
	if len(points) == 0 {
		return nil
	}
	out := make([]geo.Coordinate, 0, len(points))
	for _, p := range points {
		if c, ok := geo.FromLngLat(p); ok {
			out = append(out, c)
		}
	}
	return out
}
