package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NERVsystems/navermcp/pkg/naver"
)

// Credentials accepted by the fixture.
const (
	FixtureClientID     = "test-client-id"
	FixtureClientSecret = "test-client-secret"
)

// Place is a geocodable location known to the fixture.
type Place struct {
	Road  string
	Jibun string
	Lat   float64
	Lng   float64
}

// Places are the queries the fixture geocodes; any other query yields an
// empty result.
var Places = map[string]Place{
	"강남역":    {Road: "서울특별시 강남구 강남대로 396", Jibun: "서울특별시 강남구 역삼동 858", Lat: 37.4979502, Lng: 127.0276368},
	"서울역":    {Road: "서울특별시 중구 한강대로 405", Jibun: "서울특별시 중구 봉래동2가 122", Lat: 37.5546788, Lng: 126.9706069},
	"판교역":    {Road: "경기도 성남시 분당구 판교역로 160", Jibun: "경기도 성남시 분당구 백현동 536", Lat: 37.3947611, Lng: 127.1111361},
	"홍대입구역":  {Road: "서울특별시 마포구 양화로 160", Jibun: "서울특별시 마포구 동교동 165", Lat: 37.5571, Lng: 126.9245},
	"역삼동 823": {Road: "", Jibun: "서울특별시 강남구 역삼동 823", Lat: 37.5014274, Lng: 127.0269218},
}

// NaverFixture is an httptest server imitating the Naver Maps APIs. It
// counts calls per path and lets tests override individual endpoints.
type NaverFixture struct {
	*httptest.Server

	mu        sync.Mutex
	calls     map[string]int
	queries   map[string][]url.Values
	overrides map[string]http.HandlerFunc
}

// NewNaverFixture starts a fixture that is closed when the test ends.
func NewNaverFixture(t testing.TB) *NaverFixture {
	t.Helper()
	f := &NaverFixture{
		calls:     make(map[string]int),
		queries:   make(map[string][]url.Values),
		overrides: make(map[string]http.HandlerFunc),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// Config returns a client configuration pointing at the fixture.
func (f *NaverFixture) Config() naver.Config {
	return naver.Config{
		ClientID:     FixtureClientID,
		ClientSecret: FixtureClientSecret,
		BaseURL:      f.URL,
		Timeout:      2 * time.Second,
	}
}

// Handle replaces the handler for one API path.
func (f *NaverFixture) Handle(path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrides[path] = h
}

// Calls returns how many requests reached path.
func (f *NaverFixture) Calls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

// TotalCalls returns the number of requests across all paths.
func (f *NaverFixture) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// Queries returns the query parameters of every request to path, in order.
func (f *NaverFixture) Queries(path string) []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values(nil), f.queries[path]...)
}

func (f *NaverFixture) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls[r.URL.Path]++
	f.queries[r.URL.Path] = append(f.queries[r.URL.Path], r.URL.Query())
	override := f.overrides[r.URL.Path]
	f.mu.Unlock()

	if override != nil {
		override(w, r)
		return
	}

	if r.Header.Get(naver.HeaderClientID) != FixtureClientID || r.Header.Get(naver.HeaderClientSecret) != FixtureClientSecret {
		WriteJSON(w, http.StatusUnauthorized, map[string]any{
			"error": map[string]any{
				"errorCode": "200",
				"message":   "Authentication Failed",
				"details":   "Invalid authentication information.",
			},
		})
		return
	}

	switch r.URL.Path {
	case naver.GeocodePath:
		geocode(w, r.URL.Query())
	case naver.ReverseGeocodePath:
		reverseGeocode(w, r.URL.Query())
	case naver.DirectionsPath, naver.Directions15Path:
		driving(w, r.URL.Query())
	default:
		http.NotFound(w, r)
	}
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func geocode(w http.ResponseWriter, q url.Values) {
	place, ok := Places[q.Get("query")]
	if !ok {
		WriteJSON(w, http.StatusOK, map[string]any{
			"status":       "OK",
			"meta":         map[string]any{"totalCount": 0, "page": 1, "count": 0},
			"addresses":    []any{},
			"errorMessage": "",
		})
		return
	}

	// The real API sends coordinates as strings.
	WriteJSON(w, http.StatusOK, map[string]any{
		"status": "OK",
		"meta":   map[string]any{"totalCount": 1, "page": 1, "count": 1},
		"addresses": []any{map[string]any{
			"roadAddress":    place.Road,
			"jibunAddress":   place.Jibun,
			"englishAddress": "",
			"x":              strconv.FormatFloat(place.Lng, 'f', -1, 64),
			"y":              strconv.FormatFloat(place.Lat, 'f', -1, 64),
		}},
		"errorMessage": "",
	})
}

func reverseGeocode(w http.ResponseWriter, q url.Values) {
	center := func(x, y string) map[string]any {
		return map[string]any{"center": map[string]any{"crs": "EPSG:4326", "x": x, "y": y}}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"status": map[string]any{"code": 0, "name": "ok", "message": "done"},
		"results": []any{map[string]any{
			"name": "roadaddr",
			"code": map[string]any{"id": "1168010100", "type": "L", "mappingId": "09680101"},
			"region": map[string]any{
				"area0": map[string]any{"name": "kr", "coords": center("0.0", "0.0")},
				"area1": map[string]any{"name": "서울특별시", "alias": "서울", "coords": center("126.9783882", "37.5666103")},
				"area2": map[string]any{"name": "강남구", "coords": center("127.0473667", "37.5173050")},
				"area3": map[string]any{"name": "역삼동", "coords": center("127.0368", "37.5006")},
				"area4": map[string]any{"name": "", "coords": center("0.0", "0.0")},
			},
			"land": map[string]any{
				"type":      "",
				"number1":   "396",
				"number2":   "",
				"addition0": map[string]any{"type": "building", "value": "강남역"},
				"addition1": map[string]any{"type": "zipcode", "value": "06232"},
				"name":      "강남대로",
			},
		}},
	})
}

func driving(w http.ResponseWriter, q url.Values) {
	start, goal := q.Get("start"), q.Get("goal")
	if start == goal {
		WriteJSON(w, http.StatusOK, map[string]any{
			"code":            1,
			"message":         "출발지와 도착지가 동일합니다. 확인 후 다시 지정해주세요.",
			"currentDateTime": "2025-03-26T11:00:00",
		})
		return
	}

	option := q.Get("option")
	if option == "" {
		option = "traoptimal"
	}

	points := []string{start}
	var waypoints []any
	if wps := q.Get("waypoints"); wps != "" {
		for _, wp := range strings.Split(wps, "|") {
			points = append(points, wp)
			waypoints = append(waypoints, map[string]any{"location": lngLat(wp)})
		}
	}
	points = append(points, goal)

	path := make([]any, len(points))
	for i, p := range points {
		path[i] = lngLat(p)
	}
	legs := len(points) - 1

	summary := map[string]any{
		"start":         map[string]any{"location": lngLat(start)},
		"goal":          map[string]any{"location": lngLat(goal), "dir": 0},
		"distance":      4000 * legs,
		"duration":      600000 * legs,
		"departureTime": "2025-03-26T11:00:00",
		"bbox":          []any{lngLat(start), lngLat(goal)},
		"tollFare":      0,
		"taxiFare":      4800 * legs,
		"fuelPrice":     600 * legs,
	}
	if len(waypoints) > 0 {
		summary["waypoints"] = waypoints
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"code":            0,
		"message":         "길찾기를 성공하였습니다.",
		"currentDateTime": "2025-03-26T11:00:00",
		"route": map[string]any{
			option: []any{map[string]any{
				"summary": summary,
				"path":    path,
				"section": []any{map[string]any{
					"pointIndex": 0, "pointCount": len(points), "distance": 4000 * legs,
					"name": "테헤란로", "congestion": 1, "speed": 40,
				}},
				"guide": []any{map[string]any{
					"pointIndex": len(points) - 1, "type": 88,
					"instructions": "목적지", "distance": 4000 * legs, "duration": 600000 * legs,
				}},
			}},
		},
	})
}

func lngLat(s string) []float64 {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil
	}
	lng, _ := strconv.ParseFloat(parts[0], 64)
	lat, _ := strconv.ParseFloat(parts[1], 64)
	return []float64{lng, lat}
}
