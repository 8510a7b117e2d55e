package naver_test

import (
	"context"
	"math"
	"net/http"
	"testing"

	"github.com/NERVsystems/navermcp/pkg/geo"
	"github.com/NERVsystems/navermcp/pkg/naver"
	"github.com/NERVsystems/navermcp/pkg/testutil"
)

func TestReverseGeocode(t *testing.T) {
	client, fixture := newTestClient(t)

	coord := geo.Coordinate{Latitude: 37.4979502, Longitude: 127.0276368}
	result, err := client.ReverseGeocode(context.Background(), coord, naver.ReverseGeocodeOptions{})
	if err != nil {
		t.Fatalf("ReverseGeocode() error = %v", err)
	}

	if result.Status != naver.StatusOK || result.Synthetic() {
		t.Errorf("Status = %q, Source = %q", result.Status, result.Source)
	}
	if result.Coords != "127.0276368,37.4979502" {
		t.Errorf("Coords = %q, want lng,lat", result.Coords)
	}
	if len(result.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(result.Results))
	}
	center := result.Results[0].Region.Area2.Coords.Center
	if center.X != 127.0473667 || center.Y != 37.517305 {
		t.Errorf("center = %+v, want numeric values parsed from strings", center)
	}
	if land := result.Results[0].Land; land == nil || land.Addition1.Value != "06232" {
		t.Errorf("Land = %+v", land)
	}

	q := fixture.Queries(naver.ReverseGeocodePath)[0]
	if q.Get("coords") != "127.0276368,37.4979502" || q.Get("output") != "json" || q.Get("orders") != naver.DefaultOrders {
		t.Errorf("upstream query = %v", q)
	}
	if q.Has("coords_type") {
		t.Errorf("coords_type sent without being requested: %v", q)
	}
}

func TestReverseGeocodeValidation(t *testing.T) {
	tests := []struct {
		name       string
		coord      geo.Coordinate
		coordsType string
		wantErr    bool
	}{
		{"latitude out of range", geo.Coordinate{Latitude: 91, Longitude: 127}, "", true},
		{"longitude out of range for latlng", geo.Coordinate{Latitude: 37, Longitude: 181}, "latlng", true},
		{"projected coordinates skip range check", geo.Coordinate{Latitude: 1951234, Longitude: 958123}, "utmk", false},
		{"unknown coords_type", geo.Coordinate{Latitude: 37, Longitude: 127}, "mercator", true},
		{"NaN latitude", geo.Coordinate{Latitude: math.NaN(), Longitude: 127}, "", true},
		{"NaN projected coordinate", geo.Coordinate{Latitude: 1951234, Longitude: math.NaN()}, "utmk", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, fixture := newTestClient(t)
			_, err := client.ReverseGeocode(context.Background(), tt.coord, naver.ReverseGeocodeOptions{CoordsType: tt.coordsType, UseDummyData: true})
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("ReverseGeocode() error = %v", err)
				}
				if got := fixture.Queries(naver.ReverseGeocodePath)[0].Get("coords_type"); got != tt.coordsType {
					t.Errorf("coords_type = %q, want %q", got, tt.coordsType)
				}
				return
			}
			apiErr, ok := naver.AsAPIError(err)
			if !ok || apiErr.Kind != naver.KindRequest {
				t.Fatalf("error = %v, want request *APIError", err)
			}
			if fixture.TotalCalls() != 0 {
				t.Error("rejected request reached upstream")
			}
		})
	}
}

func TestReverseGeocodeNoResults(t *testing.T) {
	client, fixture := newTestClient(t)
	fixture.Handle(naver.ReverseGeocodePath, func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, map[string]any{
			"status":  map[string]any{"code": 3, "name": "no results", "message": "요청한 데이터의 결과가 없습니다."},
			"results": []any{},
		})
	})

	result, err := client.ReverseGeocode(context.Background(), geo.Coordinate{Latitude: 0, Longitude: 0}, naver.ReverseGeocodeOptions{})
	if err != nil {
		t.Fatalf("ReverseGeocode() error = %v", err)
	}
	if result.Status != naver.StatusEmpty || result.ErrorMessage != naver.NoResultsMessage {
		t.Errorf("Status = %q, ErrorMessage = %q", result.Status, result.ErrorMessage)
	}
	if result.ProviderStatus.Code != 3 {
		t.Errorf("ProviderStatus = %+v", result.ProviderStatus)
	}
}

func TestReverseGeocodeFallback(t *testing.T) {
	client, fixture := newTestClient(t)
	fixture.Handle(naver.ReverseGeocodePath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	coord := geo.Coordinate{Latitude: 35.1796, Longitude: 129.0756}
	if _, err := client.ReverseGeocode(context.Background(), coord, naver.ReverseGeocodeOptions{}); err == nil {
		t.Fatal("expected error without fallback")
	}

	result, err := client.ReverseGeocode(context.Background(), coord, naver.ReverseGeocodeOptions{UseDummyData: true})
	if err != nil {
		t.Fatalf("ReverseGeocode() error = %v", err)
	}
	if !result.Synthetic() || result.Status != naver.StatusFallback || result.FallbackError == "" {
		t.Errorf("result = %+v, want synthetic fallback", result)
	}
	if result.Coords != "129.0756,35.1796" {
		t.Errorf("Coords = %q, want the requested point", result.Coords)
	}
	if len(result.Results) != 1 || result.Results[0].Region.Area2.Name != "강남구" {
		t.Errorf("Results = %+v", result.Results)
	}
}
