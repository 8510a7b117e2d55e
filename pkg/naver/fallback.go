package naver

import (
	"fmt"

	"github.com/NERVsystems/navermcp/pkg/geo"
)

// Source records where a result came from.
type Source string

const (
	SourceAuthentic Source = "authentic"
	SourceSynthetic Source = "synthetic"
)

// Origin is embedded in every provider result. FallbackError holds the
// message of the failure that caused synthetic data to be returned.
type Origin struct {
	Source        Source `json:"source"`
	FallbackError string `json:"fallbackError,omitempty"`
}

// Synthetic reports whether the result is fabricated fallback data.
func (o Origin) Synthetic() bool {
	return o.Source == SourceSynthetic
}

func authentic() Origin {
	return Origin{Source: SourceAuthentic}
}

func synthetic(err error) Origin {
	return Origin{Source: SourceSynthetic, FallbackError: err.Error()}
}

func fallbackMessage(err error) string {
	return fmt.Sprintf("실제 API 요청 실패 (%v). 더미 데이터가 반환되었습니다.", err)
}

// syntheticGeocode returns a fixed candidate in Gangnam for any query.
func syntheticGeocode(query string, err error) *GeocodeResult {
	return &GeocodeResult{
		Status: StatusFallback,
		Query:  query,
		Meta:   GeocodeMeta{TotalCount: 1, Page: 1, Count: 1},
		Addresses: []AddressCandidate{{
			RoadAddress:  "서울특별시 강남구 테헤란로 129",
			JibunAddress: "서울특별시 강남구 역삼동 823",
			X:            127.0269218,
			Y:            37.5014274,
			Distance:     0,
		}},
		ErrorMessage: fallbackMessage(err),
		Origin:       synthetic(err),
	}
}

// syntheticReverseGeocode returns a fixed Yeoksam-dong parcel for any point.
func syntheticReverseGeocode(coord geo.Coordinate, err error) *ReverseGeocodeResult {
	center := func(x, y float64) AreaCoords {
		return AreaCoords{Center: Center{X: x, Y: y}}
	}
	return &ReverseGeocodeResult{
		Status:         StatusFallback,
		ProviderStatus: ReverseStatus{Code: 0, Name: "ok", Message: "done"},
		Coords:         coord.LngLat(),
		Results: []ReverseGeocodeEntry{{
			Name: "roadaddr",
			Code: ResultCode{ID: "1114016200", Type: "L", MappingID: "01114016200"},
			Region: Region{
				Area0: Area{Name: "한국", Coords: center(126.98, 37.5633)},
				Area1: Area{Name: "서울특별시", Alias: "서울", Coords: center(126.978, 37.5665)},
				Area2: Area{Name: "강남구", Coords: center(127.0482, 37.514)},
				Area3: Area{Name: "역삼동", Coords: center(127.0359, 37.5017)},
				Area4: Area{Name: "823", Coords: center(127.0271, 37.5015)},
			},
			Land: &Land{
				Type:      "land",
				Number1:   "823",
				Addition0: Addition{Type: "building", Value: "18"},
				Addition1: Addition{Type: "zipcode", Value: "06134"},
				Name:      "역삼동",
			},
		}},
		ErrorMessage: fallbackMessage(err),
		Origin:       synthetic(err),
	}
}
