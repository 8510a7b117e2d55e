package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/navermcp/pkg/geo"
	"github.com/NERVsystems/navermcp/pkg/naver"
)

// GeocodeTool returns a tool definition for geocoding addresses
func GeocodeTool() mcp.Tool {
	return mcp.NewTool("geocode",
		mcp.WithDescription("주소를 좌표(위도, 경도)로 변환합니다. Convert a Korean address or place name to coordinates."),
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description("검색할 주소 (address to search)"),
		),
		mcp.WithString("filter",
			mcp.Description("지역 필터링, e.g. HCODE@4113554500;4113555000 or {\"type\":\"HCODE\",\"codes\":[...]}"),
		),
		mcp.WithObject("coordinate",
			mcp.Description("Center coordinate used to rank results and compute distance"),
			mcp.Properties(coordinateProperties()),
		),
		mcp.WithString("language",
			mcp.Description("Response language"),
			mcp.Enum("kor", "eng"),
		),
		mcp.WithNumber("page",
			mcp.Description("Result page, starting at 1"),
		),
		mcp.WithNumber("count",
			mcp.Description("Results per page (1-100)"),
			mcp.Min(naver.MinCount),
			mcp.Max(naver.MaxCount),
		),
	)
}

// ReverseGeocodeTool returns a tool definition for reverse geocoding
func ReverseGeocodeTool() mcp.Tool {
	return mcp.NewTool("reverseGeocode",
		mcp.WithDescription("좌표(위도, 경도)를 주소로 변환합니다. Convert coordinates to administrative and road addresses."),
		mcp.WithNumber("latitude",
			mcp.Required(),
			mcp.Description("위도 (latitude)"),
		),
		mcp.WithNumber("longitude",
			mcp.Required(),
			mcp.Description("경도 (longitude)"),
		),
		mcp.WithString("coords_type",
			mcp.Description("좌표계 타입 (coordinate system of the input)"),
			mcp.Enum(naver.CoordsTypes...),
			mcp.DefaultString(naver.CoordsLatLng),
		),
		mcp.WithString("orders",
			mcp.Description("Comma separated conversions: legalcode, admcode, addr, roadaddr"),
			mcp.DefaultString(naver.DefaultOrders),
		),
	)
}

func (d *Dispatcher) handleGeocode(ctx context.Context, args Arguments) (any, error) {
	address, err := args.String("address")
	if err != nil {
		return nil, err
	}
	filter, err := naver.ParseFilter(args["filter"])
	if err != nil {
		return nil, &ArgumentError{Key: "filter", Reason: err.Error()}
	}
	coordinate, err := args.OptionalCoordinate("coordinate")
	if err != nil {
		return nil, err
	}
	language, err := args.OptionalString("language", "")
	if err != nil {
		return nil, err
	}
	page, err := args.OptionalInt("page", 0)
	if err != nil {
		return nil, err
	}
	count, err := args.OptionalInt("count", 0)
	if err != nil {
		return nil, err
	}

	return d.geocoder.Geocode(ctx, address, naver.GeocodeOptions{
		Filter:     filter,
		Coordinate: coordinate,
		Language:   language,
		Page:       page,
		Count:      count,
	})
}

func (d *Dispatcher) handleReverseGeocode(ctx context.Context, args Arguments) (any, error) {
	lat, err := args.Float("latitude")
	if err != nil {
		return nil, err
	}
	lng, err := args.Float("longitude")
	if err != nil {
		return nil, err
	}
	coordsType, err := args.OptionalString("coords_type", "")
	if err != nil {
		return nil, err
	}
	orders, err := args.OptionalString("orders", "")
	if err != nil {
		return nil, err
	}

	return d.geocoder.ReverseGeocode(ctx, geo.Coordinate{Latitude: lat, Longitude: lng}, naver.ReverseGeocodeOptions{
		CoordsType: coordsType,
		Orders:     orders,
	})
}

func coordinateProperties() map[string]any {
	return map[string]any{
		"latitude":  map[string]any{"type": "number", "description": "위도 (latitude)"},
		"longitude": map[string]any{"type": "number", "description": "경도 (longitude)"},
	}
}

func coordinateSchema(description string) map[string]any {
	return map[string]any{
		"type":        "object",
		"description": description,
		"properties":  coordinateProperties(),
		"required":    []string{"latitude", "longitude"},
	}
}
