package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/navermcp/pkg/geo"
)

// SearchPlacesTool returns a tool definition for keyword place search
func SearchPlacesTool() mcp.Tool {
	return mcp.NewTool("searchPlaces",
		mcp.WithDescription("키워드로 장소를 검색합니다. Keyword place search (placeholder: returns a fixed example result)."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("검색 키워드 (search keyword)"),
		),
		mcp.WithObject("coordinate",
			mcp.Description("검색 중심 좌표 (search center)"),
			mcp.Properties(coordinateProperties()),
		),
		mcp.WithNumber("radius",
			mcp.Description("검색 반경 (미터 단위)"),
		),
	)
}

// TransformCoordinatesTool returns a tool definition for coordinate system
// conversion
func TransformCoordinatesTool() mcp.Tool {
	return mcp.NewTool("transformCoordinates",
		mcp.WithDescription("다양한 좌표계 간에 좌표를 변환합니다. Coordinate system conversion (placeholder: values are returned unchanged)."),
		mcp.WithObject("coords",
			mcp.Required(),
			mcp.Description("변환할 좌표 (x, y)"),
			mcp.Properties(map[string]any{
				"x": map[string]any{"type": "number"},
				"y": map[string]any{"type": "number"},
			}),
		),
		mcp.WithString("fromCoordSys",
			mcp.Required(),
			mcp.Description("원본 좌표계 (source coordinate system)"),
			mcp.Enum(CoordinateSystems...),
		),
		mcp.WithString("toCoordSys",
			mcp.Required(),
			mcp.Description("변환할 좌표계 (target coordinate system)"),
			mcp.Enum(CoordinateSystems...),
		),
	)
}

// handleSearchPlaces has no upstream; it always answers with one example place.
func (d *Dispatcher) handleSearchPlaces(ctx context.Context, args Arguments) (any, error) {
	if _, err := args.String("query"); err != nil {
		return nil, err
	}
	return SearchPlacesOutput{
		Places: []Place{{
			Name:     "검색 결과 예시",
			Address:  "서울특별시 강남구",
			Location: geo.Coordinate{Latitude: 37.5, Longitude: 127.0},
		}},
	}, nil
}

// handleTransformCoordinates echoes the input point and labels it with both
// coordinate systems. No projection math is performed.
func (d *Dispatcher) handleTransformCoordinates(ctx context.Context, args Arguments) (any, error) {
	point, err := args.PlanarPoint("coords")
	if err != nil {
		return nil, err
	}
	from, err := coordinateSystem(args, "fromCoordSys")
	if err != nil {
		return nil, err
	}
	to, err := coordinateSystem(args, "toCoordSys")
	if err != nil {
		return nil, err
	}
	return TransformOutput{X: point.X, Y: point.Y, FromCoordSys: from, ToCoordSys: to}, nil
}

func coordinateSystem(args Arguments, key string) (string, error) {
	name, err := args.String(key)
	if err != nil {
		return "", err
	}
	for _, sys := range CoordinateSystems {
		if strings.EqualFold(sys, name) {
			return sys, nil
		}
	}
	return "", &ArgumentError{Key: key, Reason: fmt.Sprintf("must be one of %s", strings.Join(CoordinateSystems, ", "))}
}
