package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/navermcp/pkg/directions"
	"github.com/NERVsystems/navermcp/pkg/geo"
	"github.com/NERVsystems/navermcp/pkg/naver"
)

func routeOptionParam() mcp.ToolOption {
	return mcp.WithString("option",
		mcp.Description("경로 옵션 (route option)"),
		mcp.Enum(naver.RouteOptions()...),
		mcp.DefaultString(string(naver.DefaultRouteOption)),
	)
}

func languageParam() mcp.ToolOption {
	return mcp.WithString("lang",
		mcp.Description("안내 언어 (guidance language)"),
		mcp.Enum(naver.Languages()...),
		mcp.DefaultString(string(naver.LangKorean)),
	)
}

// GetDirectionsTool returns a tool definition for routing between coordinates
func GetDirectionsTool() mcp.Tool {
	return mcp.NewTool("getDirections",
		mcp.WithDescription("출발지와 목적지 사이의 최적 경로를 제공합니다. Driving route between two coordinates."),
		mcp.WithObject("start",
			mcp.Required(),
			mcp.Description("출발 좌표 (start coordinate)"),
			mcp.Properties(coordinateProperties()),
		),
		mcp.WithObject("goal",
			mcp.Required(),
			mcp.Description("도착 좌표 (goal coordinate)"),
			mcp.Properties(coordinateProperties()),
		),
		routeOptionParam(),
		languageParam(),
	)
}

// GetDirectionsWithWaypointsTool returns a tool definition for routing
// through intermediate coordinates
func GetDirectionsWithWaypointsTool() mcp.Tool {
	return mcp.NewTool("getDirectionsWithWaypoints",
		mcp.WithDescription("경유지를 포함한 최적 경로를 제공합니다. Driving route through up to 15 waypoints."),
		mcp.WithObject("start",
			mcp.Required(),
			mcp.Description("출발 좌표 (start coordinate)"),
			mcp.Properties(coordinateProperties()),
		),
		mcp.WithObject("goal",
			mcp.Required(),
			mcp.Description("도착 좌표 (goal coordinate)"),
			mcp.Properties(coordinateProperties()),
		),
		mcp.WithArray("waypoints",
			mcp.Description("경유지 좌표 목록 (waypoints, in visiting order)"),
			mcp.Items(coordinateSchema("경유지 좌표")),
			mcp.MaxItems(naver.MaxWaypoints),
		),
		routeOptionParam(),
		languageParam(),
	)
}

// GetDirectionsByNaturalLanguageTool returns a tool definition for routing
// between place names
func GetDirectionsByNaturalLanguageTool() mcp.Tool {
	return mcp.NewTool("getDirectionsByNaturalLanguage",
		mcp.WithDescription("자연어로 된 출발지와 목적지를 자동으로 지오코딩하여 경로를 제공합니다. Geocodes both place names, then routes between them."),
		mcp.WithString("startAddress",
			mcp.Required(),
			mcp.Description("출발지 주소 또는 장소명 (자연어)"),
		),
		mcp.WithString("goalAddress",
			mcp.Required(),
			mcp.Description("도착지 주소 또는 장소명 (자연어)"),
		),
		routeOptionParam(),
		languageParam(),
	)
}

// GetDirectionsWithWaypointsByNaturalLanguageTool returns a tool definition
// for routing between place names with intermediate stops
func GetDirectionsWithWaypointsByNaturalLanguageTool() mcp.Tool {
	return mcp.NewTool("getDirectionsWithWaypointsByNaturalLanguage",
		mcp.WithDescription("자연어로 된 출발지, 경유지, 목적지를 자동으로 지오코딩하여 경로를 제공합니다. Geocodes every place name in order, then routes through them."),
		mcp.WithString("startAddress",
			mcp.Required(),
			mcp.Description("출발지 주소 또는 장소명 (자연어)"),
		),
		mcp.WithString("goalAddress",
			mcp.Required(),
			mcp.Description("도착지 주소 또는 장소명 (자연어)"),
		),
		mcp.WithArray("waypointAddresses",
			mcp.Description("경유지 주소 또는 장소명 목록 (자연어)"),
			mcp.Items(map[string]any{"type": "string"}),
			mcp.MaxItems(naver.MaxWaypoints),
		),
		routeOptionParam(),
		languageParam(),
	)
}

// routeSettings reads the option and lang arguments shared by all routing tools.
func routeSettings(args Arguments) (naver.RouteOption, naver.Language, error) {
	rawOption, err := args.OptionalString("option", "")
	if err != nil {
		return "", "", err
	}
	option, err := naver.ParseRouteOption(rawOption)
	if err != nil {
		return "", "", &ArgumentError{Key: "option", Reason: err.Error()}
	}
	rawLang, err := args.OptionalString("lang", "")
	if err != nil {
		return "", "", err
	}
	lang, err := naver.ParseLanguage(rawLang)
	if err != nil {
		return "", "", &ArgumentError{Key: "lang", Reason: err.Error()}
	}
	return option, lang, nil
}

// directionsHandler routes between coordinates. Waypoints are only read
// when withWaypoints is set.
func (d *Dispatcher) directionsHandler(withWaypoints bool) HandlerFunc {
	return func(ctx context.Context, args Arguments) (any, error) {
		start, err := args.Coordinate("start")
		if err != nil {
			return nil, err
		}
		goal, err := args.Coordinate("goal")
		if err != nil {
			return nil, err
		}
		var waypoints []geo.Coordinate
		if withWaypoints {
			if waypoints, err = args.Coordinates("waypoints"); err != nil {
				return nil, err
			}
		}
		option, lang, err := routeSettings(args)
		if err != nil {
			return nil, err
		}

		return d.router.DirectRoute(ctx, naver.RouteRequest{
			Start:     start,
			Goal:      goal,
			Waypoints: waypoints,
			Option:    option,
			Lang:      lang,
		})
	}
}

// naturalLanguageHandler routes between place names. Waypoint addresses
// are only read when withWaypoints is set; without them the guidance
// language defaults to Korean.
func (d *Dispatcher) naturalLanguageHandler(withWaypoints bool) HandlerFunc {
	return func(ctx context.Context, args Arguments) (any, error) {
		startAddress, err := args.String("startAddress")
		if err != nil {
			return nil, err
		}
		goalAddress, err := args.String("goalAddress")
		if err != nil {
			return nil, err
		}
		var waypoints []string
		if withWaypoints {
			if waypoints, err = args.Strings("waypointAddresses"); err != nil {
				return nil, err
			}
		}
		option, lang, err := routeSettings(args)
		if err != nil {
			return nil, err
		}
		if lang == "" && !withWaypoints {
			lang = naver.LangKorean
		}

		return d.router.NaturalLanguageRoute(ctx, directions.NaturalLanguageRequest{
			Start:     startAddress,
			Goal:      goalAddress,
			Waypoints: waypoints,
			Option:    option,
			Lang:      lang,
		})
	}
}
