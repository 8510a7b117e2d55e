package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/navermcp/pkg/directions"
	"github.com/NERVsystems/navermcp/pkg/geo"
	"github.com/NERVsystems/navermcp/pkg/metrics"
	"github.com/NERVsystems/navermcp/pkg/naver"
)

// Geocoder is the geocoding half of the provider client.
type Geocoder interface {
	Geocode(ctx context.Context, query string, opts naver.GeocodeOptions) (*naver.GeocodeResult, error)
	ReverseGeocode(ctx context.Context, coord geo.Coordinate, opts naver.ReverseGeocodeOptions) (*naver.ReverseGeocodeResult, error)
}

// Router builds routes from coordinates or place names.
type Router interface {
	DirectRoute(ctx context.Context, req naver.RouteRequest) (*naver.RouteResult, error)
	NaturalLanguageRoute(ctx context.Context, req directions.NaturalLanguageRequest) (*directions.NaturalLanguageRoute, error)
}

// HandlerFunc executes a tool and returns a JSON-serialisable result.
type HandlerFunc func(ctx context.Context, args Arguments) (any, error)

// ToolDefinition pairs a tool schema with its handler.
type ToolDefinition struct {
	Tool    mcp.Tool
	Handler HandlerFunc
}

// Tool call outcomes recorded in metrics.
const (
	outcomeOK          = "ok"
	outcomeError       = "error"
	outcomeUnknownTool = "unknown_tool"
)

// Dispatcher maps tool names to handlers and wraps every result in the
// MCP content envelope.
type Dispatcher struct {
	geocoder Geocoder
	router   Router
	logger   *slog.Logger

	definitions []ToolDefinition
	byName      map[string]ToolDefinition
}

// NewDispatcher builds the fixed tool table.
func NewDispatcher(geocoder Geocoder, router Router, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		geocoder: geocoder,
		router:   router,
		logger:   logger,
	}

	d.definitions = []ToolDefinition{
		// Geocoding Tools
		{Tool: GeocodeTool(), Handler: d.handleGeocode},
		{Tool: ReverseGeocodeTool(), Handler: d.handleReverseGeocode},

		// Place Search Tools
		{Tool: SearchPlacesTool(), Handler: d.handleSearchPlaces},

		// Routing Tools
		{Tool: GetDirectionsTool(), Handler: d.directionsHandler(false)},
		{Tool: GetDirectionsWithWaypointsTool(), Handler: d.directionsHandler(true)},
		{Tool: GetDirectionsByNaturalLanguageTool(), Handler: d.naturalLanguageHandler(false)},
		{Tool: GetDirectionsWithWaypointsByNaturalLanguageTool(), Handler: d.naturalLanguageHandler(true)},

		// Coordinate Tools
		{Tool: TransformCoordinatesTool(), Handler: d.handleTransformCoordinates},
	}

	d.byName = make(map[string]ToolDefinition, len(d.definitions))
	for _, def := range d.definitions {
		d.byName[def.Tool.Name] = def
	}
	return d
}

// Definitions returns the tool table in catalog order.
func (d *Dispatcher) Definitions() []ToolDefinition {
	return append([]ToolDefinition(nil), d.definitions...)
}

// Dispatch runs the named tool. It never returns a Go error: every failure,
// including an unknown name, is reported in the result envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	logger := d.logger.With("tool", name, "call_id", uuid.NewString())

	def, ok := d.byName[name]
	if !ok {
		metrics.ToolCallsTotal.WithLabelValues("unknown", outcomeUnknownTool).Inc()
		logger.Warn("unknown tool requested")
		return ErrorWithGuidance(fmt.Sprintf("%v: %s", ErrUnknownTool, name), GuidanceUnknownTool)
	}

	logger.Debug("tool call", "args", args)
	start := time.Now()

	result, err := def.Handler(ctx, Arguments(args))
	if err != nil {
		metrics.ToolCallsTotal.WithLabelValues(name, outcomeError).Inc()
		logger.Error("tool call failed", "error", err, "duration", time.Since(start))
		return errorResult(err)
	}

	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		metrics.ToolCallsTotal.WithLabelValues(name, outcomeError).Inc()
		logger.Error("failed to marshal result", "error", err)
		return ErrorWithGuidance("failed to generate result", GuidanceGeneral)
	}

	metrics.ToolCallsTotal.WithLabelValues(name, outcomeOK).Inc()
	logger.Info("tool call completed", "duration", time.Since(start))
	return mcp.NewToolResultText(string(body))
}
